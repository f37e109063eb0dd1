package main_test

import (
	"context"
	"testing"

	main "github.com/fwojciec/prodner/cmd/prodner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Run_StopsWithContext(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	deps.Ctx = ctx

	cmd := &main.ServeCmd{
		Addr:       "127.0.0.1:0",
		FetchFlags: main.FetchFlags{Extract: "none"},
		ModelFlags: main.ModelFlags{Gazetteer: writeFile(t, t.TempDir(), "products.txt", "apple watch\n")},
	}

	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "Listening on http://127.0.0.1:")
}
