package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/prodner"
	main "github.com/fwojciec/prodner/cmd/prodner"
	prodjson "github.com/fwojciec/prodner/json"
	"github.com/fwojciec/prodner/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// newDeps returns dependencies writing to buffers. Fetches are served from
// pages, and unknown URLs fail with a 404.
func newDeps(pages map[string]string) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	fetcher := mock.Pages(pages)
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdin:    strings.NewReader(""),
		Stdout:   stdout,
		Stderr:   stderr,
		Registry: prometheus.NewRegistry(),
		NewFetcher: func(main.FetchFlags) (prodner.Fetcher, error) {
			return fetcher, nil
		},
		OpenRecognizer: main.OpenRecognizer,
	}, stdout, stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeTestCorpus(t *testing.T, dir string, records []*prodner.AnnotationRecord) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, prodjson.WriteCorpus(&buf, records))
	return writeFile(t, dir, "corpus.json", buf.String())
}

func readTestCorpus(t *testing.T, path string) []*prodner.AnnotationRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, skipped, err := prodjson.ReadCorpus(f)
	require.NoError(t, err)
	require.Zero(t, skipped)
	return records
}

const watchText = "Buy Apple Watch now. The apple watch pairs with an iPhone."
