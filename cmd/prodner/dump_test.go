package main_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/prodner"
	main "github.com/fwojciec/prodner/cmd/prodner"
	"github.com/fwojciec/prodner/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPages writes a database holding the watch and pixel pages, oldest first.
func seedPages(t *testing.T, dbPath string) {
	t.Helper()

	db := sqlite.NewDB(dbPath)
	require.NoError(t, db.Open())
	defer db.Close()

	svc := sqlite.NewPageService(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, p := range []struct{ url, text string }{
		{"https://example.com/watch", "Buy Apple Watch now"},
		{"https://example.com/pixel", "Pixel 8 review"},
	} {
		page := &prodner.PageSource{URL: p.url, HTML: "<p>" + p.text + "</p>", FetchedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, svc.SavePage(t.Context(), page, p.text))
	}
}

func countPages(t *testing.T, dbPath string) int {
	t.Helper()

	db := sqlite.NewDB(dbPath)
	require.NoError(t, db.Open())
	defer db.Close()

	n, err := sqlite.NewPageService(db).CountPages(t.Context())
	require.NoError(t, err)
	return n
}

func TestDumpCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("exports stored pages as corpus records", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "pages.db")
		seedPages(t, dbPath)
		deps, stdout, _ := newDeps(nil)

		out := filepath.Join(dir, "corpus.json")
		require.NoError(t, (&main.DumpCmd{DB: dbPath, Out: out}).Run(deps))

		records := readTestCorpus(t, out)
		require.Len(t, records, 2)
		assert.Equal(t, "https://example.com/watch", records[0].SourceURL)
		assert.Equal(t, "Buy Apple Watch now", records[0].Text)
		assert.Equal(t, "https://example.com/pixel", records[1].SourceURL)
		assert.Empty(t, records[1].Spans)
		assert.Contains(t, stdout.String(), "Wrote 2 records to")
		assert.NotContains(t, stdout.String(), "Pruned")
		assert.Equal(t, 2, countPages(t, dbPath))
	})

	t.Run("prunes only the exported pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "pages.db")
		seedPages(t, dbPath)
		deps, stdout, _ := newDeps(nil)

		out := filepath.Join(dir, "corpus.json")
		require.NoError(t, (&main.DumpCmd{DB: dbPath, Out: out, Limit: 1, Prune: true}).Run(deps))

		records := readTestCorpus(t, out)
		require.Len(t, records, 1)
		assert.Equal(t, "https://example.com/watch", records[0].SourceURL)
		assert.Contains(t, stdout.String(), "Pruned 1 pages from")
		assert.Equal(t, 1, countPages(t, dbPath))
	})
}
