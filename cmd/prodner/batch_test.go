package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/prodner"
	main "github.com/fwojciec/prodner/cmd/prodner"
	"github.com/fwojciec/prodner/mock"
	"github.com/fwojciec/prodner/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCmd_Run(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://shop.example.com/watch": `<html><body><script>x()</script><p>Buy Apple Watch now</p></body></html>`,
		"https://shop.example.com/blank": `<html><body><script>only()</script></body></html>`,
	}
	csv := "url\nhttps://shop.example.com/watch\nhttps://shop.example.com/missing\n\nhttps://shop.example.com/blank\n"

	t.Run("writes corpus and reports partial failure", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		deps, stdout, stderr := newDeps(pages)
		cmd := &main.BatchCmd{
			URLs:        writeFile(t, dir, "urls.csv", csv),
			Out:         filepath.Join(dir, "out", "corpus.json"),
			FetchFlags:  main.FetchFlags{Extract: "none"},
			Concurrency: 2,
		}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Processing 3 URLs")
		assert.Contains(t, stdout.String(), "Processed 3 URLs: 2 succeeded, 1 failed (19 B)")
		assert.Contains(t, stdout.String(), "Wrote 1 records to")
		assert.Contains(t, stderr.String(), "skip https://shop.example.com/missing: HTTP 404 for https://shop.example.com/missing")

		records := readTestCorpus(t, cmd.Out)
		require.Len(t, records, 1)
		assert.Equal(t, "https://shop.example.com/watch", records[0].SourceURL)
		assert.Equal(t, "Buy Apple Watch now", records[0].Text)
		assert.Empty(t, records[0].Spans)
	})

	t.Run("saves pages to files and database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		deps, _, _ := newDeps(pages)
		cmd := &main.BatchCmd{
			URLs:        writeFile(t, dir, "urls.csv", csv),
			Out:         filepath.Join(dir, "corpus.json"),
			FetchFlags:  main.FetchFlags{Extract: "none"},
			HTMLDir:     filepath.Join(dir, "html"),
			TextDir:     filepath.Join(dir, "text"),
			DB:          filepath.Join(dir, "pages.db"),
			Concurrency: 1,
		}

		require.NoError(t, cmd.Run(deps))

		text, err := os.ReadFile(filepath.Join(dir, "text", "shop.example.com_watch.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Buy Apple Watch now\n\nSource URL: https://shop.example.com/watch", string(text))

		html, err := os.ReadFile(filepath.Join(dir, "html", "shop.example.com_watch.html"))
		require.NoError(t, err)
		assert.Equal(t, pages["https://shop.example.com/watch"], string(html))

		db := sqlite.NewDB(cmd.DB)
		require.NoError(t, db.Open())
		defer db.Close()
		page, err := sqlite.NewPageService(db).FindPageByURL(deps.Ctx, "https://shop.example.com/watch")
		require.NoError(t, err)
		assert.Equal(t, "Buy Apple Watch now", page.Text)
	})

	t.Run("fails on missing URL list", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(pages)
		cmd := &main.BatchCmd{URLs: filepath.Join(t.TempDir(), "nope.csv")}

		err := cmd.Run(deps)

		assert.Equal(t, prodner.EINVALID, prodner.ErrorCode(err))
	})
}

func TestBatchCmd_Probe(t *testing.T) {
	t.Parallel()

	const url = "https://shop.example.com/app"
	probeDeps := func(plainHTML, renderedHTML string) (*main.Dependencies, *bytes.Buffer, *[]bool) {
		deps, stdout, _ := newDeps(nil)
		var closed []bool
		deps.NewFetcher = func(f main.FetchFlags) (prodner.Fetcher, error) {
			body := plainHTML
			if f.Browser {
				body = renderedHTML
			}
			browser := f.Browser
			return &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return body, nil },
				CloseFn: func() error {
					closed = append(closed, browser)
					return nil
				},
			}, nil
		}
		return deps, stdout, &closed
	}

	t.Run("switches to browser for script-rendered pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		deps, stdout, closed := probeDeps(
			`<div id="app"></div><script>render()</script>`,
			`<div id="app"><p>Buy Apple Watch now</p></div>`,
		)
		cmd := &main.BatchCmd{
			URLs:        writeFile(t, dir, "urls.csv", "url\n"+url+"\n"),
			Out:         filepath.Join(dir, "corpus.json"),
			FetchFlags:  main.FetchFlags{Extract: "none"},
			Concurrency: 1,
			Probe:       true,
		}

		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "Probe: using browser rendering")
		assert.Equal(t, []bool{false, true}, *closed)
		records := readTestCorpus(t, cmd.Out)
		require.Len(t, records, 1)
		assert.Equal(t, "Buy Apple Watch now", records[0].Text)
	})

	t.Run("keeps plain HTTP for static pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := `<p>Buy Apple Watch now</p>`
		deps, stdout, closed := probeDeps(page, page)
		cmd := &main.BatchCmd{
			URLs:        writeFile(t, dir, "urls.csv", "url\n"+url+"\n"),
			Out:         filepath.Join(dir, "corpus.json"),
			FetchFlags:  main.FetchFlags{Extract: "none"},
			Concurrency: 1,
			Probe:       true,
		}

		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "Probe: using plain HTTP")
		assert.Equal(t, []bool{true, false}, *closed)
	})
}

func TestBatchCmd_RetryDelays(t *testing.T) {
	t.Parallel()

	assert.Empty(t, (&main.BatchCmd{Retries: 0}).RetryDelays())
	assert.Equal(t,
		[]time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		(&main.BatchCmd{Retries: 3}).RetryDelays(),
	)
}
