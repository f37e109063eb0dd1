package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/batch"
	prodcsv "github.com/fwojciec/prodner/csv"
	prodfs "github.com/fwojciec/prodner/fs"
	"github.com/fwojciec/prodner/gemini"
	"github.com/fwojciec/prodner/goquery"
	"github.com/fwojciec/prodner/htmltomarkdown"
	prodslog "github.com/fwojciec/prodner/slog"
	"github.com/fwojciec/prodner/sqlite"
)

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	URLs string `arg:"" type:"path" help:"CSV file with URLs in the first column"`
	Out  string `short:"o" default:"corpus.json" help:"Corpus output path"`

	FetchFlags `embed:""`

	HTMLDir     string  `name:"html-dir" env:"PRODNER_HTML_DIR" default:"${html_dir}" help:"Save raw HTML here"`
	TextDir     string  `name:"text-dir" env:"PRODNER_TEXT_DIR" default:"${text_dir}" help:"Save normalized text here (defaults to --html-dir)"`
	MarkdownDir string  `name:"markdown-dir" help:"Also save a markdown rendition here"`
	DB          string  `env:"PRODNER_DB" default:"${db}" help:"Store pages in this SQLite database"`
	Concurrency int     `short:"c" env:"PRODNER_CONCURRENCY" default:"${concurrency}" help:"Concurrent fetch limit"`
	Retries     int     `env:"PRODNER_RETRIES" default:"${retries}" help:"Retries per URL for transient failures"`
	RPS         float64 `env:"PRODNER_RPS" default:"${rps}" help:"Requests per second per host (0 disables)"`
	Tokens      bool    `help:"Estimate Gemini token counts"`
	Probe       bool    `help:"Render the first URL in a browser and use the browser if it shows more text"`
}

// RetryDelays returns exponential backoff delays starting at one second.
func (c *BatchCmd) RetryDelays() []time.Duration {
	delays := make([]time.Duration, 0, c.Retries)
	d := time.Second
	for range c.Retries {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := readURLs(c.URLs)
	if err != nil {
		return err
	}
	logger := deps.logger()

	fetcher, extractor, err := c.openFetcher(deps, urls)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	sink, closeSink, err := c.openSink(deps)
	if err != nil {
		return err
	}
	defer closeSink()

	p := &batch.Processor{
		Fetcher:     fetcher,
		Normalizer:  goquery.NewNormalizer(),
		Extractor:   extractor,
		Sink:        sink,
		Metrics:     batch.NewMetrics(deps.registry()),
		Concurrency: c.Concurrency,
		RetryDelays: c.RetryDelays(),
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	}
	if c.RPS > 0 {
		p.RateLimiter = batch.NewDomainLimiter(c.RPS)
	}
	if c.Tokens {
		tc, err := gemini.NewTokenCounter(gemini.DefaultModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		p.TokenCounter = tc
	}

	result, err := p.ProcessAll(deps.Ctx, urls, func(event batch.ProgressEvent) {
		switch event.Type {
		case batch.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Processing %d URLs\n", event.Total)
		case batch.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", batch.TruncateURL(event.URL, 80), prodner.ErrorMessage(event.Error))
		case batch.ProgressSinkFailed:
			fmt.Fprintf(deps.Stderr, "  save %s: %v\n", batch.TruncateURL(event.URL, 80), event.Error)
		case batch.ProgressCompleted:
			logger.Debug("processed", "url", event.URL, "completed", event.Completed, "total", event.Total)
		}
	})
	if err != nil {
		return err
	}

	if err := writeCorpus(c.Out, result.Records); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	fmt.Fprintln(deps.Stdout, batch.Summary(result.Succeeded, result.Failed, result.Bytes, result.Tokens))
	fmt.Fprintf(deps.Stdout, "Wrote %d records to %s\n", len(result.Records), c.Out)
	return nil
}

// openFetcher opens the configured fetcher. With --probe and no --browser it
// fetches the first URL both ways and keeps the browser only when rendering
// reveals more text.
func (c *BatchCmd) openFetcher(deps *Dependencies, urls []string) (prodner.Fetcher, prodner.Extractor, error) {
	fetcher, extractor, err := openFetcher(deps, c.FetchFlags)
	if err != nil || !c.Probe || c.Browser || len(urls) == 0 {
		return fetcher, extractor, err
	}
	logger := deps.logger()

	flags := c.FetchFlags
	flags.Browser = true
	rendered, err := deps.NewFetcher(flags)
	if err != nil {
		logger.Warn("browser unavailable, skipping probe", "error", err)
		return fetcher, extractor, nil
	}

	chosen := batch.ProbeFetcher(deps.Ctx, urls[0], fetcher, rendered, goquery.NewNormalizer())
	if chosen == rendered {
		_ = fetcher.Close()
		fmt.Fprintln(deps.Stdout, "Probe: using browser rendering")
		return prodslog.NewLoggingFetcher(rendered, logger), extractor, nil
	}
	_ = rendered.Close()
	fmt.Fprintln(deps.Stdout, "Probe: using plain HTTP")
	return fetcher, extractor, nil
}

// openSink combines the file and database sinks the flags ask for.
func (c *BatchCmd) openSink(deps *Dependencies) (prodner.PageSink, func(), error) {
	var sinks prodner.PageSinks
	closeFn := func() {}

	if c.HTMLDir != "" || c.TextDir != "" {
		htmlDir, textDir := c.HTMLDir, c.TextDir
		if textDir == "" {
			textDir = htmlDir
		}
		if htmlDir == "" {
			htmlDir = textDir
		}
		var opts []prodfs.Option
		if c.MarkdownDir != "" {
			opts = append(opts, prodfs.WithMarkdown(c.MarkdownDir, htmltomarkdown.NewConverter()))
		}
		sinks = append(sinks, prodfs.NewPageStore(htmlDir, textDir, opts...))
	}

	if c.DB != "" {
		db := sqlite.NewDB(c.DB)
		if err := db.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "Hint: Set PRODNER_DB to use a different database path\n")
			return nil, nil, fmt.Errorf("failed to open database at %q: %w", c.DB, err)
		}
		sinks = append(sinks, sqlite.NewPageService(db))
		closeFn = func() { _ = db.Close() }
	}

	if len(sinks) == 0 {
		return nil, closeFn, nil
	}
	return prodslog.NewLoggingPageSink(sinks, deps.logger()), closeFn, nil
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, prodner.Errorf(prodner.EINVALID, "open URL list: %v", err)
	}
	defer f.Close()
	return prodcsv.ReadURLs(f)
}
