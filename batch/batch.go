// Package batch fetches and normalizes many URLs concurrently and accounts
// for partial failure. One bad URL never aborts the run.
package batch

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"time"

	"github.com/fwojciec/prodner"
	"golang.org/x/sync/errgroup"
)

// Processor runs the fetch, extract and normalize pipeline over a URL list.
// Fetcher and Normalizer are required; every other field is optional.
type Processor struct {
	Fetcher      prodner.Fetcher
	Normalizer   prodner.Normalizer
	Extractor    prodner.Extractor
	Sink         prodner.PageSink
	TokenCounter prodner.TokenCounter
	RateLimiter  prodner.DomainLimiter
	Metrics      *Metrics
	Logf         LogFunc

	// Concurrency bounds in-flight URLs. Defaults to runtime.NumCPU().
	Concurrency int

	// RetryDelays are the waits between fetch attempts. Nil uses
	// DefaultRetryDelays; an empty slice disables retry.
	RetryDelays []time.Duration

	// Now returns the fetch timestamp. Defaults to time.Now.
	Now func() time.Time
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressSinkFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress. It is always
// called from the goroutine running ProcessAll.
type ProgressFunc func(event ProgressEvent)

// urlResult holds the outcome of processing a single URL.
type urlResult struct {
	position int
	page     *prodner.PageSource
	text     string
	err      error
}

// ProcessAll processes every URL and returns the aggregate result.
//
// Per-URL failures, including panics in a pipeline stage, are counted in
// BatchResult.Failed and never returned as an error. Records hold one entry
// per URL whose normalized text is non-empty, in input order, each with no
// spans. Each page goes to the sink as soon as it is processed. Cancelling
// ctx makes the remaining URLs fail fast, while pages already fetched are
// still saved.
func (p *Processor) ProcessAll(ctx context.Context, urls []string, progress ProgressFunc) (*prodner.BatchResult, error) {
	if p.Fetcher == nil || p.Normalizer == nil {
		return nil, prodner.Errorf(prodner.EINVALID, "batch processor requires a fetcher and a normalizer")
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	total := len(urls)
	resultCh := make(chan urlResult, total)

	progress(ProgressEvent{Type: ProgressStarted, Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				resultCh <- p.processURL(gctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Only this goroutine touches the aggregate, so no locking is needed.
	// Pages already fetched are saved even after ctx is cancelled.
	saveCtx := context.WithoutCancel(ctx)
	records := make([]*prodner.AnnotationRecord, total)
	completed := 0
	res := &prodner.BatchResult{Total: total, Records: []*prodner.AnnotationRecord{}}
	for r := range resultCh {
		completed++
		u := urls[r.position]

		if r.err != nil {
			res.Failed++
			p.observe(outcomeFailed)
			progress(ProgressEvent{Type: ProgressFailed, Completed: completed, Total: total, URL: u, Error: r.err})
			continue
		}

		res.Succeeded++
		if r.text == "" {
			p.observe(outcomeEmpty)
			progress(ProgressEvent{Type: ProgressCompleted, Completed: completed, Total: total, URL: u})
			continue
		}
		p.observe(outcomeSucceeded)

		records[r.position] = &prodner.AnnotationRecord{SourceURL: u, Text: r.text, Spans: []prodner.Span{}}
		res.Bytes += len(r.text)
		res.Tokens += p.countTokens(saveCtx, u, r.text)
		progress(ProgressEvent{Type: ProgressCompleted, Completed: completed, Total: total, URL: u})

		if err := p.save(saveCtx, r.page, r.text); err != nil {
			if p.Metrics != nil {
				p.Metrics.SinkFailures.Inc()
			}
			progress(ProgressEvent{Type: ProgressSinkFailed, Completed: completed, Total: total, URL: u, Error: err})
		}
	}

	for _, rec := range records {
		if rec != nil {
			res.Records = append(res.Records, rec)
		}
	}

	progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return res, nil
}

// processURL fetches, extracts and normalizes a single URL.
func (p *Processor) processURL(ctx context.Context, position int, rawURL string) (result urlResult) {
	result.position = position

	defer func() {
		if r := recover(); r != nil {
			result.page = nil
			result.text = ""
			result.err = prodner.Errorf(prodner.EINTERNAL, "panic processing %s: %v", rawURL, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		result.err = err
		return result
	}

	if p.RateLimiter != nil {
		if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
			if err := p.RateLimiter.Wait(ctx, u.Host); err != nil {
				result.err = err
				return result
			}
		}
	}

	begin := time.Now()
	html, err := FetchWithRetry(ctx, rawURL, p.Fetcher.Fetch, p.Logf, p.RetryDelays)
	if p.Metrics != nil {
		p.Metrics.FetchDuration.Observe(time.Since(begin).Seconds())
	}
	if err != nil {
		result.err = err
		return result
	}

	content, err := prodner.ExtractContent(p.Extractor, html)
	if err != nil {
		result.err = fmt.Errorf("extract %s: %w", rawURL, err)
		return result
	}

	result.page = &prodner.PageSource{URL: rawURL, HTML: html, FetchedAt: p.now()}
	result.text = p.Normalizer.Normalize(content)
	return result
}

// save hands a page to the sink. A panicking sink fails only this page.
func (p *Processor) save(ctx context.Context, page *prodner.PageSource, text string) error {
	if p.Sink == nil {
		return nil
	}
	return guard(page.URL, func() error {
		return p.Sink.SavePage(ctx, page, text)
	})
}

// countTokens returns the estimated tokens in text, or 0 when no counter
// is configured or counting fails.
func (p *Processor) countTokens(ctx context.Context, rawURL, text string) int {
	if p.TokenCounter == nil {
		return 0
	}
	var tokens int
	err := guard(rawURL, func() error {
		n, err := p.TokenCounter.CountTokens(ctx, text)
		tokens = n
		return err
	})
	if err != nil {
		if p.Logf != nil {
			p.Logf("count tokens %s: %v", rawURL, err)
		}
		return 0
	}
	return tokens
}

// guard runs fn and turns a panic into an EINTERNAL error.
func guard(rawURL string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = prodner.Errorf(prodner.EINTERNAL, "panic processing %s: %v", rawURL, r)
		}
	}()
	return fn()
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Processor) observe(outcome string) {
	if p.Metrics != nil {
		p.Metrics.URLs.WithLabelValues(outcome).Inc()
	}
}
