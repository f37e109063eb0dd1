// Package rod fetches pages through a headless Chrome browser so that
// product listings rendered by JavaScript are visible to the pipeline.
package rod

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/fwojciec/prodner"
)

// Ensure Fetcher implements prodner.Fetcher at compile time.
var _ prodner.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	timeout     time.Duration
	managerOpts []ManagerOption
}

// WithFetchTimeout sets the per-page load timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithRecycleAfter recycles the browser after n pages.
func WithRecycleAfter(n int64) FetcherOption {
	return func(c *fetcherConfig) {
		c.managerOpts = append(c.managerOpts, WithMaxPages(n))
	}
}

// WithUserAgent sets the User-Agent the browser presents to shops.
func WithUserAgent(ua string) FetcherOption {
	return func(c *fetcherConfig) {
		c.managerOpts = append(c.managerOpts, WithBrowserUserAgent(ua))
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.managerOpts...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager, timeout: cfg.timeout}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", prodner.Errorf(prodner.EINVALID, "fetcher is closed")
	}
	if err := prodner.ValidateURL(url); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, release, err := f.manager.OpenPage()
	if err != nil {
		return "", &prodner.FetchError{URL: url, Kind: prodner.FetchNetwork, Err: err}
	}
	defer release()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", fetchError(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fetchError(ctx, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fetchError(ctx, url, err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Recycles reports how many times the browser has been replaced.
func (f *Fetcher) Recycles() int {
	return f.manager.Recycles()
}

func fetchError(ctx context.Context, url string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &prodner.FetchError{URL: url, Kind: prodner.FetchTimeout, Err: context.DeadlineExceeded}
	}
	return &prodner.FetchError{URL: url, Kind: prodner.FetchNetwork, Err: err}
}
