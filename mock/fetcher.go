package mock

import (
	"context"

	"github.com/fwojciec/prodner"
)

var _ prodner.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of prodner.Fetcher.
// A nil CloseFn makes Close a no-op.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

// Pages returns a Fetcher serving canned HTML by URL. Unknown URLs fail
// the way a real fetcher reports a 404.
func Pages(pages map[string]string) *Fetcher {
	return &Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			html, ok := pages[url]
			if !ok {
				return "", &prodner.FetchError{URL: url, Kind: prodner.FetchStatus, StatusCode: 404}
			}
			return html, nil
		},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
