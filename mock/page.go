package mock

import (
	"context"

	"github.com/fwojciec/prodner"
)

var _ prodner.PageSink = (*PageSink)(nil)

// PageSink is a mock implementation of prodner.PageSink.
type PageSink struct {
	SavePageFn func(ctx context.Context, page *prodner.PageSource, text string) error
}

func (s *PageSink) SavePage(ctx context.Context, page *prodner.PageSource, text string) error {
	return s.SavePageFn(ctx, page, text)
}
