package mock

import (
	"context"

	"github.com/fwojciec/prodner"
)

var _ prodner.Recognizer = (*Recognizer)(nil)

// Recognizer is a mock implementation of prodner.Recognizer.
type Recognizer struct {
	RecognizeFn func(ctx context.Context, text string) ([]prodner.Span, error)
}

func (r *Recognizer) Recognize(ctx context.Context, text string) ([]prodner.Span, error) {
	return r.RecognizeFn(ctx, text)
}
