package mock

import (
	"context"

	"github.com/fwojciec/prodner"
)

var (
	_ prodner.Normalizer   = (*Normalizer)(nil)
	_ prodner.Extractor    = (*Extractor)(nil)
	_ prodner.Converter    = (*Converter)(nil)
	_ prodner.TokenCounter = (*TokenCounter)(nil)
)

// Normalizer is a mock implementation of prodner.Normalizer.
type Normalizer struct {
	NormalizeFn func(html string) string
}

func (n *Normalizer) Normalize(html string) string {
	return n.NormalizeFn(html)
}

// Extractor is a mock implementation of prodner.Extractor.
type Extractor struct {
	ExtractFn func(html string) (string, error)
}

func (e *Extractor) Extract(html string) (string, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of prodner.Converter.
type Converter struct {
	ConvertFn func(html, sourceURL string) (string, error)
}

func (c *Converter) Convert(html, sourceURL string) (string, error) {
	return c.ConvertFn(html, sourceURL)
}

// TokenCounter is a mock implementation of prodner.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
