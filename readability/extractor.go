// Package readability extracts the main content of a page with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/prodner"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements prodner.Extractor at compile time.
var _ prodner.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the readable article content as HTML.
func (e *Extractor) Extract(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", prodner.Errorf(prodner.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", err
	}
	return article.Content, nil
}
