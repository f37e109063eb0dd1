// Package annotate provides the interactive annotation workflow: a
// deduplicated span collection and the commands that search a text and
// curate spans into it.
//
// Nothing in this package is safe for concurrent use. A Session belongs to
// one annotator.
package annotate

import "github.com/fwojciec/prodner"

// Collection is an ordered set of accepted spans for one text.
// Two spans are the same entry when Start, End and Text are equal.
type Collection struct {
	spans []prodner.Span
}

// NewCollection returns a collection seeded with spans, skipping duplicates.
func NewCollection(spans ...prodner.Span) *Collection {
	c := &Collection{}
	for _, s := range spans {
		c.Add(s)
	}
	return c
}

// Add appends s unless an equal-by-key span is present.
// It reports whether the span was added.
func (c *Collection) Add(s prodner.Span) bool {
	if c.Contains(s) {
		return false
	}
	c.spans = append(c.spans, s)
	return true
}

// Contains reports whether a span with the same key is present.
func (c *Collection) Contains(s prodner.Span) bool {
	for _, existing := range c.spans {
		if existing.Start == s.Start && existing.End == s.End && existing.Text == s.Text {
			return true
		}
	}
	return false
}

// Remove deletes and returns the span at index.
// Returns ERANGE if index is not a valid position.
func (c *Collection) Remove(index int) (prodner.Span, error) {
	if index < 0 || index >= len(c.spans) {
		return prodner.Span{}, prodner.Errorf(prodner.ERANGE, "index %d out of range (collection has %d entries)", index, len(c.spans))
	}
	s := c.spans[index]
	c.spans = append(c.spans[:index], c.spans[index+1:]...)
	return s, nil
}

// Clear removes every span and returns how many were removed.
// Clearing is irreversible, so confirm must be true; otherwise Clear
// returns EINVALID and leaves the collection untouched.
func (c *Collection) Clear(confirm bool) (int, error) {
	if !confirm {
		return 0, prodner.Errorf(prodner.EINVALID, "confirmation required to remove all %d entries", len(c.spans))
	}
	n := len(c.spans)
	c.spans = nil
	return n, nil
}

// Export returns a copy of the spans in insertion order.
func (c *Collection) Export() []prodner.Span {
	out := make([]prodner.Span, len(c.spans))
	copy(out, c.spans)
	return out
}

// Len returns the number of spans.
func (c *Collection) Len() int {
	return len(c.spans)
}

// At returns the span at index.
func (c *Collection) At(index int) (prodner.Span, bool) {
	if index < 0 || index >= len(c.spans) {
		return prodner.Span{}, false
	}
	return c.spans[index], true
}
