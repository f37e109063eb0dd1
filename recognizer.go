package prodner

import (
	"context"
	"sort"
	"strings"
)

// Recognizer infers labeled spans from raw text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// Ensure GazetteerRecognizer implements Recognizer at compile time.
var _ Recognizer = (*GazetteerRecognizer)(nil)

// GazetteerRecognizer recognizes a fixed list of names using whole-word,
// case-insensitive search. It needs no trained model.
type GazetteerRecognizer struct {
	names []string
	label string
}

// NewGazetteerRecognizer returns a recognizer labeling every occurrence of
// names with label. Blank and duplicate names are ignored.
func NewGazetteerRecognizer(label string, names []string) *GazetteerRecognizer {
	seen := make(map[string]bool, len(names))
	r := &GazetteerRecognizer{label: label}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		r.names = append(r.names, name)
	}
	return r
}

// Recognize returns spans for every gazetteer name found in text, ordered by
// start offset. Where names overlap, the longer match at a start wins and
// later overlapping matches are dropped.
func (r *GazetteerRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	var spans []Span
	for _, name := range r.names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := FindSpans(text, name, MatchOptions{WholeWord: true})
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			spans = append(spans, m.Span(r.label))
		}
	}
	return dropOverlapping(spans), nil
}

// dropOverlapping sorts spans by start (longest first on ties) and removes
// any span overlapping an earlier kept one.
func dropOverlapping(spans []Span) []Span {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	kept := spans[:0]
	end := -1
	for _, s := range spans {
		if s.Start < end {
			continue
		}
		kept = append(kept, s)
		end = s.End
	}
	return kept
}
