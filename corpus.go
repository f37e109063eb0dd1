package prodner

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AnnotationRecord is the text of one processed page and the spans labeled
// in it. Records produced by batch processing start with no spans.
type AnnotationRecord struct {
	SourceURL string `json:"source_url"`
	Text      string `json:"text"`
	Spans     []Span `json:"spans"`
}

// Validate returns an error if the record contains invalid fields.
func (r *AnnotationRecord) Validate() error {
	if r.Text == "" {
		return Errorf(EINVALID, "record text required")
	}
	for _, s := range r.Spans {
		if err := s.Validate(r.Text); err != nil {
			return err
		}
	}
	return nil
}

// BatchResult summarizes a batch run.
// Succeeded + Failed == Total, and len(Records) <= Succeeded since pages
// that normalize to empty text succeed without producing a record.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Records   []*AnnotationRecord

	// Bytes is the total size of normalized text.
	Bytes int
	// Tokens is the estimated token count when a TokenCounter is configured.
	Tokens int
}

// TrainingEntity is a positional (start, end, label) triple.
// It encodes as a JSON array.
type TrainingEntity struct {
	Start int
	End   int
	Label string
}

func (e TrainingEntity) MarshalJSON() ([]byte, error) {
	return marshal([]any{e.Start, e.End, e.Label})
}

// TrainingExample is one text with its entity triples.
// It encodes as [text, {"entities": [[start, end, label], ...]}].
type TrainingExample struct {
	Text     string
	Entities []TrainingEntity
}

func (e TrainingExample) MarshalJSON() ([]byte, error) {
	entities := e.Entities
	if entities == nil {
		entities = []TrainingEntity{}
	}
	return marshal([]any{e.Text, map[string]any{"entities": entities}})
}

// marshal encodes v without escaping HTML characters, so product text
// such as "Fish & Chips" survives verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// CorpusStats summarizes annotation progress over a corpus.
type CorpusStats struct {
	Total     int
	Processed int
}

// Unprocessed returns the number of records without a meaningful span.
func (s CorpusStats) Unprocessed() int {
	return s.Total - s.Processed
}

// Percentage returns the share of processed records, 0 for an empty corpus.
func (s CorpusStats) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Total) * 100
}

// ComputeCorpusStats counts records that carry at least one meaningful span:
// one with a non-zero offset or non-blank text.
func ComputeCorpusStats(records []*AnnotationRecord) CorpusStats {
	stats := CorpusStats{Total: len(records)}
	for _, r := range records {
		for _, s := range r.Spans {
			if s.Start != 0 || s.End != 0 || strings.TrimSpace(s.Text) != "" {
				stats.Processed++
				break
			}
		}
	}
	return stats
}

// Comparison contrasts predicted spans with ground truth for one text.
// Spans are matched on (Start, End, Label).
type Comparison struct {
	Matched []Span
	Missed  []Span
	Extra   []Span
}

// Compare matches predicted spans against expected spans.
func Compare(expected, predicted []Span) Comparison {
	type key struct {
		start, end int
		label      string
	}
	want := make(map[key]bool, len(expected))
	for _, s := range expected {
		want[key{s.Start, s.End, s.Label}] = true
	}

	var c Comparison
	found := make(map[key]bool, len(predicted))
	for _, s := range predicted {
		k := key{s.Start, s.End, s.Label}
		if want[k] {
			if !found[k] {
				c.Matched = append(c.Matched, s)
			}
			found[k] = true
			continue
		}
		c.Extra = append(c.Extra, s)
	}
	for _, s := range expected {
		if !found[key{s.Start, s.End, s.Label}] {
			c.Missed = append(c.Missed, s)
		}
	}
	return c
}
