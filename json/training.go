package json

import (
	"io"

	"github.com/fwojciec/prodner"
)

// ConvertStats reports what ConvertTraining kept and dropped.
type ConvertStats struct {
	Examples       int
	SkippedRecords int
	SkippedSpans   int
}

// ConvertTraining reads a corpus from r and returns the training examples.
//
// Offsets are copied from the corpus unchanged, so entities keep the code
// point offsets the trainer slices text with.
//
// Records without text or without a span list are skipped. Span entries
// missing start, end or label are dropped individually. Both are counted
// in the returned stats.
func ConvertTraining(r io.Reader) ([]prodner.TrainingExample, ConvertStats, error) {
	entries, skipped, err := decodeEntries(r)
	if err != nil {
		return nil, ConvertStats{}, err
	}

	stats := ConvertStats{SkippedRecords: skipped}
	examples := make([]prodner.TrainingExample, 0, len(entries))
	for _, e := range entries {
		if !e.HasSpans {
			stats.SkippedRecords++
			continue
		}
		ex := prodner.TrainingExample{Text: e.Text, Entities: []prodner.TrainingEntity{}}
		for _, s := range e.Spans {
			if s.Start == nil || s.End == nil || s.Label == "" {
				stats.SkippedSpans++
				continue
			}
			ex.Entities = append(ex.Entities, prodner.TrainingEntity{Start: *s.Start, End: *s.End, Label: s.Label})
		}
		examples = append(examples, ex)
	}
	stats.Examples = len(examples)
	return examples, stats, nil
}

// WriteTraining encodes examples as an indented JSON array.
func WriteTraining(w io.Writer, examples []prodner.TrainingExample) error {
	if examples == nil {
		examples = []prodner.TrainingExample{}
	}
	return encode(w, examples)
}
