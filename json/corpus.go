// Package json reads and writes the annotation corpus and the training
// export as JSON documents.
package json

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/fwojciec/prodner"
)

// spanKeys are the record keys that may hold spans, in order of preference.
// Older corpora used "entities", and some carry the misspelling "entits".
var spanKeys = []string{"spans", "entities", "entits"}

// rawSpan decodes one span entry. Pointer fields distinguish missing keys
// from zero values.
type rawSpan struct {
	Start *int   `json:"start"`
	End   *int   `json:"end"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// entry is a corpus record decoded leniently.
type entry struct {
	SourceURL string
	Text      string
	Spans     []rawSpan
	HasSpans  bool
}

// ReadCorpus decodes a corpus: a JSON array of records.
//
// Span offsets on disk count code points, as the trainer does. They are
// converted to byte offsets into the record text.
//
// A document whose top level is not an array fails with EFORMAT. Entries
// that are not objects or have no text are skipped; skipped reports how
// many. Span entries that are not objects are dropped.
func ReadCorpus(r io.Reader) (records []*prodner.AnnotationRecord, skipped int, err error) {
	entries, skipped, err := decodeEntries(r)
	if err != nil {
		return nil, 0, err
	}

	records = make([]*prodner.AnnotationRecord, 0, len(entries))
	for _, e := range entries {
		rec := &prodner.AnnotationRecord{
			SourceURL: e.SourceURL,
			Text:      e.Text,
			Spans:     make([]prodner.Span, 0, len(e.Spans)),
		}
		for _, s := range e.Spans {
			span := prodner.Span{Label: s.Label, Text: s.Text}
			if s.Start != nil {
				span.Start = prodner.ByteOffset(e.Text, *s.Start)
			}
			if s.End != nil {
				span.End = prodner.ByteOffset(e.Text, *s.End)
			}
			rec.Spans = append(rec.Spans, span)
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// WriteCorpus encodes records as an indented JSON array. Span offsets are
// written as code point offsets. HTML characters are written as is.
func WriteCorpus(w io.Writer, records []*prodner.AnnotationRecord) error {
	out := make([]*prodner.AnnotationRecord, 0, len(records))
	for _, rec := range records {
		cp := *rec
		cp.Spans = make([]prodner.Span, len(rec.Spans))
		for i, s := range rec.Spans {
			s.Start = prodner.RuneOffset(rec.Text, s.Start)
			s.End = prodner.RuneOffset(rec.Text, s.End)
			cp.Spans[i] = s
		}
		out = append(out, &cp)
	}
	return encode(w, out)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func decodeEntries(r io.Reader) ([]entry, int, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, prodner.Errorf(prodner.EFORMAT, "corpus must be a JSON array of records: %v", err)
	}

	entries := make([]entry, 0, len(raw))
	skipped := 0
	for _, msg := range raw {
		e, ok := decodeEntry(msg)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

func decodeEntry(msg json.RawMessage) (entry, bool) {
	var fields map[string]json.RawMessage
	if !isObject(msg) || json.Unmarshal(msg, &fields) != nil {
		return entry{}, false
	}

	var e entry
	if json.Unmarshal(fields["text"], &e.Text) != nil || e.Text == "" {
		return entry{}, false
	}
	_ = json.Unmarshal(fields["source_url"], &e.SourceURL)

	for _, key := range spanKeys {
		list, ok := fields[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if json.Unmarshal(list, &items) != nil || items == nil {
			continue
		}
		e.HasSpans = true
		for _, item := range items {
			var s rawSpan
			if !isObject(item) || json.Unmarshal(item, &s) != nil {
				continue
			}
			e.Spans = append(e.Spans, s)
		}
		break
	}
	return e, true
}

func isObject(msg json.RawMessage) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
