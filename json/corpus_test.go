package json_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCorpus(t *testing.T) {
	t.Parallel()

	t.Run("reads records with spans", func(t *testing.T) {
		t.Parallel()

		in := `[{"source_url": "https://example.com", "text": "Buy Apple Watch now",
			"spans": [{"start": 4, "end": 15, "label": "PRODUCT", "text": "Apple Watch"}]}]`

		records, skipped, err := json.ReadCorpus(strings.NewReader(in))

		require.NoError(t, err)
		assert.Zero(t, skipped)
		assert.Equal(t, []*prodner.AnnotationRecord{{
			SourceURL: "https://example.com",
			Text:      "Buy Apple Watch now",
			Spans:     []prodner.Span{{Start: 4, End: 15, Label: "PRODUCT", Text: "Apple Watch"}},
		}}, records)
	})

	t.Run("converts code point offsets to byte offsets", func(t *testing.T) {
		t.Parallel()

		in := `[{"text": "Café’s pick: Apple Watch",
			"spans": [{"start": 13, "end": 24, "label": "PRODUCT", "text": "Apple Watch"}]}]`

		records, _, err := json.ReadCorpus(strings.NewReader(in))

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []prodner.Span{{Start: 16, End: 27, Label: "PRODUCT", Text: "Apple Watch"}}, records[0].Spans)
		assert.NoError(t, records[0].Validate())
	})

	t.Run("accepts legacy span keys", func(t *testing.T) {
		t.Parallel()

		in := `[
			{"text": "Pixel 8", "entities": [{"start": 0, "end": 7, "label": "PRODUCT", "text": "Pixel 8"}]},
			{"text": "Galaxy", "entits": [{"start": 0, "end": 6, "label": "PRODUCT", "text": "Galaxy"}]}
		]`

		records, _, err := json.ReadCorpus(strings.NewReader(in))

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Pixel 8", records[0].Spans[0].Text)
		assert.Equal(t, "Galaxy", records[1].Spans[0].Text)
	})

	t.Run("defaults missing spans to empty", func(t *testing.T) {
		t.Parallel()

		records, _, err := json.ReadCorpus(strings.NewReader(`[{"text": "plain"}]`))

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.NotNil(t, records[0].Spans)
		assert.Empty(t, records[0].Spans)
	})

	t.Run("skips malformed entries and counts them", func(t *testing.T) {
		t.Parallel()

		in := `[42, "text", {"source_url": "x"}, {"text": ""}, {"text": null}, {"text": "kept", "spans": [7, {"start": 0, "end": 4, "label": "PRODUCT", "text": "kept"}]}]`

		records, skipped, err := json.ReadCorpus(strings.NewReader(in))

		require.NoError(t, err)
		assert.Equal(t, 5, skipped)
		require.Len(t, records, 1)
		assert.Equal(t, []prodner.Span{{Start: 0, End: 4, Label: "PRODUCT", Text: "kept"}}, records[0].Spans)
	})

	t.Run("fails with EFORMAT when top level is not an array", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{`{"text": "x"}`, `not json`, ``, `"string"`} {
			_, _, err := json.ReadCorpus(strings.NewReader(in))
			assert.Equal(t, prodner.EFORMAT, prodner.ErrorCode(err), in)
		}
	})
}

func TestWriteCorpus(t *testing.T) {
	t.Parallel()

	t.Run("writes indented JSON without escaping HTML", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := json.WriteCorpus(&buf, []*prodner.AnnotationRecord{{
			SourceURL: "https://example.com/?a=1&b=2",
			Text:      "<Fish> & Chips",
		}})

		require.NoError(t, err)
		assert.Equal(t, `[
  {
    "source_url": "https://example.com/?a=1&b=2",
    "text": "<Fish> & Chips",
    "spans": []
  }
]
`, buf.String())
	})

	t.Run("writes empty array for no records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, json.WriteCorpus(&buf, nil))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("writes code point offsets for non-ASCII text", func(t *testing.T) {
		t.Parallel()

		text := "Café’s pick: Apple Watch"
		matches, err := prodner.FindSpans(text, "apple watch", prodner.MatchOptions{WholeWord: true})
		require.NoError(t, err)
		require.Len(t, matches, 1)

		var buf bytes.Buffer
		require.NoError(t, json.WriteCorpus(&buf, []*prodner.AnnotationRecord{{
			Text:  text,
			Spans: []prodner.Span{matches[0].Span(prodner.LabelProduct)},
		}}))

		assert.Contains(t, buf.String(), `"start": 13`)
		assert.Contains(t, buf.String(), `"end": 24`)
	})

	t.Run("does not modify the written records", func(t *testing.T) {
		t.Parallel()

		rec := &prodner.AnnotationRecord{
			Text:  "Größe Pixel 8",
			Spans: []prodner.Span{{Start: 8, End: 15, Label: "PRODUCT", Text: "Pixel 8"}},
		}
		require.NoError(t, json.WriteCorpus(&bytes.Buffer{}, []*prodner.AnnotationRecord{rec}))

		assert.Equal(t, 8, rec.Spans[0].Start)
	})

	t.Run("round trips through ReadCorpus", func(t *testing.T) {
		t.Parallel()

		want := []*prodner.AnnotationRecord{{
			SourceURL: "https://example.com",
			Text:      "Größe™ “new” Pixel 8",
			Spans:     []prodner.Span{{Start: 21, End: 28, Label: "PRODUCT", Text: "Pixel 8"}},
		}}
		require.NoError(t, want[0].Validate())
		var buf bytes.Buffer
		require.NoError(t, json.WriteCorpus(&buf, want))

		got, skipped, err := json.ReadCorpus(&buf)

		require.NoError(t, err)
		assert.Zero(t, skipped)
		assert.Equal(t, want, got)
	})
}
