package prodner

// Normalizer reduces HTML to flat visible text.
//
// Normalize is total and deterministic: script and style elements are
// dropped with their content, remaining text nodes are trimmed and joined
// with single spaces. Malformed markup yields best-effort text.
type Normalizer interface {
	Normalize(html string) string
}

// NormalizedText is the visible text of a fetched page.
type NormalizedText struct {
	SourceURL string
	Body      string
}
