package prodner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LabelProduct is the label attached to product mentions.
const LabelProduct = "PRODUCT"

// Span is a labeled substring of a text.
// Start and End are byte offsets into the text and Text == text[Start:End].
// Serialized corpora carry code point offsets instead; see RuneOffset.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Validate returns EINVALID if the span does not address body.
func (s Span) Validate(body string) error {
	if s.Start < 0 || s.Start >= s.End || s.End > len(body) {
		return Errorf(EINVALID, "span [%d:%d] out of bounds for text of length %d", s.Start, s.End, len(body))
	}
	if body[s.Start:s.End] != s.Text {
		return Errorf(EINVALID, "span [%d:%d] text %q does not match %q", s.Start, s.End, s.Text, body[s.Start:s.End])
	}
	if s.Label == "" {
		return Errorf(EINVALID, "span label required")
	}
	return nil
}

// MatchOptions configures FindSpans.
type MatchOptions struct {
	// WholeWord accepts a match only when both of its edges are word
	// boundaries: positions where the adjacent characters are not both
	// word characters (letters, numbers, underscore).
	WholeWord bool

	// CaseSensitive compares runes exactly. Otherwise runes are compared
	// under Unicode simple case folding; reported text keeps its original
	// casing either way.
	CaseSensitive bool
}

// Match is an unlabeled occurrence of a query in a text.
type Match struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Span returns the match as a span carrying label.
func (m Match) Span(label string) Span {
	return Span{Start: m.Start, End: m.End, Label: label, Text: m.Text}
}

// FindSpans returns all occurrences of query in text in ascending order of
// Start. An empty query yields no matches.
//
// In substring mode scanning resumes one character after the start of each
// match, so overlapping occurrences are all reported: "aa" occurs in "aaa"
// at 0 and 1. In whole-word mode scanning resumes at the end of each match.
func FindSpans(text, query string, opts MatchOptions) ([]Match, error) {
	if query == "" {
		return nil, nil
	}
	if !utf8.ValidString(query) {
		return nil, Errorf(EINVALID, "query is not valid UTF-8")
	}

	var matches []Match
	pos := 0
	for pos < len(text) {
		if opts.CaseSensitive {
			idx := strings.Index(text[pos:], query)
			if idx < 0 {
				break
			}
			pos += idx
		}

		end, ok := matchAt(text, pos, query, opts.CaseSensitive)
		if ok && (!opts.WholeWord || (isBoundary(text, pos) && isBoundary(text, end))) {
			matches = append(matches, Match{Start: pos, End: end, Text: text[pos:end]})
			if opts.WholeWord {
				pos = end
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return matches, nil
}

// matchAt reports whether query occurs in text at pos and where it ends.
func matchAt(text string, pos int, query string, caseSensitive bool) (int, bool) {
	if caseSensitive {
		if strings.HasPrefix(text[pos:], query) {
			return pos + len(query), true
		}
		return 0, false
	}

	i := pos
	for _, qr := range query {
		if i >= len(text) {
			return 0, false
		}
		tr, size := utf8.DecodeRuneInString(text[i:])
		if !equalFoldRune(tr, qr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// isBoundary reports whether the characters on either side of pos are not
// both word characters. String edges are always boundaries.
func isBoundary(text string, pos int) bool {
	if pos <= 0 || pos >= len(text) {
		return true
	}
	before, _ := utf8.DecodeLastRuneInString(text[:pos])
	after, _ := utf8.DecodeRuneInString(text[pos:])
	return !(isWordRune(before) && isWordRune(after))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// RuneOffset converts a byte offset into text to a code point offset.
// Offsets past the end of text keep their distance from the end.
func RuneOffset(text string, byteOffset int) int {
	if byteOffset <= 0 {
		return byteOffset
	}
	if byteOffset > len(text) {
		return utf8.RuneCountInString(text) + byteOffset - len(text)
	}
	return utf8.RuneCountInString(text[:byteOffset])
}

// ByteOffset converts a code point offset into text to a byte offset.
// It is the inverse of RuneOffset.
func ByteOffset(text string, runeOffset int) int {
	if runeOffset <= 0 {
		return runeOffset
	}
	n := 0
	for i := range text {
		if n == runeOffset {
			return i
		}
		n++
	}
	return len(text) + runeOffset - n
}
