// Package goquery implements prodner.Normalizer on top of goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prodner"
	"golang.org/x/net/html"
)

// Ensure Normalizer implements prodner.Normalizer at compile time.
var _ prodner.Normalizer = (*Normalizer)(nil)

// Normalizer flattens HTML to its visible text.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize drops script and style elements with their content and joins
// the remaining trimmed, non-empty text nodes with single spaces.
// Normalizing the output again is a no-op only while it contains no text
// that reads as markup, such as an escaped "&lt;b&gt;".
func (n *Normalizer) Normalize(rawHTML string) string {
	// Scripting is disabled so <noscript> content parses as markup
	// instead of a single raw text node.
	root, err := html.ParseWithOptions(strings.NewReader(rawHTML), html.ParseOptionEnableScripting(false))
	if err != nil {
		return ""
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style").Remove()

	var parts []string
	for _, node := range doc.Nodes {
		collectText(node, &parts)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// collectText appends trimmed text nodes below n in document order.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
