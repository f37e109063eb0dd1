// Package htmltomarkdown renders product pages as Markdown, the readable
// rendition fs.PageStore keeps next to the raw HTML and normalized text.
package htmltomarkdown

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/prodner"
)

var _ prodner.Converter = (*Converter)(nil)

// Converter renders HTML with the CommonMark and table plugins, so feature
// sheets and price grids survive as Markdown tables.
type Converter struct {
	conv *converter.Converter
}

// NewConverter returns a Converter.
func NewConverter() *Converter {
	return &Converter{conv: converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)}
}

// Convert renders html as trimmed Markdown. Root-relative links and image
// sources are made absolute with the origin of sourceURL.
func (c *Converter) Convert(html, sourceURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", prodner.Errorf(prodner.EINVALID, "empty HTML input")
	}

	var md string
	var err error
	if origin := originOf(sourceURL); origin != "" {
		md, err = c.conv.ConvertString(html, converter.WithDomain(origin))
	} else {
		md, err = c.conv.ConvertString(html)
	}
	if err != nil {
		return "", fmt.Errorf("render markdown for %s: %w", sourceURL, err)
	}
	return strings.TrimSpace(md), nil
}

// originOf returns scheme://host for an absolute http(s) URL, else "".
func originOf(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
