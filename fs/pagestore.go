// Package fs provides file-based storage for fetched pages and corpora.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/prodner"
)

// Ensure PageStore implements prodner.PageSink at compile time.
var _ prodner.PageSink = (*PageStore)(nil)

// maxFilenameBytes bounds the base name derived from a URL.
const maxFilenameBytes = 150

// PageStore writes each page as <name>.html into HTMLDir and the
// normalized text as <name>.txt into TextDir, where name is derived from
// the page URL. An empty directory disables that output.
type PageStore struct {
	HTMLDir     string
	TextDir     string
	MarkdownDir string

	// Converter renders the Markdown copy. Required when MarkdownDir is set.
	Converter prodner.Converter
}

// Option configures a PageStore.
type Option func(*PageStore)

// WithMarkdown also writes <name>.md rendered by c into dir.
func WithMarkdown(dir string, c prodner.Converter) Option {
	return func(s *PageStore) {
		s.MarkdownDir = dir
		s.Converter = c
	}
}

// NewPageStore creates a PageStore writing into htmlDir and textDir.
func NewPageStore(htmlDir, textDir string, opts ...Option) *PageStore {
	s := &PageStore{HTMLDir: htmlDir, TextDir: textDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SavePage writes the page files, creating directories as needed.
func (s *PageStore) SavePage(ctx context.Context, page *prodner.PageSource, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := URLToFilename(page.URL)
	if name == "" {
		return prodner.Errorf(prodner.EINVALID, "cannot derive a file name from %q", page.URL)
	}

	if s.HTMLDir != "" {
		if err := writeFile(s.HTMLDir, name+".html", page.HTML); err != nil {
			return err
		}
	}
	if s.TextDir != "" {
		if err := writeFile(s.TextDir, name+".txt", FormatText(text, page.URL)); err != nil {
			return err
		}
	}
	if s.MarkdownDir != "" && s.Converter != nil {
		md, err := s.Converter.Convert(page.HTML, page.URL)
		if err != nil {
			return fmt.Errorf("convert %s: %w", page.URL, err)
		}
		if err := writeFile(s.MarkdownDir, name+".md", md); err != nil {
			return err
		}
	}
	return nil
}

// URLToFilename converts a URL to a flat base file name without extension.
// Example: https://shop.example.com/p/watch?id=1 → shop.example.com_p_watchid=1
func URLToFilename(rawURL string) string {
	name := strings.TrimPrefix(rawURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/*?:"<>|`, r) {
			return -1
		}
		return r
	}, name)
	return truncate(name, maxFilenameBytes)
}

// FormatText appends the source URL footer to page text.
func FormatText(text, sourceURL string) string {
	return text + "\n\nSource URL: " + sourceURL
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func writeFile(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
}
