package prodner

// Extractor reduces a page to its main content, removing boilerplate
// such as navigation, footers and sidebars.
type Extractor interface {
	// Extract processes raw HTML and returns the main content as HTML.
	Extract(html string) (contentHTML string, err error)
}

// ExtractContent runs e over html. A nil extractor, or one that finds no
// main content, leaves html unchanged.
func ExtractContent(e Extractor, html string) (string, error) {
	if e == nil {
		return html, nil
	}
	content, err := e.Extract(html)
	if err != nil {
		return "", err
	}
	if content == "" {
		return html, nil
	}
	return content, nil
}
