package prodner

// Converter renders a fetched page as Markdown.
type Converter interface {
	// Convert renders html as Markdown. Relative links and images resolve
	// against sourceURL when it is absolute.
	Convert(html, sourceURL string) (string, error)
}
