package batch

import (
	"context"

	"github.com/fwojciec/prodner"
)

// ContentDiffers reports whether rendered HTML yields substantially more
// visible text than plain HTML: more than half again as much. It signals
// that a site builds its product listings in JavaScript.
func ContentDiffers(plainHTML, renderedHTML string, n prodner.Normalizer) bool {
	plainLen := len(n.Normalize(plainHTML))
	renderedLen := len(n.Normalize(renderedHTML))

	if plainLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(plainLen)*1.5
}

// ProbeFetcher fetches sourceURL with both fetchers and returns the one the
// batch should use. Plain wins unless rendering reveals more text. When one
// fetch fails the other fetcher is returned. It never fails.
func ProbeFetcher(ctx context.Context, sourceURL string, plain, rendered prodner.Fetcher, n prodner.Normalizer) prodner.Fetcher {
	plainHTML, err := plain.Fetch(ctx, sourceURL)
	if err != nil {
		return rendered
	}

	renderedHTML, err := rendered.Fetch(ctx, sourceURL)
	if err != nil {
		return plain
	}

	if ContentDiffers(plainHTML, renderedHTML, n) {
		return rendered
	}
	return plain
}
