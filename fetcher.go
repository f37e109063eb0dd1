package prodner

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the HTML for url. It returns EINVALID if url does not
	// use the http or https scheme, and a *FetchError for network or HTTP
	// status failures. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases fetcher resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// PageSource is the raw result of a successful fetch.
type PageSource struct {
	URL       string
	HTML      string
	FetchedAt time.Time
}

// FetchErrorKind classifies a FetchError.
type FetchErrorKind string

// FetchErrorKind constants.
const (
	FetchStatus  FetchErrorKind = "status"
	FetchTimeout FetchErrorKind = "timeout"
	FetchNetwork FetchErrorKind = "network"
)

// FetchError is returned when a page could not be retrieved.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchStatus:
		return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
	case FetchTimeout:
		return fmt.Sprintf("timeout fetching %s", e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s failed", e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the fetch may succeed.
// Timeouts, network failures and 5xx responses are temporary; 4xx are not.
func (e *FetchError) Temporary() bool {
	if e.Kind == FetchStatus {
		return e.StatusCode >= 500
	}
	return true
}

// ValidateURL returns EINVALID unless rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Errorf(EINVALID, "a valid URL starting with http:// or https:// is required: %q", rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	return nil
}
