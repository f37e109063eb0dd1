// Package http provides an HTTP-based implementation of prodner.Fetcher
// and the JSON serving boundary for label extraction.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/prodner"
)

const (
	// DefaultFetchTimeout bounds a whole request including the body read.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize caps the number of bytes read from a response.
	DefaultMaxBodySize = 10 << 20

	maxRedirects = 10
)

// Ensure Fetcher implements prodner.Fetcher at compile time.
var _ prodner.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// It follows redirects and never retries.
type Fetcher struct {
	client         *http.Client
	timeout        time.Duration
	connectTimeout time.Duration
	userAgent      string
	maxBodySize    int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the overall timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithConnectTimeout sets the timeout for establishing a connection.
// It must be shorter than the overall timeout; otherwise, and by default,
// a third of the overall timeout is used.
func WithConnectTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.connectTimeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.connectTimeout <= 0 || f.connectTimeout >= f.timeout {
		f.connectTimeout = f.timeout / 3
	}

	dialer := &net.Dialer{
		Timeout:   f.connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = f.connectTimeout

	f.client = &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return f
}

// ConnectTimeout returns the effective connection timeout.
func (f *Fetcher) ConnectTimeout() time.Duration {
	return f.connectTimeout
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := prodner.ValidateURL(url); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", prodner.Errorf(prodner.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &prodner.FetchError{
			URL:        url,
			Kind:       prodner.FetchStatus,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return "", classify(url, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return "", &prodner.FetchError{
			URL:  url,
			Kind: prodner.FetchNetwork,
			Err:  fmt.Errorf("content too large (exceeds %d bytes)", f.maxBodySize),
		}
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this only drops idle
// connections since http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// classify wraps a transport error as a timeout or network FetchError.
func classify(url string, err error) error {
	kind := prodner.FetchNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = prodner.FetchTimeout
	}
	return &prodner.FetchError{URL: url, Kind: kind, Err: err}
}
