package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/prodner"
	prodhttp "github.com/fwojciec/prodner/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := prodhttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", html)
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := prodhttp.NewFetcher(prodhttp.WithUserAgent("prodner-test/1.0"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "prodner-test/1.0", got)
	})

	t.Run("follows redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("moved here"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := prodhttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, "moved here", html)
	})

	t.Run("rejects non-http scheme before any request", func(t *testing.T) {
		t.Parallel()

		fetcher := prodhttp.NewFetcher()
		defer fetcher.Close()

		for _, url := range []string{"ftp://example.com", "example.com", "", "file:///etc/passwd"} {
			_, err := fetcher.Fetch(context.Background(), url)
			require.Error(t, err, url)
			assert.Equal(t, prodner.EINVALID, prodner.ErrorCode(err), url)
		}
	})

	t.Run("reports timeout when server is slow", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := prodhttp.NewFetcher(prodhttp.WithTimeout(20 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)

		var fe *prodner.FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, prodner.FetchTimeout, fe.Kind)
		assert.Equal(t, prodner.EFETCH, prodner.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := prodhttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("returns network error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := prodhttp.NewFetcher(prodhttp.WithTimeout(500 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assert.Equal(t, prodner.EFETCH, prodner.ErrorCode(err))
	})

	t.Run("returns status error for 4xx and 5xx", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusBadGateway} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			fetcher := prodhttp.NewFetcher()
			_, err := fetcher.Fetch(context.Background(), server.URL)
			fetcher.Close()
			server.Close()

			var fe *prodner.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, prodner.FetchStatus, fe.Kind)
			assert.Equal(t, status, fe.StatusCode)
			assert.Equal(t, status >= 500, fe.Temporary())
		}
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("0123456789"))
		}))
		defer server.Close()

		fetcher := prodhttp.NewFetcher(prodhttp.WithMaxBodySize(5))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})
}

func TestNewFetcher_ConnectTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []prodhttp.Option
		connect time.Duration
	}{
		{"defaults to a third of the default timeout", nil, 10 * time.Second},
		{"defaults to a third of a custom timeout", []prodhttp.Option{prodhttp.WithTimeout(9 * time.Second)}, 3 * time.Second},
		{"keeps a shorter connect timeout", []prodhttp.Option{prodhttp.WithTimeout(9 * time.Second), prodhttp.WithConnectTimeout(2 * time.Second)}, 2 * time.Second},
		{"clamps a connect timeout equal to the total", []prodhttp.Option{prodhttp.WithTimeout(9 * time.Second), prodhttp.WithConnectTimeout(9 * time.Second)}, 3 * time.Second},
		{"clamps a connect timeout longer than the total", []prodhttp.Option{prodhttp.WithConnectTimeout(time.Minute)}, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := prodhttp.NewFetcher(tt.opts...)
			defer f.Close()

			assert.Equal(t, tt.connect, f.ConnectTimeout())
		})
	}
}
