package batch

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/prodner"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry fetches url, retrying transient failures after each of
// delays in turn. Nil delays use DefaultRetryDelays; an empty slice
// disables retry. Errors that Retryable rejects end the loop immediately.
// The logger, if provided, is called for each retry.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !Retryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return "", lastErr
		default:
		}

		if logger != nil {
			logger("  retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", lastErr
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}

// Retryable reports whether a failed fetch is worth another attempt.
// Timeouts, network failures and 5xx responses are; 4xx responses,
// application errors such as an invalid URL, and cancellation are not.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var fe *prodner.FetchError
	if errors.As(err, &fe) {
		return fe.Temporary()
	}
	var e *prodner.Error
	return !errors.As(err, &e)
}
