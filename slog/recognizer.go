package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodner"
)

// Ensure LoggingRecognizer implements prodner.Recognizer.
var _ prodner.Recognizer = (*LoggingRecognizer)(nil)

// LoggingRecognizer wraps a Recognizer with logging.
type LoggingRecognizer struct {
	next   prodner.Recognizer
	logger *slog.Logger
}

// NewLoggingRecognizer creates a new LoggingRecognizer.
func NewLoggingRecognizer(next prodner.Recognizer, logger *slog.Logger) *LoggingRecognizer {
	return &LoggingRecognizer{next: next, logger: logger}
}

// Recognize delegates to the wrapped recognizer and logs the span count.
func (r *LoggingRecognizer) Recognize(ctx context.Context, text string) (spans []prodner.Span, err error) {
	defer func(begin time.Time) {
		r.logger.Info("recognize",
			"bytes", len(text),
			"spans", len(spans),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Recognize(ctx, text)
}
