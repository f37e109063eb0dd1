package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodner"
)

// Ensure LoggingPageSink implements prodner.PageSink.
var _ prodner.PageSink = (*LoggingPageSink)(nil)

// LoggingPageSink wraps a PageSink with debug logging.
type LoggingPageSink struct {
	next   prodner.PageSink
	logger *slog.Logger
}

// NewLoggingPageSink creates a new LoggingPageSink.
func NewLoggingPageSink(next prodner.PageSink, logger *slog.Logger) *LoggingPageSink {
	return &LoggingPageSink{next: next, logger: logger}
}

// SavePage delegates to the wrapped sink. Failures are logged as warnings.
func (s *LoggingPageSink) SavePage(ctx context.Context, page *prodner.PageSource, text string) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "save page",
			"url", page.URL,
			"bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SavePage(ctx, page, text)
}
