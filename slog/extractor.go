package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/prodner"
)

// Ensure LoggingExtractor implements prodner.Extractor.
var _ prodner.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging of how much of
// the page survived extraction.
type LoggingExtractor struct {
	next   prodner.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next prodner.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor.
func (e *LoggingExtractor) Extract(html string) (content string, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("extract",
			"in_bytes", len(html),
			"out_bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
