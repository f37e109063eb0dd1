package prodner

import (
	"context"
	"errors"
	"time"
)

// PageSink persists fetched pages alongside their normalized text.
// Batch processing calls it once per page that normalizes to non-empty text.
type PageSink interface {
	SavePage(ctx context.Context, page *PageSource, text string) error
}

// PageSinks fans a page out to several sinks. Every sink is called even
// when an earlier one fails; the failures are joined.
type PageSinks []PageSink

func (s PageSinks) SavePage(ctx context.Context, page *PageSource, text string) error {
	var errs []error
	for _, sink := range s {
		if err := sink.SavePage(ctx, page, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StoredPage is a page kept by a PageService.
type StoredPage struct {
	ID          string
	SourceURL   string
	HTML        string
	Text        string
	ContentHash string
	FetchedAt   time.Time
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	SourceURL *string

	Limit  int
	Offset int
}

// PageService stores pages and looks them up again. Saving a URL that is
// already stored replaces the earlier copy.
type PageService interface {
	PageSink

	// FindPageByURL returns ENOTFOUND if the URL has not been stored.
	FindPageByURL(ctx context.Context, url string) (*StoredPage, error)

	// FindPages returns pages ordered by fetch time, oldest first.
	FindPages(ctx context.Context, filter PageFilter) ([]*StoredPage, error)

	// DeletePage returns ENOTFOUND if no page has the given id.
	DeletePage(ctx context.Context, id string) error
}

// Record returns the page as a corpus record with no spans.
func (p *StoredPage) Record() *AnnotationRecord {
	return &AnnotationRecord{SourceURL: p.SourceURL, Text: p.Text, Spans: []Span{}}
}
