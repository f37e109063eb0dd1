package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/prodner"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ prodner.PageService = (*PageService)(nil)

// PageService implements prodner.PageService using SQLite.
type PageService struct {
	db  *DB
	now func() time.Time
}

// NewPageService creates a new PageService.
func NewPageService(db *DB) *PageService {
	return &PageService{db: db, now: time.Now}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	var b [8]byte
	h := xxhash.Sum64String(content)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// SavePage stores page and its text, replacing any earlier copy of the URL.
// A page keeps its id across replacements.
func (s *PageService) SavePage(ctx context.Context, page *prodner.PageSource, text string) error {
	if err := prodner.ValidateURL(page.URL); err != nil {
		return err
	}

	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, source_url, html, text, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			html = excluded.html,
			text = excluded.text,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, uuid.New().String(), page.URL, page.HTML, text, hashContent(text),
		fetchedAt.UTC().Format(time.RFC3339))

	return err
}

// FindPageByURL retrieves the stored copy of url.
func (s *PageService) FindPageByURL(ctx context.Context, url string) (*prodner.StoredPage, error) {
	pages, err := s.FindPages(ctx, prodner.PageFilter{SourceURL: &url, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, prodner.Errorf(prodner.ENOTFOUND, "page not found: %s", url)
	}
	return pages[0], nil
}

// FindPages retrieves pages matching the filter, oldest fetch first.
func (s *PageService) FindPages(ctx context.Context, filter prodner.PageFilter) ([]*prodner.StoredPage, error) {
	query, args := findPagesQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*prodner.StoredPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// findPagesQuery builds the page SELECT for filter. SQLite needs a LIMIT
// before an OFFSET, so an offset alone uses LIMIT -1.
func findPagesQuery(filter prodner.PageFilter) (string, []any) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source_url, html, text, content_hash, fetched_at FROM pages")
	if filter.SourceURL != nil {
		query.WriteString(" WHERE source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	query.WriteString(" ORDER BY fetched_at ASC, rowid ASC")

	switch {
	case filter.Limit > 0:
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	case filter.Offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}
	return query.String(), args
}

// scanPage reads one row selected by findPagesQuery.
func scanPage(rows *sql.Rows) (*prodner.StoredPage, error) {
	var p prodner.StoredPage
	var fetchedAt string
	if err := rows.Scan(&p.ID, &p.SourceURL, &p.HTML, &p.Text, &p.ContentHash, &fetchedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("page %s has invalid fetched_at: %w", p.SourceURL, err)
	}
	p.FetchedAt = t
	return &p, nil
}

// DeletePage permanently removes a page.
func (s *PageService) DeletePage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return prodner.Errorf(prodner.ENOTFOUND, "page not found")
	}

	return nil
}

// CountPages returns the number of stored pages.
func (s *PageService) CountPages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
