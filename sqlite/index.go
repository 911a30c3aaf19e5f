package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/docdex"
)

// Compile-time interface verification.
var _ docdex.IndexService = (*IndexService)(nil)

// IndexService implements docdex.IndexService using SQLite. Records are
// keyed by object ID, so saving is an upsert and re-indexing a site
// overwrites rather than duplicates.
type IndexService struct {
	db *DB
}

// NewIndexService creates a new IndexService.
func NewIndexService(db *DB) *IndexService {
	return &IndexService{db: db}
}

// SaveRecords upserts records by object ID inside a single transaction and
// returns the persisted ids. An invalid record fails the whole batch, so a
// partially valid run never sweeps.
func (s *IndexService) SaveRecords(ctx context.Context, records []*docdex.SearchRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		headings, err := json.Marshal(rec.Headings)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (
				object_id, index_epoch, content_type, url, base_url, root_url,
				root_title, root_summary, headings, anchor, content, content_hash,
				importance, priority, thumbnail_url, logo_url, description,
				source_repository, homepage_url, date_indexed
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(object_id) DO UPDATE SET
				index_epoch = excluded.index_epoch,
				content_type = excluded.content_type,
				url = excluded.url,
				base_url = excluded.base_url,
				root_url = excluded.root_url,
				root_title = excluded.root_title,
				root_summary = excluded.root_summary,
				headings = excluded.headings,
				anchor = excluded.anchor,
				content = excluded.content,
				content_hash = excluded.content_hash,
				importance = excluded.importance,
				priority = excluded.priority,
				thumbnail_url = excluded.thumbnail_url,
				logo_url = excluded.logo_url,
				description = excluded.description,
				source_repository = excluded.source_repository,
				homepage_url = excluded.homepage_url,
				date_indexed = excluded.date_indexed
		`, rec.ObjectID, string(rec.IndexEpoch), string(rec.ContentType), rec.URL, rec.BaseURL,
			rec.RootURL, rec.RootTitle, rec.RootSummary, string(headings), rec.Anchor,
			rec.Content, rec.ContentHash, rec.Importance, rec.Priority, rec.ThumbnailURL,
			rec.LogoURL, rec.Description, rec.SourceRepository, rec.HomepageURL,
			rec.DateIndexed.UTC().Format(time.RFC3339))
		if err != nil {
			return nil, err
		}

		ids = append(ids, rec.ObjectID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// BrowseRecords returns a lazy iterator over records matching the filter.
// The filter's Attributes are ignored: full records are always returned.
func (s *IndexService) BrowseRecords(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
	if filter.RootURL == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "browse root URL required")
	}

	var query strings.Builder
	args := []any{filter.RootURL}
	query.WriteString(`
		SELECT object_id, index_epoch, content_type, url, base_url, root_url,
			root_title, root_summary, headings, anchor, content, content_hash,
			importance, priority, thumbnail_url, logo_url, description,
			source_repository, homepage_url, date_indexed
		FROM records
		WHERE root_url = ?`)
	if filter.ExcludeEpoch != "" {
		query.WriteString(" AND index_epoch != ?")
		args = append(args, string(filter.ExcludeEpoch))
	}
	query.WriteString(" ORDER BY object_id")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	return &recordIterator{rows: rows}, nil
}

// DeleteRecords deletes records by object ID.
func (s *IndexService) DeleteRecords(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	// SQLite caps bound parameters per statement, so delete in chunks.
	const chunkSize = 500
	for start := 0; start < len(ids); start += chunkSize {
		end := min(start+chunkSize, len(ids))
		chunk := ids[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM records WHERE object_id IN ("+placeholders+")", args...); err != nil {
			return err
		}
	}
	return nil
}

// recordIterator adapts sql.Rows to docdex.RecordIterator.
type recordIterator struct {
	rows *sql.Rows
	rec  *docdex.SearchRecord
	err  error
}

func (it *recordIterator) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}

	var rec docdex.SearchRecord
	var epoch, contentType, headings, dateIndexed string
	if err := it.rows.Scan(&rec.ObjectID, &epoch, &contentType, &rec.URL, &rec.BaseURL,
		&rec.RootURL, &rec.RootTitle, &rec.RootSummary, &headings, &rec.Anchor,
		&rec.Content, &rec.ContentHash, &rec.Importance, &rec.Priority, &rec.ThumbnailURL,
		&rec.LogoURL, &rec.Description, &rec.SourceRepository, &rec.HomepageURL,
		&dateIndexed); err != nil {
		it.err = err
		return false
	}

	rec.IndexEpoch = docdex.Epoch(epoch)
	rec.ContentType = docdex.ContentType(contentType)
	if err := json.Unmarshal([]byte(headings), &rec.Headings); err != nil {
		it.err = err
		return false
	}
	if t, err := time.Parse(time.RFC3339, dateIndexed); err == nil {
		rec.DateIndexed = t
	}

	it.rec = &rec
	return true
}

func (it *recordIterator) Record() *docdex.SearchRecord {
	return it.rec
}

func (it *recordIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.rows.Err()
}

func (it *recordIterator) Close() error {
	return it.rows.Close()
}
