// Package bleve provides a bleve-backed implementation of the docdex
// search index. Unlike the sqlite engine it builds a full-text index, so
// the saved records are directly searchable.
package bleve

import (
	"context"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/fwojciec/docdex"
)

// browsePageSize is the number of hits fetched per browse page.
const browsePageSize = 250

// Compile-time interface verification.
var _ docdex.IndexService = (*IndexService)(nil)

// IndexService implements docdex.IndexService using a bleve index.
type IndexService struct {
	index bleve.Index
}

// NewIndexService opens the bleve index at path, creating it when absent.
func NewIndexService(path string) (*IndexService, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to open index at %q: %v", path, err)
	}
	return &IndexService{index: index}, nil
}

// NewMemIndexService creates an in-memory IndexService.
func NewMemIndexService() (*IndexService, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to create index: %v", err)
	}
	return &IndexService{index: index}, nil
}

// Close closes the underlying index.
func (s *IndexService) Close() error {
	return s.index.Close()
}

// buildMapping declares exact-match fields with the keyword analyzer so
// browse filters on root_url and index_epoch match whole values, never
// tokens.
func buildMapping() mapping.IndexMapping {
	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	rec := bleve.NewDocumentMapping()
	for _, field := range []string{
		"index_epoch", "content_type", "url", "base_url", "root_url",
		"anchor", "content_hash", "thumbnail_url", "logo_url",
		"source_repository", "homepage_url",
	} {
		rec.AddFieldMappingsAt(field, kw)
	}
	for _, field := range []string{
		"root_title", "root_summary", "headings", "content", "description",
	} {
		rec.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}

	m := bleve.NewIndexMapping()
	m.DefaultMapping = rec
	return m
}

// SaveRecords indexes records in a single batch, keyed by object ID, and
// returns the indexed ids.
func (s *IndexService) SaveRecords(ctx context.Context, records []*docdex.SearchRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	batch := s.index.NewBatch()
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if err := batch.Index(rec.ObjectID, recordDocument(rec)); err != nil {
			return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to batch record %q: %v", rec.ObjectID, err)
		}
		ids = append(ids, rec.ObjectID)
	}
	if err := s.index.Batch(batch); err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to index batch: %v", err)
	}
	return ids, nil
}

// BrowseRecords returns a paginated iterator over records matching the
// filter. Hits carry the stored fields needed by the sweep protocol; full
// content is returned as indexed.
func (s *IndexService) BrowseRecords(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
	if filter.RootURL == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "browse root URL required")
	}

	rootQuery := bleve.NewTermQuery(filter.RootURL)
	rootQuery.SetField("root_url")

	var q query.Query = rootQuery
	if filter.ExcludeEpoch != "" {
		epochQuery := bleve.NewTermQuery(string(filter.ExcludeEpoch))
		epochQuery.SetField("index_epoch")

		boolean := bleve.NewBooleanQuery()
		boolean.AddMust(rootQuery)
		boolean.AddMustNot(epochQuery)
		q = boolean
	}

	return &recordIterator{ctx: ctx, index: s.index, query: q}, nil
}

// DeleteRecords deletes records by object ID in a single batch.
func (s *IndexService) DeleteRecords(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := s.index.Batch(batch); err != nil {
		return docdex.Errorf(docdex.EUNAVAILABLE, "failed to delete batch: %v", err)
	}
	return nil
}

// recordDocument flattens a record into the indexed document. Field names
// match the record's serialized form so queries and stored fields agree
// across index engines.
func recordDocument(rec *docdex.SearchRecord) map[string]interface{} {
	return map[string]interface{}{
		"index_epoch":       string(rec.IndexEpoch),
		"content_type":      string(rec.ContentType),
		"url":               rec.URL,
		"base_url":          rec.BaseURL,
		"root_url":          rec.RootURL,
		"root_title":        rec.RootTitle,
		"root_summary":      rec.RootSummary,
		"headings":          rec.Headings,
		"anchor":            rec.Anchor,
		"content":           rec.Content,
		"content_hash":      rec.ContentHash,
		"importance":        rec.Importance,
		"priority":          rec.Priority,
		"thumbnail_url":     rec.ThumbnailURL,
		"logo_url":          rec.LogoURL,
		"description":       rec.Description,
		"source_repository": rec.SourceRepository,
		"homepage_url":      rec.HomepageURL,
		"date_indexed":      rec.DateIndexed.UTC().Format(time.RFC3339),
	}
}

// recordIterator pages through browse hits lazily.
type recordIterator struct {
	ctx   context.Context
	index bleve.Index
	query query.Query

	from int
	hits []*search.DocumentMatch
	pos  int
	done bool

	rec *docdex.SearchRecord
	err error
}

func (it *recordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.pos >= len(it.hits) {
		if it.done || !it.fetchPage() {
			return false
		}
	}
	it.rec = hitRecord(it.hits[it.pos])
	it.pos++
	return true
}

// fetchPage loads the next page of hits. Sorting by document id keeps
// pagination stable while the underlying index is unchanged.
func (it *recordIterator) fetchPage() bool {
	req := bleve.NewSearchRequestOptions(it.query, browsePageSize, it.from, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"_id"})

	res, err := it.index.SearchInContext(it.ctx, req)
	if err != nil {
		it.err = err
		return false
	}

	it.hits = res.Hits
	it.pos = 0
	it.from += len(res.Hits)
	if len(res.Hits) < browsePageSize {
		it.done = true
	}
	return len(it.hits) > 0
}

func (it *recordIterator) Record() *docdex.SearchRecord {
	return it.rec
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	return nil
}

// hitRecord reconstructs a record from a hit's stored fields. The hit id
// is the object id; everything else comes from the field map.
func hitRecord(hit *search.DocumentMatch) *docdex.SearchRecord {
	rec := &docdex.SearchRecord{ObjectID: hit.ID}

	str := func(field string) string {
		v, _ := hit.Fields[field].(string)
		return v
	}
	num := func(field string) int {
		v, _ := hit.Fields[field].(float64)
		return int(v)
	}

	rec.IndexEpoch = docdex.Epoch(str("index_epoch"))
	rec.ContentType = docdex.ContentType(str("content_type"))
	rec.URL = str("url")
	rec.BaseURL = str("base_url")
	rec.RootURL = str("root_url")
	rec.RootTitle = str("root_title")
	rec.RootSummary = str("root_summary")
	rec.Anchor = str("anchor")
	rec.Content = str("content")
	rec.ContentHash = str("content_hash")
	rec.Importance = num("importance")
	rec.Priority = num("priority")
	rec.ThumbnailURL = str("thumbnail_url")
	rec.LogoURL = str("logo_url")
	rec.Description = str("description")
	rec.SourceRepository = str("source_repository")
	rec.HomepageURL = str("homepage_url")

	// A multi-valued field comes back as a slice, a single value as a string.
	switch v := hit.Fields["headings"].(type) {
	case string:
		rec.Headings = []string{v}
	case []interface{}:
		for _, h := range v {
			if s, ok := h.(string); ok {
				rec.Headings = append(rec.Headings, s)
			}
		}
	}

	if t, err := time.Parse(time.RFC3339, str("date_indexed")); err == nil {
		rec.DateIndexed = t
	}
	return rec
}
