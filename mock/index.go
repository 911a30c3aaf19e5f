package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.IndexService = (*IndexService)(nil)

// IndexService is a mock implementation of docdex.IndexService.
type IndexService struct {
	SaveRecordsFn   func(ctx context.Context, records []*docdex.SearchRecord) ([]string, error)
	BrowseRecordsFn func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error)
	DeleteRecordsFn func(ctx context.Context, ids []string) error
}

func (s *IndexService) SaveRecords(ctx context.Context, records []*docdex.SearchRecord) ([]string, error) {
	return s.SaveRecordsFn(ctx, records)
}

func (s *IndexService) BrowseRecords(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
	return s.BrowseRecordsFn(ctx, filter)
}

func (s *IndexService) DeleteRecords(ctx context.Context, ids []string) error {
	return s.DeleteRecordsFn(ctx, ids)
}

var _ docdex.RecordIterator = (*RecordIterator)(nil)

// RecordIterator is a slice-backed docdex.RecordIterator for tests.
type RecordIterator struct {
	Records []*docdex.SearchRecord
	CloseFn func() error

	pos int
}

func (it *RecordIterator) Next() bool {
	if it.pos >= len(it.Records) {
		return false
	}
	it.pos++
	return true
}

func (it *RecordIterator) Record() *docdex.SearchRecord {
	return it.Records[it.pos-1]
}

func (it *RecordIterator) Err() error {
	return nil
}

func (it *RecordIterator) Close() error {
	if it.CloseFn != nil {
		return it.CloseFn()
	}
	return nil
}
