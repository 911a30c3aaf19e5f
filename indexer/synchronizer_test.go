package indexer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/indexer"
	"github.com/fwojciec/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staleRecord(id, rootURL string, epoch docdex.Epoch) *docdex.SearchRecord {
	return &docdex.SearchRecord{ObjectID: id, RootURL: rootURL, IndexEpoch: epoch}
}

func TestSynchronizer_Run(t *testing.T) {
	t.Parallel()

	const rootURL = "https://example.com/docs/"

	t.Run("saves new records then sweeps stale ones", func(t *testing.T) {
		t.Parallel()

		newEpoch := docdex.Epoch("epoch-2")
		records := make([]*docdex.SearchRecord, 8)
		for j := range records {
			records[j] = &docdex.SearchRecord{ObjectID: string(rune('a' + j)), RootURL: rootURL, IndexEpoch: newEpoch}
		}
		stale := make([]*docdex.SearchRecord, 10)
		for j := range stale {
			stale[j] = staleRecord(string(rune('A'+j)), rootURL, "epoch-1")
		}

		var browsed docdex.RecordFilter
		var deleted []string
		index := &mock.IndexService{
			SaveRecordsFn: func(ctx context.Context, recs []*docdex.SearchRecord) ([]string, error) {
				ids := make([]string, len(recs))
				for j, r := range recs {
					ids[j] = r.ObjectID
				}
				return ids, nil
			},
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				browsed = filter
				return &mock.RecordIterator{Records: stale}, nil
			},
			DeleteRecordsFn: func(ctx context.Context, ids []string) error {
				deleted = ids
				return nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		result, err := s.Run(context.Background(), rootURL, newEpoch, records)
		require.NoError(t, err)

		assert.Equal(t, 8, result.Saved)
		assert.Equal(t, 10, result.Swept)
		assert.Equal(t, rootURL, browsed.RootURL)
		assert.Equal(t, newEpoch, browsed.ExcludeEpoch)
		assert.Len(t, deleted, 10)
	})

	t.Run("save failure aborts the run before any sweep", func(t *testing.T) {
		t.Parallel()

		browseCalled := false
		index := &mock.IndexService{
			SaveRecordsFn: func(ctx context.Context, recs []*docdex.SearchRecord) ([]string, error) {
				return nil, errors.New("index unreachable")
			},
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				browseCalled = true
				return &mock.RecordIterator{}, nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		_, err := s.Run(context.Background(), rootURL, "epoch-2", nil)

		require.Error(t, err)
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
		assert.False(t, browseCalled, "a failed save must not trigger a sweep")
	})

	t.Run("skips the sweep when nothing was saved", func(t *testing.T) {
		t.Parallel()

		browseCalled := false
		index := &mock.IndexService{
			SaveRecordsFn: func(ctx context.Context, recs []*docdex.SearchRecord) ([]string, error) {
				return nil, nil
			},
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				browseCalled = true
				return &mock.RecordIterator{}, nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		result, err := s.Run(context.Background(), rootURL, "epoch-2", nil)
		require.NoError(t, err)

		assert.Zero(t, result.Saved)
		assert.Zero(t, result.Swept)
		assert.False(t, browseCalled, "an empty run must leave existing records alone")
	})
}

func TestSynchronizer_Sweep(t *testing.T) {
	t.Parallel()

	const rootURL = "https://example.com/docs/"

	t.Run("skips records that contradict the browse filter", func(t *testing.T) {
		t.Parallel()

		var deleted []string
		index := &mock.IndexService{
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				return &mock.RecordIterator{Records: []*docdex.SearchRecord{
					staleRecord("stale", rootURL, "epoch-1"),
					staleRecord("foreign", "https://other.com/docs/", "epoch-1"),
					staleRecord("current", rootURL, "epoch-2"),
				}}, nil
			},
			DeleteRecordsFn: func(ctx context.Context, ids []string) error {
				deleted = ids
				return nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		swept, err := s.Sweep(context.Background(), rootURL, "epoch-2")
		require.NoError(t, err)

		assert.Equal(t, 1, swept)
		assert.Equal(t, []string{"stale"}, deleted)
	})

	t.Run("does not delete when nothing is stale", func(t *testing.T) {
		t.Parallel()

		index := &mock.IndexService{
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				return &mock.RecordIterator{}, nil
			},
			DeleteRecordsFn: func(ctx context.Context, ids []string) error {
				t.Error("DeleteRecords must not be called")
				return nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		swept, err := s.Sweep(context.Background(), rootURL, "epoch-2")
		require.NoError(t, err)
		assert.Zero(t, swept)
	})

	t.Run("wraps browse failures as unavailable", func(t *testing.T) {
		t.Parallel()

		index := &mock.IndexService{
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				return nil, errors.New("index unreachable")
			},
		}

		s := &indexer.Synchronizer{Index: index}
		_, err := s.Sweep(context.Background(), rootURL, "epoch-2")
		require.Error(t, err)
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
	})
}

func TestSynchronizer_DeleteRootURL(t *testing.T) {
	t.Parallel()

	t.Run("deletes all epochs under the root URL", func(t *testing.T) {
		t.Parallel()

		const rootURL = "https://example.com/r1/"
		var browsed docdex.RecordFilter
		var deleted []string
		index := &mock.IndexService{
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				browsed = filter
				return &mock.RecordIterator{Records: []*docdex.SearchRecord{
					staleRecord("a", rootURL, "epoch-1"),
					staleRecord("b", rootURL, "epoch-2"),
					staleRecord("c", rootURL, "epoch-3"),
				}}, nil
			},
			DeleteRecordsFn: func(ctx context.Context, ids []string) error {
				deleted = ids
				return nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		count, err := s.DeleteRootURL(context.Background(), rootURL)
		require.NoError(t, err)

		assert.Equal(t, 3, count)
		assert.Equal(t, []string{"a", "b", "c"}, deleted)
		assert.Empty(t, browsed.ExcludeEpoch, "deletion must not filter by epoch")
	})

	t.Run("never deletes records from another site", func(t *testing.T) {
		t.Parallel()

		var deleted []string
		index := &mock.IndexService{
			BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
				return &mock.RecordIterator{Records: []*docdex.SearchRecord{
					staleRecord("mine", "https://example.com/r1/", "epoch-1"),
					staleRecord("theirs", "https://example.com/r2/", "epoch-1"),
				}}, nil
			},
			DeleteRecordsFn: func(ctx context.Context, ids []string) error {
				deleted = ids
				return nil
			},
		}

		s := &indexer.Synchronizer{Index: index}
		count, err := s.DeleteRootURL(context.Background(), "https://example.com/r1/")
		require.NoError(t, err)

		assert.Equal(t, 1, count)
		assert.Equal(t, []string{"mine"}, deleted)
	})
}
