package indexer

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docdex"
)

// Synchronizer reconciles a search index with the output of an indexing
// run. New records are written first; only after at least one record is
// confirmed saved are records from earlier epochs swept away. A run that
// saves nothing leaves the index untouched, so a broken crawl can never
// empty out a previously healthy site.
type Synchronizer struct {
	Index  docdex.IndexService
	Logger *slog.Logger
}

// SyncResult holds the outcome of a synchronization run.
type SyncResult struct {
	Saved int
	Swept int
}

// sweepAttributes are the record fields the sweep needs to verify results.
var sweepAttributes = []string{"objectID", "root_url", "index_epoch"}

// Run saves the records for one indexing run and then sweeps stale records
// for the same root URL. The sweep is skipped when no record was saved.
func (s *Synchronizer) Run(ctx context.Context, rootURL string, epoch docdex.Epoch, records []*docdex.SearchRecord) (*SyncResult, error) {
	ids, err := s.Index.SaveRecords(ctx, records)
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to save records: %v", err)
	}
	if len(ids) == 0 {
		s.logger().Warn("no records saved, skipping sweep",
			"root_url", rootURL,
			"epoch", string(epoch),
		)
		return &SyncResult{}, nil
	}

	swept, err := s.Sweep(ctx, rootURL, epoch)
	if err != nil {
		return nil, err
	}
	return &SyncResult{Saved: len(ids), Swept: swept}, nil
}

// Sweep deletes records under rootURL whose epoch differs from epoch.
// Every browse result is re-checked before deletion: a record whose root
// URL or epoch contradicts the filter indicates an inconsistent index and
// is skipped with a warning rather than deleted.
func (s *Synchronizer) Sweep(ctx context.Context, rootURL string, epoch docdex.Epoch) (int, error) {
	it, err := s.Index.BrowseRecords(ctx, docdex.RecordFilter{
		RootURL:      rootURL,
		ExcludeEpoch: epoch,
		Attributes:   sweepAttributes,
	})
	if err != nil {
		return 0, docdex.Errorf(docdex.EUNAVAILABLE, "failed to browse records: %v", err)
	}
	defer it.Close()

	var stale []string
	for it.Next() {
		rec := it.Record()
		if rec.RootURL != rootURL {
			s.logger().Warn("browse returned record from another site, skipping",
				"object_id", rec.ObjectID,
				"expected_root_url", rootURL,
				"got_root_url", rec.RootURL,
			)
			continue
		}
		if rec.IndexEpoch == epoch {
			s.logger().Warn("browse returned record from the current epoch, skipping",
				"object_id", rec.ObjectID,
				"epoch", string(epoch),
			)
			continue
		}
		stale = append(stale, rec.ObjectID)
	}
	if err := it.Err(); err != nil {
		return 0, docdex.Errorf(docdex.EUNAVAILABLE, "failed to iterate records: %v", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := s.Index.DeleteRecords(ctx, stale); err != nil {
		return 0, docdex.Errorf(docdex.EUNAVAILABLE, "failed to delete stale records: %v", err)
	}
	s.logger().Info("swept stale records",
		"root_url", rootURL,
		"epoch", string(epoch),
		"count", len(stale),
	)
	return len(stale), nil
}

// DeleteRootURL deletes all records under rootURL regardless of epoch.
// Records are re-checked against the root URL before deletion, so an
// inconsistent browse can never remove another site's records.
func (s *Synchronizer) DeleteRootURL(ctx context.Context, rootURL string) (int, error) {
	it, err := s.Index.BrowseRecords(ctx, docdex.RecordFilter{
		RootURL:    rootURL,
		Attributes: sweepAttributes,
	})
	if err != nil {
		return 0, docdex.Errorf(docdex.EUNAVAILABLE, "failed to browse records: %v", err)
	}
	defer it.Close()

	var ids []string
	for it.Next() {
		rec := it.Record()
		if rec.RootURL != rootURL {
			s.logger().Warn("browse returned record from another site, skipping",
				"object_id", rec.ObjectID,
				"expected_root_url", rootURL,
				"got_root_url", rec.RootURL,
			)
			continue
		}
		ids = append(ids, rec.ObjectID)
	}
	if err := it.Err(); err != nil {
		return 0, docdex.Errorf(docdex.EUNAVAILABLE, "failed to iterate records: %v", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.Index.DeleteRecords(ctx, ids); err != nil {
		return 0, docdex.Errorf(docdex.EUNAVAILABLE, "failed to delete records: %v", err)
	}
	s.logger().Info("deleted site records",
		"root_url", rootURL,
		"count", len(ids),
	)
	return len(ids), nil
}

func (s *Synchronizer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
