// Package slog provides logging decorators for docdex services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docdex"
)

// Ensure LoggingIndexService implements docdex.IndexService.
var _ docdex.IndexService = (*LoggingIndexService)(nil)

// LoggingIndexService wraps an IndexService with operation logging.
type LoggingIndexService struct {
	next   docdex.IndexService
	logger *slog.Logger
}

// NewLoggingIndexService creates a new LoggingIndexService.
func NewLoggingIndexService(next docdex.IndexService, logger *slog.Logger) *LoggingIndexService {
	return &LoggingIndexService{next: next, logger: logger}
}

// SaveRecords delegates to the wrapped service and logs the outcome.
func (s *LoggingIndexService) SaveRecords(ctx context.Context, records []*docdex.SearchRecord) ([]string, error) {
	begin := time.Now()
	ids, err := s.next.SaveRecords(ctx, records)
	if err != nil {
		s.logger.Error("save records",
			"count", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
		return ids, err
	}
	s.logger.Info("save records",
		"count", len(records),
		"saved", len(ids),
		"duration", time.Since(begin),
	)
	return ids, nil
}

// BrowseRecords delegates to the wrapped service and logs the filter.
func (s *LoggingIndexService) BrowseRecords(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
	it, err := s.next.BrowseRecords(ctx, filter)
	if err != nil {
		s.logger.Error("browse records",
			"root_url", filter.RootURL,
			"exclude_epoch", string(filter.ExcludeEpoch),
			"err", err,
		)
		return nil, err
	}
	s.logger.Debug("browse records",
		"root_url", filter.RootURL,
		"exclude_epoch", string(filter.ExcludeEpoch),
	)
	return it, nil
}

// DeleteRecords delegates to the wrapped service and logs the outcome.
func (s *LoggingIndexService) DeleteRecords(ctx context.Context, ids []string) error {
	begin := time.Now()
	err := s.next.DeleteRecords(ctx, ids)
	if err != nil {
		s.logger.Error("delete records",
			"count", len(ids),
			"duration", time.Since(begin),
			"err", err,
		)
		return err
	}
	s.logger.Info("delete records",
		"count", len(ids),
		"duration", time.Since(begin),
	)
	return nil
}
