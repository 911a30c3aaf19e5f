package docdex

import "context"

// RecordFilter selects records during a browse. It models the filter
// expression "root_url == RootURL AND index_epoch != ExcludeEpoch" over
// indexed attributes.
type RecordFilter struct {
	// RootURL matches records by exact root URL. Required.
	RootURL string

	// ExcludeEpoch, when set, restricts the browse to records whose
	// index epoch differs from this value.
	ExcludeEpoch Epoch

	// Attributes lists the record attributes the caller needs. It is
	// advisory: implementations may return more, but must populate at
	// least ObjectID, RootURL and IndexEpoch.
	Attributes []string
}

// RecordIterator is a lazy, cursor-driven sequence of browse results.
// It follows the database/sql.Rows iteration contract.
type RecordIterator interface {
	// Next advances to the next record. Returns false when the sequence
	// is exhausted or an error occurred.
	Next() bool

	// Record returns the current record. Only valid after a true Next.
	Record() *SearchRecord

	// Err returns the first error encountered during iteration, if any.
	Err() error

	// Close releases resources held by the iterator.
	Close() error
}

// IndexService is the remote search index consumed by the synchronizer.
// Its storage engine is opaque; it only needs upsert-by-id, filtered
// browse and delete-by-id.
type IndexService interface {
	// SaveRecords upserts records by object ID and returns the ids that
	// were persisted. Failure is reported for the whole batch as a
	// single error; callers may retry because upsert-by-id is
	// idempotent at the record level.
	SaveRecords(ctx context.Context, records []*SearchRecord) ([]string, error)

	// BrowseRecords returns a lazy iterator over records matching the
	// filter. Cancellation of ctx aborts the iteration.
	BrowseRecords(ctx context.Context, filter RecordFilter) (RecordIterator, error)

	// DeleteRecords deletes records by object ID.
	DeleteRecords(ctx context.Context, ids []string) error
}
