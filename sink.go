package opk

import "context"

// Sink persists a batch of enriched rows to some destination. The sink
// is only handed complete results; the pipeline never writes partial
// batches.
type Sink interface {
	Persist(ctx context.Context, rows []EnrichedOrder) (PersistResult, error)
}

// PersistResult reports what a Sink wrote.
type PersistResult struct {
	RowsWritten int
	// Files lists the file set making up the persisted result, when
	// the destination is file shaped.
	Files []string
}
