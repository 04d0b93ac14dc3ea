package driven

import (
	"context"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

// VectorIndex stores indexed chunks and serves approximate-nearest-neighbour
// queries over their embeddings.
type VectorIndex interface {
	// EnsureSchema creates the backing collection if it does not exist.
	// Idempotent, and tolerant of concurrent callers: losing a creation race
	// is acceptable, a corrupted schema is not.
	EnsureSchema(ctx context.Context) error

	// Upsert writes records to the index. A partial-failure report from the
	// store is surfaced as a single aggregate *domain.IndexError naming the
	// failed records; the caller must abort the enclosing ingestion.
	Upsert(ctx context.Context, chunks []domain.IndexedChunk) error

	// Query returns up to k nearest records to the query vector, best match
	// first, projecting the retrievable fields plus the computed score.
	// An empty index yields an empty result, not an error.
	Query(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error)

	// DeleteByFile removes every chunk belonging to the given file.
	// Per-chunk deletion is intentionally unsupported.
	DeleteByFile(ctx context.Context, fileID, filename string) error

	// Close releases resources.
	Close() error
}
