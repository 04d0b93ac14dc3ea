package driving

import (
	"context"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

// Ingestor runs the upload-to-index pipeline for one file at a time.
type Ingestor interface {
	// Ingest validates, stores, extracts, chunks, embeds, and indexes a
	// single file. All-or-nothing from the caller's perspective: any stage
	// failure aborts the remaining stages and surfaces one terminal error.
	Ingest(ctx context.Context, filename string, data []byte) (*domain.IngestReceipt, error)

	// Remove deletes a previously ingested file: its blob, its indexed
	// chunks, and its ledger row.
	Remove(ctx context.Context, fileID, filename string) error
}
