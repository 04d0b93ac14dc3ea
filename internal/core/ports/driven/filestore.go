package driven

import (
	"context"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

// FileStore is the ledger of successfully ingested files.
type FileStore interface {
	// SaveFile records a newly ingested file.
	SaveFile(ctx context.Context, rec domain.FileRecord) error

	// GetFile returns the record for a file ID.
	// Returns nil without error when the file is unknown.
	GetFile(ctx context.Context, fileID string) (*domain.FileRecord, error)

	// ListFiles returns all records, newest first.
	ListFiles(ctx context.Context) ([]domain.FileRecord, error)

	// DeleteFile removes a file's ledger row.
	DeleteFile(ctx context.Context, fileID string) error

	// Close releases resources.
	Close() error
}
