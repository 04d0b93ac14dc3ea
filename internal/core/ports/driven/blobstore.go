package driven

import "context"

// BlobStore is an opaque store-by-key / retrieve-URL service for the
// original uploaded bytes. The pipeline never reads blobs back; the URL is
// returned to the caller for reference.
type BlobStore interface {
	// Put stores the file bytes under fileID/filename and returns a URL.
	Put(ctx context.Context, fileID, filename string, data []byte) (string, error)

	// URL returns the URL for a previously stored blob.
	URL(ctx context.Context, fileID, filename string) (string, error)

	// Delete removes a stored blob.
	Delete(ctx context.Context, fileID, filename string) error
}
