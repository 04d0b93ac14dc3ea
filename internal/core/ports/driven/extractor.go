package driven

import "context"

// Extractor converts one source file format into plain text.
// Each extractor handles specific file extensions (e.g., ".pdf", ".docx").
// Whitespace normalisation is applied by the registry, not by extractors.
type Extractor interface {
	// Extensions returns the lowercase file extensions this extractor
	// handles, dot included.
	Extensions() []string

	// Extract returns the raw text content of the file bytes.
	// Degraded output (e.g., skipped pages) is permitted; an empty result is
	// treated by the caller as an ingestion failure.
	Extract(ctx context.Context, data []byte) (string, error)
}
