package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat indicates an unrecognized file extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ValidationError is a client-caused failure (bad extension, oversized file,
// empty question). Surfaced immediately, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ExtractionError indicates a corrupt or unparseable document.
// Not retried.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmbeddingCause classifies the terminal cause of an embedding failure.
type EmbeddingCause string

// Embedding failure causes.
const (
	// EmbeddingCauseConnection means the embedding endpoint was unreachable.
	EmbeddingCauseConnection EmbeddingCause = "connection"

	// EmbeddingCauseAuth means the API rejected the credentials.
	EmbeddingCauseAuth EmbeddingCause = "auth"

	// EmbeddingCauseModelNotFound means the deployment or model is missing.
	EmbeddingCauseModelNotFound EmbeddingCause = "model_not_found"

	// EmbeddingCauseUnknown covers everything else.
	EmbeddingCauseUnknown EmbeddingCause = "unknown"
)

// EmbeddingError is raised after the embedder exhausts its retries.
// It carries a cause classification and a remediation hint as structured
// payload, not just message text.
type EmbeddingError struct {
	Cause    EmbeddingCause
	Hint     string
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempts (%s): %v", e.Attempts, e.Cause, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// ClassifyEmbeddingFailure maps a terminal embedding error to a cause tag and
// a remediation hint. Pure function over the error text.
func ClassifyEmbeddingFailure(err error) (EmbeddingCause, string) {
	if err == nil {
		return EmbeddingCauseUnknown, ""
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "connection") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "dial tcp"):
		return EmbeddingCauseConnection,
			"check that the endpoint URL is correct, the network is reachable, and the deployment exists"
	case strings.Contains(msg, "401") || strings.Contains(lower, "unauthorized"):
		return EmbeddingCauseAuth,
			"check that the API key is correct, has not expired, and has the required permissions"
	case strings.Contains(msg, "404") || strings.Contains(lower, "not found"):
		return EmbeddingCauseModelNotFound,
			"check that the deployment name is correct, exists, and is active"
	default:
		return EmbeddingCauseUnknown,
			"inspect the underlying error for details"
	}
}

// IndexError indicates a vector index schema, upsert, or query failure.
// Not retried at this layer.
type IndexError struct {
	// Op is the failing operation ("ensure schema", "upsert", "query", "delete").
	Op string

	// FailedIDs names the records a partial upsert failure reported.
	// The caller must treat any non-empty set as a single aggregate failure.
	FailedIDs []string

	Err error
}

func (e *IndexError) Error() string {
	if len(e.FailedIDs) > 0 {
		return fmt.Sprintf("index %s: %d records failed (%s): %v",
			e.Op, len(e.FailedIDs), strings.Join(e.FailedIDs, ", "), e.Err)
	}
	return fmt.Sprintf("index %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// GenerationError indicates the answer generation step failed.
// Not retried; retries belong to the embedder only.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate answer: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
