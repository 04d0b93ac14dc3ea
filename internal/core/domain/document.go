package domain

import (
	"fmt"
	"time"
)

// SpanUnit identifies how a chunk span is measured.
type SpanUnit string

// Span units.
const (
	// SpanTokens means the span offsets count tokenizer tokens.
	SpanTokens SpanUnit = "tokens"

	// SpanChars means the span offsets count characters (runes) of the
	// source text. Used by the character-based fallback when no tokenizer
	// is available.
	SpanChars SpanUnit = "chars"
)

// Span records where a chunk sits inside its source document.
type Span struct {
	// Start is the inclusive start offset.
	Start int

	// End is the exclusive end offset.
	End int

	// Unit is the measurement unit of Start and End.
	Unit SpanUnit
}

// Chunk is a bounded segment of a source document's text.
// Chunks are produced in strictly increasing Index order per document
// and are immutable after creation.
type Chunk struct {
	// Content is the chunk text.
	Content string

	// Index is the 0-based sequential position within the document.
	Index int

	// Span is the token or character range this chunk covers.
	Span Span

	// Metadata is the caller-supplied provenance metadata, merged in verbatim.
	Metadata map[string]string
}

// IndexedChunk is the write-once record persisted to the vector index.
// Vector length must be constant across the whole index; a mismatch is a
// fatal ingestion error. Deletion is keyed by FileID+Filename, never by chunk.
type IndexedChunk struct {
	// ID is globally unique, derived as "<file_id>-chunk-<chunk_index>".
	ID string

	// FileID identifies the uploaded file this chunk came from.
	FileID string

	// Filename is the original upload filename.
	Filename string

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int

	// Content is the chunk text.
	Content string

	// Vector is the embedding, fixed length across the index.
	Vector []float32

	// Metadata is the serialized provenance mapping.
	Metadata string
}

// ChunkDocID derives the globally unique indexed-chunk ID.
func ChunkDocID(fileID string, chunkIndex int) string {
	return fmt.Sprintf("%s-chunk-%d", fileID, chunkIndex)
}

// FileRecord is the ledger row for an uploaded file.
type FileRecord struct {
	// FileID is the unique identifier assigned at upload time.
	FileID string

	// Filename is the original upload filename.
	Filename string

	// SizeBytes is the uploaded file size.
	SizeBytes int64

	// ChunkCount is how many chunks were indexed for this file.
	ChunkCount int

	// StorageURL points at the stored blob.
	StorageURL string

	// CreatedAt is when the file was ingested.
	CreatedAt time.Time
}

// IngestReceipt is returned to the caller after a successful ingestion.
type IngestReceipt struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	StorageURL string `json:"storage_url"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}
