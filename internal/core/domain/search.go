package domain

// SearchResult is a read-only projection returned by a vector index query.
type SearchResult struct {
	// ID is the indexed-chunk ID.
	ID string

	// FileID identifies the source file.
	FileID string

	// Filename is the source file display name.
	Filename string

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int

	// Content is the chunk text.
	Content string

	// Score is the similarity score from the index's distance metric.
	// Higher means more similar; not guaranteed to be normalized to [0,1].
	Score float64

	// Metadata is the serialized provenance mapping.
	Metadata string
}

// SourceDocument attributes part of an answer to an indexed chunk.
type SourceDocument struct {
	Content    string  `json:"content"`
	FileID     string  `json:"file_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// Answer is the result of a grounded question-answering run.
// Sources preserves the index's ranking order, best match first, 1:1 with
// the search results used to build the generation context.
type Answer struct {
	Answer   string           `json:"answer"`
	Sources  []SourceDocument `json:"sources"`
	Question string           `json:"question"`
}
