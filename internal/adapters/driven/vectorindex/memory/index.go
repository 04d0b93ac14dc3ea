// Package memory provides an in-memory vector index using exact cosine
// similarity. Intended for tests and single-process local runs.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores chunks in memory and searches them exhaustively.
type Index struct {
	mu     sync.RWMutex
	chunks map[string]domain.IndexedChunk
}

// New creates a new in-memory index.
func New() *Index {
	return &Index{
		chunks: make(map[string]domain.IndexedChunk),
	}
}

// EnsureSchema is a no-op for the in-memory index.
func (x *Index) EnsureSchema(_ context.Context) error {
	return nil
}

// Upsert writes chunks, overwriting existing entries by ID.
func (x *Index) Upsert(_ context.Context, chunks []domain.IndexedChunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, chunk := range chunks {
		x.chunks[chunk.ID] = chunk
	}
	return nil
}

// Query returns the k nearest chunks by cosine similarity, best first.
func (x *Index) Query(_ context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]domain.SearchResult, 0, len(x.chunks))
	for _, chunk := range x.chunks {
		results = append(results, domain.SearchResult{
			ID:         chunk.ID,
			FileID:     chunk.FileID,
			Filename:   chunk.Filename,
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			Score:      cosineSimilarity(vector, chunk.Vector),
			Metadata:   chunk.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteByFile removes every chunk belonging to the given file.
func (x *Index) DeleteByFile(_ context.Context, fileID, filename string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for id, chunk := range x.chunks {
		if chunk.FileID == fileID && chunk.Filename == filename {
			delete(x.chunks, id)
		}
	}
	return nil
}

// Len returns the number of stored chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
