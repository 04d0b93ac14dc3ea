package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// mockBlobStore records puts and deletes in memory.
type mockBlobStore struct {
	blobs   map[string][]byte
	deletes []string
	putErr  error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: make(map[string][]byte)}
}

func blobKey(fileID, filename string) string {
	return fileID + "/" + filename
}

func (m *mockBlobStore) Put(_ context.Context, fileID, filename string, data []byte) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	m.blobs[blobKey(fileID, filename)] = data
	return "file:///blobs/" + blobKey(fileID, filename), nil
}

func (m *mockBlobStore) URL(_ context.Context, fileID, filename string) (string, error) {
	if _, ok := m.blobs[blobKey(fileID, filename)]; !ok {
		return "", fmt.Errorf("blob not found")
	}
	return "file:///blobs/" + blobKey(fileID, filename), nil
}

func (m *mockBlobStore) Delete(_ context.Context, fileID, filename string) error {
	delete(m.blobs, blobKey(fileID, filename))
	m.deletes = append(m.deletes, blobKey(fileID, filename))
	return nil
}

// mockRegistry returns canned text for any supported extension.
type mockRegistry struct {
	text     string
	err      error
	supports map[string]bool
	calls    int
}

func newMockRegistry(text string) *mockRegistry {
	return &mockRegistry{
		text:     text,
		supports: map[string]bool{".pdf": true, ".doc": true, ".docx": true},
	}
}

func (m *mockRegistry) Supports(ext string) bool {
	return m.supports[strings.ToLower(ext)]
}

func (m *mockRegistry) Extract(_ context.Context, _ []byte, _ string) (string, error) {
	m.calls++
	return m.text, m.err
}

// paragraphSplitter makes one chunk per non-blank paragraph.
type paragraphSplitter struct{}

func (paragraphSplitter) Split(text string, metadata map[string]string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Content:  para,
			Index:    len(chunks),
			Metadata: metadata,
		})
	}
	return chunks
}

// mockEmbedder returns one fixed-size vector per input.
type mockEmbedder struct {
	dims       int
	batchErr   error
	embedErr   error
	short      bool // return one fewer vector than requested
	batchCalls int
	embedCalls int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 3}
}

func (m *mockEmbedder) vector(seed int) []float32 {
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32(seed + i)
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(1), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = m.vector(i)
	}
	return embeddings, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embedding" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex records upserts and serves canned query results.
type mockIndex struct {
	upserted     []domain.IndexedChunk
	queryResults []domain.SearchResult
	queryK       int
	deleted      []string
	schemaCalls  int
	upsertErr    error
	queryErr     error
	schemaErr    error
	deleteErr    error
}

func (m *mockIndex) EnsureSchema(_ context.Context) error {
	m.schemaCalls++
	return m.schemaErr
}

func (m *mockIndex) Upsert(_ context.Context, chunks []domain.IndexedChunk) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, chunks...)
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ []float32, k int) ([]domain.SearchResult, error) {
	m.queryK = k
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.queryResults, nil
}

func (m *mockIndex) DeleteByFile(_ context.Context, fileID, filename string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, blobKey(fileID, filename))
	return nil
}

func (m *mockIndex) Close() error { return nil }

// mockFileStore is a map-backed ledger.
type mockFileStore struct {
	records map[string]domain.FileRecord
	saveErr error
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{records: make(map[string]domain.FileRecord)}
}

func (m *mockFileStore) SaveFile(_ context.Context, rec domain.FileRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[rec.FileID] = rec
	return nil
}

func (m *mockFileStore) GetFile(_ context.Context, fileID string) (*domain.FileRecord, error) {
	rec, ok := m.records[fileID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *mockFileStore) ListFiles(_ context.Context) ([]domain.FileRecord, error) {
	var records []domain.FileRecord
	for _, rec := range m.records {
		records = append(records, rec)
	}
	return records, nil
}

func (m *mockFileStore) DeleteFile(_ context.Context, fileID string) error {
	delete(m.records, fileID)
	return nil
}

func (m *mockFileStore) Close() error { return nil }

// mockLLM records the conversation and returns a canned reply.
type mockLLM struct {
	reply    string
	err      error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }
