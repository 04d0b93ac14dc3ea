// Package qdrant provides a vector index adapter over the qdrant HTTP
// API. Chunks are stored as points with their logical ID in the
// payload, since qdrant only accepts UUIDs or unsigned integers as
// point IDs.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
	"github.com/grounder-ai/grounder/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "http://localhost:6333"
	DefaultCollection  = "documents"
	DefaultVectorSize  = 1536
	DefaultM           = 4
	DefaultEfConstruct = 400
	DefaultEfSearch    = 500
	DefaultTimeout     = 30 * time.Second
)

// Config holds configuration for the qdrant index.
type Config struct {
	// BaseURL is the qdrant HTTP endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey authenticates against qdrant cloud. Optional for local
	// deployments.
	APIKey string

	// Collection is the collection name (default: documents).
	Collection string

	// VectorSize is the embedding dimension (default: 1536).
	VectorSize int

	// M is the HNSW graph degree (default: 4).
	M int

	// EfConstruct is the HNSW build-time beam width (default: 400).
	EfConstruct int

	// EfSearch is the HNSW query-time beam width (default: 500).
	EfSearch int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Index stores and searches chunk embeddings in qdrant.
type Index struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	collection  string
	vectorSize  int
	m           int
	efConstruct int
	efSearch    int
}

// New creates a new qdrant index.
func New(cfg Config) *Index {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.VectorSize == 0 {
		cfg.VectorSize = DefaultVectorSize
	}
	if cfg.M == 0 {
		cfg.M = DefaultM
	}
	if cfg.EfConstruct == 0 {
		cfg.EfConstruct = DefaultEfConstruct
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = DefaultEfSearch
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		collection:  cfg.Collection,
		vectorSize:  cfg.VectorSize,
		m:           cfg.M,
		efConstruct: cfg.EfConstruct,
		efSearch:    cfg.EfSearch,
	}
}

// pointID derives the qdrant point ID from a chunk's logical ID.
// Deterministic, so re-indexing the same chunk overwrites in place.
func pointID(logicalID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(logicalID)).String()
}

// EnsureSchema creates the collection if it does not exist. Safe to
// call on every startup.
func (x *Index) EnsureSchema(ctx context.Context) error {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(x.collection))

	var rsp envelope[json.RawMessage]
	err := x.do(ctx, http.MethodGet, path, nil, &rsp)
	if err == nil && rsp.Status.ok() {
		return nil
	}
	if err != nil && !strings.Contains(err.Error(), "404") {
		return fmt.Errorf("qdrant: check collection: %w", err)
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     x.vectorSize,
			"distance": "Cosine",
		},
		"hnsw_config": map[string]any{
			"m":            x.m,
			"ef_construct": x.efConstruct,
		},
	}

	var createRsp envelope[json.RawMessage]
	if err := x.do(ctx, http.MethodPut, path, req, &createRsp); err != nil {
		// Another instance may have created the collection first.
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "409") {
			return nil
		}
		return fmt.Errorf("qdrant: create collection: %w", err)
	}
	if !createRsp.Status.ok() {
		return fmt.Errorf("qdrant: create collection: %s", createRsp.Status.Error)
	}

	logger.Info("created qdrant collection %q (dim=%d, m=%d, ef_construct=%d)",
		x.collection, x.vectorSize, x.m, x.efConstruct)
	return nil
}

// Upsert writes chunks as points. A chunk whose vector does not match
// the collection dimension fails validation; a failed write fails all
// chunks in the batch. Failures are reported as one aggregate error
// listing the affected logical IDs.
func (x *Index) Upsert(ctx context.Context, chunks []domain.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var badIDs []string
	points := make([]map[string]any, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Vector) != x.vectorSize {
			badIDs = append(badIDs, chunk.ID)
			continue
		}
		points = append(points, map[string]any{
			"id":     pointID(chunk.ID),
			"vector": chunk.Vector,
			"payload": chunkPayload{
				ID:         chunk.ID,
				FileID:     chunk.FileID,
				Filename:   chunk.Filename,
				ChunkIndex: chunk.ChunkIndex,
				Content:    chunk.Content,
				Metadata:   chunk.Metadata,
			},
		})
	}

	if len(badIDs) > 0 {
		return &domain.IndexError{
			Op:        "upsert",
			FailedIDs: badIDs,
			Err:       fmt.Errorf("vector dimension mismatch, expected %d", x.vectorSize),
		}
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(x.collection))

	var rsp envelope[json.RawMessage]
	if err := x.do(ctx, http.MethodPut, path, map[string]any{"points": points}, &rsp); err != nil {
		return &domain.IndexError{Op: "upsert", FailedIDs: chunkIDs(chunks), Err: err}
	}
	if !rsp.Status.ok() {
		return &domain.IndexError{
			Op:        "upsert",
			FailedIDs: chunkIDs(chunks),
			Err:       fmt.Errorf("qdrant: %s", rsp.Status.Error),
		}
	}

	return nil
}

// Query returns the k nearest chunks to the given vector, best first.
func (x *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"params": map[string]any{
			"hnsw_ef": x.efSearch,
		},
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(x.collection))

	var rsp envelope[[]scoredPoint]
	if err := x.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(rsp.Result))
	for _, point := range rsp.Result {
		results = append(results, domain.SearchResult{
			ID:         point.Payload.ID,
			FileID:     point.Payload.FileID,
			Filename:   point.Payload.Filename,
			ChunkIndex: point.Payload.ChunkIndex,
			Content:    point.Payload.Content,
			Score:      point.Score,
			Metadata:   point.Payload.Metadata,
		})
	}

	return results, nil
}

// DeleteByFile removes every point belonging to the given file.
func (x *Index) DeleteByFile(ctx context.Context, fileID, filename string) error {
	req := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "file_id", "match": map[string]any{"value": fileID}},
				{"key": "filename", "match": map[string]any{"value": filename}},
			},
		},
	}

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(x.collection))

	var rsp envelope[json.RawMessage]
	if err := x.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return fmt.Errorf("qdrant: delete by file: %w", err)
	}
	if !rsp.Status.ok() {
		return fmt.Errorf("qdrant: delete by file: %s", rsp.Status.Error)
	}

	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func (x *Index) do(ctx context.Context, method, path string, req, rsp any) error {
	var body io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		request.Header.Set("api-key", x.apiKey)
	}

	response, err := x.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func chunkIDs(chunks []domain.IndexedChunk) []string {
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
	}
	return ids
}
