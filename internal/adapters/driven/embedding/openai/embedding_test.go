package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves a canned embeddings response, returning one
// vector per input in reversed index order to exercise reordering.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			idx := len(req.Input) - 1 - i
			data[i] = datum{
				Object:    "embedding",
				Embedding: []float32{float32(idx), float32(idx) + 0.5},
				Index:     idx,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	})

	return httptest.NewServer(mux)
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 1536, svc.Dimensions())
}

func TestNewEmbeddingService_DimensionsByModel(t *testing.T) {
	svc, err := NewEmbeddingService(Config{
		APIKey: "test-key",
		Model:  "text-embedding-3-large",
	})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())

	svc, err = NewEmbeddingService(Config{
		APIKey:     "test-key",
		Model:      "custom-deployment",
		Dimensions: 768,
	})
	require.NoError(t, err)
	assert.Equal(t, 768, svc.Dimensions())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
	})
	require.NoError(t, err)

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	// Server returned vectors in reverse order; adapter restores input order.
	assert.Equal(t, []float32{0, 0.5}, embeddings[0])
	assert.Equal(t, []float32{1, 1.5}, embeddings[1])
	assert.Equal(t, []float32{2, 2.5}, embeddings[2])
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key"})
	require.NoError(t, err)

	embeddings, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbed_SingleText(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
	})
	require.NoError(t, err)

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5}, embedding)
}
