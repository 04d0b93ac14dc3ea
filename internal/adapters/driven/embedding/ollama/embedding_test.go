package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"alpha", "beta"}, req.Input)

		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, embeddings[1])
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1}},
		})
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 embeddings")
}

func TestEmbedBatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})
	require.NoError(t, svc.Ping(context.Background()))
}
