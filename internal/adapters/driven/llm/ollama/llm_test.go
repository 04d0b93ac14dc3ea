package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		require.NotNil(t, req.Options)
		assert.Equal(t, 1000, req.Options.NumPredict)
		assert.InDelta(t, 0.1, req.Options.Temperature, 0.001)

		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "grounded answer"},
			Done:    true,
		})
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})

	answer, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "answer from context only"},
		{Role: "user", Content: "what is in the report?"},
	}, driven.ChatOptions{MaxTokens: 1000, Temperature: 0.1})

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDefaults(t *testing.T) {
	svc := NewLLMService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
}
