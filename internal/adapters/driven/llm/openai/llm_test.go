package openai

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

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model       string `json:"model"`
			MaxTokens   int    `json:"max_tokens"`
			Temperature float64
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": "grounded answer",
					},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
	})
	require.NoError(t, err)

	answer, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "answer from context only"},
		{Role: "user", Content: "what is in the report?"},
	}, driven.ChatOptions{MaxTokens: 1000, Temperature: 0.1})

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)
}

func TestChat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"choices": []any{},
		})
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
	})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}

func TestDefaults(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}
