// Package openai provides an LLM service adapter backed by the OpenAI
// chat completions API, including Azure OpenAI deployments.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI or Azure API key (required).
	APIKey string

	// BaseURL overrides the API base URL. For Azure this is the
	// resource endpoint, e.g. https://myresource.openai.azure.com.
	BaseURL string

	// APIVersion selects the Azure API version. When set together
	// with BaseURL, requests use the Azure wire format.
	APIVersion string

	// Model is the chat model or Azure deployment name
	// (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides chat completion using the OpenAI API.
type LLMService struct {
	client *openai.Client
	model  string
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIVersion != "" && cfg.BaseURL != "" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		clientCfg.APIVersion = cfg.APIVersion
	} else if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Chat conducts a conversation and returns the assistant's reply.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: chatMessages,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = float32(opts.Temperature)
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the chat model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable and the API key is accepted
// without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
