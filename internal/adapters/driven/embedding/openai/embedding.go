// Package openai provides an embedding service adapter backed by the
// OpenAI embeddings API, including Azure OpenAI deployments.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-3-small"
	DefaultTimeout    = 60 * time.Second
	DefaultRateLimit  = 10 // requests per second
	DefaultDimensions = 1536
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI or Azure API key (required).
	APIKey string

	// BaseURL overrides the API base URL. For Azure this is the
	// resource endpoint, e.g. https://myresource.openai.azure.com.
	BaseURL string

	// APIVersion selects the Azure API version. When set together
	// with BaseURL, requests use the Azure wire format.
	APIVersion string

	// Model is the embedding model or Azure deployment name
	// (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	// Only applicable to text-embedding-3-* models.
	Dimensions int

	// RateLimit caps outgoing requests per second (default: 10).
	RateLimit int
}

// EmbeddingService generates embeddings using the OpenAI API.
type EmbeddingService struct {
	client     *openai.Client
	limiter    *rate.Limiter
	model      string
	dimensions int
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = DefaultDimensions
		}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIVersion != "" && cfg.BaseURL != "" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		clientCfg.APIVersion = cfg.APIVersion
	} else if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &EmbeddingService{
		client:     openai.NewClientWithConfig(clientCfg),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
// Results come back in input order regardless of API response order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: rate limit wait: %w", err)
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	}

	// The dimensions parameter is only accepted by text-embedding-3-* models.
	if s.model == "text-embedding-3-small" || s.model == "text-embedding-3-large" {
		req.Dimensions = s.dimensions
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", data.Index)
		}
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable and the API key is accepted
// without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
