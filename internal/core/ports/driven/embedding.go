package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI / Azure OpenAI (text-embedding-ada-002, text-embedding-3-*)
//   - Local models via inference servers
//
// The pipeline-facing implementation wraps the raw client with bounded
// retry and failure classification; see adapters/driven/embedding/retry.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Blank input returns a nil vector and nil error without a remote call.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Blank inputs are
	// filtered out before the remote call; if nothing remains the result is
	// empty and no call is made. Result vectors are positionally aligned
	// with the filtered input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1536, 3072).
	// This must match the vector index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model or deployment.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
