package driven

import "context"

// LLMService provides chat-style completion for answer generation.
//
// Implementations may include:
//   - OpenAI / Azure OpenAI (GPT-4, gpt-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a single-turn or multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model or deployment being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Grounded answering uses a low setting to keep attribution reliable.
	Temperature float64
}
