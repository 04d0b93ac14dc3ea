package driving

import (
	"context"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

// Answerer answers questions strictly from retrieved document context.
type Answerer interface {
	// Answer embeds the question, retrieves the topK most similar chunks,
	// and generates a grounded answer with ranked source attribution.
	// topK <= 0 selects the configured default.
	Answer(ctx context.Context, question string, topK int) (*domain.Answer, error)
}
