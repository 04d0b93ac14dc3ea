// Package retry wraps an embedding service with bounded retries and
// blank-input filtering. Failures that survive all attempts are
// classified into a domain error carrying a remediation hint.
package retry

import (
	"context"
	"strings"
	"time"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
	"github.com/grounder-ai/grounder/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default retry policy.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Sleeper waits for the given duration, honoring context cancellation.
type Sleeper func(ctx context.Context, d time.Duration) error

// sleep is the production Sleeper.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option configures the retry wrapper.
type Option func(*EmbeddingService)

// WithMaxAttempts sets the total number of attempts per batch.
func WithMaxAttempts(n int) Option {
	return func(s *EmbeddingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the base backoff delay. Attempt n waits base*2^n.
func WithBaseDelay(d time.Duration) Option {
	return func(s *EmbeddingService) {
		if d > 0 {
			s.baseDelay = d
		}
	}
}

// WithSleeper replaces the sleep function. Useful for testing.
func WithSleeper(sl Sleeper) Option {
	return func(s *EmbeddingService) {
		if sl != nil {
			s.sleep = sl
		}
	}
}

// EmbeddingService retries a wrapped embedding service with
// exponential backoff.
type EmbeddingService struct {
	inner       driven.EmbeddingService
	maxAttempts int
	baseDelay   time.Duration
	sleep       Sleeper
}

// Wrap decorates an embedding service with the retry policy.
func Wrap(inner driven.EmbeddingService, opts ...Option) *EmbeddingService {
	s := &EmbeddingService{
		inner:       inner,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed generates a vector embedding for the given text. Blank input
// returns a nil vector and nil error without a remote call.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, nil
	}
	return embeddings[0], nil
}

// EmbedBatch filters blank inputs, then retries the wrapped batch call.
// If every input is blank, no upstream call is made and the result is
// empty. Blank inputs inside a mixed batch keep a nil vector at their
// position so indexes line up with the caller's slice.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	kept := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		kept = append(kept, text)
		positions = append(positions, i)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	embedded, err := s.embedWithRetry(ctx, kept)
	if err != nil {
		return nil, err
	}

	if len(kept) == len(texts) {
		return embedded, nil
	}

	result := make([][]float32, len(texts))
	for i, pos := range positions {
		result[pos] = embedded[i]
	}
	return result, nil
}

func (s *EmbeddingService) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		attempts++
		embeddings, err := s.inner.EmbedBatch(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		if attempt < s.maxAttempts-1 {
			delay := s.baseDelay * (1 << attempt)
			logger.Warn("embedding attempt %d/%d failed, retrying in %s: %v",
				attempt+1, s.maxAttempts, delay, err)
			if err := s.sleep(ctx, delay); err != nil {
				break
			}
		}
	}

	cause, hint := domain.ClassifyEmbeddingFailure(lastErr)
	return nil, &domain.EmbeddingError{
		Cause:    cause,
		Hint:     hint,
		Attempts: attempts,
		Err:      lastErr,
	}
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping validates the wrapped service is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases resources held by the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
