// Package chunker splits normalised document text into overlapping
// token-bounded chunks. When a tokenizer is available, windows are measured
// in exact tokens; otherwise a character-based approximation with
// word-boundary snapping is used.
package chunker

import (
	"strings"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

// DefaultChunkSize is the default window size in tokens.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default overlap between windows in tokens.
const DefaultChunkOverlap = 200

// charsPerToken is the character-mode approximation: 1 token ≈ 4 characters.
const charsPerToken = 4

// Tokenizer encodes text into a token sequence and decodes it back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Splitter produces overlapping chunks from document text.
type Splitter struct {
	chunkSize int
	overlap   int
	tokenizer Tokenizer
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the window size in tokens.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between windows in tokens.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithTokenizer sets the tokenizer. A nil tokenizer selects the
// character-based fallback.
func WithTokenizer(t Tokenizer) Option {
	return func(s *Splitter) {
		s.tokenizer = t
	}
}

// New creates a splitter with the given options.
// An overlap >= chunk size would stall the window, so it is clamped to
// chunkSize-1.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize - 1
	}

	return s
}

// ChunkSize returns the effective window size in tokens.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// ChunkOverlap returns the effective overlap in tokens.
func (s *Splitter) ChunkOverlap() int {
	return s.overlap
}

// Split chunks text into ordered segments, each carrying the caller-supplied
// metadata verbatim plus span bookkeeping. Empty or whitespace-only text
// yields an empty result. The caller invokes Split once per document, so no
// chunk ever crosses a document boundary.
func (s *Splitter) Split(text string, metadata map[string]string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if s.tokenizer != nil {
		return s.splitTokens(text, metadata)
	}
	return s.splitChars(text, metadata)
}

// splitTokens slides a window of chunkSize tokens, advancing by
// chunkSize-overlap each step, and decodes each window back to text.
func (s *Splitter) splitTokens(text string, metadata map[string]string) []domain.Chunk {
	tokens := s.tokenizer.Encode(text)

	estimated := (len(tokens) / (s.chunkSize - s.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < len(tokens) {
		end := start + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, domain.Chunk{
			Content:  s.tokenizer.Decode(tokens[start:end]),
			Index:    len(chunks),
			Span:     domain.Span{Start: start, End: end, Unit: domain.SpanTokens},
			Metadata: copyMetadata(metadata),
		})

		// No trailing empty chunk once the window reaches the end.
		if end >= len(tokens) {
			break
		}
		start = end - s.overlap
	}

	return chunks
}

// splitChars is the fallback when no tokenizer is available. Windows are
// measured in characters (runes, never bytes, so multi-byte text is not cut
// mid-rune), cuts snap backward to the last whitespace within the window, and
// the start index always advances by at least one.
func (s *Splitter) splitChars(text string, metadata map[string]string) []domain.Chunk {
	charSize := s.chunkSize * charsPerToken
	charOverlap := s.overlap * charsPerToken

	runes := []rune(text)
	var chunks []domain.Chunk

	start := 0
	for start < len(runes) {
		end := start + charSize
		if end > len(runes) {
			end = len(runes)
		}

		// Snap the cut to a word boundary when one exists past the window start.
		if end < len(runes) {
			breakPoint := -1
			for i := end - 1; i > start; i-- {
				if runes[i] == ' ' || runes[i] == '\n' {
					breakPoint = i
					break
				}
			}
			if breakPoint > start {
				end = breakPoint + 1
			}
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			chunks = append(chunks, domain.Chunk{
				Content:  content,
				Index:    len(chunks),
				Span:     domain.Span{Start: start, End: end, Unit: domain.SpanChars},
				Metadata: copyMetadata(metadata),
			})
		}

		if end >= len(runes) {
			break
		}

		// Guarantee forward progress even on pathological inputs.
		next := end - charOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// copyMetadata clones the caller's metadata so chunks stay immutable.
func copyMetadata(metadata map[string]string) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
