package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
	"github.com/grounder-ai/grounder/internal/core/ports/driving"
	"github.com/grounder-ai/grounder/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Answerer = (*AnswerService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller does
// not specify one.
const DefaultTopK = 5

// Generation parameters. Low temperature keeps attribution reliable.
const (
	answerMaxTokens   = 1000
	answerTemperature = 0.1
)

// noDocumentsAnswer is returned when the index has nothing to retrieve.
// The LLM is never called in that case.
const noDocumentsAnswer = "I cannot answer this question because there are no documents uploaded and indexed yet. Please upload documents first, then ask your question."

// groundingSystemPrompt pins the model to the retrieved context.
const groundingSystemPrompt = `You are a document-based Q&A assistant. Your ONLY source of information is the context provided from uploaded documents.

CRITICAL RULES - YOU MUST FOLLOW THESE STRICTLY:
1. ONLY use information from the provided context to answer questions
2. DO NOT use any knowledge, facts, or information from outside the provided context
3. DO NOT make assumptions or inferences beyond what is explicitly stated in the context
4. If the context doesn't contain enough information to answer the question, you MUST say: "I cannot answer this question based on the provided documents. The information is not available in the uploaded documents."
5. If asked about something not in the documents, explicitly state that it's not in the provided documents
6. When referencing information, mention which document (filename) it came from
7. Be accurate and only state facts that are directly supported by the context
8. Do not add any information, examples, or explanations that are not in the provided context

Remember: You are answering ONLY from the uploaded documents. You have no other knowledge base.`

// groundingUserPrompt frames the retrieved context and the question.
const groundingUserPrompt = `Below is the context extracted from uploaded documents. Use ONLY this information to answer the question.

CONTEXT FROM UPLOADED DOCUMENTS:
%s

QUESTION: %s

INSTRUCTIONS:
- Answer the question using ONLY the information from the context above
- If the answer is not in the context, explicitly state that the information is not available in the uploaded documents
- Do not use any knowledge outside of what is provided in the context
- Reference the document name when citing information

ANSWER (based only on the provided context):`

// AnswerConfig holds answering defaults.
type AnswerConfig struct {
	// DefaultTopK is used when the caller passes topK <= 0 (default: 5).
	DefaultTopK int
}

// AnswerService answers questions strictly from retrieved chunks.
type AnswerService struct {
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	llm         driven.LLMService
	defaultTopK int
}

// NewAnswerService creates a new answering service.
func NewAnswerService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = DefaultTopK
	}

	return &AnswerService{
		embedder:    embedder,
		index:       index,
		llm:         llm,
		defaultTopK: cfg.DefaultTopK,
	}
}

// Answer embeds the question, retrieves the topK most similar chunks,
// and generates a grounded answer with ranked source attribution.
func (s *AnswerService) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &domain.ValidationError{Reason: "question must not be empty"}
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	logger.Section("Answer")
	logger.Debug("question length %d, top_k %d", len(question), topK)

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := s.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		logger.Warn("no search results, index is empty")
		return &domain.Answer{
			Answer:   noDocumentsAnswer,
			Sources:  []domain.SourceDocument{},
			Question: question,
		}, nil
	}

	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: groundingSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(groundingUserPrompt, buildContext(results), question)},
	}, driven.ChatOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}

	logger.Debug("answered with %d sources", len(results))

	return &domain.Answer{
		Answer:   strings.TrimSpace(reply),
		Sources:  formatSources(results),
		Question: question,
	}, nil
}

// buildContext renders retrieved chunks in rank order, one block per
// chunk, separated by blank lines.
func buildContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = fmt.Sprintf("[Document %d: %s, Chunk %d]\n%s\n",
			i+1, result.Filename, result.ChunkIndex, result.Content)
	}
	return strings.Join(parts, "\n")
}

// formatSources projects search results into attribution records,
// preserving rank order.
func formatSources(results []domain.SearchResult) []domain.SourceDocument {
	sources := make([]domain.SourceDocument, len(results))
	for i, result := range results {
		sources[i] = domain.SourceDocument{
			Content:    result.Content,
			FileID:     result.FileID,
			Filename:   result.Filename,
			ChunkIndex: result.ChunkIndex,
			Score:      result.Score,
		}
	}
	return sources
}
