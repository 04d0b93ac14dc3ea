package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

func newAnswerFixture(results []domain.SearchResult) (*AnswerService, *mockEmbedder, *mockIndex, *mockLLM) {
	embedder := newMockEmbedder()
	index := &mockIndex{queryResults: results}
	llm := &mockLLM{reply: "The sky is blue, according to doc.pdf."}
	svc := NewAnswerService(embedder, index, llm, AnswerConfig{})
	return svc, embedder, index, llm
}

func skyResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			ID:         "file-abc-chunk-0",
			FileID:     "file-abc",
			Filename:   "doc.pdf",
			ChunkIndex: 0,
			Content:    "The sky is blue.",
			Score:      0.95,
		},
	}
}

func TestAnswer_Grounded(t *testing.T) {
	svc, _, index, llm := newAnswerFixture(skyResults())

	answer, err := svc.Answer(context.Background(), "What colour is the sky?", 0)
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.Equal(t, "The sky is blue, according to doc.pdf.", answer.Answer)
	assert.Equal(t, "What colour is the sky?", answer.Question)

	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "doc.pdf", answer.Sources[0].Filename)
	assert.Equal(t, "file-abc", answer.Sources[0].FileID)
	assert.InDelta(t, 0.95, answer.Sources[0].Score, 0.001)

	// topK <= 0 falls back to the default.
	assert.Equal(t, DefaultTopK, index.queryK)

	require.Equal(t, 1, llm.calls)
	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "ONLY use information from the provided context")
	assert.Equal(t, "user", llm.messages[1].Role)
	assert.Contains(t, llm.messages[1].Content, "[Document 1: doc.pdf, Chunk 0]\nThe sky is blue.")
	assert.Contains(t, llm.messages[1].Content, "QUESTION: What colour is the sky?")

	assert.Equal(t, 1000, llm.opts.MaxTokens)
	assert.InDelta(t, 0.1, llm.opts.Temperature, 0.001)
}

func TestAnswer_EmptyIndexShortCircuits(t *testing.T) {
	svc, _, _, llm := newAnswerFixture(nil)

	answer, err := svc.Answer(context.Background(), "anything?", 3)
	require.NoError(t, err)

	assert.Equal(t, noDocumentsAnswer, answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
	assert.Equal(t, "anything?", answer.Question)

	// The generator must never run without retrieved context.
	assert.Zero(t, llm.calls)
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	svc, embedder, _, _ := newAnswerFixture(nil)

	_, err := svc.Answer(context.Background(), "   ", 5)

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, embedder.embedCalls)
}

func TestAnswer_ExplicitTopK(t *testing.T) {
	svc, _, index, _ := newAnswerFixture(skyResults())

	_, err := svc.Answer(context.Background(), "question?", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, index.queryK)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	svc, _, _, llm := newAnswerFixture(skyResults())
	llm.err = errors.New("rate limited")

	_, err := svc.Answer(context.Background(), "question?", 1)

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, llm.err)
}

func TestAnswer_EmbeddingFailure(t *testing.T) {
	svc, embedder, _, llm := newAnswerFixture(skyResults())
	embedder.embedErr = &domain.EmbeddingError{
		Cause:    domain.EmbeddingCauseConnection,
		Attempts: 3,
		Err:      errors.New("dial tcp"),
	}

	_, err := svc.Answer(context.Background(), "question?", 1)

	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Zero(t, llm.calls)
}

func TestBuildContext_RankOrderAndSeparators(t *testing.T) {
	results := []domain.SearchResult{
		{Filename: "a.pdf", ChunkIndex: 2, Content: "first"},
		{Filename: "b.docx", ChunkIndex: 0, Content: "second"},
	}

	context := buildContext(results)

	assert.Equal(t,
		"[Document 1: a.pdf, Chunk 2]\nfirst\n\n[Document 2: b.docx, Chunk 0]\nsecond\n",
		context)
}

func TestFormatSources_PreservesRankOrder(t *testing.T) {
	results := []domain.SearchResult{
		{ID: "x", FileID: "f1", Filename: "a.pdf", ChunkIndex: 1, Content: "one", Score: 0.9},
		{ID: "y", FileID: "f2", Filename: "b.pdf", ChunkIndex: 0, Content: "two", Score: 0.5},
	}

	sources := formatSources(results)
	require.Len(t, sources, 2)
	assert.Equal(t, "f1", sources[0].FileID)
	assert.Equal(t, "f2", sources[1].FileID)
	assert.Greater(t, sources[0].Score, sources[1].Score)
}
