package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grounder-ai/grounder/internal/adapters/driven/blob/fsblob"
	"github.com/grounder-ai/grounder/internal/adapters/driven/docstore/sqlite"
	ollamaembed "github.com/grounder-ai/grounder/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/grounder-ai/grounder/internal/adapters/driven/embedding/openai"
	"github.com/grounder-ai/grounder/internal/adapters/driven/embedding/retry"
	ollamallm "github.com/grounder-ai/grounder/internal/adapters/driven/llm/ollama"
	openaillm "github.com/grounder-ai/grounder/internal/adapters/driven/llm/openai"
	"github.com/grounder-ai/grounder/internal/adapters/driven/vectorindex/memory"
	"github.com/grounder-ai/grounder/internal/adapters/driven/vectorindex/qdrant"
	"github.com/grounder-ai/grounder/internal/adapters/driving/httpapi"
	"github.com/grounder-ai/grounder/internal/chunker"
	"github.com/grounder-ai/grounder/internal/config"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
	"github.com/grounder-ai/grounder/internal/core/services"
	"github.com/grounder-ai/grounder/internal/extractors"
	"github.com/grounder-ai/grounder/internal/extractors/docx"
	"github.com/grounder-ai/grounder/internal/extractors/pdf"
	"github.com/grounder-ai/grounder/internal/logger"
)

// shutdownGrace bounds how long in-flight requests may drain.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cfg.Server.Debug {
		logger.SetVerbose(true)
	}
	logger.Info("starting grounder %s", version)

	embedder, llm, err := buildAI(cfg.AI)
	if err != nil {
		return err
	}
	defer embedder.Close()
	defer llm.Close()

	index, err := buildIndex(cfg, embedder.Dimensions())
	if err != nil {
		return err
	}
	defer index.Close()

	blobDir := cfg.Storage.BlobDir
	if blobDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		blobDir = filepath.Join(home, ".grounder", "blobs")
	}
	blobs, err := fsblob.New(blobDir)
	if err != nil {
		return err
	}

	files, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer files.Close()

	splitter := buildSplitter(cfg.Chunking)
	registry := extractors.NewRegistry(pdf.New(), docx.New())

	ingestor := services.NewIngestService(blobs, registry, splitter, embedder, index, files,
		services.IngestConfig{
			MaxFileSizeMB:     cfg.Ingest.MaxFileSizeMB,
			AllowedExtensions: cfg.Ingest.AllowedExtensions,
			TempDir:           cfg.Ingest.TempDir,
		})
	answerer := services.NewAnswerService(embedder, index, llm,
		services.AnswerConfig{DefaultTopK: cfg.Retrieval.TopK})

	srv := httpapi.NewServer(ingestor, answerer, httpapi.Config{
		Addr:           cfg.Server.Addr,
		RequestTimeout: cfg.Server.RequestTimeout(),
		Debug:          cfg.Server.Debug,
		ServiceName:    "grounder",
		ServiceVersion: version,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildAI constructs the embedding and chat services for the
// configured provider, with the retry policy applied to embeddings.
func buildAI(cfg config.AIConfig) (driven.EmbeddingService, driven.LLMService, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		embedder, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
		})
		if err != nil {
			return nil, nil, err
		}
		llm, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
			Model:      cfg.ChatModel,
		})
		if err != nil {
			return nil, nil, err
		}
		return retry.Wrap(embedder), llm, nil

	case config.ProviderOllama:
		embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
		})
		llm := ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.ChatModel,
		})
		return retry.Wrap(embedder), llm, nil

	default:
		return nil, nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// buildIndex constructs the configured vector index backend. The collection
// vector size follows the embedder's dimensions when known.
func buildIndex(cfg config.Config, embedderDims int) (driven.VectorIndex, error) {
	switch cfg.Vector.Backend {
	case config.VectorBackendQdrant:
		vectorSize := cfg.Qdrant.VectorSize
		if embedderDims > 0 {
			vectorSize = embedderDims
		}
		return qdrant.New(qdrant.Config{
			BaseURL:     cfg.Qdrant.URL,
			APIKey:      cfg.Qdrant.APIKey,
			Collection:  cfg.Qdrant.Collection,
			VectorSize:  vectorSize,
			M:           cfg.Qdrant.M,
			EfConstruct: cfg.Qdrant.EfConstruct,
			EfSearch:    cfg.Qdrant.EfSearch,
		}), nil

	case config.VectorBackendMemory:
		logger.Warn("using in-memory vector index, indexed data will not survive restarts")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
	}
}

// buildSplitter prefers token-aware chunking and falls back to the
// character heuristic when the tokenizer cannot be initialised.
func buildSplitter(cfg config.ChunkingConfig) *chunker.Splitter {
	opts := []chunker.Option{
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithChunkOverlap(cfg.ChunkOverlap),
	}

	tokenizer, err := chunker.NewTokenizer()
	if err != nil {
		logger.Warn("tokenizer unavailable, using character-based chunking: %v", err)
	} else {
		opts = append(opts, chunker.WithTokenizer(tokenizer))
	}

	return chunker.New(opts...)
}
