// Package config loads service configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/grounder-ai/grounder/internal/logger"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config is the full service configuration. No global instance; the
// loaded struct is passed to the wiring code.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	AI        AIConfig        `toml:"ai"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest"`
	Vector    VectorConfig    `toml:"vector"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	Storage   StorageConfig   `toml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr                  string `toml:"addr"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	Debug                 bool   `toml:"debug"`
}

// RequestTimeout returns the per-request deadline.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// AIConfig holds embedding and chat provider settings.
type AIConfig struct {
	// Provider selects the backend: "openai" (including Azure) or
	// "ollama".
	Provider string `toml:"provider"`

	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	APIVersion string `toml:"api_version"`

	// EmbeddingModel and ChatModel are model names, or deployment
	// names on Azure.
	EmbeddingModel      string `toml:"embedding_model"`
	EmbeddingDimensions int    `toml:"embedding_dimensions"`
	ChatModel           string `toml:"chat_model"`
}

// ChunkingConfig holds text segmentation settings.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrievalConfig holds answer retrieval settings.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

// IngestConfig holds upload pipeline limits.
type IngestConfig struct {
	MaxFileSizeMB     int      `toml:"max_file_size_mb"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	TempDir           string   `toml:"temp_dir"`
}

// Vector backend names.
const (
	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"
)

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	// Backend is "qdrant" (remote collection) or "memory" (in-process,
	// non-persistent; intended for local trials).
	Backend string `toml:"backend"`
}

// QdrantConfig holds vector index settings.
type QdrantConfig struct {
	URL         string `toml:"url"`
	APIKey      string `toml:"api_key"`
	Collection  string `toml:"collection"`
	VectorSize  int    `toml:"vector_size"`
	M           int    `toml:"hnsw_m"`
	EfConstruct int    `toml:"hnsw_ef_construct"`
	EfSearch    int    `toml:"hnsw_ef_search"`
}

// StorageConfig holds local storage paths.
type StorageConfig struct {
	// DataDir holds the sqlite ledger (default: ~/.grounder/data).
	DataDir string `toml:"data_dir"`

	// BlobDir holds uploaded file blobs (default: ~/.grounder/blobs).
	BlobDir string `toml:"blob_dir"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:                  ":8000",
			RequestTimeoutSeconds: 120,
		},
		AI: AIConfig{
			Provider:       ProviderOpenAI,
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Ingest: IngestConfig{
			MaxFileSizeMB:     50,
			AllowedExtensions: []string{".pdf", ".doc", ".docx"},
		},
		Vector: VectorConfig{
			Backend: VectorBackendQdrant,
		},
		Qdrant: QdrantConfig{
			URL:         "http://localhost:6333",
			Collection:  "documents",
			VectorSize:  1536,
			M:           4,
			EfConstruct: 400,
			EfSearch:    500,
		},
	}
}

// Load builds the configuration: defaults, then the TOML file (when
// present), then environment overrides, then validation. An empty
// path falls back to ~/.grounder/config.toml if that file exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".grounder", "config.toml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case explicit:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// Best effort; a .env file is optional.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays GROUNDER_* environment variables.
func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("GROUNDER_ADDR", &cfg.Server.Addr)
	setInt("GROUNDER_REQUEST_TIMEOUT_SECONDS", &cfg.Server.RequestTimeoutSeconds)
	setBool("GROUNDER_DEBUG", &cfg.Server.Debug)

	setString("GROUNDER_AI_PROVIDER", &cfg.AI.Provider)
	setString("GROUNDER_API_KEY", &cfg.AI.APIKey)
	setString("GROUNDER_BASE_URL", &cfg.AI.BaseURL)
	setString("GROUNDER_API_VERSION", &cfg.AI.APIVersion)
	setString("GROUNDER_EMBEDDING_MODEL", &cfg.AI.EmbeddingModel)
	setInt("GROUNDER_EMBEDDING_DIMENSIONS", &cfg.AI.EmbeddingDimensions)
	setString("GROUNDER_CHAT_MODEL", &cfg.AI.ChatModel)

	setInt("GROUNDER_CHUNK_SIZE", &cfg.Chunking.ChunkSize)
	setInt("GROUNDER_CHUNK_OVERLAP", &cfg.Chunking.ChunkOverlap)
	setInt("GROUNDER_TOP_K", &cfg.Retrieval.TopK)

	setString("GROUNDER_VECTOR_BACKEND", &cfg.Vector.Backend)
	setString("GROUNDER_QDRANT_URL", &cfg.Qdrant.URL)
	setString("GROUNDER_QDRANT_API_KEY", &cfg.Qdrant.APIKey)
	setString("GROUNDER_QDRANT_COLLECTION", &cfg.Qdrant.Collection)

	setString("GROUNDER_DATA_DIR", &cfg.Storage.DataDir)
	setString("GROUNDER_BLOB_DIR", &cfg.Storage.BlobDir)
	setString("GROUNDER_TEMP_DIR", &cfg.Ingest.TempDir)
}

// Validate checks cross-field constraints. An overlap at or above the
// chunk size is clamped with a warning rather than rejected.
func (c *Config) Validate() error {
	if c.AI.Provider != ProviderOpenAI && c.AI.Provider != ProviderOllama {
		return fmt.Errorf("config: unknown ai provider %q", c.AI.Provider)
	}
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("config: chunk_overlap must not be negative, got %d", c.Chunking.ChunkOverlap)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		logger.Warn("chunk_overlap %d >= chunk_size %d, clamping to %d",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize, c.Chunking.ChunkSize-1)
		c.Chunking.ChunkOverlap = c.Chunking.ChunkSize - 1
	}
	if c.Vector.Backend != VectorBackendQdrant && c.Vector.Backend != VectorBackendMemory {
		return fmt.Errorf("config: unknown vector backend %q", c.Vector.Backend)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("config: top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Ingest.MaxFileSizeMB <= 0 {
		return fmt.Errorf("config: max_file_size_mb must be positive, got %d", c.Ingest.MaxFileSizeMB)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("config: request_timeout_seconds must be positive, got %d", c.Server.RequestTimeoutSeconds)
	}
	return nil
}
