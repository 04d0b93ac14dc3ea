package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
	"github.com/grounder-ai/grounder/internal/core/ports/driving"
	"github.com/grounder-ai/grounder/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// Default ingestion limits.
const (
	DefaultMaxFileSizeMB = 50
)

// DefaultAllowedExtensions are the upload formats accepted by default.
var DefaultAllowedExtensions = []string{".pdf", ".doc", ".docx"}

// ExtractorRegistry dispatches text extraction by file extension.
type ExtractorRegistry interface {
	// Supports reports whether the extension has a registered extractor.
	Supports(ext string) bool

	// Extract pulls normalized text from the document bytes.
	Extract(ctx context.Context, data []byte, ext string) (string, error)
}

// Splitter segments extracted text into chunks.
type Splitter interface {
	Split(text string, metadata map[string]string) []domain.Chunk
}

// IngestConfig holds ingestion pipeline limits.
type IngestConfig struct {
	// MaxFileSizeMB is the upload size ceiling (default: 50).
	MaxFileSizeMB int

	// AllowedExtensions is the upload format allow-list
	// (default: .pdf, .doc, .docx).
	AllowedExtensions []string

	// TempDir is where uploads are staged during processing
	// (default: os.TempDir()/grounder).
	TempDir string
}

// IngestService runs the upload-to-index pipeline.
type IngestService struct {
	blobs      driven.BlobStore
	extractors ExtractorRegistry
	splitter   Splitter
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	files      driven.FileStore

	maxFileSize int64
	allowedExts map[string]bool
	tempDir     string
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	blobs driven.BlobStore,
	extractors ExtractorRegistry,
	splitter Splitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	files driven.FileStore,
	cfg IngestConfig,
) *IngestService {
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultAllowedExtensions
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "grounder")
	}

	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}

	return &IngestService{
		blobs:       blobs,
		extractors:  extractors,
		splitter:    splitter,
		embedder:    embedder,
		index:       index,
		files:       files,
		maxFileSize: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		allowedExts: allowed,
		tempDir:     cfg.TempDir,
	}
}

// newFileID generates an upload identifier of the form "file-<12 hex>".
func newFileID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "file-" + hex[:12]
}

// Ingest validates, stores, extracts, chunks, embeds, and indexes one
// file. Any stage failure aborts the remaining stages; the stored blob
// is removed again on a later-stage failure.
func (s *IngestService) Ingest(ctx context.Context, filename string, data []byte) (*domain.IngestReceipt, error) {
	maxMB := s.maxFileSize / (1024 * 1024)

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !s.allowedExts[ext] {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("unsupported file extension %q, allowed: %s",
				ext, strings.Join(s.allowedList(), ", ")),
		}
	}
	// The allow-list is configuration; the registry is capability. Both must
	// agree before any bytes are staged.
	if !s.extractors.Supports(ext) {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("no extractor registered for %q", ext),
		}
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("file size exceeds maximum allowed size of %dMB", maxMB),
		}
	}

	fileID := newFileID()
	logger.Section("Ingestion")
	logger.Info("ingesting %s as %s (%d bytes)", filename, fileID, len(data))

	tempPath, err := s.stageTemp(fileID, ext, data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to delete temporary file %s: %v", tempPath, err)
		}
	}()

	blobURL, err := s.blobs.Put(ctx, fileID, filename, data)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	receipt, err := s.indexFile(ctx, fileID, filename, blobURL, data, ext)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, fileID, filename); delErr != nil {
			logger.Warn("failed to remove blob after ingest failure: %v", delErr)
		}
		return nil, err
	}
	return receipt, nil
}

// indexFile runs the extract-chunk-embed-index stages.
func (s *IngestService) indexFile(ctx context.Context, fileID, filename, blobURL string, data []byte, ext string) (*domain.IngestReceipt, error) {
	text, err := s.extractors.Extract(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ValidationError{
			Reason: "failed to extract text from document, the file may be empty or corrupted",
		}
	}

	metadata := map[string]string{
		"file_id":  fileID,
		"filename": filename,
	}
	chunks := s.splitter.Split(text, metadata)
	if len(chunks) == 0 {
		return nil, &domain.ValidationError{
			Reason: "failed to chunk document, the document may be too short",
		}
	}
	logger.Debug("split into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("mismatch between chunks and embeddings: %d vs %d",
			len(chunks), len(embeddings))
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal chunk metadata: %w", err)
	}

	indexed := make([]domain.IndexedChunk, len(chunks))
	for i, chunk := range chunks {
		indexed[i] = domain.IndexedChunk{
			ID:         domain.ChunkDocID(fileID, chunk.Index),
			FileID:     fileID,
			Filename:   filename,
			ChunkIndex: chunk.Index,
			Content:    chunk.Content,
			Vector:     embeddings[i],
			Metadata:   string(metadataJSON),
		}
	}

	if err := s.index.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, indexed); err != nil {
		return nil, err
	}

	if err := s.files.SaveFile(ctx, domain.FileRecord{
		FileID:     fileID,
		Filename:   filename,
		SizeBytes:  int64(len(data)),
		ChunkCount: len(chunks),
		StorageURL: blobURL,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("record file: %w", err)
	}

	logger.Info("indexed %s: %d chunks", fileID, len(chunks))

	return &domain.IngestReceipt{
		FileID:     fileID,
		Filename:   filename,
		StorageURL: blobURL,
		Status:     "success",
		Message:    fmt.Sprintf("File uploaded and indexed successfully. %d chunks created.", len(chunks)),
	}, nil
}

// Remove deletes a previously ingested file: its indexed chunks, its
// blob, and its ledger row.
func (s *IngestService) Remove(ctx context.Context, fileID, filename string) error {
	if fileID == "" {
		return &domain.ValidationError{Reason: "file ID must not be empty"}
	}

	rec, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("look up file: %w", err)
	}
	if rec == nil {
		return &domain.ValidationError{Reason: fmt.Sprintf("unknown file ID %q", fileID)}
	}
	if filename == "" {
		filename = rec.Filename
	}

	if err := s.index.DeleteByFile(ctx, fileID, filename); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, fileID, filename); err != nil {
		logger.Warn("failed to delete blob for %s: %v", fileID, err)
	}
	if err := s.files.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}

	logger.Info("removed %s (%s)", fileID, filename)
	return nil
}

// stageTemp writes the upload to the staging directory.
func (s *IngestService) stageTemp(fileID, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(s.tempDir, 0o700); err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}

	path := filepath.Join(s.tempDir, fileID+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return path, nil
}

func (s *IngestService) allowedList() []string {
	exts := make([]string, 0, len(s.allowedExts))
	for ext := range s.allowedExts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
