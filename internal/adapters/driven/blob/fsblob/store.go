// Package fsblob stores uploaded files on the local filesystem, one
// directory per file ID.
package fsblob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store keeps blobs under baseDir/fileID/filename.
type Store struct {
	baseDir string
}

// New creates a blob store rooted at baseDir, creating it if needed.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("fsblob: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("fsblob: create base directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Put stores the file bytes and returns a file:// URL.
func (s *Store) Put(_ context.Context, fileID, filename string, data []byte) (string, error) {
	path, err := s.path(fileID, filename)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("fsblob: create blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("fsblob: write blob: %w", err)
	}

	return "file://" + path, nil
}

// URL returns the file:// URL for a previously stored blob.
func (s *Store) URL(_ context.Context, fileID, filename string) (string, error) {
	path, err := s.path(fileID, filename)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("fsblob: blob not found: %w", err)
	}
	return "file://" + path, nil
}

// Delete removes a stored blob and its directory if now empty.
func (s *Store) Delete(_ context.Context, fileID, filename string) error {
	path, err := s.path(fileID, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fsblob: delete blob: %w", err)
	}
	// Best effort; fails when other blobs share the directory.
	os.Remove(filepath.Dir(path))
	return nil
}

// path builds the absolute blob path, rejecting names that would
// escape the base directory.
func (s *Store) path(fileID, filename string) (string, error) {
	if fileID == "" || filename == "" {
		return "", fmt.Errorf("fsblob: file ID and filename are required")
	}

	cleanID := filepath.Base(filepath.Clean(fileID))
	cleanName := filepath.Base(filepath.Clean(filename))
	if cleanID != fileID || cleanName != filename ||
		strings.HasPrefix(cleanID, ".") || strings.HasPrefix(cleanName, "..") {
		return "", fmt.Errorf("fsblob: invalid file ID or filename")
	}

	abs, err := filepath.Abs(filepath.Join(s.baseDir, cleanID, cleanName))
	if err != nil {
		return "", fmt.Errorf("fsblob: resolve path: %w", err)
	}
	return abs, nil
}
