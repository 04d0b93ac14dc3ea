// Package sqlite provides the SQLite-backed ledger of ingested files.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/grounder-ai/grounder/internal/adapters/driven/docstore/sqlite/migrations"
	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FileStore = (*Store)(nil)

// Store is the SQLite file ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.grounder/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".grounder", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// WAL mode for concurrent readers during ingestion.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveFile records a newly ingested file, replacing any previous row
// with the same file ID.
func (s *Store) SaveFile(ctx context.Context, rec domain.FileRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (file_id, filename, size_bytes, chunk_count, storage_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			filename = excluded.filename,
			size_bytes = excluded.size_bytes,
			chunk_count = excluded.chunk_count,
			storage_url = excluded.storage_url,
			created_at = excluded.created_at
	`, rec.FileID, rec.Filename, rec.SizeBytes, rec.ChunkCount, rec.StorageURL, rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving file record: %w", err)
	}
	return nil
}

// GetFile returns the record for a file ID, or nil when unknown.
func (s *Store) GetFile(ctx context.Context, fileID string) (*domain.FileRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT file_id, filename, size_bytes, chunk_count, storage_url, created_at
		FROM files WHERE file_id = ?
	`, fileID)

	var rec domain.FileRecord
	err := row.Scan(&rec.FileID, &rec.Filename, &rec.SizeBytes, &rec.ChunkCount,
		&rec.StorageURL, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting file record: %w", err)
	}
	return &rec, nil
}

// ListFiles returns all records, newest first.
func (s *Store) ListFiles(ctx context.Context) ([]domain.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_id, filename, size_bytes, chunk_count, storage_url, created_at
		FROM files ORDER BY created_at DESC, file_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing file records: %w", err)
	}
	defer rows.Close()

	var records []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		if err := rows.Scan(&rec.FileID, &rec.Filename, &rec.SizeBytes, &rec.ChunkCount,
			&rec.StorageURL, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file records: %w", err)
	}
	return records, nil
}

// DeleteFile removes a file's ledger row. Deleting an unknown file
// is not an error.
func (s *Store) DeleteFile(ctx context.Context, fileID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("deleting file record: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
