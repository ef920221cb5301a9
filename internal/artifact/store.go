// Package artifact persists run output documents to disk with integrity
// records in the database.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expertminer/internal/db"
	"expertminer/internal/models"
)

// Store writes blobs under <baseDir>/<runID>/<kind>.md and records the
// content hash and size alongside.
type Store struct {
	baseDir string
	db      *db.Client
	logger  *slog.Logger
}

func NewStore(baseDir string, dbClient *db.Client, logger *slog.Logger) *Store {
	return &Store{baseDir: baseDir, db: dbClient, logger: logger}
}

// Save writes one document and upserts its integrity record. Saving the same
// run and kind twice replaces both the file and the record.
func (s *Store) Save(ctx context.Context, runID, kind string, content []byte) (*models.Artifact, error) {
	dir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, kind+".md")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact %s: %w", kind, err)
	}

	sum := sha256.Sum256(content)
	art, err := s.db.RecordArtifact(ctx, runID, kind, path, hex.EncodeToString(sum[:]), len(content))
	if err != nil {
		return nil, err
	}

	s.logger.Info("artifact saved",
		"run_id", runID,
		"kind", kind,
		"size_bytes", len(content))
	return art, nil
}

// Read loads a stored document back from disk.
func (s *Store) Read(runID, kind string) ([]byte, error) {
	path := filepath.Join(s.baseDir, runID, kind+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s/%s: %w", runID, kind, err)
	}
	return data, nil
}

// List returns the integrity records for a run's stored documents.
func (s *Store) List(ctx context.Context, runID string) ([]models.Artifact, error) {
	return s.db.ListArtifacts(ctx, runID)
}

// Verify recomputes the hash of a stored document and reports whether it
// still matches its integrity record.
func (s *Store) Verify(ctx context.Context, art models.Artifact) (bool, error) {
	data, err := os.ReadFile(art.Path)
	if err != nil {
		return false, fmt.Errorf("read artifact for verify: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) == art.SHA256, nil
}
