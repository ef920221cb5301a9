package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"expertminer/internal/models"
)

// RecordArtifact upserts the integrity record for one stored document.
// Re-running a bundle step for the same run and kind replaces the old record.
func (c *Client) RecordArtifact(ctx context.Context, runID, kind, path, sha256 string, sizeBytes int) (*models.Artifact, error) {
	key := runID + "_" + kind
	results, err := surrealdb.Query[[]models.Artifact](ctx, c.db, `
		UPSERT type::record("artifact", $key) SET
			run_id = $run_id,
			kind = $kind,
			path = $path,
			sha256 = $sha256,
			size_bytes = $size_bytes
		RETURN AFTER
	`, map[string]any{
		"key":        key,
		"run_id":     runID,
		"kind":       kind,
		"path":       path,
		"sha256":     sha256,
		"size_bytes": sizeBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("record artifact: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("record artifact: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// ListArtifacts returns a run's stored documents, oldest first.
func (c *Client) ListArtifacts(ctx context.Context, runID string) ([]models.Artifact, error) {
	results, err := surrealdb.Query[[]models.Artifact](ctx, c.db, `
		SELECT * FROM artifact WHERE run_id = $run_id ORDER BY created_at ASC
	`, map[string]any{"run_id": runID})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Artifact{}, nil
	}
	return (*results)[0].Result, nil
}
