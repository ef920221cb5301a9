package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"expertminer/internal/models"
)

// CreateRun inserts a new run in queued status.
func (c *Client) CreateRun(ctx context.Context, id, userID string, cfg models.RunConfig) (*models.Run, error) {
	sql := `
		CREATE type::record("run", $id) SET
			user_id = $user_id,
			status = "queued",
			config = $config
		RETURN AFTER
	`
	results, err := surrealdb.Query[[]models.Run](ctx, c.db, sql, map[string]any{
		"id":      id,
		"user_id": userID,
		"config":  cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create run: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// GetRun retrieves a run by ID. Returns nil when it does not exist.
func (c *Client) GetRun(ctx context.Context, id string) (*models.Run, error) {
	results, err := surrealdb.Query[[]models.Run](ctx, c.db, `
		SELECT * FROM type::record("run", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get run: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// ListRuns returns a user's runs, most recent first.
func (c *Client) ListRuns(ctx context.Context, userID string, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := surrealdb.Query[[]models.Run](ctx, c.db, `
		SELECT * FROM run WHERE user_id = $user_id ORDER BY created_at DESC LIMIT $limit
	`, map[string]any{"user_id": userID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Run{}, nil
	}
	return (*results)[0].Result, nil
}

// MarkNeedsLogin moves a run to needs_login with the interactive redirect URL
// and the provisioned browser session handle.
func (c *Client) MarkNeedsLogin(ctx context.Context, id, loginURL, browserSession string) error {
	return c.guardedRunUpdate(ctx, id, `
		UPDATE type::record("run", $id) SET
			status = "needs_login",
			needs_login_url = $login_url,
			browser_session = $browser_session
		WHERE status NOT IN ["completed", "failed"]
		RETURN AFTER
	`, map[string]any{"id": id, "login_url": loginURL, "browser_session": browserSession})
}

// MarkRunning moves a run to running and stamps started_at.
func (c *Client) MarkRunning(ctx context.Context, id string) error {
	return c.guardedRunUpdate(ctx, id, `
		UPDATE type::record("run", $id) SET
			status = "running",
			needs_login_url = NONE,
			started_at = time::now()
		WHERE status NOT IN ["completed", "failed"]
		RETURN AFTER
	`, map[string]any{"id": id})
}

// CompleteRun finalizes a run with its token/cost estimates.
func (c *Client) CompleteRun(ctx context.Context, id string, tokenEstimate int, costUSD float64) error {
	return c.guardedRunUpdate(ctx, id, `
		UPDATE type::record("run", $id) SET
			status = "completed",
			token_estimate = $tokens,
			cost_estimate_usd = $cost,
			completed_at = time::now()
		WHERE status NOT IN ["completed", "failed"]
		RETURN AFTER
	`, map[string]any{"id": id, "tokens": tokenEstimate, "cost": costUSD})
}

// FailRun finalizes a run as failed with a human-readable reason.
func (c *Client) FailRun(ctx context.Context, id, reason string) error {
	return c.guardedRunUpdate(ctx, id, `
		UPDATE type::record("run", $id) SET
			status = "failed",
			failure_reason = $reason,
			completed_at = time::now()
		WHERE status NOT IN ["completed", "failed"]
		RETURN AFTER
	`, map[string]any{"id": id, "reason": reason})
}

// guardedRunUpdate runs an UPDATE whose WHERE clause excludes terminal runs.
// An empty result distinguishes ErrNotFound from ErrTerminalStatus.
func (c *Client) guardedRunUpdate(ctx context.Context, id, sql string, vars map[string]any) error {
	results, err := surrealdb.Query[[]models.Run](ctx, c.db, sql, vars)
	if err != nil {
		return fmt.Errorf("update run: %w", wrapQueryError(err))
	}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return nil
	}

	existing, err := c.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update run %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("update run %s (status %s): %w", id, existing.Status, ErrTerminalStatus)
}

// RecordRunEvent appends an event row to a run's audit trail.
func (c *Client) RecordRunEvent(ctx context.Context, runID, kind string, detail map[string]any) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE run_event SET
			run_id = $run_id,
			kind = $kind,
			detail = $detail
	`, map[string]any{"run_id": runID, "kind": kind, "detail": detail})
	if err != nil {
		return fmt.Errorf("record run event: %w", wrapQueryError(err))
	}
	return nil
}

// GetRunEvents returns a run's events, oldest first.
func (c *Client) GetRunEvents(ctx context.Context, runID string) ([]models.RunEvent, error) {
	results, err := surrealdb.Query[[]models.RunEvent](ctx, c.db, `
		SELECT * FROM run_event WHERE run_id = $run_id ORDER BY created_at ASC
	`, map[string]any{"run_id": runID})
	if err != nil {
		return nil, fmt.Errorf("get run events: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.RunEvent{}, nil
	}
	return (*results)[0].Result, nil
}
