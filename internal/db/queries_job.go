package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"expertminer/internal/models"
)

// CreateJob enqueues a durable job for a run.
func (c *Client) CreateJob(ctx context.Context, id, runID string, notBefore time.Time, maxAttempts int) (*models.QueueJob, error) {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	results, err := surrealdb.Query[[]models.QueueJob](ctx, c.db, `
		CREATE type::record("job", $id) SET
			run_id = $run_id,
			status = "pending",
			max_attempts = $max_attempts,
			not_before = $not_before
		RETURN AFTER
	`, map[string]any{
		"id":           id,
		"run_id":       runID,
		"max_attempts": maxAttempts,
		"not_before":   notBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create job: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// ClaimJob atomically claims the oldest eligible pending job, or a processing
// job whose lease expired (abandoned by a crashed worker). Returns nil when
// nothing is eligible.
func (c *Client) ClaimJob(ctx context.Context, leaseUntil time.Time) (*models.QueueJob, error) {
	sql := `
		LET $next = (
			SELECT VALUE id FROM job
			WHERE (status = "pending" AND not_before <= time::now())
				OR (status = "processing" AND lease_until != NONE AND lease_until < time::now())
			ORDER BY created_at ASC
			LIMIT 1
		);
		UPDATE $next SET
			status = "processing",
			lease_until = $lease_until
		RETURN AFTER;
	`
	results, err := surrealdb.Query[[]models.QueueJob](ctx, c.db, sql, map[string]any{
		"lease_until": leaseUntil,
	})
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) < 2 || len((*results)[1].Result) == 0 {
		return nil, nil
	}
	return &(*results)[1].Result[0], nil
}

// CompleteJob marks a claimed job done.
func (c *Client) CompleteJob(ctx context.Context, id string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			status = "completed",
			lease_until = NONE,
			completed_at = time::now()
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("complete job: %w", wrapQueryError(err))
	}
	return nil
}

// RescheduleJob returns a claimed job to pending, eligible again at
// notBefore. bumpAttempts distinguishes failure retries (counted against
// max_attempts) from login-wait re-queues (not counted).
func (c *Client) RescheduleJob(ctx context.Context, id string, notBefore time.Time, bumpAttempts bool) error {
	bump := 0
	if bumpAttempts {
		bump = 1
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			status = "pending",
			attempts += $bump,
			not_before = $not_before,
			lease_until = NONE
	`, map[string]any{"id": id, "bump": bump, "not_before": notBefore})
	if err != nil {
		return fmt.Errorf("reschedule job: %w", wrapQueryError(err))
	}
	return nil
}

// MarkJobFailed marks a job permanently failed (attempts exhausted).
func (c *Client) MarkJobFailed(ctx context.Context, id, errMsg string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			status = "failed",
			attempts += 1,
			error = $error,
			lease_until = NONE,
			completed_at = time::now()
	`, map[string]any{"id": id, "error": errMsg})
	if err != nil {
		return fmt.Errorf("mark job failed: %w", wrapQueryError(err))
	}
	return nil
}

// ListJobs returns recent queue entries, newest first.
func (c *Client) ListJobs(ctx context.Context, limit int) ([]models.QueueJob, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := surrealdb.Query[[]models.QueueJob](ctx, c.db, `
		SELECT * FROM job ORDER BY created_at DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.QueueJob{}, nil
	}
	return (*results)[0].Result, nil
}
