// Package queue drives the durable SurrealDB-backed job queue: enqueueing
// run jobs and the worker poll loop that claims and dispatches them.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"expertminer/internal/db"
	"expertminer/internal/models"
)

const (
	defaultMaxAttempts = 3
	retryBaseDelay     = 30 * time.Second
)

// Outcome is how a processed job returns to the queue.
type Outcome int

const (
	// OutcomeDone removes the job from the queue.
	OutcomeDone Outcome = iota
	// OutcomePending re-enqueues the job after a delay without counting an
	// attempt. Used for cooperative waits like the login poll.
	OutcomePending
	// OutcomeFailed counts an attempt; the job retries with backoff until
	// attempts run out, then goes dead.
	OutcomeFailed
)

// Result is a processor's verdict on one claimed job.
type Result struct {
	Outcome Outcome
	Delay   time.Duration
	Err     error
}

func Done() Result                       { return Result{Outcome: OutcomeDone} }
func Pending(delay time.Duration) Result { return Result{Outcome: OutcomePending, Delay: delay} }
func Failed(err error) Result            { return Result{Outcome: OutcomeFailed, Err: err} }

// Processor handles one claimed job.
type Processor interface {
	ProcessRunJob(ctx context.Context, job models.QueueJob) Result
}

// Store is the database surface the queue needs. *db.Client satisfies it.
type Store interface {
	CreateJob(ctx context.Context, id, runID string, notBefore time.Time, maxAttempts int) (*models.QueueJob, error)
	ClaimJob(ctx context.Context, leaseUntil time.Time) (*models.QueueJob, error)
	CompleteJob(ctx context.Context, id string) error
	RescheduleJob(ctx context.Context, id string, notBefore time.Time, bumpAttempts bool) error
	MarkJobFailed(ctx context.Context, id, errMsg string) error
	FailRun(ctx context.Context, id, reason string) error
	RecordRunEvent(ctx context.Context, runID, kind string, detail map[string]any) error
}

// Queue enqueues jobs and runs the claim/dispatch loop.
type Queue struct {
	db           Store
	logger       *slog.Logger
	pollInterval time.Duration
	leaseWindow  time.Duration
}

func New(store Store, logger *slog.Logger, pollInterval time.Duration, maxRunMinutes int) *Queue {
	return &Queue{
		db:           store,
		logger:       logger,
		pollInterval: pollInterval,
		leaseWindow:  time.Duration(maxRunMinutes) * time.Minute,
	}
}

// Enqueue creates a durable job for a run, eligible immediately.
func (q *Queue) Enqueue(ctx context.Context, runID string) (*models.QueueJob, error) {
	job, err := q.db.CreateJob(ctx, uuid.NewString()[:8], runID, time.Now(), defaultMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("enqueue run %s: %w", runID, err)
	}
	q.logger.Info("job enqueued", "job_id", models.MustRecordIDString(job.ID), "run_id", runID)
	return job, nil
}

// Run polls for jobs until the context is canceled. One job at a time per
// worker process; the per-job lease lets another worker reclaim work from a
// crashed one.
func (q *Queue) Run(ctx context.Context, processor Processor) error {
	q.logger.Info("queue loop started", "poll_interval", q.pollInterval)
	for {
		select {
		case <-ctx.Done():
			q.logger.Info("queue loop stopped")
			return ctx.Err()
		default:
		}

		job, err := q.db.ClaimJob(ctx, time.Now().Add(q.leaseWindow))
		if err != nil {
			q.logger.Error("claim failed", "error", err)
		}
		if job == nil {
			select {
			case <-ctx.Done():
				q.logger.Info("queue loop stopped")
				return ctx.Err()
			case <-time.After(q.pollInterval):
			}
			continue
		}

		q.dispatch(ctx, processor, *job)
	}
}

func (q *Queue) dispatch(ctx context.Context, processor Processor, job models.QueueJob) {
	jobID := models.MustRecordIDString(job.ID)
	log := q.logger.With("job_id", jobID, "run_id", job.RunID)

	result := processor.ProcessRunJob(ctx, job)

	switch result.Outcome {
	case OutcomeDone:
		if err := q.db.CompleteJob(ctx, jobID); err != nil {
			log.Error("complete job failed", "error", err)
		}

	case OutcomePending:
		log.Info("job re-enqueued", "delay", result.Delay)
		if err := q.db.RescheduleJob(ctx, jobID, time.Now().Add(result.Delay), false); err != nil {
			log.Error("reschedule failed", "error", err)
		}

	case OutcomeFailed:
		// The attempt about to be recorded counts toward the limit.
		if job.Attempts+1 >= job.MaxAttempts {
			log.Error("job dead, attempts exhausted", "attempts", job.Attempts+1, "error", result.Err)
			if err := q.db.MarkJobFailed(ctx, jobID, result.Err.Error()); err != nil {
				log.Error("mark job failed errored", "error", err)
			}
			q.failRun(ctx, job.RunID, result.Err, log)
			return
		}
		delay := retryBaseDelay << job.Attempts
		log.Warn("job failed, retrying", "attempt", job.Attempts+1, "delay", delay, "error", result.Err)
		if err := q.db.RescheduleJob(ctx, jobID, time.Now().Add(delay), true); err != nil {
			log.Error("reschedule after failure errored", "error", err)
		}
	}
}

// failRun makes sure a dead job leaves its run terminal. Without this, an
// error raised before the running phase would exhaust the job's attempts and
// strand the run in a non-terminal status with no failure reason.
func (q *Queue) failRun(ctx context.Context, runID string, cause error, log *slog.Logger) {
	if err := q.db.FailRun(ctx, runID, cause.Error()); err != nil {
		if errors.Is(err, db.ErrTerminalStatus) || errors.Is(err, db.ErrNotFound) {
			return
		}
		log.Error("fail run after dead job errored", "error", err)
		return
	}
	if err := q.db.RecordRunEvent(ctx, runID, models.EventFailed, map[string]any{
		"reason": cause.Error(),
	}); err != nil {
		log.Warn("record failed event errored", "error", err)
	}
}
