package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"expertminer/internal/db"
	"expertminer/internal/models"
)

type fakeStore struct {
	completed    []string
	rescheduled  []reschedule
	deadJobs     map[string]string
	failedRuns   map[string]string
	events       []models.RunEvent
	terminalRuns map[string]bool
}

type reschedule struct {
	jobID     string
	notBefore time.Time
	bumped    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deadJobs:     map[string]string{},
		failedRuns:   map[string]string{},
		terminalRuns: map[string]bool{},
	}
}

func (s *fakeStore) CreateJob(ctx context.Context, id, runID string, notBefore time.Time, maxAttempts int) (*models.QueueJob, error) {
	return &models.QueueJob{
		ID:          surrealmodels.NewRecordID("job", id),
		RunID:       runID,
		Status:      models.JobStatusPending,
		MaxAttempts: maxAttempts,
		NotBefore:   notBefore,
	}, nil
}

func (s *fakeStore) ClaimJob(ctx context.Context, leaseUntil time.Time) (*models.QueueJob, error) {
	return nil, nil
}

func (s *fakeStore) CompleteJob(ctx context.Context, id string) error {
	s.completed = append(s.completed, id)
	return nil
}

func (s *fakeStore) RescheduleJob(ctx context.Context, id string, notBefore time.Time, bumpAttempts bool) error {
	s.rescheduled = append(s.rescheduled, reschedule{jobID: id, notBefore: notBefore, bumped: bumpAttempts})
	return nil
}

func (s *fakeStore) MarkJobFailed(ctx context.Context, id, errMsg string) error {
	s.deadJobs[id] = errMsg
	return nil
}

func (s *fakeStore) FailRun(ctx context.Context, id, reason string) error {
	if s.terminalRuns[id] {
		return fmt.Errorf("run %s: %w", id, db.ErrTerminalStatus)
	}
	s.failedRuns[id] = reason
	return nil
}

func (s *fakeStore) RecordRunEvent(ctx context.Context, runID, kind string, detail map[string]any) error {
	s.events = append(s.events, models.RunEvent{RunID: runID, Kind: kind, Detail: detail})
	return nil
}

type fixedProcessor struct {
	result Result
}

func (p fixedProcessor) ProcessRunJob(ctx context.Context, job models.QueueJob) Result {
	return p.result
}

func testQueue(store *fakeStore) *Queue {
	return New(store, slog.New(slog.DiscardHandler), time.Second, 30)
}

func testJob(attempts int) models.QueueJob {
	return models.QueueJob{
		ID:          surrealmodels.NewRecordID("job", "j1"),
		RunID:       "r1",
		Status:      models.JobStatusProcessing,
		Attempts:    attempts,
		MaxAttempts: 3,
	}
}

func TestDispatchDoneCompletesJob(t *testing.T) {
	store := newFakeStore()
	q := testQueue(store)

	q.dispatch(context.Background(), fixedProcessor{result: Done()}, testJob(0))

	if len(store.completed) != 1 || store.completed[0] != "j1" {
		t.Errorf("Completed jobs = %v, want [j1]", store.completed)
	}
	if len(store.rescheduled) != 0 || len(store.deadJobs) != 0 {
		t.Error("Done must not reschedule or dead-letter")
	}
}

func TestDispatchPendingReschedulesWithoutAttempt(t *testing.T) {
	store := newFakeStore()
	q := testQueue(store)
	before := time.Now()

	q.dispatch(context.Background(), fixedProcessor{result: Pending(time.Minute)}, testJob(0))

	if len(store.rescheduled) != 1 {
		t.Fatalf("Expected one reschedule, got %d", len(store.rescheduled))
	}
	r := store.rescheduled[0]
	if r.bumped {
		t.Error("Pending re-queue must not count an attempt")
	}
	if got := r.notBefore.Sub(before); got < time.Minute || got > time.Minute+5*time.Second {
		t.Errorf("notBefore delay = %v, want ~1m", got)
	}
	if len(store.failedRuns) != 0 {
		t.Error("Pending must not touch the run")
	}
}

func TestDispatchFailureRetriesWithBackoff(t *testing.T) {
	store := newFakeStore()
	q := testQueue(store)
	before := time.Now()

	q.dispatch(context.Background(), fixedProcessor{result: Failed(errors.New("scrape: boom"))}, testJob(1))

	if len(store.rescheduled) != 1 {
		t.Fatalf("Expected a retry reschedule, got %d", len(store.rescheduled))
	}
	r := store.rescheduled[0]
	if !r.bumped {
		t.Error("Failure retry must count an attempt")
	}
	// attempt 1 -> 30s << 1 = 60s backoff
	if got := r.notBefore.Sub(before); got < time.Minute || got > time.Minute+5*time.Second {
		t.Errorf("Backoff delay = %v, want ~1m", got)
	}
	if len(store.deadJobs) != 0 || len(store.failedRuns) != 0 {
		t.Error("Retryable failure must not dead-letter the job or fail the run")
	}
}

func TestDispatchDeadJobFailsRun(t *testing.T) {
	store := newFakeStore()
	q := testQueue(store)

	// Final attempt: the job goes dead and the run must go terminal with it.
	q.dispatch(context.Background(), fixedProcessor{result: Failed(errors.New("provision browser session: boom"))}, testJob(2))

	if len(store.rescheduled) != 0 {
		t.Error("Dead job must not be rescheduled")
	}
	if store.deadJobs["j1"] == "" {
		t.Fatal("Job should be marked failed with its error")
	}
	reason, ok := store.failedRuns["r1"]
	if !ok {
		t.Fatal("Dead job must fail its run")
	}
	if reason != "provision browser session: boom" {
		t.Errorf("Failure reason = %q", reason)
	}

	var failedEvents int
	for _, ev := range store.events {
		if ev.RunID == "r1" && ev.Kind == models.EventFailed {
			failedEvents++
		}
	}
	if failedEvents != 1 {
		t.Errorf("Expected one failed run event, got %d", failedEvents)
	}
}

func TestDispatchDeadJobLeavesTerminalRunAlone(t *testing.T) {
	store := newFakeStore()
	store.terminalRuns["r1"] = true
	q := testQueue(store)

	q.dispatch(context.Background(), fixedProcessor{result: Failed(errors.New("boom"))}, testJob(2))

	if store.deadJobs["j1"] == "" {
		t.Error("Job should still be dead-lettered")
	}
	if len(store.failedRuns) != 0 {
		t.Error("A run that already went terminal must not be re-failed")
	}
	if len(store.events) != 0 {
		t.Error("No event should be recorded for an untouched run")
	}
}
