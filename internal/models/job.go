package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// JobStatus is the queue-level state of a job, independent of the run status
// the job processes.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// QueueJob is one durable work-queue entry pointing at a run.
type QueueJob struct {
	ID          surrealmodels.RecordID `json:"id"`
	RunID       string                 `json:"run_id"`
	Status      JobStatus              `json:"status"`
	Attempts    int                    `json:"attempts"`
	MaxAttempts int                    `json:"max_attempts"`
	NotBefore   time.Time              `json:"not_before"`
	LeaseUntil  *time.Time             `json:"lease_until,omitempty"`
	Error       *string                `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// UsagePeriod is one user's counters for a calendar month.
type UsagePeriod struct {
	ID     surrealmodels.RecordID `json:"id"`
	UserID string                 `json:"user_id"`
	Period string                 `json:"period"` // YYYY-MM
	Runs   int                    `json:"runs"`
	Tokens int                    `json:"tokens"`
}

// Artifact is the integrity record for one stored output document.
type Artifact struct {
	ID        surrealmodels.RecordID `json:"id"`
	RunID     string                 `json:"run_id"`
	Kind      string                 `json:"kind"`
	Path      string                 `json:"path"`
	SHA256    string                 `json:"sha256"`
	SizeBytes int                    `json:"size_bytes"`
	CreatedAt time.Time              `json:"created_at"`
}
