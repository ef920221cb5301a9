// Package models defines data structures for expertminer runs and analyses.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusNeedsLogin RunStatus = "needs_login"
	RunStatusRunning    RunStatus = "running"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Terminal reports whether the status is final. A terminal status is never
// overwritten.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// RunConfig is the input configuration captured at submission time.
type RunConfig struct {
	Experts      []ExpertConfig `json:"experts"`
	FocusTopics  []string       `json:"focus_topics,omitempty"`
	OutputFormat string         `json:"output_format,omitempty"`
	PostLimit    int            `json:"post_limit,omitempty"`
}

// ExpertConfig identifies one profile to mine. Weight is parsed from the
// roster file but not applied to aggregation ranking.
type ExpertConfig struct {
	Name       string  `json:"name" yaml:"name"`
	ProfileURL string  `json:"profile_url" yaml:"profile_url"`
	Weight     float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Run is one requested extraction job.
type Run struct {
	ID              surrealmodels.RecordID `json:"id"`
	UserID          string                 `json:"user_id"`
	Status          RunStatus              `json:"status"`
	Config          RunConfig              `json:"config"`
	NeedsLoginURL   *string                `json:"needs_login_url,omitempty"`
	BrowserSession  *string                `json:"browser_session,omitempty"`
	TokenEstimate   int                    `json:"token_estimate,omitempty"`
	CostEstimateUSD float64                `json:"cost_estimate_usd,omitempty"`
	FailureReason   *string                `json:"failure_reason,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	StartedAt       *time.Time             `json:"started_at,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
}

// RunEvent records a status change or notable milestone for a run.
type RunEvent struct {
	ID        surrealmodels.RecordID `json:"id"`
	RunID     string                 `json:"run_id"`
	Kind      string                 `json:"kind"`
	Detail    map[string]any         `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Run event kinds.
const (
	EventNeedsLogin = "needs_login"
	EventRunning    = "running"
	EventCompleted  = "completed"
	EventFailed     = "failed"
)
