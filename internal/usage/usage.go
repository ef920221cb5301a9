// Package usage tracks per-user run and token counters by calendar month.
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expertminer/internal/db"
	"expertminer/internal/models"
)

// PeriodKey returns the accounting period for a point in time, as YYYY-MM.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Accountant records completed-run usage against monthly counters.
type Accountant struct {
	db     *db.Client
	logger *slog.Logger
}

func NewAccountant(dbClient *db.Client, logger *slog.Logger) *Accountant {
	return &Accountant{db: dbClient, logger: logger}
}

// RecordRun adds one completed run and its token count to the user's
// counters for the current period.
func (a *Accountant) RecordRun(ctx context.Context, userID string, tokens int) error {
	period := PeriodKey(time.Now())
	up, err := a.db.IncrementUsage(ctx, userID, period, 1, tokens)
	if err != nil {
		return fmt.Errorf("record run usage: %w", err)
	}
	a.logger.Info("usage recorded",
		"user_id", userID,
		"period", period,
		"runs", up.Runs,
		"tokens", up.Tokens)
	return nil
}

// Summary returns the user's counters for a period. A nil result means no
// recorded activity.
func (a *Accountant) Summary(ctx context.Context, userID, period string) (*models.UsagePeriod, error) {
	return a.db.GetUsage(ctx, userID, period)
}
