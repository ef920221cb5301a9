package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"expertminer/internal/models"
)

// IncrementUsage atomically adds run and token counts to a user's monthly
// counters. The record key is derived from user and period so concurrent
// workers accumulate into the same row.
func (c *Client) IncrementUsage(ctx context.Context, userID, period string, runs, tokens int) (*models.UsagePeriod, error) {
	key := userID + "_" + period
	results, err := surrealdb.Query[[]models.UsagePeriod](ctx, c.db, `
		UPSERT type::record("usage_period", $key) SET
			user_id = $user_id,
			period = $period,
			runs += $runs,
			tokens += $tokens
		RETURN AFTER
	`, map[string]any{
		"key":     key,
		"user_id": userID,
		"period":  period,
		"runs":    runs,
		"tokens":  tokens,
	})
	if err != nil {
		return nil, fmt.Errorf("increment usage: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("increment usage: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// GetUsage returns a user's counters for one period, or nil when the user has
// no recorded activity in that period.
func (c *Client) GetUsage(ctx context.Context, userID, period string) (*models.UsagePeriod, error) {
	results, err := surrealdb.Query[[]models.UsagePeriod](ctx, c.db, `
		SELECT * FROM usage_period WHERE user_id = $user_id AND period = $period LIMIT 1
	`, map[string]any{"user_id": userID, "period": period})
	if err != nil {
		return nil, fmt.Errorf("get usage: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}
