package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"expertminer/internal/models"
)

// GetActiveSession returns the user's active login session, or nil when none
// exists. Expired sessions are treated as absent.
func (c *Client) GetActiveSession(ctx context.Context, userID string) (*models.LoginSession, error) {
	results, err := surrealdb.Query[[]models.LoginSession](ctx, c.db, `
		SELECT * FROM login_session
		WHERE user_id = $user_id AND active = true
			AND (expires_at IS NONE OR expires_at > time::now())
		ORDER BY created_at DESC
		LIMIT 1
	`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// SaveLoginSession persists a freshly captured session as the user's active
// one, deactivating all prior sessions. Concurrent saves resolve
// last-writer-wins on the active flag; at most one session stays active.
func (c *Client) SaveLoginSession(ctx context.Context, userID string, payload []byte, algorithm string, expiresAt *time.Time) (*models.LoginSession, error) {
	sql := `
		UPDATE login_session SET active = false WHERE user_id = $user_id AND active = true;
		CREATE login_session SET
			user_id = $user_id,
			payload = $payload,
			algorithm = $algorithm,
			expires_at = $expires_at,
			active = true
		RETURN AFTER;
	`
	results, err := surrealdb.Query[[]models.LoginSession](ctx, c.db, sql, map[string]any{
		"user_id":    userID,
		"payload":    payload,
		"algorithm":  algorithm,
		"expires_at": expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("save login session: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) < 2 || len((*results)[1].Result) == 0 {
		return nil, fmt.Errorf("save login session: no result returned")
	}
	return &(*results)[1].Result[0], nil
}
