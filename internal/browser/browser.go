// Package browser talks to the remote browser-session service used for
// interactive logins and profile scraping.
package browser

import (
	"context"

	"expertminer/internal/models"
)

// Session is one provisioned remote browser.
type Session struct {
	ID          string `json:"id"`
	LoginURL    string `json:"login_url"`
	WSEndpoint  string `json:"ws_endpoint,omitempty"`
	ExpiresInSn int    `json:"expires_in_seconds,omitempty"`
}

// LoginBroker manages interactive login sessions. CaptureCookies returns an
// empty slice while the user has not finished logging in; that is not an
// error. CheckLiveness confirms a provisioned session's browser is reachable
// before the session is handed to a user.
type LoginBroker interface {
	ProvisionSession(ctx context.Context) (*Session, error)
	CheckLiveness(ctx context.Context, wsEndpoint string) error
	CaptureCookies(ctx context.Context, sessionID string) ([]models.Cookie, error)
	ReleaseSession(ctx context.Context, sessionID string) error
}

// ScrapeResult is everything one scrape pass produced.
type ScrapeResult struct {
	AllPosts       []models.Post            `json:"all_posts"`
	ByExpert       map[string][]models.Post `json:"by_expert"`
	UpdatedCookies []models.Cookie          `json:"updated_cookies,omitempty"`
}

// Scraper fetches posts for a set of profiles using authenticated cookies.
type Scraper interface {
	ScrapeProfiles(ctx context.Context, cookies []models.Cookie, profiles []models.ExpertConfig, postLimit int, topics []string) (*ScrapeResult, error)
}
