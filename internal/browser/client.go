package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"expertminer/internal/models"
)

const (
	requestTimeout = 60 * time.Second
	scrapeTimeout  = 10 * time.Minute
	livenessWindow = 5 * time.Second
)

// Client is the REST client for the remote browser service. It implements
// both LoginBroker and Scraper.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// ProvisionSession asks the service for a fresh interactive browser session.
// The returned LoginURL is what the user opens to log in by hand.
func (c *Client) ProvisionSession(ctx context.Context) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/sessions", nil, &session); err != nil {
		return nil, fmt.Errorf("provision session: %w", err)
	}
	c.logger.Info("browser session provisioned", "session_id", session.ID)
	return &session, nil
}

// CaptureCookies fetches the session's current cookies. An empty slice means
// the user has not completed the login yet; callers poll again later.
func (c *Client) CaptureCookies(ctx context.Context, sessionID string) ([]models.Cookie, error) {
	var payload struct {
		Cookies []models.Cookie `json:"cookies"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/cookies", nil, &payload); err != nil {
		return nil, fmt.Errorf("capture cookies: %w", err)
	}
	return payload.Cookies, nil
}

// ReleaseSession tears the remote browser down. Safe to call for sessions
// that already expired.
func (c *Client) ReleaseSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil); err != nil {
		return fmt.Errorf("release session: %w", err)
	}
	c.logger.Info("browser session released", "session_id", sessionID)
	return nil
}

// CheckLiveness dials the session's CDP websocket endpoint to confirm the
// remote browser is still reachable.
func (c *Client) CheckLiveness(ctx context.Context, wsEndpoint string) error {
	dialCtx, cancel := context.WithTimeout(ctx, livenessWindow)
	defer cancel()

	headers := http.Header{}
	if c.apiKey != "" {
		headers.Set("Authorization", "Bearer "+c.apiKey)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsEndpoint, headers)
	if err != nil {
		return fmt.Errorf("dial session endpoint: %w", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return nil
}

type scrapeRequest struct {
	Cookies   []models.Cookie       `json:"cookies"`
	Profiles  []models.ExpertConfig `json:"profiles"`
	PostLimit int                   `json:"post_limit"`
	Topics    []string              `json:"topics,omitempty"`
}

// ScrapeProfiles runs one scrape pass over all profiles. The service may
// return refreshed cookies; callers persist them for the next run.
func (c *Client) ScrapeProfiles(ctx context.Context, cookies []models.Cookie, profiles []models.ExpertConfig, postLimit int, topics []string) (*ScrapeResult, error) {
	req := scrapeRequest{
		Cookies:   cookies,
		Profiles:  profiles,
		PostLimit: postLimit,
		Topics:    topics,
	}

	// Scrapes run much longer than session management calls.
	scrapeClient := &http.Client{Timeout: scrapeTimeout}
	var result ScrapeResult
	if err := c.doWith(ctx, scrapeClient, http.MethodPost, "/scrape", req, &result); err != nil {
		return nil, fmt.Errorf("scrape profiles: %w", err)
	}
	if result.ByExpert == nil {
		result.ByExpert = map[string][]models.Post{}
	}
	c.logger.Info("scrape complete",
		"profiles", len(profiles),
		"posts", len(result.AllPosts))
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWith(ctx, c.httpClient, method, path, body, out)
}

func (c *Client) doWith(ctx context.Context, client *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
