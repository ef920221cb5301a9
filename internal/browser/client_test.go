package browser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"expertminer/internal/models"
)

func testClient(srvURL string) *Client {
	return NewClient(srvURL, "test-key", slog.New(slog.DiscardHandler))
}

func TestProvisionSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(Session{
			ID:       "sess-1",
			LoginURL: "https://broker.example/login/sess-1",
		})
	}))
	defer srv.Close()

	session, err := testClient(srv.URL).ProvisionSession(context.Background())
	if err != nil {
		t.Fatalf("ProvisionSession failed: %v", err)
	}
	if session.ID != "sess-1" || session.LoginURL == "" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestCaptureCookiesNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/sess-1/cookies" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"cookies": []}`))
	}))
	defer srv.Close()

	cookies, err := testClient(srv.URL).CaptureCookies(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Empty cookies are not-ready, not an error: %v", err)
	}
	if len(cookies) != 0 {
		t.Errorf("Expected no cookies, got %d", len(cookies))
	}
}

func TestCaptureCookiesReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cookies": [{"name": "li_at", "value": "secret", "domain": ".example.com", "http_only": true}]}`))
	}))
	defer srv.Close()

	cookies, err := testClient(srv.URL).CaptureCookies(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("CaptureCookies failed: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "li_at" || !cookies[0].HTTPOnly {
		t.Errorf("unexpected cookies: %+v", cookies)
	}
}

func TestScrapeProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scrape" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Profiles) != 1 || req.PostLimit != 25 {
			t.Errorf("request not carried: %+v", req)
		}
		json.NewEncoder(w).Encode(ScrapeResult{
			AllPosts: []models.Post{{ID: "p1", Author: "Jane Doe", Text: "post"}},
			ByExpert: map[string][]models.Post{
				"Jane Doe": {{ID: "p1", Author: "Jane Doe", Text: "post"}},
			},
		})
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).ScrapeProfiles(context.Background(),
		[]models.Cookie{{Name: "li_at", Value: "v"}},
		[]models.ExpertConfig{{Name: "Jane Doe", ProfileURL: "https://example.com/in/jane"}},
		25, nil)
	if err != nil {
		t.Fatalf("ScrapeProfiles failed: %v", err)
	}
	if len(result.AllPosts) != 1 || len(result.ByExpert["Jane Doe"]) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusGone)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CaptureCookies(context.Background(), "sess-old")
	if err == nil {
		t.Fatal("Expected error for non-2xx status")
	}
}

func TestCheckLiveness(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	if err := testClient(srv.URL).CheckLiveness(context.Background(), wsURL); err != nil {
		t.Fatalf("CheckLiveness against a live endpoint failed: %v", err)
	}
}

func TestCheckLivenessDeadEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Not a websocket endpoint; the upgrade handshake fails.
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	if err := testClient(srv.URL).CheckLiveness(context.Background(), wsURL); err == nil {
		t.Fatal("Expected error for an endpoint that refuses the upgrade")
	}
}

func TestReleaseSession(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := testClient(srv.URL).ReleaseSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("ReleaseSession failed: %v", err)
	}
	if method != http.MethodDelete || path != "/sessions/sess-1" {
		t.Errorf("unexpected request: %s %s", method, path)
	}
}
