package models

import (
	"net/http"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// LoginSession is a captured, reusable browser authentication artifact.
// At most one session per user is active at any time; activating a new one
// deactivates all prior sessions for that user (last-writer-wins).
type LoginSession struct {
	ID        surrealmodels.RecordID `json:"id"`
	UserID    string                 `json:"user_id"`
	Payload   []byte                 `json:"payload"` // encrypted cookie JSON
	Algorithm string                 `json:"algorithm"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	Active    bool                   `json:"active"`
	CreatedAt time.Time              `json:"created_at"`
}

// Cookie is one captured browser cookie. A subset of http.Cookie that
// survives JSON round-trips through the browser service.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Expires  int64  `json:"expires,omitempty"` // unix seconds, 0 = session cookie
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty"`
}

// HTTPCookie converts to the stdlib representation.
func (c Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	if c.Expires > 0 {
		hc.Expires = time.Unix(c.Expires, 0)
	}
	return hc
}
