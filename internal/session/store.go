// Package session holds the per-tab dashboard sessions: bearer token, user
// profile and expiry, stored and cleared as one unit. It is the server-side
// replacement for the browser's per-tab storage triple.
package session

import (
	"context"
	"time"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

// Session is the token/user/expiry triple. A session is valid only while
// Token is non-empty and ExpiresAt is in the future; anything else reads as
// absent.
type Session struct {
	Token     string      `json:"token"`
	User      clinic.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (s Session) expired(now time.Time) bool {
	return s.Token == "" || s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt)
}

// Store maps tab-session ids to sessions. Implementations never return
// errors to callers: every failure path (missing, expired, malformed,
// backend unavailable) resolves to an absent session, clearing stored state
// where possible.
type Store interface {
	// Set persists the triple atomically with expiry now+ttl.
	Set(ctx context.Context, id, token string, user clinic.User, ttl time.Duration)
	// Get returns the session if present and unexpired. An expired or
	// malformed session is cleared as a side effect and reported absent.
	Get(ctx context.Context, id string) (Session, bool)
	// Clear removes the session unconditionally; idempotent. It reports
	// whether anything was actually removed, so racing callers can tell
	// which one of them performed the clear.
	Clear(ctx context.Context, id string) bool
}
