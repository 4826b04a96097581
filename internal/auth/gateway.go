// Package auth owns the dashboard's session lifecycle: login, verification
// against the backend, the authenticated-call primitive every other feature
// goes through, and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/session"
)

// Default session TTLs, chosen at login time.
const (
	DefaultTTL    = 1440 * time.Minute  // 24 hours
	RememberMeTTL = 10080 * time.Minute // 7 days
)

// Sentinel results of the authenticated-call primitive. Callers must treat
// both as "do not proceed" and send the user back to login.
var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
)

// DeniedError is a login rejection with the backend's message.
type DeniedError struct {
	Message string
}

func (e *DeniedError) Error() string {
	if e.Message == "" {
		return "login denied"
	}
	return e.Message
}

type backend interface {
	Login(ctx context.Context, username, password string) (*clinic.LoginResponse, error)
	Me(ctx context.Context, token string) (*clinic.User, error)
	Logout(ctx context.Context, token string) error
}

type Gateway struct {
	store       session.Store
	backend     backend
	logger      *slog.Logger
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewGateway(store session.Store, b backend, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:       store,
		backend:     b,
		logger:      logger,
		sessionTTL:  DefaultTTL,
		rememberTTL: RememberMeTTL,
	}
}

// SetTTLs overrides the session lifetimes. Non-positive values keep the
// defaults.
func (g *Gateway) SetTTLs(session, rememberMe time.Duration) {
	if session > 0 {
		g.sessionTTL = session
	}
	if rememberMe > 0 {
		g.rememberTTL = rememberMe
	}
}

// Result of a successful login: the tab-session id the page carries from
// then on, and the authenticated user profile.
type Result struct {
	SessionID string
	User      clinic.User
	ExpiresAt time.Time
}

// Login authenticates against the backend and mints a tab session. With
// rememberMe the session lives 7 days instead of 24 hours.
func (g *Gateway) Login(ctx context.Context, username, password string, rememberMe bool) (Result, error) {
	resp, err := g.backend.Login(ctx, username, password)
	if err != nil {
		return Result{}, err
	}
	if !resp.Success || resp.AccessToken == "" {
		return Result{}, &DeniedError{Message: resp.Message}
	}

	ttl := g.sessionTTL
	if rememberMe {
		ttl = g.rememberTTL
	}
	id := uuid.NewString()
	g.store.Set(ctx, id, resp.AccessToken, resp.User, ttl)
	g.logger.Info("session created", "username", resp.User.Username, "remember_me", rememberMe)
	return Result{SessionID: id, User: resp.User, ExpiresAt: time.Now().Add(ttl)}, nil
}

// Check verifies a stored session against the backend's identity endpoint.
// A 2xx adopts the returned profile as current. A backend rejection clears
// the session and reports ErrSessionExpired; a transport failure leaves the
// session intact and surfaces the error, so callers can tell "log in again"
// apart from "try again later".
func (g *Gateway) Check(ctx context.Context, id string) (clinic.User, error) {
	sess, ok := g.store.Get(ctx, id)
	if !ok {
		return clinic.User{}, ErrNoSession
	}

	user, err := g.backend.Me(ctx, sess.Token)
	if err != nil {
		if clinic.IsRejection(err) {
			g.clearOnce(ctx, id)
			return clinic.User{}, ErrSessionExpired
		}
		g.logger.Warn("identity check unreachable", "err", err)
		return clinic.User{}, fmt.Errorf("identity check: %w", err)
	}

	// Keep the original expiry; verification refreshes the profile, not
	// the session lifetime.
	if remaining := time.Until(sess.ExpiresAt); remaining > 0 {
		g.store.Set(ctx, id, sess.Token, *user, remaining)
	}
	return *user, nil
}

// Call is the authenticated-fetch primitive. Without a valid session it
// returns ErrNoSession and fn is never invoked, so no network request is
// issued. fn receives the bearer token; a 401 from it clears the session
// (exactly once, even when concurrent calls race) and comes back as
// ErrSessionExpired.
func (g *Gateway) Call(ctx context.Context, id string, fn func(token string) error) error {
	sess, ok := g.store.Get(ctx, id)
	if !ok {
		return ErrNoSession
	}

	err := fn(sess.Token)
	if clinic.IsUnauthorized(err) {
		g.clearOnce(ctx, id)
		return ErrSessionExpired
	}
	return err
}

// Profile returns the stored user profile without a backend round trip.
// Good enough for UI gating; the backend still enforces roles on every
// call.
func (g *Gateway) Profile(ctx context.Context, id string) (clinic.User, bool) {
	sess, ok := g.store.Get(ctx, id)
	if !ok {
		return clinic.User{}, false
	}
	return sess.User, true
}

// Logout best-effort notifies the backend, then unconditionally clears the
// session.
func (g *Gateway) Logout(ctx context.Context, id string) {
	if sess, ok := g.store.Get(ctx, id); ok {
		if err := g.backend.Logout(ctx, sess.Token); err != nil {
			g.logger.Warn("backend logout failed", "err", err)
		}
	}
	g.store.Clear(ctx, id)
}

func (g *Gateway) clearOnce(ctx context.Context, id string) {
	if g.store.Clear(ctx, id) {
		g.logger.Info("session cleared after backend rejection", "session_id", id)
	}
}
