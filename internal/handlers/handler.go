// Package handlers exposes the JSON API the dashboard page talks to. All
// feature handlers go through the auth gateway's authenticated-call
// primitive; its sentinels come back as 401 plus a redirect hint so the
// page returns to the login entry point.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spectrum-health/clinicdash/internal/auth"
	"github.com/spectrum-health/clinicdash/internal/calendar"
	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/entry"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

const SessionCookie = "clinicdash_session"

type Handler struct {
	gateway   *auth.Gateway
	client    *clinic.Client
	composer  *entry.Composer
	logger    *slog.Logger
	loginPath string

	mu   sync.Mutex
	gens map[string]*calendar.Generation
}

func New(gateway *auth.Gateway, client *clinic.Client, logger *slog.Logger, loginPath string) *Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{
		gateway:   gateway,
		client:    client,
		composer:  entry.NewComposer(client),
		logger:    logger,
		loginPath: loginPath,
		gens:      map[string]*calendar.Generation{},
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/session", h.login)
	mux.HandleFunc("GET /api/session", h.me)
	mux.HandleFunc("DELETE /api/session", h.logout)

	mux.HandleFunc("GET /api/calendar", h.calendarMonth)
	mux.HandleFunc("POST /api/service-entries", h.submitServiceEntry)
	mux.HandleFunc("PUT /api/service-entries/{id}", h.updateServiceEntry)

	mux.HandleFunc("GET /api/patients", h.listPatients)
	mux.HandleFunc("POST /api/patients", h.createPatient)
	mux.HandleFunc("GET /api/patients/{id}", h.getPatient)
	mux.HandleFunc("PUT /api/patients/{id}", h.updatePatient)
	mux.HandleFunc("DELETE /api/patients/{id}", h.deletePatient)
	mux.HandleFunc("GET /api/patients/{id}/sheet", h.patientSheet)
	mux.HandleFunc("GET /api/patients/{id}/files", h.listPatientFiles)
	mux.HandleFunc("POST /api/patients/{id}/files", h.uploadPatientFile)
	mux.HandleFunc("DELETE /api/patients/{id}/files/{fileID}", h.deletePatientFile)
	mux.HandleFunc("GET /api/patients/{id}/authorizations", h.listPatientAuthorizations)
	mux.HandleFunc("POST /api/patients/{id}/authorizations", h.createPatientAuthorization)
	mux.HandleFunc("PUT /api/authorizations/{authID}", h.updateAuthorization)
	mux.HandleFunc("DELETE /api/authorizations/{authID}", h.deleteAuthorization)

	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("POST /api/users/{id}/toggle-status", h.toggleUserStatus)
	mux.HandleFunc("POST /api/users/{id}/reset-password", h.resetUserPassword)
	mux.HandleFunc("DELETE /api/users/{id}", h.deleteUser)
}

func (h *Handler) sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, id string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// generation returns the per-tab render generation counter.
func (h *Handler) generation(sessionID string) *calendar.Generation {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.gens[sessionID]
	if !ok {
		g = &calendar.Generation{}
		h.gens[sessionID] = g
	}
	return g
}

// dropGeneration releases a tab's render counter once its session is gone,
// keeping the map from growing with dead session ids.
func (h *Handler) dropGeneration(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.gens, sessionID)
}

// writeCallError maps an authenticated-call failure onto the error
// taxonomy: sentinel → auth_expired, structured rejection → passed through
// verbatim, anything else → transient network failure.
func (h *Handler) writeCallError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *entry.ValidationError
	var apiErr *clinic.APIError
	switch {
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrSessionExpired):
		h.dropGeneration(h.sessionID(r))
		h.clearSessionCookie(w)
		httpx.WriteAuthExpired(w, h.loginPath)
	case errors.As(err, &vErr):
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, vErr.Error())
	case errors.As(err, &apiErr):
		httpx.WriteError(w, apiErr.Status, httpx.CodeBackendRejection, apiErr.Detail)
	default:
		httpx.WriteError(w, http.StatusBadGateway, httpx.CodeNetworkFailure, "clinic backend unreachable")
	}
}

// call wraps gateway.Call for handlers that already hold the session id.
func (h *Handler) call(ctx context.Context, sessionID string, fn func(token string) error) error {
	return h.gateway.Call(ctx, sessionID, fn)
}
