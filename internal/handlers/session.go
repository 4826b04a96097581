package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/spectrum-health/clinicdash/internal/auth"
	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type sessionResponse struct {
	User      clinic.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at,omitzero"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "username and password required")
		return
	}

	result, err := h.gateway.Login(r.Context(), req.Username, req.Password, req.RememberMe)
	if err != nil {
		var denied *auth.DeniedError
		if errors.As(err, &denied) {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeBackendRejection, denied.Message)
			return
		}
		h.writeCallError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.SessionID, result.ExpiresAt)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{User: result.User, ExpiresAt: result.ExpiresAt})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.gateway.Check(r.Context(), h.sessionID(r))
	if err != nil {
		// Only a definitive "no session" clears the cookie. On a transport
		// failure the server-side session survives, so the tab keeps its
		// pointer and retries once the backend is back.
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{User: user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if id := h.sessionID(r); id != "" {
		h.gateway.Logout(r.Context(), id)
		h.dropGeneration(id)
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
