package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

const minPasswordLength = 8

// requireAdmin gates user management on the stored profile's role. The
// backend still enforces permissions; this just fails fast for the UI.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := h.gateway.Profile(r.Context(), h.sessionID(r))
	if !ok {
		h.clearSessionCookie(w)
		httpx.WriteAuthExpired(w, h.loginPath)
		return false
	}
	if user.Role != "admin" {
		httpx.WriteError(w, http.StatusForbidden, httpx.CodeBackendRejection, "admin role required")
		return false
	}
	return true
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var out []clinic.User
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		users, err := h.client.ListUsers(r.Context(), token)
		if err != nil {
			return err
		}
		out = users
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var in clinic.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if in.Username == "" || in.FullName == "" {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "username and full_name are required")
		return
	}
	if len(in.Password) < minPasswordLength {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "password must be at least 8 characters")
		return
	}
	var out *clinic.User
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		u, err := h.client.CreateUser(r.Context(), token, in)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) toggleUserStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid user id")
		return
	}
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.ToggleUserStatus(r.Context(), token, id)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resetUserPassword(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid user id")
		return
	}
	var in clinic.ResetPasswordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if len(in.NewPassword) < minPasswordLength {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "password must be at least 8 characters")
		return
	}
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.ResetUserPassword(r.Context(), token, id, in.NewPassword)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid user id")
		return
	}
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.DeleteUser(r.Context(), token, id)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
