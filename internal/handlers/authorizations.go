package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

func (h *Handler) listPatientAuthorizations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	var out []clinic.Authorization
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		auths, err := h.client.ListAuthorizations(r.Context(), token, id)
		if err != nil {
			return err
		}
		out = auths
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createPatientAuthorization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	var in clinic.AuthorizationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if in.AuthUnits <= 0 {
		in.AuthUnits = 1
	}
	var out *clinic.Authorization
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		created, err := h.client.CreateAuthorization(r.Context(), token, id, in)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) updateAuthorization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "authID")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid authorization id")
		return
	}
	var in clinic.AuthorizationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	var out *clinic.Authorization
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		updated, err := h.client.UpdateAuthorization(r.Context(), token, id, in)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteAuthorization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "authID")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid authorization id")
		return
	}
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.DeleteAuthorization(r.Context(), token, id)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
