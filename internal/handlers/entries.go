package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/entry"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

type serviceEntryRequest struct {
	PatientID int `json:"patient_id"`
	clinic.ServiceEntryInput
	Recurrence *entry.Recurrence `json:"recurrence,omitempty"`
}

func (h *Handler) submitServiceEntry(w http.ResponseWriter, r *http.Request) {
	var req serviceEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if req.PatientID <= 0 {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "patient_id required")
		return
	}

	var outcome *entry.Outcome
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		var err error
		outcome, err = h.composer.Submit(r.Context(), token, req.PatientID, req.ServiceEntryInput, req.Recurrence)
		return err
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, outcome)
}

// updateServiceEntry applies a partial edit to one entry; the sheet uses it
// to mark attendance, which is what feeds the calendar's attended and
// no-show tallies.
func (h *Handler) updateServiceEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid service entry id")
		return
	}
	var in clinic.ServiceEntryUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if in.ServiceType == nil && in.ServiceDate == nil && in.ServiceTime == nil && in.Attended == nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "no fields to update")
		return
	}

	var out *clinic.ServiceEntry
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		updated, err := h.client.UpdateService(r.Context(), token, id, in)
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
