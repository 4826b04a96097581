package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/spectrum-health/clinicdash/internal/calendar"
	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

// sessionSource feeds the aggregator through the authenticated-call
// primitive for one tab session.
type sessionSource struct {
	h         *Handler
	sessionID string
}

func (s sessionSource) ListPatients(ctx context.Context) ([]clinic.Patient, error) {
	var out []clinic.Patient
	err := s.h.call(ctx, s.sessionID, func(token string) error {
		patients, err := s.h.client.ListPatients(ctx, token, "")
		if err != nil {
			return err
		}
		out = patients
		return nil
	})
	return out, err
}

func (s sessionSource) ListAppointments(ctx context.Context, patientID int) ([]clinic.ServiceEntry, error) {
	var out []clinic.ServiceEntry
	err := s.h.call(ctx, s.sessionID, func(token string) error {
		entries, err := s.h.client.ListServices(ctx, token, patientID, clinic.CategoryAppointment, "")
		if err != nil {
			return err
		}
		out = entries
		return nil
	})
	return out, err
}

type monthResponse struct {
	Year  int                             `json:"year"`
	Month int                             `json:"month"`
	Stale bool                            `json:"stale,omitempty"`
	Days  map[string]calendar.DateSummary `json:"days,omitempty"`
}

func (h *Handler) calendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1900 || year > 2200 {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "year must be a four-digit year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "month must be 1-12")
		return
	}

	sessionID := h.sessionID(r)
	gen := h.generation(sessionID)
	ticket := gen.Next()

	agg := calendar.NewAggregator(sessionSource{h: h, sessionID: sessionID}, h.logger)
	days, err := agg.BuildMonth(r.Context(), year, month)
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}

	if !gen.IsCurrent(ticket) {
		// A later month render started while this one was in flight; the
		// page must not paint this result over the newer one.
		httpx.WriteJSON(w, http.StatusOK, monthResponse{Year: year, Month: month, Stale: true})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, monthResponse{Year: year, Month: month, Days: days})
}
