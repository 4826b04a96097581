package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/spectrum-health/clinicdash/internal/calendar"
	"github.com/spectrum-health/clinicdash/internal/clinic"
	"github.com/spectrum-health/clinicdash/internal/httpx"
)

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var out []clinic.Patient
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		patients, err := h.client.ListPatients(r.Context(), token, q)
		if err != nil {
			return err
		}
		out = patients
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	var out *clinic.Patient
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		p, err := h.client.GetPatient(r.Context(), token, id)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var in clinic.Patient
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	if in.PatientNumber == "" || in.FirstName == "" || in.LastName == "" {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "patient_number, first_name and last_name are required")
		return
	}
	var out *clinic.Patient
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		p, err := h.client.CreatePatient(r.Context(), token, in)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	var in clinic.Patient
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailure, "invalid json body")
		return
	}
	var out *clinic.Patient
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		p, err := h.client.UpdatePatient(r.Context(), token, id, in)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.DeletePatient(r.Context(), token, id)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// patientSheet is the filtered per-patient view of service entries, sorted
// by time of day for display.
func (h *Handler) patientSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	category := r.URL.Query().Get("service_category")
	sheetType := r.URL.Query().Get("sheet_type")

	var out []clinic.ServiceEntry
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		entries, err := h.client.ListServices(r.Context(), token, id, category, sheetType)
		if err != nil {
			return err
		}
		out = entries
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	calendar.SortEntries(out)
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) listPatientFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	var out []clinic.PatientFile
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		files, err := h.client.ListPatientFiles(r.Context(), token, id)
		if err != nil {
			return err
		}
		out = files
		return nil
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) uploadPatientFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "file field required")
		return
	}
	defer file.Close()

	err = h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.UploadPatientFile(r.Context(), token, id, header.Filename, file)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) deletePatientFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.CodeValidationFailure, "invalid patient id")
		return
	}
	fileID := r.PathValue("fileID")
	filename := r.URL.Query().Get("filename")
	err := h.call(r.Context(), h.sessionID(r), func(token string) error {
		return h.client.DeletePatientFile(r.Context(), token, id, fileID, filename)
	})
	if err != nil {
		h.writeCallError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
