package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["username"] != "jdoe" || body["password"] != "secret123" {
			t.Fatalf("credentials not forwarded: %v", body)
		}
		_ = json.NewEncoder(w).Encode(LoginResponse{
			Success:     true,
			AccessToken: "tok-1",
			User:        User{ID: 1, Username: "jdoe"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	resp, err := c.Login(context.Background(), "jdoe", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !resp.Success || resp.AccessToken != "tok-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestMe_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		_ = json.NewEncoder(w).Encode(User{ID: 1, Username: "jdoe"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	user, err := c.Me(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if user.Username != "jdoe" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAPIErrorDetailPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Patient number already exists"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.CreatePatient(context.Background(), "tok", Patient{PatientNumber: "P-1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Detail != "Patient number already exists" {
		t.Fatalf("detail not passed through verbatim: %+v", apiErr)
	}
}

func TestIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Me(context.Background(), "stale")
	if !IsUnauthorized(err) {
		t.Fatalf("expected 401 detection, got %v", err)
	}
	if !IsRejection(err) {
		t.Fatal("a 401 is still a structured rejection")
	}
}

func TestListServices_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patients/5/services" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("service_category") != CategoryAppointment || q.Get("sheet_type") != "appointment" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]ServiceEntry{{ID: 1, PatientID: 5, ServiceDate: "2024-03-05"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	entries, err := c.ListServices(context.Background(), "tok", 5, CategoryAppointment, "appointment")
	if err != nil {
		t.Fatalf("list services failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ServiceDate != "2024-03-05" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestCreateRecurringServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patients/5/recurring-services" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req RecurringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.RecurringType != "weekly" || req.WeeksCount != 4 {
			t.Fatalf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(RecurringResult{
			Success:                    true,
			ParentService:              ServiceEntry{ID: 41, IsRecurring: true},
			RecurringAppointmentsCount: 8,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	result, err := c.CreateRecurringServices(context.Background(), "tok", 5, RecurringRequest{
		ServiceEntryInput: ServiceEntryInput{ServiceType: "Individual Therapy", ServiceDate: "2024-03-05"},
		RecurringType:     "weekly",
		RecurringDays:     []int{1, 3},
		WeeksCount:        4,
	})
	if err != nil {
		t.Fatalf("create recurring failed: %v", err)
	}
	if result.RecurringAppointmentsCount != 8 {
		t.Fatalf("unexpected count: %d", result.RecurringAppointmentsCount)
	}
}

func TestUpdateService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/services/11" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var upd ServiceEntryUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if upd.Attended == nil || !*upd.Attended {
			t.Fatalf("attended flag not forwarded: %+v", upd)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"service": ServiceEntry{ID: 11, PatientID: 1, Attended: upd.Attended},
		})
	}))
	defer srv.Close()

	attended := true
	c := NewClient(srv.URL, testLogger())
	entry, err := c.UpdateService(context.Background(), "tok", 11, ServiceEntryUpdate{Attended: &attended})
	if err != nil {
		t.Fatalf("update service failed: %v", err)
	}
	if entry.ID != 11 || entry.Attended == nil || !*entry.Attended {
		t.Fatalf("wrapper not unwrapped: %+v", entry)
	}
}

func TestAuthorizationEndpoints(t *testing.T) {
	number := 12345
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /patients/5/authorizations":
			var in AuthorizationInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			_ = json.NewEncoder(w).Encode(Authorization{ID: 7, PatientID: 5, AuthNumber: in.AuthNumber, AuthUnits: in.AuthUnits})
		case "PUT /authorizations/7":
			_ = json.NewEncoder(w).Encode(Authorization{ID: 7, PatientID: 5, AuthUnits: 3})
		case "DELETE /authorizations/7":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	created, err := c.CreateAuthorization(context.Background(), "tok", 5, AuthorizationInput{AuthNumber: &number, AuthUnits: 2})
	if err != nil {
		t.Fatalf("create authorization failed: %v", err)
	}
	if created.ID != 7 || created.AuthNumber == nil || *created.AuthNumber != number {
		t.Fatalf("unexpected authorization: %+v", created)
	}

	updated, err := c.UpdateAuthorization(context.Background(), "tok", 7, AuthorizationInput{AuthUnits: 3})
	if err != nil {
		t.Fatalf("update authorization failed: %v", err)
	}
	if updated.AuthUnits != 3 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := c.DeleteAuthorization(context.Background(), "tok", 7); err != nil {
		t.Fatalf("delete authorization failed: %v", err)
	}
}

func TestGetRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Kill the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("recorder does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		_ = json.NewEncoder(w).Encode([]Patient{{ID: 1, PatientNumber: "P-1"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	patients, err := c.ListPatients(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(patients) != 1 {
		t.Fatalf("unexpected patients: %+v", patients)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}
