package calendar

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

type fakeSource struct {
	patients    []clinic.Patient
	patientsErr error
	entries     map[int][]clinic.ServiceEntry
	failFor     map[int]bool
}

func (f *fakeSource) ListPatients(context.Context) ([]clinic.Patient, error) {
	return f.patients, f.patientsErr
}

func (f *fakeSource) ListAppointments(_ context.Context, patientID int) ([]clinic.ServiceEntry, error) {
	if f.failFor[patientID] {
		return nil, errors.New("fetch failed")
	}
	return f.entries[patientID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }
func intptr(i int) *int       { return &i }

func appt(patientID int, date string, time *string) clinic.ServiceEntry {
	return clinic.ServiceEntry{
		PatientID:       patientID,
		ServiceCategory: clinic.CategoryAppointment,
		ServiceDate:     date,
		ServiceTime:     time,
	}
}

func TestBuildMonth_ZeroPatients(t *testing.T) {
	a := NewAggregator(&fakeSource{}, discardLogger())
	got, err := a.BuildMonth(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("expected empty mapping, got error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %d dates", len(got))
	}
}

func TestBuildMonth_GroupsByDate(t *testing.T) {
	src := &fakeSource{
		patients: []clinic.Patient{{ID: 1}, {ID: 2}},
		entries: map[int][]clinic.ServiceEntry{
			1: {appt(1, "2024-03-05", strptr("14:30")), appt(1, "2024-03-12", nil)},
			2: {appt(2, "2024-03-05", strptr("09:00"))},
		},
	}
	a := NewAggregator(src, discardLogger())
	got, err := a.BuildMonth(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("BuildMonth failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(got))
	}
	day := got["2024-03-05"]
	if day.Total != 2 {
		t.Fatalf("expected 2 entries on 2024-03-05, got %d", day.Total)
	}
	// Display order is ascending by time of day.
	if *day.Entries[0].ServiceTime != "09:00" || *day.Entries[1].ServiceTime != "14:30" {
		t.Fatalf("entries not time-sorted: %v, %v", day.Entries[0].ServiceTime, day.Entries[1].ServiceTime)
	}
}

func TestBuildMonth_PartialFailureTolerated(t *testing.T) {
	src := &fakeSource{
		patients: []clinic.Patient{{ID: 1}, {ID: 2}, {ID: 3}},
		entries: map[int][]clinic.ServiceEntry{
			1: {appt(1, "2024-03-05", nil)},
			3: {appt(3, "2024-03-06", nil)},
		},
		failFor: map[int]bool{2: true},
	}
	a := NewAggregator(src, discardLogger())
	got, err := a.BuildMonth(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("one patient's failure must not fail the month: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected buckets for the 2 healthy patients, got %d", len(got))
	}
}

func TestBuildMonth_FiltersMonthAndCategory(t *testing.T) {
	attendance := clinic.ServiceEntry{
		PatientID:       1,
		ServiceCategory: clinic.CategoryAttendance,
		ServiceDate:     "2024-03-05",
	}
	src := &fakeSource{
		patients: []clinic.Patient{{ID: 1}},
		entries: map[int][]clinic.ServiceEntry{
			1: {
				appt(1, "2024-02-28", nil),
				appt(1, "2024-03-05", nil),
				appt(1, "2024-04-01", nil),
				attendance,
			},
		},
	}
	a := NewAggregator(src, discardLogger())
	got, err := a.BuildMonth(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("BuildMonth failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the March appointment, got %d dates", len(got))
	}
	if got["2024-03-05"].Total != 1 {
		t.Fatalf("attendance entries must not appear on the calendar")
	}
}

func TestBuildMonth_SummaryCounts(t *testing.T) {
	attended := appt(1, "2024-03-05", nil)
	attended.Attended = boolptr(true)
	noShow := appt(1, "2024-03-05", nil)
	noShow.Attended = boolptr(false)
	unmarked := appt(1, "2024-03-05", nil)

	src := &fakeSource{
		patients: []clinic.Patient{{ID: 1}},
		entries:  map[int][]clinic.ServiceEntry{1: {attended, noShow, unmarked}},
	}
	a := NewAggregator(src, discardLogger())
	got, err := a.BuildMonth(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("BuildMonth failed: %v", err)
	}
	day := got["2024-03-05"]
	if day.Total != 3 || day.AttendedCount != 1 || day.NoShowCount != 1 {
		t.Fatalf("unexpected summary: %+v", day)
	}
}

func TestBuildMonth_RecurringFlag(t *testing.T) {
	child := appt(1, "2024-03-05", nil)
	child.ParentServiceID = intptr(41)
	parent := appt(1, "2024-03-12", nil)
	parent.IsRecurring = true

	src := &fakeSource{
		patients: []clinic.Patient{{ID: 1}},
		entries:  map[int][]clinic.ServiceEntry{1: {child, parent, appt(1, "2024-03-19", nil)}},
	}
	a := NewAggregator(src, discardLogger())
	got, err := a.BuildMonth(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("BuildMonth failed: %v", err)
	}
	if !got["2024-03-05"].HasRecurring {
		t.Fatal("child entry must mark its date recurring")
	}
	if !got["2024-03-12"].HasRecurring {
		t.Fatal("parent entry must mark its date recurring")
	}
	if got["2024-03-19"].HasRecurring {
		t.Fatal("plain entry must not mark its date recurring")
	}
}

func TestBuildMonth_PatientListFailure(t *testing.T) {
	src := &fakeSource{patientsErr: errors.New("unreachable")}
	a := NewAggregator(src, discardLogger())
	if _, err := a.BuildMonth(context.Background(), 2024, 3); err == nil {
		t.Fatal("patient list failure must surface")
	}
}

func TestDateKey_Canonical(t *testing.T) {
	if got := DateKey(2024, 3, 5); got != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %q", got)
	}
	if got := DateKey(999, 12, 31); got != "0999-12-31" {
		t.Fatalf("expected zero-padded year, got %q", got)
	}
}

func TestGeneration_StaleTicketDropped(t *testing.T) {
	var g Generation
	first := g.Next()
	second := g.Next()

	if g.IsCurrent(first) {
		t.Fatal("superseded render must be stale")
	}
	if !g.IsCurrent(second) {
		t.Fatal("latest render must be current")
	}
}
