// Package calendar builds the month view: a client-side join of the patient
// list with each patient's appointment entries, grouped by calendar date.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

// Source provides the two fetches the aggregation needs. Both go through
// the auth gateway's authenticated-call primitive.
type Source interface {
	ListPatients(ctx context.Context) ([]clinic.Patient, error)
	ListAppointments(ctx context.Context, patientID int) ([]clinic.ServiceEntry, error)
}

// DateSummary is the derived per-date bucket. Never cached; recomputed on
// every month build.
type DateSummary struct {
	Entries       []clinic.ServiceEntry `json:"entries"`
	Total         int                   `json:"total"`
	AttendedCount int                   `json:"attended_count"`
	NoShowCount   int                   `json:"no_show_count"`
	HasRecurring  bool                  `json:"has_recurring"`
}

type Aggregator struct {
	src    Source
	logger *slog.Logger
}

func NewAggregator(src Source, logger *slog.Logger) *Aggregator {
	return &Aggregator{src: src, logger: logger}
}

// BuildMonth fetches the patient list once, then every patient's
// appointment entries concurrently, and buckets the month's entries by
// date. A single patient's fetch failure is logged and its entries are
// absent from the result; the month never fails for one patient's error.
// month is 1-based.
func (a *Aggregator) BuildMonth(ctx context.Context, year, month int) (map[string]DateSummary, error) {
	tracer := otel.Tracer("clinicdash/calendar")
	ctx, span := tracer.Start(ctx, "calendar.build_month", trace.WithAttributes(
		attribute.Int("calendar.year", year),
		attribute.Int("calendar.month", month),
	))
	defer span.End()

	patients, err := a.src.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	// Canonical date keys are built from plain integers, never from a
	// locale- or timezone-aware formatter.
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	var mu sync.Mutex
	var wg sync.WaitGroup
	byDate := map[string][]clinic.ServiceEntry{}
	failed := 0
	for _, p := range patients {
		wg.Add(1)
		go func(p clinic.Patient) {
			defer wg.Done()
			entries, err := a.src.ListAppointments(ctx, p.ID)
			if err != nil {
				a.logger.Warn("appointment fetch failed",
					"patient_id", p.ID,
					"err", err,
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			for _, e := range entries {
				if e.ServiceCategory != "" && e.ServiceCategory != clinic.CategoryAppointment {
					continue
				}
				if !strings.HasPrefix(e.ServiceDate, prefix) {
					continue
				}
				byDate[e.ServiceDate] = append(byDate[e.ServiceDate], e)
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int("calendar.patients", len(patients)),
		attribute.Int("calendar.failed_fetches", failed),
	)

	out := make(map[string]DateSummary, len(byDate))
	for date, entries := range byDate {
		SortEntries(entries)
		out[date] = summarize(entries)
	}
	return out, nil
}

func summarize(entries []clinic.ServiceEntry) DateSummary {
	s := DateSummary{Entries: entries, Total: len(entries)}
	for _, e := range entries {
		if e.Attended != nil {
			if *e.Attended {
				s.AttendedCount++
			} else {
				s.NoShowCount++
			}
		}
		if e.IsRecurring || e.ParentServiceID != nil {
			s.HasRecurring = true
		}
	}
	return s
}

// SortEntries orders a bucket by service time, lexicographically, for
// display. Entries without a time compare equal and keep their relative
// order.
func SortEntries(entries []clinic.ServiceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return timeKey(entries[i]) < timeKey(entries[j])
	})
}

func timeKey(e clinic.ServiceEntry) string {
	if e.ServiceTime == nil {
		return ""
	}
	return *e.ServiceTime
}

// DateKey builds the canonical YYYY-MM-DD key for a day of the given month.
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
