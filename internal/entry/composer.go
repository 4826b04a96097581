// Package entry composes single and recurring service-entry submissions.
// Series expansion is the backend's job; this side only validates, builds
// the request, and reports how many entries were created.
package entry

import (
	"context"
	"fmt"
	"time"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

const (
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Recurrence describes how a base entry repeats. Days uses 0=Sunday through
// 6=Saturday.
type Recurrence struct {
	Type   string `json:"recurring_type"`
	Days   []int  `json:"recurring_days"`
	Weeks  int    `json:"weeks_count"`
	Months int    `json:"months_count"`
}

// ValidationError blocks a submission before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type backend interface {
	CreateService(ctx context.Context, token string, patientID int, in clinic.ServiceEntryInput) (*clinic.ServiceEntry, error)
	CreateRecurringServices(ctx context.Context, token string, patientID int, in clinic.RecurringRequest) (*clinic.RecurringResult, error)
}

type Composer struct {
	backend backend
}

func NewComposer(b backend) *Composer {
	return &Composer{backend: b}
}

// Outcome of a submission. CreatedCount counts the series entries the
// backend generated; it is zero for a plain single entry.
type Outcome struct {
	Entry        *clinic.ServiceEntry `json:"entry,omitempty"`
	Recurring    bool                 `json:"recurring"`
	CreatedCount int                  `json:"created_count"`
}

// Submit validates and sends one entry, recurring when rec is non-nil.
func (c *Composer) Submit(ctx context.Context, token string, patientID int, base clinic.ServiceEntryInput, rec *Recurrence) (*Outcome, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}

	if rec == nil {
		created, err := c.backend.CreateService(ctx, token, patientID, base)
		if err != nil {
			return nil, err
		}
		return &Outcome{Entry: created}, nil
	}

	req, err := Compose(base, *rec)
	if err != nil {
		return nil, err
	}
	result, err := c.backend.CreateRecurringServices(ctx, token, patientID, req)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Entry:        &result.ParentService,
		Recurring:    true,
		CreatedCount: result.RecurringAppointmentsCount,
	}, nil
}

// Compose builds the recurrence request from a validated base payload. The
// count field that does not apply to the chosen mode stays zero.
func Compose(base clinic.ServiceEntryInput, rec Recurrence) (clinic.RecurringRequest, error) {
	req := clinic.RecurringRequest{
		ServiceEntryInput: base,
		RecurringType:     rec.Type,
		RecurringDays:     []int{},
	}

	switch rec.Type {
	case RecurrenceWeekly:
		if len(rec.Days) == 0 {
			return clinic.RecurringRequest{}, &ValidationError{
				Field:   "recurring_days",
				Message: "select at least one day of the week",
			}
		}
		for _, d := range rec.Days {
			if d < 0 || d > 6 {
				return clinic.RecurringRequest{}, &ValidationError{
					Field:   "recurring_days",
					Message: fmt.Sprintf("invalid weekday %d", d),
				}
			}
		}
		if rec.Weeks <= 0 {
			return clinic.RecurringRequest{}, &ValidationError{
				Field:   "weeks_count",
				Message: "must be a positive number of weeks",
			}
		}
		req.RecurringDays = rec.Days
		req.WeeksCount = rec.Weeks
	case RecurrenceMonthly:
		if rec.Months <= 0 {
			return clinic.RecurringRequest{}, &ValidationError{
				Field:   "months_count",
				Message: "must be a positive number of months",
			}
		}
		req.MonthsCount = rec.Months
	default:
		return clinic.RecurringRequest{}, &ValidationError{
			Field:   "recurring_type",
			Message: "must be weekly or monthly",
		}
	}
	return req, nil
}

func validateBase(base clinic.ServiceEntryInput) error {
	if base.ServiceType == "" {
		return &ValidationError{Field: "service_type", Message: "is required"}
	}
	if _, err := time.Parse("2006-01-02", base.ServiceDate); err != nil {
		return &ValidationError{Field: "service_date", Message: "must be a YYYY-MM-DD date"}
	}
	if base.ServiceTime != nil && *base.ServiceTime != "" {
		if _, err := time.Parse("15:04", *base.ServiceTime); err != nil {
			return &ValidationError{Field: "service_time", Message: "must be HH:MM"}
		}
	}
	return nil
}
