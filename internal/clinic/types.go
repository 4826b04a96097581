package clinic

// Types mirror the clinic backend's wire schema. The backend owns every
// entity; the dashboard only holds transient copies fetched per view.

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type Patient struct {
	ID            int     `json:"id"`
	PatientNumber string  `json:"patient_number"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Address       *string `json:"address,omitempty"`
	DateOfBirth   *string `json:"date_of_birth,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	MedicaidID    *string `json:"medicaid_id,omitempty"`
	Insurance     *string `json:"insurance,omitempty"`
	InsuranceID   *string `json:"insurance_id,omitempty"`
	Session       *string `json:"session,omitempty"` // AM or PM
	Referal       *string `json:"referal,omitempty"`
	SSN           *string `json:"ssn,omitempty"`
	PSRDate       *string `json:"psr_date,omitempty"`
	Authorization *string `json:"authorization,omitempty"`
	Diagnosis     *string `json:"diagnosis,omitempty"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Code1         *string `json:"code1,omitempty"`
	Code2         *string `json:"code2,omitempty"`
	Code3         *string `json:"code3,omitempty"`
	Code4         *string `json:"code4,omitempty"`
}

// Service categories.
const (
	CategoryAppointment = "appointment"
	CategoryAttendance  = "attendance"
)

// ServiceEntry is one dated service row on a patient's sheet. A recurring
// series is a parent entry (IsRecurring) plus children referencing it via
// ParentServiceID; parent and children share type/category but differ in
// date.
type ServiceEntry struct {
	ID              int     `json:"id"`
	PatientID       int     `json:"patient_id"`
	ServiceType     string  `json:"service_type"`
	ServiceCategory string  `json:"service_category"`
	ServiceDate     string  `json:"service_date"` // calendar date, YYYY-MM-DD
	ServiceTime     *string `json:"service_time"` // "HH:MM", nullable
	Attended        *bool   `json:"attended"`     // nil = not yet marked
	IsRecurring     bool    `json:"is_recurring"`
	ParentServiceID *int    `json:"parent_service_id"`
	WeekStartDate   *string `json:"week_start_date"`
	SheetType       string  `json:"sheet_type,omitempty"`
}

// Authorization is one insurance authorization window on a patient's
// record. AuthNumber is optional; the backend accepts records carrying only
// a diagnosis code.
type Authorization struct {
	ID                int     `json:"id"`
	PatientID         int     `json:"patient_id"`
	AuthNumber        *int    `json:"auth_number"`
	AuthUnits         int     `json:"auth_units"`
	AuthDiagnosisCode *string `json:"auth_diagnosis_code"`
	AuthStartDate     *string `json:"auth_start_date"`
	AuthEndDate       *string `json:"auth_end_date"`
}

// AuthorizationInput is the create/update payload. Omitted dates are
// defaulted by the backend (today, plus one year).
type AuthorizationInput struct {
	AuthNumber        *int    `json:"auth_number"`
	AuthUnits         int     `json:"auth_units"`
	AuthDiagnosisCode *string `json:"auth_diagnosis_code"`
	AuthStartDate     *string `json:"auth_start_date"`
	AuthEndDate       *string `json:"auth_end_date"`
}

type PatientFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
	Message     string `json:"message"`
}

// ServiceEntryInput is the base payload for creating a service entry.
type ServiceEntryInput struct {
	ServiceType     string  `json:"service_type"`
	ServiceCategory string  `json:"service_category"`
	ServiceDate     string  `json:"service_date"`
	ServiceTime     *string `json:"service_time,omitempty"`
	Attended        *bool   `json:"attended"`
	SheetType       string  `json:"sheet_type,omitempty"`
}

// ServiceEntryUpdate is a partial update of an existing entry; nil fields
// are left untouched. Marking attendance flips Attended on a single dated
// entry.
type ServiceEntryUpdate struct {
	ServiceType *string `json:"service_type,omitempty"`
	ServiceDate *string `json:"service_date,omitempty"`
	ServiceTime *string `json:"service_time,omitempty"`
	Attended    *bool   `json:"attended,omitempty"`
}

// RecurringRequest is the base payload plus the expansion parameters. The
// backend expands the series; the dashboard never computes the dates itself.
type RecurringRequest struct {
	ServiceEntryInput
	RecurringType string `json:"recurring_type"` // weekly or monthly
	RecurringDays []int  `json:"recurring_days"` // 0=Sunday..6=Saturday
	WeeksCount    int    `json:"weeks_count"`
	MonthsCount   int    `json:"months_count"`
}

type RecurringResult struct {
	Success                    bool         `json:"success"`
	ParentService              ServiceEntry `json:"parent_service"`
	RecurringAppointmentsCount int          `json:"recurring_appointments_count"`
}

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type ResetPasswordInput struct {
	NewPassword string `json:"new_password"`
}
