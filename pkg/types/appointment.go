package types

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus represents appointment status values
type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "scheduled"
	AppointmentInProgress  AppointmentStatus = "in_progress"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentNoShow      AppointmentStatus = "no_show"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

// ConfirmationStatus represents confirmation sub-record status values
type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationCancelled ConfirmationStatus = "cancelled"
	ConfirmationNoShow    ConfirmationStatus = "no_show"
)

// Duration bounds in minutes for a home collection
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 120
)

var timeSlotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeSlot reports whether s is a well-formed HH:MM slot string
func ValidTimeSlot(s string) bool {
	return timeSlotPattern.MatchString(s)
}

// Confirmation tracks whether the patient acknowledged the appointment,
// independent of the appointment's primary lifecycle status
type Confirmation struct {
	Status      ConfirmationStatus `bson:"status" json:"status"`
	ConfirmedAt *time.Time         `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	ConfirmedBy string             `bson:"confirmed_by,omitempty" json:"confirmed_by,omitempty"`
	Method      string             `bson:"method,omitempty" json:"method,omitempty"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Appointment represents a scheduled home collection
type Appointment struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID           string             `bson:"patient_id" json:"patient_id"`
	CarID               string             `bson:"car_id" json:"car_id"`
	ScheduledDate       time.Time          `bson:"scheduled_date" json:"scheduled_date"`
	TimeSlot            string             `bson:"time_slot" json:"time_slot"`
	Duration            int                `bson:"duration" json:"duration"`
	Exams               []string           `bson:"exams" json:"exams"`
	SpecialInstructions string             `bson:"special_instructions,omitempty" json:"special_instructions,omitempty"`
	Status              AppointmentStatus  `bson:"status" json:"status"`
	Confirmation        Confirmation       `bson:"confirmation" json:"confirmation"`
	ActualStartTime     *time.Time         `bson:"actual_start_time,omitempty" json:"actual_start_time,omitempty"`
	ActualEndTime       *time.Time         `bson:"actual_end_time,omitempty" json:"actual_end_time,omitempty"`
	CollectedBy         string             `bson:"collected_by,omitempty" json:"collected_by,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// ApplyDefaults fills defaulted fields on a new appointment
func (a *Appointment) ApplyDefaults() {
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	if a.Confirmation.Status == "" {
		a.Confirmation.Status = ConfirmationPending
	}
}

// Validate checks the appointment invariants before persistence
func (a *Appointment) Validate() error {
	if a.PatientID == "" {
		return NewValidationError(ErrCodeInvalidInput, "patient_id is required", nil)
	}
	if a.CarID == "" {
		return NewValidationError(ErrCodeInvalidInput, "car_id is required", nil)
	}
	if a.ScheduledDate.IsZero() {
		return NewValidationError(ErrCodeInvalidInput, "scheduled_date is required", nil)
	}
	if !ValidTimeSlot(a.TimeSlot) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("time_slot must be HH:MM, got %q", a.TimeSlot), nil)
	}
	if a.Duration < MinDurationMinutes || a.Duration > MaxDurationMinutes {
		return NewValidationError(ErrCodeInvalidInput,
			fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes), nil)
	}
	if !validAppointmentStatus(a.Status) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("invalid appointment status: %s", a.Status), nil)
	}
	return nil
}

func validAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentScheduled, AppointmentInProgress, AppointmentCompleted,
		AppointmentCancelled, AppointmentNoShow, AppointmentRescheduled:
		return true
	}
	return false
}

func validConfirmationStatus(s ConfirmationStatus) bool {
	switch s {
	case ConfirmationPending, ConfirmationConfirmed, ConfirmationCancelled, ConfirmationNoShow:
		return true
	}
	return false
}

// InactiveStatuses lists the statuses excluded from conflict detection.
// Cancelled and no-show appointments free their slot.
func InactiveStatuses() []string {
	return []string{string(AppointmentCancelled), string(AppointmentNoShow)}
}

// AppointmentPatch enumerates the mutable appointment fields for partial updates
type AppointmentPatch struct {
	ScheduledDate       *time.Time         `json:"scheduled_date,omitempty"`
	TimeSlot            *string            `json:"time_slot,omitempty"`
	CarID               *string            `json:"car_id,omitempty"`
	Duration            *int               `json:"duration,omitempty"`
	Exams               *[]string          `json:"exams,omitempty"`
	SpecialInstructions *string            `json:"special_instructions,omitempty"`
	Status              *AppointmentStatus `json:"status,omitempty"`
	ActualStartTime     *time.Time         `json:"actual_start_time,omitempty"`
	ActualEndTime       *time.Time         `json:"actual_end_time,omitempty"`
	CollectedBy         *string            `json:"collected_by,omitempty"`
}

// TouchesSlot reports whether the patch changes any part of the
// (car, date, time slot) triple and therefore requires a conflict re-check
func (p *AppointmentPatch) TouchesSlot() bool {
	return p.ScheduledDate != nil || p.TimeSlot != nil || p.CarID != nil
}

// Validate checks the patch fields that carry constrained values
func (p *AppointmentPatch) Validate() error {
	if p.TimeSlot != nil && !ValidTimeSlot(*p.TimeSlot) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("time_slot must be HH:MM, got %q", *p.TimeSlot), nil)
	}
	if p.Duration != nil && (*p.Duration < MinDurationMinutes || *p.Duration > MaxDurationMinutes) {
		return NewValidationError(ErrCodeInvalidInput,
			fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes), nil)
	}
	if p.Status != nil && !validAppointmentStatus(*p.Status) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("invalid appointment status: %s", *p.Status), nil)
	}
	if p.CarID != nil && *p.CarID == "" {
		return NewValidationError(ErrCodeInvalidInput, "car_id cannot be empty", nil)
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields
func (p *AppointmentPatch) IsEmpty() bool {
	return p.ScheduledDate == nil && p.TimeSlot == nil && p.CarID == nil &&
		p.Duration == nil && p.Exams == nil && p.SpecialInstructions == nil &&
		p.Status == nil && p.ActualStartTime == nil && p.ActualEndTime == nil &&
		p.CollectedBy == nil
}

// AppointmentFilters represents filters for appointment listing.
// Filters are AND-combined.
type AppointmentFilters struct {
	DateFrom *time.Time        `json:"date_from,omitempty"`
	DateTo   *time.Time        `json:"date_to,omitempty"`
	CarID    string            `json:"car_id,omitempty"`
	Status   AppointmentStatus `json:"status,omitempty"`
	Skip     int               `json:"skip,omitempty"`
	Limit    int               `json:"limit,omitempty"`
}

// DayBounds returns the [start, end) window of the calendar day containing t, in UTC
func DayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
