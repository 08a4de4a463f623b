package types

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientStatus represents patient lifecycle status values
type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusDeceased PatientStatus = "deceased"
	PatientStatusMoved    PatientStatus = "moved"
)

// RiskScore represents the externally computed patient risk classification
type RiskScore string

const (
	RiskScoreLow    RiskScore = "low"
	RiskScoreMedium RiskScore = "medium"
	RiskScoreHigh   RiskScore = "high"
)

// Frequency represents collection frequency classifications
type Frequency string

const (
	FrequencyOccasional Frequency = "occasional"
	FrequencyRegular    Frequency = "regular"
	FrequencyFrequent   Frequency = "frequent"
)

// AccessDifficulty represents home access difficulty levels
type AccessDifficulty string

const (
	AccessEasy      AccessDifficulty = "easy"
	AccessModerate  AccessDifficulty = "moderate"
	AccessDifficult AccessDifficulty = "difficult"
)

// Contact holds a single contact entry for a patient
type Contact struct {
	Type    string `bson:"type" json:"type"`
	Value   string `bson:"value" json:"value"`
	Primary bool   `bson:"primary" json:"primary"`
}

// Address holds the patient home address
type Address struct {
	Street       string    `bson:"street" json:"street"`
	Neighborhood string    `bson:"neighborhood" json:"neighborhood"`
	City         string    `bson:"city" json:"city"`
	State        string    `bson:"state" json:"state"`
	ZipCode      string    `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
	Coordinates  []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	AccessNotes  string    `bson:"access_notes,omitempty" json:"access_notes,omitempty"`
}

// HealthPlan holds insurance plan details
type HealthPlan struct {
	Provider              string   `bson:"provider" json:"provider"`
	CardNumber            string   `bson:"card_number" json:"card_number"`
	PlanType              string   `bson:"plan_type,omitempty" json:"plan_type,omitempty"`
	Coverage              []string `bson:"coverage,omitempty" json:"coverage,omitempty"`
	AuthorizationRequired bool     `bson:"authorization_required" json:"authorization_required"`
	Copay                 float64  `bson:"copay" json:"copay"`
}

// PersonalInfo holds the patient identity fields
type PersonalInfo struct {
	Name      string    `bson:"name" json:"name"`
	CPF       string    `bson:"cpf" json:"cpf"`
	BirthDate time.Time `bson:"birth_date" json:"birth_date"`
	Gender    string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
}

// Preferences holds patient scheduling preferences
type Preferences struct {
	PreferredTimes       []string         `bson:"preferred_times,omitempty" json:"preferred_times,omitempty"`
	SpecialRequirements  string           `bson:"special_requirements,omitempty" json:"special_requirements,omitempty"`
	AccessibilityNeeds   bool             `bson:"accessibility_needs" json:"accessibility_needs"`
	PreferredDriver      string           `bson:"preferred_driver,omitempty" json:"preferred_driver,omitempty"`
	FastingExams         bool             `bson:"fasting_exams" json:"fasting_exams"`
	HomeAccessDifficulty AccessDifficulty `bson:"home_access_difficulty" json:"home_access_difficulty"`
}

// ConfirmationAttempt records a single attempt to confirm with the patient
type ConfirmationAttempt struct {
	Date     time.Time `bson:"date" json:"date"`
	Method   string    `bson:"method" json:"method"`
	Status   string    `bson:"status" json:"status"`
	Operator string    `bson:"operator,omitempty" json:"operator,omitempty"`
	Notes    string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CollectionRecord is a denormalized snapshot of a past collection
type CollectionRecord struct {
	ID                    string     `bson:"id" json:"id"`
	Date                  time.Time  `bson:"date" json:"date"`
	Time                  string     `bson:"time" json:"time"`
	Car                   string     `bson:"car" json:"car"`
	Driver                string     `bson:"driver" json:"driver"`
	Status                string     `bson:"status" json:"status"`
	Exams                 []string   `bson:"exams" json:"exams"`
	Duration              int        `bson:"duration" json:"duration"`
	ConfirmationTimestamp *time.Time `bson:"confirmation_timestamp,omitempty" json:"confirmation_timestamp,omitempty"`
	CompletionTimestamp   *time.Time `bson:"completion_timestamp,omitempty" json:"completion_timestamp,omitempty"`
	Notes                 string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PatientAnalytics holds derived aggregate fields. These are computed by
// external refresh processes and only read by this service.
type PatientAnalytics struct {
	Frequency            Frequency  `bson:"frequency" json:"frequency"`
	SeasonalPattern      string     `bson:"seasonal_pattern,omitempty" json:"seasonal_pattern,omitempty"`
	NoShowRate           float64    `bson:"no_show_rate" json:"no_show_rate"`
	RescheduleRate       float64    `bson:"reschedule_rate" json:"reschedule_rate"`
	AverageExamsPerVisit float64    `bson:"average_exams_per_visit" json:"average_exams_per_visit"`
	TotalCollections     int        `bson:"total_collections" json:"total_collections"`
	LastCollectionDate   *time.Time `bson:"last_collection_date,omitempty" json:"last_collection_date,omitempty"`
	NextScheduledDate    *time.Time `bson:"next_scheduled_date,omitempty" json:"next_scheduled_date,omitempty"`
	RiskScore            RiskScore  `bson:"risk_score" json:"risk_score"`
}

// Patient represents a patient document
type Patient struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	PersonalInfo         PersonalInfo          `bson:"personal_info" json:"personal_info"`
	Contacts             []Contact             `bson:"contacts" json:"contacts"`
	Address              Address               `bson:"address" json:"address"`
	HealthPlan           *HealthPlan           `bson:"health_plan,omitempty" json:"health_plan,omitempty"`
	Preferences          Preferences           `bson:"preferences" json:"preferences"`
	Tags                 []string              `bson:"tags" json:"tags"`
	Status               PatientStatus         `bson:"status" json:"status"`
	CollectionHistory    []CollectionRecord    `bson:"collection_history" json:"collection_history"`
	ConfirmationAttempts []ConfirmationAttempt `bson:"confirmation_attempts" json:"confirmation_attempts"`
	ConfirmationRate     float64               `bson:"confirmation_rate" json:"confirmation_rate"`
	Analytics            PatientAnalytics      `bson:"analytics" json:"analytics"`
	CreatedAt            time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time             `bson:"updated_at" json:"updated_at"`
	LastActivity         *time.Time            `bson:"last_activity,omitempty" json:"last_activity,omitempty"`
}

// NormalizeCPF strips formatting punctuation from a CPF, leaving digits only
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ApplyDefaults fills defaulted fields on a new patient
func (p *Patient) ApplyDefaults() {
	if p.Status == "" {
		p.Status = PatientStatusActive
	}
	if p.Address.State == "" {
		p.Address.State = "RJ"
	}
	if p.Preferences.HomeAccessDifficulty == "" {
		p.Preferences.HomeAccessDifficulty = AccessEasy
	}
	if p.Analytics.Frequency == "" {
		p.Analytics.Frequency = FrequencyOccasional
	}
	if p.Analytics.RiskScore == "" {
		p.Analytics.RiskScore = RiskScoreLow
	}
	p.PersonalInfo.CPF = NormalizeCPF(p.PersonalInfo.CPF)
}

// Validate checks the patient invariants before persistence
func (p *Patient) Validate() error {
	if len(strings.TrimSpace(p.PersonalInfo.Name)) < 2 {
		return NewValidationError(ErrCodeInvalidInput, "patient name must have at least 2 characters", nil)
	}
	if len(p.PersonalInfo.CPF) != 11 {
		return NewValidationError(ErrCodeInvalidInput, "cpf must contain exactly 11 digits", map[string]interface{}{"cpf": p.PersonalInfo.CPF})
	}
	if p.PersonalInfo.Gender != "" && p.PersonalInfo.Gender != "M" && p.PersonalInfo.Gender != "F" {
		return NewValidationError(ErrCodeInvalidInput, "gender must be M or F", nil)
	}
	if p.PersonalInfo.BirthDate.IsZero() {
		return NewValidationError(ErrCodeInvalidInput, "birth date is required", nil)
	}
	if !validPatientStatus(p.Status) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("invalid patient status: %s", p.Status), nil)
	}
	if !validAccessDifficulty(p.Preferences.HomeAccessDifficulty) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("invalid home access difficulty: %s", p.Preferences.HomeAccessDifficulty), nil)
	}
	if p.Address.Street == "" || p.Address.Neighborhood == "" || p.Address.City == "" {
		return NewValidationError(ErrCodeInvalidInput, "address street, neighborhood and city are required", nil)
	}
	return nil
}

func validPatientStatus(s PatientStatus) bool {
	switch s {
	case PatientStatusActive, PatientStatusInactive, PatientStatusDeceased, PatientStatusMoved:
		return true
	}
	return false
}

func validAccessDifficulty(d AccessDifficulty) bool {
	switch d {
	case AccessEasy, AccessModerate, AccessDifficult:
		return true
	}
	return false
}

// PatientPatch enumerates the mutable patient fields for partial updates
type PatientPatch struct {
	Name        *string        `json:"name,omitempty"`
	BirthDate   *time.Time     `json:"birth_date,omitempty"`
	Gender      *string        `json:"gender,omitempty"`
	Email       *string        `json:"email,omitempty"`
	Contacts    *[]Contact     `json:"contacts,omitempty"`
	Address     *Address       `json:"address,omitempty"`
	HealthPlan  *HealthPlan    `json:"health_plan,omitempty"`
	Preferences *Preferences   `json:"preferences,omitempty"`
	Tags        *[]string      `json:"tags,omitempty"`
	Status      *PatientStatus `json:"status,omitempty"`
}

// Validate checks the patch fields that carry constrained values
func (p *PatientPatch) Validate() error {
	if p.Name != nil && len(strings.TrimSpace(*p.Name)) < 2 {
		return NewValidationError(ErrCodeInvalidInput, "patient name must have at least 2 characters", nil)
	}
	if p.Gender != nil && *p.Gender != "" && *p.Gender != "M" && *p.Gender != "F" {
		return NewValidationError(ErrCodeInvalidInput, "gender must be M or F", nil)
	}
	if p.Status != nil && !validPatientStatus(*p.Status) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("invalid patient status: %s", *p.Status), nil)
	}
	if p.Preferences != nil && p.Preferences.HomeAccessDifficulty != "" && !validAccessDifficulty(p.Preferences.HomeAccessDifficulty) {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("invalid home access difficulty: %s", p.Preferences.HomeAccessDifficulty), nil)
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields
func (p *PatientPatch) IsEmpty() bool {
	return p.Name == nil && p.BirthDate == nil && p.Gender == nil && p.Email == nil &&
		p.Contacts == nil && p.Address == nil && p.HealthPlan == nil &&
		p.Preferences == nil && p.Tags == nil && p.Status == nil
}

// PatientFilters represents filters for patient listing
type PatientFilters struct {
	Search       string        `json:"search,omitempty"`
	Status       PatientStatus `json:"status,omitempty"`
	Neighborhood string        `json:"neighborhood,omitempty"`
	RiskScore    RiskScore     `json:"risk_score,omitempty"`
	Skip         int           `json:"skip,omitempty"`
	Limit        int           `json:"limit,omitempty"`
}
