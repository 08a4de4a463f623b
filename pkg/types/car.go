package types

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Driver holds the driver assigned to a car
type Driver struct {
	Name          string `bson:"name" json:"name"`
	Phone         string `bson:"phone" json:"phone"`
	LicenseNumber string `bson:"license_number,omitempty" json:"license_number,omitempty"`
	Active        bool   `bson:"active" json:"active"`
}

// WorkingHours holds the daily operating window of a car
type WorkingHours struct {
	StartTime     string `bson:"start_time" json:"start_time"`
	EndTime       string `bson:"end_time" json:"end_time"`
	BreakStart    string `bson:"break_start,omitempty" json:"break_start,omitempty"`
	BreakDuration int    `bson:"break_duration" json:"break_duration"`
}

// Car represents a collection vehicle document
type Car struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                  string             `bson:"name" json:"name"`
	LicensePlate          string             `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	Model                 string             `bson:"model,omitempty" json:"model,omitempty"`
	Driver                Driver             `bson:"driver" json:"driver"`
	Capacity              int                `bson:"capacity" json:"capacity"`
	Active                bool               `bson:"active" json:"active"`
	Zones                 []string           `bson:"zones" json:"zones"`
	WorkingHours          WorkingHours       `bson:"working_hours" json:"working_hours"`
	UnavailableDates      []time.Time        `bson:"unavailable_dates" json:"unavailable_dates"`
	TotalCollections      int                `bson:"total_collections" json:"total_collections"`
	AverageCollectionTime float64            `bson:"average_collection_time" json:"average_collection_time"`
	CompletionRate        float64            `bson:"completion_rate" json:"completion_rate"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
	LastAssignment        *time.Time         `bson:"last_assignment,omitempty" json:"last_assignment,omitempty"`
}

// ApplyDefaults fills defaulted fields on a new car
func (c *Car) ApplyDefaults() {
	if c.Capacity == 0 {
		c.Capacity = 8
	}
	if c.WorkingHours.StartTime == "" {
		c.WorkingHours.StartTime = "07:00"
	}
	if c.WorkingHours.EndTime == "" {
		c.WorkingHours.EndTime = "18:00"
	}
	if c.WorkingHours.BreakDuration == 0 {
		c.WorkingHours.BreakDuration = 60
	}
	if c.CompletionRate == 0 {
		c.CompletionRate = 1.0
	}
}

// Validate checks the car invariants before persistence
func (c *Car) Validate() error {
	if c.Name == "" {
		return NewValidationError(ErrCodeInvalidInput, "car name is required", nil)
	}
	if c.Driver.Name == "" || c.Driver.Phone == "" {
		return NewValidationError(ErrCodeInvalidInput, "driver name and phone are required", nil)
	}
	if c.Capacity <= 0 {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("capacity must be positive, got %d", c.Capacity), nil)
	}
	if !ValidTimeSlot(c.WorkingHours.StartTime) || !ValidTimeSlot(c.WorkingHours.EndTime) {
		return NewValidationError(ErrCodeInvalidInput, "working hours must be HH:MM", nil)
	}
	if c.WorkingHours.BreakStart != "" && !ValidTimeSlot(c.WorkingHours.BreakStart) {
		return NewValidationError(ErrCodeInvalidInput, "break start must be HH:MM", nil)
	}
	return nil
}

// CarPatch enumerates the mutable car fields for partial updates
type CarPatch struct {
	Name             *string       `json:"name,omitempty"`
	LicensePlate     *string       `json:"license_plate,omitempty"`
	Model            *string       `json:"model,omitempty"`
	Driver           *Driver       `json:"driver,omitempty"`
	Capacity         *int          `json:"capacity,omitempty"`
	Active           *bool         `json:"active,omitempty"`
	Zones            *[]string     `json:"zones,omitempty"`
	WorkingHours     *WorkingHours `json:"working_hours,omitempty"`
	UnavailableDates *[]time.Time  `json:"unavailable_dates,omitempty"`
}

// Validate checks the patch fields that carry constrained values
func (p *CarPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return NewValidationError(ErrCodeInvalidInput, "car name cannot be empty", nil)
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		return NewValidationError(ErrCodeInvalidInput, fmt.Sprintf("capacity must be positive, got %d", *p.Capacity), nil)
	}
	if p.WorkingHours != nil {
		if !ValidTimeSlot(p.WorkingHours.StartTime) || !ValidTimeSlot(p.WorkingHours.EndTime) {
			return NewValidationError(ErrCodeInvalidInput, "working hours must be HH:MM", nil)
		}
	}
	if p.Driver != nil && (p.Driver.Name == "" || p.Driver.Phone == "") {
		return NewValidationError(ErrCodeInvalidInput, "driver name and phone are required", nil)
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields
func (p *CarPatch) IsEmpty() bool {
	return p.Name == nil && p.LicensePlate == nil && p.Model == nil && p.Driver == nil &&
		p.Capacity == nil && p.Active == nil && p.Zones == nil &&
		p.WorkingHours == nil && p.UnavailableDates == nil
}

// CarFilters represents filters for car listing
type CarFilters struct {
	Active *bool  `json:"active,omitempty"`
	Zone   string `json:"zone,omitempty"`
	Skip   int    `json:"skip,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}
