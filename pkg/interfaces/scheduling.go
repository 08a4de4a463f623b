package interfaces

import (
	"context"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// AppointmentRepository defines the interface for appointment persistence
type AppointmentRepository interface {
	Create(ctx context.Context, apt *types.Appointment) error
	GetByID(ctx context.Context, id string) (*types.Appointment, error)
	Update(ctx context.Context, id string, patch *types.AppointmentPatch) error
	SetConfirmation(ctx context.Context, id string, conf types.Confirmation) error
	List(ctx context.Context, filters *types.AppointmentFilters) ([]*types.Appointment, error)

	// FindConflicting returns the active appointment occupying the exact
	// (car, calendar day, time slot) triple, or nil when the slot is free.
	// When excludeID is non-empty that appointment is ignored.
	FindConflicting(ctx context.Context, carID string, dayStart, dayEnd time.Time, timeSlot, excludeID string) (*types.Appointment, error)

	// ListByDay returns all appointments whose scheduled date falls within
	// [dayStart, dayEnd), optionally restricted to the given car ids.
	ListByDay(ctx context.Context, dayStart, dayEnd time.Time, carIDs []string) ([]*types.Appointment, error)
}
