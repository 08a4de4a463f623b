package interfaces

import (
	"context"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// AnalyticsRepository defines the read-only aggregation surface used by the
// reporting layer. All results are point-in-time snapshots.
type AnalyticsRepository interface {
	// Appointments
	CountAppointmentsBetween(ctx context.Context, from, to time.Time) (int64, error)
	ListAppointmentsSince(ctx context.Context, since time.Time) ([]*types.Appointment, error)
	ListAppointmentsBetween(ctx context.Context, from, to time.Time) ([]*types.Appointment, error)

	// Cars
	CountActiveCars(ctx context.Context) (int64, error)
	ListActiveCars(ctx context.Context) ([]*types.Car, error)

	// Patients
	CountPatientsByStatus(ctx context.Context, status types.PatientStatus) (int64, error)
	CountPatientsCreatedSince(ctx context.Context, since time.Time) (int64, error)
	RiskDistribution(ctx context.Context) (map[string]int, error)
	TopNeighborhoods(ctx context.Context, limit int) ([]types.NeighborhoodCount, error)

	// Confirmations
	ConfirmationsByMethod(ctx context.Context, since time.Time) (map[string]int, error)
	ConfirmationsByHour(ctx context.Context, since time.Time) ([]types.HourCount, error)
}
