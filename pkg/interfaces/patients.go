package interfaces

import (
	"context"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// PatientRepository defines the interface for patient persistence
type PatientRepository interface {
	Create(ctx context.Context, patient *types.Patient) error
	GetByID(ctx context.Context, id string) (*types.Patient, error)

	// FindByCPF returns the patient holding the normalized CPF regardless of
	// status, or nil when no such patient exists.
	FindByCPF(ctx context.Context, cpf string) (*types.Patient, error)

	Update(ctx context.Context, id string, patch *types.PatientPatch) error
	SetStatus(ctx context.Context, id string, status types.PatientStatus) error
	List(ctx context.Context, filters *types.PatientFilters) ([]*types.Patient, error)

	// AppendConfirmationAttempt appends one attempt and stores the recomputed
	// confirmation rate in the same update.
	AppendConfirmationAttempt(ctx context.Context, id string, attempt types.ConfirmationAttempt, rate float64) error
}
