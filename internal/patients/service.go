package patients

import (
	"context"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/interfaces"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/monitoring"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// Service implements patient management business logic
type Service struct {
	repo   interfaces.PatientRepository
	logger *logger.Logger
	api    config.APIConfig
}

// NewService creates a new patient service
func NewService(repo interfaces.PatientRepository, log *logger.Logger, api config.APIConfig) *Service {
	return &Service{repo: repo, logger: log, api: api}
}

// Create validates and registers a new patient. The CPF must be unique
// across all patients regardless of status, so an inactive patient still
// blocks re-registration under the same CPF.
func (s *Service) Create(ctx context.Context, patient *types.Patient) (*types.Patient, error) {
	patient.ApplyDefaults()
	if err := patient.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCPF(ctx, patient.PersonalInfo.CPF)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, types.NewConflictError(types.ErrCodeDuplicateCPF, "a patient with this CPF already exists")
	}

	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// Get retrieves a patient by id
func (s *Service) Get(ctx context.Context, id string) (*types.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update and returns the updated patient
func (s *Service) Update(ctx context.Context, id string, patch *types.PatientPatch) (*types.Patient, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.repo.GetByID(ctx, id)
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Delete soft-deletes the patient by moving it to inactive. The document is
// retained, and its CPF keeps blocking new registrations.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.SetStatus(ctx, id, types.PatientStatusInactive); err != nil {
		return err
	}
	s.logger.Infof("Deactivated patient %s", id)
	return nil
}

// List retrieves patients with paging clamped to the configured bounds
func (s *Service) List(ctx context.Context, filters *types.PatientFilters) ([]*types.Patient, error) {
	if filters == nil {
		filters = &types.PatientFilters{}
	}
	if filters.Skip < 0 {
		filters.Skip = 0
	}
	if filters.Limit <= 0 {
		filters.Limit = s.api.DefaultPageSize
	}
	if filters.Limit > s.api.MaxPageSize {
		filters.Limit = s.api.MaxPageSize
	}
	return s.repo.List(ctx, filters)
}

// History returns the patient's denormalized collection history
func (s *Service) History(ctx context.Context, id string) (*types.PatientHistoryReport, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history := patient.CollectionHistory
	if history == nil {
		history = []types.CollectionRecord{}
	}

	return &types.PatientHistoryReport{
		PatientID:        patient.ID.Hex(),
		PatientName:      patient.PersonalInfo.Name,
		TotalCollections: len(history),
		History:          history,
	}, nil
}

// AddConfirmationAttempt records one contact attempt and recomputes the
// patient's confirmation rate over all attempts
func (s *Service) AddConfirmationAttempt(ctx context.Context, id string, attempt types.ConfirmationAttempt) (*types.Patient, error) {
	if attempt.Method == "" || attempt.Status == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "attempt method and status are required", nil)
	}
	if attempt.Date.IsZero() {
		attempt.Date = time.Now().UTC()
	}

	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attempts := append(append([]types.ConfirmationAttempt{}, patient.ConfirmationAttempts...), attempt)
	rate := ConfirmationRate(attempts)

	if err := s.repo.AppendConfirmationAttempt(ctx, id, attempt, rate); err != nil {
		return nil, err
	}

	monitoring.RecordConfirmationAttempt(attempt.Status)
	s.logger.Infof("Recorded %s confirmation attempt for patient %s, rate now %.2f", attempt.Status, id, rate)

	patient.ConfirmationAttempts = attempts
	patient.ConfirmationRate = rate
	return patient, nil
}

// ConfirmationRate computes the fraction of attempts that confirmed,
// returning 0 for an empty attempt list
func ConfirmationRate(attempts []types.ConfirmationAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	confirmed := 0
	for _, a := range attempts {
		if a.Status == "confirmed" {
			confirmed++
		}
	}
	return float64(confirmed) / float64(len(attempts))
}
