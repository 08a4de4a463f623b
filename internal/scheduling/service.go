package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/interfaces"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/monitoring"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// Service implements appointment lifecycle and conflict-checked scheduling
type Service struct {
	repo     interfaces.AppointmentRepository
	patients interfaces.PatientRepository
	cars     interfaces.CarRepository
	locks    *slotLocks
	logger   *logger.Logger

	api config.APIConfig
}

// NewService creates a new scheduling service
func NewService(repo interfaces.AppointmentRepository, patients interfaces.PatientRepository,
	cars interfaces.CarRepository, log *logger.Logger, api config.APIConfig) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		cars:     cars,
		locks:    newSlotLocks(),
		logger:   log,
		api:      api,
	}
}

// ConfirmRequest carries the confirmation details for an appointment
type ConfirmRequest struct {
	ConfirmedBy string `json:"confirmed_by"`
	Method      string `json:"method"`
	Notes       string `json:"notes,omitempty"`
}

// Create validates and schedules a new appointment. The referenced patient
// and car must exist, and the (car, day, slot) triple must be free of active
// appointments.
func (s *Service) Create(ctx context.Context, apt *types.Appointment) (*types.Appointment, error) {
	apt.ApplyDefaults()
	if err := apt.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.patients.GetByID(ctx, apt.PatientID); err != nil {
		if types.IsNotFound(err) {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
		}
		return nil, err
	}

	car, err := s.cars.GetByID(ctx, apt.CarID)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
		}
		return nil, err
	}
	if !car.Active {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "car is not active", nil)
	}

	release := s.locks.acquire(apt.CarID, apt.ScheduledDate)
	defer release()

	if err := s.checkSlotFree(ctx, apt.CarID, apt.ScheduledDate, apt.TimeSlot, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}

	monitoring.RecordAppointmentCreated()
	return apt, nil
}

// Get retrieves an appointment by id
func (s *Service) Get(ctx context.Context, id string) (*types.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. When the patch touches the (car, date,
// slot) triple, the effective triple after merging is re-checked for
// conflicts with the appointment itself excluded.
func (s *Service) Update(ctx context.Context, id string, patch *types.AppointmentPatch) (*types.Appointment, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return current, nil
	}

	if patch.TouchesSlot() {
		carID := current.CarID
		if patch.CarID != nil {
			carID = *patch.CarID
		}
		date := current.ScheduledDate
		if patch.ScheduledDate != nil {
			date = *patch.ScheduledDate
		}
		slot := current.TimeSlot
		if patch.TimeSlot != nil {
			slot = *patch.TimeSlot
		}

		if patch.CarID != nil && *patch.CarID != current.CarID {
			if _, err := s.cars.GetByID(ctx, carID); err != nil {
				if types.IsNotFound(err) {
					return nil, types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
				}
				return nil, err
			}
		}

		release := s.locks.acquire(carID, date)
		defer release()

		if err := s.checkSlotFree(ctx, carID, date, slot, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Confirm marks the appointment's confirmation sub-record as confirmed and
// increments the attempt counter. The appointment's lifecycle status is not
// changed.
func (s *Service) Confirm(ctx context.Context, id string, req *ConfirmRequest) (*types.Appointment, error) {
	apt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conf := apt.Confirmation
	conf.Status = types.ConfirmationConfirmed
	conf.ConfirmedAt = &now
	conf.ConfirmedBy = req.ConfirmedBy
	conf.Method = req.Method
	conf.Attempts++
	if req.Notes != "" {
		conf.Notes = req.Notes
	}

	if err := s.repo.SetConfirmation(ctx, id, conf); err != nil {
		return nil, err
	}

	monitoring.RecordConfirmationAttempt(string(types.ConfirmationConfirmed))
	s.logger.Infof("Confirmed appointment %s via %s", id, req.Method)

	apt.Confirmation = conf
	return apt, nil
}

// Cancel soft-deletes the appointment by moving it to cancelled, freeing its
// slot for conflict purposes. The document is retained for history and
// analytics.
func (s *Service) Cancel(ctx context.Context, id string) error {
	status := types.AppointmentCancelled
	if err := s.repo.Update(ctx, id, &types.AppointmentPatch{Status: &status}); err != nil {
		return err
	}
	s.logger.Infof("Cancelled appointment %s", id)
	return nil
}

// List retrieves appointments with paging clamped to the configured bounds
func (s *Service) List(ctx context.Context, filters *types.AppointmentFilters) ([]*types.Appointment, error) {
	if filters == nil {
		filters = &types.AppointmentFilters{}
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

// HasConflict reports whether an active appointment already occupies the
// (car, calendar day, time slot) triple. excludeID, when non-empty, is
// ignored during the check so an appointment never conflicts with itself.
func (s *Service) HasConflict(ctx context.Context, carID string, date time.Time, timeSlot, excludeID string) (bool, error) {
	dayStart, dayEnd := types.DayBounds(date)
	existing, err := s.repo.FindConflicting(ctx, carID, dayStart, dayEnd, timeSlot, excludeID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

func (s *Service) checkSlotFree(ctx context.Context, carID string, date time.Time, timeSlot, excludeID string) error {
	conflict, err := s.HasConflict(ctx, carID, date, timeSlot, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		monitoring.RecordSlotConflict()
		return types.NewConflictError(types.ErrCodeSlotOccupied,
			fmt.Sprintf("car %s already has an appointment at %s on %s",
				carID, timeSlot, date.UTC().Format("2006-01-02")))
	}
	return nil
}

// CalendarView groups one day's appointments by car. Every active car
// appears with its capacity even when it has no appointments; when carIDs is
// non-empty only those cars are included.
func (s *Service) CalendarView(ctx context.Context, date time.Time, carIDs []string) (*types.CalendarView, error) {
	dayStart, dayEnd := types.DayBounds(date)

	appointments, err := s.repo.ListByDay(ctx, dayStart, dayEnd, carIDs)
	if err != nil {
		return nil, err
	}

	cars, err := s.cars.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(carIDs))
	for _, id := range carIDs {
		requested[id] = true
	}

	view := &types.CalendarView{
		Date: dayStart.Format("2006-01-02"),
		Cars: make(map[string]types.CalendarCar),
	}

	for _, car := range cars {
		id := car.ID.Hex()
		if len(requested) > 0 && !requested[id] {
			continue
		}
		view.Cars[id] = types.CalendarCar{
			CarID:        id,
			Driver:       car.Driver.Name,
			Appointments: []*types.Appointment{},
			Capacity:     car.Capacity,
		}
	}

	for _, apt := range appointments {
		entry, ok := view.Cars[apt.CarID]
		if !ok {
			// appointment on an inactive or filtered-out car
			continue
		}
		entry.Appointments = append(entry.Appointments, apt)
		entry.Total = len(entry.Appointments)
		view.Cars[apt.CarID] = entry
		view.TotalAppointments++
	}

	return view, nil
}
