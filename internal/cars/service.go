package cars

import (
	"context"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/interfaces"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// Service implements vehicle fleet management
type Service struct {
	repo   interfaces.CarRepository
	logger *logger.Logger
	api    config.APIConfig
}

// NewService creates a new car service
func NewService(repo interfaces.CarRepository, log *logger.Logger, api config.APIConfig) *Service {
	return &Service{repo: repo, logger: log, api: api}
}

// Create validates and registers a new car. Car names are unique across the
// fleet.
func (s *Service) Create(ctx context.Context, car *types.Car) (*types.Car, error) {
	car.ApplyDefaults()
	car.Active = true
	if err := car.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, car.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, types.NewConflictError(types.ErrCodeDuplicateCarName, "a car with this name already exists")
	}

	now := time.Now().UTC()
	car.CreatedAt = now
	car.UpdatedAt = now

	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}

	return car, nil
}

// Get retrieves a car by id
func (s *Service) Get(ctx context.Context, id string) (*types.Car, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update and returns the updated car
func (s *Service) Update(ctx context.Context, id string, patch *types.CarPatch) (*types.Car, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.repo.GetByID(ctx, id)
	}

	if patch.Name != nil {
		existing, err := s.repo.FindByName(ctx, *patch.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID.Hex() != id {
			return nil, types.NewConflictError(types.ErrCodeDuplicateCarName, "a car with this name already exists")
		}
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Disable soft-deletes the car by marking it inactive. Existing appointments
// keep referencing it; it simply stops accepting new ones.
func (s *Service) Disable(ctx context.Context, id string) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Infof("Disabled car %s", id)
	return nil
}

// List retrieves cars with paging clamped to the configured bounds
func (s *Service) List(ctx context.Context, filters *types.CarFilters) ([]*types.Car, error) {
	if filters == nil {
		filters = &types.CarFilters{}
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
