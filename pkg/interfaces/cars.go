package interfaces

import (
	"context"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// CarRepository defines the interface for vehicle persistence
type CarRepository interface {
	Create(ctx context.Context, car *types.Car) error
	GetByID(ctx context.Context, id string) (*types.Car, error)

	// FindByName returns the car with the given unique name, or nil when absent.
	FindByName(ctx context.Context, name string) (*types.Car, error)

	Update(ctx context.Context, id string, patch *types.CarPatch) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filters *types.CarFilters) ([]*types.Car, error)
	ListActive(ctx context.Context) ([]*types.Car, error)
}
