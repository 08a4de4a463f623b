package cars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// MockCarRepository is a mock implementation of CarRepository
type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) Create(ctx context.Context, car *types.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarRepository) GetByID(ctx context.Context, id string) (*types.Car, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*types.Car); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarRepository) FindByName(ctx context.Context, name string) (*types.Car, error) {
	args := m.Called(ctx, name)
	if c, ok := args.Get(0).(*types.Car); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarRepository) Update(ctx context.Context, id string, patch *types.CarPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockCarRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockCarRepository) List(ctx context.Context, filters *types.CarFilters) ([]*types.Car, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.Car), args.Error(1)
}

func (m *MockCarRepository) ListActive(ctx context.Context) ([]*types.Car, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*types.Car), args.Error(1)
}

func setupTestService() (*Service, *MockCarRepository) {
	mockRepo := &MockCarRepository{}
	log := logger.New("debug")
	api := config.APIConfig{DefaultPageSize: 50, MaxPageSize: 200}
	return NewService(mockRepo, log, api), mockRepo
}

func validCar() *types.Car {
	return &types.Car{
		Name: "CARRO 1",
		Driver: types.Driver{
			Name:   "João Silva",
			Phone:  "21988776655",
			Active: true,
		},
		Zones: []string{"Zona Sul"},
	}
}

func TestCreateCar_Success(t *testing.T) {
	service, mockRepo := setupTestService()

	car := validCar()
	mockRepo.On("FindByName", mock.Anything, "CARRO 1").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, car).Return(nil)

	result, err := service.Create(context.Background(), car)

	assert.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, 8, result.Capacity)
	assert.Equal(t, "07:00", result.WorkingHours.StartTime)
	assert.Equal(t, "18:00", result.WorkingHours.EndTime)
	mockRepo.AssertExpectations(t)
}

func TestCreateCar_DuplicateName(t *testing.T) {
	service, mockRepo := setupTestService()

	car := validCar()
	existing := validCar()
	existing.ID = primitive.NewObjectID()

	mockRepo.On("FindByName", mock.Anything, "CARRO 1").Return(existing, nil)

	_, err := service.Create(context.Background(), car)

	assert.Error(t, err)
	assert.True(t, types.IsConflict(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCar_MissingDriver(t *testing.T) {
	service, _ := setupTestService()

	car := validCar()
	car.Driver.Phone = ""

	_, err := service.Create(context.Background(), car)

	assert.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestUpdateCar_RenameToExistingName(t *testing.T) {
	service, mockRepo := setupTestService()

	id := primitive.NewObjectID()
	other := validCar()
	other.ID = primitive.NewObjectID()
	other.Name = "CARRO 2"

	newName := "CARRO 2"
	patch := &types.CarPatch{Name: &newName}

	mockRepo.On("FindByName", mock.Anything, "CARRO 2").Return(other, nil)

	_, err := service.Update(context.Background(), id.Hex(), patch)

	assert.Error(t, err)
	assert.True(t, types.IsConflict(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCar_RenameToOwnNameAllowed(t *testing.T) {
	service, mockRepo := setupTestService()

	id := primitive.NewObjectID()
	self := validCar()
	self.ID = id

	name := "CARRO 1"
	patch := &types.CarPatch{Name: &name}

	mockRepo.On("FindByName", mock.Anything, "CARRO 1").Return(self, nil)
	mockRepo.On("Update", mock.Anything, id.Hex(), patch).Return(nil)
	mockRepo.On("GetByID", mock.Anything, id.Hex()).Return(self, nil)

	_, err := service.Update(context.Background(), id.Hex(), patch)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestDisableCar(t *testing.T) {
	service, mockRepo := setupTestService()

	id := primitive.NewObjectID().Hex()
	mockRepo.On("SetActive", mock.Anything, id, false).Return(nil)

	err := service.Disable(context.Background(), id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListCars_ClampsPaging(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f *types.CarFilters) bool {
		return f.Limit == 50
	})).Return([]*types.Car{}, nil)

	_, err := service.List(context.Background(), nil)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
