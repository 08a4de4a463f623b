package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// MockAppointmentRepository is a mock implementation of AppointmentRepository
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, apt *types.Appointment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	args := m.Called(ctx, id)
	if apt, ok := args.Get(0).(*types.Appointment); ok {
		return apt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, id string, patch *types.AppointmentPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockAppointmentRepository) SetConfirmation(ctx context.Context, id string, conf types.Confirmation) error {
	args := m.Called(ctx, id, conf)
	return args.Error(0)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filters *types.AppointmentFilters) ([]*types.Appointment, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindConflicting(ctx context.Context, carID string, dayStart, dayEnd time.Time, timeSlot, excludeID string) (*types.Appointment, error) {
	args := m.Called(ctx, carID, dayStart, dayEnd, timeSlot, excludeID)
	if apt, ok := args.Get(0).(*types.Appointment); ok {
		return apt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAppointmentRepository) ListByDay(ctx context.Context, dayStart, dayEnd time.Time, carIDs []string) ([]*types.Appointment, error) {
	args := m.Called(ctx, dayStart, dayEnd, carIDs)
	return args.Get(0).([]*types.Appointment), args.Error(1)
}

// MockPatientRepository is a mock implementation of PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *types.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id string) (*types.Patient, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*types.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPatientRepository) FindByCPF(ctx context.Context, cpf string) (*types.Patient, error) {
	args := m.Called(ctx, cpf)
	if p, ok := args.Get(0).(*types.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, id string, patch *types.PatientPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockPatientRepository) SetStatus(ctx context.Context, id string, status types.PatientStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context, filters *types.PatientFilters) ([]*types.Patient, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.Patient), args.Error(1)
}

func (m *MockPatientRepository) AppendConfirmationAttempt(ctx context.Context, id string, attempt types.ConfirmationAttempt, rate float64) error {
	args := m.Called(ctx, id, attempt, rate)
	return args.Error(0)
}

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

// Test setup helper
func setupTestService() (*Service, *MockAppointmentRepository, *MockPatientRepository, *MockCarRepository) {
	mockRepo := &MockAppointmentRepository{}
	mockPatients := &MockPatientRepository{}
	mockCars := &MockCarRepository{}
	log := logger.New("debug")

	api := config.APIConfig{DefaultPageSize: 50, MaxPageSize: 200, MaxUploadSize: 10 << 20}
	service := NewService(mockRepo, mockPatients, mockCars, log, api)

	return service, mockRepo, mockPatients, mockCars
}

func testDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func activeCar(name string) *types.Car {
	return &types.Car{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Driver:   types.Driver{Name: "João Silva"},
		Capacity: 8,
		Active:   true,
	}
}

func TestCreateAppointment_Success(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	apt := &types.Appointment{
		PatientID:     "patient-123",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Duration:      30,
		Exams:         []string{"Hemograma"},
	}

	mockPatients.On("GetByID", mock.Anything, "patient-123").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "08:00", "").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, apt).Return(nil)

	result, err := service.Create(context.Background(), apt)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, types.AppointmentScheduled, result.Status)
	assert.Equal(t, types.ConfirmationPending, result.Confirmation.Status)
	assert.False(t, result.CreatedAt.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestCreateAppointment_SlotConflict(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	existing := &types.Appointment{
		ID:            primitive.NewObjectID(),
		PatientID:     "patient-123",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Status:        types.AppointmentScheduled,
	}

	apt := &types.Appointment{
		PatientID:     "patient-456",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Duration:      30,
	}

	mockPatients.On("GetByID", mock.Anything, "patient-456").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "08:00", "").Return(existing, nil)

	_, err := service.Create(context.Background(), apt)

	assert.Error(t, err)
	assert.True(t, types.IsConflict(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAppointment_DifferentSlotSameDay(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	apt := &types.Appointment{
		PatientID:     "patient-456",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:30",
		Duration:      30,
	}

	mockPatients.On("GetByID", mock.Anything, "patient-456").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "08:30", "").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, apt).Return(nil)

	_, err := service.Create(context.Background(), apt)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateAppointment_PatientNotFound(t *testing.T) {
	service, mockRepo, mockPatients, _ := setupTestService()

	apt := &types.Appointment{
		PatientID:     "missing",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Duration:      30,
	}

	mockPatients.On("GetByID", mock.Anything, "missing").
		Return(nil, types.NewNotFoundError(types.ErrCodeNotFound, "patient not found"))

	_, err := service.Create(context.Background(), apt)

	assert.Error(t, err)
	assert.True(t, types.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAppointment_InactiveCar(t *testing.T) {
	service, _, mockPatients, mockCars := setupTestService()

	apt := &types.Appointment{
		PatientID:     "patient-123",
		CarID:         "car-9",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Duration:      30,
	}

	car := activeCar("CARRO 9")
	car.Active = false

	mockPatients.On("GetByID", mock.Anything, "patient-123").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-9").Return(car, nil)

	_, err := service.Create(context.Background(), apt)

	assert.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestCreateAppointment_InvalidTimeSlot(t *testing.T) {
	service, _, _, _ := setupTestService()

	apt := &types.Appointment{
		PatientID:     "patient-123",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "8am",
		Duration:      30,
	}

	_, err := service.Create(context.Background(), apt)

	assert.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Contains(t, err.Error(), "time_slot")
}

func TestUpdateAppointment_RescheduleExcludesSelf(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	id := primitive.NewObjectID()
	current := &types.Appointment{
		ID:            id,
		PatientID:     "patient-123",
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Duration:      30,
		Status:        types.AppointmentScheduled,
	}

	newSlot := "09:00"
	patch := &types.AppointmentPatch{TimeSlot: &newSlot}

	mockRepo.On("GetByID", mock.Anything, id.Hex()).Return(current, nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "09:00", id.Hex()).Return(nil, nil)
	mockRepo.On("Update", mock.Anything, id.Hex(), patch).Return(nil)

	_, err := service.Update(context.Background(), id.Hex(), patch)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateAppointment_RescheduleConflict(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	id := primitive.NewObjectID()
	current := &types.Appointment{
		ID:            id,
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Status:        types.AppointmentScheduled,
	}
	other := &types.Appointment{
		ID:            primitive.NewObjectID(),
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "09:00",
		Status:        types.AppointmentScheduled,
	}

	newSlot := "09:00"
	patch := &types.AppointmentPatch{TimeSlot: &newSlot}

	mockRepo.On("GetByID", mock.Anything, id.Hex()).Return(current, nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "09:00", id.Hex()).Return(other, nil)

	_, err := service.Update(context.Background(), id.Hex(), patch)

	assert.Error(t, err)
	assert.True(t, types.IsConflict(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAppointment_StatusOnlySkipsConflictCheck(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	id := primitive.NewObjectID()
	current := &types.Appointment{
		ID:            id,
		CarID:         "car-1",
		ScheduledDate: testDate("2025-01-10"),
		TimeSlot:      "08:00",
		Status:        types.AppointmentScheduled,
	}

	status := types.AppointmentCompleted
	patch := &types.AppointmentPatch{Status: &status}

	mockRepo.On("GetByID", mock.Anything, id.Hex()).Return(current, nil)
	mockRepo.On("Update", mock.Anything, id.Hex(), patch).Return(nil)

	_, err := service.Update(context.Background(), id.Hex(), patch)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "FindConflicting",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAppointment(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	id := primitive.NewObjectID().Hex()
	mockRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p *types.AppointmentPatch) bool {
		return p.Status != nil && *p.Status == types.AppointmentCancelled
	})).Return(nil)

	err := service.Cancel(context.Background(), id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestConfirmAppointment(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	id := primitive.NewObjectID()
	apt := &types.Appointment{
		ID:           id,
		CarID:        "car-1",
		Status:       types.AppointmentScheduled,
		Confirmation: types.Confirmation{Status: types.ConfirmationPending, Attempts: 2},
	}

	mockRepo.On("GetByID", mock.Anything, id.Hex()).Return(apt, nil)
	mockRepo.On("SetConfirmation", mock.Anything, id.Hex(), mock.MatchedBy(func(c types.Confirmation) bool {
		return c.Status == types.ConfirmationConfirmed && c.Attempts == 3 &&
			c.ConfirmedAt != nil && c.ConfirmedBy == "Maria" && c.Method == "whatsapp"
	})).Return(nil)

	result, err := service.Confirm(context.Background(), id.Hex(), &ConfirmRequest{
		ConfirmedBy: "Maria",
		Method:      "whatsapp",
	})

	assert.NoError(t, err)
	assert.Equal(t, types.ConfirmationConfirmed, result.Confirmation.Status)
	assert.Equal(t, types.AppointmentScheduled, result.Status)
	mockRepo.AssertExpectations(t)
}

func TestListAppointments_ClampsPaging(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f *types.AppointmentFilters) bool {
		return f.Limit == 50 && f.Skip == 0
	})).Return([]*types.Appointment{}, nil).Once()

	_, err := service.List(context.Background(), &types.AppointmentFilters{})
	assert.NoError(t, err)

	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f *types.AppointmentFilters) bool {
		return f.Limit == 200
	})).Return([]*types.Appointment{}, nil).Once()

	_, err = service.List(context.Background(), &types.AppointmentFilters{Limit: 1000})
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestCalendarView_GroupsByCar(t *testing.T) {
	service, mockRepo, _, mockCars := setupTestService()

	car1 := activeCar("CARRO 1")
	car2 := activeCar("CARRO 2")

	appointments := []*types.Appointment{
		{ID: primitive.NewObjectID(), CarID: car1.ID.Hex(), TimeSlot: "08:00"},
		{ID: primitive.NewObjectID(), CarID: car1.ID.Hex(), TimeSlot: "09:00"},
		{ID: primitive.NewObjectID(), CarID: car2.ID.Hex(), TimeSlot: "08:00"},
	}

	mockRepo.On("ListByDay", mock.Anything,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), []string(nil)).Return(appointments, nil)
	mockCars.On("ListActive", mock.Anything).Return([]*types.Car{car1, car2}, nil)

	view, err := service.CalendarView(context.Background(), testDate("2025-01-10"), nil)

	assert.NoError(t, err)
	assert.Equal(t, "2025-01-10", view.Date)
	assert.Equal(t, 3, view.TotalAppointments)
	assert.Len(t, view.Cars, 2)
	assert.Equal(t, 2, view.Cars[car1.ID.Hex()].Total)
	assert.Equal(t, 1, view.Cars[car2.ID.Hex()].Total)
	assert.Equal(t, 8, view.Cars[car1.ID.Hex()].Capacity)
}

func TestCalendarView_FiltersRequestedCars(t *testing.T) {
	service, mockRepo, _, mockCars := setupTestService()

	car1 := activeCar("CARRO 1")
	car2 := activeCar("CARRO 2")
	filter := []string{car1.ID.Hex()}

	appointments := []*types.Appointment{
		{ID: primitive.NewObjectID(), CarID: car1.ID.Hex(), TimeSlot: "08:00"},
	}

	mockRepo.On("ListByDay", mock.Anything,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), filter).Return(appointments, nil)
	mockCars.On("ListActive", mock.Anything).Return([]*types.Car{car1, car2}, nil)

	view, err := service.CalendarView(context.Background(), testDate("2025-01-10"), filter)

	assert.NoError(t, err)
	assert.Len(t, view.Cars, 1)
	assert.Contains(t, view.Cars, car1.ID.Hex())
	assert.NotContains(t, view.Cars, car2.ID.Hex())
}

func TestHasConflict(t *testing.T) {
	service, mockRepo, _, _ := setupTestService()

	dayStart, dayEnd := types.DayBounds(testDate("2025-01-10"))
	existing := &types.Appointment{ID: primitive.NewObjectID(), CarID: "car-1", TimeSlot: "08:00"}

	mockRepo.On("FindConflicting", mock.Anything, "car-1", dayStart, dayEnd, "08:00", "").Return(existing, nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1", dayStart, dayEnd, "10:00", "").Return(nil, nil)

	conflict, err := service.HasConflict(context.Background(), "car-1", testDate("2025-01-10"), "08:00", "")
	assert.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = service.HasConflict(context.Background(), "car-1", testDate("2025-01-10"), "10:00", "")
	assert.NoError(t, err)
	assert.False(t, conflict)
}
