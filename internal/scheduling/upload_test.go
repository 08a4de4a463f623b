package scheduling

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

func TestImportCSV_Success(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	csv := strings.Join([]string{
		"patient_id,car_id,scheduled_date,time_slot,duration,exams",
		"patient-1,car-1,2025-01-10,08:00,30,Hemograma;Glicemia",
		"patient-2,car-1,2025-01-10,09:00,45,",
	}, "\n")

	mockPatients.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("string"), "").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*types.Appointment")).Return(nil)

	report, err := service.ImportCSV(context.Background(), "schedule.csv", strings.NewReader(csv))

	assert.NoError(t, err)
	assert.Equal(t, "schedule.csv", report.Filename)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.Processed)
	assert.Empty(t, report.Errors)
}

func TestImportCSV_RowErrorsDoNotAbort(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	csv := strings.Join([]string{
		"patient_id,car_id,scheduled_date,time_slot",
		"patient-1,car-1,not-a-date,08:00",
		"patient-2,car-1,2025-01-10,09:00",
	}, "\n")

	mockPatients.On("GetByID", mock.Anything, "patient-2").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "09:00", "").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*types.Appointment")).Return(nil)

	report, err := service.ImportCSV(context.Background(), "schedule.csv", strings.NewReader(csv))

	assert.NoError(t, err)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.Processed)
	assert.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "row 2")
	assert.Contains(t, report.Errors[0], "scheduled_date")
}

func TestImportCSV_ConflictReportedPerRow(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	csv := strings.Join([]string{
		"patient_id,car_id,scheduled_date,time_slot",
		"patient-1,car-1,2025-01-10,08:00",
	}, "\n")

	existing := &types.Appointment{CarID: "car-1", TimeSlot: "08:00"}

	mockPatients.On("GetByID", mock.Anything, "patient-1").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "08:00", "").Return(existing, nil)

	report, err := service.ImportCSV(context.Background(), "schedule.csv", strings.NewReader(csv))

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "row 2")
}

func TestImportCSV_RejectsNonCSV(t *testing.T) {
	service, _, _, _ := setupTestService()

	_, err := service.ImportCSV(context.Background(), "schedule.xlsx", strings.NewReader(""))

	assert.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestImportCSV_MissingColumn(t *testing.T) {
	service, _, _, _ := setupTestService()

	csv := "patient_id,scheduled_date,time_slot\npatient-1,2025-01-10,08:00\n"

	_, err := service.ImportCSV(context.Background(), "schedule.csv", strings.NewReader(csv))

	assert.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Contains(t, err.Error(), "car_id")
}

func TestImportCSV_DefaultDuration(t *testing.T) {
	service, mockRepo, mockPatients, mockCars := setupTestService()

	csv := strings.Join([]string{
		"patient_id,car_id,scheduled_date,time_slot",
		"patient-1,car-1,2025-01-10,08:00",
	}, "\n")

	mockPatients.On("GetByID", mock.Anything, "patient-1").Return(&types.Patient{}, nil)
	mockCars.On("GetByID", mock.Anything, "car-1").Return(activeCar("CARRO 1"), nil)
	mockRepo.On("FindConflicting", mock.Anything, "car-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "08:00", "").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(apt *types.Appointment) bool {
		return apt.Duration == defaultImportDuration
	})).Return(nil)

	report, err := service.ImportCSV(context.Background(), "schedule.csv", strings.NewReader(csv))

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	mockRepo.AssertExpectations(t)
}
