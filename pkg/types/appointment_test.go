package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidTimeSlot(t *testing.T) {
	valid := []string{"00:00", "07:30", "08:00", "12:45", "23:59"}
	for _, slot := range valid {
		assert.True(t, ValidTimeSlot(slot), slot)
	}

	invalid := []string{"", "8:00", "24:00", "12:60", "12h00", "12:00:00", "noon"}
	for _, slot := range invalid {
		assert.False(t, ValidTimeSlot(slot), slot)
	}
}

func TestAppointmentValidate(t *testing.T) {
	base := func() *Appointment {
		return &Appointment{
			PatientID:     "patient-1",
			CarID:         "car-1",
			ScheduledDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			TimeSlot:      "08:00",
			Duration:      30,
			Status:        AppointmentScheduled,
		}
	}

	assert.NoError(t, base().Validate())

	apt := base()
	apt.PatientID = ""
	assert.True(t, IsValidation(apt.Validate()))

	apt = base()
	apt.Duration = 10
	assert.True(t, IsValidation(apt.Validate()))

	apt = base()
	apt.Duration = 180
	assert.True(t, IsValidation(apt.Validate()))

	apt = base()
	apt.TimeSlot = "early morning"
	assert.True(t, IsValidation(apt.Validate()))

	apt = base()
	apt.Status = "done"
	assert.True(t, IsValidation(apt.Validate()))
}

func TestAppointmentApplyDefaults(t *testing.T) {
	apt := &Appointment{}
	apt.ApplyDefaults()

	assert.Equal(t, AppointmentScheduled, apt.Status)
	assert.Equal(t, ConfirmationPending, apt.Confirmation.Status)

	apt = &Appointment{Status: AppointmentInProgress}
	apt.ApplyDefaults()
	assert.Equal(t, AppointmentInProgress, apt.Status)
}

func TestAppointmentPatch_TouchesSlot(t *testing.T) {
	slot := "09:00"
	car := "car-2"
	date := time.Now()
	duration := 45

	assert.True(t, (&AppointmentPatch{TimeSlot: &slot}).TouchesSlot())
	assert.True(t, (&AppointmentPatch{CarID: &car}).TouchesSlot())
	assert.True(t, (&AppointmentPatch{ScheduledDate: &date}).TouchesSlot())
	assert.False(t, (&AppointmentPatch{Duration: &duration}).TouchesSlot())
	assert.False(t, (&AppointmentPatch{}).TouchesSlot())
}

func TestAppointmentPatch_Validate(t *testing.T) {
	bad := "8am"
	assert.True(t, IsValidation((&AppointmentPatch{TimeSlot: &bad}).Validate()))

	short := 5
	assert.True(t, IsValidation((&AppointmentPatch{Duration: &short}).Validate()))

	empty := ""
	assert.True(t, IsValidation((&AppointmentPatch{CarID: &empty}).Validate()))

	good := "09:30"
	assert.NoError(t, (&AppointmentPatch{TimeSlot: &good}).Validate())
	assert.NoError(t, (&AppointmentPatch{}).Validate())
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	local := time.Date(2025, 1, 9, 22, 30, 0, 0, loc) // 01:30 UTC on Jan 10

	start, end := DayBounds(local)

	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), end)
}

func TestInactiveStatuses(t *testing.T) {
	assert.ElementsMatch(t, []string{"cancelled", "no_show"}, InactiveStatuses())
}
