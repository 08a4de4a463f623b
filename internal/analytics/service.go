package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/interfaces"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// trailingWindow is the lookback used by the dashboard and confirmation reports
const trailingWindow = 30 * 24 * time.Hour

const topNeighborhoodLimit = 10

// Service implements the read-only reporting aggregations
type Service struct {
	repo   interfaces.AnalyticsRepository
	logger *logger.Logger
}

// NewService creates a new analytics service
func NewService(repo interfaces.AnalyticsRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Dashboard computes the main KPIs as of now: today's appointment count, the
// trailing-30-day confirmation rate as a percentage, the active car count,
// and the mean duration of completed collections
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*types.DashboardMetrics, error) {
	today, tomorrow := types.DayBounds(now)

	visitsToday, err := s.repo.CountAppointmentsBetween(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.ListAppointmentsSince(ctx, today.Add(-trailingWindow))
	if err != nil {
		return nil, err
	}

	confirmed := 0
	completedCount := 0
	var completedMinutes int
	for _, apt := range recent {
		if apt.Confirmation.Status == types.ConfirmationConfirmed {
			confirmed++
		}
		if apt.Status == types.AppointmentCompleted {
			completedCount++
			completedMinutes += apt.Duration
		}
	}

	confirmationRate := 0.0
	if len(recent) > 0 {
		confirmationRate = round1(float64(confirmed) / float64(len(recent)) * 100)
	}

	averageTime := 0.0
	if completedCount > 0 {
		averageTime = math.Round(float64(completedMinutes) / float64(completedCount))
	}

	activeCars, err := s.repo.CountActiveCars(ctx)
	if err != nil {
		return nil, err
	}

	return &types.DashboardMetrics{
		VisitsToday:      visitsToday,
		ConfirmationRate: confirmationRate,
		ActiveCars:       activeCars,
		AverageTime:      averageTime,
	}, nil
}

// Patients aggregates patient-base statistics: active patient count, patients
// registered since the start of the current month, risk distribution, and the
// top neighborhoods
func (s *Service) Patients(ctx context.Context, now time.Time) (*types.PatientAnalyticsReport, error) {
	total, err := s.repo.CountPatientsByStatus(ctx, types.PatientStatusActive)
	if err != nil {
		return nil, err
	}

	u := now.UTC()
	monthStart := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	newThisMonth, err := s.repo.CountPatientsCreatedSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	risk, err := s.repo.RiskDistribution(ctx)
	if err != nil {
		return nil, err
	}

	neighborhoods, err := s.repo.TopNeighborhoods(ctx, topNeighborhoodLimit)
	if err != nil {
		return nil, err
	}

	return &types.PatientAnalyticsReport{
		TotalPatients:        total,
		NewPatientsThisMonth: newThisMonth,
		RiskDistribution:     risk,
		TopNeighborhoods:     neighborhoods,
	}, nil
}

// Schedule aggregates scheduling statistics over an inclusive day range:
// status distribution, per-car utilization against capacity, and the
// hour-of-day slot distribution
func (s *Service) Schedule(ctx context.Context, from, to time.Time) (*types.ScheduleAnalyticsReport, error) {
	fromStart, _ := types.DayBounds(from)
	toStart, toEnd := types.DayBounds(to)

	if toStart.Before(fromStart) {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "date_from must not be after date_to", nil)
	}

	appointments, err := s.repo.ListAppointmentsBetween(ctx, fromStart, toEnd)
	if err != nil {
		return nil, err
	}

	statusDist := make(map[string]int)
	for _, apt := range appointments {
		statusDist[string(apt.Status)]++
	}

	cars, err := s.repo.ListActiveCars(ctx)
	if err != nil {
		return nil, err
	}

	days := int(toStart.Sub(fromStart).Hours()/24) + 1

	utilization := make(map[string]types.CarUtilization, len(cars))
	for _, car := range cars {
		carID := car.ID.Hex()
		count := 0
		for _, apt := range appointments {
			if apt.CarID == carID {
				count++
			}
		}

		capacity := car.Capacity * days
		rate := 0.0
		if capacity > 0 {
			rate = round1(float64(count) / float64(capacity) * 100)
		}

		utilization[car.Name] = types.CarUtilization{
			Appointments:    count,
			Capacity:        capacity,
			UtilizationRate: rate,
		}
	}

	slotCounts := make(map[string]int)
	for _, apt := range appointments {
		hour := strings.SplitN(apt.TimeSlot, ":", 2)[0]
		slotCounts[fmt.Sprintf("%s:00", hour)]++
	}

	slots := make([]types.SlotCount, 0, len(slotCounts))
	for slot, count := range slotCounts {
		slots = append(slots, types.SlotCount{Slot: slot, Count: count})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })

	return &types.ScheduleAnalyticsReport{
		DateRange: types.DateRange{
			From: fromStart.Format("2006-01-02"),
			To:   toStart.Format("2006-01-02"),
		},
		TotalAppointments:    len(appointments),
		StatusDistribution:   statusDist,
		CarUtilization:       utilization,
		TimeSlotDistribution: slots,
	}, nil
}

// Confirmations aggregates trailing-30-day confirmation statistics by method
// and by hour of day
func (s *Service) Confirmations(ctx context.Context, now time.Time) (*types.ConfirmationAnalyticsReport, error) {
	since := now.UTC().Add(-trailingWindow)

	byMethod, err := s.repo.ConfirmationsByMethod(ctx, since)
	if err != nil {
		return nil, err
	}

	byHour, err := s.repo.ConfirmationsByHour(ctx, since)
	if err != nil {
		return nil, err
	}

	return &types.ConfirmationAnalyticsReport{
		ConfirmationByMethod: byMethod,
		ConfirmationByHour:   byHour,
	}, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
