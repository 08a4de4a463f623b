package analytics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/httpx"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// SetupRoutes configures HTTP routes for the analytics service
func (s *Service) SetupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/analytics").Subrouter()

	api.HandleFunc("/dashboard", s.dashboardHandler).Methods("GET")
	api.HandleFunc("/patients", s.patientAnalyticsHandler).Methods("GET")
	api.HandleFunc("/schedule", s.scheduleAnalyticsHandler).Methods("GET")
	api.HandleFunc("/confirmations", s.confirmationAnalyticsHandler).Methods("GET")

	s.logger.Info("Analytics routes configured")
}

// dashboardHandler serves the main dashboard KPIs
func (s *Service) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.Dashboard(r.Context(), time.Now())
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, metrics)
}

// patientAnalyticsHandler serves patient-base statistics
func (s *Service) patientAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.Patients(r.Context(), time.Now())
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, report)
}

// scheduleAnalyticsHandler serves schedule statistics for a date range
func (s *Service) scheduleAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := requiredDate(query.Get("date_from"), "date_from")
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}
	to, err := requiredDate(query.Get("date_to"), "date_to")
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	report, err := s.Schedule(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, report)
}

// confirmationAnalyticsHandler serves trailing-30-day confirmation statistics
func (s *Service) confirmationAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.Confirmations(r.Context(), time.Now())
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, report)
}

func requiredDate(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, types.NewValidationError(types.ErrCodeInvalidInput, name+" query parameter is required", nil)
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, types.NewValidationError(types.ErrCodeInvalidInput, name+" must be YYYY-MM-DD", nil)
	}
	return t, nil
}
