package scheduling

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/httpx"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// SetupRoutes configures HTTP routes for the scheduling service
func (s *Service) SetupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/schedule").Subrouter()

	api.HandleFunc("", s.listAppointmentsHandler).Methods("GET")
	api.HandleFunc("", s.createAppointmentHandler).Methods("POST")
	api.HandleFunc("/calendar", s.calendarViewHandler).Methods("GET")
	api.HandleFunc("/upload", s.uploadScheduleHandler).Methods("POST")
	api.HandleFunc("/{id}", s.getAppointmentHandler).Methods("GET")
	api.HandleFunc("/{id}", s.updateAppointmentHandler).Methods("PUT")
	api.HandleFunc("/{id}", s.cancelAppointmentHandler).Methods("DELETE")
	api.HandleFunc("/{id}/confirm", s.confirmAppointmentHandler).Methods("POST")

	s.logger.Info("Scheduling routes configured")
}

// createAppointmentHandler handles appointment creation
func (s *Service) createAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var apt types.Appointment
	if err := json.NewDecoder(r.Body).Decode(&apt); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	created, err := s.Create(r.Context(), &apt)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusCreated, created)
}

// getAppointmentHandler handles appointment retrieval
func (s *Service) getAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	apt, err := s.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, apt)
}

// updateAppointmentHandler handles partial appointment updates, including
// conflict-checked reschedules
func (s *Service) updateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var patch types.AppointmentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	updated, err := s.Update(r.Context(), mux.Vars(r)["id"], &patch)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, updated)
}

// cancelAppointmentHandler handles appointment cancellation (soft delete)
func (s *Service) cancelAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Cancel(r.Context(), id); err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, map[string]string{
		"message":        "Appointment cancelled",
		"appointment_id": id,
	})
}

// confirmAppointmentHandler handles appointment confirmation
func (s *Service) confirmAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := s.Confirm(r.Context(), id, &req); err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, map[string]string{
		"message":        "Appointment confirmed",
		"appointment_id": id,
	})
}

// listAppointmentsHandler handles filtered appointment listing
func (s *Service) listAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	filters, err := parseAppointmentFilters(r)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	appointments, err := s.List(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	if appointments == nil {
		appointments = []*types.Appointment{}
	}
	httpx.WriteJSON(w, s.logger, http.StatusOK, appointments)
}

// calendarViewHandler handles the per-day calendar grouping
func (s *Service) calendarViewHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawDate := query.Get("date")
	if rawDate == "" {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "date query parameter is required", nil))
		return
	}
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "date must be YYYY-MM-DD", nil))
		return
	}

	var carIDs []string
	for _, raw := range query["car_ids"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				carIDs = append(carIDs, id)
			}
		}
	}

	view, err := s.CalendarView(r.Context(), date, carIDs)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, view)
}

// uploadScheduleHandler handles bulk CSV schedule imports
func (s *Service) uploadScheduleHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.api.MaxUploadSize)

	if err := r.ParseMultipartForm(s.api.MaxUploadSize); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid multipart form", map[string]interface{}{
			"cause": err.Error(),
		}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "file field is required", nil))
		return
	}
	defer file.Close()

	report, err := s.ImportCSV(r.Context(), header.Filename, file)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, report)
}

// parseAppointmentFilters extracts listing filters from the query string
func parseAppointmentFilters(r *http.Request) (*types.AppointmentFilters, error) {
	query := r.URL.Query()
	filters := &types.AppointmentFilters{
		CarID:  query.Get("car_id"),
		Status: types.AppointmentStatus(query.Get("status")),
	}

	if raw := query.Get("date_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "date_from must be YYYY-MM-DD", nil)
		}
		filters.DateFrom = &t
	}

	if raw := query.Get("date_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "date_to must be YYYY-MM-DD", nil)
		}
		filters.DateTo = &t
	}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "skip must be a non-negative integer", nil)
		}
		filters.Skip = skip
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "limit must be a positive integer", nil)
		}
		filters.Limit = limit
	}

	return filters, nil
}
