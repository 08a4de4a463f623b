package patients

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/httpx"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// SetupRoutes configures HTTP routes for the patient service
func (s *Service) SetupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/patients").Subrouter()

	api.HandleFunc("", s.listPatientsHandler).Methods("GET")
	api.HandleFunc("", s.createPatientHandler).Methods("POST")
	api.HandleFunc("/{id}", s.getPatientHandler).Methods("GET")
	api.HandleFunc("/{id}", s.updatePatientHandler).Methods("PUT")
	api.HandleFunc("/{id}", s.deletePatientHandler).Methods("DELETE")
	api.HandleFunc("/{id}/history", s.patientHistoryHandler).Methods("GET")
	api.HandleFunc("/{id}/confirm", s.addConfirmationAttemptHandler).Methods("POST")

	s.logger.Info("Patient routes configured")
}

// createPatientHandler handles patient registration
func (s *Service) createPatientHandler(w http.ResponseWriter, r *http.Request) {
	var patient types.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	created, err := s.Create(r.Context(), &patient)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusCreated, created)
}

// getPatientHandler handles patient retrieval
func (s *Service) getPatientHandler(w http.ResponseWriter, r *http.Request) {
	patient, err := s.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, patient)
}

// updatePatientHandler handles partial patient updates
func (s *Service) updatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var patch types.PatientPatch
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

// deletePatientHandler handles patient deactivation (soft delete)
func (s *Service) deletePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, map[string]string{
		"message":    "Patient deactivated",
		"patient_id": id,
	})
}

// patientHistoryHandler handles the collection-history projection
func (s *Service) patientHistoryHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, report)
}

// addConfirmationAttemptHandler records one confirmation contact attempt
func (s *Service) addConfirmationAttemptHandler(w http.ResponseWriter, r *http.Request) {
	var attempt types.ConfirmationAttempt
	if err := json.NewDecoder(r.Body).Decode(&attempt); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	patient, err := s.AddConfirmationAttempt(r.Context(), mux.Vars(r)["id"], attempt)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, map[string]interface{}{
		"message":           "Confirmation attempt recorded",
		"patient_id":        patient.ID.Hex(),
		"confirmation_rate": patient.ConfirmationRate,
	})
}

// listPatientsHandler handles filtered patient listing
func (s *Service) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	filters, err := parsePatientFilters(r)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	patients, err := s.List(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	if patients == nil {
		patients = []*types.Patient{}
	}
	httpx.WriteJSON(w, s.logger, http.StatusOK, patients)
}

// parsePatientFilters extracts listing filters from the query string
func parsePatientFilters(r *http.Request) (*types.PatientFilters, error) {
	query := r.URL.Query()
	filters := &types.PatientFilters{
		Search:       query.Get("search"),
		Status:       types.PatientStatus(query.Get("status")),
		Neighborhood: query.Get("neighborhood"),
		RiskScore:    types.RiskScore(query.Get("risk_score")),
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
