package cars

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/httpx"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// SetupRoutes configures HTTP routes for the car service
func (s *Service) SetupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/cars").Subrouter()

	api.HandleFunc("", s.listCarsHandler).Methods("GET")
	api.HandleFunc("", s.createCarHandler).Methods("POST")
	api.HandleFunc("/{id}", s.getCarHandler).Methods("GET")
	api.HandleFunc("/{id}", s.updateCarHandler).Methods("PUT")
	api.HandleFunc("/{id}", s.disableCarHandler).Methods("DELETE")

	s.logger.Info("Car routes configured")
}

// createCarHandler handles car registration
func (s *Service) createCarHandler(w http.ResponseWriter, r *http.Request) {
	var car types.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		httpx.WriteError(w, s.logger, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	created, err := s.Create(r.Context(), &car)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusCreated, created)
}

// getCarHandler handles car retrieval
func (s *Service) getCarHandler(w http.ResponseWriter, r *http.Request) {
	car, err := s.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, car)
}

// updateCarHandler handles partial car updates
func (s *Service) updateCarHandler(w http.ResponseWriter, r *http.Request) {
	var patch types.CarPatch
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

// disableCarHandler handles car deactivation (soft delete)
func (s *Service) disableCarHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Disable(r.Context(), id); err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	httpx.WriteJSON(w, s.logger, http.StatusOK, map[string]string{
		"message": "Car disabled",
		"car_id":  id,
	})
}

// listCarsHandler handles filtered car listing
func (s *Service) listCarsHandler(w http.ResponseWriter, r *http.Request) {
	filters, err := parseCarFilters(r)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	cars, err := s.List(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, s.logger, err)
		return
	}

	if cars == nil {
		cars = []*types.Car{}
	}
	httpx.WriteJSON(w, s.logger, http.StatusOK, cars)
}

// parseCarFilters extracts listing filters from the query string
func parseCarFilters(r *http.Request) (*types.CarFilters, error) {
	query := r.URL.Query()
	filters := &types.CarFilters{Zone: query.Get("zone")}

	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "active must be true or false", nil)
		}
		filters.Active = &active
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
