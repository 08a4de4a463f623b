// Package httpx holds the JSON response helpers shared by all HTTP handlers,
// including the mapping from the error taxonomy to HTTP status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, log *logger.Logger, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// WriteError writes an error response with the status code matching the
// error's type: validation 400, not found 404, conflict 409, store
// unavailability 503, anything else 500.
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	statusCode := StatusForError(err)

	response := map[string]interface{}{
		"error":  err.Error(),
		"status": statusCode,
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		response["error"] = appErr.Message
		response["code"] = appErr.Code
		if len(appErr.Details) > 0 {
			response["details"] = appErr.Details
		}
	}

	if statusCode >= 500 {
		log.Errorf("Request failed: %v", err)
	}

	WriteJSON(w, log, statusCode, response)
}

// StatusForError maps an error to its HTTP status code
func StatusForError(err error) int {
	switch {
	case types.IsValidation(err):
		return http.StatusBadRequest
	case types.IsNotFound(err):
		return http.StatusNotFound
	case types.IsConflict(err):
		return http.StatusConflict
	case types.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
