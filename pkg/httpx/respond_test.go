package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

func TestStatusForError(t *testing.T) {
	cases := map[error]int{
		types.NewValidationError(types.ErrCodeInvalidInput, "bad", nil): http.StatusBadRequest,
		types.NewNotFoundError(types.ErrCodeNotFound, "missing"):        http.StatusNotFound,
		types.NewConflictError(types.ErrCodeSlotOccupied, "taken"):      http.StatusConflict,
		types.NewStoreError(types.ErrCodeStoreUnavailable, "down", nil): http.StatusServiceUnavailable,
		types.NewInternalError(types.ErrCodeInternalError, "boom", nil): http.StatusInternalServerError,
		errors.New("plain"):                                             http.StatusInternalServerError,
	}

	for err, want := range cases {
		assert.Equal(t, want, StatusForError(err), err.Error())
	}
}

func TestWriteError_AppError(t *testing.T) {
	log := logger.New("error")
	recorder := httptest.NewRecorder()

	WriteError(recorder, log, types.NewConflictError(types.ErrCodeSlotOccupied,
		"car car-1 already has an appointment at 08:00 on 2025-01-10"))

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "SLOT_OCCUPIED", body["code"])
	assert.Contains(t, body["error"], "already has an appointment")
	assert.Equal(t, float64(http.StatusConflict), body["status"])
}

func TestWriteError_PlainError(t *testing.T) {
	log := logger.New("error")
	recorder := httptest.NewRecorder()

	WriteError(recorder, log, errors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "something broke", body["error"])
	assert.NotContains(t, body, "code")
}

func TestWriteJSON(t *testing.T) {
	log := logger.New("error")
	recorder := httptest.NewRecorder()

	WriteJSON(recorder, log, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"id":"abc"}`, recorder.Body.String())
}
