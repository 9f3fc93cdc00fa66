package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/pkg/contracts/domain"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusNotFound, "NOT_FOUND", "thing not found")
	assert.Equal(t, "thing not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestAppError_WrappingAndContext(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("failed to write export", cause).
		WithContext("path", "/data/exports/out.csv")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "/data/exports/out.csv", err.Context["path"])
}

func TestProblemDetails_MarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "bad input", "/api/prices").
		WithExtension("error_code", "VALIDATION_FAILED")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeValidation, got["type"])
	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
	assert.Equal(t, "VALIDATION_FAILED", got["error_code"])
}

func newTestHandler() *ErrorHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewErrorHandler(logger, false)
}

func TestErrorToProblem_DomainErrors(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "schema error",
			err:        domain.NewSchemaError([]string{"state_avg", "date"}),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeSchemaInvalid,
		},
		{
			name:       "empty series",
			err:        fmt.Errorf("latest snapshot: %w", domain.ErrEmptySeries),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptySeries,
		},
		{
			name:       "api error passthrough",
			err:        ErrOperationNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeOperationNotFound,
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			problem := h.ErrorToProblem(tt.err, r)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/test", problem.Instance)
		})
	}
}

func TestHandleError_RendersProblemJSON(t *testing.T) {
	h := newTestHandler()

	r := httptest.NewRequest(http.MethodGet, "/api/prices/latest", nil)
	w := httptest.NewRecorder()
	h.HandleError(w, r, fmt.Errorf("latest snapshot: %w", domain.ErrEmptySeries))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, TypeEmptySeries, got["type"])
}

func TestMiddleware_RecoversFromPanic(t *testing.T) {
	h := newTestHandler()

	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/prices", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
