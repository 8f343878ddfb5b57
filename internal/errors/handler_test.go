package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/internal/shared/testutil"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)
	assert.True(t, handler.includeStack)
	assert.NotNil(t, handler.logger)

	assert.NotNil(t, NewErrorHandler(nil, false).logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
		wantExt    map[string]any
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error",
			err:        ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeInvalidRequest,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", UnsupportedFormat("pdf")),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantCode:   CodeUnsupportedFormat,
		},
		{
			name:       "data load error",
			err:        &dataprocessing.DataLoadError{Source: "/data.csv", Row: 3, Column: "Mean", Err: errors.New(`non-numeric value "x"`)},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataLoad,
			wantCode:   CodeDataLoadFailed,
			wantExt:    map[string]any{"row": float64(3), "column": "Mean"},
		},
		{
			name:       "unknown selection",
			err:        &dataprocessing.UnknownSelectionError{Dimension: "group", Values: []string{"Z"}},
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeUnknownSelection,
		},
		{
			name:       "missing data",
			err:        &dataprocessing.MissingDataError{Group: "A", Measure: "Accuracy", Day: domain.Day2},
			wantStatus: http.StatusNotFound,
			wantType:   TypeDataMissing,
			wantExt:    map[string]any{"group": "A", "measure": "Accuracy", "day": "Day 2"},
		},
		{
			name:       "app storage error",
			err:        NewStorageError("write export", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "app render error hides detail",
			err:        NewRenderError("chart", errors.New("chrome crashed")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeRenderFailed,
		},
		{
			name:       "plain error",
			err:        errors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
			w := httptest.NewRecorder()

			handler.HandleError(w, req, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/v1/summary", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			for k, v := range tt.wantExt {
				assert.Equal(t, v, body[k], k)
			}
			assert.NotContains(t, body, "stack")
			assert.NotContains(t, w.Body.String(), "chrome crashed")

			level := slog.LevelWarn
			if tt.wantStatus >= 500 {
				level = slog.LevelError
			}
			testutil.AssertLogContains(t, logs, level, "request failed")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()

	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	handler := NewErrorHandler(nil, true)
	w := httptest.NewRecorder()

	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	w := httptest.NewRecorder()

	handler.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/chart", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "nil map")
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/v1/summary", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "DELETE")
}
