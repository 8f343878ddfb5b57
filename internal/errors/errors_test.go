package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", ErrValidation("measure", "too long"), http.StatusBadRequest, CodeValidationFailed, "Request validation failed"},
		{"unknown selection", UnknownSelection("measure", []string{"Speed", "Power"}), http.StatusBadRequest, CodeUnknownSelection, "Unknown measure: Speed, Power"},
		{"not found", NotFoundError("source"), http.StatusNotFound, CodeNotFound, "source not found"},
		{"unsupported format", UnsupportedFormat("pdf"), http.StatusNotFound, CodeUnsupportedFormat, `Format "pdf" is not supported`},
		{"data load", DataLoadFailed(errors.New("bad row")), http.StatusUnprocessableEntity, CodeDataLoadFailed, "Dataset could not be loaded"},
		{"render", RenderFailed("chart", errors.New("x")), http.StatusInternalServerError, CodeRenderFailed, "Failed to render chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, ErrRateLimitExceeded)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, CodeRateLimitExceeded, resp.Error.ErrorCode)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "measure", Message: "required"}})

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 1)
}

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write export", cause).WithContext("path", "/tmp/x.csv")

	assert.Equal(t, "[STORAGE] write export: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "/tmp/x.csv", err.Context["path"])

	assert.Equal(t, "[CONFIG] bad port", NewConfigError("bad port", nil).Error())
}

func TestProblemDetailsMarshal(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/x").
		WithExtension("error_code", CodeValidationFailed).
		WithExtension("status", 999)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(400), body["status"], "standard members win over extensions")
	assert.Equal(t, CodeValidationFailed, body["error_code"])
	assert.NotContains(t, body, "detail")
}
