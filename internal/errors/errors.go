package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one invalid request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeUnknownSelection  = "UNKNOWN_SELECTION"
	CodeNotFound          = "NOT_FOUND"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeDataLoadFailed    = "DATA_LOAD_FAILED"
	CodeDataNotLoaded     = "DATA_NOT_LOADED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
	CodeServiceDown       = "SERVICE_UNAVAILABLE"
)

// Predefined errors
var (
	ErrInvalidRequest     = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed   = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrNotFound           = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrRateLimitExceeded  = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")
	ErrInternalServer     = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
	ErrDataNotLoaded      = New(http.StatusServiceUnavailable, CodeDataNotLoaded, "Dataset is not loaded")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceDown, "Service temporarily unavailable")
)

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// UnknownSelection reports selection values that are not in the dataset
func UnknownSelection(dimension string, values []string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeUnknownSelection,
		fmt.Sprintf("Unknown %s: %s", dimension, strings.Join(values, ", ")),
		ValidationError{Field: dimension, Message: "value not present in dataset"})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// UnsupportedFormat reports an unknown export or chart format
func UnsupportedFormat(format string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeUnsupportedFormat,
		fmt.Sprintf("Format %q is not supported", format), format)
}

// DataLoadFailed wraps a dataset load failure
func DataLoadFailed(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeDataLoadFailed, "Dataset could not be loaded", err.Error())
}

// RenderFailed wraps a chart or export rendering failure
func RenderFailed(what string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeRenderFailed, fmt.Sprintf("Failed to render %s", what), err.Error())
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errs},
	)
}

// WriteError writes an error response without going through chi/render
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(err))
}
