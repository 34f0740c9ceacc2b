package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"adreport/pkg/response"
	"adreport/pkg/scheduler"
	"adreport/pkg/tasks"

	"github.com/gin-gonic/gin"
)

// Common error type definitions
var (
	// ErrInvalidParam indicates invalid parameter error
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrServiceUnavailable indicates service unavailable error
	ErrServiceUnavailable = errors.New("service unavailable")
)

// APIError represents a custom API error structure
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API Error (Code: %d, Message: %s): %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("API Error (Code: %d, Message: %s)", e.Code, e.Message)
}

// Unwrap supports error wrapping
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, err error) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string, err error) *APIError {
	return &APIError{Code: http.StatusServiceUnavailable, Message: message, Err: err}
}

// HandleError maps domain errors onto HTTP status codes
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		response.Error(c, apiErr.Code, apiErr.Message, apiErr.Err)
		return
	}

	switch {
	case errors.Is(err, ErrInvalidParam), errors.Is(err, tasks.ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, tasks.ErrRunInProgress):
		response.Error(c, http.StatusConflict, "A report run is already in progress", err)
	case errors.Is(err, tasks.ErrNoReport):
		response.Error(c, http.StatusNotFound, "No report has been generated yet", err)
	case errors.Is(err, tasks.ErrRunNotFound), errors.Is(err, scheduler.ErrJobNotFound):
		response.Error(c, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, ErrServiceUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "Service unavailable", err)
	default:
		// unknown errors stay opaque
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
