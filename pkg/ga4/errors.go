package ga4

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	ErrMissingProperty = errors.New("ga4: property id is required")
	ErrRateLimited     = errors.New("ga4: rate limit exceeded")
	ErrUnauthorized    = errors.New("ga4: request not authorized")
)

// APIError is a non-2xx response from the Data API
type APIError struct {
	HTTPCode int
	Status   string // google.rpc status, e.g. RESOURCE_EXHAUSTED
	Message  string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("ga4 api error: %d %s - %s", e.HTTPCode, e.Status, e.Message)
	}
	return fmt.Sprintf("ga4 api error: %d - %s", e.HTTPCode, e.Message)
}

// Is maps HTTP codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.HTTPCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.HTTPCode == http.StatusUnauthorized || e.HTTPCode == http.StatusForbidden
	}
	return false
}

// IsRetryable reports whether the request may succeed when repeated
func (e *APIError) IsRetryable() bool {
	return e.HTTPCode == http.StatusTooManyRequests || (e.HTTPCode >= 500 && e.HTTPCode < 600)
}

// IsRetryableError reports whether err is worth retrying
func IsRetryableError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}

// toAPIError converts a googleapi error into an APIError. Other errors pass
// through unchanged.
func toAPIError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return err
	}
	e := &APIError{HTTPCode: gErr.Code, Message: gErr.Message}

	// googleapi drops the rpc status; read it back from the raw envelope
	var envelope struct {
		Error struct {
			Status string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(gErr.Body), &envelope) == nil {
		e.Status = envelope.Error.Status
	}
	if e.Status == "" && len(gErr.Errors) > 0 {
		e.Status = gErr.Errors[0].Reason
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(gErr.Body)
	}
	return e
}
