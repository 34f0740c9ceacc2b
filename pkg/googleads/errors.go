package googleads

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingCustomer       = errors.New("googleads: customer id is required")
	ErrMissingDeveloperToken = errors.New("googleads: developer token is required")
	ErrRateLimited           = errors.New("googleads: rate limit exceeded")
)

// APIError is a non-2xx response from the Google Ads API
type APIError struct {
	HTTPCode int
	Status   string
	Message  string
	Query    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("googleads api error: %d %s - %s", e.HTTPCode, e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.HTTPCode == http.StatusTooManyRequests
}

// IsRetryable reports whether the request may succeed when repeated.
// A 400 means the query itself is wrong and only a fallback query can help.
func (e *APIError) IsRetryable() bool {
	return e.HTTPCode == http.StatusTooManyRequests || (e.HTTPCode >= 500 && e.HTTPCode < 600)
}

func isRetryableError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsRetryable()
}
