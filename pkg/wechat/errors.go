package wechat

import (
	"errors"
	"fmt"
)

var (
	// ErrWebhookURLEmpty indicates webhook URL is empty
	ErrWebhookURLEmpty = errors.New("wechat work webhook URL not configured")

	// ErrAPIError indicates WeChat Work API error
	ErrAPIError = errors.New("wechat work API error")

	// ErrHTTPStatusError indicates HTTP status code error
	ErrHTTPStatusError = errors.New("HTTP request failed")
)

// APIError represents WeChat Work API error type
type APIError struct {
	Code    int    `json:"errcode"`
	Message string `json:"errmsg"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("wechat work API error: %d %s", e.Code, e.Message)
}

// Is matches ErrAPIError
func (e *APIError) Is(target error) bool {
	return target == ErrAPIError
}

// Retryable reports whether the webhook asked us to back off. 45009 is the
// per-robot frequency limit.
func (e *APIError) Retryable() bool {
	return e.Code == 45009 || e.Code == -1
}

// HTTPError represents HTTP error type
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP request failed: %s, response: %s", e.Status, e.Body)
}

// Is matches ErrHTTPStatusError
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTPStatusError
}

// RetryError represents retry error type
type RetryError struct {
	Attempts int
	LastErr  error
}

// Error implements the error interface
func (e *RetryError) Error() string {
	return fmt.Sprintf("failed to send wechat work message after %d attempts: %v", e.Attempts, e.LastErr)
}

// Unwrap supports errors.Unwrap
func (e *RetryError) Unwrap() error {
	return e.LastErr
}

// isRetryable reports whether err is worth another attempt
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	return !errors.Is(err, ErrWebhookURLEmpty)
}
