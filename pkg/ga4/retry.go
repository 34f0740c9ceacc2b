package ga4

import (
	"math"
	"math/rand"
	"time"
)

// RetryHandler decides whether and when to repeat a failed call
type RetryHandler struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryHandler creates a retry handler with exponential backoff
func NewRetryHandler(maxRetries int, baseDelay, maxDelay time.Duration) *RetryHandler {
	return &RetryHandler{maxRetries: maxRetries, baseDelay: baseDelay, maxDelay: maxDelay}
}

// ShouldRetry determines if retry should be attempted
func (rh *RetryHandler) ShouldRetry(err error, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return IsRetryableError(err)
}

// Delay returns the backoff before the given retry attempt, with 0.85-1.15x jitter
func (rh *RetryHandler) Delay(attempt int) time.Duration {
	delay := time.Duration(float64(rh.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > rh.maxDelay {
		delay = rh.maxDelay
	}
	jitter := rand.Float64()*0.3 + 0.85
	return time.Duration(float64(delay) * jitter)
}
