package analysis

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidConfig marks a report configuration that cannot run
	ErrInvalidConfig = errors.New("invalid report configuration")

	// ErrInvalidDateRange marks unparsable or inverted date bounds
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrSourceFetch marks a failed provider call
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrAlreadyMerged is returned when a fetch result is merged twice
	ErrAlreadyMerged = errors.New("fetch result already merged")
)

// ConfigError reports a missing or invalid identifier required before any fetch
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error [%s]: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error [%s]: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

// NewConfigError creates a configuration error
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// SourceFetchError wraps a failed AnalyticsSource or AdsSource call
type SourceFetchError struct {
	Source   string
	Section  string
	Critical bool
	Err      error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch %s/%s failed: %v", e.Source, e.Section, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrSourceFetch) match any SourceFetchError
func (e *SourceFetchError) Is(target error) bool {
	return target == ErrSourceFetch
}

// NewSourceFetchError creates a source fetch error
func NewSourceFetchError(source, section string, critical bool, err error) *SourceFetchError {
	return &SourceFetchError{
		Source:   source,
		Section:  section,
		Critical: critical,
		Err:      err,
	}
}

// ValidationError reports an invalid input value
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s=%v]: %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDateRange
}

// NewValidationError creates a validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsCritical reports whether err came from a fetch the report cannot do without
func IsCritical(err error) bool {
	var fetchErr *SourceFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Critical
	}
	return err != nil
}

func wrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return fmt.Errorf("%s: %w", message, err)
}
