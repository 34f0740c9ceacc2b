package clickhouse

import (
	"errors"
	"fmt"
)

// Sentinel errors for common ClickHouse operations
var (
	// ErrConnectionFailed indicates a connection failure
	ErrConnectionFailed = errors.New("clickhouse connection failed")

	// ErrInvalidTableName indicates an invalid table name
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrUnknownField indicates a requested dimension or metric has no column
	ErrUnknownField = errors.New("unknown report field")
)

// ErrorWrapper wraps errors with additional context
type ErrorWrapper struct {
	Operation string
	Table     string
	Err       error
}

// Error implements the error interface
func (e *ErrorWrapper) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s failed for table '%s': %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error
func (e *ErrorWrapper) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation and table context
func WrapError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrorWrapper{Operation: operation, Table: table, Err: err}
}

// WrapConnectionError wraps a connection-related error
func WrapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}

// IsConnectionError checks if the error is a connection-related error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}
