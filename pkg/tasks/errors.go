package tasks

import "errors"

var (
	// ErrRunInProgress is returned when a run is requested while another one is still going
	ErrRunInProgress = errors.New("report run already in progress")

	// ErrRunNotFound indicates an unknown run id
	ErrRunNotFound = errors.New("run not found")

	// ErrNoReport indicates no run has completed yet
	ErrNoReport = errors.New("no report available")

	// ErrInvalidRequest indicates a malformed run request
	ErrInvalidRequest = errors.New("invalid run request")

	// ErrUnsupportedDriver indicates a source driver the factory cannot build
	ErrUnsupportedDriver = errors.New("unsupported source driver")

	// ErrNotificationFailed indicates notification delivery failed
	ErrNotificationFailed = errors.New("notification delivery failed")
)
