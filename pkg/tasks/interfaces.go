package tasks

import (
	"context"
	"time"

	"adreport/pkg/analysis"
)

// ReportAssembler builds the report tree for a date range
type ReportAssembler interface {
	Assemble(ctx context.Context, start, end string) (*analysis.Report, error)
}

// ReportNotifier pushes a finished report to chat channels
type ReportNotifier interface {
	Notify(ctx context.Context, r *analysis.Report, link string) error
	Len() int
}

// RunObserver receives the outcome of every run, typically for metrics
type RunObserver interface {
	ObserveRun(report *analysis.Report, elapsed time.Duration, err error)
}

// TaskManager is what the HTTP handlers and the scheduler drive
type TaskManager interface {
	// Run executes a report synchronously
	Run(ctx context.Context, req RunRequest) (*Run, error)

	// Trigger starts a report in the background
	Trigger(ctx context.Context, req RunRequest) (*Run, error)

	// GetRun returns a run by id
	GetRun(id string) (*Run, error)

	// GetHistory returns finished runs, oldest first
	GetHistory() []*Run

	// Latest returns the last successful report and its HTML
	Latest() (*analysis.Report, []byte, error)

	// IsRunning reports whether a run is in progress
	IsRunning() bool
}
