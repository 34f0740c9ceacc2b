package tasks

import (
	"time"
)

// RunStatus represents the status of a report run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// Triggers
const (
	TriggerCLI       = "cli"
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
)

// RunRequest asks for one report. Empty dates fall back to the configured
// range, then to the last seven days ending today.
type RunRequest struct {
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	LookbackDays int    `json:"lookback_days,omitempty"` // used when both dates are empty
	Locale       string `json:"locale,omitempty"`
	Notify       bool   `json:"notify"`
	Trigger      string `json:"trigger,omitempty"`
}

// Run records one report run
type Run struct {
	ID          string        `json:"id"`
	ReportID    string        `json:"report_id,omitempty"` // analysis run id
	Trigger     string        `json:"trigger"`
	Status      RunStatus     `json:"status"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Locale      string        `json:"locale"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	OutputPath  string        `json:"output_path,omitempty"`
	Findings    int           `json:"findings"`
	Degraded    []string      `json:"degraded_sections,omitempty"`
	Notified    bool          `json:"notified"`
	NotifyError string        `json:"notify_error,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// finish stamps the end of a run
func (r *Run) finish(status RunStatus, err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Status = status
	if err != nil {
		r.Error = err.Error()
	}
}
