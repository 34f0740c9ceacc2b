package handlers

import (
	"time"

	"adreport/pkg/config"
	"adreport/pkg/logger"
	"adreport/pkg/scheduler"
	"adreport/pkg/tasks"
)

// JobScheduler is the part of the cron scheduler the API exposes
type JobScheduler interface {
	GetJobs() []scheduler.ScheduledJob
	GetJob(id string) (scheduler.ScheduledJob, error)
	RunJob(id string) error
	GetStatus() map[string]any
}

// HandlerService provides HTTP handlers for the API
type HandlerService struct {
	config    *config.Config
	taskMgr   tasks.TaskManager
	scheduler JobScheduler
	startTime time.Time
}

// NewHandlerService creates a new handler service around a task manager
func NewHandlerService(cfg *config.Config, taskMgr tasks.TaskManager) *HandlerService {
	logger.Info("Initializing handler service")
	return &HandlerService{
		config:    cfg,
		taskMgr:   taskMgr,
		startTime: time.Now(),
	}
}

// SetScheduler sets the scheduler reference (called after scheduler is created)
func (h *HandlerService) SetScheduler(s JobScheduler) {
	h.scheduler = s
}

// IsSchedulerAvailable checks if scheduler is available
func (h *HandlerService) IsSchedulerAvailable() bool {
	return h.scheduler != nil
}
