package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adreport/pkg/config"
	"adreport/pkg/logger"
	"adreport/pkg/tasks"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job statuses
const (
	JobStatusScheduled = "scheduled"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusSkipped   = "skipped"
)

// Error variables
var (
	ErrJobNotFound = errors.New("job not found")
)

// Parser accepts five or six field specs and descriptors like @daily
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// TaskScheduler runs report jobs on cron schedules
type TaskScheduler struct {
	cron      *cron.Cron
	config    *config.SchedulerConfig
	ctx       context.Context
	location  *time.Location
	jobs      map[string]*ScheduledJob
	jobsMutex sync.RWMutex
	taskMgr   tasks.TaskManager
}

// ScheduledJob represents a scheduled job
type ScheduledJob struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Cron      string       `json:"cron"`
	Config    JobConfig    `json:"config"`
	NextRun   time.Time    `json:"next_run"`
	LastRun   time.Time    `json:"last_run"`
	LastRunID string       `json:"last_run_id,omitempty"`
	Status    string       `json:"status"`
	EntryID   cron.EntryID `json:"-"`
}

// JobConfig holds job-specific configuration
type JobConfig struct {
	LookbackDays int    `json:"lookback_days"`
	Locale       string `json:"locale,omitempty"`
	Notify       bool   `json:"notify"`
}

// cronLogger adapts the zap logger to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Sugar.Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Sugar.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

// NewTaskScheduler creates a scheduler that drives taskMgr
func NewTaskScheduler(ctx context.Context, cfg *config.SchedulerConfig, taskMgr tasks.TaskManager) (*TaskScheduler, error) {
	logger.Info("Initializing task scheduler")

	if cfg == nil {
		cfg = config.NewSchedulerConfig()
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	cronScheduler := cron.New(
		cron.WithParser(Parser),
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	scheduler := &TaskScheduler{
		cron:     cronScheduler,
		config:   cfg,
		ctx:      ctx,
		location: loc,
		jobs:     make(map[string]*ScheduledJob),
		taskMgr:  taskMgr,
	}

	if err := scheduler.loadConfiguredJobs(); err != nil {
		return nil, fmt.Errorf("failed to load configured jobs: %w", err)
	}

	logger.Info("Task scheduler initialized",
		zap.Int("job_count", len(scheduler.jobs)),
		zap.String("timezone", loc.String()))
	return scheduler, nil
}

// Start starts the cron loop and blocks until the context is cancelled
func (ts *TaskScheduler) Start() error {
	logger.Info("Starting task scheduler")

	ts.cron.Start()

	ts.jobsMutex.Lock()
	for _, job := range ts.jobs {
		if err := ts.updateJobNextRunTime(job); err != nil {
			logger.Warn("Failed to update next run time after start",
				zap.String("job_name", job.Name),
				zap.Error(err))
		}
	}
	ts.jobsMutex.Unlock()

	ts.logScheduledJobs()

	<-ts.ctx.Done()
	logger.Info("Task scheduler context cancelled")
	return nil
}

// Shutdown stops the cron loop and waits for a running job or ctx
func (ts *TaskScheduler) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down task scheduler")

	cronCtx := ts.cron.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("All scheduled jobs completed")
	case <-ctx.Done():
		logger.Warn("Scheduler shutdown timeout, a report run may still be in progress")
	}
	return nil
}

// AddJob adds a new scheduled job
func (ts *TaskScheduler) AddJob(job *ScheduledJob) error {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	entryID, err := ts.cron.AddFunc(job.Cron, ts.createJobFunction(job))
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	job.EntryID = entryID
	job.Status = JobStatusScheduled
	if err := ts.updateJobNextRunTime(job); err != nil {
		logger.Warn("Failed to update next run time", zap.String("job_name", job.Name), zap.Error(err))
	}

	ts.jobs[job.ID] = job

	logger.Info("Added scheduled job",
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
		zap.String("cron", job.Cron),
		zap.Int("lookback_days", job.Config.LookbackDays),
		zap.Time("next_run", job.NextRun))
	return nil
}

// RemoveJob removes a scheduled job
func (ts *TaskScheduler) RemoveJob(jobID string) error {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	job, exists := ts.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	ts.cron.Remove(job.EntryID)
	delete(ts.jobs, jobID)

	logger.Info("Removed scheduled job", zap.String("job_id", jobID), zap.String("job_name", job.Name))
	return nil
}

// GetJobs returns copies of all scheduled jobs
func (ts *TaskScheduler) GetJobs() []ScheduledJob {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	jobs := make([]ScheduledJob, 0, len(ts.jobs))
	for _, job := range ts.jobs {
		ts.updateJobNextRunTime(job)
		jobs = append(jobs, *job)
	}
	return jobs
}

// GetJob returns a copy of one scheduled job
func (ts *TaskScheduler) GetJob(jobID string) (ScheduledJob, error) {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	job, exists := ts.jobs[jobID]
	if !exists {
		return ScheduledJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return *job, nil
}

// RunJob executes a job immediately, outside its schedule
func (ts *TaskScheduler) RunJob(jobID string) error {
	ts.jobsMutex.RLock()
	job, exists := ts.jobs[jobID]
	ts.jobsMutex.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	go ts.createJobFunction(job)()
	return nil
}

// GetStatus returns scheduler status
func (ts *TaskScheduler) GetStatus() map[string]any {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	return map[string]any{
		"running":   ts.cron != nil,
		"job_count": len(ts.jobs),
		"entries":   len(ts.cron.Entries()),
		"timezone":  ts.location.String(),
		"timestamp": time.Now().UTC(),
	}
}

// loadConfiguredJobs registers the jobs of an enabled scheduler config
func (ts *TaskScheduler) loadConfiguredJobs() error {
	if !ts.config.Enabled || len(ts.config.Jobs) == 0 {
		logger.Info("No scheduled jobs configured")
		return nil
	}

	logger.Info("Loading jobs from configuration file", zap.Int("count", len(ts.config.Jobs)))
	for _, configJob := range ts.config.Jobs {
		job := &ScheduledJob{
			Name: configJob.Name,
			Cron: configJob.Cron,
			Config: JobConfig{
				LookbackDays: configJob.Config.LookbackDays,
				Locale:       configJob.Config.Locale,
				Notify:       configJob.Config.Notify,
			},
		}
		if err := ts.AddJob(job); err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return nil
}

// createJobFunction creates the function cron executes for job
func (ts *TaskScheduler) createJobFunction(job *ScheduledJob) func() {
	return func() {
		logger.Info("Executing scheduled job", zap.String("job_id", job.ID), zap.String("job_name", job.Name))

		ts.updateJob(job, func(j *ScheduledJob) {
			j.Status = JobStatusRunning
			j.LastRun = time.Now()
		})

		run, err := ts.taskMgr.Run(ts.ctx, tasks.RunRequest{
			LookbackDays: job.Config.LookbackDays,
			Locale:       job.Config.Locale,
			Notify:       job.Config.Notify,
			Trigger:      tasks.TriggerScheduler,
		})

		status := JobStatusCompleted
		switch {
		case errors.Is(err, tasks.ErrRunInProgress):
			status = JobStatusSkipped
			logger.Warn("Scheduled job skipped, a report run is in progress", zap.String("job_name", job.Name))
		case err != nil:
			status = JobStatusFailed
			logger.Error("Scheduled job failed", zap.String("job_name", job.Name), zap.Error(err))
		default:
			logger.Info("Scheduled job completed successfully",
				zap.String("job_name", job.Name),
				zap.String("output", run.OutputPath),
				zap.Duration("duration", run.Duration))
		}

		ts.updateJob(job, func(j *ScheduledJob) {
			j.Status = status
			if run != nil {
				j.LastRunID = run.ID
			}
		})
	}
}

// logScheduledJobs logs information about all scheduled jobs
func (ts *TaskScheduler) logScheduledJobs() {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	for _, job := range ts.jobs {
		logger.Info("Scheduled job",
			zap.String("job_name", job.Name),
			zap.String("cron", job.Cron),
			zap.Time("next_run", job.NextRun),
			zap.String("status", job.Status))
	}
}

// updateJobNextRunTime updates the next run time; callers hold jobsMutex
func (ts *TaskScheduler) updateJobNextRunTime(job *ScheduledJob) error {
	for _, entry := range ts.cron.Entries() {
		if entry.ID == job.EntryID && !entry.Next.IsZero() {
			job.NextRun = entry.Next
			return nil
		}
	}

	// cron not started yet
	schedule, err := Parser.Parse(job.Cron)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %s: %w", job.Cron, err)
	}
	job.NextRun = schedule.Next(time.Now().In(ts.location))
	return nil
}

func (ts *TaskScheduler) updateJob(job *ScheduledJob, mutate func(*ScheduledJob)) {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()
	mutate(job)
}
