package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"adreport/pkg/analysis"
	"adreport/pkg/logger"

	"go.uber.org/zap"
)

const defaultMaxHistory = 100

// Closer releases resources held by the sources, e.g. a ClickHouse pool
type Closer func() error

// Manager tracks runs around a ReportExecutor
type Manager struct {
	executor   *ReportExecutor
	ctx        context.Context
	runTimeout time.Duration
	closer     Closer

	mu         sync.RWMutex
	active     map[string]*Run
	history    []*Run
	maxHistory int
}

var _ TaskManager = (*Manager)(nil)

// NewManager wraps an executor. Background runs inherit values from ctx but
// not its cancellation.
func NewManager(ctx context.Context, executor *ReportExecutor, runTimeout time.Duration) *Manager {
	return &Manager{
		executor:   executor,
		ctx:        ctx,
		runTimeout: runTimeout,
		active:     make(map[string]*Run),
		history:    make([]*Run, 0),
		maxHistory: defaultMaxHistory,
	}
}

// Run executes a report and waits for it
func (m *Manager) Run(ctx context.Context, req RunRequest) (*Run, error) {
	if !m.executor.acquire() {
		m.recordSkipped(req)
		return nil, ErrRunInProgress
	}
	defer m.executor.release()

	run := newRun(req, m.executor.opts.DefaultLocale)
	m.addActive(run)

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	local := *run
	err := m.executor.execute(ctx, &local, req)
	m.finishRun(&local)
	return &local, err
}

// Trigger starts a report in the background and returns the pending run
func (m *Manager) Trigger(ctx context.Context, req RunRequest) (*Run, error) {
	if !m.executor.acquire() {
		m.recordSkipped(req)
		return nil, ErrRunInProgress
	}

	run := newRun(req, m.executor.opts.DefaultLocale)
	m.addActive(run)
	snapshot := *run

	// run in the background
	go func() {
		defer m.executor.release()
		local := *run
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Report run panicked", zap.String("job_id", local.ID), zap.Any("panic", r))
				local.finish(RunStatusFailed, fmt.Errorf("run panicked: %v", r))
				m.finishRun(&local)
			}
		}()

		runCtx, cancel := m.withTimeout(context.WithoutCancel(ctx))
		defer cancel()

		if err := m.executor.execute(runCtx, &local, req); err != nil {
			logger.Warn("Background report run failed", zap.String("job_id", local.ID), zap.Error(err))
		}
		m.finishRun(&local)
	}()

	return &snapshot, nil
}

// GetRun returns a copy of the run with id
func (m *Manager) GetRun(id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if run, ok := m.active[id]; ok {
		c := *run
		return &c, nil
	}
	for _, run := range m.history {
		if run.ID == id {
			c := *run
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
}

// GetHistory returns finished runs, oldest first
func (m *Manager) GetHistory() []*Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]*Run, len(m.history))
	for i, run := range m.history {
		c := *run
		history[i] = &c
	}
	return history
}

// Latest returns the last successful report
func (m *Manager) Latest() (*analysis.Report, []byte, error) {
	return m.executor.Latest()
}

// IsRunning reports whether a run is in progress
func (m *Manager) IsRunning() bool {
	return m.executor.IsRunning()
}

// Close releases source resources
func (m *Manager) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer()
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.runTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.runTimeout)
}

func (m *Manager) addActive(run *Run) {
	run.Status = RunStatusRunning
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[run.ID] = run
}

// finishRun moves a run from active to history
func (m *Manager) finishRun(run *Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, run.ID)
	m.appendHistory(run)
}

// recordSkipped keeps a trace of triggers that hit a busy executor
func (m *Manager) recordSkipped(req RunRequest) {
	run := newRun(req, m.executor.opts.DefaultLocale)
	run.finish(RunStatusSkipped, ErrRunInProgress)
	logger.Warn("Report run skipped, another run is in progress", zap.String("trigger", run.Trigger))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendHistory(run)
}

func (m *Manager) appendHistory(run *Run) {
	m.history = append(m.history, run)
	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
}
