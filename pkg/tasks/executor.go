package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"adreport/pkg/analysis"
	"adreport/pkg/logger"
	"adreport/pkg/report"
	"adreport/pkg/utils/dateutils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RendererFactory builds a renderer for a locale
type RendererFactory func(locale string) (report.Renderer, error)

// ExecutorOptions configures a ReportExecutor
type ExecutorOptions struct {
	OutputDir     string
	DefaultLocale string
	DefaultStart  string // configured range, may be empty
	DefaultEnd    string
	PublicURL     string // base URL of OutputDir for notification links
	NewRenderer   RendererFactory
}

// ReportExecutor runs assemble, render, write and notify for one date range.
// Only one run executes at a time.
type ReportExecutor struct {
	assembler ReportAssembler
	notifier  ReportNotifier
	observer  RunObserver
	opts      ExecutorOptions

	running atomic.Bool

	mu         sync.RWMutex
	renderers  map[string]report.Renderer
	latest     *analysis.Report
	latestHTML []byte

	today func() time.Time
}

// NewReportExecutor creates an executor. notifier and observer may be nil.
func NewReportExecutor(assembler ReportAssembler, notifier ReportNotifier, observer RunObserver, opts ExecutorOptions) (*ReportExecutor, error) {
	if assembler == nil {
		return nil, fmt.Errorf("%w: assembler is required", ErrInvalidRequest)
	}
	if opts.NewRenderer == nil {
		return nil, fmt.Errorf("%w: renderer factory is required", ErrInvalidRequest)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "reports"
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	return &ReportExecutor{
		assembler: assembler,
		notifier:  notifier,
		observer:  observer,
		opts:      opts,
		renderers: make(map[string]report.Renderer),
		today:     dateutils.Today,
	}, nil
}

// Execute runs one report synchronously
func (e *ReportExecutor) Execute(ctx context.Context, req RunRequest) (*Run, error) {
	if !e.acquire() {
		return nil, ErrRunInProgress
	}
	defer e.release()

	run := newRun(req, e.opts.DefaultLocale)
	err := e.execute(ctx, run, req)
	return run, err
}

// Latest returns the last successful report and its HTML
func (e *ReportExecutor) Latest() (*analysis.Report, []byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.latest == nil {
		return nil, nil, ErrNoReport
	}
	return e.latest, e.latestHTML, nil
}

// IsRunning reports whether a run holds the executor
func (e *ReportExecutor) IsRunning() bool {
	return e.running.Load()
}

func (e *ReportExecutor) acquire() bool {
	return e.running.CompareAndSwap(false, true)
}

func (e *ReportExecutor) release() {
	e.running.Store(false)
}

func newRun(req RunRequest, defaultLocale string) *Run {
	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerAPI
	}
	locale := req.Locale
	if locale == "" {
		locale = defaultLocale
	}
	return &Run{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Status:    RunStatusPending,
		Locale:    locale,
		StartTime: time.Now(),
	}
}

// execute assumes the caller holds the executor
func (e *ReportExecutor) execute(ctx context.Context, run *Run, req RunRequest) error {
	ctx = logger.WithJobID(ctx, run.ID)
	log := logger.FromContext(ctx)
	run.Status = RunStatusRunning

	start, end, err := e.resolveDates(req)
	if err != nil {
		run.finish(RunStatusFailed, err)
		return err
	}
	run.StartDate, run.EndDate = start, end

	renderer, err := e.renderer(run.Locale)
	if err != nil {
		run.finish(RunStatusFailed, err)
		return err
	}

	log.Info("Report run started",
		zap.String("trigger", run.Trigger),
		zap.String("start_date", start),
		zap.String("end_date", end),
		zap.String("locale", run.Locale))

	began := time.Now()
	rep, err := e.produce(ctx, renderer, run, start, end)
	if e.observer != nil {
		e.observer.ObserveRun(rep, time.Since(began), err)
	}
	if err != nil {
		log.Error("Report run failed", zap.Error(err))
		run.finish(RunStatusFailed, err)
		return err
	}

	if req.Notify {
		e.notify(ctx, run, rep)
	}

	run.finish(RunStatusCompleted, nil)
	log.Info("Report run completed",
		zap.String("output", run.OutputPath),
		zap.Int("findings", run.Findings),
		zap.Duration("duration", run.Duration))
	return nil
}

// produce assembles, renders and writes. Nothing is written unless every
// step before the write succeeded.
func (e *ReportExecutor) produce(ctx context.Context, renderer report.Renderer, run *Run, start, end string) (*analysis.Report, error) {
	rep, err := e.assembler.Assemble(ctx, start, end)
	if err != nil {
		return nil, err
	}
	html, err := renderer.Render(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	path, err := report.WriteReport(e.opts.OutputDir, end, html)
	if err != nil {
		return nil, err
	}

	run.ReportID = rep.RunID
	run.OutputPath = path
	run.Findings = len(rep.Findings)
	run.Degraded = rep.DegradedSections()

	e.mu.Lock()
	e.latest, e.latestHTML = rep, html
	e.mu.Unlock()
	return rep, nil
}

// notify failures are recorded on the run; the report itself already exists
func (e *ReportExecutor) notify(ctx context.Context, run *Run, rep *analysis.Report) {
	if e.notifier == nil || e.notifier.Len() == 0 {
		return
	}
	if err := e.notifier.Notify(ctx, rep, e.link(run.EndDate)); err != nil {
		logger.FromContext(ctx).Warn("Report notification incomplete", zap.Error(err))
		run.NotifyError = fmt.Errorf("%w: %v", ErrNotificationFailed, err).Error()
		return
	}
	run.Notified = true
}

func (e *ReportExecutor) link(end string) string {
	if e.opts.PublicURL == "" {
		return ""
	}
	return strings.TrimRight(e.opts.PublicURL, "/") + "/" + end + "/"
}

func (e *ReportExecutor) renderer(locale string) (report.Renderer, error) {
	e.mu.RLock()
	r, ok := e.renderers[locale]
	e.mu.RUnlock()
	if ok {
		return r, nil
	}

	r, err := e.opts.NewRenderer(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	e.mu.Lock()
	e.renderers[locale] = r
	e.mu.Unlock()
	return r, nil
}

// resolveDates applies request dates, then lookback, then the configured
// range, then the default seven day range
func (e *ReportExecutor) resolveDates(req RunRequest) (string, string, error) {
	today := e.today()
	start, end := req.StartDate, req.EndDate

	if start == "" && end == "" && req.LookbackDays > 0 {
		start = dateutils.FormatDate(today.AddDate(0, 0, -req.LookbackDays))
		end = dateutils.FormatDate(today)
	}
	defStart, defEnd := dateutils.DefaultRange(today)
	if start == "" {
		start = e.opts.DefaultStart
	}
	if start == "" {
		start = defStart
	}
	if end == "" {
		end = e.opts.DefaultEnd
	}
	if end == "" {
		end = defEnd
	}

	s, err := dateutils.ParseDate(start)
	if err != nil {
		return "", "", fmt.Errorf("%w: start_date: %v", ErrInvalidRequest, err)
	}
	en, err := dateutils.ParseDate(end)
	if err != nil {
		return "", "", fmt.Errorf("%w: end_date: %v", ErrInvalidRequest, err)
	}
	if s.After(en) {
		return "", "", fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidRequest, start, end)
	}
	return start, end, nil
}
