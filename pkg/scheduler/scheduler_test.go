package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"adreport/pkg/analysis"
	"adreport/pkg/config"
	"adreport/pkg/tasks"
)

type fakeManager struct {
	mu   sync.Mutex
	err  error
	reqs []tasks.RunRequest
}

func (f *fakeManager) Run(_ context.Context, req tasks.RunRequest) (*tasks.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &tasks.Run{ID: "run-1", Status: tasks.RunStatusCompleted}, nil
}

func (f *fakeManager) Trigger(ctx context.Context, req tasks.RunRequest) (*tasks.Run, error) {
	return f.Run(ctx, req)
}
func (f *fakeManager) GetRun(string) (*tasks.Run, error)            { return nil, tasks.ErrRunNotFound }
func (f *fakeManager) GetHistory() []*tasks.Run                     { return nil }
func (f *fakeManager) Latest() (*analysis.Report, []byte, error)    { return nil, nil, tasks.ErrNoReport }
func (f *fakeManager) IsRunning() bool                              { return false }

func (f *fakeManager) requests() []tasks.RunRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tasks.RunRequest(nil), f.reqs...)
}

func testConfig() *config.SchedulerConfig {
	return &config.SchedulerConfig{
		Enabled:  true,
		Timezone: "UTC",
		Jobs: []config.ScheduledJob{{
			Name:   "daily_report",
			Cron:   "0 0 8 * * *",
			Config: config.JobConfig{LookbackDays: 7, Locale: "ko", Notify: true},
		}},
	}
}

func waitStatus(t *testing.T, ts *TaskScheduler, id, want string) ScheduledJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := ts.GetJob(id)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if job.Status == want {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job status = %s, want %s", job.Status, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConfiguredJobs(t *testing.T) {
	ts, err := NewTaskScheduler(context.Background(), testConfig(), &fakeManager{})
	if err != nil {
		t.Fatalf("NewTaskScheduler failed: %v", err)
	}

	jobs := ts.GetJobs()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	job := jobs[0]
	if job.Name != "daily_report" || job.Status != JobStatusScheduled || job.Config.LookbackDays != 7 {
		t.Errorf("unexpected job %+v", job)
	}
	if job.NextRun.IsZero() || job.NextRun.UTC().Hour() != 8 {
		t.Errorf("next run = %v", job.NextRun)
	}
	if status := ts.GetStatus(); status["job_count"] != 1 {
		t.Errorf("status = %v", status)
	}
}

func TestRunJob(t *testing.T) {
	mgr := &fakeManager{}
	ts, _ := NewTaskScheduler(context.Background(), testConfig(), mgr)
	id := ts.GetJobs()[0].ID

	if err := ts.RunJob(id); err != nil {
		t.Fatalf("RunJob failed: %v", err)
	}
	job := waitStatus(t, ts, id, JobStatusCompleted)
	if job.LastRunID != "run-1" || job.LastRun.IsZero() {
		t.Errorf("unexpected job after run %+v", job)
	}

	reqs := mgr.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 run request, got %d", len(reqs))
	}
	want := tasks.RunRequest{LookbackDays: 7, Locale: "ko", Notify: true, Trigger: tasks.TriggerScheduler}
	if reqs[0] != want {
		t.Errorf("request = %+v, want %+v", reqs[0], want)
	}

	if err := ts.RunJob("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestRunJobStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: tasks.ErrRunInProgress, want: JobStatusSkipped},
		{err: errors.New("boom"), want: JobStatusFailed},
	}
	for _, tt := range tests {
		ts, _ := NewTaskScheduler(context.Background(), testConfig(), &fakeManager{err: tt.err})
		id := ts.GetJobs()[0].ID
		ts.RunJob(id)
		waitStatus(t, ts, id, tt.want)
	}
}

func TestAddRemoveJob(t *testing.T) {
	ts, _ := NewTaskScheduler(context.Background(), &config.SchedulerConfig{}, &fakeManager{})
	if len(ts.GetJobs()) != 0 {
		t.Fatal("disabled scheduler should not load jobs")
	}

	job := &ScheduledJob{Name: "weekly", Cron: "@weekly", Config: JobConfig{LookbackDays: 14}}
	if err := ts.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if job.ID == "" || len(ts.GetJobs()) != 1 {
		t.Errorf("job not registered: %+v", job)
	}

	if err := ts.AddJob(&ScheduledJob{Name: "bad", Cron: "every day"}); err == nil {
		t.Error("expected error for invalid cron")
	}

	if err := ts.RemoveJob(job.ID); err != nil {
		t.Fatalf("RemoveJob failed: %v", err)
	}
	if err := ts.RemoveJob(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestInvalidTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus"
	if _, err := NewTaskScheduler(context.Background(), cfg, &fakeManager{}); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestStartStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ts, _ := NewTaskScheduler(ctx, testConfig(), &fakeManager{})

	done := make(chan error, 1)
	go func() { done <- ts.Start() }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	if err := ts.Shutdown(shutdownCtx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
