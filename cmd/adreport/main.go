package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adreport/pkg/config"
	"adreport/pkg/handlers"
	"adreport/pkg/logger"
	"adreport/pkg/metrics"
	"adreport/pkg/scheduler"
	"adreport/pkg/server"
	"adreport/pkg/tasks"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file path")
		startDate  = flag.String("start", "", "report start date (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "report end date (YYYY-MM-DD)")
		outputDir  = flag.String("output", "", "report output directory")
		locale     = flag.String("locale", "", "report language (en|ko)")
		serve      = flag.Bool("serve", false, "run the HTTP server and scheduler")
		notify     = flag.Bool("notify", false, "send notifications after generating")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Report.OutputDir = *outputDir
	}
	if *locale != "" {
		cfg.Report.Locale = *locale
	}
	if err := cfg.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(cfg.App.IsDevelopment(), cfg.App.LogFile, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := metrics.NewRecorder()
	taskMgr, err := tasks.NewTaskManager(ctx, cfg, rec)
	if err != nil {
		logger.Error("Failed to create task manager", zap.Error(err))
		os.Exit(1)
	}
	defer taskMgr.Close()

	if *serve {
		err = runServer(ctx, cfg, taskMgr, rec)
	} else {
		err = runOnce(ctx, taskMgr, tasks.RunRequest{
			StartDate: *startDate,
			EndDate:   *endDate,
			Locale:    *locale,
			Notify:    *notify,
			Trigger:   tasks.TriggerCLI,
		})
	}
	if err != nil {
		logger.Error("adreport failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// runOnce generates one report and prints where it was written
func runOnce(ctx context.Context, taskMgr *tasks.Manager, req tasks.RunRequest) error {
	run, err := taskMgr.Run(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("Report generated",
		zap.String("period", run.StartDate+" ~ "+run.EndDate),
		zap.String("output", run.OutputPath),
		zap.Int("findings", run.Findings),
		zap.Strings("degraded_sections", run.Degraded),
		zap.Duration("duration", run.Duration))
	if run.NotifyError != "" {
		logger.Warn("Report notification failed", zap.String("error", run.NotifyError))
	}
	fmt.Println(run.OutputPath)
	return nil
}

// runServer serves the API and runs scheduled jobs until ctx is cancelled
func runServer(ctx context.Context, cfg *config.Config, taskMgr *tasks.Manager, rec *metrics.Recorder) error {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	g, gctx := errgroup.WithContext(ctx)

	// a failing listener also stops the scheduler through gctx
	sched, err := scheduler.NewTaskScheduler(gctx, cfg.Scheduler, taskMgr)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	handlerSvc := handlers.NewHandlerService(cfg, taskMgr)
	handlerSvc.SetScheduler(sched)
	httpServer := server.NewHTTPServer(cfg.Server, handlerSvc, rec)

	g.Go(httpServer.Start)
	g.Go(sched.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		timeout := 30 * time.Second
		if cfg.Server.ShutdownTimeout > 0 {
			timeout = time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()

		return errors.Join(httpServer.Shutdown(shutdownCtx), sched.Shutdown(shutdownCtx))
	})

	logger.Info("adreport server started",
		zap.Int("port", cfg.Server.Port),
		zap.Int("scheduled_jobs", len(sched.GetJobs())))
	return g.Wait()
}
