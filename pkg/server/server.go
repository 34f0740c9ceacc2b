package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"adreport/pkg/config"
	"adreport/pkg/handlers"
	"adreport/pkg/logger"
	"adreport/pkg/metrics"
	"adreport/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server constants
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 5 * time.Minute // synchronous report runs
	DefaultIdleTimeout  = 120 * time.Second
)

// HTTPServer represents the HTTP server component
type HTTPServer struct {
	server     *http.Server
	router     *gin.Engine
	config     *config.ServerConfig
	handlerSvc *handlers.HandlerService
	recorder   *metrics.Recorder
}

// NewHTTPServer creates a new HTTP server instance. rec may be nil, in which
// case /metrics is not mounted.
func NewHTTPServer(cfg *config.ServerConfig, handlerSvc *handlers.HandlerService, rec *metrics.Recorder) *HTTPServer {
	if cfg == nil {
		cfg = config.NewServerConfig()
	}
	logger.Info("Initializing HTTP server", zap.String("address", cfg.Address), zap.Int("port", cfg.Port))

	s := &HTTPServer{
		router:     gin.New(),
		config:     cfg,
		handlerSvc: handlerSvc,
		recorder:   rec,
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	logger.Info("HTTP server initialized", zap.String("listen_addr", addr))
	return s
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *HTTPServer) setupRoutes() {
	s.addMiddleware()

	s.router.GET("/health", s.handlerSvc.HealthCheck)
	if s.recorder != nil {
		s.router.GET("/metrics", gin.WrapH(s.recorder.Handler()))
	}

	api := s.router.Group("/api/v1")
	s.setupSystemRoutes(api)
	s.setupReportRoutes(api)
	s.setupSchedulerRoutes(api)

	logger.Info("HTTP routes configured", zap.Int("routes", len(s.router.Routes())))
}

// addMiddleware adds all middleware to the router
func (s *HTTPServer) addMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.GinZapLogger())
	if s.recorder != nil {
		s.router.Use(middleware.Metrics(s.recorder))
	}
	s.router.Use(cors.New(s.corsConfig()))
	s.router.Use(middleware.ErrorHandler())
}

func (s *HTTPServer) corsConfig() cors.Config {
	c := cors.DefaultConfig()
	if len(s.config.AllowedOrigins) == 0 || (len(s.config.AllowedOrigins) == 1 && s.config.AllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = s.config.AllowedOrigins
	}
	c.AllowHeaders = append(c.AllowHeaders, middleware.RequestIDHeader)
	c.ExposeHeaders = []string{middleware.RequestIDHeader}
	return c
}

// setupSystemRoutes configures system endpoints
func (s *HTTPServer) setupSystemRoutes(api *gin.RouterGroup) {
	api.GET("/status", s.handlerSvc.GetStatus)
	api.GET("/config", s.handlerSvc.GetAppConfig)
}

// setupReportRoutes configures report and run endpoints
func (s *HTTPServer) setupReportRoutes(api *gin.RouterGroup) {
	reports := api.Group("/reports")
	{
		reports.POST("", s.handlerSvc.CreateReport)
		reports.GET("/latest", s.handlerSvc.GetLatestReport)
		reports.GET("/latest/html", s.handlerSvc.GetLatestReportHTML)
	}

	runs := api.Group("/runs")
	{
		runs.GET("", s.handlerSvc.GetRuns)
		runs.GET("/:id", s.handlerSvc.GetRun)
	}
}

// setupSchedulerRoutes configures scheduler endpoints
func (s *HTTPServer) setupSchedulerRoutes(api *gin.RouterGroup) {
	sched := api.Group("/scheduler")
	{
		sched.GET("/status", s.handlerSvc.GetSchedulerStatus)
		sched.GET("/jobs", s.handlerSvc.GetScheduledJobs)
		sched.GET("/jobs/:id", s.handlerSvc.GetScheduledJob)
		sched.POST("/jobs/:id/run", s.handlerSvc.RunScheduledJob)
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *HTTPServer) Start() error {
	logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	return nil
}
