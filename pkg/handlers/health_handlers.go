package handlers

import (
	"errors"
	"net/http"
	"time"

	"adreport/pkg/tasks"

	"github.com/gin-gonic/gin"
)

// Service identity reported by /health and /api/v1/status
const (
	ServiceName    = "adreport"
	ServiceVersion = "1.0.0"
)

// HealthCheck reports liveness and the age of the last report
// @Summary Perform health check
// @Tags Health Check
// @Produce json
// @Router /health [get]
func (h *HandlerService) HealthCheck(c *gin.Context) {
	health := gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"version":   ServiceVersion,
		"timestamp": getCurrentTimestamp(),
		"running":   h.taskMgr.IsRunning(),
	}

	rep, _, err := h.taskMgr.Latest()
	switch {
	case err == nil:
		health["last_report"] = gin.H{
			"id":           rep.RunID,
			"start_date":   rep.StartDate,
			"end_date":     rep.EndDate,
			"generated_at": rep.GeneratedAt.UTC(),
			"healthy":      rep.Healthy(),
		}
	case !errors.Is(err, tasks.ErrNoReport):
		health["status"] = "degraded"
		health["error"] = err.Error()
	}

	c.JSON(http.StatusOK, health)
}

// GetStatus returns service, run and scheduler status
// @Summary Get system status
// @Tags System Management
// @Produce json
// @Router /status [get]
func (h *HandlerService) GetStatus(c *gin.Context) {
	history := h.taskMgr.GetHistory()
	status := gin.H{
		"service":   ServiceName,
		"version":   ServiceVersion,
		"status":    "running",
		"timestamp": getCurrentTimestamp(),
		"uptime":    formatDuration(time.Since(h.startTime)),
		"runs": gin.H{
			"running": h.taskMgr.IsRunning(),
			"total":   len(history),
		},
	}
	if n := len(history); n > 0 {
		last := history[n-1]
		status["last_run"] = gin.H{
			"id":       last.ID,
			"status":   last.Status,
			"trigger":  last.Trigger,
			"duration": formatDuration(last.Duration),
		}
	}

	if h.scheduler != nil {
		status["scheduler"] = h.scheduler.GetStatus()
	}

	c.JSON(http.StatusOK, status)
}

// GetAppConfig returns the current configuration with secrets masked
// @Summary Get system configuration
// @Tags System Management
// @Produce json
// @Router /config [get]
func (h *HandlerService) GetAppConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.sanitizeConfig())
}
