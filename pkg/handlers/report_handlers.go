package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"adreport/pkg/logger"
	"adreport/pkg/response"
	"adreport/pkg/tasks"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateReport generates a report. With ?async=true the run is started in
// the background and 202 is returned with the pending run.
// @Summary Generate a report
// @Tags Reports
// @Accept json
// @Produce json
// @Param async query bool false "run in the background"
// @Router /reports [post]
func (h *HandlerService) CreateReport(c *gin.Context) {
	var req tasks.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		HandleError(c, NewBadRequestError("Request body parsing failed", err))
		return
	}
	req.Trigger = tasks.TriggerAPI

	async, _ := strconv.ParseBool(c.Query("async"))
	logger.FromContext(c.Request.Context()).Info("Received report request",
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.String("locale", req.Locale),
		zap.Bool("notify", req.Notify),
		zap.Bool("async", async))

	if async {
		run, err := h.taskMgr.Trigger(c.Request.Context(), req)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, run)
		return
	}

	run, err := h.taskMgr.Run(c.Request.Context(), req)
	if err != nil {
		if run == nil || errors.Is(err, tasks.ErrInvalidRequest) {
			HandleError(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			response.FieldError:   true,
			response.FieldMessage: "Report run failed",
			response.FieldDetails: err.Error(),
			"run":                 run,
		})
		return
	}
	c.JSON(http.StatusCreated, run)
}

// GetLatestReport returns the last successful report as JSON
// @Summary Latest report
// @Tags Reports
// @Produce json
// @Router /reports/latest [get]
func (h *HandlerService) GetLatestReport(c *gin.Context) {
	rep, _, err := h.taskMgr.Latest()
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GetLatestReportHTML serves the last rendered document
// @Summary Latest report document
// @Tags Reports
// @Produce html
// @Router /reports/latest/html [get]
func (h *HandlerService) GetLatestReportHTML(c *gin.Context) {
	_, html, err := h.taskMgr.Latest()
	if err != nil {
		HandleError(c, err)
		return
	}
	response.HTML(c, http.StatusOK, html)
}

// GetRuns lists finished runs, newest first
// @Summary Run history
// @Tags Reports
// @Produce json
// @Param limit query int false "maximum number of runs"
// @Router /runs [get]
func (h *HandlerService) GetRuns(c *gin.Context) {
	history := h.taskMgr.GetHistory()

	limit := len(history)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			HandleError(c, NewBadRequestError("limit must be a non-negative integer", err))
			return
		}
		limit = min(n, limit)
	}

	runs := make([]*tasks.Run, 0, limit)
	for i := len(history) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, history[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":      runs,
		"count":     len(runs),
		"total":     len(history),
		"running":   h.taskMgr.IsRunning(),
		"timestamp": getCurrentTimestamp(),
	})
}

// GetRun returns one run by id
// @Summary Get run
// @Tags Reports
// @Produce json
// @Router /runs/{id} [get]
func (h *HandlerService) GetRun(c *gin.Context) {
	run, err := h.taskMgr.GetRun(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
