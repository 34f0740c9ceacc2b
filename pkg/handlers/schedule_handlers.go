package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// GetSchedulerStatus returns scheduler status
// @Summary Get scheduler status
// @Tags Scheduler
// @Produce json
// @Router /scheduler/status [get]
func (h *HandlerService) GetSchedulerStatus(c *gin.Context) {
	if !h.IsSchedulerAvailable() {
		HandleError(c, NewServiceUnavailableError("Scheduler not available", nil))
		return
	}
	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// GetScheduledJobs returns all scheduled jobs ordered by name
// @Summary List scheduled jobs
// @Tags Scheduler
// @Produce json
// @Router /scheduler/jobs [get]
func (h *HandlerService) GetScheduledJobs(c *gin.Context) {
	if !h.IsSchedulerAvailable() {
		HandleError(c, NewServiceUnavailableError("Scheduler not available", nil))
		return
	}

	jobs := h.scheduler.GetJobs()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	c.JSON(http.StatusOK, gin.H{
		"jobs":      jobs,
		"count":     len(jobs),
		"timestamp": getCurrentTimestamp(),
	})
}

// GetScheduledJob returns one job
func (h *HandlerService) GetScheduledJob(c *gin.Context) {
	if !h.IsSchedulerAvailable() {
		HandleError(c, NewServiceUnavailableError("Scheduler not available", nil))
		return
	}

	job, err := h.scheduler.GetJob(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// RunScheduledJob runs a job now, outside its schedule
// @Summary Run a scheduled job now
// @Tags Scheduler
// @Produce json
// @Router /scheduler/jobs/{id}/run [post]
func (h *HandlerService) RunScheduledJob(c *gin.Context) {
	if !h.IsSchedulerAvailable() {
		HandleError(c, NewServiceUnavailableError("Scheduler not available", nil))
		return
	}

	id := c.Param("id")
	if err := h.scheduler.RunJob(id); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":    id,
		"message":   "job started",
		"timestamp": getCurrentTimestamp(),
	})
}
