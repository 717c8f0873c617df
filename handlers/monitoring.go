package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMonitoringReport runs both monitoring channels and returns the summary.
func (h *Handlers) GetMonitoringReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.GenerateReport(c.Request.Context()))
}

// RunMonitoringScan triggers a monitoring pass that creates automatic alerts
// from high-confidence severe detections.
func (h *Handlers) RunMonitoringScan(c *gin.Context) {
	created := h.monitor.CreateAutomaticAlerts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"alerts_created": created})
}

// GetSlackStatus reports the Slack integration health.
func (h *Handlers) GetSlackStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.slack.Status())
}
