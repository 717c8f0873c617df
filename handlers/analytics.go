package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crisis-response-service/analysis"
	"crisis-response-service/metrics"
	"crisis-response-service/models"
)

// GetTrends runs trend analysis over a report window (days query parameter).
func (h *Handlers) GetTrends(c *gin.Context) {
	defer metrics.ObserveRequest("analytics_trends", time.Now())

	days := h.cfg.TrendWindowDays
	if d, err := strconv.Atoi(c.Query("days")); err == nil && d > 0 {
		days = d
	}

	c.JSON(http.StatusOK, h.analytics.AnalyzeTrends(c.Request.Context(), days))
}

// GetRiskPrediction forecasts risk for the next time window.
func (h *Handlers) GetRiskPrediction(c *gin.Context) {
	defer metrics.ObserveRequest("analytics_risk", time.Now())

	hours := h.cfg.RiskWindowHours
	if v, err := strconv.Atoi(c.Query("hours")); err == nil && v > 0 {
		hours = v
	}
	location := c.Query("location")

	c.JSON(http.StatusOK, h.analytics.PredictRisk(c.Request.Context(), location, hours))
}

// GetDashboardInsights returns the combined analytics dashboard payload.
func (h *Handlers) GetDashboardInsights(c *gin.Context) {
	defer metrics.ObserveRequest("analytics_dashboard", time.Now())

	insights := h.analytics.GenerateDashboardInsights(c.Request.Context(), h.cfg.TrendWindowDays, h.cfg.RiskWindowHours)
	c.JSON(http.StatusOK, insights)
}

// GetDashboardSummary returns the caller's recent reports, active alerts, and
// an AI situation summary.
func (h *Handlers) GetDashboardSummary(c *gin.Context) {
	reports, err := h.db.GetUserReports(c.Request.Context(), userID(c), userReportsLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load reports"})
		return
	}

	alerts, err := h.db.GetRecentActiveAlerts(c.Request.Context(), 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load alerts"})
		return
	}

	summary := "No recent reports to summarize."
	if len(reports) > 0 {
		digests := make([]analysis.ReportDigest, 0, len(reports))
		for _, r := range reports {
			digests = append(digests, analysis.ReportDigest{Title: r.Title, Description: r.Description})
		}
		summary = h.analyzer.SummarizeReports(digests)
	}

	if reports == nil {
		reports = []models.EmergencyReport{}
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"reports":    reports,
		"alerts":     alerts,
		"ai_summary": summary,
	})
}
