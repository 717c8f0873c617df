package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"crisis-response-service/metrics"
	"crisis-response-service/models"
	"crisis-response-service/rabbitmq"
)

const userReportsLimit = 10

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// CreateReport handles emergency report submission. The request is multipart
// form data with an optional image part. The report is analyzed, persisted,
// and fanned out to the notification channels; analysis failure still saves
// the report with default severity.
func (h *Handlers) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	imageData := h.readImage(c)

	result := h.analyzer.AnalyzeReport(req.Description, req.Location)
	if !models.ValidSeverity(result.Severity) {
		log.Warnf("Model returned unknown severity %q, using medium", result.Severity)
		result.Severity = models.SeverityMedium
	}

	aiAnalysis := fmt.Sprintf("Severity: %s\nCategory: %s\nUrgency: %s\nRecommendations: %s\nEstimated Response Time: %s",
		strings.ToUpper(result.Severity),
		titleWords(result.Category),
		titleWords(result.Urgency),
		strings.Join(result.Recommendations, ", "),
		result.EstimatedResponseTime,
	)
	if len(imageData) > 0 {
		imageAnalysis := h.analyzer.DescribeImage(imageData, req.Description)
		aiAnalysis += fmt.Sprintf("\n\nImage Analysis: %s", imageAnalysis)
	}

	report := &models.EmergencyReport{
		UserID:      userID(c),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Image:       imageData,
		Severity:    result.Severity,
		Status:      models.StatusPending,
		AIAnalysis:  aiAnalysis,
	}

	id, err := h.db.InsertReport(c.Request.Context(), report)
	if err != nil {
		log.WithError(err).Error("Failed to save report")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to submit report"})
		return
	}
	report.ID = id
	report.HasImage = len(imageData) > 0
	report.CreatedAt = time.Now().UTC()
	report.UpdatedAt = report.CreatedAt
	metrics.ReportsSubmittedTotal.WithLabelValues(report.Severity).Inc()

	reporter, err := h.db.GetUser(c.Request.Context(), report.UserID)
	if err != nil {
		log.WithError(err).Errorf("Failed to load reporter %d for notifications", report.UserID)
	}

	// Fan-out runs in the background; submission never fails on delivery.
	go h.dispatcher.NotifyNewReport(context.Background(), report, reporter)

	if h.publisher != nil {
		go h.publishAnalyzedEvent(report, result.Category)
	}

	c.JSON(http.StatusCreated, report)
}

func (h *Handlers) readImage(c *gin.Context) []byte {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return nil
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Error("Failed to read uploaded image")
		return nil
	}
	return data
}

func (h *Handlers) publishAnalyzedEvent(report *models.EmergencyReport, category string) {
	event := rabbitmq.ReportAnalyzedEvent{
		ReportID:  report.ID,
		UserID:    report.UserID,
		Title:     report.Title,
		Severity:  report.Severity,
		Category:  category,
		Location:  report.Location,
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		CreatedAt: report.CreatedAt,
	}
	if err := h.publisher.Publish(event); err != nil {
		log.WithError(err).Errorf("Failed to publish analyzed event for report %d", report.ID)
	}
}

// GetMyReports returns the caller's most recent reports
func (h *Handlers) GetMyReports(c *gin.Context) {
	reports, err := h.db.GetUserReports(c.Request.Context(), userID(c), userReportsLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load reports"})
		return
	}
	if reports == nil {
		reports = []models.EmergencyReport{}
	}
	c.JSON(http.StatusOK, reports)
}

// GetReport returns a single report by ID
func (h *Handlers) GetReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid report id"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		if err.Error() == "report not found" {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReportImage streams the stored image for a report
func (h *Handlers) GetReportImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid report id"})
		return
	}

	image, err := h.db.GetReportImage(c.Request.Context(), id)
	if err != nil {
		if err.Error() == "report not found" {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load image"})
		return
	}
	if len(image) == 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "report has no image"})
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(image), image)
}

// UpdateReportStatus changes a report's status and notifies the reporter
func (h *Handlers) UpdateReportStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid report id"})
		return
	}

	var req models.UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		if err.Error() == "report not found" {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load report"})
		return
	}

	if err := h.db.UpdateReportStatus(c.Request.Context(), id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update status"})
		return
	}

	reporter, err := h.db.GetUser(c.Request.Context(), report.UserID)
	if err != nil {
		log.WithError(err).Errorf("Failed to load reporter %d for status SMS", report.UserID)
	} else {
		go h.dispatcher.NotifyStatusUpdate(reporter, id, req.Status)
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "status updated successfully"})
}

// titleWords capitalizes the first letter of each word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
