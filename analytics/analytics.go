package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"crisis-response-service/analysis"
	"crisis-response-service/database"
	"crisis-response-service/models"
)

// DataSummary is the pre-aggregated report window handed to trend analysis.
// Field names mirror the JSON embedded in the model prompt.
type DataSummary struct {
	TotalReports       int            `json:"total_reports"`
	SeverityCounts     map[string]int `json:"severity_counts"`
	HourlyDistribution [24]int        `json:"hourly_distribution"`
	Locations          []string       `json:"locations"`
	Categories         []string       `json:"categories"`
	DescriptionsSample []string       `json:"descriptions_sample"`
}

// RiskContext is the historical context handed to risk prediction.
type RiskContext struct {
	RecentIncidents int            `json:"recent_incidents"`
	SeverityPattern map[string]int `json:"severity_pattern"`
	TimePatterns    map[string]int `json:"time_patterns"`
	LocationFocus   string         `json:"location_focus,omitempty"`
}

// SummaryStats are the headline counters on the insights dashboard.
type SummaryStats struct {
	TotalReports int `json:"total_reports"`
	ActiveAlerts int `json:"active_alerts"`
	Recent24h    int `json:"recent_24h"`
}

// DashboardInsights is the combined insights payload.
type DashboardInsights struct {
	SummaryStats SummaryStats             `json:"summary_stats"`
	Trends       *analysis.TrendAnalysis  `json:"trends"`
	Predictions  *analysis.RiskPrediction `json:"predictions"`
	GeneratedAt  string                   `json:"generated_at"`
}

// Service aggregates report history and runs the analytical models over it.
type Service struct {
	db       *database.Database
	analyzer *analysis.Analyzer

	riskHistoryLimit int
}

func NewService(db *database.Database, analyzer *analysis.Analyzer, riskHistoryLimit int) *Service {
	return &Service{
		db:               db,
		analyzer:         analyzer,
		riskHistoryLimit: riskHistoryLimit,
	}
}

// BuildDataSummary tallies a report window. Reports with an empty severity
// count under "unknown", so bucket counts always sum to the total.
func BuildDataSummary(reports []models.EmergencyReport) DataSummary {
	summary := DataSummary{
		TotalReports:       len(reports),
		SeverityCounts:     map[string]int{},
		Locations:          []string{},
		Categories:         []string{},
		DescriptionsSample: []string{},
	}

	for _, report := range reports {
		severity := report.Severity
		if severity == "" {
			severity = "unknown"
		}
		summary.SeverityCounts[severity]++

		summary.HourlyDistribution[report.CreatedAt.Hour()]++

		if report.Location != "" {
			summary.Locations = append(summary.Locations, report.Location)
		}
		if category := extractCategory(report.AIAnalysis); category != "" {
			summary.Categories = append(summary.Categories, category)
		}

		sample := report.Description
		if runes := []rune(sample); len(runes) > 100 {
			sample = string(runes[:100])
		}
		summary.DescriptionsSample = append(summary.DescriptionsSample, sample)
	}

	return summary
}

// extractCategory pulls the category value out of a stored analysis blob.
// The blob is line-oriented text with a "Category: <value>" line.
func extractCategory(aiAnalysis string) string {
	if !strings.Contains(aiAnalysis, "Category:") {
		return ""
	}
	for _, line := range strings.Split(aiAnalysis, "\n") {
		if !strings.Contains(line, "Category:") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// AnalyzeTrends runs trend analysis over the last daysBack days of reports.
// An empty window returns the insufficient-data result without contacting
// the model.
func (s *Service) AnalyzeTrends(ctx context.Context, daysBack int) *analysis.TrendAnalysis {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	reports, err := s.db.GetReportsSince(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Failed to load reports for trend analysis")
		return analysis.DefaultTrendAnalysis()
	}

	if len(reports) == 0 {
		return analysis.InsufficientDataTrendAnalysis()
	}

	return s.analyzer.AnalyzeTrends(BuildDataSummary(reports), daysBack)
}

// PredictRisk forecasts risk for the next timeHours hours from recent history.
func (s *Service) PredictRisk(ctx context.Context, location string, timeHours int) *analysis.RiskPrediction {
	reports, err := s.db.GetRecentReports(ctx, s.riskHistoryLimit)
	if err != nil {
		log.WithError(err).Error("Failed to load reports for risk prediction")
		return analysis.DefaultRiskPrediction(riskTimeFrame(timeHours))
	}

	riskCtx := RiskContext{
		RecentIncidents: len(reports),
		SeverityPattern: map[string]int{},
		TimePatterns:    map[string]int{},
		LocationFocus:   location,
	}
	for _, report := range reports {
		severity := report.Severity
		if severity == "" {
			severity = models.SeverityMedium
		}
		riskCtx.SeverityPattern[severity]++
		riskCtx.TimePatterns[report.CreatedAt.Format("15")]++
	}

	return s.analyzer.PredictRisk(riskCtx, location, timeHours)
}

// GenerateDashboardInsights combines trends, predictions, and headline stats.
func (s *Service) GenerateDashboardInsights(ctx context.Context, trendDays, riskHours int) *DashboardInsights {
	insights := &DashboardInsights{
		Trends:      s.AnalyzeTrends(ctx, trendDays),
		Predictions: s.PredictRisk(ctx, "", riskHours),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	totalReports, err := s.db.CountReports(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count reports for dashboard")
	}
	activeAlerts, err := s.db.CountActiveAlerts(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count active alerts for dashboard")
	}
	recent24h, err := s.db.CountReportsSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		log.WithError(err).Error("Failed to count recent reports for dashboard")
	}

	insights.SummaryStats = SummaryStats{
		TotalReports: totalReports,
		ActiveAlerts: activeAlerts,
		Recent24h:    recent24h,
	}
	return insights
}

func riskTimeFrame(timeHours int) string {
	return fmt.Sprintf("Next %d hours", timeHours)
}
