package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	slackapi "github.com/slack-go/slack"

	"crisis-response-service/config"
	"crisis-response-service/metrics"
	"crisis-response-service/models"
)

// IntegrationStatus describes the Slack channel health for the status endpoint.
type IntegrationStatus struct {
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"`
	Team    string `json:"team,omitempty"`
	User    string `json:"user,omitempty"`
	Channel string `json:"channel,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Service posts emergency coordination messages to a Slack channel. A nil
// client means the integration is disabled and every send returns false.
type Service struct {
	client    *slackapi.Client
	channelID string
}

// NewService builds the Slack service. Missing credentials disable the channel.
func NewService(cfg *config.Config) *Service {
	if cfg.SlackBotToken == "" || cfg.SlackChannelID == "" {
		log.Info("Slack credentials not configured, Slack channel disabled")
		return &Service{}
	}
	return &Service{
		client:    slackapi.New(cfg.SlackBotToken),
		channelID: cfg.SlackChannelID,
	}
}

// Enabled reports whether the Slack channel is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// SendEmergencyReport posts a rich Block Kit message for a new emergency
// report. Returns false when disabled or on any API error.
func (s *Service) SendEmergencyReport(report *models.EmergencyReport, reporterName string) bool {
	if s.client == nil {
		return false
	}

	if reporterName == "" {
		reporterName = "Unknown"
	}
	location := report.Location
	if location == "" {
		location = "Not specified"
	}

	header := slackapi.NewHeaderBlock(slackapi.NewTextBlockObject(
		slackapi.PlainTextType,
		fmt.Sprintf("EMERGENCY ALERT - %s", strings.ToUpper(report.Severity)),
		false, false))

	fields := []*slackapi.TextBlockObject{
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Title:*\n%s", report.Title), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Reporter:*\n%s", reporterName), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Location:*\n%s", location), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Time:*\n%s", report.CreatedAt.Format("2006-01-02 15:04:05")), false, false),
	}
	details := slackapi.NewSectionBlock(nil, fields, nil)

	description := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Description:*\n%s", report.Description), false, false),
		nil, nil)

	blocks := []slackapi.Block{header, details, description}

	if report.AIAnalysis != "" {
		blocks = append(blocks, slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType,
				fmt.Sprintf("*AI Analysis:*\n```%s```", report.AIAnalysis), false, false),
			nil, nil))
	}

	dispatch := slackapi.NewButtonBlockElement("dispatch", fmt.Sprintf("dispatch_%d", report.ID),
		slackapi.NewTextBlockObject(slackapi.PlainTextType, "Dispatch Response Team", false, false))
	dispatch.Style = slackapi.StyleDanger
	contact := slackapi.NewButtonBlockElement("contact", fmt.Sprintf("contact_%d", report.ID),
		slackapi.NewTextBlockObject(slackapi.PlainTextType, "Contact Reporter", false, false))
	resolve := slackapi.NewButtonBlockElement("resolve", fmt.Sprintf("resolve_%d", report.ID),
		slackapi.NewTextBlockObject(slackapi.PlainTextType, "Mark Resolved", false, false))
	resolve.Style = slackapi.StylePrimary
	blocks = append(blocks, slackapi.NewActionBlock("report_actions", dispatch, contact, resolve))

	_, ts, err := s.client.PostMessage(s.channelID,
		slackapi.MsgOptionText(fmt.Sprintf("Emergency Alert: %s", report.Title), false),
		slackapi.MsgOptionBlocks(blocks...))
	if err != nil {
		log.WithError(err).Error("Failed to send emergency report to Slack")
		metrics.NotificationsTotal.WithLabelValues("slack", "error").Inc()
		return false
	}

	log.Infof("Emergency sent to Slack: %s", ts)
	metrics.NotificationsTotal.WithLabelValues("slack", "success").Inc()
	return true
}

// SendAlert posts a plain-text system alert.
func (s *Service) SendAlert(alert *models.Alert) bool {
	if s.client == nil {
		return false
	}

	alertType := alert.AlertType
	if alertType == "" {
		alertType = "General"
	}
	location := alert.Location
	if location == "" {
		location = "Area-wide"
	}

	message := fmt.Sprintf(`*SYSTEM ALERT*

*%s*

Type: %s
Severity: %s
Location: %s

%s

Generated: %s`,
		alert.Title,
		alertType,
		strings.ToUpper(alert.Severity),
		location,
		alert.Description,
		alert.CreatedAt.Format("2006-01-02 15:04:05"),
	)

	_, ts, err := s.client.PostMessage(s.channelID, slackapi.MsgOptionText(message, false))
	if err != nil {
		log.WithError(err).Error("Failed to send alert to Slack")
		metrics.NotificationsTotal.WithLabelValues("slack", "error").Inc()
		return false
	}

	log.Infof("Alert sent to Slack: %s", ts)
	metrics.NotificationsTotal.WithLabelValues("slack", "success").Inc()
	return true
}

// DailySummary holds the statistics posted by SendDailySummary.
type DailySummary struct {
	Date            time.Time
	TotalReports    int
	CriticalReports int
	ActiveAlerts    int
}

// SendDailySummary posts the daily statistics digest.
func (s *Service) SendDailySummary(summary DailySummary) bool {
	if s.client == nil {
		return false
	}

	message := fmt.Sprintf(`*Daily Emergency Summary* - %s

Total Reports: %d
Critical Incidents: %d
Active Alerts: %d

Crisis Navigator is monitoring and coordinating emergency response efforts.
Stay safe!`,
		summary.Date.Format("January 02, 2006"),
		summary.TotalReports,
		summary.CriticalReports,
		summary.ActiveAlerts,
	)

	_, ts, err := s.client.PostMessage(s.channelID, slackapi.MsgOptionText(message, false))
	if err != nil {
		log.WithError(err).Error("Failed to send daily summary to Slack")
		metrics.NotificationsTotal.WithLabelValues("slack", "error").Inc()
		return false
	}

	log.Infof("Daily summary sent to Slack: %s", ts)
	metrics.NotificationsTotal.WithLabelValues("slack", "success").Inc()
	return true
}

// Status probes the Slack connection for the integration status endpoint.
func (s *Service) Status() IntegrationStatus {
	if s.client == nil {
		return IntegrationStatus{
			Enabled: false,
			Status:  "Not configured",
			Error:   "Missing Slack credentials",
		}
	}

	resp, err := s.client.AuthTest()
	if err != nil {
		return IntegrationStatus{
			Enabled: false,
			Status:  "Connection failed",
			Error:   err.Error(),
		}
	}

	return IntegrationStatus{
		Enabled: true,
		Status:  "Connected",
		Team:    resp.Team,
		User:    resp.User,
		Channel: s.channelID,
	}
}
