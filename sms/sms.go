package sms

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"crisis-response-service/config"
	"crisis-response-service/metrics"
	"crisis-response-service/models"
)

var severityTags = map[string]string{
	models.SeverityCritical: "[CRITICAL]",
	models.SeverityHigh:     "[HIGH]",
	models.SeverityMedium:   "[NOTICE]",
	models.SeverityLow:      "[INFO]",
}

// Service sends SMS alerts through Twilio. A nil client means the SMS channel
// is disabled and every send becomes a no-op returning false.
type Service struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewService builds the SMS service. Missing Twilio credentials disable the channel.
func NewService(cfg *config.Config) *Service {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		log.Info("Twilio credentials not configured, SMS channel disabled")
		return &Service{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &Service{client: client, fromNumber: cfg.TwilioFromNumber}
}

// Enabled reports whether the SMS channel is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// SendEmergencySMS sends an alert for an emergency report to one phone number.
func (s *Service) SendEmergencySMS(phoneNumber string, report *models.EmergencyReport) bool {
	if s.client == nil || phoneNumber == "" {
		return false
	}
	return s.send(phoneNumber, emergencyBody(report), "emergency")
}

func emergencyBody(report *models.EmergencyReport) string {
	tag := severityTags[report.Severity]
	if tag == "" {
		tag = "[NOTICE]"
	}

	location := report.Location
	if location == "" {
		location = "Location unknown"
	}

	description := report.Description
	suffix := ""
	if runes := []rune(description); len(runes) > 100 {
		description = string(runes[:100])
		suffix = "..."
	}

	body := fmt.Sprintf(`%s EMERGENCY ALERT
%s PRIORITY

Title: %s
Location: %s
Time: %s

Description: %s%s

Crisis Navigator - Immediate response required`,
		tag,
		strings.ToUpper(report.Severity),
		report.Title,
		location,
		report.CreatedAt.Format("01/02/2006 03:04 PM"),
		description,
		suffix,
	)
	return body
}

// SendStatusUpdateSMS notifies a reporter when their report's status changes.
func (s *Service) SendStatusUpdateSMS(phoneNumber string, reportID int64, newStatus string) bool {
	if s.client == nil || phoneNumber == "" {
		return false
	}

	statusLine := fmt.Sprintf("Status updated to: %s", newStatus)
	switch newStatus {
	case models.StatusInProgress:
		statusLine = "Emergency responders have been dispatched to your location"
	case models.StatusResolved:
		statusLine = "Emergency situation has been resolved. Stay safe!"
	}

	body := fmt.Sprintf(`Crisis Navigator Update

Emergency Report #%d
Status: %s

%s

Thank you for using Crisis Navigator`,
		reportID,
		strings.ToUpper(strings.ReplaceAll(newStatus, "_", " ")),
		statusLine,
	)

	return s.send(phoneNumber, body, "status_update")
}

func (s *Service) send(to, body, kind string) bool {
	params := &twilioapi.CreateMessageParams{}
	params.SetBody(body)
	params.SetFrom(s.fromNumber)
	params.SetTo(to)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.WithError(err).Errorf("Failed to send %s SMS", kind)
		metrics.NotificationsTotal.WithLabelValues("sms", "error").Inc()
		return false
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	log.Infof("SMS sent successfully: %s", sid)
	metrics.NotificationsTotal.WithLabelValues("sms", "success").Inc()
	return true
}
