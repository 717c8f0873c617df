package notifications

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/apex/log"

	"crisis-response-service/metrics"
	"crisis-response-service/models"
)

// SMSSender is the SMS channel used by the dispatcher.
type SMSSender interface {
	Enabled() bool
	SendEmergencySMS(phoneNumber string, report *models.EmergencyReport) bool
	SendStatusUpdateSMS(phoneNumber string, reportID int64, newStatus string) bool
}

// TeamSender is the team coordination channel (Slack).
type TeamSender interface {
	Enabled() bool
	SendEmergencyReport(report *models.EmergencyReport, reporterName string) bool
}

// UserDirectory looks up bulk SMS recipients.
type UserDirectory interface {
	GetUsersWithPhone(ctx context.Context, limit int) ([]models.User, error)
}

// LocalLog is the append-only fallback channel used when the team channel is
// unavailable. Writes are serialized; a failed write is logged and swallowed.
type LocalLog struct {
	mu   sync.Mutex
	path string
}

func NewLocalLog(path string) *LocalLog {
	return &LocalLog{path: path}
}

// Notify appends exactly one line describing the emergency.
func (l *LocalLog) Notify(report *models.EmergencyReport) bool {
	location := report.Location
	if location == "" {
		location = "N/A"
	}
	entry := fmt.Sprintf("[%s] EMERGENCY: %s | Severity: %s | UserID: %d | Location: %s\n",
		time.Now().UTC().Format(time.RFC3339), report.Title, report.Severity, report.UserID, location)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.WithError(err).Error("Failed to open local notification log")
		metrics.NotificationsTotal.WithLabelValues("local", "error").Inc()
		return false
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		log.WithError(err).Error("Failed to write local notification")
		metrics.NotificationsTotal.WithLabelValues("local", "error").Inc()
		return false
	}

	log.Infof("Local notification logged: %s", entry[:len(entry)-1])
	metrics.NotificationsTotal.WithLabelValues("local", "success").Inc()
	return true
}

// Dispatcher fans a new emergency report out to the configured channels.
// Every channel failure is swallowed; report submission never fails because
// a notification could not be delivered.
type Dispatcher struct {
	sms       SMSSender
	team      TeamSender
	local     *LocalLog
	users     UserDirectory
	bulkLimit int
}

func NewDispatcher(sms SMSSender, team TeamSender, local *LocalLog, users UserDirectory, bulkLimit int) *Dispatcher {
	return &Dispatcher{
		sms:       sms,
		team:      team,
		local:     local,
		users:     users,
		bulkLimit: bulkLimit,
	}
}

// NotifyNewReport runs the full fan-out for a freshly submitted report:
// reporter SMS for high and critical severity, bulk SMS for critical, and a
// team message with local-log fallback.
func (d *Dispatcher) NotifyNewReport(ctx context.Context, report *models.EmergencyReport, reporter *models.User) {
	if report.Severity == models.SeverityCritical || report.Severity == models.SeverityHigh {
		if reporter != nil && reporter.Phone != "" {
			d.sms.SendEmergencySMS(reporter.Phone, report)
		}

		if report.Severity == models.SeverityCritical {
			sent := d.SendBulkEmergencyAlerts(ctx, report, 10)
			log.Infof("Sent %d emergency SMS alerts", sent)
		}
	}

	// Notify team: Slack if available else local log
	reporterName := ""
	if reporter != nil {
		reporterName = reporter.Username
	}
	if !d.team.SendEmergencyReport(report, reporterName) {
		d.local.Notify(report)
	}
}

// SendBulkEmergencyAlerts sends the report to every user with a phone number
// on file, capped at the configured recipient limit. The radius parameter is
// accepted for API compatibility; recipients are not filtered by distance
// because user accounts carry no coordinates.
func (d *Dispatcher) SendBulkEmergencyAlerts(ctx context.Context, report *models.EmergencyReport, radiusKm float64) int {
	if !d.sms.Enabled() {
		return 0
	}

	users, err := d.users.GetUsersWithPhone(ctx, d.bulkLimit)
	if err != nil {
		log.WithError(err).Error("Failed to load bulk SMS recipients")
		return 0
	}

	sent := 0
	for _, user := range users {
		if d.sms.SendEmergencySMS(user.Phone, report) {
			sent++
		}
	}
	return sent
}

// NotifyStatusUpdate sends the reporter an SMS about their report's new status.
func (d *Dispatcher) NotifyStatusUpdate(reporter *models.User, reportID int64, newStatus string) {
	if reporter == nil || reporter.Phone == "" {
		return
	}
	d.sms.SendStatusUpdateSMS(reporter.Phone, reportID, newStatus)
}
