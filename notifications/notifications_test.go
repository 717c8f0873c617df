package notifications

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crisis-response-service/models"
)

type fakeSMS struct {
	enabled       bool
	emergencySent []string
	statusSent    []string
}

func (f *fakeSMS) Enabled() bool { return f.enabled }

func (f *fakeSMS) SendEmergencySMS(phoneNumber string, report *models.EmergencyReport) bool {
	f.emergencySent = append(f.emergencySent, phoneNumber)
	return true
}

func (f *fakeSMS) SendStatusUpdateSMS(phoneNumber string, reportID int64, newStatus string) bool {
	f.statusSent = append(f.statusSent, phoneNumber)
	return true
}

type fakeTeam struct {
	enabled bool
	calls   int
}

func (f *fakeTeam) Enabled() bool { return f.enabled }

func (f *fakeTeam) SendEmergencyReport(report *models.EmergencyReport, reporterName string) bool {
	f.calls++
	return f.enabled
}

type fakeDirectory struct {
	users []models.User
	err   error
}

func (f *fakeDirectory) GetUsersWithPhone(ctx context.Context, limit int) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.users) > limit {
		return f.users[:limit], nil
	}
	return f.users, nil
}

func testReport(severity string) *models.EmergencyReport {
	return &models.EmergencyReport{
		ID:       7,
		UserID:   3,
		Title:    "Warehouse fire",
		Severity: severity,
		Location: "5th and Main",
	}
}

func newTestDispatcher(t *testing.T, sms *fakeSMS, team *fakeTeam, dir *fakeDirectory) (*Dispatcher, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "notifications.log")
	return NewDispatcher(sms, team, NewLocalLog(logPath), dir, 50), logPath
}

func logLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestNotifyNewReportSeverityGating(t *testing.T) {
	tests := []struct {
		severity     string
		wantReporter bool
		wantBulk     bool
	}{
		{severity: models.SeverityLow, wantReporter: false, wantBulk: false},
		{severity: models.SeverityMedium, wantReporter: false, wantBulk: false},
		{severity: models.SeverityHigh, wantReporter: true, wantBulk: false},
		{severity: models.SeverityCritical, wantReporter: true, wantBulk: true},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			sms := &fakeSMS{enabled: true}
			team := &fakeTeam{enabled: true}
			dir := &fakeDirectory{users: []models.User{
				{ID: 10, Username: "alice", Phone: "+15550000001"},
				{ID: 11, Username: "bob", Phone: "+15550000002"},
			}}
			d, _ := newTestDispatcher(t, sms, team, dir)

			reporter := &models.User{ID: 3, Username: "carol", Phone: "+15550000099"}
			d.NotifyNewReport(context.Background(), testReport(tt.severity), reporter)

			gotReporter := false
			gotBulk := 0
			for _, phone := range sms.emergencySent {
				if phone == reporter.Phone {
					gotReporter = true
				} else {
					gotBulk++
				}
			}

			if gotReporter != tt.wantReporter {
				t.Errorf("reporter SMS sent = %v, want %v", gotReporter, tt.wantReporter)
			}
			if tt.wantBulk && gotBulk != len(dir.users) {
				t.Errorf("bulk SMS count = %d, want %d", gotBulk, len(dir.users))
			}
			if !tt.wantBulk && gotBulk != 0 {
				t.Errorf("bulk SMS count = %d, want 0", gotBulk)
			}
		})
	}
}

func TestNotifyNewReportReporterWithoutPhone(t *testing.T) {
	sms := &fakeSMS{enabled: true}
	team := &fakeTeam{enabled: true}
	d, _ := newTestDispatcher(t, sms, team, &fakeDirectory{})

	d.NotifyNewReport(context.Background(), testReport(models.SeverityHigh), &models.User{ID: 3, Username: "carol"})

	if len(sms.emergencySent) != 0 {
		t.Errorf("emergency SMS sent = %v, want none", sms.emergencySent)
	}
}

func TestNotifyNewReportLocalLogFallback(t *testing.T) {
	sms := &fakeSMS{enabled: false}
	team := &fakeTeam{enabled: false}
	d, logPath := newTestDispatcher(t, sms, team, &fakeDirectory{})

	d.NotifyNewReport(context.Background(), testReport(models.SeverityMedium), &models.User{ID: 3, Username: "carol"})

	lines := logLines(t, logPath)
	if len(lines) != 1 {
		t.Fatalf("local log lines = %d, want exactly 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "EMERGENCY: Warehouse fire") {
		t.Errorf("local log line = %q", lines[0])
	}
	if !strings.Contains(lines[0], "Severity: medium") {
		t.Errorf("local log line missing severity: %q", lines[0])
	}
	if team.calls != 1 {
		t.Errorf("team channel calls = %d, want 1", team.calls)
	}
}

func TestNotifyNewReportNoLocalLogWhenTeamDelivers(t *testing.T) {
	sms := &fakeSMS{enabled: false}
	team := &fakeTeam{enabled: true}
	d, logPath := newTestDispatcher(t, sms, team, &fakeDirectory{})

	d.NotifyNewReport(context.Background(), testReport(models.SeverityMedium), &models.User{ID: 3, Username: "carol"})

	if lines := logLines(t, logPath); len(lines) != 0 {
		t.Errorf("local log lines = %v, want none", lines)
	}
}

func TestSendBulkEmergencyAlerts(t *testing.T) {
	t.Run("SMS disabled", func(t *testing.T) {
		sms := &fakeSMS{enabled: false}
		d, _ := newTestDispatcher(t, sms, &fakeTeam{enabled: true}, &fakeDirectory{
			users: []models.User{{Phone: "+15550000001"}},
		})

		if sent := d.SendBulkEmergencyAlerts(context.Background(), testReport(models.SeverityCritical), 10); sent != 0 {
			t.Errorf("sent = %d, want 0", sent)
		}
	})

	t.Run("directory error", func(t *testing.T) {
		sms := &fakeSMS{enabled: true}
		d, _ := newTestDispatcher(t, sms, &fakeTeam{enabled: true}, &fakeDirectory{err: errors.New("db down")})

		if sent := d.SendBulkEmergencyAlerts(context.Background(), testReport(models.SeverityCritical), 10); sent != 0 {
			t.Errorf("sent = %d, want 0", sent)
		}
	})

	t.Run("counts deliveries", func(t *testing.T) {
		sms := &fakeSMS{enabled: true}
		d, _ := newTestDispatcher(t, sms, &fakeTeam{enabled: true}, &fakeDirectory{
			users: []models.User{{Phone: "+15550000001"}, {Phone: "+15550000002"}, {Phone: "+15550000003"}},
		})

		if sent := d.SendBulkEmergencyAlerts(context.Background(), testReport(models.SeverityCritical), 10); sent != 3 {
			t.Errorf("sent = %d, want 3", sent)
		}
	})
}

func TestNotifyStatusUpdate(t *testing.T) {
	sms := &fakeSMS{enabled: true}
	d, _ := newTestDispatcher(t, sms, &fakeTeam{enabled: true}, &fakeDirectory{})

	d.NotifyStatusUpdate(&models.User{Phone: "+15550000099"}, 7, models.StatusResolved)
	d.NotifyStatusUpdate(&models.User{}, 7, models.StatusResolved)
	d.NotifyStatusUpdate(nil, 7, models.StatusResolved)

	if len(sms.statusSent) != 1 {
		t.Errorf("status SMS sent = %v, want exactly one", sms.statusSent)
	}
}

func TestLocalLogAppends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "notifications.log")
	local := NewLocalLog(logPath)

	if !local.Notify(testReport(models.SeverityCritical)) {
		t.Fatal("Notify() = false")
	}
	if !local.Notify(testReport(models.SeverityLow)) {
		t.Fatal("Notify() = false")
	}

	lines := logLines(t, logPath)
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "Severity: critical") || !strings.Contains(lines[1], "Severity: low") {
		t.Errorf("log lines = %v", lines)
	}
}
