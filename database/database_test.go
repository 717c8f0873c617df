package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisis-response-service/models"
)

var (
	testDB *Database
	mock   sqlmock.Sqlmock
)

func setUp() {
	var db *sql.DB
	db, mock, _ = sqlmock.New()
	testDB = NewDatabaseFromDB(db)
}

func tearDown() {
	testDB.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var reportRowColumns = []string{
	"id", "user_id", "title", "description", "location", "latitude", "longitude",
	"has_image", "severity", "status", "ai_analysis", "created_at", "updated_at",
}

func TestInsertReport(t *testing.T) {
	it(func() {
		lat, lng := 40.7128, -74.006
		report := &models.EmergencyReport{
			UserID:      3,
			Title:       "Warehouse fire",
			Description: "Heavy smoke visible",
			Location:    "Downtown",
			Latitude:    &lat,
			Longitude:   &lng,
			Severity:    models.SeverityHigh,
			Status:      models.StatusPending,
			AIAnalysis:  "Severity: HIGH\nCategory: Fire",
		}

		mock.ExpectExec("INSERT INTO emergency_reports (.+)").
			WithArgs(report.UserID, report.Title, report.Description, report.Location,
				report.Latitude, report.Longitude, report.Image, report.Severity,
				report.Status, report.AIAnalysis).
			WillReturnResult(sqlmock.NewResult(42, 1))

		id, err := testDB.InsertReport(context.Background(), report)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})
}

func TestGetReport(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM emergency_reports WHERE id = (.+)").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(reportRowColumns).
				AddRow(42, 3, "Warehouse fire", "Heavy smoke visible", "Downtown",
					40.7128, -74.006, true, "high", "pending", "Category: Fire", now, now))

		report, err := testDB.GetReport(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), report.ID)
		assert.Equal(t, "Warehouse fire", report.Title)
		assert.Equal(t, "high", report.Severity)
		assert.True(t, report.HasImage)
		require.NotNil(t, report.Latitude)
		assert.InDelta(t, 40.7128, *report.Latitude, 1e-9)
	})
}

func TestGetReportNotFound(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT (.+) FROM emergency_reports WHERE id = (.+)").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(reportRowColumns))

		_, err := testDB.GetReport(context.Background(), 99)
		require.Error(t, err)
		assert.Equal(t, "report not found", err.Error())
	})
}

func TestGetUserReportsNullableFields(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM emergency_reports WHERE user_id = (.+) ORDER BY created_at DESC LIMIT (.+)").
			WithArgs(int64(3), 10).
			WillReturnRows(sqlmock.NewRows(reportRowColumns).
				AddRow(1, 3, "No coords", "Report without location", nil,
					nil, nil, false, "low", "pending", nil, now, now))

		reports, err := testDB.GetUserReports(context.Background(), 3, 10)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Nil(t, reports[0].Latitude)
		assert.Nil(t, reports[0].Longitude)
		assert.Empty(t, reports[0].Location)
		assert.Empty(t, reports[0].AIAnalysis)
		assert.False(t, reports[0].HasImage)
	})
}

func TestUpdateReportStatus(t *testing.T) {
	it(func() {
		mock.ExpectExec("UPDATE emergency_reports SET status = (.+) WHERE id = (.+)").
			WithArgs("resolved", int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := testDB.UpdateReportStatus(context.Background(), 42, "resolved")
		assert.NoError(t, err)
	})
}

func TestUpdateReportStatusNotFound(t *testing.T) {
	it(func() {
		mock.ExpectExec("UPDATE emergency_reports SET status = (.+) WHERE id = (.+)").
			WithArgs("resolved", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := testDB.UpdateReportStatus(context.Background(), 99, "resolved")
		require.Error(t, err)
		assert.Equal(t, "report not found", err.Error())
	})
}

func TestUserExistsByUsername(t *testing.T) {
	it(func() {
		testCases := []struct {
			name     string
			exists   bool
			expected bool
		}{
			{name: "user exists", exists: true, expected: true},
			{name: "user missing", exists: false, expected: false},
		}

		for _, tc := range testCases {
			mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE username = (.+)\\)").
				WithArgs("carol").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tc.exists))

			exists, err := testDB.UserExistsByUsername(context.Background(), "carol")
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.expected, exists, tc.name)
		}
	})
}

func TestGetUserCredentials(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT id, password_hash FROM users WHERE username = (.+)").
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).
				AddRow(3, "$2a$10$hash"))

		userID, hash, err := testDB.GetUserCredentials(context.Background(), "carol")
		require.NoError(t, err)
		assert.Equal(t, int64(3), userID)
		assert.Equal(t, "$2a$10$hash", hash)
	})
}

func TestGetUserCredentialsUnknownUser(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT id, password_hash FROM users WHERE username = (.+)").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))

		_, _, err := testDB.GetUserCredentials(context.Background(), "nobody")
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})
}

func TestGetUsersWithPhone(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone IS NOT NULL AND phone != '' LIMIT (.+)").
			WithArgs(50).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "phone", "location", "created_at"}).
				AddRow(1, "alice", "alice@example.com", "+15550000001", "Downtown", now).
				AddRow(2, "bob", "bob@example.com", "+15550000002", nil, now))

		users, err := testDB.GetUsersWithPhone(context.Background(), 50)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "+15550000001", users[0].Phone)
		assert.Empty(t, users[1].Location)
	})
}

func TestGetActiveAlerts(t *testing.T) {
	it(func() {
		now := time.Now()
		expires := now.Add(6 * time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM alerts WHERE active = TRUE").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "title", "description", "alert_type", "severity", "location",
				"latitude", "longitude", "radius", "active", "created_at", "expires_at",
			}).
				AddRow(1, "Flood warning", "River rising", "weather", "high", "Harbor",
					40.7, -74.0, 25.0, true, now, expires).
				AddRow(2, "City advisory", "Boil water notice", nil, "medium", nil,
					nil, nil, nil, true, now, nil))

		alerts, err := testDB.GetActiveAlerts(context.Background())
		require.NoError(t, err)
		require.Len(t, alerts, 2)

		assert.Equal(t, "Flood warning", alerts[0].Title)
		require.NotNil(t, alerts[0].RadiusKm)
		assert.InDelta(t, 25.0, *alerts[0].RadiusKm, 1e-9)
		require.NotNil(t, alerts[0].ExpiresAt)

		assert.Nil(t, alerts[1].Latitude)
		assert.Nil(t, alerts[1].RadiusKm)
		assert.Nil(t, alerts[1].ExpiresAt)
	})
}

func TestGetActiveShelters(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM shelters WHERE active = TRUE").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "address", "latitude", "longitude", "capacity",
				"current_occupancy", "shelter_type", "contact_phone", "facilities",
				"active", "created_at",
			}).
				AddRow(1, "Central High School", "100 Main St", 40.71, -74.0, 300, 40,
					"school", "+15550001111", "cots,water,medical", true, now))

		shelters, err := testDB.GetActiveShelters(context.Background())
		require.NoError(t, err)
		require.Len(t, shelters, 1)
		assert.Equal(t, "Central High School", shelters[0].Name)
		assert.Equal(t, 300, shelters[0].Capacity)
	})
}
