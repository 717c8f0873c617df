package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crisis-response-service/models"
)

const reportColumns = "id, user_id, title, description, location, latitude, longitude, image IS NOT NULL AND LENGTH(image) > 0, severity, status, ai_analysis, created_at, updated_at"

func scanReport(scanner interface{ Scan(...any) error }) (*models.EmergencyReport, error) {
	var report models.EmergencyReport
	var location, aiAnalysis sql.NullString
	var latitude, longitude sql.NullFloat64

	err := scanner.Scan(
		&report.ID,
		&report.UserID,
		&report.Title,
		&report.Description,
		&location,
		&latitude,
		&longitude,
		&report.HasImage,
		&report.Severity,
		&report.Status,
		&aiAnalysis,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.Location = location.String
	report.AIAnalysis = aiAnalysis.String
	if latitude.Valid {
		report.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		report.Longitude = &longitude.Float64
	}
	return &report, nil
}

// InsertReport stores a new emergency report and returns its ID
func (d *Database) InsertReport(ctx context.Context, report *models.EmergencyReport) (int64, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO emergency_reports (user_id, title, description, location, latitude, longitude, image, severity, status, ai_analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.UserID,
		report.Title,
		report.Description,
		report.Location,
		report.Latitude,
		report.Longitude,
		report.Image,
		report.Severity,
		report.Status,
		report.AIAnalysis,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted report id: %w", err)
	}
	return id, nil
}

// GetReport retrieves a single report by ID
func (d *Database) GetReport(ctx context.Context, reportID int64) (*models.EmergencyReport, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM emergency_reports WHERE id = ?", reportID)

	report, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("report not found")
		}
		return nil, fmt.Errorf("failed to fetch report %d: %w", reportID, err)
	}
	return report, nil
}

// GetReportImage gets only the image data for a report
func (d *Database) GetReportImage(ctx context.Context, reportID int64) ([]byte, error) {
	var image []byte
	err := d.db.QueryRowContext(ctx,
		"SELECT image FROM emergency_reports WHERE id = ?", reportID).Scan(&image)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("report not found")
		}
		return nil, fmt.Errorf("failed to fetch image for report %d: %w", reportID, err)
	}
	return image, nil
}

// GetUserReports returns a user's most recent reports, newest first
func (d *Database) GetUserReports(ctx context.Context, userID int64, limit int) ([]models.EmergencyReport, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM emergency_reports WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// GetGeolocatedReports returns all reports that carry both coordinates
func (d *Database) GetGeolocatedReports(ctx context.Context) ([]models.EmergencyReport, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM emergency_reports WHERE latitude IS NOT NULL AND longitude IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to query geolocated reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// GetReportsSince returns reports created at or after the cutoff
func (d *Database) GetReportsSince(ctx context.Context, cutoff time.Time) ([]models.EmergencyReport, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM emergency_reports WHERE created_at >= ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports since %v: %w", cutoff, err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// GetRecentReports returns the most recent reports, newest first, capped at limit
func (d *Database) GetRecentReports(ctx context.Context, limit int) ([]models.EmergencyReport, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM emergency_reports ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// CountReports returns the total number of reports
func (d *Database) CountReports(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emergency_reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// CountReportsSince returns the number of reports created at or after the cutoff
func (d *Database) CountReportsSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM emergency_reports WHERE created_at >= ?", cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent reports: %w", err)
	}
	return count, nil
}

// UpdateReportStatus changes a report's status
func (d *Database) UpdateReportStatus(ctx context.Context, reportID int64, status string) error {
	result, err := d.db.ExecContext(ctx,
		"UPDATE emergency_reports SET status = ?, updated_at = NOW() WHERE id = ?",
		status, reportID)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errors.New("report not found")
	}
	return nil
}

func collectReports(rows *sql.Rows) ([]models.EmergencyReport, error) {
	var reports []models.EmergencyReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}
