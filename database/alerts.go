package database

import (
	"context"
	"database/sql"
	"fmt"

	"crisis-response-service/models"
)

const alertColumns = "id, title, description, alert_type, severity, location, latitude, longitude, radius, active, created_at, expires_at"

func scanAlert(scanner interface{ Scan(...any) error }) (*models.Alert, error) {
	var alert models.Alert
	var alertType, location sql.NullString
	var latitude, longitude, radius sql.NullFloat64
	var expiresAt sql.NullTime

	err := scanner.Scan(
		&alert.ID,
		&alert.Title,
		&alert.Description,
		&alertType,
		&alert.Severity,
		&location,
		&latitude,
		&longitude,
		&radius,
		&alert.Active,
		&alert.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	alert.AlertType = alertType.String
	alert.Location = location.String
	if latitude.Valid {
		alert.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		alert.Longitude = &longitude.Float64
	}
	if radius.Valid {
		alert.RadiusKm = &radius.Float64
	}
	if expiresAt.Valid {
		alert.ExpiresAt = &expiresAt.Time
	}
	return &alert, nil
}

// InsertAlert stores a new alert and returns its ID
func (d *Database) InsertAlert(ctx context.Context, alert *models.Alert) (int64, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO alerts (title, description, alert_type, severity, location, latitude, longitude, radius, active, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.Title,
		alert.Description,
		alert.AlertType,
		alert.Severity,
		alert.Location,
		alert.Latitude,
		alert.Longitude,
		alert.RadiusKm,
		alert.Active,
		alert.ExpiresAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted alert id: %w", err)
	}
	return id, nil
}

// GetActiveAlerts returns all active alerts
func (d *Database) GetActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+alertColumns+" FROM alerts WHERE active = TRUE")
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// GetRecentActiveAlerts returns the newest active alerts, capped at limit
func (d *Database) GetRecentActiveAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+alertColumns+" FROM alerts WHERE active = TRUE ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// CountActiveAlerts returns the number of active alerts
func (d *Database) CountActiveAlerts(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alerts WHERE active = TRUE").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active alerts: %w", err)
	}
	return count, nil
}

func collectAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}
