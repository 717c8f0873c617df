package database

import (
	"context"
	"database/sql"
	"fmt"

	"crisis-response-service/models"
)

// GetActiveShelters returns all active shelters
func (d *Database) GetActiveShelters(ctx context.Context) ([]models.Shelter, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, address, latitude, longitude, capacity, current_occupancy,
		       shelter_type, contact_phone, facilities, active, created_at
		FROM shelters WHERE active = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active shelters: %w", err)
	}
	defer rows.Close()

	var shelters []models.Shelter
	for rows.Next() {
		var shelter models.Shelter
		var shelterType, contactPhone, facilities sql.NullString
		err := rows.Scan(
			&shelter.ID,
			&shelter.Name,
			&shelter.Address,
			&shelter.Latitude,
			&shelter.Longitude,
			&shelter.Capacity,
			&shelter.CurrentOccupancy,
			&shelterType,
			&contactPhone,
			&facilities,
			&shelter.Active,
			&shelter.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shelter: %w", err)
		}
		shelter.ShelterType = shelterType.String
		shelter.ContactPhone = contactPhone.String
		shelter.Facilities = facilities.String
		shelters = append(shelters, shelter)
	}
	return shelters, rows.Err()
}

// InsertShelter stores a new shelter and returns its ID
func (d *Database) InsertShelter(ctx context.Context, shelter *models.Shelter) (int64, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO shelters (name, address, latitude, longitude, capacity, current_occupancy, shelter_type, contact_phone, facilities, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shelter.Name,
		shelter.Address,
		shelter.Latitude,
		shelter.Longitude,
		shelter.Capacity,
		shelter.CurrentOccupancy,
		shelter.ShelterType,
		shelter.ContactPhone,
		shelter.Facilities,
		shelter.Active,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shelter: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted shelter id: %w", err)
	}
	return id, nil
}
