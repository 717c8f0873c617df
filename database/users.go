package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crisis-response-service/models"
)

// UserExistsByUsername checks if a user exists with the given username
func (d *Database) UserExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// UserExistsByEmail checks if a user exists with the given email
func (d *Database) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// InsertUser stores a new user and returns its ID
func (d *Database) InsertUser(ctx context.Context, user *models.User, passwordHash string) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		"INSERT INTO users (username, email, phone, location, password_hash) VALUES (?, ?, ?, ?, ?)",
		user.Username, user.Email, user.Phone, user.Location, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user id: %w", err)
	}
	return id, nil
}

// GetUser retrieves a user by ID
func (d *Database) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	var phone, location sql.NullString

	err := d.db.QueryRowContext(ctx,
		"SELECT id, username, email, phone, location, created_at FROM users WHERE id = ?",
		userID).Scan(&user.ID, &user.Username, &user.Email, &phone, &location, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.Phone = phone.String
	user.Location = location.String
	return &user, nil
}

// GetUserCredentials retrieves the user ID and password hash for a username
func (d *Database) GetUserCredentials(ctx context.Context, username string) (int64, string, error) {
	var userID int64
	var passwordHash string

	err := d.db.QueryRowContext(ctx,
		"SELECT id, password_hash FROM users WHERE username = ?",
		username).Scan(&userID, &passwordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", errors.New("invalid credentials")
		}
		return 0, "", fmt.Errorf("failed to query credentials: %w", err)
	}
	return userID, passwordHash, nil
}

// GetUsersWithPhone returns users that have a phone number on file, capped at limit
func (d *Database) GetUsersWithPhone(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, username, email, phone, location, created_at FROM users WHERE phone IS NOT NULL AND phone != '' LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with phone: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var phone, location sql.NullString
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &phone, &location, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Phone = phone.String
		user.Location = location.String
		users = append(users, user)
	}
	return users, rows.Err()
}
