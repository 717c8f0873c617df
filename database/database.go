package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"crisis-response-service/config"

	_ "github.com/go-sql-driver/mysql"
)

// Database represents the database connection
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	var waitInterval time.Duration = 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break // Connection successful
		}
		log.Printf("Database connection failed, retrying in %v: %v", waitInterval, err)
		time.Sleep(waitInterval)
		waitInterval *= 2 // Exponential backoff: 1s, 2s, 4s, 8s, ...
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewDatabaseFromDB wraps an existing connection, used by tests.
func NewDatabaseFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying sql.DB for direct queries
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// CreateTables creates all service tables if they don't exist
func (d *Database) CreateTables() error {
	queries := []struct {
		name  string
		query string
	}{
		{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(120) NOT NULL UNIQUE,
			phone VARCHAR(20) DEFAULT '',
			location VARCHAR(200) DEFAULT '',
			password_hash VARCHAR(256) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_users_username (username),
			INDEX idx_users_email (email)
		)`},
		{"emergency_reports", `
		CREATE TABLE IF NOT EXISTS emergency_reports (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL,
			location VARCHAR(200) DEFAULT '',
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			image LONGBLOB,
			severity VARCHAR(20) DEFAULT 'medium',
			status VARCHAR(20) DEFAULT 'pending',
			ai_analysis TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_reports_user_id (user_id),
			INDEX idx_reports_severity (severity),
			INDEX idx_reports_status (status),
			INDEX idx_reports_created_at (created_at),
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`},
		{"alerts", `
		CREATE TABLE IF NOT EXISTS alerts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL,
			alert_type VARCHAR(50) DEFAULT '',
			severity VARCHAR(20) DEFAULT 'medium',
			location VARCHAR(200) DEFAULT '',
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			radius DOUBLE NULL,
			active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NULL,
			INDEX idx_alerts_active (active),
			INDEX idx_alerts_severity (severity),
			INDEX idx_alerts_created_at (created_at)
		)`},
		{"shelters", `
		CREATE TABLE IF NOT EXISTS shelters (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			address VARCHAR(300) NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			capacity INT DEFAULT 0,
			current_occupancy INT DEFAULT 0,
			shelter_type VARCHAR(50) DEFAULT '',
			contact_phone VARCHAR(20) DEFAULT '',
			facilities TEXT,
			active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_shelters_active (active)
		)`},
	}

	for _, q := range queries {
		if _, err := d.db.Exec(q.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", q.name, err)
		}
	}

	log.Println("Database tables created/verified successfully")
	return nil
}
