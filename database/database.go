package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/apex/log"

	"vehicle-story-pipeline/config"

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
		} else {
			log.WithError(err).Warnf("database connection failed, retrying in %v", waitInterval)
		}
		time.Sleep(waitInterval)
		waitInterval *= 2 // Exponential backoff: 1s, 2s, 4s, 8s, ...
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewFromDB wraps an existing connection, used by tests.
func NewFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping verifies the connection is alive.
func (d *Database) Ping() error {
	return d.db.Ping()
}

// CreateTables creates the service tables if they don't exist
func (d *Database) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
			id VARCHAR(64) PRIMARY KEY,
			make VARCHAR(100) NOT NULL,
			model VARCHAR(100) NOT NULL,
			year INT NOT NULL,
			trim VARCHAR(100) DEFAULT '',
			series VARCHAR(100) DEFAULT '',
			vin VARCHAR(32) DEFAULT '',
			body_type VARCHAR(50) DEFAULT '',
			fuel_type VARCHAR(50) DEFAULT '',
			drivetrain VARCHAR(50) DEFAULT '',
			color VARCHAR(50) DEFAULT '',
			mileage_km VARCHAR(50) DEFAULT '',
			price VARCHAR(50) DEFAULT '',
			raw_specs JSON,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_vehicles_make_model (make, model)
		)`,
		`CREATE TABLE IF NOT EXISTS story_runs (
			id VARCHAR(64) PRIMARY KEY,
			story_id VARCHAR(64) NOT NULL,
			vehicle_id VARCHAR(64) NOT NULL,
			status ENUM('processing', 'complete', 'failed') DEFAULT 'processing',
			stage VARCHAR(50) NOT NULL DEFAULT 'Queued',
			log_messages JSON,
			error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_story_runs_vehicle (vehicle_id),
			INDEX idx_story_runs_status (status)
		)`,
		`CREATE TABLE IF NOT EXISTS stories (
			id VARCHAR(64) PRIMARY KEY,
			vehicle_id VARCHAR(64) NOT NULL,
			artifact JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_stories_vehicle (vehicle_id)
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Info("service tables created/verified successfully")
	return nil
}
