package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/google/uuid"

	"vehicle-story-pipeline/models"
)

// ErrVehicleNotFound is returned when a vehicle id has no row.
var ErrVehicleNotFound = fmt.Errorf("vehicle not found")

// GetVehicle loads one vehicle record by id.
func (d *Database) GetVehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	query := `SELECT id, make, model, year, trim, series, vin, body_type, fuel_type,
		drivetrain, color, mileage_km, price, raw_specs, created_at
		FROM vehicles WHERE id = ?`

	var v models.Vehicle
	var rawSpecs sql.NullString
	err := d.db.QueryRowContext(ctx, query, vehicleID).Scan(
		&v.ID, &v.Make, &v.Model, &v.Year, &v.Trim, &v.Series, &v.VIN,
		&v.BodyType, &v.FuelType, &v.Drivetrain, &v.Color, &v.MileageKM,
		&v.Price, &rawSpecs, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}

	if rawSpecs.Valid && rawSpecs.String != "" {
		if err := json.Unmarshal([]byte(rawSpecs.String), &v.RawSpecs); err != nil {
			log.WithError(err).WithField("vehicle_id", vehicleID).Warn("corrupt raw_specs, ignoring")
			v.RawSpecs = nil
		}
	}
	return &v, nil
}

// CreateVehicle inserts a vehicle record, assigning an id when empty.
func (d *Database) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	rawSpecs, err := json.Marshal(v.RawSpecs)
	if err != nil {
		return fmt.Errorf("failed to marshal raw specs: %w", err)
	}

	query := `INSERT INTO vehicles
		(id, make, model, year, trim, series, vin, body_type, fuel_type, drivetrain, color, mileage_km, price, raw_specs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = d.db.ExecContext(ctx, query,
		v.ID, v.Make, v.Model, v.Year, v.Trim, v.Series, v.VIN, v.BodyType,
		v.FuelType, v.Drivetrain, v.Color, v.MileageKM, v.Price, string(rawSpecs))
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

// SeedDemoVehicle inserts a demo record when the vehicles table is empty so
// a fresh deployment can be exercised immediately.
func (d *Database) SeedDemoVehicle(ctx context.Context) error {
	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&count); err != nil {
		return fmt.Errorf("failed to count vehicles: %w", err)
	}
	if count > 0 {
		return nil
	}

	demo := &models.Vehicle{
		ID:         "demo-octavia",
		Make:       "Skoda",
		Model:      "Octavia",
		Year:       2022,
		Trim:       "RS",
		BodyType:   "Combi",
		FuelType:   "Petrol",
		Drivetrain: "FWD",
		Color:      "Race Blue",
		MileageKM:  "34.500 km",
		Price:      "28,900 EUR",
		RawSpecs: map[string]string{
			"horsepower":    "245 hp",
			"torque":        "370 Nm",
			"0-100":         "6,7 s",
			"top_speed":     "250 km/h",
			"seats":         "5",
			"trunk":         "640 l",
			"airbags":       "9",
			"consumption":   "6,8 l/100km",
			"co2":           "156 g/km",
			"features":      "adaptive cruise control, lane assist, LED matrix headlights, panoramic roof",
			"euro_standard": "6",
		},
	}
	if err := d.CreateVehicle(ctx, demo); err != nil {
		return err
	}
	log.WithField("vehicle_id", demo.ID).Info("seeded demo vehicle")
	return nil
}
