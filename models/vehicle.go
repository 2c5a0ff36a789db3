package models

import "time"

// Vehicle is a stored vehicle record. Spec values arrive from ingestion as
// noisy strings (units, "N/A", locale separators) and are normalized by the
// context builder, not here.
type Vehicle struct {
	ID         string            `json:"id"`
	Make       string            `json:"make"`
	Model      string            `json:"model"`
	Year       int               `json:"year"`
	Trim       string            `json:"trim"`
	Series     string            `json:"series"`
	VIN        string            `json:"vin"`
	BodyType   string            `json:"body_type"`
	FuelType   string            `json:"fuel_type"`
	Drivetrain string            `json:"drivetrain"`
	Color      string            `json:"color"`
	MileageKM  string            `json:"mileage_km"`
	Price      string            `json:"price"`
	RawSpecs   map[string]string `json:"raw_specs"`
	CreatedAt  time.Time         `json:"created_at"`
}

// VehicleOverrides carries dealer-supplied request fields that win over the
// stored record when both are present.
type VehicleOverrides struct {
	Color     string `json:"color,omitempty"`
	MileageKM string `json:"mileage_km,omitempty"`
	Price     string `json:"price,omitempty"`
}
