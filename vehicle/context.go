package vehicle

import (
	"fmt"
	"strings"
	"time"

	"vehicle-story-pipeline/models"
)

// ErrInvalidContext is returned when a built context fails validation. A
// validation failure is fatal for the run, before any external call is made.
var ErrInvalidContext = fmt.Errorf("invalid vehicle context")

// Derived-flag thresholds.
const (
	sportZeroToSixtyMax  = 6.0
	sportHorsepowerMin   = 280.0
	familySeatsMin       = 5
	familyTrunkLitersMin = 400.0
	ecoCombinedMax       = 6.0
)

// PerformanceSpecs holds cleaned performance numbers. Nil means the source
// data had no usable value.
type PerformanceSpecs struct {
	HorsepowerHP   *float64 `json:"horsepower_hp"`
	TorqueNM       *float64 `json:"torque_nm"`
	ZeroToSixtySec *float64 `json:"zero_to_sixty_sec"`
	TopSpeedKPH    *float64 `json:"top_speed_kph"`
}

// EfficiencySpecs holds cleaned efficiency numbers.
type EfficiencySpecs struct {
	CombinedLPer100KM *float64 `json:"combined_l_per_100km"`
	CO2GPerKM         *float64 `json:"co2_g_per_km"`
	RangeKM           *float64 `json:"range_km"`
	BatteryKWH        *float64 `json:"battery_kwh"`
}

// DimensionSpecs holds cleaned dimension numbers.
type DimensionSpecs struct {
	Seats       *float64 `json:"seats"`
	TrunkLiters *float64 `json:"trunk_liters"`
	WeightKG    *float64 `json:"weight_kg"`
}

// SafetySpecs holds cleaned safety numbers.
type SafetySpecs struct {
	Airbags    *float64 `json:"airbags"`
	CrashStars *float64 `json:"crash_stars"`
}

// NormalizedSpecs is the cleaned, typed spec block of the context.
type NormalizedSpecs struct {
	Performance PerformanceSpecs `json:"performance"`
	Efficiency  EfficiencySpecs  `json:"efficiency"`
	Dimensions  DimensionSpecs   `json:"dimensions"`
	Safety      SafetySpecs      `json:"safety"`
}

// Flags are booleans derived from the normalized specs with fixed thresholds.
type Flags struct {
	IsSport         bool   `json:"is_sport"`
	IsFamily        bool   `json:"is_family"`
	IsEco           bool   `json:"is_eco"`
	MileageCategory string `json:"mileage_category"`
}

// Context is the canonical, validated representation of a vehicle used by
// every downstream stage. Built once per run and immutable after validation.
type Context struct {
	Identity       models.CarIdentity `json:"identity"`
	FuelType       string             `json:"fuel_type"`
	Drivetrain     string             `json:"drivetrain"`
	MileageKM      *float64           `json:"mileage_km"`
	Price          *float64           `json:"price"`
	Specs          NormalizedSpecs    `json:"specs"`
	Flags          Flags              `json:"flags"`
	Certifications []models.Badge     `json:"certifications"`
	Raw            map[string]string  `json:"raw"`
}

// IsElectric reports whether the vehicle is battery electric.
func (c *Context) IsElectric() bool {
	fuel := strings.ToLower(c.FuelType)
	return strings.Contains(fuel, "electric") || fuel == "ev" || fuel == "bev"
}

// Build assembles the canonical context from a stored vehicle record and
// request overrides. Dealer-supplied override fields (color, mileage, price)
// win over the stored record. The result is validated before return; a
// validation error aborts the run.
func Build(v *models.Vehicle, overrides models.VehicleOverrides) (*Context, error) {
	color := v.Color
	if overrides.Color != "" {
		color = overrides.Color
	}
	mileage := v.MileageKM
	if overrides.MileageKM != "" {
		mileage = overrides.MileageKM
	}
	price := v.Price
	if overrides.Price != "" {
		price = overrides.Price
	}

	ctx := &Context{
		Identity: models.CarIdentity{
			Make:     strings.TrimSpace(v.Make),
			Model:    strings.TrimSpace(v.Model),
			Year:     v.Year,
			Trim:     strings.TrimSpace(v.Trim),
			VIN:      strings.TrimSpace(v.VIN),
			BodyType: strings.TrimSpace(v.BodyType),
			Color:    strings.TrimSpace(color),
		},
		FuelType:   strings.TrimSpace(v.FuelType),
		Drivetrain: BucketDrivetrain(v.Drivetrain),
		MileageKM:  CleanNumber(mileage),
		Price:      CleanNumber(price),
		Raw:        rawDump(v),
	}

	ctx.Specs = normalizeSpecs(v.RawSpecs)
	ctx.Flags = deriveFlags(ctx)

	if err := ctx.validate(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func rawDump(v *models.Vehicle) map[string]string {
	raw := make(map[string]string, len(v.RawSpecs)+4)
	for k, val := range v.RawSpecs {
		raw[strings.ToLower(k)] = val
	}
	raw["trim"] = v.Trim
	raw["series"] = v.Series
	raw["body_type"] = v.BodyType
	raw["fuel_type"] = v.FuelType
	return raw
}

// specKeys maps each normalized field to the raw spec keys it may arrive
// under. The first key with a usable number wins.
var specKeys = map[string][]string{
	"horsepower":  {"horsepower", "horsepower_hp", "power", "power_hp"},
	"torque":      {"torque", "torque_nm"},
	"zero_sixty":  {"zero_to_sixty", "0-60", "0_60", "acceleration", "acceleration_0_100"},
	"top_speed":   {"top_speed", "top_speed_kph", "vmax"},
	"combined":    {"combined_consumption", "consumption", "combined", "fuel_economy"},
	"co2":         {"co2", "co2_g_km", "co2_emissions", "emissions"},
	"range":       {"range", "range_km", "electric_range"},
	"battery":     {"battery", "battery_kwh", "battery_capacity"},
	"seats":       {"seats", "seat_count", "seating_capacity"},
	"trunk":       {"trunk", "trunk_liters", "cargo", "cargo_volume", "boot_capacity"},
	"weight":      {"weight", "curb_weight", "weight_kg"},
	"airbags":     {"airbags", "airbag_count"},
	"crash_stars": {"crash_stars", "ncap_stars", "safety_rating"},
}

func lookupSpec(raw map[string]string, field string) *float64 {
	for _, key := range specKeys[field] {
		if val, ok := raw[key]; ok {
			if n := CleanNumber(val); n != nil {
				return n
			}
		}
	}
	return nil
}

func normalizeSpecs(rawSpecs map[string]string) NormalizedSpecs {
	raw := make(map[string]string, len(rawSpecs))
	for k, v := range rawSpecs {
		raw[strings.ToLower(strings.TrimSpace(k))] = v
	}

	return NormalizedSpecs{
		Performance: PerformanceSpecs{
			HorsepowerHP:   lookupSpec(raw, "horsepower"),
			TorqueNM:       lookupSpec(raw, "torque"),
			ZeroToSixtySec: lookupSpec(raw, "zero_sixty"),
			TopSpeedKPH:    lookupSpec(raw, "top_speed"),
		},
		Efficiency: EfficiencySpecs{
			CombinedLPer100KM: lookupSpec(raw, "combined"),
			CO2GPerKM:         lookupSpec(raw, "co2"),
			RangeKM:           lookupSpec(raw, "range"),
			BatteryKWH:        lookupSpec(raw, "battery"),
		},
		Dimensions: DimensionSpecs{
			Seats:       lookupSpec(raw, "seats"),
			TrunkLiters: lookupSpec(raw, "trunk"),
			WeightKG:    lookupSpec(raw, "weight"),
		},
		Safety: SafetySpecs{
			Airbags:    lookupSpec(raw, "airbags"),
			CrashStars: lookupSpec(raw, "crash_stars"),
		},
	}
}

func deriveFlags(c *Context) Flags {
	flags := Flags{MileageCategory: mileageCategory(c.MileageKM)}

	perf := c.Specs.Performance
	if (perf.ZeroToSixtySec != nil && *perf.ZeroToSixtySec < sportZeroToSixtyMax) ||
		(perf.HorsepowerHP != nil && *perf.HorsepowerHP > sportHorsepowerMin) {
		flags.IsSport = true
	}

	dims := c.Specs.Dimensions
	if dims.Seats != nil && *dims.Seats >= familySeatsMin &&
		dims.TrunkLiters != nil && *dims.TrunkLiters > familyTrunkLitersMin {
		flags.IsFamily = true
	}

	eff := c.Specs.Efficiency
	if (eff.CombinedLPer100KM != nil && *eff.CombinedLPer100KM < ecoCombinedMax) || c.IsElectric() {
		flags.IsEco = true
	}

	return flags
}

func mileageCategory(km *float64) string {
	switch {
	case km == nil:
		return "unknown"
	case *km < 1000:
		return "new"
	case *km < 50000:
		return "low"
	case *km < 120000:
		return "medium"
	default:
		return "high"
	}
}

// validate enforces the strict context schema: required identity fields and
// a plausible model year.
func (c *Context) validate() error {
	if c.Identity.Make == "" {
		return fmt.Errorf("%w: make is required", ErrInvalidContext)
	}
	if c.Identity.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidContext)
	}
	currentYear := time.Now().Year()
	if c.Identity.Year < 1950 || c.Identity.Year > currentYear+1 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidContext, c.Identity.Year)
	}
	if c.MileageKM != nil && *c.MileageKM < 0 {
		return fmt.Errorf("%w: negative mileage", ErrInvalidContext)
	}
	if c.Price != nil && *c.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidContext)
	}
	return nil
}
