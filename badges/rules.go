package badges

import (
	"strings"

	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

// Emissions-standard estimation from model year, used when the raw dump
// carries no explicit Euro level.
func estimateEuroStandard(ctx *vehicle.Context) int {
	if raw, ok := ctx.Raw["euro_standard"]; ok {
		if n := vehicle.CleanNumber(raw); n != nil && *n >= 1 && *n <= 7 {
			return int(*n)
		}
	}
	year := ctx.Identity.Year
	switch {
	case year >= 2015:
		return 6
	case year >= 2011:
		return 5
	case year >= 2006:
		return 4
	case year >= 2001:
		return 3
	default:
		return 2
	}
}

// featureKeywords maps badge ids to the keywords searched across the trim,
// series and raw spec dump.
var featureKeywords = map[string][]string{
	"adaptive_cruise": {"adaptive cruise", "distance cruise"},
	"lane_assist":     {"lane assist", "lane keep", "lane keeping"},
	"blind_spot":      {"blind spot", "blind-spot"},
	"parking_camera":  {"rear camera", "parking camera", "rear-view camera", "backup camera"},
	"led_headlights":  {"led headlight", "led light", "full led", "matrix led"},
	"panoramic_roof":  {"panoramic", "panorama roof", "sunroof"},
	"sport_package":   {"sport package", "s-line", "m sport", "amg line", "gt line", "r-line"},
	"isofix":          {"isofix", "child seat anchor"},
}

// Near-universal features assumed present from the model year on, when the
// raw dump is silent about them.
var yearDefaults = map[string]int{
	"parking_camera": 2019,
	"isofix":         2014,
	"led_headlights": 2021,
}

// CollectRules is the pure rule collector: jurisdiction sticker tiers,
// energy-class tiers and feature-presence badges derived from the context
// alone. It performs no I/O and cannot fail.
func CollectRules(ctx *vehicle.Context) []models.Badge {
	var out []models.Badge

	add := func(id, evidence string) {
		if b, ok := FromRegistry(id, models.MethodRule, evidence); ok {
			out = append(out, b)
		}
	}

	// Environmental sticker: fuel type x estimated emissions standard.
	if ctx.IsElectric() {
		add("green_sticker_4", "electric drivetrain")
		add("zero_emission", "electric drivetrain")
		add("low_emission_zone_ok", "electric drivetrain")
	} else {
		switch euro := estimateEuroStandard(ctx); {
		case euro >= 4:
			add("green_sticker_4", "estimated Euro standard")
			add("low_emission_zone_ok", "estimated Euro standard")
		case euro == 3:
			add("yellow_sticker_3", "estimated Euro standard")
		default:
			add("red_sticker_2", "estimated Euro standard")
		}
	}

	// Energy class from CO2 g/km.
	if co2 := ctx.Specs.Efficiency.CO2GPerKM; co2 != nil {
		switch {
		case *co2 <= 50:
			add("energy_class_a_plus", "CO2 g/km")
		case *co2 <= 110:
			add("energy_class_a", "CO2 g/km")
		case *co2 <= 135:
			add("energy_class_b", "CO2 g/km")
		case *co2 <= 160:
			add("energy_class_c", "CO2 g/km")
		default:
			add("energy_class_d", "CO2 g/km")
		}
	} else if ctx.IsElectric() {
		add("energy_class_a_plus", "electric drivetrain")
	}

	// Feature presence by keyword search across trim, series and raw dump.
	haystack := featureHaystack(ctx)
	for id, keywords := range featureKeywords {
		if containsAny(haystack, keywords) {
			add(id, "listed in vehicle data")
			continue
		}
		if minYear, ok := yearDefaults[id]; ok && ctx.Identity.Year >= minYear {
			add(id, "near-universal for model year")
		}
	}

	return out
}

func featureHaystack(ctx *vehicle.Context) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(ctx.Identity.Trim))
	sb.WriteByte(' ')
	for k, v := range ctx.Raw {
		sb.WriteString(strings.ToLower(k))
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(v))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
