package badges

import "vehicle-story-pipeline/models"

// Meta is the fixed registry entry for a badge id.
type Meta struct {
	Label    string
	Category models.BadgeCategory
	Group    string
	Rank     int
}

// Registry is the immutable badge table. Collectors may only emit ids listed
// here; anything else is discarded. Badges sharing a Group are mutually
// exclusive and resolved by Rank.
var Registry = map[string]Meta{
	// Crash-safety rating scales. One winner per scale.
	"ncap_5_star": {Label: "Euro NCAP 5 Stars", Category: models.CategorySafety, Group: "euro_ncap", Rank: 100},
	"ncap_4_star": {Label: "Euro NCAP 4 Stars", Category: models.CategorySafety, Group: "euro_ncap", Rank: 80},
	"ncap_3_star": {Label: "Euro NCAP 3 Stars", Category: models.CategorySafety, Group: "euro_ncap", Rank: 60},

	"nhtsa_5_star": {Label: "NHTSA 5-Star Overall", Category: models.CategorySafety, Group: "nhtsa", Rank: 100},
	"nhtsa_4_star": {Label: "NHTSA 4-Star Overall", Category: models.CategorySafety, Group: "nhtsa", Rank: 80},

	"iihs_top_safety_pick_plus": {Label: "IIHS Top Safety Pick+", Category: models.CategorySafety, Group: "iihs", Rank: 100},
	"iihs_top_safety_pick":      {Label: "IIHS Top Safety Pick", Category: models.CategorySafety, Group: "iihs", Rank: 90},

	"isofix": {Label: "ISOFIX Child Seat Anchors", Category: models.CategorySafety, Group: "isofix", Rank: 50},

	// German environmental sticker tiers (one sticker per windshield).
	"green_sticker_4":  {Label: "Green Emission Sticker (Euro 4+)", Category: models.CategoryEco, Group: "de_umweltplakette", Rank: 100},
	"yellow_sticker_3": {Label: "Yellow Emission Sticker (Euro 3)", Category: models.CategoryEco, Group: "de_umweltplakette", Rank: 60},
	"red_sticker_2":    {Label: "Red Emission Sticker (Euro 2)", Category: models.CategoryEco, Group: "de_umweltplakette", Rank: 30},

	// CO2-based energy efficiency classes.
	"energy_class_a_plus": {Label: "Energy Class A+", Category: models.CategoryEco, Group: "energy_class", Rank: 100},
	"energy_class_a":      {Label: "Energy Class A", Category: models.CategoryEco, Group: "energy_class", Rank: 90},
	"energy_class_b":      {Label: "Energy Class B", Category: models.CategoryEco, Group: "energy_class", Rank: 80},
	"energy_class_c":      {Label: "Energy Class C", Category: models.CategoryEco, Group: "energy_class", Rank: 70},
	"energy_class_d":      {Label: "Energy Class D", Category: models.CategoryEco, Group: "energy_class", Rank: 60},

	"zero_emission": {Label: "Zero Emission Vehicle", Category: models.CategoryEco, Group: "zero_emission", Rank: 100},
	"epa_smartway":  {Label: "EPA SmartWay", Category: models.CategoryEco, Group: "epa_smartway", Rank: 80},

	// Performance and feature presence.
	"sport_package":   {Label: "Sport Package", Category: models.CategoryPerformance, Group: "sport_package", Rank: 70},
	"adaptive_cruise": {Label: "Adaptive Cruise Control", Category: models.CategoryTechnology, Group: "adaptive_cruise", Rank: 60},
	"lane_assist":     {Label: "Lane Keeping Assist", Category: models.CategoryTechnology, Group: "lane_assist", Rank: 60},
	"blind_spot":      {Label: "Blind Spot Monitor", Category: models.CategoryTechnology, Group: "blind_spot", Rank: 60},
	"parking_camera":  {Label: "Rear-View Camera", Category: models.CategoryTechnology, Group: "parking_camera", Rank: 50},
	"led_headlights":  {Label: "LED Headlights", Category: models.CategoryTechnology, Group: "led_headlights", Rank: 40},
	"panoramic_roof":  {Label: "Panoramic Roof", Category: models.CategoryTechnology, Group: "panoramic_roof", Rank: 40},

	"reliability_top_rated": {Label: "Top Rated Reliability", Category: models.CategoryReliability, Group: "reliability_rating", Rank: 80},

	// Awards.
	"car_of_the_year": {Label: "Car of the Year", Category: models.CategoryAward, Group: "car_of_the_year", Rank: 100},
	"best_in_class":   {Label: "Best in Class", Category: models.CategoryAward, Group: "best_in_class", Rank: 80},
	"red_dot_design":  {Label: "Red Dot Design Award", Category: models.CategoryAward, Group: "red_dot", Rank: 70},

	// Regulatory access.
	"low_emission_zone_ok": {Label: "Low Emission Zone Approved", Category: models.CategoryRegulatory, Group: "low_emission_zone", Rank: 50},
}

// FromRegistry builds a Badge for a registry id. The second return is false
// for unknown ids, which callers must discard.
func FromRegistry(id string, method models.BadgeMethod, evidence string) (models.Badge, bool) {
	meta, ok := Registry[id]
	if !ok {
		return models.Badge{}, false
	}
	return models.Badge{
		ID:       id,
		Label:    meta.Label,
		Category: meta.Category,
		Group:    meta.Group,
		Rank:     meta.Rank,
		Method:   method,
		Evidence: evidence,
	}, true
}
