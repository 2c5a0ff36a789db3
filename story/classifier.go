package story

import (
	"strings"

	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

// Technical-scene cap: one tech view for short stories, two for long ones.
const techCapSceneThreshold = 9

// Static fallback defaults for tech-view configurations. A tech scene never
// ships with an unset field.
const (
	defaultAirbagCount   = 6
	defaultSeatCount     = 5
	defaultTrunkLiters   = 450.0
	defaultTrunkWidthCM  = 100.0
	defaultTrunkDepthCM  = 105.0
	defaultTrunkHeightCM = 45.0
	defaultHorsepowerHP  = 150.0
	defaultTorqueNM      = 250.0
	defaultZeroToSixty   = 8.5
	defaultTopSpeedKPH   = 210.0
)

// Keyword vocabularies for theme detection, checked in fixed order
// PERFORMANCE -> SAFETY -> UTILITY; first match wins.
var themeKeywords = []struct {
	theme    models.ThemeTag
	keywords []string
}{
	{models.ThemePerformance, []string{"engine", "horsepower", "torque", "acceleration", "performance", "speed", "handling", "turbo", "sport", "dynamic"}},
	{models.ThemeSafety, []string{"safety", "airbag", "brake", "assist", "collision", "crash", "lane", "protection", "emergency"}},
	{models.ThemeUtility, []string{"trunk", "cargo", "boot", "space", "storage", "seats", "seating", "practical", "utility", "fold", "family"}},
}

var validTechThemes = map[models.ThemeTag]bool{
	models.ThemePerformance: true,
	models.ThemeSafety:      true,
	models.ThemeUtility:     true,
}

// ClassifyScenes is the deterministic post-processing pass over a drafted
// storyboard. It enforces the tech-scene cap, the closed theme set with
// keyword fallback, per-theme uniqueness, demotion, and promotion of
// ordinary slides; accepted tech scenes receive a fully populated mode
// configuration. Scenes are visited in order and a demoted scene never
// reverts.
func ClassifyScenes(board *models.Storyboard, vctx *vehicle.Context) {
	techCap := 1
	if len(board.Scenes) >= techCapSceneThreshold {
		techCap = 2
	}

	accepted := 0
	usedThemes := make(map[models.ThemeTag]bool)

	for i := range board.Scenes {
		scene := &board.Scenes[i]

		switch scene.Type {
		case models.SceneTypeTech:
			theme := scene.ThemeTag
			if !validTechThemes[theme] {
				theme = detectTheme(scene)
			}
			if theme == "" || usedThemes[theme] || accepted >= techCap {
				demote(scene)
				continue
			}
			scene.ThemeTag = theme
			scene.TechConfig = BuildTechConfig(theme, vctx)
			usedThemes[theme] = true
			accepted++

		case models.SceneTypeSlide:
			if accepted >= techCap {
				continue
			}
			theme := detectTheme(scene)
			if theme == "" || usedThemes[theme] {
				continue
			}
			scene.Type = models.SceneTypeTech
			scene.ThemeTag = theme
			scene.TechConfig = BuildTechConfig(theme, vctx)
			usedThemes[theme] = true
			accepted++
		}
	}
}

// detectTheme runs the keyword vocabularies over the scene's feature slug
// and visual focus text. Returns "" when nothing matches.
func detectTheme(scene *models.Scene) models.ThemeTag {
	haystack := strings.ToLower(scene.FeatureSlug + " " + scene.Visual.Focus)
	for _, vocab := range themeKeywords {
		for _, kw := range vocab.keywords {
			if strings.Contains(haystack, kw) {
				return vocab.theme
			}
		}
	}
	return ""
}

// demote converts a technical candidate into a standard slide, dropping only
// the technical-mode flag and configuration.
func demote(scene *models.Scene) {
	scene.Type = models.SceneTypeSlide
	scene.TechConfig = nil
}

// BuildTechConfig builds the mode-specific configuration from normalized
// specs, with static fallback defaults for every field the specs leave
// unset. The assembler reuses it to re-derive missing fields.
func BuildTechConfig(theme models.ThemeTag, vctx *vehicle.Context) *models.TechConfig {
	cfg := &models.TechConfig{Mode: theme}

	switch theme {
	case models.ThemePerformance:
		perf := vctx.Specs.Performance
		cfg.Performance = &models.PerformanceConfig{
			EngineLabel:    engineLabel(vctx),
			HorsepowerHP:   orDefault(perf.HorsepowerHP, defaultHorsepowerHP),
			TorqueNM:       orDefault(perf.TorqueNM, defaultTorqueNM),
			ZeroToSixtySec: orDefault(perf.ZeroToSixtySec, defaultZeroToSixty),
			TopSpeedKPH:    orDefault(perf.TopSpeedKPH, defaultTopSpeedKPH),
		}
	case models.ThemeSafety:
		cfg.Safety = &models.SafetyConfig{
			AirbagCount:     int(orDefault(vctx.Specs.Safety.Airbags, defaultAirbagCount)),
			CrashStars:      int(orDefault(vctx.Specs.Safety.CrashStars, 0)),
			AssistFeatures:  assistFeatures(vctx),
			ReinforcedCabin: vctx.Identity.Year >= 2012,
		}
	case models.ThemeUtility:
		dims := vctx.Specs.Dimensions
		cfg.Utility = &models.UtilityConfig{
			SeatCount:     int(orDefault(dims.Seats, defaultSeatCount)),
			TrunkLiters:   orDefault(dims.TrunkLiters, defaultTrunkLiters),
			TrunkWidthCM:  defaultTrunkWidthCM,
			TrunkDepthCM:  defaultTrunkDepthCM,
			TrunkHeightCM: defaultTrunkHeightCM,
			FoldFlatSeats: vctx.Flags.IsFamily,
		}
	}

	return cfg
}

func orDefault(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func engineLabel(vctx *vehicle.Context) string {
	if vctx.IsElectric() {
		return "Electric Motor"
	}
	if fuel := strings.TrimSpace(vctx.FuelType); fuel != "" {
		return fuel + " Engine"
	}
	return "Combustion Engine"
}

func assistFeatures(vctx *vehicle.Context) []string {
	features := []string{}
	for _, b := range vctx.Certifications {
		if b.Category == models.CategoryTechnology || b.ID == "isofix" {
			features = append(features, b.Label)
		}
	}
	return features
}
