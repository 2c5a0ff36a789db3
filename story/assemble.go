package story

import (
	"fmt"

	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

// PlaceholderImageURL is shipped for scenes whose render failed so players
// never receive an empty image field.
const PlaceholderImageURL = "https://assets.carstory.local/placeholder-scene.png"

// Assemble finalizes the storyboard into the persisted artifact. Every field
// a player reads is defaulted here; nothing downstream should ever see a nil
// list or an empty content block.
func Assemble(board *models.Storyboard, vctx *vehicle.Context) *models.StoryArtifact {
	artifact := &models.StoryArtifact{
		Title:            board.Title,
		NarrativeSummary: board.NarrativeSummary,
		Badges:           vctx.Certifications,
		Car: models.CarIdentity{
			Make:     vctx.Identity.Make,
			Model:    vctx.Identity.Model,
			Year:     vctx.Identity.Year,
			Trim:     vctx.Identity.Trim,
			VIN:      vctx.Identity.VIN,
			BodyType: vctx.Identity.BodyType,
			Color:    vctx.Identity.Color,
		},
		CarSpecs: specsDump(vctx),
	}
	if artifact.Title == "" {
		artifact.Title = fmt.Sprintf("%d %s %s", vctx.Identity.Year, vctx.Identity.Make, vctx.Identity.Model)
	}
	if artifact.Badges == nil {
		artifact.Badges = []models.Badge{}
	}

	for _, scene := range board.Scenes {
		artifact.Scenes = append(artifact.Scenes, finalizeScene(scene, vctx))
	}
	if artifact.Scenes == nil {
		artifact.Scenes = []models.Scene{}
	}
	return artifact
}

func finalizeScene(scene models.Scene, vctx *vehicle.Context) models.Scene {
	if !validTheme(scene.ThemeTag) {
		scene.ThemeTag = models.ThemeGeneral
	}
	if scene.ImageURL == "" {
		scene.ImageURL = PlaceholderImageURL
	}
	if scene.Badges == nil {
		scene.Badges = []models.Badge{}
	}
	if scene.Hotspots == nil {
		scene.Hotspots = []models.Hotspot{}
	}
	if scene.Subtitles == nil {
		scene.Subtitles = []models.SubtitleSegment{}
	}

	switch scene.Type {
	case models.SceneTypeIntro:
		if scene.Intro == nil {
			scene.Intro = &models.IntroContent{}
		}
		if scene.Intro.Headline == "" {
			scene.Intro.Headline = fmt.Sprintf("%d %s %s", vctx.Identity.Year, vctx.Identity.Make, vctx.Identity.Model)
		}
		if scene.Intro.Tagline == "" {
			scene.Intro.Tagline = "Take a closer look."
		}

	case models.SceneTypeOutro:
		if scene.Outro == nil {
			scene.Outro = &models.OutroContent{}
		}
		if scene.Outro.Headline == "" {
			scene.Outro.Headline = "Ready when you are."
		}
		if scene.Outro.CallToAction == "" {
			scene.Outro.CallToAction = "Book a viewing"
		}

	case models.SceneTypeSlide:
		scene.Slide = defaultedSlide(scene, vctx)

	case models.SceneTypeTech:
		scene.Slide = defaultedSlide(scene, vctx)
		scene.TechConfig = completedTechConfig(scene, vctx)
	}

	return scene
}

func defaultedSlide(scene models.Scene, vctx *vehicle.Context) *models.SlideContent {
	slide := scene.Slide
	if slide == nil {
		slide = &models.SlideContent{}
	}
	if slide.Title == "" {
		if scene.FeatureSlug != "" {
			slide.Title = slugTitle(scene.FeatureSlug)
		} else {
			slide.Title = fmt.Sprintf("%s %s", vctx.Identity.Make, vctx.Identity.Model)
		}
	}
	if slide.Body == "" {
		slide.Body = fmt.Sprintf("A closer look at the %d %s %s.", vctx.Identity.Year, vctx.Identity.Make, vctx.Identity.Model)
	}
	if slide.FeatureSlug == "" {
		slide.FeatureSlug = scene.FeatureSlug
	}
	return slide
}

// completedTechConfig re-derives the mode block when the classifier output
// went missing or lost its mode payload.
func completedTechConfig(scene models.Scene, vctx *vehicle.Context) *models.TechConfig {
	cfg := scene.TechConfig
	if cfg == nil || cfg.Mode != scene.ThemeTag {
		return BuildTechConfig(scene.ThemeTag, vctx)
	}
	switch cfg.Mode {
	case models.ThemePerformance:
		if cfg.Performance == nil {
			return BuildTechConfig(cfg.Mode, vctx)
		}
	case models.ThemeSafety:
		if cfg.Safety == nil {
			return BuildTechConfig(cfg.Mode, vctx)
		}
	case models.ThemeUtility:
		if cfg.Utility == nil {
			return BuildTechConfig(cfg.Mode, vctx)
		}
	}
	return cfg
}

func validTheme(t models.ThemeTag) bool {
	switch t {
	case models.ThemePerformance, models.ThemeSafety, models.ThemeUtility, models.ThemeGeneral:
		return true
	}
	return false
}

func slugTitle(slug string) string {
	out := make([]rune, 0, len(slug))
	upper := true
	for _, r := range slug {
		if r == '-' || r == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		out = append(out, r)
	}
	return string(out)
}

func specsDump(vctx *vehicle.Context) map[string]any {
	dump := map[string]any{
		"fuel_type":        vctx.FuelType,
		"drivetrain":       vctx.Drivetrain,
		"mileage_category": vctx.Flags.MileageCategory,
		"is_sport":         vctx.Flags.IsSport,
		"is_family":        vctx.Flags.IsFamily,
		"is_eco":           vctx.Flags.IsEco,
	}
	addSpec := func(key string, v *float64) {
		if v != nil {
			dump[key] = *v
		}
	}
	addSpec("mileage_km", vctx.MileageKM)
	addSpec("horsepower_hp", vctx.Specs.Performance.HorsepowerHP)
	addSpec("torque_nm", vctx.Specs.Performance.TorqueNM)
	addSpec("zero_to_sixty_sec", vctx.Specs.Performance.ZeroToSixtySec)
	addSpec("top_speed_kph", vctx.Specs.Performance.TopSpeedKPH)
	addSpec("combined_l_per_100km", vctx.Specs.Efficiency.CombinedLPer100KM)
	addSpec("co2_g_per_km", vctx.Specs.Efficiency.CO2GPerKM)
	addSpec("seats", vctx.Specs.Dimensions.Seats)
	addSpec("trunk_liters", vctx.Specs.Dimensions.TrunkLiters)
	addSpec("airbags", vctx.Specs.Safety.Airbags)
	return dump
}
