package story

import (
	"testing"

	"vehicle-story-pipeline/models"
)

func TestAssembleDefaultsEveryPlayerField(t *testing.T) {
	board := &models.Storyboard{
		Scenes: []models.Scene{
			{ID: "s1", Type: models.SceneTypeIntro},
			{ID: "s2", Type: models.SceneTypeSlide, FeatureSlug: "trunk-space"},
			{ID: "s3", Type: models.SceneTypeTech, ThemeTag: models.ThemeUtility},
			{ID: "s4", Type: models.SceneTypeOutro, ThemeTag: "NONSENSE"},
		},
	}
	vctx := testContext(t)

	artifact := Assemble(board, vctx)

	if artifact.Title == "" {
		t.Error("artifact title empty")
	}
	if artifact.Car.Make != "Skoda" || artifact.Car.Year != 2022 {
		t.Errorf("car identity wrong: %+v", artifact.Car)
	}
	if artifact.Badges == nil {
		t.Error("artifact badges nil")
	}
	if _, ok := artifact.CarSpecs["horsepower_hp"]; !ok {
		t.Error("car specs missing horsepower")
	}

	for _, scene := range artifact.Scenes {
		if scene.ImageURL == "" {
			t.Errorf("scene %s has empty image URL", scene.ID)
		}
		if scene.Badges == nil || scene.Hotspots == nil || scene.Subtitles == nil {
			t.Errorf("scene %s has nil lists", scene.ID)
		}
	}

	intro := artifact.Scenes[0]
	if intro.Intro == nil || intro.Intro.Headline == "" || intro.Intro.Tagline == "" {
		t.Errorf("intro not defaulted: %+v", intro.Intro)
	}

	slide := artifact.Scenes[1]
	if slide.Slide == nil || slide.Slide.Title != "Trunk Space" {
		t.Errorf("slide title not derived from slug: %+v", slide.Slide)
	}

	tech := artifact.Scenes[2]
	if tech.TechConfig == nil || tech.TechConfig.Mode != models.ThemeUtility || tech.TechConfig.Utility == nil {
		t.Fatalf("tech config not rebuilt: %+v", tech.TechConfig)
	}
	if tech.TechConfig.Utility.TrunkLiters != 600 {
		t.Errorf("tech config lost spec value: %+v", tech.TechConfig.Utility)
	}

	outro := artifact.Scenes[3]
	if outro.ThemeTag != models.ThemeGeneral {
		t.Errorf("invalid theme not normalized: %s", outro.ThemeTag)
	}
	if outro.Outro == nil || outro.Outro.CallToAction == "" {
		t.Errorf("outro not defaulted: %+v", outro.Outro)
	}
}

func TestAssembleKeepsFilledContent(t *testing.T) {
	board := &models.Storyboard{
		Title: "Custom Title",
		Scenes: []models.Scene{
			{
				ID:       "s1",
				Type:     models.SceneTypeSlide,
				ThemeTag: models.ThemePerformance,
				Slide:    &models.SlideContent{Title: "Handwritten", Body: "Kept as is."},
				ImageURL: "https://cdn.test/real.png",
				Subtitles: []models.SubtitleSegment{
					{Text: "Kept.", Start: 0, End: 1},
				},
			},
		},
	}

	artifact := Assemble(board, testContext(t))

	if artifact.Title != "Custom Title" {
		t.Errorf("title overwritten: %q", artifact.Title)
	}
	scene := artifact.Scenes[0]
	if scene.Slide.Title != "Handwritten" || scene.Slide.Body != "Kept as is." {
		t.Errorf("slide content overwritten: %+v", scene.Slide)
	}
	if scene.ImageURL != "https://cdn.test/real.png" {
		t.Errorf("real image replaced: %q", scene.ImageURL)
	}
	if len(scene.Subtitles) != 1 {
		t.Errorf("subtitles lost: %+v", scene.Subtitles)
	}
}

func TestCompletedTechConfigRebuildsOnModeMismatch(t *testing.T) {
	scene := models.Scene{
		Type:     models.SceneTypeTech,
		ThemeTag: models.ThemeSafety,
		TechConfig: &models.TechConfig{
			Mode:        models.ThemePerformance,
			Performance: &models.PerformanceConfig{HorsepowerHP: 245},
		},
	}

	cfg := completedTechConfig(scene, testContext(t))
	if cfg.Mode != models.ThemeSafety || cfg.Safety == nil {
		t.Errorf("mismatched config not rebuilt: %+v", cfg)
	}
}

func TestSlugTitle(t *testing.T) {
	cases := map[string]string{
		"trunk-space":     "Trunk Space",
		"adaptive_cruise": "Adaptive Cruise",
		"led":             "Led",
	}
	for in, want := range cases {
		if got := slugTitle(in); got != want {
			t.Errorf("slugTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
