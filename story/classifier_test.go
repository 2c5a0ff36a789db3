package story

import (
	"fmt"
	"testing"

	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

func testContext(t *testing.T) *vehicle.Context {
	t.Helper()
	ctx, err := vehicle.Build(&models.Vehicle{
		ID: "v1", Make: "Skoda", Model: "Octavia", Year: 2022,
		RawSpecs: map[string]string{
			"horsepower": "245 hp",
			"seats":      "5",
			"trunk":      "600 L",
			"airbags":    "9",
		},
	}, models.VehicleOverrides{})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	return ctx
}

func techScene(id string, theme models.ThemeTag) models.Scene {
	return models.Scene{
		ID:       id,
		Type:     models.SceneTypeTech,
		ThemeTag: theme,
		Slide:    &models.SlideContent{Title: "t", Body: "b"},
	}
}

func countTech(board *models.Storyboard) int {
	n := 0
	for _, s := range board.Scenes {
		if s.Type == models.SceneTypeTech {
			n++
		}
	}
	return n
}

func TestClassifyScenesUniquenessUnderSharedTheme(t *testing.T) {
	// Ten candidates all claiming SAFETY: the cap for >=9 scenes is 2 but
	// uniqueness allows only one SAFETY tech scene; the rest are demoted.
	board := &models.Storyboard{}
	for i := 0; i < 10; i++ {
		board.Scenes = append(board.Scenes, techScene(fmt.Sprintf("s%d", i), models.ThemeSafety))
	}

	ClassifyScenes(board, testContext(t))

	if got := countTech(board); got != 1 {
		t.Fatalf("tech scene count = %d, want 1", got)
	}
	if board.Scenes[0].Type != models.SceneTypeTech {
		t.Error("the first candidate should be the accepted one")
	}
	for i := 1; i < 10; i++ {
		s := board.Scenes[i]
		if s.Type != models.SceneTypeSlide {
			t.Errorf("scene %d should be demoted to slide, got %s", i, s.Type)
		}
		if s.TechConfig != nil {
			t.Errorf("demoted scene %d must have no tech config", i)
		}
		if s.Slide == nil || s.Slide.Title != "t" {
			t.Errorf("demoted scene %d lost its content fields", i)
		}
	}
}

func TestClassifyScenesCapSmallStoryboard(t *testing.T) {
	board := &models.Storyboard{Scenes: []models.Scene{
		techScene("a", models.ThemePerformance),
		techScene("b", models.ThemeSafety),
		techScene("c", models.ThemeUtility),
	}}

	ClassifyScenes(board, testContext(t))

	if got := countTech(board); got != 1 {
		t.Errorf("tech count = %d, want 1 for a storyboard under %d scenes", got, techCapSceneThreshold)
	}
}

func TestClassifyScenesCapLargeStoryboard(t *testing.T) {
	board := &models.Storyboard{}
	board.Scenes = append(board.Scenes,
		techScene("a", models.ThemePerformance),
		techScene("b", models.ThemeSafety),
		techScene("c", models.ThemeUtility),
	)
	for i := 0; i < 6; i++ {
		board.Scenes = append(board.Scenes, models.Scene{
			ID: fmt.Sprintf("pad%d", i), Type: models.SceneTypeSlide,
			FeatureSlug: "interior-comfort", // no theme keywords
		})
	}

	ClassifyScenes(board, testContext(t))

	if got := countTech(board); got != 2 {
		t.Errorf("tech count = %d, want 2 for a storyboard of %d scenes", got, len(board.Scenes))
	}
}

func TestClassifyScenesInvalidThemeKeywordFallback(t *testing.T) {
	board := &models.Storyboard{Scenes: []models.Scene{
		{
			ID:          "s1",
			Type:        models.SceneTypeTech,
			ThemeTag:    "COMFORT", // not in the closed set
			FeatureSlug: "engine-power",
			Visual:      models.VisualDirection{Focus: "the turbocharged engine"},
		},
	}}

	ClassifyScenes(board, testContext(t))

	s := board.Scenes[0]
	if s.Type != models.SceneTypeTech {
		t.Fatal("scene with detectable keywords should stay technical")
	}
	if s.ThemeTag != models.ThemePerformance {
		t.Errorf("theme = %s, want PERFORMANCE from keyword fallback", s.ThemeTag)
	}
}

func TestClassifyScenesUndetectableThemeDemoted(t *testing.T) {
	board := &models.Storyboard{Scenes: []models.Scene{
		{
			ID:          "s1",
			Type:        models.SceneTypeTech,
			ThemeTag:    "VIBES",
			FeatureSlug: "ambient-lighting",
			Visual:      models.VisualDirection{Focus: "interior mood"},
		},
	}}

	ClassifyScenes(board, testContext(t))

	if board.Scenes[0].Type != models.SceneTypeSlide {
		t.Errorf("undetectable theme should demote, got %s", board.Scenes[0].Type)
	}
}

func TestClassifyScenesKeywordOrderPerformanceFirst(t *testing.T) {
	// Focus text matches both PERFORMANCE and SAFETY vocabularies; the fixed
	// check order means PERFORMANCE wins.
	board := &models.Storyboard{Scenes: []models.Scene{
		{
			ID:       "s1",
			Type:     models.SceneTypeTech,
			ThemeTag: "INVALID",
			Visual:   models.VisualDirection{Focus: "braking performance"},
		},
	}}

	ClassifyScenes(board, testContext(t))

	if got := board.Scenes[0].ThemeTag; got != models.ThemePerformance {
		t.Errorf("theme = %s, want PERFORMANCE to win the vocabulary order", got)
	}
}

func TestClassifyScenesPromotion(t *testing.T) {
	board := &models.Storyboard{Scenes: []models.Scene{
		{
			ID:          "s1",
			Type:        models.SceneTypeSlide,
			FeatureSlug: "trunk-space",
			Visual:      models.VisualDirection{Focus: "the cargo area"},
		},
	}}

	ClassifyScenes(board, testContext(t))

	s := board.Scenes[0]
	if s.Type != models.SceneTypeTech {
		t.Fatal("slide with utility keywords should be promoted")
	}
	if s.ThemeTag != models.ThemeUtility {
		t.Errorf("theme = %s, want UTILITY", s.ThemeTag)
	}
	if s.TechConfig == nil || s.TechConfig.Utility == nil {
		t.Fatal("promoted scene must carry a utility config")
	}
	if s.TechConfig.Utility.TrunkLiters != 600 {
		t.Errorf("TrunkLiters = %v, want 600 from specs", s.TechConfig.Utility.TrunkLiters)
	}
}

func TestClassifyScenesPromotionBlockedByCap(t *testing.T) {
	board := &models.Storyboard{Scenes: []models.Scene{
		techScene("a", models.ThemeUtility),
		{
			ID:          "b",
			Type:        models.SceneTypeSlide,
			FeatureSlug: "engine-sound",
		},
	}}

	ClassifyScenes(board, testContext(t))

	if board.Scenes[1].Type != models.SceneTypeSlide {
		t.Error("promotion must respect the tech cap")
	}
}

func TestClassifyScenesIntroOutroUntouched(t *testing.T) {
	board := &models.Storyboard{Scenes: []models.Scene{
		{ID: "i", Type: models.SceneTypeIntro, FeatureSlug: "engine-roar"},
		{ID: "o", Type: models.SceneTypeOutro, FeatureSlug: "trunk-space"},
	}}

	ClassifyScenes(board, testContext(t))

	if board.Scenes[0].Type != models.SceneTypeIntro || board.Scenes[1].Type != models.SceneTypeOutro {
		t.Error("intro and outro scenes must never be promoted")
	}
}

func TestBuildTechConfigDefaults(t *testing.T) {
	ctx, err := vehicle.Build(&models.Vehicle{
		ID: "bare", Make: "Dacia", Model: "Sandero", Year: 2021,
	}, models.VehicleOverrides{})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	safety := BuildTechConfig(models.ThemeSafety, ctx)
	if safety.Safety == nil {
		t.Fatal("safety config missing")
	}
	if safety.Safety.AirbagCount != defaultAirbagCount {
		t.Errorf("AirbagCount = %d, want default %d", safety.Safety.AirbagCount, defaultAirbagCount)
	}

	utility := BuildTechConfig(models.ThemeUtility, ctx)
	if utility.Utility.SeatCount != defaultSeatCount {
		t.Errorf("SeatCount = %d, want default %d", utility.Utility.SeatCount, defaultSeatCount)
	}
	if utility.Utility.TrunkLiters != defaultTrunkLiters {
		t.Errorf("TrunkLiters = %v, want default %v", utility.Utility.TrunkLiters, defaultTrunkLiters)
	}

	perf := BuildTechConfig(models.ThemePerformance, ctx)
	if perf.Performance.HorsepowerHP != defaultHorsepowerHP {
		t.Errorf("HorsepowerHP = %v, want default %v", perf.Performance.HorsepowerHP, defaultHorsepowerHP)
	}
}
