package story

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/apex/log"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/parser"
	"vehicle-story-pipeline/vehicle"
)

const (
	minVoiceoverWords = 5
	maxVoiceoverWords = 60
	maxSceneBadges    = 2
	maxSceneHotspots  = 3
)

const scriptSystemPrompt = `You write spoken narration and on-screen copy for
one scene of a vehicle story. The voiceover is read aloud by a narrator:
between 5 and 60 words, conversational, no markup. On-screen copy is short
and punchy. Never invent specifications that were not provided.`

// themeBadgeCategories maps a scene theme to the badge categories eligible
// for display on that scene.
var themeBadgeCategories = map[models.ThemeTag][]models.BadgeCategory{
	models.ThemePerformance: {models.CategoryPerformance, models.CategoryTechnology},
	models.ThemeSafety:      {models.CategorySafety},
	models.ThemeUtility:     {models.CategoryReliability, models.CategoryTechnology},
	models.ThemeGeneral:     {models.CategoryAward, models.CategoryEco},
}

type introScript struct {
	Headline  string `json:"headline"`
	Tagline   string `json:"tagline"`
	Voiceover string `json:"voiceover"`
}

type slideScript struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Voiceover string `json:"voiceover"`
	Hotspots  []struct {
		Label      string `json:"label"`
		Icon       string `json:"icon"`
		HoverTitle string `json:"hover_title"`
		HoverBody  string `json:"hover_body"`
	} `json:"hotspots"`
}

type outroScript struct {
	Headline     string `json:"headline"`
	CallToAction string `json:"call_to_action"`
	Voiceover    string `json:"voiceover"`
}

var introScriptSchema = llm.Schema{
	Name: "intro_script",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline":  map[string]any{"type": "string"},
			"tagline":   map[string]any{"type": "string"},
			"voiceover": map[string]any{"type": "string"},
		},
		"required": []string{"headline", "tagline", "voiceover"},
	},
}

var slideScriptSchema = llm.Schema{
	Name: "slide_script",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":     map[string]any{"type": "string"},
			"body":      map[string]any{"type": "string"},
			"voiceover": map[string]any{"type": "string"},
			"hotspots": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label":       map[string]any{"type": "string"},
						"icon":        map[string]any{"type": "string"},
						"hover_title": map[string]any{"type": "string"},
						"hover_body":  map[string]any{"type": "string"},
					},
					"required": []string{"label"},
				},
			},
		},
		"required": []string{"title", "body", "voiceover"},
	},
}

var outroScriptSchema = llm.Schema{
	Name: "outro_script",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline":       map[string]any{"type": "string"},
			"call_to_action": map[string]any{"type": "string"},
			"voiceover":      map[string]any{"type": "string"},
		},
		"required": []string{"headline", "call_to_action", "voiceover"},
	},
}

// ScriptSynthesizer writes narration and on-screen copy for every scene.
type ScriptSynthesizer struct {
	model       llm.Client
	concurrency int
}

// NewScriptSynthesizer creates a synthesizer. concurrency limits how many
// scenes are scripted at once; zero or negative means unbounded.
func NewScriptSynthesizer(model llm.Client, concurrency int) *ScriptSynthesizer {
	return &ScriptSynthesizer{model: model, concurrency: concurrency}
}

// Run scripts all scenes concurrently. A scene whose scripting fails is left
// unchanged and picked up by the assembler's defaults; scripting never fails
// the run.
func (s *ScriptSynthesizer) Run(ctx context.Context, board *models.Storyboard, vctx *vehicle.Context) {
	var sem chan struct{}
	if s.concurrency > 0 {
		sem = make(chan struct{}, s.concurrency)
	}

	var wg sync.WaitGroup
	for i := range board.Scenes {
		wg.Add(1)
		go func(scene *models.Scene) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := s.scriptScene(ctx, scene, board, vctx); err != nil {
				log.WithError(err).WithField("scene_id", scene.ID).Warn("scene scripting failed, keeping draft")
			}
		}(&board.Scenes[i])
	}
	wg.Wait()
}

func (s *ScriptSynthesizer) scriptScene(ctx context.Context, scene *models.Scene, board *models.Storyboard, vctx *vehicle.Context) error {
	user := sceneBrief(scene, board, vctx)

	switch scene.Type {
	case models.SceneTypeIntro:
		var out introScript
		if err := generateScript(ctx, s.model, user, introScriptSchema, &out); err != nil {
			return err
		}
		scene.Intro = &models.IntroContent{Headline: out.Headline, Tagline: out.Tagline}
		scene.Voiceover = clampVoiceover(out.Voiceover)

	case models.SceneTypeOutro:
		var out outroScript
		if err := generateScript(ctx, s.model, user, outroScriptSchema, &out); err != nil {
			return err
		}
		scene.Outro = &models.OutroContent{Headline: out.Headline, CallToAction: out.CallToAction}
		scene.Voiceover = clampVoiceover(out.Voiceover)

	case models.SceneTypeSlide, models.SceneTypeTech:
		var out slideScript
		if err := generateScript(ctx, s.model, user, slideScriptSchema, &out); err != nil {
			return err
		}
		scene.Slide = &models.SlideContent{Title: out.Title, Body: out.Body, FeatureSlug: scene.FeatureSlug}
		scene.Voiceover = clampVoiceover(out.Voiceover)
		if scene.Type == models.SceneTypeTech {
			// Technical scenes render an interactive 3D view; image
			// hotspots do not apply there.
			scene.Hotspots = nil
		} else {
			scene.Hotspots = hotspotPlaceholders(scene.ID, out)
		}
	}

	scene.Badges = pickSceneBadges(scene.ThemeTag, vctx.Certifications)
	return nil
}

func generateScript(ctx context.Context, model llm.Client, user string, schema llm.Schema, out any) error {
	raw, err := model.GenerateJSON(ctx, scriptSystemPrompt, user, schema)
	if err != nil {
		return fmt.Errorf("script generation: %w", err)
	}
	if err := parser.ParseObject(raw, out); err != nil {
		return fmt.Errorf("script parse: %w", err)
	}
	return nil
}

func sceneBrief(scene *models.Scene, board *models.Storyboard, vctx *vehicle.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Story: %s\nArc: %s\n", board.Title, board.NarrativeSummary)
	fmt.Fprintf(&b, "Vehicle: %d %s %s %s\n", vctx.Identity.Year, vctx.Identity.Make, vctx.Identity.Model, vctx.Identity.Trim)
	fmt.Fprintf(&b, "Scene type: %s\n", scene.Type)
	if scene.FeatureSlug != "" {
		fmt.Fprintf(&b, "Feature: %s\n", scene.FeatureSlug)
	}
	if scene.ThemeTag != "" {
		fmt.Fprintf(&b, "Theme: %s\n", scene.ThemeTag)
	}
	fmt.Fprintf(&b, "Visual: %s, %s, focus on %s, %s\n",
		scene.Visual.Setting, scene.Visual.CameraAngle, scene.Visual.Focus, scene.Visual.Lighting)
	fmt.Fprintf(&b, "Known facts: %s\n", FeatureSummary(vctx))
	if scene.Type == models.SceneTypeSlide {
		fmt.Fprintf(&b, "Propose up to %d hotspots pointing at visible parts of the car.\n", maxSceneHotspots)
	}
	return b.String()
}

// clampVoiceover enforces the narration length band. Too-short narration is
// returned as-is (the assembler will default it); too-long narration is cut
// at the word limit.
func clampVoiceover(text string) string {
	words := strings.Fields(text)
	if len(words) < minVoiceoverWords {
		return ""
	}
	if len(words) > maxVoiceoverWords {
		return strings.Join(words[:maxVoiceoverWords], " ") + "."
	}
	return strings.TrimSpace(text)
}

// pickSceneBadges selects up to maxSceneBadges resolved certifications whose
// category matches the scene theme. Certifications arrive pre-sorted by
// display priority, so a forward scan preserves that order.
func pickSceneBadges(theme models.ThemeTag, certs []models.Badge) []models.Badge {
	categories := themeBadgeCategories[theme]
	if categories == nil {
		categories = themeBadgeCategories[models.ThemeGeneral]
	}
	eligible := make(map[models.BadgeCategory]bool, len(categories))
	for _, c := range categories {
		eligible[c] = true
	}

	var picked []models.Badge
	for _, b := range certs {
		if !eligible[b.Category] {
			continue
		}
		picked = append(picked, b)
		if len(picked) == maxSceneBadges {
			break
		}
	}
	return picked
}

func hotspotPlaceholders(sceneID string, out slideScript) []models.Hotspot {
	var spots []models.Hotspot
	for i, h := range out.Hotspots {
		if i == maxSceneHotspots {
			break
		}
		if strings.TrimSpace(h.Label) == "" {
			continue
		}
		spots = append(spots, models.Hotspot{
			ID:         fmt.Sprintf("%s-hs-%d", sceneID, i+1),
			Label:      h.Label,
			Icon:       h.Icon,
			HoverTitle: h.HoverTitle,
			HoverBody:  h.HoverBody,
		})
	}
	return spots
}
