package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/parser"
	"vehicle-story-pipeline/vehicle"
)

const plannerSystemPrompt = `You are a digital showroom director. You turn one
vehicle into a short multi-scene narrated story: an intro scene, a handful of
feature slides, optionally technical 3D scenes, and an outro. For every scene
give a visual direction (setting, camera angle, focus, lighting) a
photographer could follow. Theme tags for technical scenes must be one of
PERFORMANCE, SAFETY or UTILITY. Feature slugs are short kebab-case feature
names like "adaptive-cruise" or "trunk-space".`

// plannerDraft is the schema-constrained storyboard reply.
type plannerDraft struct {
	Title            string `json:"title"`
	NarrativeSummary string `json:"narrative_arc_summary"`
	Scenes           []struct {
		Type        string `json:"type"`
		ThemeTag    string `json:"theme_tag"`
		FeatureSlug string `json:"feature_slug"`
		Layout      string `json:"layout"`
		Visual      struct {
			Setting     string `json:"setting"`
			CameraAngle string `json:"camera_angle"`
			Focus       string `json:"focus"`
			Lighting    string `json:"lighting"`
		} `json:"visual_direction"`
	} `json:"scenes"`
}

var plannerSchema = llm.Schema{
	Name: "storyboard_draft",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":                 map[string]any{"type": "string"},
			"narrative_arc_summary": map[string]any{"type": "string"},
			"scenes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":         map[string]any{"type": "string", "enum": []string{"intro", "slide", "tech", "outro"}},
						"theme_tag":    map[string]any{"type": "string"},
						"feature_slug": map[string]any{"type": "string"},
						"layout":       map[string]any{"type": "string"},
						"visual_direction": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"setting":      map[string]any{"type": "string"},
								"camera_angle": map[string]any{"type": "string"},
								"focus":        map[string]any{"type": "string"},
								"lighting":     map[string]any{"type": "string"},
							},
							"required": []string{"setting", "camera_angle", "focus", "lighting"},
						},
					},
					"required": []string{"type", "visual_direction"},
				},
			},
		},
		"required": []string{"title", "narrative_arc_summary", "scenes"},
	},
}

// PlanStoryboard asks the language model for a draft storyboard and runs the
// scene classifier over it. sceneCount 0 means automatic (3-5 slides);
// otherwise exactly sceneCount slides are requested.
func PlanStoryboard(ctx context.Context, model llm.Client, vctx *vehicle.Context, style string, sceneCount int) (*models.Storyboard, error) {
	countInstruction := "automatic: pick 3-5 feature slides"
	if sceneCount > 0 {
		countInstruction = fmt.Sprintf("exactly %d feature slides", sceneCount)
	}

	user := fmt.Sprintf(`Vehicle: %d %s %s %s (%s)
Feature priorities: %s
Style: %s
Slide count: %s
Always open with an intro scene and close with an outro scene.`,
		vctx.Identity.Year, vctx.Identity.Make, vctx.Identity.Model, vctx.Identity.Trim,
		vctx.Identity.BodyType, FeatureSummary(vctx), styleOrDefault(style), countInstruction)

	raw, err := model.GenerateJSON(ctx, plannerSystemPrompt, user, plannerSchema)
	if err != nil {
		return nil, fmt.Errorf("storyboard planning failed: %w", err)
	}

	var draft plannerDraft
	if err := parser.ParseObject(raw, &draft); err != nil {
		return nil, fmt.Errorf("storyboard draft unparseable: %w", err)
	}

	board := draftToStoryboard(&draft, vctx)
	ClassifyScenes(board, vctx)
	return board, nil
}

func draftToStoryboard(draft *plannerDraft, vctx *vehicle.Context) *models.Storyboard {
	board := &models.Storyboard{
		Title:            draft.Title,
		NarrativeSummary: draft.NarrativeSummary,
	}
	if board.Title == "" {
		board.Title = fmt.Sprintf("%d %s %s", vctx.Identity.Year, vctx.Identity.Make, vctx.Identity.Model)
	}

	for _, ds := range draft.Scenes {
		scene := models.Scene{
			ID:          uuid.NewString(),
			Type:        sceneType(ds.Type),
			ThemeTag:    models.ThemeTag(strings.ToUpper(strings.TrimSpace(ds.ThemeTag))),
			FeatureSlug: ds.FeatureSlug,
			Layout:      ds.Layout,
			Visual: models.VisualDirection{
				Setting:     ds.Visual.Setting,
				CameraAngle: ds.Visual.CameraAngle,
				Focus:       ds.Visual.Focus,
				Lighting:    ds.Visual.Lighting,
			},
		}
		board.Scenes = append(board.Scenes, scene)
	}

	ensureFraming(board)
	return board
}

func sceneType(raw string) models.SceneType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "intro":
		return models.SceneTypeIntro
	case "tech":
		return models.SceneTypeTech
	case "outro":
		return models.SceneTypeOutro
	default:
		return models.SceneTypeSlide
	}
}

// ensureFraming guarantees the story opens with an intro and closes with an
// outro, whatever the model drafted.
func ensureFraming(board *models.Storyboard) {
	if len(board.Scenes) == 0 || board.Scenes[0].Type != models.SceneTypeIntro {
		intro := models.Scene{
			ID:   uuid.NewString(),
			Type: models.SceneTypeIntro,
			Visual: models.VisualDirection{
				Setting: "studio", CameraAngle: "front three-quarter",
				Focus: "the whole vehicle", Lighting: "soft key light",
			},
		}
		board.Scenes = append([]models.Scene{intro}, board.Scenes...)
	}
	last := board.Scenes[len(board.Scenes)-1]
	if last.Type != models.SceneTypeOutro {
		board.Scenes = append(board.Scenes, models.Scene{
			ID:   uuid.NewString(),
			Type: models.SceneTypeOutro,
			Visual: models.VisualDirection{
				Setting: "open road at dusk", CameraAngle: "rear three-quarter",
				Focus: "the vehicle driving away", Lighting: "golden hour",
			},
		})
	}
}

// FeatureSummary condenses the context into the planner's analysis summary.
func FeatureSummary(vctx *vehicle.Context) string {
	var parts []string
	if vctx.Flags.IsSport {
		parts = append(parts, "sporty character")
	}
	if vctx.Flags.IsFamily {
		parts = append(parts, "family practicality")
	}
	if vctx.Flags.IsEco {
		parts = append(parts, "efficiency")
	}
	if hp := vctx.Specs.Performance.HorsepowerHP; hp != nil {
		parts = append(parts, fmt.Sprintf("%.0f hp", *hp))
	}
	if trunk := vctx.Specs.Dimensions.TrunkLiters; trunk != nil {
		parts = append(parts, fmt.Sprintf("%.0f L trunk", *trunk))
	}
	if len(vctx.Certifications) > 0 {
		parts = append(parts, fmt.Sprintf("%d verified certifications", len(vctx.Certifications)))
	}
	parts = append(parts, fmt.Sprintf("%s mileage", vctx.Flags.MileageCategory))
	return strings.Join(parts, ", ")
}

func styleOrDefault(style string) string {
	if strings.TrimSpace(style) == "" {
		return "cinematic"
	}
	return style
}
