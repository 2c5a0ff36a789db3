package story

import (
	"context"
	"strings"
	"testing"

	"vehicle-story-pipeline/models"
)

const plannerDraftReply = `{
  "title": "Octavia RS: The Everyday Rocket",
  "narrative_arc_summary": "From family hauler to back-road hero.",
  "scenes": [
    {"type": "slide", "theme_tag": "", "feature_slug": "big-power",
     "visual_direction": {"setting": "city street", "camera_angle": "front", "focus": "grille", "lighting": "dusk"}},
    {"type": "tech", "theme_tag": "PERFORMANCE", "feature_slug": "acceleration",
     "visual_direction": {"setting": "track", "camera_angle": "side", "focus": "wheels", "lighting": "noon"}},
    {"type": "outro", "theme_tag": "",
     "visual_direction": {"setting": "garage", "camera_angle": "rear", "focus": "tailgate", "lighting": "warm"}}
  ]
}`

func TestPlanStoryboardFramesAndClassifies(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"storyboard_draft": plannerDraftReply}}

	board, err := PlanStoryboard(context.Background(), model, testContext(t), "", 0)
	if err != nil {
		t.Fatalf("PlanStoryboard: %v", err)
	}

	if board.Title != "Octavia RS: The Everyday Rocket" {
		t.Errorf("title = %q", board.Title)
	}
	// The draft had no intro, so one is prepended.
	if board.Scenes[0].Type != models.SceneTypeIntro {
		t.Fatalf("first scene = %s, want intro", board.Scenes[0].Type)
	}
	if last := board.Scenes[len(board.Scenes)-1]; last.Type != models.SceneTypeOutro {
		t.Fatalf("last scene = %s, want outro", last.Type)
	}

	for _, scene := range board.Scenes {
		if scene.ID == "" {
			t.Error("scene without id")
		}
	}

	if n := countTech(board); n != 1 {
		t.Errorf("tech scenes = %d, want 1", n)
	}
	for _, scene := range board.Scenes {
		if scene.Type == models.SceneTypeTech && scene.TechConfig == nil {
			t.Error("tech scene left without config")
		}
	}
}

func TestPlanStoryboardModelFailure(t *testing.T) {
	model := &scriptedModel{failFor: map[string]bool{"storyboard_draft": true}}
	if _, err := PlanStoryboard(context.Background(), model, testContext(t), "", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlanStoryboardUnparseableReply(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"storyboard_draft": "no json here at all"}}
	if _, err := PlanStoryboard(context.Background(), model, testContext(t), "", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestFeatureSummaryNamesFlags(t *testing.T) {
	vctx := testContext(t)
	summary := FeatureSummary(vctx)
	if summary == "" {
		t.Fatal("empty summary")
	}
	// 245 hp Octavia with 600 L trunk and 5 seats.
	for _, want := range []string{"245 hp", "600 L trunk"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %s", want, summary)
		}
	}
}
