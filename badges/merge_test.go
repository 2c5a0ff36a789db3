package badges

import (
	"testing"

	"vehicle-story-pipeline/models"
)

func TestMergeGroupRankResolution(t *testing.T) {
	high, _ := FromRegistry("ncap_5_star", models.MethodProvider, "")
	low, _ := FromRegistry("ncap_4_star", models.MethodSearch, "")

	merged := Merge([]models.Badge{low}, []models.Badge{high})
	if len(merged) != 1 {
		t.Fatalf("Merge() returned %d badges, want 1", len(merged))
	}
	if merged[0].ID != "ncap_5_star" {
		t.Errorf("Merge() kept %s, want the rank-100 ncap_5_star", merged[0].ID)
	}
}

func TestMergeDifferentGroupsSurvive(t *testing.T) {
	ncap, _ := FromRegistry("ncap_5_star", models.MethodProvider, "")
	sticker, _ := FromRegistry("green_sticker_4", models.MethodRule, "")

	merged := Merge([]models.Badge{ncap, sticker})
	if len(merged) != 2 {
		t.Fatalf("Merge() returned %d badges, want 2", len(merged))
	}
}

func TestMergeDuplicateSameBadge(t *testing.T) {
	a, _ := FromRegistry("car_of_the_year", models.MethodSearch, "press release")
	b, _ := FromRegistry("car_of_the_year", models.MethodSearch, "award site")

	merged := Merge([]models.Badge{a}, []models.Badge{b})
	if len(merged) != 1 {
		t.Fatalf("Merge() returned %d badges, want 1", len(merged))
	}
}

func TestMergeCategoryOrdering(t *testing.T) {
	award, _ := FromRegistry("car_of_the_year", models.MethodSearch, "")
	eco, _ := FromRegistry("energy_class_a", models.MethodRule, "")
	safety, _ := FromRegistry("nhtsa_5_star", models.MethodProvider, "")
	tech, _ := FromRegistry("adaptive_cruise", models.MethodRule, "")
	perf, _ := FromRegistry("sport_package", models.MethodRule, "")

	merged := Merge([]models.Badge{award, eco, tech, perf, safety})

	wantOrder := []string{"nhtsa_5_star", "energy_class_a", "sport_package", "adaptive_cruise", "car_of_the_year"}
	if len(merged) != len(wantOrder) {
		t.Fatalf("Merge() returned %d badges, want %d", len(merged), len(wantOrder))
	}
	for i, want := range wantOrder {
		if merged[i].ID != want {
			t.Errorf("Merge()[%d] = %s, want %s", i, merged[i].ID, want)
		}
	}
}

func TestMergeRankDescendingWithinCategory(t *testing.T) {
	lower := models.Badge{ID: "x_low", Category: models.CategorySafety, Group: "gx", Rank: 40}
	higher := models.Badge{ID: "x_high", Category: models.CategorySafety, Group: "gy", Rank: 90}

	merged := Merge([]models.Badge{lower, higher})
	if merged[0].ID != "x_high" || merged[1].ID != "x_low" {
		t.Errorf("Merge() order = [%s %s], want rank descending within category", merged[0].ID, merged[1].ID)
	}
}

func TestMergeUnknownCategoryLast(t *testing.T) {
	odd := models.Badge{ID: "mystery", Category: "Heritage", Group: "heritage", Rank: 999}
	reg, _ := FromRegistry("low_emission_zone_ok", models.MethodRule, "")

	merged := Merge([]models.Badge{odd, reg})
	if merged[len(merged)-1].ID != "mystery" {
		t.Errorf("Merge() should sort unknown categories last, got order %v", []string{merged[0].ID, merged[1].ID})
	}
}
