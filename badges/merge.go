package badges

import (
	"sort"

	"vehicle-story-pipeline/models"
)

// categoryPriority is the fixed display order. Unknown categories sort last.
var categoryPriority = map[models.BadgeCategory]int{
	models.CategorySafety:      0,
	models.CategoryEco:         1,
	models.CategoryPerformance: 2,
	models.CategoryTechnology:  3,
	models.CategoryReliability: 4,
	models.CategoryAward:       5,
	models.CategoryRegulatory:  6,
}

const unknownCategoryPriority = 7

// Merge flattens the collectors' badge lists, resolves mutually exclusive
// groups by keeping the highest-ranked entry, and sorts the result by the
// fixed category order with rank descending as the tie-break.
func Merge(lists ...[]models.Badge) []models.Badge {
	winners := make(map[string]models.Badge)
	var order []string

	for _, list := range lists {
		for _, b := range list {
			current, seen := winners[b.Group]
			if !seen {
				winners[b.Group] = b
				order = append(order, b.Group)
				continue
			}
			if b.Rank > current.Rank {
				winners[b.Group] = b
			}
		}
	}

	merged := make([]models.Badge, 0, len(order))
	for _, group := range order {
		merged = append(merged, winners[group])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		pi, pj := priorityOf(merged[i].Category), priorityOf(merged[j].Category)
		if pi != pj {
			return pi < pj
		}
		return merged[i].Rank > merged[j].Rank
	})

	return merged
}

func priorityOf(c models.BadgeCategory) int {
	if p, ok := categoryPriority[c]; ok {
		return p
	}
	return unknownCategoryPriority
}
