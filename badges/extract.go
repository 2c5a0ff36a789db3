package badges

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/apex/log"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/parser"
	"vehicle-story-pipeline/vehicle"
)

// DefaultSearchTextBudget caps the combined search text handed to the model.
const DefaultSearchTextBudget = 4000

const extractSystemPrompt = `You verify vehicle certifications against search results.
You may ONLY report badge ids from the allowed list. If the search results do
not clearly support a badge, report nothing for it. Returning an empty list
is a correct answer. For each badge you report, state your confidence as
HIGH or LOW. Only report HIGH when the evidence names the exact vehicle and
the exact rating or award.`

// extraction is the schema-constrained reply of the extraction model.
type extraction struct {
	Badges []struct {
		ID         string `json:"id"`
		Confidence string `json:"confidence"`
		Evidence   string `json:"evidence"`
	} `json:"badges"`
}

var extractSchema = llm.Schema{
	Name: "badge_extraction",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"badges": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         map[string]any{"type": "string"},
						"confidence": map[string]any{"type": "string", "enum": []string{"HIGH", "LOW"}},
						"evidence":   map[string]any{"type": "string"},
					},
					"required": []string{"id", "confidence"},
				},
			},
		},
		"required": []string{"badges"},
	},
}

// CollectSearch issues two topic-scoped web searches (safety evidence,
// awards evidence), truncates the combined text to budget and asks the
// language model to extract badge ids from the fixed allow-list. Only
// HIGH-confidence extractions of known ids are kept; everything else is the
// hallucination the guard exists for.
func CollectSearch(ctx context.Context, vctx *vehicle.Context, searcher llm.Searcher, model llm.Client, budget int) []models.Badge {
	if searcher == nil || model == nil {
		return nil
	}
	if budget <= 0 {
		budget = DefaultSearchTextBudget
	}

	id := vctx.Identity
	queries := []string{
		fmt.Sprintf("%d %s %s crash test safety rating", id.Year, id.Make, id.Model),
		fmt.Sprintf("%d %s %s awards car of the year", id.Year, id.Make, id.Model),
	}

	var sb strings.Builder
	for _, q := range queries {
		res, err := searcher.Search(ctx, q)
		if err != nil {
			log.WithError(err).Warnf("badge search failed: %q", q)
			continue
		}
		if res.Answer != "" {
			sb.WriteString(res.Answer)
			sb.WriteByte('\n')
		}
		for _, snippet := range res.Snippets {
			sb.WriteString(snippet)
			sb.WriteByte('\n')
		}
	}

	evidence := sb.String()
	if strings.TrimSpace(evidence) == "" {
		return nil
	}
	if len(evidence) > budget {
		evidence = evidence[:budget]
	}

	user := fmt.Sprintf("Vehicle: %d %s %s %s\nAllowed badge ids: %s\n\nSearch results:\n%s",
		id.Year, id.Make, id.Model, id.Trim, strings.Join(allowedIDs(), ", "), evidence)

	raw, err := model.GenerateJSON(ctx, extractSystemPrompt, user, extractSchema)
	if err != nil {
		log.WithError(err).Warn("badge extraction call failed")
		return nil
	}

	var parsed extraction
	if err := parser.ParseObject(raw, &parsed); err != nil {
		log.WithError(err).Warn("badge extraction response unparseable")
		return nil
	}

	var out []models.Badge
	for _, item := range parsed.Badges {
		if !strings.EqualFold(item.Confidence, "HIGH") {
			continue
		}
		b, ok := FromRegistry(strings.ToLower(strings.TrimSpace(item.ID)), models.MethodSearch, item.Evidence)
		if !ok {
			log.Warnf("badge extraction returned unmapped id %q, discarding", item.ID)
			continue
		}
		out = append(out, b)
	}
	return out
}

func allowedIDs() []string {
	ids := make([]string, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
