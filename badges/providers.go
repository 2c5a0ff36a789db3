package badges

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

// SafetyRater abstracts the external crash-safety rating service.
type SafetyRater interface {
	// OverallStars returns the overall crash rating (1-5 stars) for a
	// year/make/model, or an error when the service has no rating.
	OverallStars(ctx context.Context, year int, make, model string) (int, error)
}

// EfficiencyRater abstracts the external fuel-efficiency rating service.
type EfficiencyRater interface {
	// SmartwayCertified reports whether the year/make/model carries the
	// efficiency certification.
	SmartwayCertified(ctx context.Context, year int, make, model string) (bool, error)
}

// usMarketMakes lists makes sold in the US market, where the two rating
// providers have coverage. Queries are skipped for anything else.
var usMarketMakes = map[string]bool{
	"acura": true, "audi": true, "bmw": true, "buick": true, "cadillac": true,
	"chevrolet": true, "chrysler": true, "dodge": true, "ford": true,
	"genesis": true, "gmc": true, "honda": true, "hyundai": true,
	"infiniti": true, "jeep": true, "kia": true, "lexus": true, "lincoln": true,
	"mazda": true, "mercedes-benz": true, "mini": true, "mitsubishi": true,
	"nissan": true, "polestar": true, "porsche": true, "ram": true,
	"rivian": true, "subaru": true, "tesla": true, "toyota": true,
	"volkswagen": true, "volvo": true,
}

// CollectProviders queries the crash-safety and efficiency rating services
// for markets where the make is sold. Each call has its own timeout and its
// failure is independently swallowed: a provider outage costs badges, never
// the run.
func CollectProviders(ctx context.Context, vctx *vehicle.Context, safety SafetyRater, efficiency EfficiencyRater, timeout time.Duration) []models.Badge {
	if !usMarketMakes[strings.ToLower(vctx.Identity.Make)] {
		return nil
	}

	var out []models.Badge
	id := vctx.Identity

	if safety != nil {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		stars, err := safety.OverallStars(callCtx, id.Year, id.Make, id.Model)
		cancel()
		if err != nil {
			log.WithError(err).Warnf("crash-safety lookup failed for %d %s %s", id.Year, id.Make, id.Model)
		} else if badgeID := starsBadgeID(stars); badgeID != "" {
			if b, ok := FromRegistry(badgeID, models.MethodProvider, fmt.Sprintf("%d-star overall rating", stars)); ok {
				out = append(out, b)
			}
		}
	}

	if efficiency != nil {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		certified, err := efficiency.SmartwayCertified(callCtx, id.Year, id.Make, id.Model)
		cancel()
		if err != nil {
			log.WithError(err).Warnf("efficiency lookup failed for %d %s %s", id.Year, id.Make, id.Model)
		} else if certified {
			if b, ok := FromRegistry("epa_smartway", models.MethodProvider, "efficiency certification"); ok {
				out = append(out, b)
			}
		}
	}

	return out
}

func starsBadgeID(stars int) string {
	switch stars {
	case 5:
		return "nhtsa_5_star"
	case 4:
		return "nhtsa_4_star"
	default:
		return ""
	}
}
