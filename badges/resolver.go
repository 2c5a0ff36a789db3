package badges

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/metrics"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

// DefaultProviderTimeout bounds each rating-provider call.
const DefaultProviderTimeout = 10 * time.Second

// Resolver runs the three badge collectors and merges their results.
type Resolver struct {
	searcher   llm.Searcher
	model      llm.Client
	safety     SafetyRater
	efficiency EfficiencyRater

	providerTimeout time.Duration
	searchBudget    int
}

// NewResolver creates a badge resolver. Any collaborator may be nil; the
// corresponding collector then contributes nothing.
func NewResolver(searcher llm.Searcher, model llm.Client, safety SafetyRater, efficiency EfficiencyRater) *Resolver {
	return &Resolver{
		searcher:        searcher,
		model:           model,
		safety:          safety,
		efficiency:      efficiency,
		providerTimeout: DefaultProviderTimeout,
		searchBudget:    DefaultSearchTextBudget,
	}
}

// WithLimits overrides the provider timeout and search text budget.
// Nonpositive values keep the defaults.
func (r *Resolver) WithLimits(providerTimeout time.Duration, searchBudget int) *Resolver {
	if providerTimeout > 0 {
		r.providerTimeout = providerTimeout
	}
	if searchBudget > 0 {
		r.searchBudget = searchBudget
	}
	return r
}

// Resolve runs the rule, provider and search collectors concurrently and
// merges their badge lists. Each collector is independently fault-tolerant:
// a panic or failure in one is logged and treated as an empty result. A
// total failure yields an empty, non-fatal badge list.
func (r *Resolver) Resolve(ctx context.Context, vctx *vehicle.Context) []models.Badge {
	results := make([][]models.Badge, 3)
	var wg sync.WaitGroup

	run := func(idx int, name string, collect func() []models.Badge) {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("badge collector %s panicked: %v", name, rec)
				metrics.BadgeCollectorErrorsTotal.WithLabelValues(name).Inc()
			}
		}()
		results[idx] = collect()
		log.Infof("badge collector %s returned %d badges", name, len(results[idx]))
	}

	wg.Add(3)
	go run(0, "rules", func() []models.Badge {
		return CollectRules(vctx)
	})
	go run(1, "providers", func() []models.Badge {
		return CollectProviders(ctx, vctx, r.safety, r.efficiency, r.providerTimeout)
	})
	go run(2, "search", func() []models.Badge {
		return CollectSearch(ctx, vctx, r.searcher, r.model, r.searchBudget)
	})
	wg.Wait()

	return Merge(results[0], results[1], results[2])
}
