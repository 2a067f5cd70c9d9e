package rank

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ranklens/ranklens/internal/resilience"
	"github.com/ranklens/ranklens/pkg/serp"
)

// DeepSearchMarker is the slice of the store the executor needs to spend a
// keyword's cooldown token.
type DeepSearchMarker interface {
	MarkDeepSearch(ctx context.Context, websiteID, keyword string, at time.Time, cooldown time.Duration) (bool, error)
}

// Match is the earliest-ranked organic result belonging to the tracked domain.
type Match struct {
	Position int    `json:"position"` // global, 1-based
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// Outcome is the result of one executor invocation. Match is nil when the
// domain was not found within the depth ceiling, the provider ran out of
// pages, or the provider failed. Depth is the number of result positions
// actually inspected; an empty or failed first page leaves it at 0.
type Outcome struct {
	Match *Match `json:"match,omitempty"`
	Depth int    `json:"depth"`
}

// Executor finds the earliest-ranked organic result matching a tracked
// domain, paginating through provider result pages without exceeding the
// keyword's depth ceiling.
type Executor struct {
	client   serp.Client
	marker   DeepSearchMarker
	params   Params
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	country  string
	language string
	now      func() time.Time
}

// NewExecutor creates an Executor. The limiter paces every provider call and
// is shared with the orchestrator so sequential combinations stay spaced.
func NewExecutor(client serp.Client, marker DeepSearchMarker, params Params, limiter *rate.Limiter, retry resilience.RetryConfig, country, language string) *Executor {
	return &Executor{
		client:   client,
		marker:   marker,
		params:   params,
		limiter:  limiter,
		retry:    retry,
		country:  country,
		language: language,
		now:      time.Now,
	}
}

// WithNow sets the clock used for deep-search stamping. For tests.
func (e *Executor) WithNow(now func() time.Time) *Executor {
	e.now = now
	return e
}

// FindRanking searches for domain under keyword on one engine. The ceiling
// is the configured max for a priority keyword whose deep search is due,
// otherwise the fixed baseline. It stops on the first match, on an empty
// page, or at the ceiling, whichever comes first. Provider failures are
// isolated: the outcome so far is returned, never an error.
func (e *Executor) FindRanking(ctx context.Context, websiteID, domain, keyword, engine string, status PriorityStatus) Outcome {
	log := zap.L().With(
		zap.String("website_id", websiteID),
		zap.String("keyword", keyword),
		zap.String("engine", engine),
	)

	ceiling := baselineDepth
	if status.IsPriority && status.NeedsDeepSearch {
		ceiling = e.params.MaxResults
		log.Info("deep search", zap.Int("ceiling", ceiling))
	}

	var out Outcome
	for offset := 0; offset < ceiling && out.Match == nil; {
		batch := e.params.BatchSize
		if remaining := ceiling - offset; batch > remaining {
			batch = remaining
		}

		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		req := serp.SearchRequest{
			Query:    keyword,
			Engine:   engine,
			Num:      batch,
			Start:    offset,
			Country:  e.country,
			Language: e.language,
		}
		resp, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*serp.SearchResponse, error) {
			return e.client.Search(ctx, req)
		})
		if err != nil {
			// Isolated to this (keyword, engine) pair: report not-found
			// rather than aborting sibling combinations.
			log.Warn("provider search failed", zap.Int("offset", offset), zap.Error(err))
			break
		}

		if len(resp.OrganicResults) == 0 {
			// Provider has no more pages.
			break
		}

		out.Depth = offset + len(resp.OrganicResults)
		for i, r := range resp.OrganicResults {
			if MatchesDomain(r.Link, domain) {
				out.Match = &Match{
					Position: offset + i + 1,
					URL:      r.Link,
					Title:    r.Title,
					Snippet:  r.Snippet,
				}
				break
			}
		}

		offset += batch
	}

	// A deep search spends the cooldown token even on a miss, but only when
	// depth actually went past the baseline.
	if ceiling > baselineDepth && out.Depth > baselineDepth {
		stamped, err := e.marker.MarkDeepSearch(ctx, websiteID, keyword, e.now(), e.params.Cooldown())
		if err != nil {
			log.Warn("deep search stamp failed", zap.Error(err))
		} else if !stamped {
			log.Info("deep search stamp skipped, concurrent run won")
		}
	}

	if out.Match != nil {
		log.Info("domain found",
			zap.Int("position", out.Match.Position),
			zap.Int("depth", out.Depth),
		)
	} else {
		log.Info("domain not found", zap.Int("depth", out.Depth))
	}
	return out
}
