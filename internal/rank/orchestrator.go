package rank

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ranklens/ranklens/internal/config"
	"github.com/ranklens/ranklens/internal/resilience"
	"github.com/ranklens/ranklens/internal/store"
	"github.com/ranklens/ranklens/pkg/serp"
)

// Terminal errors: the only failures that abort a whole check. Everything
// else is isolated to its (keyword, engine) combination.
var (
	ErrWebsiteNotFound = eris.New("rank: website not found")
	ErrNoKeywords      = eris.New("rank: no keywords configured")
)

// KeywordResult is the per-(keyword, engine) outcome of a check.
type KeywordResult struct {
	Keyword      string `json:"keyword"`
	SearchEngine string `json:"search_engine"`
	Position     *int   `json:"position"`
	Saved        bool   `json:"saved"`
}

// CheckResult summarizes one orchestration run across all combinations.
type CheckResult struct {
	Success         bool            `json:"success"`
	Domain          string          `json:"domain"`
	KeywordsChecked int             `json:"keywords_checked"`
	Found           int             `json:"found"`
	Saved           int             `json:"saved"`
	Results         []KeywordResult `json:"results"`
}

// Orchestrator walks keywords × engines for a website, resolving each
// combination sequentially through the executor and snapshot writer.
type Orchestrator struct {
	store   store.Store
	client  serp.Client
	engines []string
	delay   time.Duration
	retry   resilience.RetryConfig
	country string
	lang    string
	now     func() time.Time
}

// NewOrchestrator creates an Orchestrator from application config.
func NewOrchestrator(st store.Store, client serp.Client, cfg *config.Config) *Orchestrator {
	engines := cfg.Rank.Engines
	if len(engines) == 0 {
		engines = []string{"google", "bing"}
	}
	retry := resilience.DefaultRetryConfig()
	if cfg.Serp.MaxRetries > 0 {
		retry.MaxAttempts = cfg.Serp.MaxRetries
	}
	retry.OnRetry = resilience.RetryLogger("serp", "search")

	return &Orchestrator{
		store:   st,
		client:  client,
		engines: engines,
		delay:   cfg.Rank.RequestDelay(),
		retry:   retry,
		country: cfg.Serp.Country,
		lang:    cfg.Serp.Language,
		now:     time.Now,
	}
}

// WithNow sets the clock used for cooldown resolution and snapshot dates.
// For tests.
func (o *Orchestrator) WithNow(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// WithDelay overrides the provider call spacing. For tests.
func (o *Orchestrator) WithDelay(d time.Duration) *Orchestrator {
	o.delay = d
	return o
}

// CheckWebsite resolves rankings for every keyword × engine combination of
// the website. specificKeyword, when non-empty, overrides the website's
// configured keyword list. Execution is strictly sequential: one shared rate
// limiter spaces every provider call, which also spaces consecutive
// combinations.
func (o *Orchestrator) CheckWebsite(ctx context.Context, websiteID, specificKeyword string) (*CheckResult, error) {
	w, err := o.store.GetWebsite(ctx, websiteID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrWebsiteNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "rank: load website %s", websiteID)
	}

	var keywords []string
	if kw := strings.TrimSpace(specificKeyword); kw != "" {
		keywords = []string{kw}
	} else {
		keywords = w.KeywordList()
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	// Tunables load once per run, not per keyword.
	params := LoadParams(ctx, o.store)
	limiter := rate.NewLimiter(rate.Every(o.delay), 1)
	exec := NewExecutor(o.client, o.store, params, limiter, o.retry, o.country, o.lang).WithNow(o.now)

	log := zap.L().With(zap.String("website_id", websiteID), zap.String("domain", w.Domain))
	log.Info("rank check started",
		zap.Int("keywords", len(keywords)),
		zap.Strings("engines", o.engines),
	)

	result := &CheckResult{
		Success:         true,
		Domain:          w.Domain,
		KeywordsChecked: len(keywords),
	}

	for _, keyword := range keywords {
		for _, engine := range o.engines {
			if ctx.Err() != nil {
				return result, eris.Wrap(ctx.Err(), "rank: check canceled")
			}

			// Resolved per combination: a deep search on the first engine
			// spends the cooldown token, so the next engine stays shallow.
			status := ResolvePriority(ctx, o.store, websiteID, keyword, params.Cooldown(), o.now())

			out := exec.FindRanking(ctx, websiteID, w.Domain, keyword, engine, status)
			saved := WriteSnapshot(ctx, o.store, websiteID, keyword, engine, out, o.now())

			kr := KeywordResult{
				Keyword:      keyword,
				SearchEngine: engine,
				Saved:        saved,
			}
			if out.Match != nil {
				pos := out.Match.Position
				kr.Position = &pos
				result.Found++
			}
			if saved {
				result.Saved++
			}
			result.Results = append(result.Results, kr)
		}
	}

	log.Info("rank check complete",
		zap.Int("combinations", len(result.Results)),
		zap.Int("found", result.Found),
		zap.Int("saved", result.Saved),
	)
	return result, nil
}
