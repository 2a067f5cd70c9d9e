package stats

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ranklens/ranklens/internal/model"
	"github.com/ranklens/ranklens/internal/store"
)

// Summary holds a point-in-time view of ranking coverage for one website.
type Summary struct {
	WebsiteID string `json:"website_id"`

	// Snapshot counts within the lookback window.
	TotalChecks int     `json:"total_checks"`
	Found       int     `json:"found"`
	NotFound    int     `json:"not_found"`
	FoundRate   float64 `json:"found_rate"`

	// Confidence distribution of found rankings.
	HighConfidence   int `json:"high_confidence"`
	MediumConfidence int `json:"medium_confidence"`
	LowConfidence    int `json:"low_confidence"`

	AvgPosition  float64 `json:"avg_position"`
	BestPosition *int    `json:"best_position"`
	DeepSearches int     `json:"deep_searches"`
	Keywords     int     `json:"keywords"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers coverage metrics from stored snapshots.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect summarizes the website's snapshots over the given lookback window.
func (c *Collector) Collect(ctx context.Context, websiteID string, lookbackHours int) (*Summary, error) {
	sum := &Summary{
		WebsiteID:     websiteID,
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}
	cutoff := sum.CollectedAt.Add(-time.Duration(lookbackHours) * time.Hour)

	snaps, err := c.store.ListSnapshots(ctx, store.SnapshotFilter{WebsiteID: websiteID})
	if err != nil {
		return nil, eris.Wrapf(err, "stats: list snapshots for %s", websiteID)
	}

	var totalPosition int
	keywords := make(map[string]struct{})

	for _, s := range snaps {
		if lookbackHours > 0 && s.CreatedAt.Before(cutoff) {
			continue
		}
		sum.TotalChecks++
		keywords[s.Keyword] = struct{}{}

		// The baseline run inspects at most the first page of 100.
		if s.SearchDepth > 100 {
			sum.DeepSearches++
		}

		if s.Position == nil {
			sum.NotFound++
			continue
		}
		sum.Found++
		totalPosition += *s.Position
		if sum.BestPosition == nil || *s.Position < *sum.BestPosition {
			pos := *s.Position
			sum.BestPosition = &pos
		}

		switch s.Confidence {
		case model.ConfidenceHigh:
			sum.HighConfidence++
		case model.ConfidenceMedium:
			sum.MediumConfidence++
		case model.ConfidenceLow:
			sum.LowConfidence++
		}
	}

	sum.Keywords = len(keywords)
	if sum.TotalChecks > 0 {
		sum.FoundRate = float64(sum.Found) / float64(sum.TotalChecks)
	}
	if sum.Found > 0 {
		sum.AvgPosition = float64(totalPosition) / float64(sum.Found)
	}
	return sum, nil
}
