package model

import "time"

// Confidence is a coarse reliability label derived from how deep in the
// result pages a match was found.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // position 1-100
	ConfidenceMedium Confidence = "medium" // position 101-200
	ConfidenceLow    Confidence = "low"    // position 201+
	ConfidenceNone   Confidence = "none"   // not found within search depth
)

// ConfidenceForPosition maps a 1-based result position to a confidence
// level. A nil position means the domain was not found.
func ConfidenceForPosition(position *int) Confidence {
	switch {
	case position == nil:
		return ConfidenceNone
	case *position <= 100:
		return ConfidenceHigh
	case *position <= 200:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RankingSnapshot records the observed outcome of one keyword search on one
// engine for one calendar date. Snapshots are append-only: re-checking the
// same combination on the same day adds another row, which is how intra-day
// movement is tracked.
type RankingSnapshot struct {
	ID             string     `json:"id"`
	WebsiteID      string     `json:"website_id"`
	Keyword        string     `json:"keyword"`
	SearchEngine   string     `json:"search_engine"`
	Position       *int       `json:"position,omitempty"`
	MatchedURL     string     `json:"matched_url,omitempty"`
	MatchedTitle   string     `json:"matched_title,omitempty"`
	MatchedSnippet string     `json:"matched_snippet,omitempty"`
	SearchDepth    int        `json:"search_depth"`
	Confidence     Confidence `json:"confidence"`
	IsPriority     bool       `json:"is_priority"`
	SnapshotDate   string     `json:"snapshot_date"` // YYYY-MM-DD, UTC
	CreatedAt      time.Time  `json:"created_at"`
}

// SnapshotDateFor formats t as the UTC calendar date stored on snapshots.
func SnapshotDateFor(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
