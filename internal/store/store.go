package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ranklens/ranklens/internal/model"
)

// ErrNotFound is returned when a requested website does not exist.
var ErrNotFound = eris.New("store: not found")

// SnapshotFilter specifies criteria for listing ranking snapshots.
type SnapshotFilter struct {
	WebsiteID    string `json:"website_id,omitempty"`
	Keyword      string `json:"keyword,omitempty"`
	SearchEngine string `json:"search_engine,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the rank resolution engine.
type Store interface {
	// Websites
	GetWebsite(ctx context.Context, id string) (*model.Website, error)
	UpsertWebsite(ctx context.Context, w model.Website) error

	// Keyword preferences. GetKeywordPreference returns (nil, nil) when no
	// row exists for the pair; absence is a valid state, not an error.
	GetKeywordPreference(ctx context.Context, websiteID, keyword string) (*model.KeywordPreference, error)
	SetKeywordPreference(ctx context.Context, pref model.KeywordPreference) error

	// MarkDeepSearch stamps last_deep_search_at = at, but only if the row's
	// current timestamp is still outside the cooldown window. Returns whether
	// the row was stamped; a concurrent run that stamped first wins.
	MarkDeepSearch(ctx context.Context, websiteID, keyword string, at time.Time, cooldown time.Duration) (bool, error)

	// Snapshots are append-only; SaveSnapshot never overwrites.
	SaveSnapshot(ctx context.Context, snap *model.RankingSnapshot) error
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.RankingSnapshot, error)

	// Settings
	GetSettings(ctx context.Context, keys []string) (map[string]int, error)
	SetSetting(ctx context.Context, key string, value int) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
