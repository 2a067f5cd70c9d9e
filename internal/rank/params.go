// Package rank implements the adaptive rank resolution engine: batched SERP
// queries with an escalating depth ceiling for priority keywords, gated by a
// per-keyword deep-search cooldown.
package rank

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Settings store keys for the deep-search tunables.
const (
	SettingMaxResults    = "deep_search_max_results"
	SettingCooldownHours = "deep_search_cooldown_hours"
	SettingBatchSize     = "deep_search_batch_size"
)

// baselineDepth is the depth ceiling for ordinary (non-deep) searches.
// A search past this depth is a deep search and spends the cooldown token.
const baselineDepth = 100

const (
	defaultMaxResults    = 300
	defaultCooldownHours = 168
	defaultBatchSize     = 100
)

// Params are the deep-search tunables, loaded once per orchestration run.
type Params struct {
	MaxResults    int `json:"deep_search_max_results"`
	CooldownHours int `json:"deep_search_cooldown_hours"`
	BatchSize     int `json:"deep_search_batch_size"`
}

// DefaultParams returns the hardcoded fallback parameters.
func DefaultParams() Params {
	return Params{
		MaxResults:    defaultMaxResults,
		CooldownHours: defaultCooldownHours,
		BatchSize:     defaultBatchSize,
	}
}

// Cooldown returns the minimum interval between deep searches for a keyword.
func (p Params) Cooldown() time.Duration {
	return time.Duration(p.CooldownHours) * time.Hour
}

// SettingsReader is the slice of the store the params loader depends on.
type SettingsReader interface {
	GetSettings(ctx context.Context, keys []string) (map[string]int, error)
}

// LoadParams fetches the deep-search tunables from the settings store,
// merging them key-by-key over the defaults. It never fails its caller: an
// unreachable store, a missing key, or a non-positive value all degrade to
// the default for that key alone.
func LoadParams(ctx context.Context, st SettingsReader) Params {
	params := DefaultParams()

	stored, err := st.GetSettings(ctx, []string{
		SettingMaxResults,
		SettingCooldownHours,
		SettingBatchSize,
	})
	if err != nil {
		zap.L().Warn("rank: settings store unreachable, using defaults", zap.Error(err))
		return params
	}

	if v, ok := stored[SettingMaxResults]; ok && v > 0 {
		params.MaxResults = v
	}
	if v, ok := stored[SettingCooldownHours]; ok && v > 0 {
		params.CooldownHours = v
	}
	if v, ok := stored[SettingBatchSize]; ok && v > 0 {
		params.BatchSize = v
	}
	return params
}
