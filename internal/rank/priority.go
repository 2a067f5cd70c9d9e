package rank

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/model"
)

// PriorityStatus describes how deep a keyword's search may go.
type PriorityStatus struct {
	IsPriority      bool `json:"is_priority"`
	NeedsDeepSearch bool `json:"needs_deep_search"`
}

// PreferenceReader is the slice of the store the priority resolver depends on.
type PreferenceReader interface {
	GetKeywordPreference(ctx context.Context, websiteID, keyword string) (*model.KeywordPreference, error)
}

// ResolvePriority determines whether the (website, keyword) pair is flagged
// as priority and whether its deep-search cooldown has elapsed. A missing
// preference row or a failed lookup both resolve to the default state: not
// priority, no deep search due.
func ResolvePriority(ctx context.Context, st PreferenceReader, websiteID, keyword string, cooldown time.Duration, now time.Time) PriorityStatus {
	pref, err := st.GetKeywordPreference(ctx, websiteID, keyword)
	if err != nil {
		zap.L().Warn("rank: keyword preference lookup failed",
			zap.String("website_id", websiteID),
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return PriorityStatus{}
	}
	if pref == nil {
		return PriorityStatus{}
	}

	status := PriorityStatus{IsPriority: pref.IsPriority}
	if pref.DeepSearchEnabled {
		status.NeedsDeepSearch = pref.LastDeepSearchAt == nil ||
			now.Sub(*pref.LastDeepSearchAt) > cooldown
	}
	return status
}
