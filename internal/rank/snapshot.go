package rank

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/model"
)

// SnapshotStore is the slice of the store the snapshot writer depends on.
type SnapshotStore interface {
	PreferenceReader
	SaveSnapshot(ctx context.Context, snap *model.RankingSnapshot) error
}

// WriteSnapshot persists the outcome of one executor invocation as a new
// immutable snapshot row dated with the invocation's UTC calendar date. The
// priority flag is fetched fresh at write time. A persistence failure is
// logged and reported as false; it never aborts the run.
func WriteSnapshot(ctx context.Context, st SnapshotStore, websiteID, keyword, engine string, out Outcome, now time.Time) bool {
	snap := &model.RankingSnapshot{
		WebsiteID:    websiteID,
		Keyword:      keyword,
		SearchEngine: engine,
		SearchDepth:  out.Depth,
		Confidence:   model.ConfidenceNone,
		SnapshotDate: model.SnapshotDateFor(now),
	}

	if out.Match != nil {
		pos := out.Match.Position
		snap.Position = &pos
		snap.MatchedURL = out.Match.URL
		snap.MatchedTitle = out.Match.Title
		snap.MatchedSnippet = out.Match.Snippet
		snap.Confidence = model.ConfidenceForPosition(&pos)
	}

	if pref, err := st.GetKeywordPreference(ctx, websiteID, keyword); err == nil && pref != nil {
		snap.IsPriority = pref.IsPriority
	}

	if err := st.SaveSnapshot(ctx, snap); err != nil {
		zap.L().Error("rank: snapshot write failed",
			zap.String("website_id", websiteID),
			zap.String("keyword", keyword),
			zap.String("engine", engine),
			zap.Error(err),
		)
		return false
	}
	return true
}
