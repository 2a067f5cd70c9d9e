package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranklens/ranklens/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteWebsiteRoundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetWebsite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	w := model.Website{ID: "w1", Domain: "example.com", Keywords: "shoes, boots"}
	require.NoError(t, s.UpsertWebsite(ctx, w))

	got, err := s.GetWebsite(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, w, *got)

	// Upsert overwrites.
	w.Keywords = "sandals"
	require.NoError(t, s.UpsertWebsite(ctx, w))
	got, err = s.GetWebsite(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "sandals", got.Keywords)
}

func TestSQLiteKeywordPreference(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("missing row returns nil nil", func(t *testing.T) {
		p, err := s.GetKeywordPreference(ctx, "w1", "shoes")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("roundtrip without timestamp", func(t *testing.T) {
		pref := model.KeywordPreference{
			WebsiteID: "w1", Keyword: "shoes",
			IsPriority: true, DeepSearchEnabled: true,
		}
		require.NoError(t, s.SetKeywordPreference(ctx, pref))

		got, err := s.GetKeywordPreference(ctx, "w1", "shoes")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsPriority)
		assert.True(t, got.DeepSearchEnabled)
		assert.Nil(t, got.LastDeepSearchAt)
	})

	t.Run("roundtrip with timestamp", func(t *testing.T) {
		last := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		pref := model.KeywordPreference{
			WebsiteID: "w1", Keyword: "boots",
			DeepSearchEnabled: true, LastDeepSearchAt: &last,
		}
		require.NoError(t, s.SetKeywordPreference(ctx, pref))

		got, err := s.GetKeywordPreference(ctx, "w1", "boots")
		require.NoError(t, err)
		require.NotNil(t, got.LastDeepSearchAt)
		assert.True(t, got.LastDeepSearchAt.Equal(last))
	})
}

func TestSQLiteMarkDeepSearch(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	cooldown := 168 * time.Hour
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	t.Run("missing row is not stamped", func(t *testing.T) {
		stamped, err := s.MarkDeepSearch(ctx, "w1", "missing", now, cooldown)
		require.NoError(t, err)
		assert.False(t, stamped)
	})

	t.Run("stamps when no prior timestamp", func(t *testing.T) {
		require.NoError(t, s.SetKeywordPreference(ctx, model.KeywordPreference{
			WebsiteID: "w1", Keyword: "shoes", DeepSearchEnabled: true,
		}))

		stamped, err := s.MarkDeepSearch(ctx, "w1", "shoes", now, cooldown)
		require.NoError(t, err)
		assert.True(t, stamped)

		got, err := s.GetKeywordPreference(ctx, "w1", "shoes")
		require.NoError(t, err)
		require.NotNil(t, got.LastDeepSearchAt)
		assert.True(t, got.LastDeepSearchAt.Equal(now))
	})

	t.Run("refuses while cooldown active", func(t *testing.T) {
		later := now.Add(2 * time.Hour)
		stamped, err := s.MarkDeepSearch(ctx, "w1", "shoes", later, cooldown)
		require.NoError(t, err)
		assert.False(t, stamped)

		got, err := s.GetKeywordPreference(ctx, "w1", "shoes")
		require.NoError(t, err)
		assert.True(t, got.LastDeepSearchAt.Equal(now), "timestamp must not move")
	})

	t.Run("stamps again after cooldown elapses", func(t *testing.T) {
		later := now.Add(cooldown + time.Hour)
		stamped, err := s.MarkDeepSearch(ctx, "w1", "shoes", later, cooldown)
		require.NoError(t, err)
		assert.True(t, stamped)
	})
}

func TestSQLiteSnapshots(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	pos := 37
	snap := model.RankingSnapshot{
		WebsiteID:    "w1",
		Keyword:      "shoes",
		SearchEngine: "google",
		Position:     &pos,
		MatchedURL:   "https://example.com/shop",
		MatchedTitle: "Shop",
		SearchDepth:  100,
		Confidence:   model.ConfidenceHigh,
		IsPriority:   true,
		SnapshotDate: "2026-08-31",
	}
	require.NoError(t, s.SaveSnapshot(ctx, &snap))
	assert.NotEmpty(t, snap.ID, "ID assigned on save")

	// Same combination again the same day: append, not overwrite.
	miss := model.RankingSnapshot{
		WebsiteID:    "w1",
		Keyword:      "shoes",
		SearchEngine: "google",
		SearchDepth:  0,
		Confidence:   model.ConfidenceNone,
		SnapshotDate: "2026-08-31",
	}
	require.NoError(t, s.SaveSnapshot(ctx, &miss))

	got, err := s.ListSnapshots(ctx, SnapshotFilter{WebsiteID: "w1", Keyword: "shoes"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	var found, notFound *model.RankingSnapshot
	for i := range got {
		if got[i].Position != nil {
			found = &got[i]
		} else {
			notFound = &got[i]
		}
	}
	require.NotNil(t, found)
	require.NotNil(t, notFound)
	assert.Equal(t, 37, *found.Position)
	assert.Equal(t, "https://example.com/shop", found.MatchedURL)
	assert.Equal(t, model.ConfidenceHigh, found.Confidence)
	assert.Equal(t, model.ConfidenceNone, notFound.Confidence)
	assert.Empty(t, notFound.MatchedURL)
	assert.Zero(t, notFound.SearchDepth)

	t.Run("engine filter", func(t *testing.T) {
		got, err := s.ListSnapshots(ctx, SnapshotFilter{WebsiteID: "w1", SearchEngine: "bing"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := s.ListSnapshots(ctx, SnapshotFilter{WebsiteID: "w1", Limit: 1})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestSQLiteSettings(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetSetting(ctx, "deep_search_max_results", 500))
	require.NoError(t, s.SetSetting(ctx, "deep_search_batch_size", 50))

	got, err := s.GetSettings(ctx, []string{
		"deep_search_max_results",
		"deep_search_cooldown_hours", // not set
		"deep_search_batch_size",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"deep_search_max_results": 500,
		"deep_search_batch_size":  50,
	}, got)

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.SetSetting(ctx, "deep_search_max_results", 300))
		got, err := s.GetSettings(ctx, []string{"deep_search_max_results"})
		require.NoError(t, err)
		assert.Equal(t, 300, got["deep_search_max_results"])
	})
}
