package rank

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/model"
	"github.com/ranklens/ranklens/internal/store"
	"github.com/ranklens/ranklens/pkg/serp"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeStore is an in-memory store.Store with injectable failures.
type fakeStore struct {
	mu        sync.Mutex
	websites  map[string]model.Website
	prefs     map[string]model.KeywordPreference
	snapshots []model.RankingSnapshot
	settings  map[string]int

	websiteErr  error
	prefErr     error
	saveErr     error
	settingsErr error
	markErr     error

	markCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		websites: make(map[string]model.Website),
		prefs:    make(map[string]model.KeywordPreference),
		settings: make(map[string]int),
	}
}

func prefKey(websiteID, keyword string) string { return websiteID + "|" + keyword }

func (f *fakeStore) GetWebsite(ctx context.Context, id string) (*model.Website, error) {
	if f.websiteErr != nil {
		return nil, f.websiteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.websites[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &w, nil
}

func (f *fakeStore) UpsertWebsite(ctx context.Context, w model.Website) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.websites[w.ID] = w
	return nil
}

func (f *fakeStore) GetKeywordPreference(ctx context.Context, websiteID, keyword string) (*model.KeywordPreference, error) {
	if f.prefErr != nil {
		return nil, f.prefErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[prefKey(websiteID, keyword)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) SetKeywordPreference(ctx context.Context, pref model.KeywordPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[prefKey(pref.WebsiteID, pref.Keyword)] = pref
	return nil
}

func (f *fakeStore) MarkDeepSearch(ctx context.Context, websiteID, keyword string, at time.Time, cooldown time.Duration) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	p, ok := f.prefs[prefKey(websiteID, keyword)]
	if !ok {
		return false, nil
	}
	if p.LastDeepSearchAt != nil && p.LastDeepSearchAt.After(at.Add(-cooldown)) {
		return false, nil
	}
	stamped := at.UTC()
	p.LastDeepSearchAt = &stamped
	f.prefs[prefKey(websiteID, keyword)] = p
	return true, nil
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, snap *model.RankingSnapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, *snap)
	return nil
}

func (f *fakeStore) ListSnapshots(ctx context.Context, filter store.SnapshotFilter) ([]model.RankingSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RankingSnapshot(nil), f.snapshots...), nil
}

func (f *fakeStore) GetSettings(ctx context.Context, keys []string) (map[string]int, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, k := range keys {
		if v, ok := f.settings[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeStore) SetSetting(ctx context.Context, key string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

var _ store.Store = (*fakeStore)(nil)

// serpPage builds a provider result page of n entries with matchLink at the
// given in-page index (-1 for a page with no match).
func serpPage(n, matchIndex int, matchLink string) *serp.SearchResponse {
	resp := &serp.SearchResponse{OrganicResults: make([]serp.OrganicResult, n)}
	for i := range resp.OrganicResults {
		link := "https://other-site.example.net/p"
		if i == matchIndex {
			link = matchLink
		}
		resp.OrganicResults[i] = serp.OrganicResult{
			Position: i + 1,
			Title:    "result",
			Link:     link,
			Snippet:  "snippet",
		}
	}
	return resp
}
