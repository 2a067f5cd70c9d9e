package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ranklens/ranklens/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS websites (
	id       TEXT PRIMARY KEY,
	domain   TEXT NOT NULL,
	keywords TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS keyword_preferences (
	website_id          TEXT NOT NULL,
	keyword             TEXT NOT NULL,
	is_priority         INTEGER NOT NULL DEFAULT 0,
	deep_search_enabled INTEGER NOT NULL DEFAULT 0,
	last_deep_search_at DATETIME,
	PRIMARY KEY (website_id, keyword)
);

CREATE TABLE IF NOT EXISTS ranking_snapshots (
	id              TEXT PRIMARY KEY,
	website_id      TEXT NOT NULL,
	keyword         TEXT NOT NULL,
	search_engine   TEXT NOT NULL,
	position        INTEGER,
	matched_url     TEXT,
	matched_title   TEXT,
	matched_snippet TEXT,
	search_depth    INTEGER NOT NULL DEFAULT 0,
	confidence      TEXT NOT NULL,
	is_priority     INTEGER NOT NULL DEFAULT 0,
	snapshot_date   TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS system_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_lookup
	ON ranking_snapshots(website_id, keyword, search_engine, snapshot_date);
CREATE INDEX IF NOT EXISTS idx_snapshots_date ON ranking_snapshots(snapshot_date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetWebsite(ctx context.Context, id string) (*model.Website, error) {
	var w model.Website
	err := s.db.QueryRowContext(ctx,
		`SELECT id, domain, keywords FROM websites WHERE id = ?`, id,
	).Scan(&w.ID, &w.Domain, &w.Keywords)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get website %s", id)
	}
	return &w, nil
}

func (s *SQLiteStore) UpsertWebsite(ctx context.Context, w model.Website) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO websites (id, domain, keywords) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET domain = excluded.domain, keywords = excluded.keywords`,
		w.ID, w.Domain, w.Keywords,
	)
	return eris.Wrapf(err, "sqlite: upsert website %s", w.ID)
}

func (s *SQLiteStore) GetKeywordPreference(ctx context.Context, websiteID, keyword string) (*model.KeywordPreference, error) {
	var p model.KeywordPreference
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT website_id, keyword, is_priority, deep_search_enabled, last_deep_search_at
		 FROM keyword_preferences WHERE website_id = ? AND keyword = ?`,
		websiteID, keyword,
	).Scan(&p.WebsiteID, &p.Keyword, &p.IsPriority, &p.DeepSearchEnabled, &last)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get keyword preference %s/%s", websiteID, keyword)
	}
	if last.Valid {
		t := last.Time.UTC()
		p.LastDeepSearchAt = &t
	}
	return &p, nil
}

func (s *SQLiteStore) SetKeywordPreference(ctx context.Context, pref model.KeywordPreference) error {
	var last any
	if pref.LastDeepSearchAt != nil {
		last = pref.LastDeepSearchAt.UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keyword_preferences (website_id, keyword, is_priority, deep_search_enabled, last_deep_search_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (website_id, keyword) DO UPDATE SET
			is_priority = excluded.is_priority,
			deep_search_enabled = excluded.deep_search_enabled,
			last_deep_search_at = excluded.last_deep_search_at`,
		pref.WebsiteID, pref.Keyword, pref.IsPriority, pref.DeepSearchEnabled, last,
	)
	return eris.Wrapf(err, "sqlite: set keyword preference %s/%s", pref.WebsiteID, pref.Keyword)
}

func (s *SQLiteStore) MarkDeepSearch(ctx context.Context, websiteID, keyword string, at time.Time, cooldown time.Duration) (bool, error) {
	cutoff := at.Add(-cooldown).UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE keyword_preferences SET last_deep_search_at = ?
		 WHERE website_id = ? AND keyword = ?
		   AND (last_deep_search_at IS NULL OR last_deep_search_at <= ?)`,
		at.UTC(), websiteID, keyword, cutoff,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: mark deep search %s/%s", websiteID, keyword)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.RankingSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	var position any
	if snap.Position != nil {
		position = *snap.Position
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ranking_snapshots
			(id, website_id, keyword, search_engine, position, matched_url, matched_title,
			 matched_snippet, search_depth, confidence, is_priority, snapshot_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.WebsiteID, snap.Keyword, snap.SearchEngine, position,
		nullIfEmpty(snap.MatchedURL), nullIfEmpty(snap.MatchedTitle), nullIfEmpty(snap.MatchedSnippet),
		snap.SearchDepth, string(snap.Confidence), snap.IsPriority, snap.SnapshotDate, snap.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: save snapshot %s/%s", snap.WebsiteID, snap.Keyword)
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.RankingSnapshot, error) {
	query := `SELECT id, website_id, keyword, search_engine, position, matched_url, matched_title,
		matched_snippet, search_depth, confidence, is_priority, snapshot_date, created_at
		FROM ranking_snapshots WHERE 1=1`
	var args []any

	if filter.WebsiteID != "" {
		query += ` AND website_id = ?`
		args = append(args, filter.WebsiteID)
	}
	if filter.Keyword != "" {
		query += ` AND keyword = ?`
		args = append(args, filter.Keyword)
	}
	if filter.SearchEngine != "" {
		query += ` AND search_engine = ?`
		args = append(args, filter.SearchEngine)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []model.RankingSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) GetSettings(ctx context.Context, keys []string) (map[string]int, error) {
	out := make(map[string]int, len(keys))
	for _, key := range keys {
		var value string
		err := s.db.QueryRowContext(ctx,
			`SELECT value FROM system_settings WHERE key = ?`, key,
		).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: get setting %s", key)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			// Unparseable values fall through to the caller's default.
			continue
		}
		out[key] = n
	}
	return out, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key string, value int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system_settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, strconv.Itoa(value), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: set setting %s", key)
}

// helpers

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (*model.RankingSnapshot, error) {
	var snap model.RankingSnapshot
	var position sql.NullInt64
	var url, title, snippet sql.NullString
	var confidence string

	err := row.Scan(&snap.ID, &snap.WebsiteID, &snap.Keyword, &snap.SearchEngine,
		&position, &url, &title, &snippet, &snap.SearchDepth, &confidence,
		&snap.IsPriority, &snap.SnapshotDate, &snap.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "scan snapshot")
	}

	if position.Valid {
		p := int(position.Int64)
		snap.Position = &p
	}
	snap.MatchedURL = url.String
	snap.MatchedTitle = title.String
	snap.MatchedSnippet = snippet.String
	snap.Confidence = model.Confidence(confidence)
	return &snap, nil
}
