package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ranklens/ranklens/internal/db"
	"github.com/ranklens/ranklens/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS websites (
	id       TEXT PRIMARY KEY,
	domain   TEXT NOT NULL,
	keywords TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS keyword_preferences (
	website_id          TEXT NOT NULL,
	keyword             TEXT NOT NULL,
	is_priority         BOOLEAN NOT NULL DEFAULT FALSE,
	deep_search_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	last_deep_search_at TIMESTAMPTZ,
	PRIMARY KEY (website_id, keyword)
);

CREATE TABLE IF NOT EXISTS ranking_snapshots (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	website_id      TEXT NOT NULL,
	keyword         TEXT NOT NULL,
	search_engine   TEXT NOT NULL,
	position        INTEGER,
	matched_url     TEXT,
	matched_title   TEXT,
	matched_snippet TEXT,
	search_depth    INTEGER NOT NULL DEFAULT 0,
	confidence      TEXT NOT NULL,
	is_priority     BOOLEAN NOT NULL DEFAULT FALSE,
	snapshot_date   DATE NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS system_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_lookup
	ON ranking_snapshots(website_id, keyword, search_engine, snapshot_date);
CREATE INDEX IF NOT EXISTS idx_snapshots_date ON ranking_snapshots(snapshot_date);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetWebsite(ctx context.Context, id string) (*model.Website, error) {
	var w model.Website
	err := s.pool.QueryRow(ctx,
		`SELECT id, domain, keywords FROM websites WHERE id = $1`, id,
	).Scan(&w.ID, &w.Domain, &w.Keywords)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get website %s", id)
	}
	return &w, nil
}

func (s *PostgresStore) UpsertWebsite(ctx context.Context, w model.Website) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO websites (id, domain, keywords) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET domain = EXCLUDED.domain, keywords = EXCLUDED.keywords`,
		w.ID, w.Domain, w.Keywords,
	)
	return eris.Wrapf(err, "postgres: upsert website %s", w.ID)
}

func (s *PostgresStore) GetKeywordPreference(ctx context.Context, websiteID, keyword string) (*model.KeywordPreference, error) {
	var p model.KeywordPreference
	var last *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT website_id, keyword, is_priority, deep_search_enabled, last_deep_search_at
		 FROM keyword_preferences WHERE website_id = $1 AND keyword = $2`,
		websiteID, keyword,
	).Scan(&p.WebsiteID, &p.Keyword, &p.IsPriority, &p.DeepSearchEnabled, &last)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get keyword preference %s/%s", websiteID, keyword)
	}
	p.LastDeepSearchAt = last
	return &p, nil
}

func (s *PostgresStore) SetKeywordPreference(ctx context.Context, pref model.KeywordPreference) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO keyword_preferences (website_id, keyword, is_priority, deep_search_enabled, last_deep_search_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (website_id, keyword) DO UPDATE SET
			is_priority = EXCLUDED.is_priority,
			deep_search_enabled = EXCLUDED.deep_search_enabled,
			last_deep_search_at = EXCLUDED.last_deep_search_at`,
		pref.WebsiteID, pref.Keyword, pref.IsPriority, pref.DeepSearchEnabled, pref.LastDeepSearchAt,
	)
	return eris.Wrapf(err, "postgres: set keyword preference %s/%s", pref.WebsiteID, pref.Keyword)
}

func (s *PostgresStore) MarkDeepSearch(ctx context.Context, websiteID, keyword string, at time.Time, cooldown time.Duration) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE keyword_preferences SET last_deep_search_at = $1
		 WHERE website_id = $2 AND keyword = $3
		   AND (last_deep_search_at IS NULL OR last_deep_search_at <= $4)`,
		at.UTC(), websiteID, keyword, at.Add(-cooldown).UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: mark deep search %s/%s", websiteID, keyword)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *model.RankingSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO ranking_snapshots
			(id, website_id, keyword, search_engine, position, matched_url, matched_title,
			 matched_snippet, search_depth, confidence, is_priority, snapshot_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		snap.ID, snap.WebsiteID, snap.Keyword, snap.SearchEngine, snap.Position,
		nullIfEmpty(snap.MatchedURL), nullIfEmpty(snap.MatchedTitle), nullIfEmpty(snap.MatchedSnippet),
		snap.SearchDepth, string(snap.Confidence), snap.IsPriority, snap.SnapshotDate, snap.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save snapshot %s/%s", snap.WebsiteID, snap.Keyword)
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.RankingSnapshot, error) {
	query := `SELECT id, website_id, keyword, search_engine, position, matched_url, matched_title,
		matched_snippet, search_depth, confidence, is_priority, snapshot_date::text, created_at
		FROM ranking_snapshots WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.WebsiteID != "" {
		query += ` AND website_id = ` + arg(filter.WebsiteID)
	}
	if filter.Keyword != "" {
		query += ` AND keyword = ` + arg(filter.Keyword)
	}
	if filter.SearchEngine != "" {
		query += ` AND search_engine = ` + arg(filter.SearchEngine)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
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
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}

func (s *PostgresStore) GetSettings(ctx context.Context, keys []string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM system_settings WHERE key = ANY($1)`, keys,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get settings")
	}
	defer rows.Close()

	out := make(map[string]int, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan setting")
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			// Unparseable values fall through to the caller's default.
			continue
		}
		out[key] = n
	}
	return out, eris.Wrap(rows.Err(), "postgres: get settings iterate")
}

func (s *PostgresStore) SetSetting(ctx context.Context, key string, value int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO system_settings (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, strconv.Itoa(value),
	)
	return eris.Wrapf(err, "postgres: set setting %s", key)
}
