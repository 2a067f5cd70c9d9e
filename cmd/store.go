package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ranklens/ranklens/internal/store"
	"github.com/ranklens/ranklens/pkg/serp"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "ranklens.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSerp() (serp.Client, error) {
	if cfg.Serp.Key == "" {
		return nil, eris.New("SERP API key is required (RANKLENS_SERP_KEY)")
	}

	opts := []serp.Option{}
	if cfg.Serp.BaseURL != "" {
		opts = append(opts, serp.WithBaseURL(cfg.Serp.BaseURL))
	}
	if cfg.Serp.TimeoutSecs > 0 {
		opts = append(opts, serp.WithTimeout(time.Duration(cfg.Serp.TimeoutSecs)*time.Second))
	}

	return serp.NewClient(cfg.Serp.Key, opts...), nil
}
