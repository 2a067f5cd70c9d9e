package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ranklens/ranklens/internal/rank"
	"github.com/ranklens/ranklens/internal/stats"
	"github.com/ranklens/ranklens/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ranking API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := initSerp()
		if err != nil {
			return err
		}
		orch := rank.NewOrchestrator(st, client, cfg)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, orch),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(st store.Store, orch *rank.Orchestrator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/check", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			WebsiteID string `json:"website_id"`
			Keyword   string `json:"keyword"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.WebsiteID == "" {
			writeError(w, http.StatusBadRequest, "website_id is required")
			return
		}

		result, err := orch.CheckWebsite(req.Context(), body.WebsiteID, body.Keyword)
		switch {
		case errors.Is(err, rank.ErrWebsiteNotFound):
			writeError(w, http.StatusNotFound, "website not found")
		case errors.Is(err, rank.ErrNoKeywords):
			writeError(w, http.StatusBadRequest, "no keywords configured")
		case err != nil:
			zap.L().Error("check failed", zap.String("website_id", body.WebsiteID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "check failed")
		default:
			writeJSON(w, http.StatusOK, result)
		}
	})

	r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		websiteID := q.Get("website_id")
		if websiteID == "" {
			writeError(w, http.StatusBadRequest, "website_id is required")
			return
		}
		lookback, _ := strconv.Atoi(q.Get("lookback_hours"))
		if lookback <= 0 {
			lookback = 168
		}

		sum, err := stats.NewCollector(st).Collect(req.Context(), websiteID, lookback)
		if err != nil {
			zap.L().Error("collect stats failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "collect stats failed")
			return
		}
		writeJSON(w, http.StatusOK, sum)
	})

	r.Get("/api/snapshots", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		filter := store.SnapshotFilter{
			WebsiteID:    q.Get("website_id"),
			Keyword:      q.Get("keyword"),
			SearchEngine: q.Get("engine"),
		}
		if filter.WebsiteID == "" {
			writeError(w, http.StatusBadRequest, "website_id is required")
			return
		}
		filter.Limit, _ = strconv.Atoi(q.Get("limit"))
		filter.Offset, _ = strconv.Atoi(q.Get("offset"))

		snaps, err := st.ListSnapshots(req.Context(), filter)
		if err != nil {
			zap.L().Error("list snapshots failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list snapshots failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "count": len(snaps)})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
