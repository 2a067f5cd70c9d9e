package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ranklens/ranklens/internal/model"
	"github.com/ranklens/ranklens/internal/store"
)

var (
	snapshotsWebsiteID string
	snapshotsKeyword   string
	snapshotsEngine    string
	snapshotsLimit     int
	snapshotsOffset    int
	snapshotsSummary   bool
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List ranking snapshots for a website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshots(ctx, store.SnapshotFilter{
			WebsiteID:    snapshotsWebsiteID,
			Keyword:      snapshotsKeyword,
			SearchEngine: snapshotsEngine,
			Limit:        snapshotsLimit,
			Offset:       snapshotsOffset,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if snapshotsSummary {
			return enc.Encode(summarizeSnapshots(snaps))
		}
		return enc.Encode(snaps)
	},
}

// keywordSummary is the best recorded position per (keyword, engine).
type keywordSummary struct {
	Keyword      string           `json:"keyword"`
	SearchEngine string           `json:"search_engine"`
	BestPosition *int             `json:"best_position"`
	BestDate     string           `json:"best_date,omitempty"`
	Confidence   model.Confidence `json:"confidence"`
	Checks       int              `json:"checks"`
}

func summarizeSnapshots(snaps []model.RankingSnapshot) []keywordSummary {
	byCombo := make(map[string]*keywordSummary)
	var order []string

	for _, s := range snaps {
		key := s.Keyword + "\x00" + s.SearchEngine
		sum, ok := byCombo[key]
		if !ok {
			sum = &keywordSummary{
				Keyword:      s.Keyword,
				SearchEngine: s.SearchEngine,
				Confidence:   model.ConfidenceNone,
			}
			byCombo[key] = sum
			order = append(order, key)
		}
		sum.Checks++
		if s.Position != nil && (sum.BestPosition == nil || *s.Position < *sum.BestPosition) {
			pos := *s.Position
			sum.BestPosition = &pos
			sum.BestDate = s.SnapshotDate
			sum.Confidence = s.Confidence
		}
	}

	out := make([]keywordSummary, 0, len(order))
	for _, key := range order {
		out = append(out, *byCombo[key])
	}
	return out
}

func init() {
	snapshotsCmd.Flags().StringVar(&snapshotsWebsiteID, "website-id", "", "website to list (required)")
	snapshotsCmd.Flags().StringVar(&snapshotsKeyword, "keyword", "", "filter by keyword")
	snapshotsCmd.Flags().StringVar(&snapshotsEngine, "engine", "", "filter by search engine")
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 100, "max rows")
	snapshotsCmd.Flags().IntVar(&snapshotsOffset, "offset", 0, "rows to skip")
	snapshotsCmd.Flags().BoolVar(&snapshotsSummary, "summary", false, "best position per keyword and engine")
	snapshotsCmd.MarkFlagRequired("website-id")
	rootCmd.AddCommand(snapshotsCmd)
}
