package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ranklens/ranklens/internal/stats"
)

var (
	statsWebsiteID string
	statsLookback  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize ranking coverage for a website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sum, err := stats.NewCollector(st).Collect(ctx, statsWebsiteID, statsLookback)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsWebsiteID, "website-id", "", "website to summarize (required)")
	statsCmd.Flags().IntVar(&statsLookback, "lookback-hours", 168, "window in hours, 0 for all time")
	statsCmd.MarkFlagRequired("website-id")
	rootCmd.AddCommand(statsCmd)
}
