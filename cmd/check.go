package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranklens/ranklens/internal/rank"
)

var (
	checkWebsiteID string
	checkKeyword   string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check rankings for a website's keywords",
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

		result, err := rank.NewOrchestrator(st, client, cfg).CheckWebsite(ctx, checkWebsiteID, checkKeyword)
		if err != nil {
			return eris.Wrapf(err, "check website %s", checkWebsiteID)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkWebsiteID, "website-id", "", "website to check (required)")
	checkCmd.Flags().StringVar(&checkKeyword, "keyword", "", "check a single keyword instead of the configured list")
	checkCmd.MarkFlagRequired("website-id")
	rootCmd.AddCommand(checkCmd)
}
