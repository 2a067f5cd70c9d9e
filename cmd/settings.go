package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/rank"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and adjust runtime tunables",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the effective search tunables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		params := rank.LoadParams(ctx, st)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(params)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a search tunable",
	Long:  "Keys: " + rank.SettingMaxResults + ", " + rank.SettingCooldownHours + ", " + rank.SettingBatchSize + ".",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		key := args[0]
		value, err := strconv.Atoi(args[1])
		if err != nil || value <= 0 {
			return eris.Errorf("value must be a positive integer, got %q", args[1])
		}

		switch key {
		case rank.SettingMaxResults, rank.SettingCooldownHours, rank.SettingBatchSize:
		default:
			return eris.Errorf("unknown setting %q", key)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SetSetting(ctx, key, value); err != nil {
			return err
		}
		zap.L().Info("setting saved", zap.String("key", key), zap.Int("value", value))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
