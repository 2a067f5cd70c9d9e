package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ranklens",
	Short: "Keyword rank tracking with adaptive search depth",
	Long:  "Resolves where tracked domains rank for their keywords across search engines, deepening the search for priority keywords on a cooldown, and records one immutable snapshot per check.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
