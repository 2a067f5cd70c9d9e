package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/rank"
	"github.com/ranklens/ranklens/internal/schedule"
)

var scheduleFile string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run recurring checks from a schedule file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		file := scheduleFile
		if file == "" {
			file = cfg.Schedule.File
		}
		sched, err := schedule.Load(file)
		if err != nil {
			return err
		}

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

		runner := schedule.NewRunner(func(ctx context.Context, websiteID, keyword string) error {
			_, err := orch.CheckWebsite(ctx, websiteID, keyword)
			return err
		})
		if err := runner.Register(ctx, sched); err != nil {
			return err
		}

		zap.L().Info("scheduler started",
			zap.String("file", file),
			zap.Int("jobs", runner.Len()),
		)
		runner.Start()
		<-ctx.Done()
		runner.Stop()
		zap.L().Info("scheduler stopped")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFile, "file", "", "schedule file (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}
