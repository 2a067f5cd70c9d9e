package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ranklens/ranklens/internal/model"
)

var websiteCmd = &cobra.Command{
	Use:   "website",
	Short: "Manage tracked websites and keyword preferences",
}

var (
	websiteID       string
	websiteDomain   string
	websiteKeywords string
)

var websiteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a tracked website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		id := websiteID
		if id == "" {
			id = uuid.New().String()
		}
		w := model.Website{ID: id, Domain: websiteDomain, Keywords: websiteKeywords}
		if err := st.UpsertWebsite(ctx, w); err != nil {
			return err
		}

		zap.L().Info("website saved",
			zap.String("website_id", id),
			zap.String("domain", w.Domain),
			zap.Int("keywords", len(w.KeywordList())),
		)
		fmt.Println(id)
		return nil
	},
}

var (
	priorityWebsiteID  string
	priorityKeyword    string
	priorityFlag       bool
	priorityDeepSearch bool
)

var websitePriorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Set priority and deep-search flags for a keyword",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		// Preserve any existing deep-search timestamp.
		pref, err := st.GetKeywordPreference(ctx, priorityWebsiteID, priorityKeyword)
		if err != nil {
			return err
		}
		if pref == nil {
			pref = &model.KeywordPreference{WebsiteID: priorityWebsiteID, Keyword: priorityKeyword}
		}
		pref.IsPriority = priorityFlag
		pref.DeepSearchEnabled = priorityDeepSearch

		if err := st.SetKeywordPreference(ctx, *pref); err != nil {
			return err
		}
		zap.L().Info("keyword preference saved",
			zap.String("website_id", pref.WebsiteID),
			zap.String("keyword", pref.Keyword),
			zap.Bool("is_priority", pref.IsPriority),
			zap.Bool("deep_search_enabled", pref.DeepSearchEnabled),
		)
		return nil
	},
}

func init() {
	websiteAddCmd.Flags().StringVar(&websiteID, "id", "", "website ID (generated when empty)")
	websiteAddCmd.Flags().StringVar(&websiteDomain, "domain", "", "domain to track (required)")
	websiteAddCmd.Flags().StringVar(&websiteKeywords, "keywords", "", "comma-separated keyword list")
	websiteAddCmd.MarkFlagRequired("domain")

	websitePriorityCmd.Flags().StringVar(&priorityWebsiteID, "website-id", "", "website ID (required)")
	websitePriorityCmd.Flags().StringVar(&priorityKeyword, "keyword", "", "keyword (required)")
	websitePriorityCmd.Flags().BoolVar(&priorityFlag, "priority", true, "mark keyword as priority")
	websitePriorityCmd.Flags().BoolVar(&priorityDeepSearch, "deep-search", true, "allow deep searches for this keyword")
	websitePriorityCmd.MarkFlagRequired("website-id")
	websitePriorityCmd.MarkFlagRequired("keyword")

	websiteCmd.AddCommand(websiteAddCmd)
	websiteCmd.AddCommand(websitePriorityCmd)
	rootCmd.AddCommand(websiteCmd)
}
