package handlers

import (
	"context"
	"fmt"

	"signalhound/internal/config"
	"signalhound/internal/logger"

	"github.com/spf13/cobra"
)

// NewCollectCmd creates the collect command for a one-shot signal collection run
func NewCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch and classify new competitor signals once",
		Long: `Run one signal collection pass over every tracked competitor.

For each competitor this command:
  • Queries the news search API and parses the configured RSS feeds
  • Deduplicates articles against previously stored signals
  • Classifies each new article into a signal type with a summary
  • Stores the resulting signals for the next digest

Run it on a schedule (e.g. via cron) to keep signals fresh, or use
'signalhound serve' and trigger /api/cron/collect-signals instead.

Example:
  signalhound collect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context())
		},
	}
}

func runCollect(ctx context.Context) error {
	cfg := config.Get()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	c := buildCollector(ctx, cfg, db)

	logger.Info("Starting signal collection")
	report, err := c.Run(ctx)
	if err != nil {
		return fmt.Errorf("signal collection failed: %w", err)
	}

	fmt.Printf("Competitors processed: %d\n", report.CompetitorsProcessed)
	fmt.Printf("Articles seen:         %d\n", report.ArticlesSeen)
	fmt.Printf("Signals created:       %d\n", report.SignalsCreated)
	fmt.Printf("Duplicates skipped:    %d\n", report.Duplicates)
	fmt.Printf("Filtered by prefs:     %d\n", report.Filtered)

	if len(report.Errors) > 0 {
		fmt.Printf("\n%d articles failed:\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Printf("  - %v\n", e)
		}
	}

	return nil
}
