package handlers

import (
	"context"
	"fmt"

	"signalhound/internal/config"
	"signalhound/internal/logger"

	"github.com/spf13/cobra"
)

// NewDigestCmd creates the digest command for a one-shot email delivery run
func NewDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Send pending digest emails once",
		Long: `Send a digest email to every user with email notifications enabled.

Each digest collects the user's undelivered signals from their digest
window, groups them by competitor, and renders a single HTML email.
Users with nothing new are skipped. Delivered signals are marked so
they never appear in a later digest.

Run it on a schedule (e.g. via cron) or use 'signalhound serve' and
trigger /api/cron/send-digest instead.

Example:
  signalhound digest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd.Context())
		},
	}
}

func runDigest(ctx context.Context) error {
	cfg := config.Get()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := buildBatcher(cfg, db)
	if err != nil {
		return err
	}

	logger.Info("Starting digest delivery")
	report, err := b.Run(ctx)
	if err != nil {
		return fmt.Errorf("digest delivery failed: %w", err)
	}

	fmt.Printf("Users considered: %d\n", report.UsersConsidered)
	fmt.Printf("Emails sent:      %d\n", report.EmailsSent)

	if len(report.Errors) > 0 {
		fmt.Printf("\n%d users failed:\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Printf("  - %v\n", e)
		}
	}

	return nil
}
