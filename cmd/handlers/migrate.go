package handlers

import (
	"context"
	"fmt"

	"signalhound/internal/config"
	"signalhound/internal/logger"
	"signalhound/internal/persistence"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command for initializing the database schema
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Initialize or update the database schema",
		Long: `Apply the database schema.

The schema is idempotent: every statement uses IF NOT EXISTS, so
running migrate against an up-to-date database is a no-op. When
database.admin_url is configured it is used instead of database.url,
for setups where the application role cannot create tables.

Example:
  signalhound migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg := config.Get()

	url := cfg.Database.URL
	if cfg.Database.AdminURL != "" {
		url = cfg.Database.AdminURL
	}

	db, err := persistence.NewPostgresDB(url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Applying database schema")
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("Database schema is up to date")
	return nil
}
