package persistence

import (
	"context"
	"fmt"

	"signalhound/internal/logger"
)

// schema holds the idempotent DDL for the whole store, applied in order.
// The UNIQUE constraint on signals.content_hash is load-bearing: it is what
// makes insert-if-absent atomic under concurrent collection runs.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_profiles (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_preferences (
		id                           TEXT PRIMARY KEY,
		user_id                      TEXT NOT NULL REFERENCES user_profiles(id),
		signal_types                 TEXT[] NOT NULL DEFAULT '{}',
		delivery_email               BOOLEAN NOT NULL DEFAULT TRUE,
		delivery_dashboard           BOOLEAN NOT NULL DEFAULT TRUE,
		check_frequency_hours        INTEGER NOT NULL DEFAULT 24,
		email_digest_frequency_hours INTEGER NOT NULL DEFAULT 24,
		created_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS competitors (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES user_profiles(id),
		name       TEXT NOT NULL,
		website    TEXT,
		rss_feeds  TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS signals (
		id               TEXT PRIMARY KEY,
		competitor_id    TEXT NOT NULL REFERENCES competitors(id),
		user_id          TEXT NOT NULL REFERENCES user_profiles(id),
		title            TEXT NOT NULL,
		summary          TEXT NOT NULL,
		signal_type      TEXT NOT NULL,
		sentiment        TEXT,
		source_url       TEXT NOT NULL,
		source_name      TEXT,
		is_high_priority BOOLEAN NOT NULL DEFAULT FALSE,
		published_at     TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		notified_at      TIMESTAMPTZ,
		content_hash     TEXT NOT NULL UNIQUE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_signals_user_undelivered
		ON signals (user_id, created_at DESC) WHERE notified_at IS NULL`,

	`CREATE INDEX IF NOT EXISTS idx_signals_competitor ON signals (competitor_id)`,

	`CREATE INDEX IF NOT EXISTS idx_competitors_user ON competitors (user_id)`,
}

// Migrate applies the schema. Every statement is idempotent, so running it on
// every startup is safe.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	log := logger.Get()
	log.Info("Applying database schema", "statements", len(schema))

	for i, statement := range schema {
		if _, err := p.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}

	log.Info("Database schema up to date")
	return nil
}
