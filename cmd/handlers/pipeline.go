package handlers

import (
	"context"
	"fmt"
	"time"

	"signalhound/internal/analyze"
	"signalhound/internal/collector"
	"signalhound/internal/config"
	"signalhound/internal/digest"
	"signalhound/internal/email"
	"signalhound/internal/logger"
	"signalhound/internal/persistence"
	"signalhound/internal/sources"
)

// openDatabase connects to PostgreSQL and verifies the connection.
func openDatabase(ctx context.Context, cfg *config.Config) (persistence.Database, error) {
	db, err := persistence.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w\n\n"+
			"Make sure PostgreSQL is running and database.url is correct.\n"+
			"Run 'signalhound migrate' to initialize the database schema.", err)
	}

	return db, nil
}

// buildCollector assembles the source fetchers and the classifier into a
// signal collector. A missing Gemini key degrades to keyword classification
// rather than failing the run.
func buildCollector(ctx context.Context, cfg *config.Config, db persistence.Database) *collector.Collector {
	fetchTimeout := config.Duration(cfg.News.Timeout, 10*time.Second)
	fetchers := []sources.Fetcher{
		sources.NewNewsAPIFetcher(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.PageSize, fetchTimeout),
		sources.NewFeedFetcher(fetchTimeout),
		sources.NewBlogFetcher(),
	}

	var client *analyze.Client
	if cfg.AI.Gemini.APIKey != "" {
		aiTimeout := config.Duration(cfg.AI.Gemini.Timeout, 30*time.Second)
		c, err := analyze.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model, aiTimeout)
		if err != nil {
			logger.Warn("AI classifier unavailable, using keyword fallback", "error", err)
		} else {
			client = c
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, using keyword fallback for classification")
	}

	return collector.New(db, fetchers, analyze.NewAnalyzer(client))
}

// buildBatcher assembles the digest renderer and email sender.
func buildBatcher(cfg *config.Config, db persistence.Database) (*digest.Batcher, error) {
	renderer, err := email.NewRenderer(email.DefaultTemplate())
	if err != nil {
		return nil, fmt.Errorf("failed to build email renderer: %w", err)
	}

	from := cfg.Email.FromAddress
	if cfg.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.Email.FromName, cfg.Email.FromAddress)
	}
	sender := email.NewResendSender(cfg.Email.ResendAPIKey, from, config.Duration(cfg.Email.Timeout, 15*time.Second))

	return digest.NewBatcher(db, renderer, sender), nil
}
