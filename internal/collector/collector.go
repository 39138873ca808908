// Package collector drives one signal ingestion run: fetch, deduplicate,
// classify, filter and persist, with per-item failure isolation.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signalhound/internal/analyze"
	"signalhound/internal/core"
	"signalhound/internal/logger"
	"signalhound/internal/persistence"
	"signalhound/internal/sources"
)

// Analyzer classifies one article. The concrete implementation never fails
// (it falls back to keyword inference), which is what lets the orchestrator
// treat classification as total.
type Analyzer interface {
	Analyze(ctx context.Context, competitorName string, article core.NewsArticle) analyze.Analysis
}

// Report summarizes one ingestion run.
type Report struct {
	CompetitorsProcessed int
	ArticlesSeen         int
	SignalsCreated       int
	Duplicates           int
	Filtered             int
	Errors               []error
}

// Collector orchestrates the per-competitor, per-article ingestion loop.
type Collector struct {
	db       persistence.Database
	fetchers []sources.Fetcher
	analyzer Analyzer
	now      func() time.Time
}

// New wires an ingestion collector.
func New(db persistence.Database, fetchers []sources.Fetcher, analyzer Analyzer) *Collector {
	return &Collector{
		db:       db,
		fetchers: fetchers,
		analyzer: analyzer,
		now:      time.Now,
	}
}

// Run executes one full ingestion pass. Failing to list competitors is the
// only hard failure; every other error is isolated to its article or
// competitor and collected into the report.
func (c *Collector) Run(ctx context.Context) (Report, error) {
	log := logger.Get()
	log.Info("Starting signal collection")

	competitors, err := c.db.Competitors().ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list competitors: %w", err)
	}

	var report Report
	for _, competitor := range competitors {
		report.CompetitorsProcessed++

		articles := sources.Gather(ctx, c.fetchers, competitor)
		log.Info("Gathered articles", "competitor", competitor.Name, "articles", len(articles))

		for _, article := range articles {
			report.ArticlesSeen++

			outcome, err := c.processArticle(ctx, competitor, article)
			if err != nil {
				log.Error("Failed to process article", "error", err,
					"competitor", competitor.Name, "title", article.Title)
				report.Errors = append(report.Errors,
					fmt.Errorf("article %q for %s: %w", article.Title, competitor.Name, err))
				continue
			}

			switch outcome {
			case outcomeCreated:
				report.SignalsCreated++
				log.Info("Created signal", "competitor", competitor.Name, "title", article.Title)
			case outcomeDuplicate:
				report.Duplicates++
				log.Debug("Skipping duplicate", "title", article.Title)
			case outcomeFiltered:
				report.Filtered++
				log.Debug("Skipping filtered signal type", "title", article.Title)
			}
		}
	}

	log.Info("Signal collection completed",
		"competitors", report.CompetitorsProcessed,
		"signals_created", report.SignalsCreated,
		"duplicates", report.Duplicates,
		"filtered", report.Filtered,
		"errors", len(report.Errors))
	return report, nil
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeDuplicate
	outcomeFiltered
)

// processArticle runs one candidate through the hash, dedup, classify,
// filter and persist stages.
func (c *Collector) processArticle(ctx context.Context, competitor core.Competitor, article core.NewsArticle) (outcome, error) {
	contentHash := core.ContentHash(article.Title + article.URL)

	// Cheap pre-check: saves a classification call for known articles. The
	// conditional insert below is what actually guarantees uniqueness.
	exists, err := c.db.Signals().ExistsByHash(ctx, contentHash)
	if err != nil {
		return 0, fmt.Errorf("failed to check content hash: %w", err)
	}
	if exists {
		return outcomeDuplicate, nil
	}

	analysis := c.analyzer.Analyze(ctx, competitor.Name, article)

	prefs, err := c.db.Preferences().Get(ctx, competitor.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to load preferences: %w", err)
	}
	// No preference record means "surface everything".
	if prefs != nil && !prefs.WantsType(analysis.SignalType) {
		return outcomeFiltered, nil
	}

	signal := &core.Signal{
		ID:             uuid.NewString(),
		CompetitorID:   competitor.ID,
		UserID:         competitor.UserID,
		Title:          article.Title,
		Summary:        analysis.Summary,
		SignalType:     analysis.SignalType,
		Sentiment:      analysis.Sentiment,
		SourceURL:      article.URL,
		SourceName:     article.Source,
		IsHighPriority: analysis.IsHighPriority,
		CreatedAt:      c.now().UTC(),
		ContentHash:    contentHash,
	}
	if !article.PublishedAt.IsZero() {
		published := article.PublishedAt
		signal.PublishedAt = &published
	}

	created, err := c.db.Signals().Insert(ctx, signal)
	if err != nil {
		return 0, fmt.Errorf("failed to insert signal: %w", err)
	}
	if !created {
		// Lost an insert race with a concurrent run; same as a duplicate.
		return outcomeDuplicate, nil
	}
	return outcomeCreated, nil
}
