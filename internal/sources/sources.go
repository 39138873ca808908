// Package sources gathers candidate articles for a competitor from
// independent, individually fault-tolerant fetchers.
package sources

import (
	"context"

	"signalhound/internal/core"
	"signalhound/internal/logger"
)

// Fetcher pulls candidate articles for one competitor from a single source.
// Implementations fail soft: a broken or unconfigured source yields an empty
// slice and a nil error so one source never takes down a collection run.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, competitor core.Competitor) ([]core.NewsArticle, error)
}

// Gather runs every fetcher in order, concatenates their output and removes
// duplicate URLs, keeping the first occurrence. Fetcher registration order is
// therefore the tie-break: a URL seen by an earlier fetcher wins.
func Gather(ctx context.Context, fetchers []Fetcher, competitor core.Competitor) []core.NewsArticle {
	var all []core.NewsArticle

	for _, fetcher := range fetchers {
		articles, err := fetcher.Fetch(ctx, competitor)
		if err != nil {
			// Fetchers are expected to absorb their own failures; anything
			// surfacing here is still isolated to that one source.
			logger.Error("Fetcher failed", err, "fetcher", fetcher.Name(), "competitor", competitor.Name)
			continue
		}
		all = append(all, articles...)
	}

	return dedupeByURL(all)
}

// dedupeByURL keeps the first article seen for each canonical URL.
func dedupeByURL(articles []core.NewsArticle) []core.NewsArticle {
	seen := make(map[string]bool, len(articles))
	unique := make([]core.NewsArticle, 0, len(articles))

	for _, article := range articles {
		if seen[article.URL] {
			continue
		}
		seen[article.URL] = true
		unique = append(unique, article)
	}

	return unique
}
