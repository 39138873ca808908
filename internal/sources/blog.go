package sources

import (
	"context"

	"signalhound/internal/core"
)

// BlogFetcher is a reserved extension point for scraping a competitor's own
// site. Generic scraping is not implemented, so it always returns nothing;
// it stays registered so fetcher ordering is stable once it grows a body.
type BlogFetcher struct{}

// NewBlogFetcher creates the placeholder blog fetcher.
func NewBlogFetcher() *BlogFetcher {
	return &BlogFetcher{}
}

// Name returns the name of this fetcher.
func (f *BlogFetcher) Name() string {
	return "blog"
}

// Fetch returns no articles. Scraping would need per-site logic keyed off
// competitor.Website, which is out of scope for the generic pipeline.
func (f *BlogFetcher) Fetch(ctx context.Context, competitor core.Competitor) ([]core.NewsArticle, error) {
	return nil, nil
}
