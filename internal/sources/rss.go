package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"signalhound/internal/core"
	"signalhound/internal/logger"
)

// FeedFetcher pulls candidate articles from a competitor's syndication feeds.
// Each feed is parsed independently; one broken feed never affects the others.
type FeedFetcher struct {
	parser *gofeed.Parser
	now    func() time.Time
}

// NewFeedFetcher creates an RSS/Atom feed fetcher with the given per-feed timeout.
func NewFeedFetcher(timeout time.Duration) *FeedFetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "signalhound/1.0"
	return &FeedFetcher{
		parser: parser,
		now:    time.Now,
	}
}

// Name returns the name of this fetcher.
func (f *FeedFetcher) Name() string {
	return "rss"
}

// Fetch parses every configured feed URL for the competitor. Items missing a
// title or link are dropped; a missing publish date defaults to the fetch time.
func (f *FeedFetcher) Fetch(ctx context.Context, competitor core.Competitor) ([]core.NewsArticle, error) {
	var articles []core.NewsArticle

	for _, feedURL := range competitor.RSSFeeds {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Error("Failed to fetch RSS feed", err, "feed_url", feedURL, "competitor", competitor.Name)
			continue
		}
		articles = append(articles, f.collectItems(feed)...)
	}

	return articles, nil
}

func (f *FeedFetcher) collectItems(feed *gofeed.Feed) []core.NewsArticle {
	sourceName := feed.Title
	if sourceName == "" {
		sourceName = "RSS Feed"
	}

	items := make([]core.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}

		published := f.now().UTC()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, core.NewsArticle{
			Title:       item.Title,
			Description: description,
			URL:         item.Link,
			Source:      sourceName,
			PublishedAt: published,
			Content:     item.Content,
		})
	}

	return items
}
