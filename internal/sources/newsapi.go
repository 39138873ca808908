package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"signalhound/internal/core"
	"signalhound/internal/logger"
)

// DefaultNewsAPIBaseURL is the production NewsAPI endpoint prefix.
const DefaultNewsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIFetcher queries the NewsAPI "everything" endpoint by competitor name.
type NewsAPIFetcher struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
}

// newsAPIResponse is the parse boundary for the search backend; payloads are
// decoded into this shape and validated before anything downstream sees them.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// NewNewsAPIFetcher creates a keyword-search fetcher. An empty apiKey is
// allowed; Fetch then returns no articles rather than failing.
func NewNewsAPIFetcher(apiKey, baseURL string, pageSize int, timeout time.Duration) *NewsAPIFetcher {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	if pageSize <= 0 || pageSize > 20 {
		pageSize = 20
	}
	return &NewsAPIFetcher{
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: pageSize,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the name of this fetcher.
func (f *NewsAPIFetcher) Name() string {
	return "newsapi"
}

// Fetch searches for recent articles mentioning the competitor by name.
// All failure modes degrade to an empty result with a log line.
func (f *NewsAPIFetcher) Fetch(ctx context.Context, competitor core.Competitor) ([]core.NewsArticle, error) {
	if f.apiKey == "" {
		logger.Warn("NEWS_API_KEY not configured, skipping news search", "competitor", competitor.Name)
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", competitor.Name)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(f.pageSize))
	params.Set("apiKey", f.apiKey)

	fullURL := f.baseURL + "/everything?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		logger.Error("Failed to build news search request", err, "competitor", competitor.Name)
		return nil, nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Error("News search request failed", err, "competitor", competitor.Name)
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Error("Failed to decode news search response", err, "competitor", competitor.Name)
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		err := fmt.Errorf("news search returned status %d (%s: %s)", resp.StatusCode, payload.Code, payload.Message)
		logger.Error("News search rejected request", err, "competitor", competitor.Name)
		return nil, nil
	}

	articles := make([]core.NewsArticle, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if raw.Title == "" || raw.URL == "" {
			continue
		}
		published, err := time.Parse(time.RFC3339, raw.PublishedAt)
		if err != nil {
			published = time.Time{}
		}
		articles = append(articles, core.NewsArticle{
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
			Source:      raw.Source.Name,
			PublishedAt: published,
			Content:     raw.Content,
		})
	}

	logger.Debug("News search completed", "competitor", competitor.Name, "articles", len(articles))
	return articles, nil
}
