// Package core defines the domain types shared by every layer of the pipeline.
package core

import "time"

// SignalType classifies what kind of competitive event a signal represents.
type SignalType string

const (
	SignalProductLaunch    SignalType = "product_launch"
	SignalFunding          SignalType = "funding"
	SignalLeadershipChange SignalType = "leadership_change"
	SignalEarningsReport   SignalType = "earnings_report"
	SignalSocialMedia      SignalType = "social_media"
	SignalBlogPost         SignalType = "blog_post"
	SignalOther            SignalType = "other"
)

// SignalTypes lists every valid signal type, in display order.
var SignalTypes = []SignalType{
	SignalProductLaunch,
	SignalFunding,
	SignalLeadershipChange,
	SignalEarningsReport,
	SignalSocialMedia,
	SignalBlogPost,
	SignalOther,
}

// Valid reports whether t is one of the known signal types.
func (t SignalType) Valid() bool {
	for _, known := range SignalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Sentiment is the tone of a signal from the competitor's perspective.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// Competitor is a tracked entity owned by a user. The pipeline only ever
// reads competitors; they are created and edited by user setup.
type Competitor struct {
	ID        string    `json:"id"`         // Unique identifier
	UserID    string    `json:"user_id"`    // Owning user
	Name      string    `json:"name"`       // Display name, also the news search query
	Website   string    `json:"website"`    // Optional canonical website
	RSSFeeds  []string  `json:"rss_feeds"`  // Optional syndication feed URLs
	CreatedAt time.Time `json:"created_at"` // Timestamp when the competitor was added
	UpdatedAt time.Time `json:"updated_at"` // Timestamp of the last edit
}

// NewsArticle is a candidate article fetched from a source. It lives only
// for the duration of one collection run and is never persisted directly.
type NewsArticle struct {
	Title       string    `json:"title"`        // Headline
	Description string    `json:"description"`  // Snippet or summary from the source
	URL         string    `json:"url"`          // Canonical URL, identity within a fetch batch
	Source      string    `json:"source"`       // Originating source name
	PublishedAt time.Time `json:"published_at"` // Publication time; zero when the source omits it
	Content     string    `json:"content"`      // Optional extended body text
}

// Signal is the persisted unit of intelligence derived from one article.
type Signal struct {
	ID             string     `json:"id"`               // Unique identifier
	CompetitorID   string     `json:"competitor_id"`    // Owning competitor
	UserID         string     `json:"user_id"`          // Owning user
	Title          string     `json:"title"`            // Article headline
	Summary        string     `json:"summary"`          // Generated summary
	SignalType     SignalType `json:"signal_type"`      // Category label
	Sentiment      Sentiment  `json:"sentiment"`        // Optional sentiment label
	SourceURL      string     `json:"source_url"`       // Link back to the article
	SourceName     string     `json:"source_name"`      // Optional source name
	IsHighPriority bool       `json:"is_high_priority"` // Elevated-attention flag
	PublishedAt    *time.Time `json:"published_at"`     // Original publish time, when known
	CreatedAt      time.Time  `json:"created_at"`       // Timestamp when the signal was persisted
	NotifiedAt     *time.Time `json:"notified_at"`      // Set once the signal is delivered in a digest
	ContentHash    string     `json:"content_hash"`     // Global deduplication key, unique across all signals
}

// UserPreferences controls which signals a user sees and how they are delivered.
// The pipeline treats preferences as read-only.
type UserPreferences struct {
	ID                        string       `json:"id"`
	UserID                    string       `json:"user_id"`
	SignalTypes               []SignalType `json:"signal_types"`                 // Categories the user wants surfaced
	DeliveryEmail             bool         `json:"delivery_email"`               // Email digests enabled
	DeliveryDashboard         bool         `json:"delivery_dashboard"`           // Dashboard delivery enabled
	CheckFrequencyHours       int          `json:"check_frequency_hours"`        // Polling cadence
	EmailDigestFrequencyHours int          `json:"email_digest_frequency_hours"` // Digest lookback window
	CreatedAt                 time.Time    `json:"created_at"`
	UpdatedAt                 time.Time    `json:"updated_at"`
}

// WantsType reports whether the preference record allows the given signal type.
func (p *UserPreferences) WantsType(t SignalType) bool {
	for _, want := range p.SignalTypes {
		if want == t {
			return true
		}
	}
	return false
}

// UserProfile holds the account identity needed to deliver digests.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
