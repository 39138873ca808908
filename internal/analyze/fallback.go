package analyze

import (
	"strings"

	"signalhound/internal/core"
)

// Fallback builds a complete classification without the model: the summary is
// the article's own description (or title), the type comes from keyword
// inference, sentiment is neutral and priority is never elevated.
func Fallback(article core.NewsArticle) Analysis {
	summary := article.Description
	if summary == "" {
		summary = article.Title
	}

	return Analysis{
		Summary:        summary,
		SignalType:     InferSignalType(article.Title, article.Description),
		Sentiment:      core.SentimentNeutral,
		IsHighPriority: false,
	}
}

// InferSignalType matches keywords over the lowercased title and description.
// The precedence order is part of the observable behavior - funding terms are
// tested before leadership, earnings, launch, social and blog terms, so an
// article matching several buckets lands in the earliest one. Do not reorder.
func InferSignalType(title, description string) core.SignalType {
	text := strings.ToLower(title + " " + description)

	contains := func(terms ...string) bool {
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("fund", "raised", "investment", "series"):
		return core.SignalFunding
	case contains("ceo", "cto", "cfo", "appointed", "joins", "executive"):
		return core.SignalLeadershipChange
	case contains("earnings", "quarterly", "revenue", "profit"):
		return core.SignalEarningsReport
	case contains("launch", "release", "announce", "unveil", "feature"):
		return core.SignalProductLaunch
	case contains("tweet", "twitter", "linkedin"):
		return core.SignalSocialMedia
	case contains("blog"):
		return core.SignalBlogPost
	default:
		return core.SignalOther
	}
}
