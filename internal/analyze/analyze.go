// Package analyze classifies candidate articles into signals, using the
// Gemini backend when available and a deterministic keyword fallback so the
// pipeline never stalls on an unavailable model.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"signalhound/internal/core"
	"signalhound/internal/logger"
)

// DefaultModel is the default Gemini model used for classification.
const DefaultModel = "gemini-2.0-flash"

// maxContentChars bounds how much article body text goes into the prompt.
const maxContentChars = 2000

// Analysis is the complete classification of one article. Every field is
// always populated, whichever path produced it.
type Analysis struct {
	Summary        string          `json:"summary"`
	SignalType     core.SignalType `json:"signalType"`
	Sentiment      core.Sentiment  `json:"sentiment"`
	IsHighPriority bool            `json:"isHighPriority"`
}

// Client talks to the Gemini backend.
type Client struct {
	modelName string
	timeout   time.Duration
	gClient   *genai.Client
}

// NewClient creates a Gemini-backed classifier client.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: modelName,
		timeout:   timeout,
		gClient:   gClient,
	}, nil
}

// Analyze classifies one article in the context of the competitor it mentions.
// Any transport or parse failure returns an error; partial results are never
// trusted.
func (c *Client) Analyze(ctx context.Context, competitorName string, article core.NewsArticle) (Analysis, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := buildPrompt(competitorName, article)

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to generate analysis: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return Analysis{}, err
	}

	return parseAnalysisResponse(text)
}

// buildPrompt asks for strictly-formed JSON describing the signal.
func buildPrompt(competitorName string, article core.NewsArticle) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Analyze this news article about %s and provide:
1. A concise 2-3 sentence summary
2. The signal type (product_launch, funding, leadership_change, earnings_report, social_media, blog_post, or other)
3. Sentiment (positive, negative, or neutral) from the competitor's perspective
4. Whether this is high priority (true for: earnings reports, major funding, significant product launches, C-suite leadership changes)

Article Title: %s
Description: %s
`, competitorName, article.Title, article.Description)

	if article.Content != "" {
		content := article.Content
		// Truncate on a rune boundary so the prompt never carries a split
		// multi-byte sequence.
		if runes := []rune(content); len(runes) > maxContentChars {
			content = string(runes[:maxContentChars])
		}
		fmt.Fprintf(&b, "Content: %s\n", content)
	}

	b.WriteString(`
Respond ONLY with valid JSON in this exact format:
{
  "summary": "your summary here",
  "signalType": "one of the signal types",
  "sentiment": "positive, negative, or neutral",
  "isHighPriority": true or false
}`)

	return b.String()
}

// responseText extracts the text of a model response. Text returns the
// concatenated text parts along with an error, and a response with no usable
// text is treated as a failure so the caller falls back.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	text, err := resp.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read model response: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// parseAnalysisResponse decodes the model output, tolerating surrounding
// markdown code fences, and validates the enum fields.
func parseAnalysisResponse(text string) (Analysis, error) {
	cleaned := stripCodeFences(text)

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	if analysis.Summary == "" {
		return Analysis{}, fmt.Errorf("analysis response missing summary")
	}
	if !analysis.SignalType.Valid() {
		return Analysis{}, fmt.Errorf("analysis response has unknown signal type %q", analysis.SignalType)
	}
	if !analysis.Sentiment.Valid() {
		return Analysis{}, fmt.Errorf("analysis response has unknown sentiment %q", analysis.Sentiment)
	}

	return analysis, nil
}

// stripCodeFences removes a surrounding ```json ... ``` (or bare ```) block.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// backend abstracts the Gemini client so the facade can be tested without it.
type backend interface {
	Analyze(ctx context.Context, competitorName string, article core.NewsArticle) (Analysis, error)
}

// Analyzer is the classification entry point used by the pipeline. It tries
// the configured backend first and falls back to keyword inference, so every
// article always receives a complete classification.
type Analyzer struct {
	client backend
}

// NewAnalyzer wraps a backend client. A nil client is allowed and means every
// article takes the fallback path.
func NewAnalyzer(client *Client) *Analyzer {
	if client == nil {
		return &Analyzer{}
	}
	return &Analyzer{client: client}
}

// Analyze never fails: backend errors degrade to the deterministic fallback.
func (a *Analyzer) Analyze(ctx context.Context, competitorName string, article core.NewsArticle) Analysis {
	if a.client == nil {
		return Fallback(article)
	}

	analysis, err := a.client.Analyze(ctx, competitorName, article)
	if err != nil {
		logger.Warn("Classifier unavailable, using keyword fallback",
			"competitor", competitorName, "title", article.Title, "error", err.Error())
		return Fallback(article)
	}

	return analysis
}
