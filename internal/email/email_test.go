package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signalhound/internal/core"
)

func sampleDigest() DigestData {
	return DigestData{
		Date: time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
		Groups: []Group{
			{
				CompetitorName: "Acme",
				Signals: []core.Signal{
					{
						Title:          "Acme raises $50M Series B",
						Summary:        "Funding round led by Example Ventures.",
						SignalType:     core.SignalFunding,
						Sentiment:      core.SentimentPositive,
						SourceURL:      "https://example.com/acme-series-b",
						IsHighPriority: true,
					},
					{
						Title:      "Acme engineering blog roundup",
						Summary:    "Assorted posts.",
						SignalType: core.SignalBlogPost,
						SourceURL:  "https://blog.acme.example/roundup",
					},
				},
			},
			{
				CompetitorName: "Globex",
				Signals: []core.Signal{
					{
						Title:      "Globex quarterly revenue up 12%",
						Summary:    "Earnings beat expectations.",
						SignalType: core.SignalEarningsReport,
						Sentiment:  core.SentimentNeutral,
						SourceURL:  "https://example.com/globex-earnings",
					},
				},
			},
		},
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(3); got != "Competitor Intelligence Digest - 3 New Signals" {
		t.Errorf("Unexpected subject: %q", got)
	}
	if got := Subject(1); got != "Competitor Intelligence Digest - 1 New Signal" {
		t.Errorf("Expected singular subject, got %q", got)
	}
}

func TestDigestTotalSignals(t *testing.T) {
	if got := sampleDigest().TotalSignals(); got != 3 {
		t.Errorf("Expected 3 signals, got %d", got)
	}
}

func TestRenderDigest(t *testing.T) {
	renderer, err := NewRenderer(nil)
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	html, err := renderer.Render(sampleDigest())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		"Acme",
		"Globex",
		"Acme raises $50M Series B",
		"badge-positive",
		"High Priority",
		"funding",
		"earnings report", // underscores replaced in the type label
		"https://example.com/acme-series-b",
		"Monday, August 31, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Rendered digest missing %q", want)
		}
	}

	if strings.Contains(html, "earnings_report") {
		t.Error("Signal type label should not keep underscores")
	}
}

func TestRenderOmitsEmptySentimentBadge(t *testing.T) {
	renderer, err := NewRenderer(nil)
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	html, err := renderer.Render(sampleDigest())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if strings.Contains(html, `badge-"`) || strings.Contains(html, "badge->") {
		t.Error("Signals without sentiment must not render an empty badge")
	}
}

func TestResendSenderPostsMessage(t *testing.T) {
	var captured resendRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer server.Close()

	sender := NewResendSender("re_key", "Competitor Intel <noreply@signalhound.dev>", time.Second)
	sender.endpoint = server.URL

	err := sender.Send(context.Background(), "user@example.com", "subject", "<html></html>")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if auth != "Bearer re_key" {
		t.Errorf("Expected bearer auth, got %q", auth)
	}
	if len(captured.To) != 1 || captured.To[0] != "user@example.com" {
		t.Errorf("Unexpected recipients: %v", captured.To)
	}
	if captured.Subject != "subject" {
		t.Errorf("Unexpected subject: %q", captured.Subject)
	}
}

func TestResendSenderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer server.Close()

	sender := NewResendSender("re_key", "bad", time.Second)
	sender.endpoint = server.URL

	if err := sender.Send(context.Background(), "user@example.com", "s", "h"); err == nil {
		t.Error("Expected an error for a rejected message")
	}

	unconfigured := NewResendSender("", "from", time.Second)
	if err := unconfigured.Send(context.Background(), "user@example.com", "s", "h"); err == nil {
		t.Error("Expected an error when the API key is missing")
	}
}
