package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// resendEndpoint is the Resend transactional email API.
const resendEndpoint = "https://api.resend.com/emails"

// Sender delivers one rendered email. Implementations return an error only
// when the message was not accepted; the digest batcher treats that as
// "leave everything unmarked and retry next run".
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendSender delivers email through the Resend HTTP API.
type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResendSender creates a Resend-backed sender. from should be a verified
// "Name <address>" sender identity.
func NewResendSender(apiKey, from string, timeout time.Duration) *ResendSender {
	return &ResendSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send posts the message to Resend. A missing API key is a configuration
// error: delivery is explicitly enabled per user, so unlike the fetchers this
// does not fail soft.
func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	if s.apiKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	body, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email delivery returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}
