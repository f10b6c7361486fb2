// Package email sends draft review notifications through the Resend HTTP
// API and renders the draft preview HTML embedded in them.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"blogsmith/internal/config"
	"blogsmith/internal/core"
)

// ResendAPIURL is the Resend send endpoint.
const ResendAPIURL = "https://api.resend.com/emails"

// Sender delivers notification emails via the Resend API.
type Sender struct {
	APIKey     string
	From       string
	To         string
	APIURL     string
	HTTPClient *http.Client
}

// NewSender creates a sender from email configuration. Missing settings are
// configuration errors, reported before any request is made.
func NewSender(cfg config.Email) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is not configured")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("BLOG_EMAIL_FROM is not configured")
	}
	if cfg.To == "" {
		return nil, fmt.Errorf("BLOG_EMAIL_RECIPIENT is not configured")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Sender{
		APIKey: cfg.APIKey,
		From:   cfg.From,
		To:     cfg.To,
		APIURL: ResendAPIURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// resendPayload is the Resend send request body.
type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers a single HTML email.
func (s *Sender) Send(ctx context.Context, subject, html string) error {
	payload, err := json.Marshal(resendPayload{
		From:    s.From,
		To:      []string{s.To},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Notification holds everything the draft review email needs.
type Notification struct {
	Post       core.BlogPost
	AdminURL   string
	PublishURL string
}

// SendDraftNotification renders and sends the draft review email. Failures
// are returned for the caller to report; they never block the generation
// pipeline.
func (s *Sender) SendDraftNotification(ctx context.Context, n Notification) error {
	html, err := RenderDraftEmail(n)
	if err != nil {
		return fmt.Errorf("failed to render draft email: %w", err)
	}

	subject := fmt.Sprintf("📝 New Blog Draft: %s", n.Post.Title)
	return s.Send(ctx, subject, html)
}
