package email

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogsmith/internal/config"
	"blogsmith/internal/core"
)

func sampleNotification() Notification {
	return Notification{
		Post: core.BlogPost{
			Title:                   "Protecting Young Eyes from Screens",
			Slug:                    "protecting-young-eyes",
			Excerpt:                 "Practical tips for managing kids' screen time.",
			Content:                 "## Why Screen Time Matters\n\nChildren's eyes are still developing.",
			Bibliography:            "AAO. \"Screen Use in Children.\" 2024.",
			InstagramCaption:        "Is screen time hurting your child's eyes?",
			InstagramCarouselSlides: []string{"Slide one", "Slide two", "Slide three"},
			FeaturedImageSuggestion: "Child reading a tablet in dim light",
			TopicCategory:           "Pediatrics",
			Author:                  "Dr. Joanna Latek",
			CreatedAt:               time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
		AdminURL:   "https://www.thenycoptometrist.com/admin/collections/blog-posts/abc-123",
		PublishURL: "https://www.thenycoptometrist.com/api/blog/publish?id=abc-123&token=deadbeef",
	}
}

func TestNewSenderConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Email
		wantErr string
	}{
		{"missing api key", config.Email{From: "a@b.com", To: "c@d.com"}, "RESEND_API_KEY"},
		{"missing from", config.Email{APIKey: "re_123", To: "c@d.com"}, "BLOG_EMAIL_FROM"},
		{"missing recipient", config.Email{APIKey: "re_123", From: "a@b.com"}, "BLOG_EMAIL_RECIPIENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSender(tt.cfg)
			if err == nil {
				t.Fatal("Expected a configuration error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error should name %s, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewSenderDefaults(t *testing.T) {
	s, err := NewSender(config.Email{APIKey: "re_123", From: "a@b.com", To: "c@d.com"})
	if err != nil {
		t.Fatalf("NewSender failed: %v", err)
	}
	if s.APIURL != ResendAPIURL {
		t.Errorf("APIURL = %q", s.APIURL)
	}
	if s.HTTPClient.Timeout != 30*time.Second {
		t.Errorf("Default timeout = %v, want 30s", s.HTTPClient.Timeout)
	}
}

func TestRenderDraftEmail(t *testing.T) {
	n := sampleNotification()
	html, err := RenderDraftEmail(n)
	if err != nil {
		t.Fatalf("RenderDraftEmail failed: %v", err)
	}

	// The publish URL lands in an href, so its query separator comes out
	// HTML-escaped.
	for _, want := range []string{
		n.Post.Title,
		n.AdminURL,
		template.HTMLEscapeString(n.PublishURL),
		"Publish Now",
		"Edit in Admin",
		"Pediatrics",
		"Slide two",
		"Child reading a tablet in dim light",
		"Mar 14, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Email HTML missing %q", want)
		}
	}

	// The markdown body is converted, and headings carry inline styles so
	// email clients render them.
	if !strings.Contains(html, `<h2 style=`) {
		t.Error("Markdown headings should be converted to styled h2 tags")
	}
	if strings.Contains(html, "## Why Screen Time Matters") {
		t.Error("Raw markdown should not survive into the email body")
	}
}

func TestRenderDraftEmailEscapesModelOutput(t *testing.T) {
	n := sampleNotification()
	n.Post.Title = `<script>alert("x")</script>`

	html, err := RenderDraftEmail(n)
	if err != nil {
		t.Fatalf("RenderDraftEmail failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("Model-generated title must be HTML-escaped")
	}
}

func TestRenderDraftEmailFallbacks(t *testing.T) {
	n := sampleNotification()
	n.Post.Author = ""
	n.Post.TopicCategory = ""

	html, err := RenderDraftEmail(n)
	if err != nil {
		t.Fatalf("RenderDraftEmail failed: %v", err)
	}
	if !strings.Contains(html, "Dr. Joanna Latek") {
		t.Error("Missing author should fall back to the practice default")
	}
	if !strings.Contains(html, "Eye Care") {
		t.Error("Missing category should fall back to a generic label")
	}
}

func TestSendDraftNotification(t *testing.T) {
	var gotAuth string
	var gotPayload resendPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &Sender{
		APIKey:     "re_test",
		From:       "blog@thenycoptometrist.com",
		To:         "doctor@thenycoptometrist.com",
		APIURL:     srv.URL,
		HTTPClient: srv.Client(),
	}

	n := sampleNotification()
	if err := s.SendDraftNotification(context.Background(), n); err != nil {
		t.Fatalf("SendDraftNotification failed: %v", err)
	}

	if gotAuth != "Bearer re_test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPayload.From != s.From {
		t.Errorf("Payload from = %q", gotPayload.From)
	}
	if len(gotPayload.To) != 1 || gotPayload.To[0] != s.To {
		t.Errorf("Payload to = %v", gotPayload.To)
	}
	if !strings.Contains(gotPayload.Subject, n.Post.Title) {
		t.Errorf("Subject = %q, should contain the post title", gotPayload.Subject)
	}
	if !strings.Contains(gotPayload.HTML, template.HTMLEscapeString(n.PublishURL)) {
		t.Error("Email body should contain the publish link")
	}
}

func TestSendAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	s := &Sender{
		APIKey:     "re_test",
		From:       "bad",
		To:         "doctor@thenycoptometrist.com",
		APIURL:     srv.URL,
		HTTPClient: srv.Client(),
	}

	err := s.Send(context.Background(), "subject", "<p>body</p>")
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "invalid from address") {
		t.Errorf("Error should carry status and body excerpt: %v", err)
	}
}
