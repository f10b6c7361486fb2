package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// emailStyle carries the palette for the draft notification email.
type emailStyle struct {
	HeaderColor     string
	BackgroundColor string
	TextColor       string
	AccentColor     string
	BorderColor     string
	MaxWidth        string
	FontFamily      string
}

func defaultEmailStyle() emailStyle {
	return emailStyle{
		HeaderColor:     "#2563eb",
		BackgroundColor: "#f8fafc",
		TextColor:       "#1e293b",
		AccentColor:     "#27ae60",
		BorderColor:     "#e2e8f0",
		MaxWidth:        "768px",
		FontFamily:      "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif",
	}
}

// markdownToHTML converts the article markdown and restyles the result for
// email clients, which ignore stylesheets; every block element carries its
// style inline.
func markdownToHTML(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return template.HTML(restyleForEmail(buf.String())), nil
}

// restyleForEmail injects inline styles into the tags goldmark emits.
var emailRestyler = strings.NewReplacer(
	"<h1>", `<h1 style="font-size: 32px; font-weight: 700; color: #111827; margin-top: 32px; margin-bottom: 16px;">`,
	"<h2>", `<h2 style="font-size: 28px; font-weight: 600; color: #111827; margin-top: 24px; margin-bottom: 12px;">`,
	"<h3>", `<h3 style="font-size: 24px; font-weight: 600; color: #111827; margin-top: 20px; margin-bottom: 8px;">`,
	"<p>", `<p style="margin-bottom: 16px; line-height: 1.7;">`,
	"<ul>", `<ul style="margin-top: 16px; margin-bottom: 16px; padding-left: 24px;">`,
	"<ol>", `<ol style="margin-top: 16px; margin-bottom: 16px; padding-left: 24px;">`,
	"<li>", `<li style="margin-bottom: 6px; line-height: 1.7;">`,
)

func restyleForEmail(html string) string {
	return emailRestyler.Replace(html)
}

type draftEmailData struct {
	Title        string
	Date         string
	Category     string
	Excerpt      string
	ContentHTML  template.HTML
	Bibliography string
	Caption      string
	Slides       []string
	ImageIdea    string
	Author       string
	AdminURL     string
	PublishURL   string
	Style        emailStyle
}

var draftEmailTemplate = template.Must(template.New("draft").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Blog Draft</title>
</head>
<body style="margin: 0; padding: 0; background-color: {{.Style.BackgroundColor}}; font-family: {{.Style.FontFamily}}; color: {{.Style.TextColor}};">
  <div style="max-width: {{.Style.MaxWidth}}; margin: 0 auto; padding: 32px 16px;">
    <div style="background-color: {{.Style.HeaderColor}}; color: #ffffff; padding: 24px; border-radius: 8px 8px 0 0; text-align: center;">
      <h1 style="margin: 0; font-size: 24px; font-weight: 600;">New Blog Draft Ready for Review</h1>
      <p style="margin: 8px 0 0 0; font-size: 14px; opacity: 0.9;">{{.Date}}</p>
    </div>

    <div style="background-color: #ffffff; border: 1px solid {{.Style.BorderColor}}; border-top: none; padding: 32px;">
      <div style="display: flex; align-items: center; gap: 16px; font-size: 14px; color: #4b5563; margin-bottom: 24px;">
        <span>{{.Date}}</span>
        <span style="background-color: #e5e7eb; padding: 4px 12px; border-radius: 9999px;">{{.Category}}</span>
      </div>

      <h1 style="font-size: 36px; font-weight: 700; color: #111827; margin-bottom: 24px; line-height: 1.2;">{{.Title}}</h1>

      {{if .Excerpt}}
      <p style="font-size: 20px; color: #4b5563; font-weight: 400; margin-bottom: 32px; line-height: 1.6;">{{.Excerpt}}</p>
      {{end}}

      <div style="font-size: 18px; line-height: 1.7; color: #374151;">
        {{.ContentHTML}}
      </div>

      <div style="margin-top: 32px; border-top: 1px solid {{.Style.BorderColor}}; padding-top: 24px;">
        <h2 style="font-size: 16px; font-weight: 600; color: #6b7280; text-transform: uppercase; letter-spacing: 0.05em;">Bibliography</h2>
        <p style="white-space: pre-wrap; font-size: 14px; color: #4b5563; line-height: 1.7;">{{.Bibliography}}</p>
      </div>

      <div style="margin-top: 24px; background-color: #f9fafb; border-radius: 8px; padding: 24px;">
        <h2 style="font-size: 16px; font-weight: 600; color: #6b7280; text-transform: uppercase; letter-spacing: 0.05em; margin-top: 0;">Instagram Content</h2>
        <p style="font-size: 15px; line-height: 1.6;">{{.Caption}}</p>
        <ol style="padding-left: 24px; font-size: 14px; color: #4b5563;">
          {{range .Slides}}<li style="margin-bottom: 6px;">{{.}}</li>
          {{end}}
        </ol>
        <p style="font-size: 14px; color: #6b7280; margin-bottom: 0;"><strong>Featured image idea:</strong> {{.ImageIdea}}</p>
      </div>

      <div style="margin-top: 32px; text-align: center;">
        <a href="{{.PublishURL}}" style="display: inline-block; padding: 14px 32px; background-color: {{.Style.AccentColor}}; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600; font-size: 16px;">Publish Now</a>
        <a href="{{.AdminURL}}" style="display: inline-block; padding: 14px 32px; margin-left: 12px; background-color: #3498db; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600; font-size: 16px;">Edit in Admin</a>
      </div>

      <p style="margin-top: 24px; text-align: center; font-size: 13px; color: #95a5a6;">
        The publish link works once and expires 7 days after this draft was created.
      </p>

      <div style="margin-top: 40px; border-top: 1px solid {{.Style.BorderColor}}; padding-top: 24px;">
        <p style="font-weight: 500; color: #111827; font-size: 18px; margin-bottom: 4px;">{{.Author}}</p>
        <p style="color: #4b5563; margin: 0;">Eye Care Specialist at The NYC Optometrist</p>
      </div>
    </div>
  </div>
</body>
</html>`))

// RenderDraftEmail renders the full review email for a draft post. All
// model-generated text passes through the template's contextual escaping;
// only the converted markdown body is injected as HTML.
func RenderDraftEmail(n Notification) (string, error) {
	contentHTML, err := markdownToHTML(n.Post.Content)
	if err != nil {
		return "", err
	}

	author := n.Post.Author
	if author == "" {
		author = "Dr. Joanna Latek"
	}

	date := n.Post.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}

	category := n.Post.TopicCategory
	if category == "" {
		category = "Eye Care"
	}

	data := draftEmailData{
		Title:        n.Post.Title,
		Date:         date.Format("Jan 2, 2006"),
		Category:     category,
		Excerpt:      n.Post.Excerpt,
		ContentHTML:  contentHTML,
		Bibliography: n.Post.Bibliography,
		Caption:      n.Post.InstagramCaption,
		Slides:       n.Post.InstagramCarouselSlides,
		ImageIdea:    n.Post.FeaturedImageSuggestion,
		Author:       author,
		AdminURL:     n.AdminURL,
		PublishURL:   n.PublishURL,
		Style:        defaultEmailStyle(),
	}

	var buf bytes.Buffer
	if err := draftEmailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render draft email: %w", err)
	}

	return buf.String(), nil
}
