package server

import (
	"errors"
	"html/template"
	"net/http"

	"blogsmith/internal/store"
)

// The publish link is opened from an email client, so both outcomes are
// rendered as standalone HTML pages rather than JSON.

var publishSuccessTemplate = template.Must(template.New("publish-success").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta http-equiv="refresh" content="3;url={{.BlogURL}}">
  <title>Blog Post Published</title>
</head>
<body style="margin: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f8fafc; color: #2c3e50;">
  <div style="max-width: 480px; margin: 80px auto; background: #ffffff; border-radius: 12px; padding: 48px 40px; text-align: center; box-shadow: 0 4px 12px rgba(0,0,0,0.08);">
    <div style="font-size: 56px;">&#9989;</div>
    <h1 style="color: #27ae60; font-size: 24px; margin: 16px 0 8px;">Blog Post Published!</h1>
    <p style="color: #7f8c8d; margin: 0 0 8px;">&ldquo;{{.Title}}&rdquo; is now live.</p>
    <p style="color: #95a5a6; font-size: 14px; margin: 0 0 32px;">Redirecting to the post in 3 seconds&hellip;</p>
    <a href="{{.BlogURL}}" style="display: inline-block; padding: 12px 28px; background-color: #27ae60; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600;">View Blog Post</a>
    <a href="{{.AdminURL}}" style="display: inline-block; padding: 12px 28px; margin-left: 8px; background-color: #3498db; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600;">Admin Panel</a>
  </div>
</body>
</html>`))

var publishErrorTemplate = template.Must(template.New("publish-error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Publish Failed</title>
</head>
<body style="margin: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f8fafc; color: #2c3e50;">
  <div style="max-width: 480px; margin: 80px auto; background: #ffffff; border-radius: 12px; padding: 48px 40px; text-align: center; box-shadow: 0 4px 12px rgba(0,0,0,0.08);">
    <div style="font-size: 56px;">&#10060;</div>
    <h1 style="color: #e74c3c; font-size: 24px; margin: 16px 0 8px;">Publish Failed</h1>
    <p style="color: #7f8c8d; margin: 0 0 32px;">{{.Message}}</p>
    <a href="{{.AdminURL}}" style="display: inline-block; padding: 12px 28px; background-color: #3498db; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600;">Open Admin Panel</a>
  </div>
</body>
</html>`))

type publishSuccessData struct {
	Title    string
	BlogURL  string
	AdminURL string
}

type publishErrorData struct {
	Message  string
	AdminURL string
}

// handlePublish handles GET /api/blog/publish: the one-click publish link
// from the draft review email.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	token := r.URL.Query().Get("token")

	if id == "" || token == "" {
		s.renderPublishError(w, http.StatusBadRequest, "Missing required parameters: id and token.")
		return
	}

	post, err := s.store.Publish(id, token)
	if err != nil {
		s.log.Warn("Publish attempt failed", "post_id", id, "error", err)

		switch {
		case errors.Is(err, store.ErrNotFound):
			s.renderPublishError(w, http.StatusNotFound, "This blog post could not be found. It may have been deleted.")
		case errors.Is(err, store.ErrAlreadyPublished):
			s.renderPublishError(w, http.StatusBadRequest, "This blog post has already been published.")
		case errors.Is(err, store.ErrTokenExpired):
			s.renderPublishError(w, http.StatusBadRequest, "This publish link has expired. You can still publish from the admin panel.")
		case errors.Is(err, store.ErrInvalidToken):
			s.renderPublishError(w, http.StatusBadRequest, "This publish link is invalid or has already been used.")
		default:
			s.renderPublishError(w, http.StatusInternalServerError, "Something went wrong while publishing. Please try again from the admin panel.")
		}
		return
	}

	s.log.Info("Blog post published", "post_id", post.ID, "slug", post.Slug)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err = publishSuccessTemplate.Execute(w, publishSuccessData{
		Title:    post.Title,
		BlogURL:  s.cfg.Site.BlogURL(post.Slug),
		AdminURL: s.cfg.Site.AdminURL(),
	})
	if err != nil {
		s.log.Error("Failed to render publish success page", "error", err)
	}
}

func (s *Server) renderPublishError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := publishErrorTemplate.Execute(w, publishErrorData{
		Message:  message,
		AdminURL: s.cfg.Site.AdminURL(),
	})
	if err != nil {
		s.log.Error("Failed to render publish error page", "error", err)
	}
}
