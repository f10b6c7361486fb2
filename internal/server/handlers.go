package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"blogsmith/internal/core"
	"blogsmith/internal/email"
	"blogsmith/internal/generator"
	"blogsmith/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Status response
type StatusResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Provider string `json:"provider"`
	Posts    int    `json:"posts"`
	Drafts   int    `json:"drafts"`
	Publish  int    `json:"published"`
	DBSize   int64  `json:"dbSizeBytes"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status := http.StatusOK
	health := "ok"

	if _, err := s.store.GetStats(); err != nil {
		checks["store"] = "error"
		status = http.StatusServiceUnavailable
		health = "unhealthy"
	}

	s.respondJSON(w, status, HealthResponse{
		Status: health,
		Checks: checks,
	})
}

// handleStatus handles the /api/status endpoint
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Failed to read store statistics")
		return
	}

	s.respondJSON(w, http.StatusOK, StatusResponse{
		Status:   "ok",
		Uptime:   time.Since(serverStartTime).String(),
		Provider: s.cfg.AI.Provider,
		Posts:    stats.TotalPosts,
		Drafts:   stats.Drafts,
		Publish:  stats.Published,
		DBSize:   stats.DBSize,
	})
}

// generateRequest is the POST /api/blog/generate body. All fields are
// optional; an empty body generates a post on a random topic.
type generateRequest struct {
	Topic     string `json:"topic"`
	Subtopic  string `json:"subtopic"`
	Model     string `json:"model"`
	SendEmail *bool  `json:"sendEmail"`
}

type draftSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	AdminURL      string   `json:"adminUrl"`
	TopicCategory string   `json:"topicCategory"`
	Tags          []string `json:"tags"`
}

type generateResponse struct {
	Success     bool           `json:"success"`
	RequestID   string         `json:"requestId"`
	Message     string         `json:"message"`
	Draft       draftSummary   `json:"draft"`
	EmailSent   bool           `json:"emailSent"`
	ModelInfo   core.ModelInfo `json:"modelInfo"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// handleGenerate handles POST /api/blog/generate: it runs the full
// pipeline and responds once the draft is stored and the review email has
// been attempted.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := "blog-gen-" + uuid.NewString()
	log := s.log.With("request_id", requestID)

	// An empty body is fine; only malformed JSON is rejected.
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondGenerateError(w, requestID, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	gen, err := s.buildGenerator(req.Model)
	if err != nil {
		log.Error("Failed to build model client", "error", err)
		s.respondGenerateError(w, requestID, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := gen.Generate(r.Context(), generator.Options{
		Topic:    req.Topic,
		Subtopic: req.Subtopic,
	})
	if err != nil {
		log.Error("Blog generation failed", "error", err)
		status := http.StatusInternalServerError
		if req.Topic != "" && s.isUnknownTopic(req.Topic) {
			status = http.StatusBadRequest
		}
		s.respondGenerateError(w, requestID, status, err.Error())
		return
	}

	draft, err := s.store.CreateDraft(postFromResult(result))
	if err != nil {
		log.Error("Failed to store draft", "error", err)
		s.respondGenerateError(w, requestID, http.StatusInternalServerError, "Failed to store generated draft: "+err.Error())
		return
	}

	adminURL := s.cfg.Site.AdminPostURL(draft.ID)

	emailSent := false
	if s.sender != nil && (req.SendEmail == nil || *req.SendEmail) {
		post := postFromResult(result)
		post.ID = draft.ID
		post.CreatedAt = result.GeneratedAt

		err := s.sender.SendDraftNotification(r.Context(), email.Notification{
			Post:       post,
			AdminURL:   adminURL,
			PublishURL: s.cfg.Site.PublishURL(draft.ID, draft.PublishToken),
		})
		if err != nil {
			// The draft exists either way; a failed email is reported, not
			// treated as a failed generation.
			log.Error("Failed to send draft notification email", "error", err)
		} else {
			emailSent = true
		}
	}

	log.Info("Blog draft created", "draft_id", draft.ID, "slug", draft.Slug, "email_sent", emailSent)

	s.respondJSON(w, http.StatusOK, generateResponse{
		Success:   true,
		RequestID: requestID,
		Message:   "Blog post generated and saved as draft",
		Draft: draftSummary{
			ID:            draft.ID,
			Title:         result.Title,
			Slug:          draft.Slug,
			AdminURL:      adminURL,
			TopicCategory: result.TopicCategory.Name,
			Tags:          result.Tags,
		},
		EmailSent:   emailSent,
		ModelInfo:   result.ModelInfo,
		GeneratedAt: result.GeneratedAt,
	})
}

func (s *Server) isUnknownTopic(topic string) bool {
	_, ok := s.registry.Find(topic)
	return !ok
}

// handleGenerateDocs handles GET /api/blog/generate with usage docs so the
// endpoint is discoverable from a browser.
func (s *Server) handleGenerateDocs(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"endpoint": "POST /api/blog/generate",
		"auth":     s.cfg.Server.AuthMode,
		"body": map[string]string{
			"topic":     "optional: category name, ID, or keyword (random when omitted)",
			"subtopic":  "optional: specific subject within the category",
			"model":     "optional: override the configured model",
			"sendEmail": "optional: set false to skip the review email (default true)",
		},
		"availableTopics": s.registry.Names(),
	})
}

// postFromResult maps a generation result onto the stored post shape.
func postFromResult(r *generator.Result) core.BlogPost {
	return core.BlogPost{
		Title:                   r.Title,
		Slug:                    r.Slug,
		Excerpt:                 r.Excerpt,
		MetaDescription:         r.MetaDescription,
		Content:                 r.Content,
		Bibliography:            r.Bibliography,
		InstagramCaption:        r.InstagramCaption,
		InstagramCarouselSlides: r.InstagramCarouselSlides,
		FeaturedImageSuggestion: r.FeaturedImageSuggestion,
		Tags:                    r.Tags,
		TopicCategory:           r.TopicCategory.Name,
		ModelProvider:           r.ModelInfo.Provider,
		ModelID:                 r.ModelInfo.Model,
	}
}

// postResponse is a blog post as returned by the API. Publish tokens never
// leave the store through this surface.
type postResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Excerpt         string    `json:"excerpt"`
	MetaDescription string    `json:"metaDescription"`
	Content         string    `json:"content"`
	Bibliography    string    `json:"bibliography"`
	Tags            []string  `json:"tags"`
	TopicCategory   string    `json:"topicCategory"`
	Author          string    `json:"author"`
	Status          string    `json:"status"`
	PublishedDate   time.Time `json:"publishedDate,omitempty"`
	ModelProvider   string    `json:"modelProvider"`
	ModelID         string    `json:"modelId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toPostResponse(p *core.BlogPost) postResponse {
	return postResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Excerpt:         p.Excerpt,
		MetaDescription: p.MetaDescription,
		Content:         p.Content,
		Bibliography:    p.Bibliography,
		Tags:            p.Tags,
		TopicCategory:   p.TopicCategory,
		Author:          p.Author,
		Status:          p.Status,
		PublishedDate:   p.PublishedDate,
		ModelProvider:   p.ModelProvider,
		ModelID:         p.ModelID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// handleListPosts handles GET /api/blog/posts
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	posts, err := s.store.ListPosts(status, limit)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Failed to list posts")
		return
	}

	responses := make([]postResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, toPostResponse(&posts[i]))
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"posts":   responses,
		"count":   len(responses),
	})
}

// handleGetPost handles GET /api/blog/posts/{id}
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := s.store.GetPost(id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, r, http.StatusNotFound, "Blog post not found")
		return
	}
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Failed to load post")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"post":    toPostResponse(post),
	})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// respondGenerateError writes a generation failure with its request ID so
// the caller can correlate it with server logs.
func (s *Server) respondGenerateError(w http.ResponseWriter, requestID string, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"success":   false,
		"requestId": requestID,
		"error":     message,
	})
}
