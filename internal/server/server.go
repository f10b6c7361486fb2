// Package server exposes the blog generation and publish HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"blogsmith/internal/config"
	"blogsmith/internal/email"
	"blogsmith/internal/generator"
	"blogsmith/internal/llm"
	"blogsmith/internal/logger"
	"blogsmith/internal/store"
	"blogsmith/internal/topics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Notifier sends the draft review email. Nil disables notifications.
type Notifier interface {
	SendDraftNotification(ctx context.Context, n email.Notification) error
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      *store.Store
	sender     Notifier
	registry   *topics.Registry
	cfg        *config.Config
	log        *slog.Logger

	// newClient builds the model client for a request. Generation requests
	// can override the model, so the client is constructed per request.
	newClient func(cfg config.AI) (llm.Client, error)
}

// New creates a new HTTP server instance
func New(st *store.Store, sender Notifier, cfg *config.Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     st,
		sender:    sender,
		registry:  topics.Default(),
		cfg:       cfg,
		log:       logger.Get(),
		newClient: llm.NewClient,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Generation holds a request open for the whole model round trip, so
	// the timeout is configured rather than hardcoded.
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	if s.cfg.Server.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Server.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	s.router.Route("/api/blog", func(r chi.Router) {
		// The publish link lands in an email client, so it authenticates
		// with its own single-use token instead of the API secret.
		r.Get("/publish", s.handlePublish)

		r.Get("/generate", s.handleGenerateDocs)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/generate", s.handleGenerate)
			r.Get("/posts", s.handleListPosts)
			r.Get("/posts/{id}", s.handleGetPost)
		})
	})

	if s.cfg.Server.AuthMode == config.AuthModeOpen {
		s.log.Warn("Generation API is running without authentication. Set BLOG_API_SECRET to require a bearer token")
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"auth_mode", s.cfg.Server.AuthMode,
		"email_enabled", s.sender != nil,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}

// buildGenerator constructs the generator for one request, honoring a
// per-request model override.
func (s *Server) buildGenerator(modelOverride string) (*generator.Generator, error) {
	aiCfg := s.cfg.AI
	if modelOverride != "" {
		aiCfg.Model = modelOverride
	}

	client, err := s.newClient(aiCfg)
	if err != nil {
		return nil, err
	}

	return generator.New(client, s.registry), nil
}
