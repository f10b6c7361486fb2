package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blogsmith/internal/config"
	"blogsmith/internal/email"
	"blogsmith/internal/logger"
	"blogsmith/internal/server"
	"blogsmith/internal/store"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the blog generation HTTP API",
		Long: `Start the blogsmith HTTP server.

The server provides:
  • POST /api/blog/generate to generate a draft on demand
  • GET /api/blog/publish for one-click publishing from review emails
  • REST access to stored posts, plus health and status endpoints

Set BLOG_API_SECRET to require a bearer token on the generation API.

Examples:
  # Start server on default port 8080
  blogsmith serve

  # Start on custom port
  blogsmith serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override server config from flags if provided
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	// Open the draft store
	st, err := store.NewStore(cfg.Store.Directory, cfg.Store.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// The review email is optional: without Resend credentials the server
	// still generates and stores drafts.
	var sender server.Notifier
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		s, err := email.NewSender(cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to configure email sender: %w", err)
		}
		sender = s
	} else {
		log.Warn("Draft review emails are disabled. Set RESEND_API_KEY, BLOG_EMAIL_FROM and BLOG_EMAIL_RECIPIENT to enable them")
	}

	srv := server.New(st, sender, cfg)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal or an error from server
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
