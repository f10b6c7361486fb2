package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"blogsmith/internal/config"
	"blogsmith/internal/core"
	"blogsmith/internal/email"
	"blogsmith/internal/generator"
	"blogsmith/internal/llm"
	"blogsmith/internal/logger"
	"blogsmith/internal/store"
	"blogsmith/internal/topics"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command for one-shot blog generation
func NewGenerateCmd() *cobra.Command {
	var (
		topic    string
		subtopic string
		model    string
		noEmail  bool
		noSave   bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one blog post draft from the terminal",
		Long: `Generate a single blog post draft.

The draft is stored locally and a review email is sent when Resend is
configured. Use --no-save to preview a post without storing it.

Examples:
  # Random topic
  blogsmith generate

  # Specific topic and subtopic
  blogsmith generate --topic "Dry Eyes" --subtopic "Screen time and dry eye"

  # Preview only, no draft and no email
  blogsmith generate --topic myopia --no-save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), generateFlags{
				topic:    topic,
				subtopic: subtopic,
				model:    model,
				noEmail:  noEmail,
				noSave:   noSave,
				asJSON:   asJSON,
			})
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic category name, ID, or keyword (random when omitted)")
	cmd.Flags().StringVar(&subtopic, "subtopic", "", "Specific subject within the category")
	cmd.Flags().StringVar(&model, "model", "", "Override the configured model")
	cmd.Flags().BoolVar(&noEmail, "no-email", false, "Skip the review email")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print the post without storing a draft (implies --no-email)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

type generateFlags struct {
	topic    string
	subtopic string
	model    string
	noEmail  bool
	noSave   bool
	asJSON   bool
}

func runGenerate(ctx context.Context, flags generateFlags) error {
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	aiCfg := cfg.AI
	if flags.model != "" {
		aiCfg.Model = flags.model
	}

	client, err := llm.NewClient(aiCfg)
	if err != nil {
		return err
	}

	gen := generator.New(client, topics.Default())
	result, err := gen.Generate(ctx, generator.Options{
		Topic:    flags.topic,
		Subtopic: flags.subtopic,
	})
	if err != nil {
		return err
	}

	if flags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		fmt.Println(generator.FormatForDisplay(result))
	}

	if flags.noSave {
		return nil
	}

	st, err := store.NewStore(cfg.Store.Directory, cfg.Store.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	post := core.BlogPost{
		Title:                   result.Title,
		Slug:                    result.Slug,
		Excerpt:                 result.Excerpt,
		MetaDescription:         result.MetaDescription,
		Content:                 result.Content,
		Bibliography:            result.Bibliography,
		InstagramCaption:        result.InstagramCaption,
		InstagramCarouselSlides: result.InstagramCarouselSlides,
		FeaturedImageSuggestion: result.FeaturedImageSuggestion,
		Tags:                    result.Tags,
		TopicCategory:           result.TopicCategory.Name,
		ModelProvider:           result.ModelInfo.Provider,
		ModelID:                 result.ModelInfo.Model,
	}

	draft, err := st.CreateDraft(post)
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}

	adminURL := cfg.Site.AdminPostURL(draft.ID)
	publishURL := cfg.Site.PublishURL(draft.ID, draft.PublishToken)

	fmt.Printf("\nDraft saved: %s\n", draft.ID)
	fmt.Printf("Admin:   %s\n", adminURL)
	fmt.Printf("Publish: %s\n", publishURL)

	if flags.noEmail {
		return nil
	}
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		log.Warn("Skipping review email: Resend is not configured")
		return nil
	}

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to configure email sender: %w", err)
	}

	post.ID = draft.ID
	post.CreatedAt = result.GeneratedAt

	err = sender.SendDraftNotification(ctx, email.Notification{
		Post:       post,
		AdminURL:   adminURL,
		PublishURL: publishURL,
	})
	if err != nil {
		// The draft is already saved; an email failure should not fail the run.
		log.Error("Failed to send review email", "error", err)
		fmt.Println("Review email failed to send. Use the publish link above instead.")
		return nil
	}

	fmt.Printf("Review email sent to %s\n", cfg.Email.To)
	return nil
}
