// Package generator runs the blog generation pipeline: topic selection,
// prompt construction, model invocation, and response parsing.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogsmith/internal/core"
	"blogsmith/internal/logger"
	"blogsmith/internal/prompts"
	"blogsmith/internal/topics"
)

// TextGenerator is the model client the generator drives.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
	Info() core.ModelInfo
}

// Options controls a single generation run.
type Options struct {
	// Topic selects a category by name or ID. Random when empty.
	Topic string
	// Subtopic pins the post to a specific subject. When empty a random
	// example subtopic from the category is used.
	Subtopic string
}

// Result is a fully generated and validated blog post, not yet persisted.
type Result struct {
	Title                   string
	Slug                    string
	Excerpt                 string
	MetaDescription         string
	Content                 string
	Bibliography            string
	InstagramCaption        string
	InstagramCarouselSlides []string
	FeaturedImageSuggestion string

	TopicCategory core.TopicCategory
	Tags          []string
	GeneratedAt   time.Time
	ModelInfo     core.ModelInfo
}

// Generator coordinates topic selection, prompting and parsing.
type Generator struct {
	llm      TextGenerator
	registry *topics.Registry
	log      *slog.Logger
	now      func() time.Time
}

// New creates a generator backed by the given model client and registry.
func New(llm TextGenerator, registry *topics.Registry) *Generator {
	return &Generator{
		llm:      llm,
		registry: registry,
		log:      logger.Get(),
		now:      time.Now,
	}
}

// Generate produces one blog post. There is no retry: a parse or schema
// failure is returned to the caller, who decides whether to run again.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	generatedAt := g.now().UTC()

	var category core.TopicCategory
	if opts.Topic != "" {
		found, ok := g.registry.Find(opts.Topic)
		if !ok {
			return nil, fmt.Errorf("topic category not found: %q. Valid categories: %s",
				opts.Topic, strings.Join(g.registry.Names(), ", "))
		}
		category = found
	} else {
		category = g.registry.PickRandom()
	}

	subtopic := opts.Subtopic
	if subtopic == "" {
		subtopic = g.registry.PickSubtopic(category)
	}

	info := g.llm.Info()
	g.log.Info("Generating blog post",
		"category", category.Name,
		"subtopic", subtopic,
		"provider", info.Provider,
		"model", info.Model,
	)

	raw, err := g.llm.GenerateText(ctx, prompts.SystemPrompt, prompts.UserPrompt(category, subtopic))
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	obj, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	payload, err := validateResponse(obj)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Title:                   payload.Title,
		Slug:                    NormalizeSlug(payload.Slug),
		Excerpt:                 payload.Excerpt,
		MetaDescription:         payload.MetaDescription,
		Content:                 payload.Content,
		Bibliography:            payload.Bibliography,
		InstagramCaption:        payload.InstagramCaption,
		InstagramCarouselSlides: payload.InstagramCarouselSlides,
		FeaturedImageSuggestion: payload.FeaturedImageSuggestion,
		TopicCategory:           category,
		Tags:                    category.AssociatedTags,
		GeneratedAt:             generatedAt,
		ModelInfo:               info,
	}

	g.log.Info("Generated blog post", "title", result.Title, "slug", result.Slug)
	return result, nil
}

// FormatForDisplay renders a result for CLI output and logs.
func FormatForDisplay(r *Result) string {
	divider := strings.Repeat("-", 60)
	var slides strings.Builder
	for i, slide := range r.InstagramCarouselSlides {
		fmt.Fprintf(&slides, "%d. %s\n", i+1, slide)
	}

	return strings.Join([]string{
		strings.Repeat("=", 60),
		"BLOG POST GENERATED",
		strings.Repeat("=", 60),
		"",
		"Title: " + r.Title,
		"Slug: " + r.Slug,
		"Category: " + r.TopicCategory.Name,
		"Tags: " + strings.Join(r.Tags, ", "),
		"",
		divider,
		"EXCERPT",
		divider,
		r.Excerpt,
		"",
		divider,
		"META DESCRIPTION",
		divider,
		r.MetaDescription,
		"",
		divider,
		"CONTENT PREVIEW",
		divider,
		excerpt(r.Content, 500),
		"",
		divider,
		"BIBLIOGRAPHY",
		divider,
		r.Bibliography,
		"",
		divider,
		"INSTAGRAM CAPTION",
		divider,
		r.InstagramCaption,
		"",
		divider,
		"INSTAGRAM CAROUSEL SLIDES",
		divider,
		strings.TrimRight(slides.String(), "\n"),
		"",
		divider,
		"FEATURED IMAGE SUGGESTION",
		divider,
		r.FeaturedImageSuggestion,
		"",
		strings.Repeat("=", 60),
		"Generated at: " + r.GeneratedAt.Format(time.RFC3339),
		fmt.Sprintf("Model: %s/%s", r.ModelInfo.Provider, r.ModelInfo.Model),
		strings.Repeat("=", 60),
	}, "\n")
}
