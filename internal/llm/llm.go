// Package llm provides text generation clients for the supported model
// providers. z.ai, OpenAI, Anthropic and OpenRouter all speak the
// OpenAI-compatible chat completions API; Gemini uses its own SDK.
package llm

import (
	"context"
	"fmt"

	"blogsmith/internal/config"
	"blogsmith/internal/core"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTemperature is used when the configuration does not set one.
const DefaultTemperature = 0.7

// Client generates text from a system and user prompt pair.
type Client interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
	Info() core.ModelInfo
}

// keyEnvNames maps provider names to the environment variable users are
// told to set when the API key is missing.
var keyEnvNames = map[string]string{
	"zai":        "Z_AI_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"gemini":     "GEMINI_API_KEY",
}

// displayNames maps provider names to the name reported in model info.
var displayNames = map[string]string{
	"zai":        "z.ai",
	"openai":     "openai",
	"anthropic":  "anthropic",
	"openrouter": "openrouter",
	"gemini":     "gemini",
}

// NewClient creates a client for the configured provider. A missing API key
// is a configuration error and is reported before any request is made.
func NewClient(cfg config.AI) (Client, error) {
	name := cfg.Provider
	if name == "" {
		name = "zai"
	}

	pc, ok := cfg.ProviderFor(name)
	if !ok {
		return nil, fmt.Errorf("unknown AI provider: %q", name)
	}
	if pc.APIKey == "" {
		return nil, fmt.Errorf("%s is not configured. Please set it in your environment variables", keyEnvNames[name])
	}

	model := resolveModel(cfg.Model, pc.Model)
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	info := core.ModelInfo{Provider: displayNames[name], Model: model}

	if name == "gemini" {
		return newGeminiClient(pc.APIKey, model, temperature, info)
	}

	opts := []option.RequestOption{option.WithAPIKey(pc.APIKey)}
	if pc.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(pc.BaseURL))
	}

	return &openAIClient{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		info:        info,
	}, nil
}

// resolveModel picks the model id: explicit override first, then the
// provider's configured default.
func resolveModel(override, providerDefault string) string {
	if override != "" {
		return override
	}
	return providerDefault
}

// openAIClient talks to any OpenAI-compatible chat completions endpoint.
type openAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	info        core.ModelInfo
}

func (c *openAIClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from model %s", c.model)
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}

	return text, nil
}

func (c *openAIClient) Info() core.ModelInfo {
	return c.info
}
