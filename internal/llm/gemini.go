package llm

import (
	"context"
	"fmt"

	"blogsmith/internal/core"

	"google.golang.org/genai"
)

// geminiClient generates text through the Gemini API SDK.
type geminiClient struct {
	gClient     *genai.Client
	model       string
	temperature float64
	info        core.ModelInfo
}

func newGeminiClient(apiKey, model string, temperature float64, info core.ModelInfo) (*geminiClient, error) {
	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiClient{
		gClient:     gClient,
		model:       model,
		temperature: temperature,
		info:        info,
	}, nil
}

func (c *geminiClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: user}},
		Role:  "user",
	}}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(c.temperature)),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}

	return text, nil
}

func (c *geminiClient) Info() core.ModelInfo {
	return c.info
}
