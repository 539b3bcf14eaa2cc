// Package gemini adapts the Google GenAI SDK to the ai.Provider interface.
package gemini

import (
	"context"
	"fmt"

	"github.com/bwise1/earthlens/internal/ai"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}
