// Package openai is a minimal chat-completions client.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwise1/earthlens/internal/ai"
	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI compatible /chat/completions endpoint.
type Client struct {
	BaseURL    *url.URL
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "parse openai base url")
	}
	return &Client{
		BaseURL: u,
		APIKey:  apiKey,
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Name() string {
	return "openai"
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	endpoint := c.BaseURL.ResolveReference(&url.URL{Path: "chat/completions"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create chat request")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var resp chatResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", ai.ErrEmptyResponse
	}
	return *resp.Choices[0].Message.Content, nil
}

func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("openai request failed with status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("openai request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
