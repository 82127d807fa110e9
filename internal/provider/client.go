// Package provider talks to an OpenAI-compatible chat completions endpoint.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Completion is a single-prompt completion request.
type Completion struct {
	Prompt    string
	MaxTokens int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatChoice struct {
	Index   int         `json:"index"`
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client is safe for concurrent use and is never mutated after New.
type Client struct {
	cfg  Config
	http *resty.Client
}

// New builds a client. It fails with ErrNoCredential when cfg has no API key.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, ErrNoCredential
	}
	hc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Client{cfg: cfg, http: hc}, nil
}

// Model is the upstream model name sent with every request.
func (c *Client) Model() string { return c.cfg.Model }

// Complete sends p as a single user message and returns the first choice's
// text, or "" when the provider returned no choices. One attempt only.
func (c *Client) Complete(ctx context.Context, p Completion) (string, error) {
	var out chatResponse
	var apiErr apiErrorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:     c.cfg.Model,
			Messages:  []chatMessage{{Role: "user", Content: p.Prompt}},
			MaxTokens: p.MaxTokens,
		}).
		ForceContentType("application/json").
		SetResult(&out).
		SetError(&apiErr).
		Post(c.cfg.BaseURL + "/chat/completions")
	if err != nil {
		// non-JSON error bodies fail to decode; still report the status
		if resp != nil && resp.IsError() {
			return "", &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
		}
		return "", fmt.Errorf("provider: chat completion: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return "", &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
