// Package openai wraps chat completions with a client-side rate limit.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const defaultModel = goopenai.GPT4o

var errAPIKeyRequired = errors.New("openai api key is required")

// Request is a single-turn completion: a system prompt plus one user turn,
// optionally carrying an image.
type Request struct {
	System    string
	User      string
	ImageURL  string
	MaxTokens int
	JSON      bool
}

// Client issues chat completions.
type Client struct {
	api     *goopenai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
}

// Option configures optional client behavior.
type Option func(*goopenai.ClientConfig)

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(cfg *goopenai.ClientConfig) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			cfg.BaseURL = trimmed
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *goopenai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// NewClient builds a client from configuration.
func NewClient(cfg config.OpenAIConfig, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	apiCfg := goopenai.DefaultConfig(key)
	for _, opt := range opts {
		if opt != nil {
			opt(&apiCfg)
		}
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		api:     goopenai.NewClientWithConfig(apiCfg),
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.Timeout,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the request and returns the trimmed text of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c == nil || c.api == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "openai client not configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "openai rate limiter")
	}

	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "openai returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "openai returned empty content")
	}
	return content, nil
}

func (c *Client) buildRequest(req Request) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	user := goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser}
	if req.ImageURL != "" {
		user.MultiContent = []goopenai.ChatMessagePart{
			{
				Type:     goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{URL: req.ImageURL, Detail: goopenai.ImageURLDetailAuto},
			},
			{Type: goopenai.ChatMessagePartTypeText, Text: req.User},
		}
	} else {
		user.Content = req.User
	}
	messages = append(messages, user)

	out := goopenai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.JSON {
		out.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return out
}

