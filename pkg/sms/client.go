// Package sms sends text messages through Africa's Talking or Termii.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/phone"
)

const (
	africasTalkingPath              = "/version1/messaging"
	termiiPath                      = "/api/sms/send"
	responseReadLimit         int64 = 1024
	defaultTimeout                  = 10 * time.Second
	termiiMessageType               = "plain"
	termiiChannel                   = "generic"
	africasTalkingSandboxUser       = "sandbox"
)

var errAPIKeyRequired = errors.New("sms api key is required")

// Client posts messages to the configured SMS gateway.
type Client struct {
	httpClient  *http.Client
	provider    string
	apiKey      string
	username    string
	senderID    string
	baseURL     string
	countryCode string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the gateway base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithCountryCode sets the calling code used when normalizing local numbers.
func WithCountryCode(code string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			c.countryCode = trimmed
		}
	}
}

// NewClient builds a client for the provider selected in cfg.
func NewClient(cfg config.SMSConfig, opts ...Option) (*Client, error) {
	client := &Client{
		provider:    cfg.NormalizedProvider(),
		countryCode: phone.DefaultCountryCode,
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client.httpClient = &http.Client{Timeout: timeout}

	switch client.provider {
	case config.SMSProviderAfricasTalking:
		client.apiKey = strings.TrimSpace(cfg.AfricasTalkingAPIKey)
		client.username = strings.TrimSpace(cfg.AfricasTalkingUser)
		if client.username == "" {
			client.username = africasTalkingSandboxUser
		}
		client.baseURL = cfg.AfricasTalkingBaseURL
	case config.SMSProviderTermii:
		client.apiKey = strings.TrimSpace(cfg.TermiiAPIKey)
		client.senderID = strings.TrimSpace(cfg.TermiiSenderID)
		client.baseURL = cfg.TermiiBaseURL
	default:
		return nil, fmt.Errorf("unsupported sms provider %q", cfg.Provider)
	}
	if client.apiKey == "" {
		return nil, errAPIKeyRequired
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.baseURL == "" {
		return nil, fmt.Errorf("sms base url is required for %s", client.provider)
	}
	return client, nil
}

// Provider returns the gateway name.
func (c *Client) Provider() string {
	return c.provider
}

// Send delivers a message to the phone number after normalizing it.
func (c *Client) Send(ctx context.Context, to, message string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "sms client not configured")
	}
	recipient := phone.NormalizeWithCode(to, c.countryCode)
	if recipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sms recipient is required")
	}
	if strings.TrimSpace(message) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sms message is required")
	}

	req, err := c.buildRequest(ctx, recipient, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build sms request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute sms request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), c.provider+" sms request failed")
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, to, message string) (*http.Request, error) {
	switch c.provider {
	case config.SMSProviderTermii:
		payload, err := json.Marshal(termiiRequest{
			To:      to,
			From:    c.senderID,
			SMS:     message,
			Type:    termiiMessageType,
			APIKey:  c.apiKey,
			Channel: termiiChannel,
		})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(termiiPath), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	default:
		form := url.Values{}
		form.Set("username", c.username)
		form.Set("to", to)
		form.Set("message", message)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(africasTalkingPath), strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("apiKey", c.apiKey)
		return req, nil
	}
}

func (c *Client) buildURL(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

type termiiRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	APIKey  string `json:"api_key"`
	Channel string `json:"channel"`
}
