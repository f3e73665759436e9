package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"parley/internal/services"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	// DefaultMaxTextLen bounds how much text a single synthesis request accepts.
	DefaultMaxTextLen = 1000
)

// Config captures the runtime settings for the text-to-speech service.
type Config struct {
	BaseURL        string
	APIKey         string
	Voice          string
	MaxTextLen     int
	TimeoutSeconds int
}

// Client posts synthesis requests to an HTTP text-to-speech endpoint and
// returns the raw audio bytes it responds with.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a speech client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Voice:          strings.TrimSpace(cfg.Voice),
			MaxTextLen:     cfg.MaxTextLen,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.MaxTextLen <= 0 {
		client.cfg.MaxTextLen = DefaultMaxTextLen
	}
	return client
}

// Configured reports whether a synthesis endpoint has been set up.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.BaseURL != ""
}

// MaxTextLen returns the request size bound enforced by Synthesize.
func (c *Client) MaxTextLen() int {
	if c == nil || c.cfg.MaxTextLen <= 0 {
		return DefaultMaxTextLen
	}
	return c.cfg.MaxTextLen
}

type synthesisRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Synthesize converts text to audio bytes via the configured endpoint.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "speech", "synthesize", "text required", nil)
	}
	if len([]rune(text)) > c.MaxTextLen() {
		return nil, services.Wrap(services.ErrValidation, "speech", "synthesize", fmt.Sprintf("text exceeds %d characters", c.MaxTextLen()), nil)
	}
	if !c.Configured() {
		return nil, services.Wrap(services.ErrUpstream, "speech", "synthesize", "voice endpoint not configured", nil)
	}

	encoded, err := json.Marshal(synthesisRequest{Text: text, Voice: c.cfg.Voice})
	if err != nil {
		return nil, services.Wrap(services.ErrInternal, "speech", "synthesize", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrInternal, "speech", "synthesize", "new request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "speech", "synthesize", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "speech", "synthesize", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, services.Wrap(services.ErrUpstream, "speech", "synthesize", fmt.Sprintf("http %d: %s", resp.StatusCode, snippet), nil)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrUpstream, "speech", "synthesize", "empty audio response", nil)
	}
	return body, nil
}
