package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Completer is the interface consumed by the session layer. It yields one
// reply for an ordered message history.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// Config holds chat client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Option is a functional option for configuring the chat client.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// Client calls the OpenAI chat-completions API. Requests are one-shot: a
// failed call surfaces to the caller, which treats it as a lost turn.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a chat-completions client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Config{
		BaseURL: defaultBaseURL,
		Timeout: 60 * time.Second,
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger.With("component", "chat"),
	}, nil
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends the message history and returns the single reply text.
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	start := time.Now()

	body, err := json.Marshal(completionRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("chat: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.parseError(resp)
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("chat: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyReply
	}

	reply := strings.TrimSpace(cr.Choices[0].Message.Content)

	c.logger.Debug("completion",
		"model", model,
		"messages", len(messages),
		"reply_chars", len(reply),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return reply, nil
}

// parseError reads and parses an error response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := ""
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Code:       code,
	}
}

// Verify Client implements Completer at compile time.
var _ Completer = (*Client)(nil)
