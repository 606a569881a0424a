package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/modguard/internal/config"
)

// ErrClassifierDisabled is returned by the model client when no API key is
// configured. Callers treat it like any other soft failure.
var ErrClassifierDisabled = errors.New("classifier disabled: no API key configured")

// GenerateOptions tunes a single model call. Zero values fall back to the
// client's defaults.
type GenerateOptions struct {
	System      string
	MaxTokens   int
	Temperature float32
	JSON        bool
}

// ModelClient is the text-in, text-out boundary to the generative model.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// LLMConfig holds configuration for the chat completions client.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	client      *resty.Client
	model       string
	endpoint    string
	maxTokens   int
	temperature float32
	enabled     bool
}

// NewLLMClient creates a new chat completions client.
// Parameters:
//   - cfg: model, credentials and endpoint settings.
//
// Returns:
//   - *LLMClient: client; disabled when cfg carries no API key.
func NewLLMClient(cfg *LLMConfig) *LLMClient {
	if cfg == nil || cfg.APIKey == "" {
		return &LLMClient{enabled: false}
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}

	return &LLMClient{
		client:      client,
		model:       cfg.Model,
		endpoint:    baseURL + "/chat/completions",
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		enabled:     true,
	}
}

// NewLLMClientFromConfig builds a client from the application AI settings.
func NewLLMClientFromConfig(cfg *config.AIConfig) *LLMClient {
	return NewLLMClient(&LLMConfig{
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.Endpoint(),
		Timeout:     cfg.Timeout,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}

// IsEnabled returns whether the client has credentials.
func (c *LLMClient) IsEnabled() bool {
	return c.enabled
}

// GetModel returns the model name being used.
func (c *LLMClient) GetModel() string {
	return c.model
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends prompt as the user message and returns the first choice.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - prompt: user message content.
//   - opts: optional system prompt and sampling overrides.
//
// Returns:
//   - string: raw model output.
//   - error: ErrClassifierDisabled, a transport error, or a non-2xx status.
func (c *LLMClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !c.enabled {
		return "", ErrClassifierDisabled
	}

	messages := make([]chatMessage, 0, 2)
	if opts.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = opts.Temperature
	}
	if opts.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call model API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("model API returned error: HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("model API returned error: HTTP %d: %s", httpResp.StatusCode(), truncate(string(httpResp.Body()), 200))
	}

	if resp.Error != nil {
		return "", fmt.Errorf("model API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
