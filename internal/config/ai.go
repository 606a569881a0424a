package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// AIConfig configures the generative model used as the profanity and
// sentiment classifier. Any OpenAI-compatible chat completions endpoint works;
// the default points at Gemini's compatibility layer.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	APIKeyEnv   string        `mapstructure:"api_key_env"` // Environment variable name for API key
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
}

// providerBaseURLs holds the OpenAI-compatible endpoint of each known provider.
var providerBaseURLs = map[string]string{
	"gemini":     "https://generativelanguage.googleapis.com/v1beta/openai",
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

// Endpoint returns BaseURL when set, otherwise the provider's endpoint. An
// empty provider means gemini.
func (c *AIConfig) Endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	provider := strings.ToLower(c.Provider)
	if provider == "" {
		provider = "gemini"
	}
	return providerBaseURLs[provider]
}

// ResolveEnvVars loads the API key from APIKeyEnv when no key is set directly.
func (c *AIConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
}

// Enabled reports whether the classifier can be called at all. Without a key
// every classification soft-fails to its neutral result.
func (c *AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Validate checks that the model configuration is usable.
func (c *AIConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("ai: model is required")
	}
	if c.Endpoint() == "" {
		return fmt.Errorf("ai: unknown provider %q and no base_url", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ai: timeout must be positive")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("ai: max_tokens must not be negative")
	}
	return nil
}
