package llm

import (
	"fmt"
	"os"
	"time"
)

// Supported providers.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// openRouterBaseURL is used for the openrouter provider when no base URL is
// configured.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

// defaultModels are small, cheap models that handle enrichment well.
var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku-4-5",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-2.0-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
}

// keyEnvs lists the conventional API key variable of each provider in
// discovery order.
var keyEnvs = []struct{ provider, env string }{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// Config selects and configures one provider.
type Config struct {
	Provider string
	APIKey   string

	// Model overrides the provider's default model.
	Model string

	// BaseURL points the openai and openrouter providers at a compatible API.
	BaseURL string

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration

	Retry RetryConfig
}

// RetryConfig controls backoff between attempts.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the anthropic provider with default retry and
// timeout settings and no key.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// KeyEnv returns the conventional API key variable of provider, or "" for
// an unknown provider.
func KeyEnv(provider string) string {
	for _, k := range keyEnvs {
		if k.provider == provider {
			return k.env
		}
	}
	return ""
}

// DiscoverConfig returns a default config for the first provider whose API
// key variable is set, checking Gemini, OpenAI, Anthropic and OpenRouter in
// that order.
func DiscoverConfig() (Config, bool) {
	for _, k := range keyEnvs {
		if key := os.Getenv(k.env); key != "" {
			cfg := DefaultConfig()
			cfg.Provider = k.provider
			cfg.APIKey = key
			return cfg, true
		}
	}
	return Config{}, false
}

// ResolvedModel returns Model or the provider default.
func (c Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Validate checks the provider name and that a key is set.
func (c Config) Validate() error {
	env := KeyEnv(c.Provider)
	if env == "" {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("llm.api_key (WORDIZ_LLM_API_KEY or %s) is required for the %s provider", env, c.Provider)
	}
	return nil
}
