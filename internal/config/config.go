// Package config loads wordiz settings from a config file, .env and
// WORDIZ_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/wordiz/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. WORDIZ_STUDY_BOOK.
const EnvPrefix = "WORDIZ"

// Config holds application configuration.
type Config struct {
	Env      string      `mapstructure:"env" validate:"required,oneof=development production"`
	LogLevel string      `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	DBPath   string      `mapstructure:"db_path"`
	Study    StudyConfig `mapstructure:"study"`
	LLM      LLMConfig   `mapstructure:"llm"`
}

// StudyConfig sets up study sessions.
type StudyConfig struct {
	Book       string `mapstructure:"book" validate:"required"`
	BatchSize  int    `mapstructure:"batch_size" validate:"gt=0,lte=200"`
	MaxWorkers int    `mapstructure:"max_workers" validate:"gt=0,lte=64"`
	// Language is the learner's language, used for sentence translations.
	Language string `mapstructure:"language"`
}

// LLMConfig selects the provider used for word enrichment. An empty
// provider falls back to whichever well-known API key is set.
type LLMConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

var defaults = map[string]any{
	"env":               "development",
	"log_level":         "info",
	"db_path":           "",
	"study.book":        "default",
	"study.batch_size":  20,
	"study.max_workers": 4,
	"study.language":    "",
	"llm.provider":      "",
	"llm.api_key":       "",
	"llm.model":         "",
	"llm.base_url":      "",
	"llm.timeout":       "30s",
}

// Load reads configuration. A .env file in the working directory is loaded
// into the environment first. file names an explicit config file; when
// empty, config.yaml is looked up in the working directory and in
// $XDG_CONFIG_HOME/wordiz. Environment variables take precedence over the
// file.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "wordiz"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LLMEnabled reports whether an LLM provider is configured or discoverable.
func (c *Config) LLMEnabled() bool {
	_, ok := c.llmConfig()
	return ok
}

// Provider returns the provider configuration for the llm package. It fails when
// no provider is configured and no well-known API key is set.
func (c *Config) Provider() (llm.Config, error) {
	cfg, ok := c.llmConfig()
	if !ok {
		return llm.Config{}, errors.New("no LLM provider configured: set llm.provider or an API key")
	}
	if err := cfg.Validate(); err != nil {
		return llm.Config{}, err
	}
	return cfg, nil
}

func (c *Config) llmConfig() (llm.Config, bool) {
	if c.LLM.Provider == "" {
		return llm.DiscoverConfig()
	}

	cfg := llm.DefaultConfig()
	cfg.Provider = c.LLM.Provider
	cfg.APIKey = c.LLM.APIKey
	if cfg.APIKey == "" {
		if env := llm.KeyEnv(cfg.Provider); env != "" {
			cfg.APIKey = os.Getenv(env)
		}
	}
	cfg.Model = c.LLM.Model
	cfg.BaseURL = c.LLM.BaseURL
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	return cfg, true
}
