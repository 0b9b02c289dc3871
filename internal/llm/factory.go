package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewProvider builds the configured provider and wraps it with Wrap.
func NewProvider(ctx context.Context, cfg Config, recorder RequestRecorder, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderAnthropic:
		base = NewAnthropicProvider(cfg.APIKey, cfg.ResolvedModel())
	case ProviderOpenAI:
		base = NewOpenAIProvider(ProviderOpenAI, cfg.APIKey, cfg.ResolvedModel(), cfg.BaseURL)
	case ProviderOpenRouter:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		base = NewOpenAIProvider(ProviderOpenRouter, cfg.APIKey, cfg.ResolvedModel(), baseURL)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.ResolvedModel())
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return Wrap(base, cfg, recorder, logger), nil
}

// Wrap stacks the decorators every provider runs behind:
// caller → retry → logging → checks → base.
func Wrap(base Provider, cfg Config, recorder RequestRecorder, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("llm")
	checked := &checkedProvider{Provider: base}
	logged := WithLogging(checked, recorder, logger)
	return WithRetry(logged, cfg, logger)
}
