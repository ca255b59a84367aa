package llms

import (
	"fmt"

	"github.com/unihelp/unihelp/pkg/config"
)

// New creates the provider selected by the configuration.
func New(cfg *config.LLMConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config is required")
	}

	switch cfg.Provider {
	case config.LLMProviderGroq, config.LLMProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case config.LLMProviderOllama:
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
