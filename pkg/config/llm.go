package config

import (
	"fmt"
	"os"
	"time"
)

// LLMProvider identifies the LLM provider type.
type LLMProvider string

const (
	LLMProviderGroq   LLMProvider = "groq"
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderOllama LLMProvider = "ollama"
)

// LLMConfig configures the model provider the assistant calls.
type LLMConfig struct {
	// Provider type (groq, openai, ollama). Groq and OpenAI share the
	// same chat-completions wire format.
	Provider LLMProvider `yaml:"provider,omitempty"`

	// Models are the candidate model names in fallback priority order.
	// The first entry is tried first; later entries take over only after
	// the retry budget for the previous one is exhausted.
	Models []string `yaml:"models,omitempty"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the default API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// QATemperature is the sampling temperature for question answering.
	QATemperature *float64 `yaml:"qa_temperature,omitempty"`

	// EmailTemperature is the sampling temperature for email generation.
	EmailTemperature *float64 `yaml:"email_temperature,omitempty"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Timeout bounds a single provider request.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// SetDefaults applies default values.
func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = LLMProviderGroq
	}

	if len(c.Models) == 0 {
		switch c.Provider {
		case LLMProviderGroq:
			c.Models = []string{"llama-3.1-8b-instant", "llama-3.3-70b-versatile"}
		case LLMProviderOpenAI:
			c.Models = []string{"gpt-4o-mini", "gpt-4o"}
		case LLMProviderOllama:
			c.Models = []string{"llama3.2"}
		}
	}

	if c.APIKey == "" {
		c.APIKey = getAPIKeyFromEnv(c.Provider)
	}

	if c.BaseURL == "" {
		switch c.Provider {
		case LLMProviderGroq:
			c.BaseURL = "https://api.groq.com/openai/v1"
		case LLMProviderOpenAI:
			c.BaseURL = "https://api.openai.com/v1"
		case LLMProviderOllama:
			c.BaseURL = "http://localhost:11434"
		}
	}

	if c.QATemperature == nil {
		c.QATemperature = Float64Ptr(0.2)
	}
	if c.EmailTemperature == nil {
		c.EmailTemperature = Float64Ptr(0.3)
	}

	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the LLM configuration.
func (c *LLMConfig) Validate() error {
	validProviders := map[LLMProvider]bool{
		LLMProviderGroq:   true,
		LLMProviderOpenAI: true,
		LLMProviderOllama: true,
	}

	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q (valid: groq, openai, ollama)", c.Provider)
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("llm.models must list at least one model")
	}
	for i, m := range c.Models {
		if m == "" {
			return fmt.Errorf("llm.models[%d] is empty", i)
		}
	}

	// Ollama doesn't require an API key
	if c.Provider != LLMProviderOllama && c.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %q (set %s)", c.Provider, apiKeyEnvVar(c.Provider))
	}

	for name, temp := range map[string]*float64{
		"qa_temperature":    c.QATemperature,
		"email_temperature": c.EmailTemperature,
	} {
		if temp != nil && (*temp < 0 || *temp > 2) {
			return fmt.Errorf("%s must be between 0 and 2", name)
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}

	return nil
}

// RetryConfig configures the retry orchestrator wrapping provider calls.
type RetryConfig struct {
	// MaxRetries is the attempt budget per candidate model.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// BaseDelay is the first backoff delay; it doubles on every
	// subsequent failed attempt for the same model.
	BaseDelay time.Duration `yaml:"base_delay,omitempty"`
}

// SetDefaults applies default values.
func (c *RetryConfig) SetDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = 2 * time.Second
	}
}

// Validate checks the retry configuration.
func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("retry.max_retries must be at least 1")
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("retry.base_delay must not be negative")
	}
	return nil
}

func getAPIKeyFromEnv(provider LLMProvider) string {
	if env := apiKeyEnvVar(provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}

func apiKeyEnvVar(provider LLMProvider) string {
	switch provider {
	case LLMProviderGroq:
		return "GROQ_API_KEY"
	case LLMProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
