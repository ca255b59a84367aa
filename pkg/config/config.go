// Package config defines the UniHelp configuration surface: a YAML file
// with environment-variable expansion, per-section defaults, and validation.
package config

import (
	"fmt"

	"github.com/unihelp/unihelp/pkg/observability"
)

// Config is the root configuration for the UniHelp service.
type Config struct {
	Server        ServerConfig         `yaml:"server,omitempty"`
	LLM           LLMConfig            `yaml:"llm,omitempty"`
	Retry         RetryConfig          `yaml:"retry,omitempty"`
	Cache         CacheConfig          `yaml:"cache,omitempty"`
	RateLimit     RateLimitConfig      `yaml:"rate_limit,omitempty"`
	Session       SessionConfig        `yaml:"session,omitempty"`
	Validation    ValidationConfig     `yaml:"validation,omitempty"`
	Corpus        CorpusConfig         `yaml:"corpus,omitempty"`
	History       HistoryConfig        `yaml:"history,omitempty"`
	Analytics     AnalyticsConfig      `yaml:"analytics,omitempty"`
	Observability observability.Config `yaml:"observability,omitempty"`
	Logger        LoggerConfig         `yaml:"logger,omitempty"`
}

// SetDefaults applies defaults across all sections.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.LLM.SetDefaults()
	c.Retry.SetDefaults()
	c.Cache.SetDefaults()
	c.RateLimit.SetDefaults()
	c.Session.SetDefaults()
	c.Validation.SetDefaults()
	c.Corpus.SetDefaults()
	c.History.SetDefaults()
	c.Analytics.SetDefaults()
	c.Observability.SetDefaults()
	c.Logger.SetDefaults()
}

// Validate checks all sections and returns the first failure.
func (c *Config) Validate() error {
	validators := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"llm", c.LLM.Validate},
		{"retry", c.Retry.Validate},
		{"cache", c.Cache.Validate},
		{"rate_limit", c.RateLimit.Validate},
		{"session", c.Session.Validate},
		{"validation", c.Validation.Validate},
		{"corpus", c.Corpus.Validate},
		{"history", c.History.Validate},
		{"analytics", c.Analytics.Validate},
		{"observability", c.Observability.Validate},
		{"logger", c.Logger.Validate},
	}

	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

// Default returns a configuration with every section at its defaults.
// It is what `unihelp` runs with when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
