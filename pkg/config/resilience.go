package config

import (
	"fmt"
	"time"
)

// CacheConfig configures the answer cache.
type CacheConfig struct {
	// Enabled controls whether answers are cached at all.
	Enabled *bool `yaml:"enabled,omitempty"`

	// TTL is how long a cached answer stays valid.
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// IsEnabled returns true if caching is enabled.
func (c *CacheConfig) IsEnabled() bool {
	return BoolValue(c.Enabled, true)
}

// SetDefaults applies default values.
func (c *CacheConfig) SetDefaults() {
	if c.Enabled == nil {
		c.Enabled = BoolPtr(true)
	}
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
}

// Validate checks the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// RateLimitConfig configures the per-session sliding-window limiter.
type RateLimitConfig struct {
	// Requests is the maximum number of admitted requests per window.
	Requests int `yaml:"requests,omitempty"`

	// Window is the trailing time window the limit applies to.
	Window time.Duration `yaml:"window,omitempty"`
}

// SetDefaults applies default values.
func (c *RateLimitConfig) SetDefaults() {
	if c.Requests == 0 {
		c.Requests = 10
	}
	if c.Window == 0 {
		c.Window = 60 * time.Second
	}
}

// Validate checks the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	if c.Requests < 1 {
		return fmt.Errorf("rate_limit.requests must be at least 1")
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	return nil
}

// SessionConfig configures session lifecycle and in-session history.
type SessionConfig struct {
	// Timeout is the idle duration after which a session is reset.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxHistory caps the number of retained exchanges per session.
	MaxHistory int `yaml:"max_history,omitempty"`
}

// SetDefaults applies default values.
func (c *SessionConfig) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Minute
	}
	if c.MaxHistory == 0 {
		c.MaxHistory = 100
	}
}

// Validate checks the session configuration.
func (c *SessionConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("session.timeout must be positive")
	}
	if c.MaxHistory < 1 {
		return fmt.Errorf("session.max_history must be at least 1")
	}
	return nil
}

// ValidationConfig bounds accepted question input.
type ValidationConfig struct {
	// MaxQuestionLength is the maximum accepted question length in runes.
	MaxQuestionLength int `yaml:"max_question_length,omitempty"`

	// MinQuestionLength is the minimum accepted question length in runes.
	MinQuestionLength int `yaml:"min_question_length,omitempty"`
}

// SetDefaults applies default values.
func (c *ValidationConfig) SetDefaults() {
	if c.MaxQuestionLength == 0 {
		c.MaxQuestionLength = 500
	}
	if c.MinQuestionLength == 0 {
		c.MinQuestionLength = 3
	}
}

// Validate checks the validation bounds.
func (c *ValidationConfig) Validate() error {
	if c.MinQuestionLength < 1 {
		return fmt.Errorf("validation.min_question_length must be at least 1")
	}
	if c.MaxQuestionLength < c.MinQuestionLength {
		return fmt.Errorf("validation.max_question_length must be >= min_question_length")
	}
	return nil
}
