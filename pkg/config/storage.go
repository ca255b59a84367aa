package config

import "fmt"

// CorpusConfig configures the document corpus the assistant answers from.
type CorpusConfig struct {
	// Path to the plain-text corpus file.
	Path string `yaml:"path,omitempty"`

	// MaxContextChars bounds the extracted context for question answering.
	MaxContextChars int `yaml:"max_context_chars,omitempty"`

	// EmailContextChars bounds the extracted context for email generation.
	EmailContextChars int `yaml:"email_context_chars,omitempty"`

	// Watch enables hot reloading when the corpus file changes on disk.
	Watch *bool `yaml:"watch,omitempty"`
}

// IsWatchEnabled returns true if corpus hot reloading is enabled.
func (c *CorpusConfig) IsWatchEnabled() bool {
	return BoolValue(c.Watch, true)
}

// SetDefaults applies default values.
func (c *CorpusConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "documents.txt"
	}
	if c.MaxContextChars == 0 {
		c.MaxContextChars = 4000
	}
	if c.EmailContextChars == 0 {
		c.EmailContextChars = 3000
	}
	if c.Watch == nil {
		c.Watch = BoolPtr(true)
	}
}

// Validate checks the corpus configuration.
func (c *CorpusConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("corpus.path is required")
	}
	if c.MaxContextChars < 1 {
		return fmt.Errorf("corpus.max_context_chars must be positive")
	}
	if c.EmailContextChars < 1 {
		return fmt.Errorf("corpus.email_context_chars must be positive")
	}
	return nil
}

// HistoryConfig configures the durable chat and email history stores.
type HistoryConfig struct {
	// ChatPath is the JSON file holding answered questions.
	ChatPath string `yaml:"chat_path,omitempty"`

	// EmailPath is the JSON file holding generated emails.
	EmailPath string `yaml:"email_path,omitempty"`

	// MaxItems caps each store; the oldest entries are dropped first.
	MaxItems int `yaml:"max_items,omitempty"`
}

// SetDefaults applies default values.
func (c *HistoryConfig) SetDefaults() {
	if c.ChatPath == "" {
		c.ChatPath = ".unihelp_chat_history.json"
	}
	if c.EmailPath == "" {
		c.EmailPath = ".unihelp_email_history.json"
	}
	if c.MaxItems == 0 {
		c.MaxItems = 100
	}
}

// Validate checks the history configuration.
func (c *HistoryConfig) Validate() error {
	if c.MaxItems < 1 {
		return fmt.Errorf("history.max_items must be at least 1")
	}
	return nil
}

// AnalyticsBackend identifies an analytics sink type.
type AnalyticsBackend string

const (
	// AnalyticsBackendFile appends events to a capped JSON file.
	AnalyticsBackendFile AnalyticsBackend = "file"

	// AnalyticsBackendSQL appends events to a SQL database.
	AnalyticsBackendSQL AnalyticsBackend = "sql"
)

// AnalyticsConfig configures the analytics event sink.
type AnalyticsConfig struct {
	// Backend selects the sink: "file" (default) or "sql".
	Backend AnalyticsBackend `yaml:"backend,omitempty"`

	// Path is the JSON file used by the file backend.
	Path string `yaml:"path,omitempty"`

	// MaxEvents caps the file backend; the oldest events are dropped first.
	MaxEvents int `yaml:"max_events,omitempty"`

	// Database configures the sql backend.
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// SetDefaults applies default values.
func (c *AnalyticsConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = AnalyticsBackendFile
	}
	if c.Path == "" {
		c.Path = ".unihelp_analytics.json"
	}
	if c.MaxEvents == 0 {
		c.MaxEvents = 1000
	}
	if c.Database != nil {
		c.Database.SetDefaults()
	}
}

// Validate checks the analytics configuration.
func (c *AnalyticsConfig) Validate() error {
	switch c.Backend {
	case AnalyticsBackendFile:
		if c.Path == "" {
			return fmt.Errorf("analytics.path is required for the file backend")
		}
		if c.MaxEvents < 1 {
			return fmt.Errorf("analytics.max_events must be at least 1")
		}
	case AnalyticsBackendSQL:
		if c.Database == nil {
			return fmt.Errorf("analytics.database is required for the sql backend")
		}
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("analytics.database: %w", err)
		}
	default:
		return fmt.Errorf("invalid analytics backend %q (valid: file, sql)", c.Backend)
	}
	return nil
}

// DatabaseConfig identifies a SQL database connection.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres, mysql.
	Driver string `yaml:"driver,omitempty"`

	// DSN is the driver-specific connection string.
	DSN string `yaml:"dsn,omitempty"`
}

// SetDefaults applies default values.
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
}

// Validate checks the database configuration.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("invalid driver %q (valid: sqlite, postgres, mysql)", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}
