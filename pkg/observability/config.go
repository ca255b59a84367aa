// Package observability wires OpenTelemetry tracing and Prometheus-backed
// metrics for the UniHelp service. Both are optional; when disabled the
// returned providers are no-ops and callers never need to branch.
package observability

import "fmt"

// Config configures the observability system.
type Config struct {
	// Tracing configures OpenTelemetry distributed tracing.
	Tracing TracingConfig `yaml:"tracing,omitempty"`

	// Metrics configures Prometheus metrics collection.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on distributed tracing.
	Enabled bool `yaml:"enabled,omitempty"`

	// Exporter is "otlp" (gRPC collector) or "stdout" (debugging).
	Exporter string `yaml:"exporter,omitempty"`

	// Endpoint is the OTLP collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint,omitempty"`

	// SamplingRate controls what fraction of traces are sampled (0.0-1.0).
	SamplingRate float64 `yaml:"sampling_rate,omitempty"`

	// ServiceName identifies this service in traces.
	ServiceName string `yaml:"service_name,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns on metrics collection.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Namespace prefixes all metric names.
	Namespace string `yaml:"namespace,omitempty"`
}

// IsEnabled returns true if metrics collection is enabled.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "otlp"
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4317"
	}
	if c.Tracing.SamplingRate == 0 {
		c.Tracing.SamplingRate = 1.0
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "unihelp"
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "unihelp"
	}
}

// Validate checks the observability configuration.
func (c *Config) Validate() error {
	switch c.Tracing.Exporter {
	case "", "otlp", "stdout":
	default:
		return fmt.Errorf("invalid tracing exporter %q (valid: otlp, stdout)", c.Tracing.Exporter)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing sampling_rate must be between 0.0 and 1.0")
	}
	return nil
}
