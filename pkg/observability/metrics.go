package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the service instruments. A zero Metrics (or nil pointer)
// is a valid no-op recorder, which is what disabled metrics produce.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestsTotal    metric.Int64Counter
	cacheEvents      metric.Int64Counter
	rateLimited      metric.Int64Counter
	providerAttempts metric.Int64Counter
	providerDuration metric.Float64Histogram
	promptTokens     metric.Int64Histogram
	sessionsActive   metric.Int64UpDownCounter
	httpRequests     metric.Int64Counter
	httpDuration     metric.Float64Histogram

	provider *sdkmetric.MeterProvider
}

// InitMetrics creates the OTel meter provider backed by the Prometheus
// exporter and registers the UniHelp instruments.
func InitMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.IsEnabled() {
		return &Metrics{}, nil
	}

	promExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)
	meter := meterProvider.Meter(cfg.Namespace)

	ns := cfg.Namespace

	requestDuration, err := meter.Float64Histogram(
		ns+"_request_duration_seconds",
		metric.WithDescription("End-to-end pipeline request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	requestsTotal, err := meter.Int64Counter(
		ns+"_requests_total",
		metric.WithDescription("Total pipeline requests by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create requests counter: %w", err)
	}

	cacheEvents, err := meter.Int64Counter(
		ns+"_cache_events_total",
		metric.WithDescription("Answer cache lookups by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache events counter: %w", err)
	}

	rateLimited, err := meter.Int64Counter(
		ns+"_rate_limited_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limited counter: %w", err)
	}

	providerAttempts, err := meter.Int64Counter(
		ns+"_provider_attempts_total",
		metric.WithDescription("Model provider attempts by model and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider attempts counter: %w", err)
	}

	providerDuration, err := meter.Float64Histogram(
		ns+"_provider_request_duration_seconds",
		metric.WithDescription("Model provider request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider duration histogram: %w", err)
	}

	promptTokens, err := meter.Int64Histogram(
		ns+"_prompt_tokens",
		metric.WithDescription("Estimated token count of assembled prompts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt tokens histogram: %w", err)
	}

	sessionsActive, err := meter.Int64UpDownCounter(
		ns+"_sessions_active",
		metric.WithDescription("Sessions currently tracked by the session manager"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions gauge: %w", err)
	}

	httpRequests, err := meter.Int64Counter(
		ns+"_http_requests_total",
		metric.WithDescription("HTTP requests by method, route and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	httpDuration, err := meter.Float64Histogram(
		ns+"_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestsTotal:    requestsTotal,
		cacheEvents:      cacheEvents,
		rateLimited:      rateLimited,
		providerAttempts: providerAttempts,
		providerDuration: providerDuration,
		promptTokens:     promptTokens,
		sessionsActive:   sessionsActive,
		httpRequests:     httpRequests,
		httpDuration:     httpDuration,
		provider:         meterProvider,
	}, nil
}

// MetricsHandler returns the Prometheus exposition handler for /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one pipeline request with its duration.
func (m *Metrics) RecordRequest(ctx context.Context, operation, outcome string, seconds float64) {
	if m == nil || m.requestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.requestsTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, seconds, attrs)
}

// RecordCacheEvent records a cache lookup result ("hit" or "miss").
func (m *Metrics) RecordCacheEvent(ctx context.Context, result string) {
	if m == nil || m.cacheEvents == nil {
		return
	}
	m.cacheEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordRateLimited records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited(ctx context.Context) {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.Add(ctx, 1)
}

// RecordProviderAttempt records one provider attempt and its duration.
func (m *Metrics) RecordProviderAttempt(ctx context.Context, model, outcome string, seconds float64) {
	if m == nil || m.providerAttempts == nil {
		return
	}
	m.providerAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
	m.providerDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("model", model),
	))
}

// RecordPromptTokens records the estimated token count of a prompt.
func (m *Metrics) RecordPromptTokens(ctx context.Context, operation string, tokens int) {
	if m == nil || m.promptTokens == nil {
		return
	}
	m.promptTokens.Record(ctx, int64(tokens), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// AddActiveSessions adjusts the active session gauge.
func (m *Metrics) AddActiveSessions(ctx context.Context, delta int64) {
	if m == nil || m.sessionsActive == nil {
		return
	}
	m.sessionsActive.Add(ctx, delta)
}

// RecordHTTPRequest records one served HTTP request. The route is the
// matched router pattern, not the raw URL path.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, seconds float64) {
	if m == nil || m.httpRequests == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
