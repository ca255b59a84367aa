package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Manager owns the tracer and metrics lifecycles.
type Manager struct {
	tracerProvider trace.TracerProvider
	metrics        *Metrics
	config         Config
	mu             sync.RWMutex
}

// NewManager creates a manager for the given configuration.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// Initialize builds the tracer provider and metric instruments.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tp, err := InitTracerProvider(ctx, m.config.Tracing)
	if err != nil {
		return err
	}
	m.tracerProvider = tp

	metrics, err := InitMetrics(m.config.Metrics)
	if err != nil {
		return err
	}
	m.metrics = metrics

	return nil
}

// GetTracer returns a named tracer.
func (m *Manager) GetTracer(name string) trace.Tracer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracerProvider.Tracer(name)
}

// GetMetrics returns the metrics recorder (no-op when disabled).
func (m *Manager) GetMetrics() *Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// Shutdown flushes exporters and releases resources.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.metrics.Shutdown(ctx); err != nil {
		return err
	}
	if spt, ok := m.tracerProvider.(interface{ Shutdown(context.Context) error }); ok {
		return spt.Shutdown(ctx)
	}
	return nil
}
