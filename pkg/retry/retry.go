// Package retry orchestrates model calls across an ordered list of
// candidates. Each candidate is retried with exponential backoff before the
// orchestrator falls through to the next one.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/unihelp/unihelp/pkg/observability"
)

// Operation performs one call against a single model. The orchestrator
// decides whether to retry it, back off, or move on to the next candidate.
type Operation func(ctx context.Context, model string) (string, error)

// SleepFunc waits for the given duration or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator retries an Operation over model candidates in priority
// order. A model gets maxRetries attempts with doubling delays between
// them; after its final attempt the next candidate is tried immediately.
type Orchestrator struct {
	maxRetries int
	baseDelay  time.Duration
	sleep      SleepFunc
	metrics    *observability.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSleep replaces the backoff sleep. Tests use this to assert delays
// without waiting.
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// WithMetrics wires attempt counters and durations. A nil Metrics is
// accepted and ignored.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an orchestrator giving each model maxRetries attempts with
// backoff delays of baseDelay * 2^(attempt-1).
func New(maxRetries int, baseDelay time.Duration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Do runs op against each model in order until one succeeds. On failure the
// same model is retried after baseDelay * 2^(attempt-1); a model's final
// failure falls through to the next candidate with no extra sleep. When
// every candidate is exhausted Do returns a *ProviderUnavailableError
// wrapping the last provider error. Context cancellation aborts
// immediately, including during backoff sleeps.
func (o *Orchestrator) Do(ctx context.Context, models []string, op Operation) (string, error) {
	if len(models) == 0 {
		return "", &ProviderUnavailableError{Attempts: 0, LastErr: ErrNoModels}
	}

	var lastErr error
	attempts := 0

	for i, model := range models {
		for attempt := 1; attempt <= o.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			attempts++
			start := time.Now()
			answer, err := op(ctx, model)
			elapsed := time.Since(start)

			if err == nil {
				slog.Debug("Model call succeeded",
					"model", model,
					"attempt", attempt,
					"duration_ms", elapsed.Milliseconds())
				o.metrics.RecordProviderAttempt(ctx, model, "success", elapsed.Seconds())
				return answer, nil
			}

			lastErr = err
			slog.Warn("Model call failed",
				"model", model,
				"attempt", attempt,
				"max_retries", o.maxRetries,
				"error", err)
			o.metrics.RecordProviderAttempt(ctx, model, "error", elapsed.Seconds())

			if attempt < o.maxRetries {
				delay := o.baseDelay * time.Duration(1<<(attempt-1))
				if err := o.sleep(ctx, delay); err != nil {
					return "", err
				}
			}
		}

		if i+1 < len(models) {
			slog.Info("Model exhausted, falling back",
				"model", model,
				"next", models[i+1])
		}
	}

	return "", &ProviderUnavailableError{Attempts: attempts, LastErr: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
