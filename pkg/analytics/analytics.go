// Package analytics records append-only usage events. Recording is fire and
// forget: sink failures are logged and swallowed so a broken analytics
// backend can never fail a user request.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/unihelp/unihelp/pkg/config"
)

// Event names recorded by the request pipeline.
const (
	EventSessionCreated      = "session_created"
	EventQuestionAnswered    = "question_answered"
	EventCacheHit            = "cache_hit"
	EventQuickReply          = "quick_reply"
	EventRateLimited         = "rate_limited"
	EventProviderUnavailable = "provider_unavailable"
	EventEmailGenerated      = "email_generated"
	EventFeedback            = "feedback"
)

// Event is one recorded usage event.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// Sink persists events.
type Sink interface {
	// Append stores one event.
	Append(ctx context.Context, e Event) error

	// Summary returns per-event-name counts.
	Summary(ctx context.Context) (map[string]int, error)

	// Close releases the sink's resources.
	Close() error
}

// NewSink builds the configured sink: a capped JSON file or a SQL database.
func NewSink(cfg config.AnalyticsConfig) (Sink, error) {
	if cfg.Backend == config.AnalyticsBackendSQL {
		return NewSQLSinkFromConfig(cfg.Database)
	}
	return NewFileSink(cfg.Path, cfg.MaxEvents)
}

// Recorder dispatches events to a sink. A nil Recorder or a nil sink
// records nothing.
type Recorder struct {
	sink Sink
	now  func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a recorder writing to sink.
func NewRecorder(sink Sink, opts ...Option) *Recorder {
	r := &Recorder{
		sink: sink,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one event. Failures are logged as persistence errors and
// swallowed; the caller's operation never aborts because of recording.
func (r *Recorder) Record(ctx context.Context, name, sessionID string, payload map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	e := Event{
		ID:        uuid.NewString(),
		Timestamp: r.now(),
		Event:     name,
		Data:      payload,
		SessionID: sessionID,
	}
	if err := r.sink.Append(ctx, e); err != nil {
		slog.Warn("Analytics event dropped",
			"event", name,
			"session_id", sessionID,
			"error", &PersistenceError{Op: "append", Err: err})
	}
}

// Summary returns per-event-name counts for the stats endpoint.
func (r *Recorder) Summary(ctx context.Context) (map[string]int, error) {
	if r == nil || r.sink == nil {
		return map[string]int{}, nil
	}
	summary, err := r.sink.Summary(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "summary", Err: err}
	}
	return summary, nil
}

// Close releases the underlying sink.
func (r *Recorder) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
