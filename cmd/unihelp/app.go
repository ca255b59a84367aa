package main

import (
	"fmt"
	"log/slog"

	"github.com/unihelp/unihelp/pkg/analytics"
	"github.com/unihelp/unihelp/pkg/assistant"
	"github.com/unihelp/unihelp/pkg/cache"
	"github.com/unihelp/unihelp/pkg/config"
	"github.com/unihelp/unihelp/pkg/corpus"
	"github.com/unihelp/unihelp/pkg/history"
	"github.com/unihelp/unihelp/pkg/llms"
	"github.com/unihelp/unihelp/pkg/observability"
	"github.com/unihelp/unihelp/pkg/ratelimit"
	"github.com/unihelp/unihelp/pkg/retry"
	"github.com/unihelp/unihelp/pkg/session"
)

// loadConfig reads the config file at path, or falls back to defaults when
// no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		slog.Info("No config file given, using defaults")
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Info("Loaded configuration", "path", path)
	return cfg, nil
}

// app wires the collaborator graph behind the assistant. Fields beyond the
// assistant are the ones a command still needs by name: the corpus provider
// for watching and the closable collaborators for shutdown.
type app struct {
	assistant *assistant.Assistant
	corpus    *corpus.Provider
	provider  llms.Provider
	recorder  *analytics.Recorder
}

// newApp builds the assistant and its collaborators from configuration.
// A missing corpus file is not fatal: the service starts, /health reports
// corpus_loaded false, and the watcher picks the file up when it appears.
func newApp(cfg *config.Config, metrics *observability.Metrics) (*app, error) {
	provider, err := llms.New(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	docs, err := corpus.New(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus provider: %w", err)
	}
	if err := docs.Load(); err != nil {
		slog.Warn("Corpus not loaded", "error", err)
	}

	sink, err := analytics.NewSink(cfg.Analytics)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics sink: %w", err)
	}
	recorder := analytics.NewRecorder(sink)

	chats, err := history.NewChatStore(cfg.History.ChatPath, cfg.History.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat history: %w", err)
	}
	emails, err := history.NewEmailStore(cfg.History.EmailPath, cfg.History.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to open email history: %w", err)
	}

	tokens, err := corpus.NewTokenCounter(cfg.LLM.Models[0])
	if err != nil {
		slog.Warn("Token counting disabled", "error", err)
	}

	var answers *cache.Cache
	if cfg.Cache.IsEnabled() {
		answers = cache.New()
	}

	asst, err := assistant.New(cfg, assistant.Dependencies{
		Provider:     provider,
		Orchestrator: retry.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, retry.WithMetrics(metrics)),
		Cache:        answers,
		Limiter:      ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Sessions:     session.New(cfg.Session.Timeout, cfg.Session.MaxHistory),
		Corpus:       docs,
		Recorder:     recorder,
		Chats:        chats,
		Emails:       emails,
		Metrics:      metrics,
		Tokens:       tokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}

	return &app{
		assistant: asst,
		corpus:    docs,
		provider:  provider,
		recorder:  recorder,
	}, nil
}

// Close releases the app's resources. Errors are logged rather than
// returned so shutdown keeps going past a failing collaborator.
func (a *app) Close() {
	if err := a.corpus.Close(); err != nil {
		slog.Warn("Corpus close error", "error", err)
	}
	if err := a.recorder.Close(); err != nil {
		slog.Warn("Analytics close error", "error", err)
	}
	if err := a.provider.Close(); err != nil {
		slog.Warn("Provider close error", "error", err)
	}
}
