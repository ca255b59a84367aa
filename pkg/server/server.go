// Package server exposes the assistant pipeline over HTTP.
//
// Routing is chi, all responses are JSON, and the error mapping follows
// the pipeline's taxonomy: validation failures are 400, rate limiting is
// 429 with a localized notice, and provider exhaustion stays a 200 with
// the fallback flag set. Every response carries the session id in both
// the body and the X-Session-ID header.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unihelp/unihelp"
	"github.com/unihelp/unihelp/pkg/assistant"
	"github.com/unihelp/unihelp/pkg/config"
	"github.com/unihelp/unihelp/pkg/observability"
)

// HeaderSessionID carries the session id outside the JSON body.
const HeaderSessionID = "X-Session-ID"

// HTTPServer is the UniHelp HTTP server.
type HTTPServer struct {
	serverCfg *config.ServerConfig
	assistant *assistant.Assistant
	metrics   *observability.Metrics
	version   string
	server    *http.Server
}

// HTTPServerOption configures the HTTP server.
type HTTPServerOption func(*HTTPServer)

// WithMetrics sets the recorder used by the HTTP metrics middleware.
func WithMetrics(m *observability.Metrics) HTTPServerOption {
	return func(s *HTTPServer) {
		s.metrics = m
	}
}

// NewHTTPServer creates a new HTTP server from config.
func NewHTTPServer(cfg *config.Config, asst *assistant.Assistant, opts ...HTTPServerOption) *HTTPServer {
	serverCfg := &cfg.Server
	if serverCfg.Host == "" || serverCfg.Port == 0 {
		serverCfg.SetDefaults()
	}

	s := &HTTPServer{
		serverCfg: serverCfg,
		assistant: asst,
		version:   unihelp.Version,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start runs the server until ctx is cancelled or the listener fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.serverCfg.Address(),
		Handler:      s.setupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("HTTP server starting", "address", s.serverCfg.Address())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	slog.Info("HTTP server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}

	return nil
}

// Address returns the HTTP server address.
func (s *HTTPServer) Address() string {
	return s.serverCfg.Address()
}

// setupRoutes configures the router and the middleware chain.
// Observability wraps everything so all requests are traced and measured;
// the recoverer sits innermost so panics surface as recorded 500s.
func (s *HTTPServer) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.observabilityMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", observability.MetricsHandler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/email", s.handleEmail)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/sessions/{id}/history", s.handleSessionHistory)
		r.Get("/history", s.handleChatHistory)
		r.Delete("/history", s.handleClearChatHistory)
		r.Get("/stats", s.handleStats)
	})

	return r
}
