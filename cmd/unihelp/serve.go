package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unihelp/unihelp/pkg/config"
	"github.com/unihelp/unihelp/pkg/observability"
	"github.com/unihelp/unihelp/pkg/server"
)

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Host string `help:"Listen host (overrides config)."`
	Port int    `help:"Port to listen on (overrides config)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	// Override listen address if explicitly specified
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	obs := observability.NewManager(cfg.Observability)
	if err := obs.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Observability shutdown error", "error", err)
		}
	}()

	app, err := newApp(cfg, obs.GetMetrics())
	if err != nil {
		return err
	}
	defer app.Close()

	srv := server.NewHTTPServer(cfg, app.assistant, server.WithMetrics(obs.GetMetrics()))

	printServeInfo(cfg, srv.Address(), app.corpus.Loaded())

	g, ctx := errgroup.WithContext(ctx)

	// Reload the corpus whenever the file changes. The watcher closes its
	// channel when the context ends, which unwinds the consumer.
	if cfg.Corpus.IsWatchEnabled() {
		changes, err := app.corpus.Watch(ctx)
		if err != nil {
			slog.Warn("Corpus watching unavailable", "error", err)
		} else {
			g.Go(func() error {
				for range changes {
					if err := app.corpus.Load(); err != nil {
						slog.Warn("Corpus reload failed", "error", err)
					}
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		return srv.Start(ctx)
	})

	return g.Wait()
}

// printServeInfo prints startup information for the operator's terminal.
// It goes through fmt rather than the log stream, like the banner.
func printServeInfo(cfg *config.Config, addr string, corpusLoaded bool) {
	fmt.Printf("\n%sUniHelp server ready!%s\n", colorBlue, colorReset)
	fmt.Printf("   Ask:        POST http://%s/v1/ask\n", addr)
	fmt.Printf("   Email:      POST http://%s/v1/email\n", addr)
	fmt.Printf("   Health:     http://%s/health\n", addr)
	if cfg.Observability.Metrics.IsEnabled() {
		fmt.Printf("   Metrics:    http://%s/metrics\n", addr)
	}
	if cfg.Observability.Tracing.Enabled {
		fmt.Printf("   Tracing:    %s (%s)\n", cfg.Observability.Tracing.Exporter, cfg.Observability.Tracing.Endpoint)
	}

	fmt.Printf("   Provider:   %s (%s)\n", cfg.LLM.Provider, strings.Join(cfg.LLM.Models, " -> "))

	corpusStatus := "loaded"
	if !corpusLoaded {
		corpusStatus = "missing, waiting for file"
	}
	fmt.Printf("   Corpus:     %s (%s)\n", cfg.Corpus.Path, corpusStatus)
	fmt.Printf("   Analytics:  %s\n", analyticsTarget(cfg.Analytics))

	fmt.Println("\nPress Ctrl+C to stop")
}

func analyticsTarget(cfg config.AnalyticsConfig) string {
	if cfg.Backend == config.AnalyticsBackendSQL {
		return fmt.Sprintf("sql (%s)", cfg.Database.Driver)
	}
	return fmt.Sprintf("file (%s)", cfg.Path)
}
