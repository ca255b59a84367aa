// Example quickstart demonstrates driving the UniHelp pipeline as a
// library, without the HTTP server or the CLI.
//
// Prerequisites:
//   - Set GROQ_API_KEY environment variable
//   - A documents.txt corpus file in the working directory
//
// Run:
//
//	go run ./pkg/examples/quickstart
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/unihelp/unihelp/pkg/assistant"
	"github.com/unihelp/unihelp/pkg/cache"
	"github.com/unihelp/unihelp/pkg/config"
	"github.com/unihelp/unihelp/pkg/corpus"
	"github.com/unihelp/unihelp/pkg/llms"
	"github.com/unihelp/unihelp/pkg/ratelimit"
	"github.com/unihelp/unihelp/pkg/retry"
	"github.com/unihelp/unihelp/pkg/session"
)

func main() {
	// Load .env files
	_ = config.LoadEnvFiles()

	if os.Getenv("GROQ_API_KEY") == "" {
		log.Fatal("GROQ_API_KEY environment variable is required")
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	provider, err := llms.New(&cfg.LLM)
	if err != nil {
		log.Fatal(err)
	}
	defer provider.Close()

	docs, err := corpus.New(cfg.Corpus.Path)
	if err != nil {
		log.Fatal(err)
	}
	if err := docs.Load(); err != nil {
		log.Printf("corpus not loaded: %v", err)
	}

	asst, err := assistant.New(cfg, assistant.Dependencies{
		Provider:     provider,
		Orchestrator: retry.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay),
		Cache:        cache.New(),
		Limiter:      ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Sessions:     session.New(cfg.Session.Timeout, cfg.Session.MaxHistory),
		Corpus:       docs,
	})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := asst.Ask(context.Background(), assistant.AskRequest{
		Question: "Quels documents faut-il pour une inscription ?",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Answer)
}
