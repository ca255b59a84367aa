// Package unihelp is a university administration assistant service.
//
// UniHelp answers student questions from an official information corpus
// and drafts administrative emails (enrollment certificates, internship
// requests, absence justifications, complaints) in French, English, and
// Tunisian dialect. Answers are produced by an LLM provider behind a
// resilience layer: a TTL answer cache, per-session rate limiting, and a
// retry orchestrator that falls back across model candidates.
//
// # Quick Start
//
// Install UniHelp:
//
//	go install github.com/unihelp/unihelp/cmd/unihelp@latest
//
// Create a configuration file:
//
//	yaml
//	llm:
//	  provider: "groq"
//	  api_key: "${GROQ_API_KEY}"
//	corpus:
//	  path: "documents.txt"
//
// Start the server:
//
//	unihelp serve --config unihelp.yaml
//
// Or ask a one-shot question:
//
//	unihelp ask "Comment obtenir une attestation de scolarité ?"
//
// # Using as Go Library
//
// Import the packages you need:
//
//	import (
//	    "github.com/unihelp/unihelp/pkg/assistant"
//	    "github.com/unihelp/unihelp/pkg/config"
//	    "github.com/unihelp/unihelp/pkg/llms"
//	)
//
// # Architecture
//
// UniHelp follows a single-process pipeline architecture:
//
//	Client → HTTP API / CLI → Assistant pipeline → Provider (Groq/OpenAI/Ollama)
//
// The pipeline validates and sanitizes input, resolves the session,
// enforces rate limits, serves quick replies and cached answers, and only
// then spends a model call. Providers never return raw errors to users;
// exhaustion degrades to a localized fallback message.
package unihelp
