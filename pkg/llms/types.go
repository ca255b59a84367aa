// Package llms implements the model providers the assistant generates text
// with. Groq and OpenAI share the chat-completions wire format; Ollama has
// its own. All providers expose the same Generate contract so the retry
// orchestrator can drive any of them per candidate model.
package llms

import "context"

// Chat roles in the chat-completions sense.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-independent completion request. The model travels
// per request because the orchestrator switches candidates between calls on
// the same provider.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// Provider generates chat completions.
type Provider interface {
	// Generate performs a single completion and returns the trimmed
	// assistant text. Failures are reported as *ProviderError.
	Generate(ctx context.Context, req Request) (string, error)

	// Name identifies the provider for logs and error messages.
	Name() string

	// Close releases provider resources.
	Close() error
}
