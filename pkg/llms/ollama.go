package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/unihelp/unihelp/pkg/config"
	"github.com/unihelp/unihelp/pkg/httpclient"
	"github.com/unihelp/unihelp/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OllamaProvider talks to a local Ollama server over its native chat API.
type OllamaProvider struct {
	baseURL    string
	maxTokens  int
	httpClient *httpclient.Client
}

type OllamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *OllamaOptions `json:"options,omitempty"`
}

type OllamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type OllamaResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
	Error           string  `json:"error,omitempty"`
}

// NewOllamaProvider creates a provider for the configured Ollama server.
func NewOllamaProvider(cfg *config.LLMConfig) (*OllamaProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaProvider{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		maxTokens: cfg.MaxTokens,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		),
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) Close() error {
	return nil
}

// Generate performs a single chat completion.
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()

	tracer := observability.GetTracer("unihelp.llm")
	ctx, span := tracer.Start(ctx, "llm.generate",
		trace.WithAttributes(
			attribute.String("llm.provider", "ollama"),
			attribute.String("llm.model", req.Model),
		),
	)
	defer span.End()

	request := OllamaRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options: &OllamaOptions{
			Temperature: req.Temperature,
			NumPredict:  p.maxTokens,
		},
	}

	response, err := p.makeRequest(ctx, req.Model, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if response.Error != "" {
		apiErr := &ProviderError{
			Provider: "ollama",
			Model:    req.Model,
			Message:  response.Error,
		}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, response.Error)
		return "", apiErr
	}

	span.SetAttributes(
		attribute.Int("llm.tokens.input", response.PromptEvalCount),
		attribute.Int("llm.tokens.output", response.EvalCount),
	)
	span.SetStatus(codes.Ok, "success")

	slog.Debug("Chat completion succeeded",
		"provider", "ollama",
		"model", req.Model,
		"total_tokens", response.PromptEvalCount+response.EvalCount,
		"duration", time.Since(startTime))

	return strings.TrimSpace(response.Message.Content), nil
}

func (p *OllamaProvider) makeRequest(ctx context.Context, model string, request OllamaRequest) (*OllamaResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Provider:  "ollama",
			Model:     model,
			Message:   err.Error(),
			Transient: true,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Provider:  "ollama",
			Model:     model,
			Message:   fmt.Sprintf("failed to read response: %v", err),
			Transient: true,
			Err:       err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if apiMsg := parseOllamaError(body); apiMsg != "" {
			message = apiMsg
		}
		return nil, &ProviderError{
			Provider:   "ollama",
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    message,
			Transient:  httpclient.Transient(resp.StatusCode),
		}
	}

	var response OllamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ProviderError{
			Provider: "ollama",
			Model:    model,
			Message:  fmt.Sprintf("failed to unmarshal response: %v", err),
			Err:      err,
		}
	}

	return &response, nil
}

// parseOllamaError extracts the error string Ollama puts in failed bodies.
func parseOllamaError(body []byte) string {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		return errorResp.Error
	}
	return ""
}

// Ensure OllamaProvider implements Provider
var _ Provider = (*OllamaProvider)(nil)
