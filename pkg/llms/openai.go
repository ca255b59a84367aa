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

// OpenAIProvider talks to the OpenAI chat-completions API and to
// OpenAI-compatible services such as Groq.
type OpenAIProvider struct {
	name       string
	baseURL    string
	maxTokens  int
	httpClient *httpclient.Client
}

type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type OpenAIResponse struct {
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIProvider creates a provider for the configured OpenAI-compatible
// endpoint.
func NewOpenAIProvider(cfg *config.LLMConfig) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return &OpenAIProvider{
		name:      string(cfg.Provider),
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		maxTokens: cfg.MaxTokens,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			httpclient.WithBearer(cfg.APIKey),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
		),
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Close() error {
	return nil
}

// Generate performs a single chat completion.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()

	tracer := observability.GetTracer("unihelp.llm")
	ctx, span := tracer.Start(ctx, "llm.generate",
		trace.WithAttributes(
			attribute.String("llm.provider", p.name),
			attribute.String("llm.model", req.Model),
		),
	)
	defer span.End()

	request := OpenAIRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	}
	if p.maxTokens > 0 {
		maxTokens := p.maxTokens
		request.MaxTokens = &maxTokens
	}

	response, err := p.makeRequest(ctx, req.Model, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if response.Error != nil {
		apiErr := &ProviderError{
			Provider: p.name,
			Model:    req.Model,
			Message:  response.Error.Message,
		}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, response.Error.Message)
		return "", apiErr
	}

	if len(response.Choices) == 0 {
		noChoiceErr := &ProviderError{
			Provider: p.name,
			Model:    req.Model,
			Message:  "no response choices returned",
		}
		span.RecordError(noChoiceErr)
		span.SetStatus(codes.Error, noChoiceErr.Message)
		return "", noChoiceErr
	}

	span.SetAttributes(
		attribute.Int("llm.tokens.input", response.Usage.PromptTokens),
		attribute.Int("llm.tokens.output", response.Usage.CompletionTokens),
	)
	span.SetStatus(codes.Ok, "success")

	slog.Debug("Chat completion succeeded",
		"provider", p.name,
		"model", req.Model,
		"total_tokens", response.Usage.TotalTokens,
		"duration", time.Since(startTime))

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) makeRequest(ctx context.Context, model string, request OpenAIRequest) (*OpenAIResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(requestBody))
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
			Provider:  p.name,
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
			Provider:  p.name,
			Model:     model,
			Message:   fmt.Sprintf("failed to read response: %v", err),
			Transient: true,
			Err:       err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if apiErr := parseErrorResponse(body); apiErr != nil {
			message = apiErr.Message
		}
		return nil, &ProviderError{
			Provider:   p.name,
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    message,
			Transient:  httpclient.Transient(resp.StatusCode),
			RetryAfter: p.httpClient.RateLimit(resp.Header).RetryAfter,
		}
	}

	var response OpenAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ProviderError{
			Provider: p.name,
			Model:    model,
			Message:  fmt.Sprintf("failed to unmarshal response: %v", err),
			Err:      err,
		}
	}

	return &response, nil
}

// parseErrorResponse extracts the API error envelope from failed responses.
func parseErrorResponse(body []byte) *APIError {
	if len(body) == 0 {
		return nil
	}
	var errorResp struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		return &errorResp.Error
	}
	return nil
}

// Ensure OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
