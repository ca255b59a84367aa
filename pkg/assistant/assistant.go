// Package assistant composes the request pipeline: validation,
// sanitization, sessions, rate limiting, quick replies, caching, prompt
// assembly, the orchestrated model call, and all the bookkeeping around
// it. It is the composition root; every collaborator is injected and
// nothing here is global.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/unihelp/unihelp/pkg/analytics"
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

// AskRequest is one question from a client.
type AskRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Question  string `json:"question"`
	Language  string `json:"language,omitempty"`
}

// AskResponse is the pipeline's answer. Exactly one of the boolean flags
// is set when the answer did not come from a live model call.
type AskResponse struct {
	SessionID  string `json:"session_id"`
	Answer     string `json:"answer"`
	Model      string `json:"model,omitempty"`
	Cached     bool   `json:"cached"`
	QuickReply bool   `json:"quick_reply"`
	Fallback   bool   `json:"fallback"`
}

// EmailRequest asks for one administrative email.
type EmailRequest struct {
	SessionID string `json:"session_id,omitempty"`
	EmailType string `json:"email_type"`
	Language  string `json:"language,omitempty"`
}

// EmailResponse carries the generated email.
type EmailResponse struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback"`
}

// FeedbackRequest is a user rating of the service.
type FeedbackRequest struct {
	SessionID string `json:"session_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

// Dependencies are the collaborators the assistant drives. Provider,
// Orchestrator, Limiter, Sessions, and Corpus are required; the rest are
// bookkeeping and may be nil.
type Dependencies struct {
	Provider     llms.Provider
	Orchestrator *retry.Orchestrator
	Cache        *cache.Cache
	Limiter      *ratelimit.Limiter
	Sessions     *session.Manager
	Corpus       *corpus.Provider
	Recorder     *analytics.Recorder
	Chats        *history.ChatStore
	Emails       *history.EmailStore
	Metrics      *observability.Metrics
	Tokens       *corpus.TokenCounter
}

// Assistant runs the request pipeline.
type Assistant struct {
	provider llms.Provider
	orch     *retry.Orchestrator
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	sessions *session.Manager
	corpus   *corpus.Provider
	recorder *analytics.Recorder
	chats    *history.ChatStore
	emails   *history.EmailStore
	metrics  *observability.Metrics
	tokens   *corpus.TokenCounter

	models            []string
	qaTemperature     float64
	emailTemperature  float64
	cacheTTL          time.Duration
	maxContextChars   int
	emailContextChars int
	minQuestionLen    int
	maxQuestionLen    int

	now func() time.Time

	// lastSessionCount mirrors the session manager's live count so the
	// gauge can be adjusted by delta on every request.
	lastSessionCount atomic.Int64
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

// New builds the pipeline from configuration and injected collaborators.
func New(cfg *config.Config, deps Dependencies, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	switch {
	case deps.Provider == nil:
		return nil, fmt.Errorf("llm provider is required")
	case deps.Orchestrator == nil:
		return nil, fmt.Errorf("retry orchestrator is required")
	case deps.Limiter == nil:
		return nil, fmt.Errorf("rate limiter is required")
	case deps.Sessions == nil:
		return nil, fmt.Errorf("session manager is required")
	case deps.Corpus == nil:
		return nil, fmt.Errorf("corpus provider is required")
	}

	a := &Assistant{
		provider: deps.Provider,
		orch:     deps.Orchestrator,
		cache:    deps.Cache,
		limiter:  deps.Limiter,
		sessions: deps.Sessions,
		corpus:   deps.Corpus,
		recorder: deps.Recorder,
		chats:    deps.Chats,
		emails:   deps.Emails,
		metrics:  deps.Metrics,
		tokens:   deps.Tokens,

		models:            cfg.LLM.Models,
		qaTemperature:     *cfg.LLM.QATemperature,
		emailTemperature:  *cfg.LLM.EmailTemperature,
		cacheTTL:          cfg.Cache.TTL,
		maxContextChars:   cfg.Corpus.MaxContextChars,
		emailContextChars: cfg.Corpus.EmailContextChars,
		minQuestionLen:    cfg.Validation.MinQuestionLength,
		maxQuestionLen:    cfg.Validation.MaxQuestionLength,

		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Ask answers one question. Expected rejections come back as typed errors
// (*ValidationError, *ratelimit.RateLimitError); provider exhaustion is
// absorbed into a fallback response with a nil error.
func (a *Assistant) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	start := a.now()
	tracer := observability.GetTracer("unihelp.assistant")
	ctx, span := tracer.Start(ctx, "assistant.ask")
	defer span.End()

	if err := validateQuestion(req.Question, a.minQuestionLen, a.maxQuestionLen); err != nil {
		a.observe(ctx, "ask", "invalid", start)
		return nil, err
	}

	question := sanitizeInput(req.Question, a.maxQuestionLen)
	lang := NormalizeLanguage(req.Language)

	sess := a.resolveSession(ctx, req.SessionID, lang)
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("language", lang),
	)

	if result := a.limiter.Allow(sess.ID); !result.Allowed {
		a.rejectRateLimited(ctx, "ask", sess.ID, result, start)
		return nil, ratelimit.NewRateLimitError(sess.ID, result)
	}

	if reply, ok := quickReply(question, lang); ok {
		a.sessions.AppendExchange(sess.ID, session.Exchange{Question: question, Answer: reply, At: a.now()})
		a.recorder.Record(ctx, analytics.EventQuickReply, sess.ID, map[string]any{"language": lang})
		a.observe(ctx, "ask", "quick_reply", start)
		return &AskResponse{SessionID: sess.ID, Answer: reply, QuickReply: true}, nil
	}

	key := cache.Key(question, lang)
	if a.cache != nil {
		if answer, ok := a.cache.Get(key); ok {
			a.metrics.RecordCacheEvent(ctx, "hit")
			a.recorder.Record(ctx, analytics.EventCacheHit, sess.ID, map[string]any{"language": lang})
			a.observe(ctx, "ask", "cached", start)
			return &AskResponse{SessionID: sess.ID, Answer: answer, Cached: true}, nil
		}
		a.metrics.RecordCacheEvent(ctx, "miss")
	}

	messages := a.buildAskMessages(sess.ID, question, lang)
	a.recordPromptSize(ctx, "ask", messages)

	answer, model, err := a.generate(ctx, messages, a.qaTemperature)
	if err != nil {
		if !retry.IsProviderUnavailable(err) {
			return nil, err
		}
		a.recordUnavailable(ctx, "ask", sess.ID, lang, err)
		a.observe(ctx, "ask", "fallback", start)
		return &AskResponse{SessionID: sess.ID, Answer: UnavailableText(lang), Fallback: true}, nil
	}
	if answer == "" {
		answer = NotFoundText(lang)
	}

	if a.cache != nil {
		a.cache.Set(key, answer, a.cacheTTL)
	}
	now := a.now()
	a.sessions.AppendExchange(sess.ID, session.Exchange{Question: question, Answer: answer, At: now})
	a.appendChat(history.ChatEntry{Timestamp: now, SessionID: sess.ID, Question: question, Answer: answer})

	elapsed := a.now().Sub(start)
	a.recorder.Record(ctx, analytics.EventQuestionAnswered, sess.ID, map[string]any{
		"language":    lang,
		"model":       model,
		"duration_ms": elapsed.Milliseconds(),
	})
	slog.Info("Question answered",
		"session_id", sess.ID,
		"language", lang,
		"model", model,
		"duration_ms", elapsed.Milliseconds())

	a.observe(ctx, "ask", "success", start)
	return &AskResponse{SessionID: sess.ID, Answer: answer, Model: model}, nil
}

// GenerateEmail writes one administrative email. Emails skip quick replies
// and the answer cache but share the session, rate limit, and fallback
// semantics with Ask.
func (a *Assistant) GenerateEmail(ctx context.Context, req EmailRequest) (*EmailResponse, error) {
	start := a.now()
	tracer := observability.GetTracer("unihelp.assistant")
	ctx, span := tracer.Start(ctx, "assistant.email")
	defer span.End()

	emailType, err := normalizeEmailType(req.EmailType)
	if err != nil {
		a.observe(ctx, "email", "invalid", start)
		return nil, err
	}
	lang := NormalizeLanguage(req.Language)

	sess := a.resolveSession(ctx, req.SessionID, lang)
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("email.type", emailType),
	)

	if result := a.limiter.Allow(sess.ID); !result.Allowed {
		a.rejectRateLimited(ctx, "email", sess.ID, result, start)
		return nil, ratelimit.NewRateLimitError(sess.ID, result)
	}

	docContext := a.corpus.Context(emailType, a.emailContextChars)
	messages := []llms.Message{
		{Role: llms.RoleSystem, Content: emailSystemPrompt},
		{Role: llms.RoleUser, Content: emailPrompt(emailType, docContext, lang)},
	}
	a.recordPromptSize(ctx, "email", messages)

	email, model, err := a.generate(ctx, messages, a.emailTemperature)
	if err != nil {
		if !retry.IsProviderUnavailable(err) {
			return nil, err
		}
		a.recordUnavailable(ctx, "email", sess.ID, lang, err)
		a.observe(ctx, "email", "fallback", start)
		return &EmailResponse{SessionID: sess.ID, Email: UnavailableText(lang), Fallback: true}, nil
	}

	now := a.now()
	a.appendEmail(history.EmailEntry{Timestamp: now, Type: emailType, Content: email})

	elapsed := a.now().Sub(start)
	a.recorder.Record(ctx, analytics.EventEmailGenerated, sess.ID, map[string]any{
		"language":    lang,
		"email_type":  emailType,
		"model":       model,
		"duration_ms": elapsed.Milliseconds(),
	})
	slog.Info("Email generated",
		"session_id", sess.ID,
		"email_type", emailType,
		"model", model,
		"duration_ms", elapsed.Milliseconds())

	a.observe(ctx, "email", "success", start)
	return &EmailResponse{SessionID: sess.ID, Email: email, Model: model}, nil
}

// Feedback records a user rating as an analytics event.
func (a *Assistant) Feedback(ctx context.Context, req FeedbackRequest) error {
	start := a.now()

	if req.Rating < 1 || req.Rating > 5 {
		a.observe(ctx, "feedback", "invalid", start)
		return &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}

	payload := map[string]any{"rating": req.Rating}
	if comment := sanitizeInput(req.Comment, a.maxQuestionLen); comment != "" {
		payload["comment"] = comment
	}

	a.sessions.Touch(req.SessionID)
	a.recorder.Record(ctx, analytics.EventFeedback, req.SessionID, payload)
	slog.Info("Feedback recorded", "session_id", req.SessionID, "rating", req.Rating)

	a.observe(ctx, "feedback", "success", start)
	return nil
}

// SessionExchanges returns the in-memory exchanges of one session, oldest
// first.
func (a *Assistant) SessionExchanges(sessionID string) []session.Exchange {
	return a.sessions.Exchanges(sessionID, 0)
}

// ChatHistory returns the durable chat history.
func (a *Assistant) ChatHistory() []history.ChatEntry {
	if a.chats == nil {
		return nil
	}
	return a.chats.List()
}

// ClearChatHistory wipes the durable chat history.
func (a *Assistant) ClearChatHistory() error {
	if a.chats == nil {
		return nil
	}
	return a.chats.Clear()
}

// Stats returns per-event analytics counts and the live session count.
func (a *Assistant) Stats(ctx context.Context) (map[string]int, int, error) {
	summary, err := a.recorder.Summary(ctx)
	if err != nil {
		return nil, 0, err
	}
	return summary, a.sessions.Count(), nil
}

// CorpusLoaded reports whether the document corpus has content.
func (a *Assistant) CorpusLoaded() bool {
	return a.corpus.Loaded()
}

// resolveSession establishes the caller's session: fresh ids are recorded
// as session_created and the active-session gauge is reconciled.
func (a *Assistant) resolveSession(ctx context.Context, id, lang string) session.Session {
	sess, created := a.sessions.GetOrCreate(id)
	a.sessions.Touch(sess.ID)
	a.sessions.SetLanguage(sess.ID, lang)
	if created {
		a.recorder.Record(ctx, analytics.EventSessionCreated, sess.ID, map[string]any{"language": lang})
		slog.Debug("Session created", "session_id", sess.ID, "language", lang)
	}
	a.syncSessionsGauge(ctx)
	return sess
}

// generate runs one orchestrated completion over the candidate models and
// reports which model produced the answer.
func (a *Assistant) generate(ctx context.Context, messages []llms.Message, temperature float64) (string, string, error) {
	var usedModel string
	answer, err := a.orch.Do(ctx, a.models, func(ctx context.Context, model string) (string, error) {
		out, genErr := a.provider.Generate(ctx, llms.Request{
			Model:       model,
			Messages:    messages,
			Temperature: temperature,
		})
		if genErr == nil {
			usedModel = model
		}
		return out, genErr
	})
	return answer, usedModel, err
}

// buildAskMessages assembles the QA prompt: system prompt, the session's
// recent exchanges, then the question wrapped with retrieved context.
func (a *Assistant) buildAskMessages(sessionID, question, lang string) []llms.Message {
	docContext := a.corpus.Context(question, a.maxContextChars)

	exchanges := a.sessions.Exchanges(sessionID, historyExchanges)
	messages := make([]llms.Message, 0, 2+2*len(exchanges))
	messages = append(messages, llms.Message{Role: llms.RoleSystem, Content: systemPrompt(lang)})
	for _, ex := range exchanges {
		messages = append(messages,
			llms.Message{Role: llms.RoleUser, Content: ex.Question},
			llms.Message{Role: llms.RoleAssistant, Content: ex.Answer})
	}
	messages = append(messages, llms.Message{Role: llms.RoleUser, Content: userPrompt(docContext, question)})
	return messages
}

// appendChat and appendEmail write durable history. A failed write is
// logged and never fails the request.
func (a *Assistant) appendChat(entry history.ChatEntry) {
	if a.chats == nil {
		return
	}
	if err := a.chats.Append(entry); err != nil {
		slog.Warn("Chat history write failed", "error", err)
	}
}

func (a *Assistant) appendEmail(entry history.EmailEntry) {
	if a.emails == nil {
		return
	}
	if err := a.emails.Append(entry); err != nil {
		slog.Warn("Email history write failed", "error", err)
	}
}

func (a *Assistant) rejectRateLimited(ctx context.Context, operation, sessionID string, result ratelimit.Result, start time.Time) {
	slog.Warn("Request rate limited",
		"operation", operation,
		"session_id", sessionID,
		"retry_after", result.RetryAfter)
	a.metrics.RecordRateLimited(ctx)
	a.recorder.Record(ctx, analytics.EventRateLimited, sessionID, map[string]any{
		"operation":           operation,
		"retry_after_seconds": result.RetryAfter.Seconds(),
	})
	a.observe(ctx, operation, "rate_limited", start)
}

// recordUnavailable logs and records total provider failure. This is the
// only error-level log in the pipeline.
func (a *Assistant) recordUnavailable(ctx context.Context, operation, sessionID, lang string, err error) {
	fields := []any{
		"operation", operation,
		"session_id", sessionID,
		"error", err,
	}
	if unavail := retry.GetProviderUnavailableError(err); unavail != nil {
		fields = append(fields, "attempts", unavail.Attempts)
	}
	if providerErr := llms.GetProviderError(err); providerErr != nil {
		fields = append(fields, "last_model", providerErr.Model, "last_status", providerErr.StatusCode)
	}
	slog.Error("All model candidates exhausted", fields...)

	a.recorder.Record(ctx, analytics.EventProviderUnavailable, sessionID, map[string]any{
		"operation": operation,
		"language":  lang,
	})
}

func (a *Assistant) recordPromptSize(ctx context.Context, operation string, messages []llms.Message) {
	total := 0
	for _, m := range messages {
		total += a.tokens.Count(m.Content)
	}
	a.metrics.RecordPromptTokens(ctx, operation, total)
	slog.Debug("Prompt assembled",
		"operation", operation,
		"messages", len(messages),
		"prompt_tokens", total)
}

func (a *Assistant) observe(ctx context.Context, operation, outcome string, start time.Time) {
	a.metrics.RecordRequest(ctx, operation, outcome, a.now().Sub(start).Seconds())
}

// syncSessionsGauge reconciles the active-session gauge with the manager.
// Count prunes expired sessions, so the gauge follows expiries as well as
// creations.
func (a *Assistant) syncSessionsGauge(ctx context.Context) {
	current := int64(a.sessions.Count())
	previous := a.lastSessionCount.Swap(current)
	if delta := current - previous; delta != 0 {
		a.metrics.AddActiveSessions(ctx, delta)
	}
}
