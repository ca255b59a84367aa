package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/unihelp/unihelp/pkg/analytics"
	"github.com/unihelp/unihelp/pkg/cache"
	"github.com/unihelp/unihelp/pkg/config"
	"github.com/unihelp/unihelp/pkg/corpus"
	"github.com/unihelp/unihelp/pkg/history"
	"github.com/unihelp/unihelp/pkg/llms"
	"github.com/unihelp/unihelp/pkg/ratelimit"
	"github.com/unihelp/unihelp/pkg/retry"
	"github.com/unihelp/unihelp/pkg/session"
)

const testDocuments = `SECTION 1: INSCRIPTION ET REINSCRIPTION
Les inscriptions ouvrent le 1er septembre. Documents obligatoires: CIN, photos, relevé du bac.

SECTION 2: CERTIFICATS ET ATTESTATIONS
Le certificat d'inscription est délivré par la scolarité sous 48 heures.

SECTION 4: STAGES
La convention de stage doit être signée avant le début du stage.

SECTION 9: REGLEMENT INTERIEUR
Le règlement intérieur s'applique à tous les étudiants.`

type fakeProvider struct {
	mu       sync.Mutex
	requests []llms.Request
	response string
	err      error

	// handler overrides response/err when set.
	handler func(req llms.Request) (string, error)
}

func (f *fakeProvider) Generate(_ context.Context, req llms.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.handler != nil {
		return f.handler(req)
	}
	return f.response, f.err
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) calls() []llms.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llms.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

type memorySink struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (s *memorySink) Append(_ context.Context, e analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *memorySink) Summary(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range s.events {
		counts[e.Event]++
	}
	return counts, nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Event == name {
			n++
		}
	}
	return n
}

type testHarness struct {
	assistant *Assistant
	provider  *fakeProvider
	sink      *memorySink
	chats     *history.ChatStore
	emails    *history.EmailStore
}

func newHarness(t *testing.T, provider *fakeProvider, mutate func(cfg *config.Config, deps *Dependencies)) *testHarness {
	t.Helper()

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "documents.txt")
	if err := os.WriteFile(corpusPath, []byte(testDocuments), 0o644); err != nil {
		t.Fatalf("failed to write corpus: %v", err)
	}

	docs, err := corpus.New(corpusPath)
	if err != nil {
		t.Fatalf("corpus.New() error = %v", err)
	}
	if err := docs.Load(); err != nil {
		t.Fatalf("corpus.Load() error = %v", err)
	}

	chats, err := history.NewChatStore(filepath.Join(dir, "chat.json"), 50)
	if err != nil {
		t.Fatalf("NewChatStore() error = %v", err)
	}
	emails, err := history.NewEmailStore(filepath.Join(dir, "email.json"), 50)
	if err != nil {
		t.Fatalf("NewEmailStore() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.SetDefaults()

	sink := &memorySink{}
	deps := Dependencies{
		Provider: provider,
		Orchestrator: retry.New(2, time.Millisecond, retry.WithSleep(
			func(context.Context, time.Duration) error { return nil })),
		Cache:    cache.New(),
		Limiter:  ratelimit.New(10, time.Minute),
		Sessions: session.New(30*time.Minute, 10),
		Corpus:   docs,
		Recorder: analytics.NewRecorder(sink),
		Chats:    chats,
		Emails:   emails,
	}
	if mutate != nil {
		mutate(cfg, &deps)
	}

	a, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testHarness{assistant: a, provider: provider, sink: sink, chats: chats, emails: emails}
}

func TestNewRequiresDependencies(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	h := newHarness(t, provider, nil)

	cfg := &config.Config{}
	cfg.SetDefaults()

	tests := []struct {
		name   string
		mutate func(d *Dependencies)
	}{
		{"missing provider", func(d *Dependencies) { d.Provider = nil }},
		{"missing orchestrator", func(d *Dependencies) { d.Orchestrator = nil }},
		{"missing limiter", func(d *Dependencies) { d.Limiter = nil }},
		{"missing sessions", func(d *Dependencies) { d.Sessions = nil }},
		{"missing corpus", func(d *Dependencies) { d.Corpus = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := Dependencies{
				Provider:     provider,
				Orchestrator: h.assistant.orch,
				Limiter:      h.assistant.limiter,
				Sessions:     h.assistant.sessions,
				Corpus:       h.assistant.corpus,
			}
			tt.mutate(&deps)
			if _, err := New(cfg, deps); err == nil {
				t.Error("New() error = nil, want dependency error")
			}
		})
	}
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too short", "ab"},
		{"too long", strings.Repeat("q", 501)},
		{"repeated char spam", "pourquoi aaaaaaaaaaa?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{response: "should not be called"}
			h := newHarness(t, provider, nil)

			resp, err := h.assistant.Ask(context.Background(), AskRequest{Question: tt.question})
			if resp != nil {
				t.Errorf("Ask() response = %+v, want nil", resp)
			}
			if !IsValidationError(err) {
				t.Fatalf("Ask() error = %v, want *ValidationError", err)
			}
			if calls := h.provider.calls(); len(calls) != 0 {
				t.Errorf("provider called %d times, want 0", len(calls))
			}
			if n := h.sink.count(analytics.EventSessionCreated); n != 0 {
				t.Errorf("session_created events = %d, want 0 before validation passes", n)
			}
		})
	}
}

func TestAskQuickReply(t *testing.T) {
	provider := &fakeProvider{response: "should not be called"}
	h := newHarness(t, provider, nil)

	resp, err := h.assistant.Ask(context.Background(), AskRequest{Question: "Bonjour!", Language: "FR"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !resp.QuickReply {
		t.Error("QuickReply = false, want true")
	}
	if resp.Answer != textsFor(LanguageFR).greeting {
		t.Errorf("Answer = %q, want the French greeting", resp.Answer)
	}
	if resp.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if len(h.provider.calls()) != 0 {
		t.Error("provider was called for a quick reply")
	}
	if n := h.sink.count(analytics.EventQuickReply); n != 1 {
		t.Errorf("quick_reply events = %d, want 1", n)
	}

	exchanges := h.assistant.SessionExchanges(resp.SessionID)
	if len(exchanges) != 1 || exchanges[0].Answer != resp.Answer {
		t.Errorf("session exchanges = %+v, want the quick reply appended", exchanges)
	}
}

func TestAskSuccessThenCacheHit(t *testing.T) {
	provider := &fakeProvider{response: "Les inscriptions ouvrent le 1er septembre."}
	h := newHarness(t, provider, nil)

	first, err := h.assistant.Ask(context.Background(), AskRequest{
		Question: "Quand ouvrent les inscriptions?",
		Language: "FR",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if first.Cached || first.QuickReply || first.Fallback {
		t.Errorf("flags = %+v, want all false on a live answer", first)
	}
	if first.Model != "llama-3.1-8b-instant" {
		t.Errorf("Model = %q, want the first candidate", first.Model)
	}
	if first.Answer != provider.response {
		t.Errorf("Answer = %q, want the provider answer", first.Answer)
	}
	if n := h.sink.count(analytics.EventSessionCreated); n != 1 {
		t.Errorf("session_created events = %d, want 1", n)
	}
	if n := h.sink.count(analytics.EventQuestionAnswered); n != 1 {
		t.Errorf("question_answered events = %d, want 1", n)
	}

	entries := h.assistant.ChatHistory()
	if len(entries) != 1 || entries[0].Answer != provider.response {
		t.Fatalf("chat history = %+v, want one durable entry", entries)
	}
	if entries[0].SessionID != first.SessionID {
		t.Errorf("chat entry session = %q, want %q", entries[0].SessionID, first.SessionID)
	}

	second, err := h.assistant.Ask(context.Background(), AskRequest{
		SessionID: first.SessionID,
		Question:  "Quand ouvrent les inscriptions?",
		Language:  "FR",
	})
	if err != nil {
		t.Fatalf("second Ask() error = %v", err)
	}
	if !second.Cached {
		t.Error("Cached = false on the repeated question, want true")
	}
	if second.SessionID != first.SessionID {
		t.Errorf("SessionID changed: %q then %q", first.SessionID, second.SessionID)
	}
	if calls := h.provider.calls(); len(calls) != 1 {
		t.Errorf("provider calls = %d, want 1 (second answer from cache)", len(calls))
	}
	if n := h.sink.count(analytics.EventCacheHit); n != 1 {
		t.Errorf("cache_hit events = %d, want 1", n)
	}
	if n := h.sink.count(analytics.EventSessionCreated); n != 1 {
		t.Errorf("session_created events = %d after reuse, want still 1", n)
	}
}

func TestAskCacheExpiry(t *testing.T) {
	provider := &fakeProvider{response: "Les inscriptions ouvrent le 1er septembre."}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, provider, func(cfg *config.Config, deps *Dependencies) {
		cfg.Cache.TTL = 5 * time.Second
		deps.Cache = cache.New(cache.WithClock(func() time.Time { return now }))
	})

	ask := func() *AskResponse {
		t.Helper()
		resp, err := h.assistant.Ask(context.Background(), AskRequest{
			Question: "Quand ouvrent les inscriptions?",
			Language: "FR",
		})
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		return resp
	}

	ask()
	now = now.Add(4 * time.Second)
	if resp := ask(); !resp.Cached {
		t.Error("Cached = false within the TTL, want true")
	}
	if calls := h.provider.calls(); len(calls) != 1 {
		t.Fatalf("provider calls = %d, want 1 within the TTL", len(calls))
	}

	now = now.Add(2 * time.Second)
	if resp := ask(); resp.Cached {
		t.Error("Cached = true after the TTL passed, want false")
	}
	if calls := h.provider.calls(); len(calls) != 2 {
		t.Errorf("provider calls = %d, want 2 once the entry expired", len(calls))
	}
}

func TestAskPromptAssembly(t *testing.T) {
	provider := &fakeProvider{response: "Réponse."}
	h := newHarness(t, provider, nil)

	first, err := h.assistant.Ask(context.Background(), AskRequest{
		Question: "Comment faire mon inscription?",
		Language: "FR",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	calls := h.provider.calls()
	if len(calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(calls))
	}
	req := calls[0]

	if req.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want the QA temperature 0.2", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(req.Messages))
	}
	system := req.Messages[0]
	if system.Role != llms.RoleSystem {
		t.Errorf("first role = %q, want system", system.Role)
	}
	if !strings.Contains(system.Content, "UniHelp") {
		t.Error("system prompt does not name UniHelp")
	}
	if !strings.Contains(system.Content, NotFoundText(LanguageFR)) {
		t.Error("system prompt does not embed the localized fallback sentence")
	}
	user := req.Messages[1]
	if !strings.HasPrefix(user.Content, "Context universitaire:\n") {
		t.Errorf("user prompt prefix = %q", user.Content[:40])
	}
	if !strings.Contains(user.Content, "SECTION 1:") {
		t.Error("user prompt does not include the enrollment section")
	}
	if !strings.Contains(user.Content, "\n\nQuestion: Comment faire mon inscription?") {
		t.Error("user prompt does not end with the question")
	}

	// A follow-up in the same session carries the previous exchange.
	if _, err := h.assistant.Ask(context.Background(), AskRequest{
		SessionID: first.SessionID,
		Question:  "Et quels documents faut-il fournir?",
		Language:  "FR",
	}); err != nil {
		t.Fatalf("second Ask() error = %v", err)
	}

	calls = h.provider.calls()
	if len(calls) != 2 {
		t.Fatalf("provider calls = %d, want 2", len(calls))
	}
	followUp := calls[1]
	if len(followUp.Messages) != 4 {
		t.Fatalf("follow-up messages = %d, want system + prior exchange + user", len(followUp.Messages))
	}
	if followUp.Messages[1].Role != llms.RoleUser || followUp.Messages[1].Content != "Comment faire mon inscription?" {
		t.Errorf("history user message = %+v", followUp.Messages[1])
	}
	if followUp.Messages[2].Role != llms.RoleAssistant || followUp.Messages[2].Content != "Réponse." {
		t.Errorf("history assistant message = %+v", followUp.Messages[2])
	}
}

func TestAskRateLimited(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	h := newHarness(t, provider, func(_ *config.Config, deps *Dependencies) {
		deps.Limiter = ratelimit.New(1, time.Minute)
	})

	first, err := h.assistant.Ask(context.Background(), AskRequest{Question: "Comment obtenir un certificat?"})
	if err != nil {
		t.Fatalf("first Ask() error = %v", err)
	}

	resp, err := h.assistant.Ask(context.Background(), AskRequest{
		SessionID: first.SessionID,
		Question:  "Encore une question?",
	})
	if resp != nil {
		t.Errorf("Ask() response = %+v, want nil when rate limited", resp)
	}
	if !ratelimit.IsRateLimitError(err) {
		t.Fatalf("Ask() error = %v, want *RateLimitError", err)
	}
	rle := ratelimit.GetRateLimitError(err)
	if rle.SessionID != first.SessionID {
		t.Errorf("SessionID = %q, want %q", rle.SessionID, first.SessionID)
	}
	if rle.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", rle.RetryAfter)
	}
	if n := h.sink.count(analytics.EventRateLimited); n != 1 {
		t.Errorf("rate_limited events = %d, want 1", n)
	}
	if calls := h.provider.calls(); len(calls) != 1 {
		t.Errorf("provider calls = %d, want 1", len(calls))
	}
}

func TestAskFallbackWhenProvidersExhausted(t *testing.T) {
	provider := &fakeProvider{err: &llms.ProviderError{
		Provider:   "groq",
		Model:      "llama-3.1-8b-instant",
		StatusCode: 503,
		Message:    "service unavailable",
		Transient:  true,
	}}
	h := newHarness(t, provider, nil)

	resp, err := h.assistant.Ask(context.Background(), AskRequest{
		Question: "Quand ouvrent les inscriptions?",
		Language: "EN",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v, want nil on fallback", err)
	}
	if !resp.Fallback {
		t.Error("Fallback = false, want true")
	}
	if resp.Answer != UnavailableText(LanguageEN) {
		t.Errorf("Answer = %q, want the English apology", resp.Answer)
	}
	if resp.Model != "" {
		t.Errorf("Model = %q, want empty on fallback", resp.Model)
	}

	// Two candidate models, two attempts each.
	if calls := h.provider.calls(); len(calls) != 4 {
		t.Errorf("provider calls = %d, want 4", len(calls))
	}
	if n := h.sink.count(analytics.EventProviderUnavailable); n != 1 {
		t.Errorf("provider_unavailable events = %d, want 1", n)
	}
	if n := h.sink.count(analytics.EventQuestionAnswered); n != 0 {
		t.Errorf("question_answered events = %d, want 0", n)
	}
	if entries := h.assistant.ChatHistory(); len(entries) != 0 {
		t.Errorf("chat history = %+v, want empty after fallback", entries)
	}
}

func TestAskEmptyAnswerBecomesNotFound(t *testing.T) {
	provider := &fakeProvider{response: ""}
	h := newHarness(t, provider, nil)

	resp, err := h.assistant.Ask(context.Background(), AskRequest{
		Question: "Où est la salle B12?",
		Language: "FR",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Fallback {
		t.Error("Fallback = true, want false for an empty model answer")
	}
	if resp.Answer != NotFoundText(LanguageFR) {
		t.Errorf("Answer = %q, want the not-found sentence", resp.Answer)
	}
}

func TestAskContextCancellationPropagates(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	h := newHarness(t, provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := h.assistant.Ask(ctx, AskRequest{Question: "Quand ouvrent les inscriptions?"})
	if resp != nil {
		t.Errorf("Ask() response = %+v, want nil", resp)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Ask() error = %v, want context.Canceled", err)
	}
}

func TestGenerateEmail(t *testing.T) {
	provider := &fakeProvider{handler: func(req llms.Request) (string, error) {
		if len(req.Messages) != 2 {
			return "", &llms.ProviderError{Message: "unexpected message count"}
		}
		if req.Messages[0].Content != emailSystemPrompt {
			return "", &llms.ProviderError{Message: "unexpected system prompt"}
		}
		user := req.Messages[1].Content
		if !strings.Contains(user, "Generate a professional email for: Internship request") {
			return "", &llms.ProviderError{Message: "missing email type"}
		}
		if !strings.Contains(user, "Output format (strict):") {
			return "", &llms.ProviderError{Message: "missing format contract"}
		}
		if req.Temperature != 0.3 {
			return "", &llms.ProviderError{Message: "unexpected temperature"}
		}
		return "Subject: Demande de stage\n\nBody:\n...\n\nProfessional closing:\nCordialement", nil
	}}
	h := newHarness(t, provider, nil)

	resp, err := h.assistant.GenerateEmail(context.Background(), EmailRequest{
		EmailType: "internship request",
		Language:  "FR",
	})
	if err != nil {
		t.Fatalf("GenerateEmail() error = %v", err)
	}
	if !strings.HasPrefix(resp.Email, "Subject: ") {
		t.Errorf("Email = %q, want the strict format", resp.Email)
	}
	if resp.Model == "" {
		t.Error("Model is empty on a live generation")
	}
	if n := h.sink.count(analytics.EventEmailGenerated); n != 1 {
		t.Errorf("email_generated events = %d, want 1", n)
	}

	stored := h.emails.List()
	if len(stored) != 1 {
		t.Fatalf("email history entries = %d, want 1", len(stored))
	}
	if stored[0].Type != EmailInternshipRequest {
		t.Errorf("stored type = %q, want the canonical name", stored[0].Type)
	}
}

func TestGenerateEmailUnknownType(t *testing.T) {
	provider := &fakeProvider{response: "nope"}
	h := newHarness(t, provider, nil)

	resp, err := h.assistant.GenerateEmail(context.Background(), EmailRequest{EmailType: "Love letter"})
	if resp != nil {
		t.Errorf("GenerateEmail() response = %+v, want nil", resp)
	}
	validationErr := GetValidationError(err)
	if validationErr == nil {
		t.Fatalf("GenerateEmail() error = %v, want *ValidationError", err)
	}
	if validationErr.Field != "email_type" {
		t.Errorf("Field = %q, want email_type", validationErr.Field)
	}
	if len(h.provider.calls()) != 0 {
		t.Error("provider was called for an unknown email type")
	}
}

func TestGenerateEmailFallback(t *testing.T) {
	provider := &fakeProvider{err: &llms.ProviderError{StatusCode: 500, Message: "boom", Transient: true}}
	h := newHarness(t, provider, nil)

	resp, err := h.assistant.GenerateEmail(context.Background(), EmailRequest{
		EmailType: EmailComplaint,
		Language:  "TN",
	})
	if err != nil {
		t.Fatalf("GenerateEmail() error = %v, want nil on fallback", err)
	}
	if !resp.Fallback {
		t.Error("Fallback = false, want true")
	}
	if resp.Email != UnavailableText(LanguageTN) {
		t.Errorf("Email = %q, want the TN apology", resp.Email)
	}
	if stored := h.emails.List(); len(stored) != 0 {
		t.Errorf("email history entries = %d, want 0 after fallback", len(stored))
	}
}

func TestFeedback(t *testing.T) {
	provider := &fakeProvider{}
	h := newHarness(t, provider, nil)

	if err := h.assistant.Feedback(context.Background(), FeedbackRequest{Rating: 0}); !IsValidationError(err) {
		t.Errorf("Feedback(rating 0) error = %v, want *ValidationError", err)
	}
	if err := h.assistant.Feedback(context.Background(), FeedbackRequest{Rating: 6}); !IsValidationError(err) {
		t.Errorf("Feedback(rating 6) error = %v, want *ValidationError", err)
	}

	err := h.assistant.Feedback(context.Background(), FeedbackRequest{
		SessionID: "abc123",
		Rating:    5,
		Comment:   "<b>Très utile</b>  vraiment",
	})
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}
	if n := h.sink.count(analytics.EventFeedback); n != 1 {
		t.Fatalf("feedback events = %d, want 1", n)
	}

	h.sink.mu.Lock()
	var recorded analytics.Event
	for _, e := range h.sink.events {
		if e.Event == analytics.EventFeedback {
			recorded = e
		}
	}
	h.sink.mu.Unlock()

	if recorded.SessionID != "abc123" {
		t.Errorf("SessionID = %q, want abc123", recorded.SessionID)
	}
	if recorded.Data["rating"] != 5 {
		t.Errorf("rating = %v, want 5", recorded.Data["rating"])
	}
	comment, _ := recorded.Data["comment"].(string)
	if strings.ContainsAny(comment, "<>") {
		t.Errorf("comment = %q, want sanitized", comment)
	}
	if !strings.Contains(comment, "Très utile") {
		t.Errorf("comment = %q, want the text preserved", comment)
	}
}

func TestStats(t *testing.T) {
	provider := &fakeProvider{response: "Réponse."}
	h := newHarness(t, provider, nil)

	if _, err := h.assistant.Ask(context.Background(), AskRequest{Question: "Comment obtenir un certificat?"}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	events, sessions, err := h.assistant.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if events[analytics.EventQuestionAnswered] != 1 {
		t.Errorf("question_answered count = %d, want 1", events[analytics.EventQuestionAnswered])
	}
	if sessions != 1 {
		t.Errorf("active sessions = %d, want 1", sessions)
	}
	if !h.assistant.CorpusLoaded() {
		t.Error("CorpusLoaded() = false, want true")
	}
}

func TestClearChatHistory(t *testing.T) {
	provider := &fakeProvider{response: "Réponse."}
	h := newHarness(t, provider, nil)

	if _, err := h.assistant.Ask(context.Background(), AskRequest{Question: "Comment obtenir un certificat?"}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(h.assistant.ChatHistory()) != 1 {
		t.Fatal("chat history empty before clear")
	}
	if err := h.assistant.ClearChatHistory(); err != nil {
		t.Fatalf("ClearChatHistory() error = %v", err)
	}
	if entries := h.assistant.ChatHistory(); len(entries) != 0 {
		t.Errorf("chat history after clear = %+v, want empty", entries)
	}
}
