package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unihelp/unihelp/pkg/assistant"
	"github.com/unihelp/unihelp/pkg/history"
	"github.com/unihelp/unihelp/pkg/ratelimit"
	"github.com/unihelp/unihelp/pkg/session"
)

// handleAsk answers one question.
func (s *HTTPServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req assistant.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(HeaderSessionID)
	}

	resp, err := s.assistant.Ask(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, req.Language)
		return
	}

	w.Header().Set(HeaderSessionID, resp.SessionID)
	writeJSON(w, http.StatusOK, resp)
}

// handleEmail generates one administrative email.
func (s *HTTPServer) handleEmail(w http.ResponseWriter, r *http.Request) {
	var req assistant.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(HeaderSessionID)
	}

	resp, err := s.assistant.GenerateEmail(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, req.Language)
		return
	}

	w.Header().Set(HeaderSessionID, resp.SessionID)
	writeJSON(w, http.StatusOK, resp)
}

// handleFeedback records a rating. The event is appended asynchronously to
// the caller's perception, hence 202.
func (s *HTTPServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req assistant.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(HeaderSessionID)
	}

	if err := s.assistant.Feedback(r.Context(), req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	w.Header().Set(HeaderSessionID, req.SessionID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleSessionHistory returns the in-memory exchanges of one session.
func (s *HTTPServer) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exchanges := s.assistant.SessionExchanges(id)
	if exchanges == nil {
		exchanges = []session.Exchange{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"exchanges":  exchanges,
	})
}

// handleChatHistory returns the durable chat history.
func (s *HTTPServer) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.assistant.ChatHistory()
	if entries == nil {
		entries = []history.ChatEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleClearChatHistory wipes the durable chat history.
func (s *HTTPServer) handleClearChatHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.ClearChatHistory(); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleStats returns analytics event counts and the live session count.
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	events, active, err := s.assistant.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":          events,
		"sessions_active": active,
	})
}

// handleHealth returns server health status.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"corpus_loaded": s.assistant.CorpusLoaded(),
	})
}

// writeError maps pipeline errors onto HTTP statuses. Validation is 400
// and rate limiting is 429 with the notice localized to the request
// language; everything else is an opaque 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error, lang string) {
	if vErr := assistant.GetValidationError(err); vErr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
		return
	}

	if rlErr := ratelimit.GetRateLimitError(err); rlErr != nil {
		seconds := int(math.Ceil(rlErr.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		w.Header().Set(HeaderSessionID, rlErr.SessionID)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":               assistant.RateLimitNotice(assistant.NormalizeLanguage(lang)),
			"retry_after_seconds": seconds,
		})
		return
	}

	// The client is gone; there is nobody to answer.
	if errors.Is(err, context.Canceled) {
		return
	}

	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
