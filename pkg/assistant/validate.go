package assistant

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// spamRunLength is the shortest run of one repeated character rejected as
// spam: the character plus ten repeats.
const spamRunLength = 11

var (
	// dangerousChars are stripped from user input after HTML escaping.
	dangerousChars = regexp.MustCompile(`[<>{}()\[\]\\]`)

	spaceRuns = regexp.MustCompile(`\s+`)
)

// validateQuestion gates raw user input before anything else happens:
// non-empty, at least minLen characters trimmed, at most maxLen
// characters, and no repeated-character spam.
func validateQuestion(question string, minLen, maxLen int) error {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return &ValidationError{Field: "question", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(trimmed) < minLen {
		return &ValidationError{Field: "question", Reason: fmt.Sprintf("must be at least %d characters", minLen)}
	}
	if utf8.RuneCountInString(question) > maxLen {
		return &ValidationError{Field: "question", Reason: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	if hasSpamRun(question, spamRunLength) {
		return &ValidationError{Field: "question", Reason: "looks like repeated-character spam"}
	}
	return nil
}

// hasSpamRun reports whether s contains a run of n or more identical runes.
func hasSpamRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

// sanitizeInput neutralizes user text before it reaches prompts, logs, or
// stores: HTML-escape, strip bracket and backslash characters, collapse
// whitespace runs, trim, and cap the length in runes.
func sanitizeInput(text string, maxLength int) string {
	if text == "" {
		return ""
	}

	text = html.EscapeString(text)
	text = dangerousChars.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))

	if maxLength > 0 && utf8.RuneCountInString(text) > maxLength {
		text = strings.TrimSpace(string([]rune(text)[:maxLength]))
	}
	return text
}
