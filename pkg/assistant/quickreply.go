package assistant

import (
	"regexp"
	"strings"
)

// Conversational tokens answered locally, without a model call. The sets
// mix French, English, and Tunisian dialect spellings because students
// switch between them freely.
var (
	greetingWords = wordSet(
		"salut", "bonjour", "bonsoir", "hello", "hi", "hey",
		"salam", "slm", "aslema", "asslema", "ahla", "marhba", "mar7ba",
	)
	thanksWords = wordSet("merci", "thanks", "thank you", "chokran", "choukrane", "bravo")

	wordPattern = regexp.MustCompile(`[a-z0-9']+`)
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// quickReply returns a friendly localized reply for greetings and thanks.
// Detection is a token-set match on the lowercased question; multiword
// entries like "thank you" only match the whole text. Greetings win over
// thanks when both appear.
func quickReply(question, lang string) (string, bool) {
	text := strings.ToLower(strings.Join(strings.Fields(question), " "))
	if text == "" {
		return "", false
	}

	var greeting, thanks bool
	for _, token := range wordPattern.FindAllString(text, -1) {
		if _, ok := greetingWords[token]; ok {
			greeting = true
		}
		if _, ok := thanksWords[token]; ok {
			thanks = true
		}
	}
	if _, ok := greetingWords[text]; ok {
		greeting = true
	}
	if _, ok := thanksWords[text]; ok {
		thanks = true
	}

	if greeting {
		return textsFor(lang).greeting, true
	}
	if thanks {
		return textsFor(lang).thanks, true
	}
	return "", false
}
