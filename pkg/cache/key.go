package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derives the deterministic cache key for a question in a language.
//
// Normalization, so repeated phrasings of the same question share a key:
// the question is lowercased and runs of whitespace collapse to single
// spaces with the ends trimmed; the language code is uppercased. The key
// is the hex SHA-256 of "LANG\n" + normalized question, so the same
// question in different languages never collides.
func Key(question, language string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	lang := strings.ToUpper(strings.TrimSpace(language))

	sum := sha256.Sum256([]byte(lang + "\n" + norm))
	return hex.EncodeToString(sum[:])
}
