// Package corpus serves the official administrative documents the assistant
// answers from.
//
// The corpus is a single plain-text file organized as "SECTION N: Title"
// blocks. Content is loaded into memory and served behind a read lock;
// Context selects the sections relevant to a question by keyword and
// concatenates them within a character budget, which keeps prompts small
// without a vector index.
package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
)

// sectionPrefix marks the first line of a corpus section.
const sectionPrefix = "SECTION "

// minPartialChars is the smallest remaining budget worth filling with a
// truncated section. Below this a fragment carries too little signal.
const minPartialChars = 500

// defaultSections cover enrollment, certificates and regulations, the
// topics most questions fall back to when no keyword matches.
var defaultSections = []string{"SECTION 1", "SECTION 2", "SECTION 9"}

// keywordSections routes question terms to corpus sections. Matching is
// substring containment on the lowercased question, so "inscri" also covers
// "inscrire", "inscription" and "réinscription".
var keywordSections = []struct {
	keywords []string
	section  string
}{
	{[]string{"inscription", "inscri", "réinscription", "enroll", "documents obligatoires", "frais inscription"}, "SECTION 1"},
	{[]string{"certificat", "attestation", "relevé", "notes", "scolarité", "certificate"}, "SECTION 2"},
	{[]string{"bourse", "aide financière", "prêt", "scholarship", "financial aid", "mobilité"}, "SECTION 3"},
	{[]string{"stage", "internship", "convention", "entreprise", "rapport", "soutenance"}, "SECTION 4"},
	{[]string{"absence", "justification", "assiduité", "présence", "retard"}, "SECTION 5"},
	{[]string{"examen", "rattrapage", "évaluation", "test", "exam", "compensation", "note", "fraude"}, "SECTION 6"},
	{[]string{"paiement", "frais", "tarif", "remboursement", "payment", "fee", "échéance"}, "SECTION 7"},
	{[]string{"calendrier", "date", "semestre", "vacances", "calendar", "rentrée"}, "SECTION 8"},
	{[]string{"règlement", "discipline", "sanction", "interdiction", "droits", "devoirs", "regulation"}, "SECTION 9"},
	{[]string{"bibliothèque", "restaurant", "cantine", "logement", "résidence", "sport", "library", "service"}, "SECTION 10"},
	{[]string{"contact", "email", "téléphone", "urgence", "service", "bureau", "scolarité"}, "SECTION 11"},
}

// section is one "SECTION N: Title" block, header line included.
type section struct {
	key     string
	content string
}

// Provider loads the corpus file and serves extracted context from memory.
type Provider struct {
	path string

	mu       sync.RWMutex
	content  string
	sections []section
	watcher  *fsnotify.Watcher
	closed   bool
}

// New creates a provider for the corpus file at path. The file is not read
// until Load is called.
func New(path string) (*Provider, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve corpus path: %w", err)
	}
	return &Provider{path: absPath}, nil
}

// Path returns the absolute path of the corpus file.
func (p *Provider) Path() string {
	return p.path
}

// Load reads the corpus file and replaces the in-memory content.
func (p *Provider) Load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read corpus file %s: %w", p.path, err)
	}
	content := strings.TrimSpace(string(data))
	sections := parseSections(content)

	p.mu.Lock()
	p.content = content
	p.sections = sections
	p.mu.Unlock()

	slog.Info("Corpus loaded", "path", p.path, "sections", len(sections), "chars", len(content))
	return nil
}

// Loaded reports whether corpus content is available.
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content != ""
}

// Context returns the corpus sections relevant to the question, joined with
// blank lines and bounded by maxChars (counted in runes). Sections are
// selected by keyword; without a keyword match the default sections are
// used. When nothing can be extracted the head of the corpus is returned so
// the model always sees official content.
func (p *Provider) Context(question string, maxChars int) string {
	p.mu.RLock()
	content := p.content
	sections := p.sections
	p.mu.RUnlock()

	if content == "" || maxChars <= 0 {
		return ""
	}

	var extracted []string
	total := 0
	for _, key := range relevantSections(question) {
		sec, ok := findSection(sections, key)
		if !ok {
			continue
		}
		n := utf8.RuneCountInString(sec.content)
		if total+n < maxChars {
			extracted = append(extracted, sec.content)
			total += n
			continue
		}
		if remaining := maxChars - total; remaining > minPartialChars {
			extracted = append(extracted, truncateRunes(sec.content, remaining)+"\n...")
		}
		break
	}

	if len(extracted) == 0 {
		return truncateRunes(content, maxChars)
	}
	return strings.Join(extracted, "\n\n")
}

// relevantSections returns the section keys matching the question, in
// document order so extraction output is deterministic.
func relevantSections(question string) []string {
	q := strings.ToLower(question)

	var keys []string
	for _, ks := range keywordSections {
		for _, kw := range ks.keywords {
			if strings.Contains(q, kw) {
				keys = append(keys, ks.section)
				break
			}
		}
	}
	if len(keys) == 0 {
		keys = defaultSections
	}
	return keys
}

// parseSections splits the corpus into its section blocks. Text before the
// first header is ignored; the header line stays part of its block so
// answers can cite it.
func parseSections(content string) []section {
	var (
		sections []section
		key      string
		lines    []string
	)
	flush := func() {
		if key != "" {
			sections = append(sections, section{key: key, content: strings.Join(lines, "\n")})
		}
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, sectionPrefix) {
			flush()
			key = sectionKey(line)
			lines = []string{line}
			continue
		}
		if key != "" {
			lines = append(lines, line)
		}
	}
	flush()
	return sections
}

// sectionKey normalizes a header line to its "SECTION N" key. Keys are
// compared by equality so "SECTION 1" never claims "SECTION 10".
func sectionKey(line string) string {
	if before, _, ok := strings.Cut(line, ":"); ok {
		return strings.TrimSpace(before)
	}
	fields := strings.Fields(line)
	if len(fields) >= 2 {
		return fields[0] + " " + fields[1]
	}
	return strings.TrimSpace(line)
}

func findSection(sections []section, key string) (section, bool) {
	for _, sec := range sections {
		if sec.key == key {
			return sec, true
		}
	}
	return section{}, false
}

// truncateRunes cuts s to at most n runes without splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
