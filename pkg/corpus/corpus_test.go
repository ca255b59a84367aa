package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

const testCorpus = `UNIVERSITÉ DE TUNIS - GUIDE ADMINISTRATIF 2025

SECTION 1: INSCRIPTION ET RÉINSCRIPTION
Les inscriptions se font en ligne du 1er au 30 septembre.
Documents obligatoires: CIN, photos d'identité, attestation du baccalauréat.

SECTION 2: CERTIFICATS ET ATTESTATIONS
Le certificat de scolarité est délivré sous 48 heures au bureau B12.

SECTION 4: STAGES
La convention de stage doit être signée avant le début du stage.

SECTION 9: RÈGLEMENT INTÉRIEUR
Tout étudiant doit respecter le règlement intérieur de l'établissement.

SECTION 10: SERVICES AUX ÉTUDIANTS
La bibliothèque est ouverte de 8h à 20h en semaine.

SECTION 11: CONTACTS UTILES
Scolarité: scolarite@univ.tn, bureau A1.`

func writeCorpus(t *testing.T, content string) *Provider {
	t.Helper()

	path := filepath.Join(t.TempDir(), "documents.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write corpus file: %v", err)
	}
	p, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return p
}

func TestLoadMissingFile(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Load(); err == nil {
		t.Error("Load() expected error for missing file")
	}
	if p.Loaded() {
		t.Error("Loaded() = true for missing file")
	}
}

func TestLoaded(t *testing.T) {
	p := writeCorpus(t, testCorpus)
	if !p.Loaded() {
		t.Error("Loaded() = false after Load")
	}
}

func TestContextSelectsSections(t *testing.T) {
	p := writeCorpus(t, testCorpus)

	tests := []struct {
		name     string
		question string
		wantIn   []string
		wantOut  []string
	}{
		{
			name:     "certificate keyword",
			question: "Comment obtenir un certificat?",
			wantIn:   []string{"SECTION 2:", "48 heures"},
			wantOut:  []string{"SECTION 4:", "SECTION 10:"},
		},
		{
			name:     "internship keyword",
			question: "Je cherche un stage en entreprise",
			wantIn:   []string{"SECTION 4:", "convention de stage"},
			wantOut:  []string{"SECTION 2:"},
		},
		{
			name:     "matching is case insensitive",
			question: "OÙ EST LA BIBLIOTHÈQUE?",
			wantIn:   []string{"SECTION 10:", "8h à 20h"},
			wantOut:  []string{"SECTION 4:"},
		},
		{
			name:     "no keyword falls back to default sections",
			question: "pourquoi?",
			wantIn:   []string{"SECTION 1:", "SECTION 2:", "SECTION 9:"},
			wantOut:  []string{"SECTION 4:", "SECTION 10:"},
		},
		{
			name:     "section one does not claim section ten or eleven",
			question: "dossier d'inscription",
			wantIn:   []string{"SECTION 1:", "30 septembre"},
			wantOut:  []string{"SECTION 10:", "SECTION 11:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Context(tt.question, 4000)
			for _, want := range tt.wantIn {
				if !strings.Contains(got, want) {
					t.Errorf("Context(%q) missing %q in:\n%s", tt.question, want, got)
				}
			}
			for _, notWant := range tt.wantOut {
				if strings.Contains(got, notWant) {
					t.Errorf("Context(%q) unexpectedly contains %q", tt.question, notWant)
				}
			}
		})
	}
}

func TestContextBudget(t *testing.T) {
	doc := "SECTION 1: INSCRIPTION\n" + strings.Repeat("a", 300) +
		"\nSECTION 2: CERTIFICATS\n" + strings.Repeat("b", 800)
	p := writeCorpus(t, doc)

	// Section blocks include their header line.
	lenA := utf8.RuneCountInString("SECTION 1: INSCRIPTION\n" + strings.Repeat("a", 300))
	question := "inscription certificat"

	t.Run("both sections fit", func(t *testing.T) {
		got := p.Context(question, 2000)
		if !strings.Contains(got, strings.Repeat("a", 300)) || !strings.Contains(got, strings.Repeat("b", 800)) {
			t.Errorf("Context() should include both sections in full:\n%s", got)
		}
		if !strings.Contains(got, "\n\n") {
			t.Error("Context() should join sections with a blank line")
		}
	})

	t.Run("partial section when budget remains", func(t *testing.T) {
		got := p.Context(question, 900)
		if !strings.Contains(got, strings.Repeat("a", 300)) {
			t.Error("Context() should include the first section in full")
		}
		if !strings.HasSuffix(got, "\n...") {
			t.Errorf("Context() should mark the truncated section, got tail %q", got[len(got)-10:])
		}
		// 900 - lenA runes of section 2, of which 23 are the header line.
		wantB := 900 - lenA - utf8.RuneCountInString("SECTION 2: CERTIFICATS\n")
		if !strings.Contains(got, strings.Repeat("b", wantB)) {
			t.Errorf("Context() should include %d chars of the second section", wantB)
		}
		if strings.Contains(got, strings.Repeat("b", wantB+1)) {
			t.Error("Context() includes more of the second section than the budget allows")
		}
	})

	t.Run("small leftover budget skips the section", func(t *testing.T) {
		got := p.Context(question, 700)
		if !strings.Contains(got, strings.Repeat("a", 300)) {
			t.Error("Context() should include the first section in full")
		}
		if strings.Contains(got, "SECTION 2") {
			t.Errorf("Context() should drop the second section when under %d chars remain", minPartialChars)
		}
	})

	t.Run("nothing extracted falls back to corpus head", func(t *testing.T) {
		got := p.Context(question, lenA)
		if want := truncateRunes(doc, lenA); got != want {
			t.Errorf("Context() = %q, want first %d chars of corpus", got, lenA)
		}
	})
}

func TestContextWithoutSectionHeaders(t *testing.T) {
	p := writeCorpus(t, "Guide pratique sans structure particulière pour les étudiants.")

	got := p.Context("inscription", 13)
	if got != "Guide pratiqu" {
		t.Errorf("Context() = %q, want first 13 chars", got)
	}
}

func TestContextEmptyProvider(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "documents.txt"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := p.Context("inscription", 4000); got != "" {
		t.Errorf("Context() = %q, want empty for unloaded corpus", got)
	}
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantKeys []string
	}{
		{
			name:     "preamble before first header is ignored",
			content:  "titre\n\nSECTION 1: A\nx\nSECTION 2: B\ny",
			wantKeys: []string{"SECTION 1", "SECTION 2"},
		},
		{
			name:     "header without colon",
			content:  "SECTION 3 BOURSES\ncontenu",
			wantKeys: []string{"SECTION 3"},
		},
		{
			name:     "no headers",
			content:  "du texte sans sections",
			wantKeys: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := parseSections(tt.content)
			if len(sections) != len(tt.wantKeys) {
				t.Fatalf("parseSections() returned %d sections, want %d", len(sections), len(tt.wantKeys))
			}
			for i, want := range tt.wantKeys {
				if sections[i].key != want {
					t.Errorf("sections[%d].key = %q, want %q", i, sections[i].key, want)
				}
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("truncateRunes() = %q, want %q", got, "hé")
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("truncateRunes() = %q, want %q", got, "abc")
	}
	if got := truncateRunes("abc", 0); got != "" {
		t.Errorf("truncateRunes() = %q, want empty", got)
	}
}

func TestWatchSignalsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.txt")
	if err := os.WriteFile(path, []byte("SECTION 1: A\nancien contenu"), 0o644); err != nil {
		t.Fatalf("failed to write corpus file: %v", err)
	}

	p, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer p.Close()

	if err := os.WriteFile(path, []byte("SECTION 1: A\nnouveau contenu"), 0o644); err != nil {
		t.Fatalf("failed to rewrite corpus file: %v", err)
	}

	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed before signalling")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}

	if err := p.Load(); err != nil {
		t.Fatalf("Load() after change error = %v", err)
	}
	if got := p.Context("inscription", 4000); !strings.Contains(got, "nouveau contenu") {
		t.Errorf("Context() after reload = %q, want updated content", got)
	}
}

func TestWatchAfterClose(t *testing.T) {
	p := writeCorpus(t, testCorpus)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := p.Watch(context.Background()); err == nil {
		t.Error("Watch() expected error after Close")
	}
}

func TestTokenCounterEstimateFallback(t *testing.T) {
	var tc *TokenCounter

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "four chars", text: "test", want: 1},
		{name: "nine chars", text: "testtests", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tc.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}

	if tc.Model() != "" {
		t.Errorf("Model() = %q, want empty for nil counter", tc.Model())
	}
}

func TestTokenCounterEncoding(t *testing.T) {
	counter, err := NewTokenCounter("llama-3.1-8b-instant")
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}

	if counter.Model() != "llama-3.1-8b-instant" {
		t.Errorf("Model() = %q, want %q", counter.Model(), "llama-3.1-8b-instant")
	}

	count := counter.Count("Hello, world!")
	if count < 3 || count > 5 {
		t.Errorf("Count() = %d, want between 3 and 5", count)
	}

	// A second counter for the same model reuses the cached encoding.
	again, err := NewTokenCounter("llama-3.1-8b-instant")
	if err != nil {
		t.Fatalf("NewTokenCounter() second call error = %v", err)
	}
	if got := again.Count("Hello, world!"); got != count {
		t.Errorf("cached counter Count() = %d, want %d", got, count)
	}
}
