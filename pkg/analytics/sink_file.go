package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileSink persists events as a JSON array capped at the most recent
// maxEvents entries. Writes go through a temp file and rename so the file
// is never observed half-written; a corrupted file is moved aside to
// .backup and recording starts fresh.
type FileSink struct {
	path      string
	maxEvents int

	mu     sync.Mutex
	events []Event
}

// NewFileSink opens (or creates) the sink file at path.
func NewFileSink(path string, maxEvents int) (*FileSink, error) {
	s := &FileSink{
		path:      path,
		maxEvents: maxEvents,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSink) load() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create analytics directory: %w", err)
		}
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.events = []Event{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read analytics file: %w", err)
	}

	if err := json.Unmarshal(data, &s.events); err != nil {
		// Corrupted file: move it aside and start fresh.
		backupPath := s.path + ".backup"
		if renameErr := os.Rename(s.path, backupPath); renameErr == nil {
			slog.Warn("Analytics file corrupted, moved aside",
				"path", s.path,
				"backup", backupPath)
		}
		s.events = []Event{}
	}
	return nil
}

// Append stores one event and persists the capped list.
func (s *FileSink) Append(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, e)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	return s.saveUnlocked()
}

// saveUnlocked persists the events atomically. Callers hold the mutex.
func (s *FileSink) saveUnlocked() error {
	data, err := json.MarshalIndent(s.events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Summary returns per-event-name counts over the retained events.
func (s *FileSink) Summary(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := make(map[string]int, 8)
	for _, e := range s.events {
		summary[e.Event]++
	}
	return summary, nil
}

// Len returns the number of retained events.
func (s *FileSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Close is a no-op; every append already persisted.
func (s *FileSink) Close() error {
	return nil
}
