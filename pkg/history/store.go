// Package history persists durable chat and email histories as capped JSON
// files that survive restarts.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store is a mutex-guarded, capped JSON list persisted to one file. Saves
// are atomic (temp file + rename) so the file is never observed
// half-written; a corrupted file is moved aside to .backup and the store
// starts fresh.
type Store[T any] struct {
	path     string
	maxItems int

	mu    sync.Mutex
	items []T
}

// NewStore opens (or creates) the store at path, retaining at most
// maxItems entries.
func NewStore[T any](path string, maxItems int) (*Store[T], error) {
	s := &Store[T]{
		path:     path,
		maxItems: maxItems,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store[T]) load() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.items = []T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	if err := json.Unmarshal(data, &s.items); err != nil {
		// Corrupted file: move it aside and start fresh.
		backupPath := s.path + ".backup"
		if renameErr := os.Rename(s.path, backupPath); renameErr == nil {
			slog.Warn("History file corrupted, moved aside",
				"path", s.path,
				"backup", backupPath)
		}
		s.items = []T{}
	}
	return nil
}

// Append stores one entry, dropping the oldest beyond the cap, and
// persists the list.
func (s *Store[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, item)
	if len(s.items) > s.maxItems {
		s.items = s.items[len(s.items)-s.maxItems:]
	}
	return s.saveUnlocked()
}

// List returns a copy of all retained entries in append order.
func (s *Store[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Filter returns a copy of the entries keep reports true for, in append
// order.
func (s *Store[T]) Filter(keep func(T) bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []T{}
	for _, item := range s.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Clear drops every entry and persists the empty list.
func (s *Store[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []T{}
	return s.saveUnlocked()
}

// Len returns the number of retained entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// saveUnlocked persists the entries atomically. Callers hold the mutex.
func (s *Store[T]) saveUnlocked() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
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
