package history

import "time"

// ChatEntry is one answered question in the durable history.
type ChatEntry struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
}

// ChatStore persists answered questions across restarts.
type ChatStore struct {
	*Store[ChatEntry]
}

// NewChatStore opens the chat history at path.
func NewChatStore(path string, maxItems int) (*ChatStore, error) {
	s, err := NewStore[ChatEntry](path, maxItems)
	if err != nil {
		return nil, err
	}
	return &ChatStore{Store: s}, nil
}

// ListBySession returns one session's entries in append order.
func (s *ChatStore) ListBySession(sessionID string) []ChatEntry {
	return s.Filter(func(e ChatEntry) bool {
		return e.SessionID == sessionID
	})
}
