package history

import "time"

// EmailEntry is one generated administrative email.
type EmailEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
}

// EmailStore persists generated emails across restarts.
type EmailStore struct {
	*Store[EmailEntry]
}

// NewEmailStore opens the email history at path.
func NewEmailStore(path string, maxItems int) (*EmailStore, error) {
	s, err := NewStore[EmailEntry](path, maxItems)
	if err != nil {
		return nil, err
	}
	return &EmailStore{Store: s}, nil
}
