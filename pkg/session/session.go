// Package session manages conversation sessions: identifier issuance,
// inactivity expiry, language preference, and the in-session exchange
// history used for prompt context.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"sync"
	"time"
)

// DefaultLanguage is assigned to fresh sessions until the client picks one.
const DefaultLanguage = "FR"

// Exchange is one answered question inside a session.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

// Session is a point-in-time snapshot of a conversation's metadata.
// Snapshots are values; mutating one never affects the manager's state.
type Session struct {
	ID             string    `json:"id"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type state struct {
	id             string
	language       string
	createdAt      time.Time
	lastActivityAt time.Time
	exchanges      []Exchange
}

// Manager owns every session in the process behind one mutex.
type Manager struct {
	timeout    time.Duration
	maxHistory int

	mu       sync.Mutex
	sessions map[string]*state
	now      func() time.Time
	rand     io.Reader
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithRand replaces the randomness source for identifier generation.
func WithRand(r io.Reader) Option {
	return func(m *Manager) {
		m.rand = r
	}
}

// New creates a manager that expires sessions after timeout of inactivity
// and caps each session's exchange history at maxHistory entries.
func New(timeout time.Duration, maxHistory int, opts ...Option) *Manager {
	m := &Manager{
		timeout:    timeout,
		maxHistory: maxHistory,
		sessions:   make(map[string]*state),
		now:        time.Now,
		rand:       rand.Reader,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate returns the session for id when it exists and has not
// expired. Any other id, empty, unknown, or expired, yields a fresh
// session under a newly generated identifier: client-supplied ids are
// never adopted and expired ids are never re-issued. The second result
// reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if id != "" {
		if st, ok := m.sessions[id]; ok {
			if now.Sub(st.lastActivityAt) <= m.timeout {
				return snapshot(st), false
			}
			delete(m.sessions, id)
		}
	}

	st := &state{
		id:             newID(now, m.rand),
		language:       DefaultLanguage,
		createdAt:      now,
		lastActivityAt: now,
	}
	m.sessions[st.id] = st
	return snapshot(st), true
}

// Get returns the session snapshot for id without creating or touching
// anything. Unknown and expired ids report false.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok || m.now().Sub(st.lastActivityAt) > m.timeout {
		return Session{}, false
	}
	return snapshot(st), true
}

// Touch updates the session's last activity time. The timestamp never
// moves backwards.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return
	}
	if now := m.now(); now.After(st.lastActivityAt) {
		st.lastActivityAt = now
	}
}

// IsExpired reports whether the snapshot's inactivity exceeds the timeout.
func (m *Manager) IsExpired(s Session) bool {
	return m.now().Sub(s.LastActivityAt) > m.timeout
}

// SetLanguage records the session's language preference.
func (m *Manager) SetLanguage(id, lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.sessions[id]; ok {
		st.language = lang
	}
}

// AppendExchange appends one answered question to the session's history,
// dropping the oldest entries beyond the cap.
func (m *Manager) AppendExchange(id string, ex Exchange) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return
	}
	st.exchanges = append(st.exchanges, ex)
	if len(st.exchanges) > m.maxHistory {
		st.exchanges = st.exchanges[len(st.exchanges)-m.maxHistory:]
	}
}

// Exchanges returns a copy of the session's most recent lastN exchanges in
// chronological order. lastN <= 0 returns the whole retained history.
func (m *Manager) Exchanges(id string, lastN int) []Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil
	}
	ex := st.exchanges
	if lastN > 0 && len(ex) > lastN {
		ex = ex[len(ex)-lastN:]
	}
	out := make([]Exchange, len(ex))
	copy(out, ex)
	return out
}

// Count returns the number of live sessions, dropping expired ones as it
// scans.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, st := range m.sessions {
		if now.Sub(st.lastActivityAt) > m.timeout {
			delete(m.sessions, id)
		}
	}
	return len(m.sessions)
}

func snapshot(st *state) Session {
	return Session{
		ID:             st.id,
		Language:       st.language,
		CreatedAt:      st.createdAt,
		LastActivityAt: st.lastActivityAt,
	}
}

// newID derives a session identifier that is one-way and never a function
// of client input: hex(SHA-256(creation time + 8 random bytes)) truncated
// to 16 characters.
func newID(now time.Time, r io.Reader) string {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		binary.BigEndian.PutUint64(buf, uint64(now.UnixNano()))
	}
	sum := sha256.Sum256([]byte(now.Format(time.RFC3339Nano) + "_" + hex.EncodeToString(buf)))
	return hex.EncodeToString(sum[:])[:16]
}
