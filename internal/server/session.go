package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstate/internal/dashboard"
)

// Message kinds pushed to websocket subscribers.
const (
	MessageSnapshot = "snapshot"
	MessageButton   = "button"
)

const (
	pendingSnapshot uint8 = 1 << iota
	pendingButton
)

// Session is one open edit page.
type Session struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	RecordID  string    `json:"recordId"`
	CreatedAt time.Time `json:"createdAt"`

	page       dashboard.Page
	submitting atomic.Bool
	lastActive atomic.Int64

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// subscriber coalesces notifications: a slow reader sees the latest state
// once instead of every intermediate one.
type subscriber struct {
	mu      sync.Mutex
	pending uint8
	signal  chan struct{}
}

func newSession(kind, recordID string, now time.Time) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		RecordID:  recordID,
		CreatedAt: now,
		subs:      make(map[*subscriber]struct{}),
	}
	s.touch(now)
	return s
}

// Page returns the session's page.
func (s *Session) Page() dashboard.Page { return s.page }

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActive.Load()))
}

func (s *Session) subscribe() (*subscriber, func()) {
	sub := &subscriber{signal: make(chan struct{}, 1)}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub, func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}
}

func (s *Session) publish(kind uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		sub.mu.Lock()
		sub.pending |= kind
		sub.mu.Unlock()
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

func (sub *subscriber) take() uint8 {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	pending := sub.pending
	sub.pending = 0
	return pending
}

// Manager tracks open sessions.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewManager creates a manager. Sessions idle longer than idleTimeout are
// closed by Sweep; zero disables expiry.
func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (m *Manager) add(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// Get returns the session with id and marks it active.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// Remove closes and forgets session id.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.page.Close()
	}
	return ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes idle sessions and returns how many it removed. Sessions
// with a submit in flight are kept.
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	now := m.now()
	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince(now) > m.idleTimeout && !s.submitting.Load() {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range expired {
		s.page.Close()
	}
	return len(expired)
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.page.Close()
	}
}
