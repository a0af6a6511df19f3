// /internal/session/manager.go
package session

import "sync"

// Manager holds active sessions per user. Safe for concurrent use. The busy
// flag rejects a second turn from the same user while the first one is still
// waiting on the provider: the transport serializes messages per user, but a
// learner can type faster than the model answers.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	busy     map[string]bool
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		busy:     make(map[string]bool),
	}
}

func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *Manager) Put(userID string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// Discard drops the user's session, if any, without scoring. Terminate may
// block behind a turn in flight, so it runs outside the manager lock; the
// session is already unreachable by then.
func (m *Manager) Discard(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	delete(m.busy, userID)
	m.mu.Unlock()

	if ok {
		s.Terminate()
	}
}

// TryAcquire marks the user as processing a turn. Returns false if a turn is
// already in flight.
func (m *Manager) TryAcquire(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy[userID] {
		return false
	}
	m.busy[userID] = true
	return true
}

func (m *Manager) Release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, userID)
}
