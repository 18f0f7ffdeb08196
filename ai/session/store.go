// Package session keeps per-user conversation context for the router.
// Sessions live for the process lifetime; nothing is persisted.
package session

import (
	"sync"
)

// DefaultContextSize is the number of recent queries kept per user, and the upper bound.
const DefaultContextSize = 10

// UserSession is the routing state of a single user.
// All methods are safe for concurrent use; the lock covers only this user.
type UserSession struct {
	mu               sync.Mutex
	userID           string
	context          []string
	maxSize          int
	reroutingCounter int
}

func newUserSession(userID string, maxSize int) *UserSession {
	return &UserSession{
		userID:  userID,
		maxSize: maxSize,
		context: make([]string, 0, maxSize),
	}
}

// UserID returns the session key.
func (s *UserSession) UserID() string {
	return s.userID
}

// AddContext appends a query and evicts the oldest entries beyond capacity.
// Eviction follows submission order, not access.
func (s *UserSession) AddContext(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.context = append(s.context, query)
	if over := len(s.context) - s.maxSize; over > 0 {
		s.context = append(s.context[:0], s.context[over:]...)
	}
}

// Context returns a copy of the context, oldest first.
func (s *UserSession) Context() []string {
	return s.RecentContext(0)
}

// RecentContext returns up to n most recent entries, oldest first.
// n <= 0 returns the whole context.
func (s *UserSession) RecentContext(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.context
	if n > 0 && n < len(entries) {
		entries = entries[len(entries)-n:]
	}
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// IncrementRerouting bumps the rerouting counter and returns the new value.
func (s *UserSession) IncrementRerouting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reroutingCounter++
	return s.reroutingCounter
}

// ResetRerouting sets the rerouting counter back to zero.
func (s *UserSession) ResetRerouting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reroutingCounter = 0
}

// ReroutingCounter returns the current counter value.
func (s *UserSession) ReroutingCounter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reroutingCounter
}

// Store maps user ids to sessions.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*UserSession
	contextSize int
}

// NewStore creates a store keeping contextSize queries per user.
// Sizes outside 1..DefaultContextSize use DefaultContextSize.
func NewStore(contextSize int) *Store {
	if contextSize <= 0 || contextSize > DefaultContextSize {
		contextSize = DefaultContextSize
	}
	return &Store{
		sessions:    make(map[string]*UserSession),
		contextSize: contextSize,
	}
}

// GetOrCreate returns the session for userID, creating it on first access.
func (s *Store) GetOrCreate(userID string) *UserSession {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have created it between the locks.
	if sess, ok = s.sessions[userID]; ok {
		return sess
	}
	sess = newUserSession(userID, s.contextSize)
	s.sessions[userID] = sess
	return sess
}

// Lookup returns an existing session without creating one.
func (s *Store) Lookup(userID string) (*UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
