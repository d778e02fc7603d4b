package httpapi

import (
	"sync"
	"time"

	"callcenter-relance/internal/flow"

	"github.com/google/uuid"
)

// Session is one server-side call flow session. Transitions are
// serialized by the session mutex; the flow value itself assumes an
// exclusive driver.
type Session struct {
	ID string

	mu       sync.Mutex
	flow     *flow.Flow
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's flow.
func (s *Session) Do(fn func(f *flow.Flow) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return fn(s.flow)
}

// SessionRegistry holds the in-flight flow sessions of this instance.
// Sessions are memory-only: a restart discards them, the journal keeps
// only saved actions.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: map[string]*Session{}}
}

func (r *SessionRegistry) Add(f *flow.Flow) *Session {
	s := &Session{ID: uuid.NewString(), flow: f, lastSeen: time.Now()}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s
}

func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops a session, typically once its flow completes.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Prune drops sessions idle longer than maxIdle and returns how many
// were dropped. main runs this on a ticker.
func (r *SessionRegistry) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
