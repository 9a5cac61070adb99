// Package session remembers the expression each visitor last submitted.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	expr    string
	expires time.Time
}

// Store maps session IDs to expression text. It is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	m   map[uuid.UUID]entry
	ttl time.Duration
	now func() time.Time
}

// New creates a store whose entries expire ttl after they are last set.
func New(ttl time.Duration) *Store {
	return &Store{
		m:   make(map[uuid.UUID]entry),
		ttl: ttl,
		now: time.Now,
	}
}

// Create starts a new session holding expr and returns its ID.
func (s *Store) Create(expr string) uuid.UUID {
	id := uuid.New()
	s.Set(id, expr)
	return id
}

// Set stores expr in the session id, renewing its expiry.
func (s *Store) Set(id uuid.UUID, expr string) {
	s.mu.Lock()
	s.m[id] = entry{expr: expr, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

// Get returns the expression stored in session id, if the session exists and
// has not expired.
func (s *Store) Get(id uuid.UUID) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(e.expires) {
		return "", false
	}
	return e.expr, true
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.m {
		if !now.Before(e.expires) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, including expired ones not yet
// swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
