// Package session keeps per-browser dashboard input in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/joeblew999/zurich-quartiere/internal/metrics"
	"github.com/joeblew999/zurich-quartiere/internal/workflow"
)

// CookieName is the session cookie.
const CookieName = "zm_session"

// Session is one browser's dashboard state.
type Session struct {
	ID string

	mu    sync.Mutex
	input workflow.Input
}

// Input returns a copy of the last input.
func (s *Session) Input() workflow.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Update applies fn to the stored input and returns the result.
func (s *Session) Update(fn func(*workflow.Input)) workflow.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.input)
	return s.input
}

// Store holds sessions until they have been idle for the TTL or are pushed
// out by newer ones.
type Store struct {
	cache *expirable.LRU[string, *Session]
}

// NewStore creates a store of at most size sessions.
func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{cache: expirable.NewLRU[string, *Session](size, nil, ttl)}
}

// Get returns the live session for id.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	sess, ok := s.cache.Get(id)
	if ok {
		// refresh the idle timer
		s.cache.Add(id, sess)
	}
	return sess, ok
}

// Create starts a new empty session.
func (s *Store) Create() *Session {
	sess := &Session{ID: uuid.NewString()}
	s.cache.Add(sess.ID, sess)
	metrics.SessionsCreatedTotal.Inc()
	return sess
}

// GetOrCreate returns the session for id, creating one when id is unknown
// or expired. created reports whether a cookie must be set.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.Len() }
