package session

import (
	"context"
	"sync"
	"time"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

// MemoryStore keeps sessions in-process. Suitable for a single dashboard
// instance; use RedisStore when running more than one.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]Session{},
		now:      time.Now,
	}
}

func (s *MemoryStore) Set(_ context.Context, id, token string, user clinic.User, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = Session{
		Token:     token,
		User:      user,
		ExpiresAt: s.now().Add(ttl),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	if sess.expired(s.now()) {
		delete(s.sessions, id)
		return Session{}, false
	}
	return sess, true
}

func (s *MemoryStore) Clear(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	return existed
}
