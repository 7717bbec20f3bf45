package server

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit/internal/session"
)

// store holds live sessions by id.
type store struct {
	mu sync.Mutex
	m  map[uuid.UUID]*session.Session
	// max bounds the number of sessions. When full, creating a session
	// evicts the one idle longest.
	max int
}

func newStore(max int) *store {
	return &store{m: make(map[uuid.UUID]*session.Session), max: max}
}

func (s *store) create(log *zap.Logger) (uuid.UUID, *session.Session) {
	id := uuid.New()
	ss := session.New(log.With(zap.Stringer("session", id)))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.m) >= s.max {
		s.evictLocked()
	}
	s.m[id] = ss
	return id, ss
}

func (s *store) evictLocked() {
	var oldest uuid.UUID
	var found *session.Session
	for id, ss := range s.m {
		if found == nil || ss.Touched().Before(found.Touched()) {
			oldest, found = id, ss
		}
	}
	delete(s.m, oldest)
}

func (s *store) get(id uuid.UUID) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.m[id]
	return ss, ok
}

func (s *store) remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	delete(s.m, id)
	return ok
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
