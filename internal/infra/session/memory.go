// Package session stores server-side sessions: the backend bearer token and
// display preferences behind each BFF token.
package session

import (
	"context"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/cache"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	items *cache.InMemory[domain.Session]
}

// NewMemoryStore creates a store whose sweeper runs every ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: cache.New[domain.Session](ttl)}
}

// Save stores a copy of s until s.ExpiresAt.
func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		m.items.Delete(s.ID)
		return nil
	}
	m.items.SetWithTTL(s.ID, *s, ttl)
	return nil
}

// Update overwrites an existing session. A session deleted meanwhile stays deleted.
func (m *MemoryStore) Update(_ context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		m.items.Delete(s.ID)
		return &domain.ErrNotFound{Resource: "session", ID: s.ID}
	}
	if !m.items.Replace(s.ID, *s, ttl) {
		return &domain.ErrNotFound{Resource: "session", ID: s.ID}
	}
	return nil
}

// Get returns a copy of the session, so callers can mutate it and Save it back.
func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.items.Get(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	return &s, nil
}

// Delete forgets the session. Unknown ids are ignored.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.items.Delete(id)
	return nil
}

// Close stops the background sweeper.
func (m *MemoryStore) Close() error {
	m.items.Close()
	return nil
}
