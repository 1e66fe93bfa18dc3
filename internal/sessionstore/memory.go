package sessionstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/medemi-triage-server/internal/domain"
)

// MemoryStore keeps encoded sessions in a size-bounded LRU with expiry.
// Sessions are stored encoded so callers never share mutable state.
type MemoryStore struct {
	cache *expirable.LRU[string, []byte]
}

// NewMemoryStore creates an in-process store holding at most maxSessions.
func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, []byte](maxSessions, nil, ttl),
	}
}

func (m *MemoryStore) Save(ctx context.Context, session *domain.SessionContext) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	m.cache.Add(session.ID, data)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*domain.SessionContext, error) {
	data, ok := m.cache.Get(id)
	if !ok {
		return nil, notFound(id)
	}
	return decodeSession(data)
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	return m.cache.Len(), nil
}

func (m *MemoryStore) Close() error {
	m.cache.Purge()
	return nil
}
