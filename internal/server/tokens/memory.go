package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/common"
)

type memoryEntry struct {
	userID  string
	expires time.Time
}

// MemoryStore is the process-local Store used when no Redis address is
// configured. Expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key(token)] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pop(key(token))
	if !ok {
		return "", common.ErrRefreshTokenExpired
	}
	return e.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pop(key(token)); !ok {
		return common.ErrRefreshTokenExpired
	}
	return nil
}

// pop must be called with mu held.
func (s *MemoryStore) pop(k string) (memoryEntry, bool) {
	e, ok := s.entries[k]
	if !ok {
		return memoryEntry{}, false
	}
	delete(s.entries, k)
	if !s.now().Before(e.expires) {
		return memoryEntry{}, false
	}
	return e, true
}
