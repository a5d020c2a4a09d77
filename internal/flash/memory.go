package flash

import (
	"context"
	"sync"
	"time"

	"github.com/pribylovaa/storefront-console/internal/view"
)

type entry struct {
	alert     view.Alert
	expiresAt time.Time
}

// MemoryStore — флеши в памяти процесса (одна реплика, локальный запуск).
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, id string, a view.Alert) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// Попутно выметаем истёкшие, чтобы непрочитанные флеши не копились.
	for k, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, k)
		}
	}

	s.items[id] = entry{alert: a, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, id string) (*view.Alert, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	delete(s.items, id)

	if s.now().After(e.expiresAt) {
		return nil, nil
	}

	a := e.alert
	return &a, nil
}

func (s *MemoryStore) Close() error { return nil }
