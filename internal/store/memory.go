package store

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory keeps history in process. Sessions expire after the TTL of
// inactivity.
type Memory struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewMemory creates an in-memory store. A zero ttl means 24 hours.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Memory{cache: cache.New(ttl, 10*time.Minute)}
}

func (m *Memory) History(ctx context.Context, session string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if x, found := m.cache.Get(session); found {
		msgs := x.([]Message)
		out := make([]Message, len(msgs))
		copy(out, msgs)
		return out, nil
	}
	return nil, nil
}

func (m *Memory) Append(ctx context.Context, session string, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cur []Message
	if x, found := m.cache.Get(session); found {
		cur = x.([]Message)
	}
	next := make([]Message, 0, len(cur)+len(msgs))
	next = append(next, cur...)
	next = append(next, msgs...)
	m.cache.Set(session, next, cache.DefaultExpiration)
	return nil
}

func (m *Memory) Reset(ctx context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Delete(session)
	return nil
}
