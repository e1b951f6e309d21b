package dedup

import (
	"context"
	"sync"
	"time"
)

// sweepEvery — как часто Seen чистит протухшие ключи
const sweepEvery = 1024

// Memory is the single-process DedupStore used when Redis is not configured.
type Memory struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
	calls int
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *Memory) Seen(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.calls++
	if m.calls%sweepEvery == 0 {
		for k, exp := range m.seen {
			if now.After(exp) {
				delete(m.seen, k)
			}
		}
	}

	if exp, ok := m.seen[id]; ok && !now.After(exp) {
		return true, nil
	}
	m.seen[id] = now.Add(m.ttl)
	return false, nil
}
