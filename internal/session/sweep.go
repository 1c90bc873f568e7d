package session

import (
	"context"
	"time"
)

// Sweeper drops sessions idle since before cutoff and reports how many remain.
type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (active int, err error)
}

// Sweep removes expired sessions from the backing store, if it supports it.
// Stores that expire keys natively only report their size.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	sw, ok := m.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sw.Sweep(ctx, m.clock.Now().Add(-m.opts.Timeout))
}

// Sweep implements Sweeper.
func (m *MemoryStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if !s.LastActivity.IsZero() && s.LastActivity.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
	return len(m.sessions), nil
}

// Sweep implements Sweeper. Expiry is tracked by the state store TTL.
func (s *StateStore) Sweep(_ context.Context, _ time.Time) (int, error) {
	if p, ok := s.store.(interface{ PurgeExpired() (int64, error) }); ok {
		if _, err := p.PurgeExpired(); err != nil {
			return 0, err
		}
	}
	keys, err := s.store.ListKeys(Bucket)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Sweep implements Sweeper. Redis expires keys itself.
func (r *RedisStore) Sweep(ctx context.Context, _ time.Time) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}
