package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"grimm.is/wingwifi/internal/state"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store persists sessions between requests.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func clone(s *Session) (*Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Load returns a copy of the stored session.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s)
}

// Save stores a copy of s.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	c, err := clone(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.ID] = c
	m.mu.Unlock()
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Bucket is the state bucket holding sessions.
const Bucket = "sessions"

// StateStore keeps sessions in the SQLite state store.
// Entries expire after ttl so abandoned sessions are purged.
type StateStore struct {
	store state.Store
	ttl   time.Duration
}

// NewStateStore creates the sessions bucket if needed.
func NewStateStore(store state.Store, ttl time.Duration) (*StateStore, error) {
	if err := store.CreateBucket(Bucket); err != nil && !errors.Is(err, state.ErrBucketExists) {
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}
	return &StateStore{store: store, ttl: ttl}, nil
}

// Load reads a session.
func (s *StateStore) Load(_ context.Context, id string) (*Session, error) {
	var sess Session
	if err := s.store.GetJSON(Bucket, id, &sess); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Save writes a session with a fresh expiry.
func (s *StateStore) Save(_ context.Context, sess *Session) error {
	return s.store.SetJSONWithTTL(Bucket, sess.ID, sess, s.ttl)
}

// Delete removes a session.
func (s *StateStore) Delete(_ context.Context, id string) error {
	if err := s.store.Delete(Bucket, id); err != nil && !errors.Is(err, state.ErrNotFound) {
		return err
	}
	return nil
}

// RedisStore keeps sessions in Redis under prefix+id with a key TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Load reads a session.
func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save writes a session with a fresh expiry.
func (r *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+sess.ID, data, r.ttl).Err()
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.prefix+id).Err()
}
