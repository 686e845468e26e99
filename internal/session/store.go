package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Store loads and saves session states by id. Load returns a fresh state
// when the id is unknown or expired.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
	Delete(ctx context.Context, id string) error
}

// Limits applied by NewMemoryStore. A single session may hold an upload of
// several megabytes, so the byte cap matters more than the count.
const (
	DefaultMaxSessions     = 10000
	DefaultMaxSessionBytes = 256 << 20
)

// MemoryStore keeps sessions in process. States are stored as encoded
// snapshots so a caller's later mutations never leak into the store. When
// a limit is exceeded the sessions closest to expiry are evicted first.
type MemoryStore struct {
	mu         sync.Mutex
	items      map[string]memEntry
	size       int
	ttl        time.Duration
	maxEntries int
	maxBytes   int
	now        func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		items:      make(map[string]memEntry),
		ttl:        ttl,
		maxEntries: DefaultMaxSessions,
		maxBytes:   DefaultMaxSessionBytes,
		now:        time.Now,
	}
}

// SetLimits changes the session count and byte caps. Zero or negative
// values leave the current limit in place.
func (m *MemoryStore) SetLimits(maxEntries, maxBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if maxEntries > 0 {
		m.maxEntries = maxEntries
	}
	if maxBytes > 0 {
		m.maxBytes = maxBytes
	}
	m.evictLocked("")
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[id]
	if !ok {
		return New(), nil
	}
	if m.now().After(e.expires) {
		m.removeLocked(id)
		return New(), nil
	}
	return decode(e.data)
}

func (m *MemoryStore) Save(_ context.Context, id string, st *State) error {
	now := m.now()
	st.UpdatedAt = now
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
	m.items[id] = memEntry{data: b, expires: now.Add(m.ttl)}
	m.size += len(b)
	m.sweepLocked(now)
	m.evictLocked(id)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Size reports the encoded bytes held.
func (m *MemoryStore) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func (m *MemoryStore) removeLocked(id string) {
	if e, ok := m.items[id]; ok {
		m.size -= len(e.data)
		delete(m.items, id)
	}
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for id, e := range m.items {
		if now.After(e.expires) {
			m.removeLocked(id)
		}
	}
}

// evictLocked drops the sessions nearest to expiry until both limits hold.
// keep is never evicted.
func (m *MemoryStore) evictLocked(keep string) {
	for len(m.items) > m.maxEntries || m.size > m.maxBytes {
		victim, found := "", false
		var soonest time.Time
		for id, e := range m.items {
			if id == keep {
				continue
			}
			if !found || e.expires.Before(soonest) {
				victim, soonest, found = id, e.expires, true
			}
		}
		if !found {
			return
		}
		m.removeLocked(victim)
	}
}

// RedisStore keeps sessions in Redis as JSON with a sliding TTL.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "nexsupply:session:"}
}

// NewRedisStoreFromURL parses a redis:// URL and checks the connection.
func NewRedisStoreFromURL(ctx context.Context, rawURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	b, err := r.rdb.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(b)
}

func (r *RedisStore) Save(ctx context.Context, id string, st *State) error {
	st.UpdatedAt = time.Now()
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.rdb.Set(ctx, r.prefix+id, b, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.prefix+id).Err()
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

func decode(b []byte) (*State, error) {
	st := New()
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if st.View == "" {
		st.View = ViewLanding
	}
	return st, nil
}
