package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	// mu serializa Incr: go-cache no expone "incrementar o crear con TTL" atómico.
	mu sync.Mutex
}

// NewMemory crea un cliente en memoria. cleanup 0 desactiva el janitor.
func NewMemory(prefix string, defaultTTL, cleanup time.Duration) Client {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &memoryClient{prefix: prefix, c: gocache.New(defaultTTL, cleanup)}
}

func (m *memoryClient) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	return nil
}

type counter struct {
	n         int64
	expiresAt time.Time
}

func (m *memoryClient) Incr(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	k := prefixed(m.prefix, key)
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if v, ok := m.c.Get(k); ok {
		if ctr, ok := v.(*counter); ok {
			ctr.n++
			return ctr.n, ctr.expiresAt.Sub(now), nil
		}
	}
	ctr := &counter{n: 1, expiresAt: now.Add(ttl)}
	m.c.Set(k, ctr, ttl)
	return 1, ttl, nil
}

func (m *memoryClient) Delete(ctx context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryClient) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.c.Get(prefixed(m.prefix, key))
	return ok, nil
}

func (m *memoryClient) Ping(ctx context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
