package store

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/qazsato/shorturl/internal/shortener"
)

// NewMemoryCache returns a never-expiring cache suitable for sharing between
// MemoryStore and MemoryCounter.
func NewMemoryCache() *cache.Cache {
	return cache.New(cache.NoExpiration, 0)
}

// MemoryStore is an in-process implementation of shortener.Repository.
type MemoryStore struct {
	items  *cache.Cache
	prefix string
}

// NewMemoryStore creates an in-memory URL store over c.
func NewMemoryStore(c *cache.Cache) *MemoryStore {
	return &MemoryStore{items: c, prefix: "url:"}
}

func (m *MemoryStore) Put(_ context.Context, token shortener.Token, longURL string) error {
	if err := m.items.Add(m.prefix+string(token), longURL, cache.NoExpiration); err != nil {
		return shortener.ErrConflict
	}

	return nil
}

func (m *MemoryStore) Get(_ context.Context, token shortener.Token) (*shortener.ShortURL, error) {
	v, ok := m.items.Get(m.prefix + string(token))
	if !ok {
		return nil, shortener.ErrNotFound
	}

	longURL, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected value type %T for token %q", v, token)
	}

	return &shortener.ShortURL{Token: token, LongURL: longURL}, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// MemoryCounter is an in-process sequence.Counter.
type MemoryCounter struct {
	items  *cache.Cache
	prefix string
}

func NewMemoryCounter(c *cache.Cache) *MemoryCounter {
	return &MemoryCounter{items: c, prefix: "sequence:"}
}

func (m *MemoryCounter) IncrementAndFetch(_ context.Context, name string) (uint64, error) {
	key := m.prefix + name

	n, err := m.items.IncrementUint64(key, 1)
	if err != nil {
		if _, found := m.items.Get(key); !found {
			return 0, sequence.ErrCounterMissing
		}

		return 0, err
	}

	return n, nil
}

func (m *MemoryCounter) Provision(_ context.Context, name string) (bool, error) {
	if err := m.items.Add(m.prefix+name, uint64(0), cache.NoExpiration); err != nil {
		return false, nil
	}

	return true, nil
}

var (
	_ shortener.Repository = (*MemoryStore)(nil)
	_ sequence.Counter     = (*MemoryCounter)(nil)
)
