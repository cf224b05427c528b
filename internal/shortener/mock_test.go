package shortener_test

import (
	"context"
	"sync"

	"github.com/qazsato/shorturl/internal/audit"
	"github.com/qazsato/shorturl/internal/shortener"
)

type mockRepository struct {
	mu     sync.Mutex
	links  map[shortener.Token]string
	putErr error
	getErr error
	puts   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{links: make(map[shortener.Token]string)}
}

func (m *mockRepository) Put(_ context.Context, token shortener.Token, longURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++

	if m.putErr != nil {
		return m.putErr
	}

	if _, ok := m.links[token]; ok {
		return shortener.ErrConflict
	}

	m.links[token] = longURL

	return nil
}

func (m *mockRepository) Get(_ context.Context, token shortener.Token) (*shortener.ShortURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	longURL, ok := m.links[token]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &shortener.ShortURL{Token: token, LongURL: longURL}, nil
}

type mockAllocator struct {
	mu    sync.Mutex
	next  uint64
	err   error
	calls int
}

func (m *mockAllocator) Allocate(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if m.err != nil {
		return 0, m.err
	}

	m.next++

	return m.next, nil
}

// blockingAllocator waits for the context to expire.
type blockingAllocator struct{}

func (blockingAllocator) Allocate(ctx context.Context) (uint64, error) {
	<-ctx.Done()

	return 0, ctx.Err()
}

type stubCodec struct {
	token string
	err   error
}

func (c stubCodec) Encode(uint64) (string, error) { return c.token, c.err }

func (stubCodec) Name() string { return "stub" }

type recorder[T any] struct {
	mu     sync.Mutex
	events []*T
	err    error
}

func (r *recorder[T]) publish(_ context.Context, event *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return r.err
}

func (r *recorder[T]) all() []*T {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*T(nil), r.events...)
}

type (
	createdRecorder  = recorder[audit.LinkCreatedEvent]
	orphanedRecorder = recorder[audit.IdentifierOrphanedEvent]
)
