package sequence_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedCounter is a test double with the same atomic contract as the real stores.
type lockedCounter struct {
	mu       sync.Mutex
	values   map[string]uint64
	incrErr  error
	lastName string
}

func newLockedCounter() *lockedCounter {
	return &lockedCounter{values: make(map[string]uint64)}
}

func (c *lockedCounter) IncrementAndFetch(_ context.Context, name string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastName = name

	if c.incrErr != nil {
		return 0, c.incrErr
	}

	v, ok := c.values[name]
	if !ok {
		return 0, sequence.ErrCounterMissing
	}

	v++
	c.values[name] = v

	return v, nil
}

func (c *lockedCounter) Provision(_ context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[name]; ok {
		return false, nil
	}

	c.values[name] = 0

	return true, nil
}

func TestAllocator_Allocate(t *testing.T) {
	t.Run("returns post-increment values", func(t *testing.T) {
		counter := newLockedCounter()
		alloc := sequence.NewAllocator(counter, "links")
		_, err := alloc.Provision(context.Background())
		require.NoError(t, err)

		first, err := alloc.Allocate(context.Background())
		require.NoError(t, err)

		second, err := alloc.Allocate(context.Background())
		require.NoError(t, err)

		assert.Equal(t, uint64(1), first)
		assert.Equal(t, uint64(2), second)
		assert.Equal(t, "links", counter.lastName)
	})

	t.Run("uses default counter name", func(t *testing.T) {
		alloc := sequence.NewAllocator(newLockedCounter(), "")

		assert.Equal(t, sequence.DefaultName, alloc.Name())
	})

	t.Run("wraps missing counter as allocation failure", func(t *testing.T) {
		alloc := sequence.NewAllocator(newLockedCounter(), "links")

		id, err := alloc.Allocate(context.Background())

		assert.Zero(t, id)
		assert.ErrorIs(t, err, sequence.ErrAllocationFailed)
		assert.ErrorIs(t, err, sequence.ErrCounterMissing)
	})

	t.Run("wraps store errors as allocation failure", func(t *testing.T) {
		counter := newLockedCounter()
		counter.incrErr = errors.New("connection refused")
		alloc := sequence.NewAllocator(counter, "links")

		_, err := alloc.Allocate(context.Background())

		assert.ErrorIs(t, err, sequence.ErrAllocationFailed)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAllocator_Provision(t *testing.T) {
	counter := newLockedCounter()
	alloc := sequence.NewAllocator(counter, "links")

	created, err := alloc.Provision(context.Background())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = alloc.Provision(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
}
