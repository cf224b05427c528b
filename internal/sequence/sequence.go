// Package sequence hands out strictly increasing, never-repeating ids.
//
// All arithmetic happens inside the backing store through a single atomic
// increment-and-fetch, so concurrent callers in any number of processes
// always observe distinct values. Ids are unique and increasing but not dense:
// an id whose mapping is never persisted is skipped forever.
package sequence

import (
	"context"
	"errors"
	"fmt"
)

// DefaultName is the counter record used when none is configured.
const DefaultName = "shorturl"

// CurrentNumberField is the counter record field holding the last issued id.
const CurrentNumberField = "current_number"

var (
	ErrAllocationFailed = errors.New("allocation failed")
	ErrCounterMissing   = errors.New("sequence counter not provisioned")
)

// Counter is a store-side named counter.
type Counter interface {
	// IncrementAndFetch atomically adds one to the named counter and returns
	// the new value. It returns ErrCounterMissing if the record does not exist.
	IncrementAndFetch(ctx context.Context, name string) (uint64, error)

	// Provision creates the named counter at zero if it does not exist.
	Provision(ctx context.Context, name string) (created bool, err error)
}

// Allocator issues ids from one named counter.
type Allocator struct {
	counter Counter
	name    string
}

// NewAllocator creates an allocator over the named counter.
func NewAllocator(counter Counter, name string) *Allocator {
	if name == "" {
		name = DefaultName
	}

	return &Allocator{counter: counter, name: name}
}

// Name returns the counter record name.
func (a *Allocator) Name() string {
	return a.name
}

// Allocate returns the next id. It never retries.
func (a *Allocator) Allocate(ctx context.Context) (uint64, error) {
	id, err := a.counter.IncrementAndFetch(ctx, a.name)
	if err != nil {
		return 0, fmt.Errorf("%w: counter %q: %w", ErrAllocationFailed, a.name, err)
	}

	return id, nil
}

// Provision creates the counter record if needed.
func (a *Allocator) Provision(ctx context.Context) (bool, error) {
	created, err := a.counter.Provision(ctx, a.name)
	if err != nil {
		return false, fmt.Errorf("provision counter %q: %w", a.name, err)
	}

	return created, nil
}
