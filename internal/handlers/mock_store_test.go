package handlers_test

import (
	"context"
	"errors"

	"github.com/qazsato/shorturl/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://good.test/page"

// mockStore is a test double for shortener.Repository that can be configured to return errors.
type mockStore struct {
	putErr error
	getErr error
}

func (m *mockStore) Put(context.Context, shortener.Token, string) error {
	return m.putErr
}

func (m *mockStore) Get(_ context.Context, token shortener.Token) (*shortener.ShortURL, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	return &shortener.ShortURL{Token: token, LongURL: testURL}, nil
}

// sequenceAllocator counts up from one.
type sequenceAllocator struct {
	next uint64
	err  error
}

func (a *sequenceAllocator) Allocate(context.Context) (uint64, error) {
	if a.err != nil {
		return 0, a.err
	}

	a.next++

	return a.next, nil
}
