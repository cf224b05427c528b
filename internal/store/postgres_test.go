package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/qazsato/shorturl/internal/shortener"
	"github.com/qazsato/shorturl/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	values []any
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int64:
			*p = r.values[i].(int64)
		default:
			return errors.New("unsupported scan target")
		}
	}

	return nil
}

type mockQuerier struct {
	tag     pgconn.CommandTag
	execErr error
	row     mockRow
	sql     string
	args    []any
}

func (m *mockQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.sql, m.args = sql, args

	return m.tag, m.execErr
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.sql, m.args = sql, args

	return m.row
}

func TestPostgresStore_Put(t *testing.T) {
	t.Run("inserts new token", func(t *testing.T) {
		db := &mockQuerier{tag: pgconn.NewCommandTag("INSERT 0 1")}

		err := store.NewPostgresStore(db).Put(context.Background(), "abc", "https://good.test")

		require.NoError(t, err)
		assert.Contains(t, db.sql, "ON CONFLICT (token) DO NOTHING")
		assert.Equal(t, []any{"abc", "https://good.test"}, db.args)
	})

	t.Run("zero affected rows is a conflict", func(t *testing.T) {
		db := &mockQuerier{tag: pgconn.NewCommandTag("INSERT 0 0")}

		err := store.NewPostgresStore(db).Put(context.Background(), "abc", "https://good.test")

		assert.ErrorIs(t, err, shortener.ErrConflict)
	})

	t.Run("propagates driver errors", func(t *testing.T) {
		db := &mockQuerier{execErr: errors.New("connection refused")}

		err := store.NewPostgresStore(db).Put(context.Background(), "abc", "https://good.test")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, shortener.ErrConflict)
	})
}

func TestPostgresStore_Get(t *testing.T) {
	t.Run("returns stored record", func(t *testing.T) {
		db := &mockQuerier{row: mockRow{values: []any{"abc", "https://good.test/page"}}}

		link, err := store.NewPostgresStore(db).Get(context.Background(), "abc")

		require.NoError(t, err)
		assert.Equal(t, shortener.Token("abc"), link.Token)
		assert.Equal(t, "https://good.test/page", link.LongURL)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		db := &mockQuerier{row: mockRow{err: pgx.ErrNoRows}}

		_, err := store.NewPostgresStore(db).Get(context.Background(), "abc")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestPostgresCounter(t *testing.T) {
	t.Run("returns post-increment value", func(t *testing.T) {
		db := &mockQuerier{row: mockRow{values: []any{int64(42)}}}

		n, err := store.NewPostgresCounter(db).IncrementAndFetch(context.Background(), "shorturl")

		require.NoError(t, err)
		assert.Equal(t, uint64(42), n)
		assert.Contains(t, db.sql, "RETURNING current_number")
	})

	t.Run("missing row is a missing counter", func(t *testing.T) {
		db := &mockQuerier{row: mockRow{err: pgx.ErrNoRows}}

		_, err := store.NewPostgresCounter(db).IncrementAndFetch(context.Background(), "shorturl")

		assert.ErrorIs(t, err, sequence.ErrCounterMissing)
	})

	t.Run("provision reports creation", func(t *testing.T) {
		created, err := store.NewPostgresCounter(&mockQuerier{tag: pgconn.NewCommandTag("INSERT 0 1")}).
			Provision(context.Background(), "shorturl")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = store.NewPostgresCounter(&mockQuerier{tag: pgconn.NewCommandTag("INSERT 0 0")}).
			Provision(context.Background(), "shorturl")
		require.NoError(t, err)
		assert.False(t, created)
	})
}
