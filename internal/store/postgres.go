package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/qazsato/shorturl/internal/shortener"
)

// Querier is the subset of *pgxpool.Pool the PostgreSQL stores use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Put(ctx context.Context, token shortener.Token, longURL string) error {
	query := `
		INSERT INTO short_urls (token, long_url)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`

	tag, err := p.db.Exec(ctx, query, string(token), longURL)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrConflict
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, token shortener.Token) (*shortener.ShortURL, error) {
	query := `
		SELECT token, long_url
		FROM short_urls
		WHERE token = $1
	`

	var (
		link  shortener.ShortURL
		found string
	)

	err := p.db.QueryRow(ctx, query, string(token)).Scan(&found, &link.LongURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	link.Token = shortener.Token(found)

	return &link, nil
}

// PostgresCounter is a sequence.Counter backed by the sequence_counters table.
// The UPDATE takes a row lock, so concurrent increments serialize.
type PostgresCounter struct {
	db Querier
}

func NewPostgresCounter(db Querier) *PostgresCounter {
	return &PostgresCounter{db: db}
}

func (p *PostgresCounter) IncrementAndFetch(ctx context.Context, name string) (uint64, error) {
	query := `
		UPDATE sequence_counters
		SET current_number = current_number + 1
		WHERE name = $1
		RETURNING current_number
	`

	var n int64

	if err := p.db.QueryRow(ctx, query, name).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sequence.ErrCounterMissing
		}

		return 0, err
	}

	if n <= 0 {
		return 0, fmt.Errorf("counter %q returned non-positive value %d", name, n)
	}

	return uint64(n), nil
}

func (p *PostgresCounter) Provision(ctx context.Context, name string) (bool, error) {
	query := `
		INSERT INTO sequence_counters (name, current_number)
		VALUES ($1, 0)
		ON CONFLICT (name) DO NOTHING
	`

	tag, err := p.db.Exec(ctx, query, name)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

var (
	_ shortener.Repository = (*PostgresStore)(nil)
	_ sequence.Counter     = (*PostgresCounter)(nil)
)
