package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/qazsato/shorturl/internal/shortener"
	"github.com/redis/go-redis/v9"
)

const (
	longURLField       = "long_url"
	counterMissingCode = "COUNTER_MISSING"
)

// RedisStore is a Redis implementation of shortener.Repository. Each mapping
// is a hash at url:<token> with a single long_url field.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "url:",
	}
}

func (r *RedisStore) Put(ctx context.Context, token shortener.Token, longURL string) error {
	created, err := r.client.HSetNX(ctx, r.prefix+string(token), longURLField, longURL).Result()
	if err != nil {
		return err
	}

	if !created {
		return shortener.ErrConflict
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, token shortener.Token) (*shortener.ShortURL, error) {
	longURL, err := r.client.HGet(ctx, r.prefix+string(token), longURLField).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &shortener.ShortURL{Token: token, LongURL: longURL}, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// incrementScript refuses to create a missing counter; HINCRBY alone would
// silently start a fresh sequence at 1.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.error_reply('` + counterMissingCode + `')
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)

// RedisCounter is a sequence.Counter stored as a hash at sequence:<name>.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "sequence:"}
}

func (r *RedisCounter) IncrementAndFetch(ctx context.Context, name string) (uint64, error) {
	n, err := incrementScript.Run(ctx, r.client, []string{r.prefix + name}, sequence.CurrentNumberField).Int64()
	if err != nil {
		if strings.Contains(err.Error(), counterMissingCode) {
			return 0, sequence.ErrCounterMissing
		}

		return 0, err
	}

	if n <= 0 {
		return 0, fmt.Errorf("counter %q returned non-positive value %d", name, n)
	}

	return uint64(n), nil
}

func (r *RedisCounter) Provision(ctx context.Context, name string) (bool, error) {
	return r.client.HSetNX(ctx, r.prefix+name, sequence.CurrentNumberField, 0).Result()
}

var (
	_ shortener.Repository = (*RedisStore)(nil)
	_ sequence.Counter     = (*RedisCounter)(nil)
)
