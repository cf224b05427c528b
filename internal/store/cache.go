package store

import (
	"context"
	"errors"
	"time"

	"github.com/qazsato/shorturl/internal/shortener"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheRepository wraps a Repository with a Redis read-through cache.
// Mappings are immutable, so a cached entry can never be stale.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		logger: logger,
		prefix: "cache:url:",
		ttl:    ttl,
	}
}

// Put writes to the underlying store and then warms the cache.
func (r *RedisCacheRepository) Put(ctx context.Context, token shortener.Token, longURL string) error {
	if err := r.store.Put(ctx, token, longURL); err != nil {
		return err
	}

	r.cache(ctx, token, longURL)

	return nil
}

// Get checks the cache first. Cache errors fall through to the store.
func (r *RedisCacheRepository) Get(ctx context.Context, token shortener.Token) (*shortener.ShortURL, error) {
	longURL, err := r.client.Get(ctx, r.prefix+string(token)).Result()
	if err == nil {
		return &shortener.ShortURL{Token: token, LongURL: longURL}, nil
	}

	if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cache read failed", zap.String("token", string(token)), zap.Error(err))
	}

	link, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, token, link.LongURL)

	return link, nil
}

func (r *RedisCacheRepository) cache(ctx context.Context, token shortener.Token, longURL string) {
	if err := r.client.Set(ctx, r.prefix+string(token), longURL, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", zap.String("token", string(token)), zap.Error(err))
	}
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
