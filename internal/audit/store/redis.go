package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/qazsato/shorturl/internal/audit"
	"github.com/redis/go-redis/v9"
)

const (
	OrphanedKey    = "sequence:orphaned"
	RecentLinksKey = "audit:links"
)

// Redis is an audit.Store that keeps the set of orphaned ids and a capped
// list of recently created links.
type Redis struct {
	client      *redis.Client
	recentLimit int64
}

// NewRedis creates a Redis audit store. recentLimit caps the recent links list;
// zero or less keeps no list.
func NewRedis(client *redis.Client, recentLimit int64) *Redis {
	return &Redis{client: client, recentLimit: recentLimit}
}

func (r *Redis) SaveLinkCreated(ctx context.Context, event *audit.LinkCreatedEvent) error {
	if r.recentLimit <= 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, RecentLinksKey, payload)
	pipe.LTrim(ctx, RecentLinksKey, 0, r.recentLimit-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record link %s: %w", event.Token, err)
	}

	return nil
}

// SaveIdentifierOrphaned is idempotent; redelivery adds nothing.
func (r *Redis) SaveIdentifierOrphaned(ctx context.Context, event *audit.IdentifierOrphanedEvent) error {
	member := strconv.FormatUint(event.ID, 10)

	if err := r.client.SAdd(ctx, OrphanedKey, member).Err(); err != nil {
		return fmt.Errorf("record orphaned id %d: %w", event.ID, err)
	}

	return nil
}

var _ audit.Store = (*Redis)(nil)
