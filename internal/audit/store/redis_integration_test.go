//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qazsato/shorturl/internal/audit"
	"github.com/qazsato/shorturl/internal/audit/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "docker.io/redis:7")
	if err != nil {
		t.Skipf("redis container not available: %v", err)
	}

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	s := store.NewRedis(client, 2)

	t.Run("orphaned ids form a set", func(t *testing.T) {
		event := audit.NewIdentifierOrphanedEvent(42, "G", audit.StagePersist, errors.New("timeout"))

		require.NoError(t, s.SaveIdentifierOrphaned(ctx, event))
		require.NoError(t, s.SaveIdentifierOrphaned(ctx, event))

		members, err := client.SMembers(ctx, store.OrphanedKey).Result()
		require.NoError(t, err)
		assert.Equal(t, []string{"42"}, members)
	})

	t.Run("recent links list is capped", func(t *testing.T) {
		for i := uint64(1); i <= 3; i++ {
			require.NoError(t, s.SaveLinkCreated(ctx, audit.NewLinkCreatedEvent(i, "t", "https://good.test", "decimal")))
		}

		n, err := client.LLen(ctx, store.RecentLinksKey).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
