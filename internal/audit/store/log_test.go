package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qazsato/shorturl/internal/audit"
	"github.com/qazsato/shorturl/internal/audit/store"
	"github.com/qazsato/shorturl/internal/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_SaveLinkCreated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := store.NewLog(zap.New(core))
	ctx := requestid.With(context.Background(), "req-1")

	err := s.SaveLinkCreated(ctx, audit.NewLinkCreatedEvent(1, "1", "https://good.test", "decimal"))

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "1", fields["token"])
	assert.Equal(t, "req-1", fields["requestId"])
}

func TestLog_SaveIdentifierOrphaned(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := store.NewLog(zap.New(core))

	err := s.SaveIdentifierOrphaned(context.Background(),
		audit.NewIdentifierOrphanedEvent(5, "5", audit.StagePersist, errors.New("conflict")))

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "conflict", logs.All()[0].ContextMap()["reason"])
}
