package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/qazsato/shorturl/internal/messaging"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	t.Run("maps levels and fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := messaging.NewZapLogger(zap.New(core))

		logger.Info("info", watermill.LogFields{"topic": "link.created"})
		logger.Debug("debug", nil)
		logger.Trace("trace", nil)
		logger.Error("error", errors.New("boom"), nil)

		entries := logs.All()
		assert.Len(t, entries, 4)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "link.created", entries[0].ContextMap()["topic"])
		assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
		assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	})

	t.Run("with carries fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := messaging.NewZapLogger(zap.New(core)).With(watermill.LogFields{"subscriber": "audit"})

		logger.Info("hello", nil)

		assert.Equal(t, "audit", logs.All()[0].ContextMap()["subscriber"])
	})
}
