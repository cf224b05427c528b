package store

import (
	"context"

	"github.com/qazsato/shorturl/internal/audit"
	"github.com/qazsato/shorturl/internal/requestid"
	"go.uber.org/zap"
)

// Log is an audit.Store that only writes events to the logger.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveLinkCreated(ctx context.Context, event *audit.LinkCreatedEvent) error {
	l.logger.Info("link created",
		zap.String("token", event.Token),
		zap.String("longUrl", event.LongURL),
		zap.Uint64("id", event.ID),
		zap.String("codec", event.Codec),
		zap.String("requestId", requestid.From(ctx)),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (l *Log) SaveIdentifierOrphaned(ctx context.Context, event *audit.IdentifierOrphanedEvent) error {
	l.logger.Warn("identifier orphaned",
		zap.Uint64("id", event.ID),
		zap.String("token", event.Token),
		zap.String("stage", string(event.Stage)),
		zap.String("reason", event.Reason),
		zap.String("requestId", requestid.From(ctx)),
	)

	return nil
}

var _ audit.Store = (*Log)(nil)
