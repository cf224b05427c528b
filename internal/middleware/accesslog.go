package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/qazsato/shorturl/internal/requestid"
	"go.uber.org/zap"
)

// AccessLog logs one line per request. It must run after RequestID.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		logger.Info("request",
			zap.String("requestId", requestid.From(ctx.Context())),
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.String("operation", ctx.Operation().OperationID),
			zap.Int("status", ctx.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
