package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/qazsato/shorturl/internal/requestid"
)

// maxInboundIDLength caps ids accepted from callers.
const maxInboundIDLength = 64

// RequestID reuses the caller's X-Request-ID when present, generates one
// otherwise, echoes it on the response and stores it in the request context.
func RequestID(_ huma.API, generate requestid.Generator) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header(requestid.Header)
		if id == "" || len(id) > maxInboundIDLength {
			id = generate()
		}

		ctx.SetHeader(requestid.Header, id)

		newCtx := requestid.With(ctx.Context(), id)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}
