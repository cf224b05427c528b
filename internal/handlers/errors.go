package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/qazsato/shorturl/internal/requestid"
	"github.com/qazsato/shorturl/internal/shortener"
	"go.uber.org/zap"
)

// toHTTPError maps service errors to problem responses. Rejections carry
// their reason as the detail; backend errors never expose their cause.
func (h *URLHandler) toHTTPError(ctx context.Context, err error) error {
	var rejection *shortener.RejectionError

	switch {
	case errors.As(err, &rejection):
		return huma.Error400BadRequest(string(rejection.Reason))
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrAllocationFailed), errors.Is(err, shortener.ErrStoreUnavailable):
		return huma.Error503ServiceUnavailable("service unavailable")
	}

	h.logger.Error("unexpected service error",
		zap.String("requestId", requestid.From(ctx)),
		zap.Error(err),
	)

	return huma.Error500InternalServerError("internal server error")
}
