package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/qazsato/shorturl/internal/shortener"
	"github.com/qazsato/shorturl/internal/validator"
	"go.uber.org/zap"
)

// Service is the part of shortener.Service the handlers need.
type Service interface {
	Shorten(ctx context.Context, rawURL, base string) (*shortener.Result, error)
	Resolve(ctx context.Context, token shortener.Token) (*shortener.ShortURL, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service Service
	baseURL string
	logger  *zap.Logger
}

// NewURLHandler creates a URL handler. An empty baseURL builds short URLs
// from the incoming request.
func NewURLHandler(service Service, baseURL string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	longURL, err := req.URL()
	if err != nil {
		return nil, huma.Error400BadRequest(string(validator.ReasonInvalidRequest))
	}

	res, err := h.service.Shorten(ctx, longURL, h.base(req.base))
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	resp := &CreateShortURLResponse{Location: res.ShortURL}
	resp.Body = toBody(res)

	return resp, nil
}

func (h *URLHandler) Long2Short(ctx context.Context, req *Long2ShortRequest) (*Long2ShortResponse, error) {
	res, err := h.service.Shorten(ctx, req.LongURL, h.base(req.base))
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	return &Long2ShortResponse{Body: toBody(res)}, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.service.Resolve(ctx, shortener.Token(req.Token))
	if err != nil {
		return nil, h.toHTTPError(ctx, err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.LongURL,
	}, nil
}

func (h *URLHandler) base(fromRequest string) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	return fromRequest
}

func toBody(res *shortener.Result) ShortURLBody {
	return ShortURLBody{
		Token:    string(res.Token),
		ShortURL: res.ShortURL,
		LongURL:  res.LongURL,
	}
}
