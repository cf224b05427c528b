package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qazsato/shorturl/internal/audit"
	"github.com/qazsato/shorturl/internal/messaging"
	"github.com/qazsato/shorturl/internal/requestid"
	"github.com/qazsato/shorturl/internal/validator"
	"go.uber.org/zap"
)

// DefaultStoreTimeout bounds every store round trip unless overridden.
const DefaultStoreTimeout = 2 * time.Second

// Service runs the shorten and resolve flows.
type Service struct {
	validator Validator
	allocator Allocator
	codec     Codec
	repo      Repository
	logger    *zap.Logger
	timeout   time.Duration

	publishCreated  messaging.Publish[audit.LinkCreatedEvent]
	publishOrphaned messaging.Publish[audit.IdentifierOrphanedEvent]
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithStoreTimeout sets the deadline applied to each store call. Zero or less
// keeps the default.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLinkCreatedPublisher(p messaging.Publish[audit.LinkCreatedEvent]) Option {
	return func(s *Service) { s.publishCreated = p }
}

func WithOrphanedPublisher(p messaging.Publish[audit.IdentifierOrphanedEvent]) Option {
	return func(s *Service) { s.publishOrphaned = p }
}

func NewService(v Validator, a Allocator, c Codec, repo Repository, opts ...Option) *Service {
	s := &Service{
		validator: v,
		allocator: a,
		codec:     c,
		repo:      repo,
		logger:    zap.NewNop(),
		timeout:   DefaultStoreTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten validates rawURL, allocates a fresh id, encodes it and persists the
// mapping. rawURL is stored exactly as given. base is the scheme and host the
// short URL is built on.
//
// Rejections are returned as *RejectionError before any allocation. Once an id
// has been allocated any failure abandons it; it is never retried.
func (s *Service) Shorten(ctx context.Context, rawURL, base string) (*Result, error) {
	log := s.logger.With(zap.String("requestId", requestid.From(ctx)))

	longURL := rawURL
	if strings.TrimSpace(longURL) == "" {
		log.Debug("shorten rejected", zap.String("reason", string(validator.ReasonInvalidRequest)))

		return nil, reject(validator.ReasonInvalidRequest)
	}

	if res := s.validator.Validate(longURL); !res.Valid {
		log.Debug("shorten rejected",
			zap.String("url", longURL),
			zap.String("reason", string(res.Reason)),
			zap.Bool("formatOk", res.FormatOK),
			zap.Bool("domainOk", res.DomainOK),
		)

		return nil, reject(res.Reason)
	}

	id, err := s.allocate(ctx)
	if err != nil {
		log.Error("allocation failed", zap.Error(err))

		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	log.Debug("id allocated", zap.Uint64("id", id))

	encoded, err := s.codec.Encode(id)
	if err != nil {
		log.Error("encoding failed", zap.Uint64("id", id), zap.Error(err))
		s.orphan(ctx, log, id, "", audit.StageEncode, err)

		return nil, fmt.Errorf("%w: id %d: %w", ErrEncodingFailed, id, err)
	}

	token := Token(encoded)

	if err := s.put(ctx, token, longURL); err != nil {
		if errors.Is(err, ErrConflict) {
			log.Error("token collision on fresh id",
				zap.Uint64("id", id),
				zap.String("token", encoded),
				zap.String("codec", s.codec.Name()),
			)
		} else {
			log.Error("persist failed", zap.Uint64("id", id), zap.String("token", encoded), zap.Error(err))
		}

		s.orphan(ctx, log, id, encoded, audit.StagePersist, err)

		return nil, err
	}

	log.Debug("mapping persisted", zap.Uint64("id", id), zap.String("token", encoded))

	if s.publishCreated != nil {
		event := audit.NewLinkCreatedEvent(id, encoded, longURL, s.codec.Name())
		if err := s.publishCreated(context.WithoutCancel(ctx), event); err != nil {
			log.Warn("failed to publish link created event", zap.String("token", encoded), zap.Error(err))
		}
	}

	return &Result{
		Token:    token,
		ShortURL: strings.TrimRight(base, "/") + "/" + encoded,
		LongURL:  longURL,
	}, nil
}

// Resolve looks up token. It returns ErrNotFound for unknown tokens and
// ErrStoreUnavailable when the store could not answer.
func (s *Service) Resolve(ctx context.Context, token Token) (*ShortURL, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	link, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		s.logger.Error("resolve failed",
			zap.String("requestId", requestid.From(ctx)),
			zap.String("token", string(token)),
			zap.Error(err),
		)

		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return link, nil
}

func (s *Service) allocate(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.allocator.Allocate(ctx)
}

func (s *Service) put(ctx context.Context, token Token, longURL string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.repo.Put(ctx, token, longURL)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict):
		return fmt.Errorf("token %q: %w", token, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

func (s *Service) orphan(ctx context.Context, log *zap.Logger, id uint64, token string, stage audit.Stage, cause error) {
	if s.publishOrphaned == nil {
		return
	}

	event := audit.NewIdentifierOrphanedEvent(id, token, stage, cause)
	if err := s.publishOrphaned(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("failed to publish orphaned id event", zap.Uint64("id", id), zap.Error(err))
	}
}
