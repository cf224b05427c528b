// Package container wires the application with samber/do.
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"
	"github.com/qazsato/shorturl/internal/audit"
	auditstore "github.com/qazsato/shorturl/internal/audit/store"
	"github.com/qazsato/shorturl/internal/codec"
	"github.com/qazsato/shorturl/internal/handlers"
	"github.com/qazsato/shorturl/internal/health"
	"github.com/qazsato/shorturl/internal/messaging"
	"github.com/qazsato/shorturl/internal/middleware"
	"github.com/qazsato/shorturl/internal/requestid"
	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/qazsato/shorturl/internal/shortener"
	"github.com/qazsato/shorturl/internal/store"
	"github.com/qazsato/shorturl/internal/store/migrations"
	"github.com/qazsato/shorturl/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// RedisClient wraps *redis.Client so the injector can close it.
type RedisClient struct {
	Client *redis.Client
}

func (r *RedisClient) Shutdown() error {
	return r.Client.Close()
}

// PostgresPool wraps *pgxpool.Pool so the injector can close it.
type PostgresPool struct {
	Pool *pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Pool.Close()

	return nil
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// RedisPackage provides a lazily connected Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides a pool on a migrated database.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		db, err := migrations.Open(opts.DatabaseURL)
		if err != nil {
			return nil, err
		}

		if err := migrations.NewMigrator(db, logger).Up(); err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

// RepositoryPackage provides the mapping store, the sequence counter and the
// health handler for the configured backend.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*cache.Cache, error) {
		return store.NewMemoryCache(), nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Backend {
		case BackendMemory:
			return store.NewMemoryStore(do.MustInvoke[*cache.Cache](i)), nil
		case BackendRedis:
			return store.NewRedisStore(do.MustInvoke[*RedisClient](i).Client), nil
		case BackendPostgres:
			var repo shortener.Repository = store.NewPostgresStore(do.MustInvoke[*PostgresPool](i).Pool)

			if opts.CacheTTLSeconds > 0 {
				repo = store.NewRedisCacheRepository(repo, do.MustInvoke[*RedisClient](i).Client,
					opts.CacheTTL(), do.MustInvoke[*zap.Logger](i))
			}

			return repo, nil
		default:
			return nil, fmt.Errorf("unknown backend %q", opts.Backend)
		}
	})

	do.Provide(i, func(i *do.Injector) (sequence.Counter, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Backend {
		case BackendMemory:
			return store.NewMemoryCounter(do.MustInvoke[*cache.Cache](i)), nil
		case BackendRedis:
			return store.NewRedisCounter(do.MustInvoke[*RedisClient](i).Client), nil
		case BackendPostgres:
			return store.NewPostgresCounter(do.MustInvoke[*PostgresPool](i).Pool), nil
		default:
			return nil, fmt.Errorf("unknown backend %q", opts.Backend)
		}
	})

	do.Provide(i, func(i *do.Injector) (*health.Handler, error) {
		opts := do.MustInvoke[*Options](i)
		checks := map[string]health.Checker{}

		switch opts.Backend {
		case BackendMemory:
			checks["memory"] = store.NewMemoryStore(do.MustInvoke[*cache.Cache](i))
		case BackendRedis:
			checks["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		case BackendPostgres:
			checks["postgres"] = health.NewPostgresChecker(do.MustInvoke[*PostgresPool](i).Pool)

			if opts.CacheTTLSeconds > 0 {
				checks["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
			}
		}

		return health.NewHandler(opts.Backend, checks), nil
	})
}

// ServicePackage provides the validator, codec, allocator and shortening service.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*validator.DomainValidator, error) {
		opts := do.MustInvoke[*Options](i)

		return validator.New(validator.ParseList(opts.AllowedDomains))
	})

	do.Provide(i, func(i *do.Injector) (codec.Codec, error) {
		opts := do.MustInvoke[*Options](i)

		return codec.New(codec.Config{Kind: opts.Codec, Key: opts.CodecKey, MinLength: opts.CodecMinLength})
	})

	do.Provide(i, func(i *do.Injector) (*sequence.Allocator, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		counter, err := do.Invoke[sequence.Counter](i)
		if err != nil {
			return nil, err
		}

		alloc := sequence.NewAllocator(counter, opts.CounterName)

		// An in-process counter has nothing to share, so it is always provisioned.
		if opts.Provision || opts.Backend == BackendMemory {
			ctx, cancel := context.WithTimeout(context.Background(), opts.StoreTimeout())
			defer cancel()

			created, err := alloc.Provision(ctx)
			if err != nil {
				return nil, err
			}

			logger.Info("sequence counter ready", zap.String("name", alloc.Name()), zap.Bool("created", created))
		}

		return alloc, nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		c, err := do.Invoke[codec.Codec](i)
		if err != nil {
			return nil, err
		}

		v, err := do.Invoke[*validator.DomainValidator](i)
		if err != nil {
			return nil, err
		}

		alloc, err := do.Invoke[*sequence.Allocator](i)
		if err != nil {
			return nil, err
		}

		svcOpts := []shortener.Option{
			shortener.WithLogger(do.MustInvoke[*zap.Logger](i)),
			shortener.WithStoreTimeout(opts.StoreTimeout()),
		}

		if opts.Events != EventsNone {
			publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()
			svcOpts = append(svcOpts,
				shortener.WithLinkCreatedPublisher(
					messaging.NewPublishFunc[audit.LinkCreatedEvent](publisher, audit.TopicLinkCreated)),
				shortener.WithOrphanedPublisher(
					messaging.NewPublishFunc[audit.IdentifierOrphanedEvent](publisher, audit.TopicIdentifierOrphaned)),
			)
		}

		return shortener.NewService(v, alloc, c, repo, svcOpts...), nil
	})
}

// PublisherGroupPackage provides the audit event publisher.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Events {
		case EventsMemory:
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		case EventsRedis:
			publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
				Client:     do.MustInvoke[*RedisClient](i).Client,
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			}, watermillLogger(i))
			if err != nil {
				return nil, fmt.Errorf("create redis stream publisher: %w", err)
			}

			return messaging.NewPublisherGroup(publisher), nil
		default:
			return nil, fmt.Errorf("no publisher for events mode %q", opts.Events)
		}
	})
}

// ConsumerGroupPackage provides the audit consumers.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Events {
		case EventsMemory:
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		case EventsRedis:
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*RedisClient](i).Client,
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: opts.ConsumerGroup,
			}, watermillLogger(i))
		default:
			return nil, fmt.Errorf("no subscriber for events mode %q", opts.Events)
		}
	})

	do.Provide(i, func(i *do.Injector) (audit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Events == EventsRedis {
			return auditstore.NewRedis(do.MustInvoke[*RedisClient](i).Client, int64(opts.RecentLinks)), nil
		}

		return auditstore.NewLog(logger), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := do.Invoke[message.Subscriber](i)
		if err != nil {
			return nil, err
		}

		auditStore := do.MustInvoke[audit.Store](i)

		group := messaging.NewConsumerGroup(subscriber, logger)

		err = errors.Join(
			group.Add(messaging.NewConsumer(subscriber, audit.TopicLinkCreated, auditStore.SaveLinkCreated, logger)),
			group.Add(messaging.NewConsumer(subscriber, audit.TopicIdentifierOrphaned, auditStore.SaveIdentifierOrphaned, logger)),
		)
		if err != nil {
			return nil, err
		}

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		generate, err := requestid.NewGenerator(requestid.DefaultLength)
		if err != nil {
			return nil, err
		}

		service, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, handlers.APIConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestID(api, generate))
		api.UseMiddleware(middleware.AccessLog(logger))

		health.RegisterRoutes(api, do.MustInvoke[*health.Handler](i))
		handlers.RegisterRoutes(api, handlers.NewURLHandler(service, opts.BaseURL, logger))

		return api, nil
	})
}

func watermillLogger(i *do.Injector) watermill.LoggerAdapter {
	return messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))
}
