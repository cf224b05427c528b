package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/qazsato/shorturl/internal/container"
	"github.com/qazsato/shorturl/internal/messaging"
	"github.com/qazsato/shorturl/internal/sequence"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RepositoryPackage(injector)
	container.ServicePackage(injector)
	container.PublisherGroupPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			if _, err := do.Invoke[huma.API](injector); err != nil {
				logger.Fatal("failed to build api", zap.Error(err))
			}

			// In-memory events have no separate consumer process.
			if options.Events == container.EventsMemory {
				group := do.MustInvoke[*messaging.ConsumerGroup](injector)
				if err := group.Start(context.Background()); err != nil {
					logger.Fatal("failed to start consumer group", zap.Error(err))
				}
			}

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("backend", options.Backend),
				zap.String("codec", options.Codec),
				zap.String("events", options.Events),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "provision",
		Short: "Apply migrations and create the sequence counter if missing",
		Run: humacli.WithOptions(func(_ *cobra.Command, _ []string, options *container.Options) {
			if err := provision(options); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}),
	})

	cli.Run()
}

// provision is idempotent: migrations only move forward and an existing
// counter is left untouched.
func provision(options *container.Options) error {
	injector := do.New()
	registerPackages(injector, options)

	defer func() { _ = injector.Shutdown() }()

	logger := do.MustInvoke[*zap.Logger](injector)

	counter, err := do.Invoke[sequence.Counter](injector)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", options.Backend, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := sequence.NewAllocator(counter, options.CounterName).Provision(ctx)
	if err != nil {
		return err
	}

	logger.Info("provisioned",
		zap.String("backend", options.Backend),
		zap.String("counter", options.CounterName),
		zap.Bool("created", created),
	)

	return nil
}
