package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/qazsato/shorturl/internal/container"
	"github.com/qazsato/shorturl/internal/messaging"
	"github.com/samber/do"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{}
	if err := env.ParseWithOptions(opts, env.Options{Prefix: "SERVICE_"}); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	if opts.Events != container.EventsRedis {
		fmt.Fprintf(os.Stderr, "consumer requires redis events, got %q\n", opts.Events)
		os.Exit(1)
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("audit consumer running",
		zap.String("redis", opts.RedisAddr),
		zap.String("group", opts.ConsumerGroup),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
