package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

var ErrDuplicateTopic = errors.New("topic already has a consumer")

// Subscription is a consumer bound to a single topic.
type Subscription interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs one consumer per topic over a shared subscriber.
// Consumers start in registration order and stop in reverse.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger

	mu      sync.Mutex
	subs    []Subscription
	running int
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers sub. Each topic may have only one consumer.
func (g *ConsumerGroup) Add(sub Subscription) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, s := range g.subs {
		if s.Topic() == sub.Topic() {
			return fmt.Errorf("%w: %s", ErrDuplicateTopic, sub.Topic())
		}
	}

	g.subs = append(g.subs, sub)

	return nil
}

// Topics lists the registered topics in start order.
func (g *ConsumerGroup) Topics() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.topicsLocked()
}

// Start starts every consumer. If one fails, those already running are shut
// down again and the group is left stopped.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, sub := range g.subs[g.running:] {
		if err := sub.Start(ctx); err != nil {
			g.logger.Error("consumer failed to start", zap.String("topic", sub.Topic()), zap.Error(err))
			_ = g.stopRunning()

			return fmt.Errorf("start consumer for %s: %w", sub.Topic(), err)
		}

		g.running++
		g.logger.Debug("consumer started", zap.String("topic", sub.Topic()))
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.topicsLocked()))

	return nil
}

// Shutdown stops the running consumers and closes the subscriber. Every
// consumer is asked to stop even if an earlier one fails.
func (g *ConsumerGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logger.Info("shutting down consumer group", zap.Int("running", g.running))

	err := g.stopRunning()

	if closeErr := g.subscriber.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close subscriber: %w", closeErr))
	}

	return err
}

func (g *ConsumerGroup) stopRunning() error {
	var errs []error

	for ; g.running > 0; g.running-- {
		sub := g.subs[g.running-1]

		if err := sub.Shutdown(); err != nil {
			g.logger.Warn("consumer shutdown failed", zap.String("topic", sub.Topic()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", sub.Topic(), err))
		}
	}

	return errors.Join(errs...)
}

func (g *ConsumerGroup) topicsLocked() []string {
	topics := make([]string, len(g.subs))
	for i, s := range g.subs {
		topics[i] = s.Topic()
	}

	return topics
}
