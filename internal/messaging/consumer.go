package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/qazsato/shorturl/internal/requestid"
	"go.uber.org/zap"
)

var ErrAlreadyStarted = errors.New("consumer already started")

// Handler stores or otherwise acts on one decoded event.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer feeds the events of one topic into a typed handler.
//
// A payload that does not decode is acked and dropped since redelivery can
// never fix it. A handler error nacks the message for redelivery.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handle     Handler[T]
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer[T any](subscriber message.Subscriber, topic string, handle Handler[T], logger *zap.Logger) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handle:     handle,
		logger:     logger.With(zap.String("topic", topic)),
	}
}

func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes to the topic and processes messages in the background
// until ctx is cancelled or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, c.topic)
	}

	ctx, cancel := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		cancel()

		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx, msgs, c.done)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.process(ctx, msg)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	reqID := msg.Metadata.Get(MetadataRequestID)
	log := c.logger.With(zap.String("messageId", msg.UUID), zap.String("requestId", reqID))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error("dropping undecodable event", zap.Error(err))
		msg.Ack()

		return
	}

	if reqID != "" {
		ctx = requestid.With(ctx, reqID)
	}

	if err := c.handle(ctx, &event); err != nil {
		log.Error("failed to handle event", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()
	log.Debug("event handled")
}

// Shutdown stops consuming and waits for the message in flight. Calling it
// on a consumer that never started is a no-op.
func (c *Consumer[T]) Shutdown() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	cancel()
	<-done

	return nil
}
