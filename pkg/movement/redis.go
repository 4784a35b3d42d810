package movement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus carries topics over Redis pub/sub. Delivery is at-most-once.
type RedisBus struct {
	counters

	rdb    *redis.Client
	owned  bool
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// DialRedis connects to Redis at addr and verifies the connection.
func DialRedis(ctx context.Context, addr string, logger *slog.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("movement: connect to redis %s: %w", addr, err)
	}
	b := NewRedisBus(rdb, logger)
	b.owned = true
	return b, nil
}

// NewRedisBus wraps an existing client. Close does not close rdb.
func NewRedisBus(rdb *redis.Client, logger *slog.Logger) *RedisBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBus{
		rdb:    rdb,
		logger: logger.With("component", "movement.redis"),
	}
}

// Publish sends payload on topic.
func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if b.isClosed() {
		return ErrClosed
	}
	if err := b.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("movement: publish to %s: %w", topic, err)
	}
	b.sent.Add(1)
	return nil
}

// Subscribe registers handler for topic. It waits for Redis to confirm the
// subscription before returning, so no message published afterwards is missed.
func (b *RedisBus) Subscribe(ctx context.Context, topic string, handler Handler) (Subscription, error) {
	if b.isClosed() {
		return nil, ErrClosed
	}

	pubsub := b.rdb.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("movement: subscribe to %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.received.Add(1)
				handler([]byte(msg.Payload))
			}
		}
	}()

	b.logger.Debug("subscribed to topic", "topic", topic)
	return &redisSub{cancel: cancel, done: done}, nil
}

type redisSub struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *redisSub) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

// Close marks the bus closed and, if the bus dialed the connection, closes it.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.owned {
		return b.rdb.Close()
	}
	return nil
}

func (b *RedisBus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
