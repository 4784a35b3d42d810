package movement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const flushTimeout = 2 * time.Second

// NATSBus carries topics as core NATS subjects.
type NATSBus struct {
	counters

	nc     *nats.Conn
	logger *slog.Logger
}

// DialNATS connects to a NATS server.
func DialNATS(url string, logger *slog.Logger) (*NATSBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "movement.nats")

	nc, err := nats.Connect(url,
		nats.Name("docent"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("movement: connect to nats %s: %w", url, err)
	}

	return &NATSBus{nc: nc, logger: logger}, nil
}

// Publish sends payload on subject topic.
func (b *NATSBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.nc.IsClosed() {
		return ErrClosed
	}
	if err := b.nc.Publish(topic, payload); err != nil {
		return fmt.Errorf("movement: publish to %s: %w", topic, err)
	}
	b.sent.Add(1)
	return nil
}

// Subscribe registers handler for subject topic and flushes so the server has
// seen the interest before Subscribe returns.
func (b *NATSBus) Subscribe(ctx context.Context, topic string, handler Handler) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.nc.IsClosed() {
		return nil, ErrClosed
	}

	sub, err := b.nc.Subscribe(topic, func(m *nats.Msg) {
		b.received.Add(1)
		handler(m.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("movement: subscribe to %s: %w", topic, err)
	}
	if err := b.nc.FlushTimeout(flushTimeout); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("movement: flush subscription %s: %w", topic, err)
	}

	b.logger.Debug("subscribed to topic", "topic", topic)
	return natsSub{sub}, nil
}

type natsSub struct{ sub *nats.Subscription }

func (s natsSub) Close() error {
	if err := s.sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed && err != nats.ErrBadSubscription {
		return err
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (b *NATSBus) Close() error {
	if b.nc.IsClosed() {
		return nil
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
	}
	return nil
}
