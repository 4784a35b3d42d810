// Package movement carries travel commands to the robot and arrival notices back.
//
// The wire protocol is two pub/sub topics: the destination name is published on
// the movement topic, and the robot publishes on the arrived topic once it gets
// there. The arrived payload is ignored; a notice always refers to the most
// recent dispatch. Any Bus (Redis, NATS or in-process) can carry the topics.
package movement

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Sentinel errors.
var (
	// ErrClosed is returned when publishing or subscribing on a closed bus.
	ErrClosed = errors.New("movement: bus closed")

	// ErrArrivalTimeout is returned by Signal.Wait when no arrival came in time.
	ErrArrivalTimeout = errors.New("movement: arrival timeout")
)

// Handler receives one message payload.
// Handlers run on the bus's delivery goroutine and must not block for long.
type Handler func(payload []byte)

// Subscription is an active topic subscription.
type Subscription interface {
	Close() error
}

// Bus is a minimal topic pub/sub transport.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers handler for topic. The subscription is active when
	// Subscribe returns.
	Subscribe(ctx context.Context, topic string, handler Handler) (Subscription, error)

	Close() error
}

// Topics names the two movement topics.
type Topics struct {
	Movement string `yaml:"movement" json:"movement"`
	Arrived  string `yaml:"arrived" json:"arrived"`
}

// DefaultTopics returns the standard topic names.
func DefaultTopics() Topics {
	return Topics{Movement: "movement", Arrived: "arrived"}
}

// WithPrefix returns topics under prefix, joined with sep.
func (t Topics) WithPrefix(prefix, sep string) Topics {
	if prefix == "" {
		return t
	}
	return Topics{
		Movement: fmt.Sprintf("%s%s%s", prefix, sep, t.Movement),
		Arrived:  fmt.Sprintf("%s%s%s", prefix, sep, t.Arrived),
	}
}

// Validate checks that both topics are set and distinct.
func (t Topics) Validate() error {
	if t.Movement == "" || t.Arrived == "" {
		return fmt.Errorf("movement: movement and arrived topics are required")
	}
	if t.Movement == t.Arrived {
		return fmt.Errorf("movement: movement and arrived topics must differ (both %q)", t.Movement)
	}
	return nil
}

// BusStats counts traffic through a bus.
type BusStats struct {
	MessagesSent     int64 `json:"messages_sent"`
	MessagesReceived int64 `json:"messages_received"`
}

// counters is embedded by bus implementations.
type counters struct {
	sent     atomic.Int64
	received atomic.Int64
}

// Stats returns traffic counters.
func (c *counters) Stats() BusStats {
	return BusStats{
		MessagesSent:     c.sent.Load(),
		MessagesReceived: c.received.Load(),
	}
}
