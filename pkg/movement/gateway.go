package movement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Gateway publishes travel commands and reports arrivals.
type Gateway struct {
	bus    Bus
	topics Topics
	logger *slog.Logger

	mu   sync.Mutex
	subs []Subscription

	dispatched atomic.Int64
	arrived    atomic.Int64
	last       atomic.Value // string
}

// NewGateway creates a gateway over bus.
func NewGateway(bus Bus, topics Topics, logger *slog.Logger) (*Gateway, error) {
	if err := topics.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		bus:    bus,
		topics: topics,
		logger: logger.With("component", "movement.gateway"),
	}, nil
}

// Dispatch publishes destination on the movement topic. It does not wait for
// the robot.
func (g *Gateway) Dispatch(ctx context.Context, destination string) error {
	if destination == "" {
		return fmt.Errorf("movement: empty destination")
	}
	if err := g.bus.Publish(ctx, g.topics.Movement, []byte(destination)); err != nil {
		return err
	}
	g.dispatched.Add(1)
	g.last.Store(destination)
	g.logger.Info("dispatched", "destination", destination, "topic", g.topics.Movement)
	return nil
}

// OnArrived calls fn once per notice on the arrived topic.
func (g *Gateway) OnArrived(ctx context.Context, fn func()) error {
	sub, err := g.bus.Subscribe(ctx, g.topics.Arrived, func([]byte) {
		g.arrived.Add(1)
		g.logger.Debug("arrival notice", "destination", g.LastDestination())
		fn()
	})
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
	return nil
}

// LastDestination returns the most recently dispatched destination.
func (g *Gateway) LastDestination() string {
	s, _ := g.last.Load().(string)
	return s
}

// GatewayStats counts gateway traffic.
type GatewayStats struct {
	Dispatched      int64  `json:"dispatched"`
	Arrived         int64  `json:"arrived"`
	LastDestination string `json:"last_destination,omitempty"`
}

// Stats returns gateway counters.
func (g *Gateway) Stats() GatewayStats {
	return GatewayStats{
		Dispatched:      g.dispatched.Load(),
		Arrived:         g.arrived.Load(),
		LastDestination: g.LastDestination(),
	}
}

// Close removes arrival subscriptions. The bus itself stays open.
func (g *Gateway) Close() error {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, s := range subs {
		if err := s.Close(); err != nil {
			g.logger.Warn("error closing subscription", "error", err)
		}
	}
	return nil
}
