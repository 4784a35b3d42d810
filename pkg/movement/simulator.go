package movement

import (
	"context"
	"log/slog"
	"time"
)

// Simulator stands in for the robot: it listens on the movement topic, waits
// a travel delay and announces arrival.
type Simulator struct {
	bus    Bus
	topics Topics
	delay  time.Duration
	logger *slog.Logger

	// OnCommand, when set, is called for every received destination.
	OnCommand func(destination string)
}

// NewSimulator creates a simulated robot on bus.
func NewSimulator(bus Bus, topics Topics, delay time.Duration, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		bus:    bus,
		topics: topics,
		delay:  delay,
		logger: logger.With("component", "movement.simulator"),
	}
}

// Start subscribes to the movement topic and returns once the robot is
// listening. Commands are handled until ctx is cancelled.
func (s *Simulator) Start(ctx context.Context) error {
	commands := make(chan string, 8)

	sub, err := s.bus.Subscribe(ctx, s.topics.Movement, func(payload []byte) {
		select {
		case commands <- string(payload):
		default:
			s.logger.Warn("command queue full, dropping", "destination", string(payload))
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("robot simulator listening", "topic", s.topics.Movement, "travel_delay", s.delay)

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case dest := <-commands:
				s.travel(ctx, dest)
			}
		}
	}()
	return nil
}

// Run is Start followed by blocking until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (s *Simulator) travel(ctx context.Context, dest string) {
	s.logger.Info("received movement command", "destination", dest)
	if s.OnCommand != nil {
		s.OnCommand(dest)
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	if err := s.bus.Publish(ctx, s.topics.Arrived, []byte(dest)); err != nil {
		s.logger.Warn("failed to announce arrival", "destination", dest, "error", err)
		return
	}
	s.logger.Info("arrived", "destination", dest)
}
