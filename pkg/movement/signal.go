package movement

import (
	"context"
	"time"
)

// Signal is a single-slot arrival flag. Notify never blocks and repeated
// notices before a Wait collapse into one.
type Signal struct {
	ch chan struct{}
}

// NewSignal creates an unset signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify sets the signal.
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Drain clears a pending notice. Call it before dispatching so a stale
// arrival is not mistaken for the new one.
func (s *Signal) Drain() {
	select {
	case <-s.ch:
	default:
	}
}

// Wait blocks until the signal is set and consumes it. A positive timeout
// bounds the wait and yields ErrArrivalTimeout; zero waits until ctx is done.
func (s *Signal) Wait(ctx context.Context, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-s.ch:
		return nil
	case <-expired:
		return ErrArrivalTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
