package movement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSignal(t *testing.T) {
	ctx := context.Background()

	t.Run("notify then wait", func(t *testing.T) {
		s := NewSignal()
		s.Notify()
		s.Notify() // collapses
		if err := s.Wait(ctx, time.Second); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if err := s.Wait(ctx, 10*time.Millisecond); !errors.Is(err, ErrArrivalTimeout) {
			t.Errorf("second Wait = %v, want ErrArrivalTimeout", err)
		}
	})

	t.Run("drain discards stale notice", func(t *testing.T) {
		s := NewSignal()
		s.Notify()
		s.Drain()
		if err := s.Wait(ctx, 10*time.Millisecond); !errors.Is(err, ErrArrivalTimeout) {
			t.Errorf("Wait after Drain = %v, want timeout", err)
		}
	})

	t.Run("zero timeout waits for context", func(t *testing.T) {
		s := NewSignal()
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if err := s.Wait(cctx, 0); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Wait = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("notify from another goroutine", func(t *testing.T) {
		s := NewSignal()
		go func() {
			time.Sleep(5 * time.Millisecond)
			s.Notify()
		}()
		if err := s.Wait(ctx, time.Second); err != nil {
			t.Errorf("Wait: %v", err)
		}
	})
}

func TestTopics(t *testing.T) {
	d := DefaultTopics()
	if d.Movement != "movement" || d.Arrived != "arrived" {
		t.Errorf("DefaultTopics = %+v", d)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	p := d.WithPrefix("museum", ".")
	if p.Movement != "museum.movement" || p.Arrived != "museum.arrived" {
		t.Errorf("WithPrefix = %+v", p)
	}
	if err := (Topics{Movement: "x", Arrived: "x"}).Validate(); err == nil {
		t.Error("identical topics should be invalid")
	}
	if err := (Topics{Movement: "x"}).Validate(); err == nil {
		t.Error("missing topic should be invalid")
	}
}

func TestMemoryBus(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus()
	defer bus.Close()

	got := make(chan string, 4)
	sub, err := bus.Subscribe(ctx, "movement", func(p []byte) { got <- string(p) })
	if err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(ctx, "movement", []byte("Ocean Wonders Zone")); err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(ctx, "other", []byte("ignored")); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-got:
		if msg != "Ocean Wonders Zone" {
			t.Errorf("got %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}

	sub.Close()
	bus.Publish(ctx, "movement", []byte("after close"))
	select {
	case msg := <-got:
		t.Errorf("delivered after unsubscribe: %q", msg)
	case <-time.After(20 * time.Millisecond):
	}

	if st := bus.Stats(); st.MessagesSent != 3 || st.MessagesReceived != 1 {
		t.Errorf("Stats = %+v", st)
	}

	bus.Close()
	if err := bus.Publish(ctx, "movement", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after Close = %v, want ErrClosed", err)
	}
	if _, err := bus.Subscribe(ctx, "movement", func([]byte) {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after Close = %v, want ErrClosed", err)
	}
}

func TestGatewayWithSimulator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewMemoryBus()
	defer bus.Close()

	var mu sync.Mutex
	var commands []string
	sim := NewSimulator(bus, DefaultTopics(), 5*time.Millisecond, nil)
	sim.OnCommand = func(dest string) {
		mu.Lock()
		commands = append(commands, dest)
		mu.Unlock()
	}
	if err := sim.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	gw, err := NewGateway(bus, DefaultTopics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer gw.Close()

	arrived := NewSignal()
	if err := gw.OnArrived(ctx, arrived.Notify); err != nil {
		t.Fatal(err)
	}

	for _, dest := range []string{"Natural History Wing", "home"} {
		arrived.Drain()
		if err := gw.Dispatch(ctx, dest); err != nil {
			t.Fatalf("Dispatch(%q): %v", dest, err)
		}
		if err := arrived.Wait(ctx, time.Second); err != nil {
			t.Fatalf("Wait after %q: %v", dest, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(commands) != 2 || commands[0] != "Natural History Wing" || commands[1] != "home" {
		t.Errorf("robot saw %v", commands)
	}

	st := gw.Stats()
	if st.Dispatched != 2 || st.Arrived != 2 || st.LastDestination != "home" {
		t.Errorf("Stats = %+v", st)
	}

	if err := gw.Dispatch(ctx, ""); err == nil {
		t.Error("empty destination should fail")
	}
}

func TestDialNATSUnreachable(t *testing.T) {
	if _, err := DialNATS("nats://127.0.0.1:1", nil); err == nil {
		t.Fatal("expected connection error")
	}
}
