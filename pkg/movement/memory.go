package movement

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. Delivery is asynchronous and in publish order
// per subscriber.
type MemoryBus struct {
	counters

	mu     sync.Mutex
	subs   map[string]map[*memorySub]struct{}
	closed bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*memorySub]struct{})}
}

type memorySub struct {
	bus     *MemoryBus
	topic   string
	handler Handler
	ch      chan []byte
	done    chan struct{}
	once    sync.Once
}

// Publish delivers payload to every current subscriber of topic.
// A subscriber whose queue is full drops the message, like Redis pub/sub.
func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	data := append([]byte(nil), payload...)
	for s := range b.subs[topic] {
		select {
		case s.ch <- data:
		default:
		}
	}
	b.sent.Add(1)
	return nil
}

// Subscribe registers handler for topic.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string, handler Handler) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	s := &memorySub{
		bus:     b,
		topic:   topic,
		handler: handler,
		ch:      make(chan []byte, 16),
		done:    make(chan struct{}),
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySub]struct{})
	}
	b.subs[topic][s] = struct{}{}

	go s.loop()
	return s, nil
}

func (s *memorySub) loop() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.ch:
			s.bus.received.Add(1)
			s.handler(data)
		}
	}
}

// Close unsubscribes. Safe to call more than once.
func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.topic], s)
		s.bus.mu.Unlock()
		close(s.done)
	})
	return nil
}

// Close shuts the bus and every subscription.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*memorySub
	for _, set := range b.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	b.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	return nil
}
