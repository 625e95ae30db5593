package snitray

import (
	"sync"
	"sync/atomic"
)

// eventBusCapacity is the ring buffer size for each subscriber. A slow
// consumer misses events rather than blocking a tracker goroutine.
const eventBusCapacity = 32

// eventBus is a broadcast fan-out of [Event] values. Trackers publish;
// consumers of [Client.Subscribe] each get their own channel. A subscriber
// that falls behind does not slow the publisher or other subscribers: once
// its buffer is full, the oldest undelivered event is discarded to make
// room for the newest, and the number discarded is tracked so the
// subscriber can detect the gap.
type eventBus struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// subscriber owns one subscriber's channel and serializes the evict-oldest-
// then-send sequence against itself, since publish may be called
// concurrently by multiple tracker goroutines.
type subscriber struct {
	ch      chan Event
	sendMu  sync.Mutex
	dropped atomic.Uint64
}

func (s *subscriber) send(e Event) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	select {
	case s.ch <- e:
		return
	default:
	}

	// Buffer full: drop the oldest buffered event to make room for the
	// newest, mirroring a ring buffer that overwrites its oldest slot.
	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}

	select {
	case s.ch <- e:
	default:
		// A concurrent receive could still race the line above; count this
		// event as dropped too rather than block the publisher.
		s.dropped.Add(1)
	}
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[*subscriber]struct{})}
}

// publish delivers e to every subscriber.
func (b *eventBus) publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		sub.send(e)
	}
}

// subscribe registers a new receive-only channel, a lag function reporting
// how many events have been dropped for this subscriber so far, and a
// cancel function that unsubscribes and releases the channel.
func (b *eventBus) subscribe() (events <-chan Event, lag func() uint64, cancel func()) {
	sub := &subscriber{ch: make(chan Event, eventBusCapacity)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	lag = func() uint64 { return sub.dropped.Load() }

	cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub.ch)
		}
	}

	return sub.ch, lag, cancel
}

// closeAll unsubscribes and closes every active subscriber channel. Called
// when the owning client shuts down.
func (b *eventBus) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}
