package events

import (
	"sync"

	"aircher/internal/logging"
)

// DefaultListenerBuffer is the per-listener event buffer size.
const DefaultListenerBuffer = 64

// Bus is a process-wide publish/subscribe fanout for agent events.
//
// Publication is fire-and-forget: each listener has a bounded buffer, and
// when a listener falls behind the oldest buffered event is dropped for that
// listener. A slow or stuck listener never blocks the publisher or other
// listeners.
type Bus struct {
	mu        sync.Mutex
	listeners map[int]*Listener
	nextID    int
	closed    bool
}

// Listener receives events from a Bus in publication order.
type Listener struct {
	bus *Bus
	id  int
	ch  chan Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]*Listener)}
}

// Subscribe registers a listener with the given buffer size.
// A buffer of 0 or less uses DefaultListenerBuffer.
func (b *Bus) Subscribe(buffer int) *Listener {
	if buffer <= 0 {
		buffer = DefaultListenerBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l := &Listener{bus: b, id: b.nextID, ch: make(chan Event, buffer)}
	b.nextID++
	if !b.closed {
		b.listeners[l.id] = l
	} else {
		close(l.ch)
	}
	return l
}

// Publish delivers an event to every listener without blocking.
// Per-listener ordering is preserved; delivery order across listeners is not.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, l := range b.listeners {
		deliver(l.ch, ev)
	}
}

// deliver enqueues an event, dropping the oldest buffered event if needed.
// The bus lock serializes publishers, so the drop-then-retry below cannot
// race with another send.
func deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}

	// Buffer full: drop the oldest event for this listener.
	select {
	case <-ch:
		logging.Debug("event bus dropped oldest event for slow listener")
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}

// Close shuts the bus down and closes all listener channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, l := range b.listeners {
		close(l.ch)
		delete(b.listeners, id)
	}
}

// Events returns the listener's receive channel.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Close unsubscribes the listener and closes its channel.
func (l *Listener) Close() {
	l.bus.mu.Lock()
	defer l.bus.mu.Unlock()

	if _, ok := l.bus.listeners[l.id]; ok {
		delete(l.bus.listeners, l.id)
		close(l.ch)
	}
}
