package events

import (
	"fmt"
	"testing"
	"time"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	l := bus.Subscribe(16)
	for i := 0; i < 10; i++ {
		bus.Publish(New(KindDiagnostic, fmt.Sprintf("event-%d", i), nil))
	}

	for i := 0; i < 10; i++ {
		select {
		case ev := <-l.Events():
			want := fmt.Sprintf("event-%d", i)
			if ev.Message != want {
				t.Fatalf("event %d = %q, want %q", i, ev.Message, want)
			}
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
}

func TestBusDropsOldestWhenFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	l := bus.Subscribe(2)
	for i := 0; i < 5; i++ {
		bus.Publish(New(KindDiagnostic, fmt.Sprintf("event-%d", i), nil))
	}

	// Buffer of 2 after 5 publishes holds the newest two.
	first := <-l.Events()
	second := <-l.Events()
	if first.Message != "event-3" || second.Message != "event-4" {
		t.Errorf("kept events = %q, %q; want event-3, event-4", first.Message, second.Message)
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	// Subscriber that never reads.
	bus.Subscribe(1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.Publish(New(KindDiagnostic, "spam", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a stuck listener")
	}
}

func TestBusMultipleListeners(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a := bus.Subscribe(4)
	b := bus.Subscribe(4)
	bus.Publish(New(KindToolExecuted, "x", nil))

	for _, l := range []*Listener{a, b} {
		select {
		case ev := <-l.Events():
			if ev.Kind != KindToolExecuted {
				t.Errorf("kind = %s", ev.Kind)
			}
		case <-time.After(time.Second):
			t.Fatal("listener missed event")
		}
	}
}

func TestListenerClose(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	l := bus.Subscribe(4)
	l.Close()

	if _, ok := <-l.Events(); ok {
		t.Error("closed listener channel should be drained and closed")
	}

	// Publishing after a listener closed must not panic.
	bus.Publish(New(KindDiagnostic, "after close", nil))
}

func TestBusCloseClosesListeners(t *testing.T) {
	bus := NewBus()
	l := bus.Subscribe(4)
	bus.Close()

	if _, ok := <-l.Events(); ok {
		t.Error("bus close should close listener channels")
	}

	// Subscribe after close yields an already-closed listener.
	late := bus.Subscribe(4)
	if _, ok := <-late.Events(); ok {
		t.Error("late subscription should be closed immediately")
	}
}
