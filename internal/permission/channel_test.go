package permission

import (
	"context"
	"testing"
	"time"

	"aircher/internal/policy"
)

func testRequest() *Request {
	return &Request{
		Tool:        "bash",
		Command:     "npm test",
		Description: "Run command: npm test",
		Level:       policy.SafetyCaution,
	}
}

func TestAskApproved(t *testing.T) {
	ch := NewChannel(1, time.Minute)

	go func() {
		ask := <-ch.Requests()
		if ask.Request.Tool != "bash" {
			t.Errorf("request tool = %q", ask.Request.Tool)
		}
		ask.Respond(Approved)
	}()

	resp, err := ch.Ask(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp != Approved {
		t.Errorf("response = %s, want approved", resp)
	}
}

func TestAskTimeoutDenies(t *testing.T) {
	ch := NewChannel(1, 20*time.Millisecond)

	// No approver drains the channel in time.
	resp, err := ch.Ask(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp != Denied {
		t.Errorf("timed-out request = %s, want denied", resp)
	}
}

func TestRespondSingleUse(t *testing.T) {
	ch := NewChannel(1, time.Minute)

	got := make(chan Response, 1)
	go func() {
		resp, _ := ch.Ask(context.Background(), testRequest())
		got <- resp
	}()

	ask := <-ch.Requests()
	if won := ask.Respond(Approved); !won {
		t.Error("first Respond should win")
	}
	if won := ask.Respond(Denied); won {
		t.Error("second Respond must be a no-op")
	}

	if resp := <-got; resp != Approved {
		t.Errorf("response = %s, want approved (first answer wins)", resp)
	}
}

func TestLateRespondAfterTimeout(t *testing.T) {
	ch := NewChannel(1, 20*time.Millisecond)

	done := make(chan Response, 1)
	go func() {
		resp, _ := ch.Ask(context.Background(), testRequest())
		done <- resp
	}()

	ask := <-ch.Requests()
	resp := <-done
	if resp != Denied {
		t.Fatalf("response = %s, want denied after timeout", resp)
	}

	// The approver answering after the deny must not panic or block.
	if won := ask.Respond(Approved); won {
		t.Error("late Respond should lose to the timeout deny")
	}
}

func TestAskContextCancelled(t *testing.T) {
	ch := NewChannel(1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		resp, err := ch.Ask(ctx, testRequest())
		if err == nil {
			t.Error("expected context error")
		}
		if resp != Denied {
			t.Errorf("cancelled request = %s, want denied", resp)
		}
		close(done)
	}()

	// Let the request enqueue, then cancel.
	<-ch.Requests()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Ask did not return after context cancellation")
	}
}

func TestAskAfterClose(t *testing.T) {
	ch := NewChannel(1, time.Minute)
	ch.Close()

	resp, err := ch.Ask(context.Background(), testRequest())
	if err == nil {
		t.Error("expected error after Close")
	}
	if resp != Denied {
		t.Errorf("response after close = %s, want denied", resp)
	}
}

func TestResponseAllowed(t *testing.T) {
	if Denied.Allowed() {
		t.Error("denied must not be allowed")
	}
	if !Approved.Allowed() || !ApprovedSimilar.Allowed() {
		t.Error("approved responses must be allowed")
	}
}
