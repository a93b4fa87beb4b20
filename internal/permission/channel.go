package permission

import (
	"context"
	"errors"
	"sync"
	"time"

	"aircher/internal/logging"
)

// DefaultTimeout is how long Ask waits for an approver before denying.
const DefaultTimeout = 60 * time.Second

// ErrChannelClosed is returned when asking on a closed channel.
var ErrChannelClosed = errors.New("permission channel closed")

// Ask is a single permission request in flight. The approver resolves it
// exactly once with Respond; later calls are no-ops.
type Ask struct {
	Request *Request

	once  sync.Once
	reply chan Response
}

// Respond resolves the request. It reports whether this call won the
// resolution; a false return means the request was already resolved
// (typically by a timeout deny).
func (a *Ask) Respond(r Response) bool {
	won := false
	a.once.Do(func() {
		a.reply <- r
		won = true
	})
	return won
}

// Channel carries permission requests from the agent loop to an approver
// frontend. The agent blocks in Ask; the approver drains Requests and calls
// Respond on each. Unanswered requests deny after the timeout.
type Channel struct {
	asks    chan *Ask
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewChannel creates a channel with the given queue capacity and per-request
// timeout. Non-positive values fall back to a capacity of 1 and
// DefaultTimeout.
func NewChannel(capacity int, timeout time.Duration) *Channel {
	if capacity <= 0 {
		capacity = 1
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Channel{
		asks:    make(chan *Ask, capacity),
		timeout: timeout,
	}
}

// Requests is the approver side: each received Ask must be answered with
// Respond, though the channel denies on its own after the timeout.
func (c *Channel) Requests() <-chan *Ask {
	return c.asks
}

// Ask submits a request and blocks until the approver responds, the timeout
// elapses, or ctx is done. Timeout and cancellation resolve to Denied.
func (c *Channel) Ask(ctx context.Context, req *Request) (Response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Denied, ErrChannelClosed
	}
	c.mu.Unlock()

	a := &Ask{
		Request: req,
		reply:   make(chan Response, 1),
	}

	select {
	case c.asks <- a:
	case <-ctx.Done():
		return Denied, ctx.Err()
	}

	logging.Debug("permission requested",
		"tool", req.Tool,
		"level", req.Level.String(),
		"description", req.Description)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-a.reply:
		logging.Info("permission resolved",
			"tool", req.Tool,
			"response", r.String())
		return r, nil
	case <-timer.C:
		// The approver may respond in the same instant; whoever wins the
		// once determines the outcome, so read the slot back either way.
		a.Respond(Denied)
		r := <-a.reply
		logging.Warn("permission request timed out",
			"tool", req.Tool,
			"response", r.String())
		return r, nil
	case <-ctx.Done():
		a.Respond(Denied)
		return Denied, ctx.Err()
	}
}

// Close rejects future Ask calls. In-flight requests still resolve.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
