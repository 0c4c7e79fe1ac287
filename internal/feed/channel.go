// Package feed implements the event channel that couples a historical
// or live price source to the run kernel: a bounded, cancellable,
// timeframe-gating stream of quant.Event values with heartbeat
// semantics. Grounded on internal/feed/feed.go's mutex-guarded map
// pattern for the closed-flag bookkeeping, and on the feed-simulator's
// ctx.Done()/ticker select loop for the producer/consumer shape.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/roboquant-go/roboquant/internal/errs"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// DefaultCapacity is the channel bound used when none is supplied.
const DefaultCapacity = 10

// Channel is a bounded FIFO of events gated to a Timeframe. Send and
// Close must only be called from the single producer goroutine;
// Receive may be called concurrently from the consumer.
type Channel struct {
	mu        sync.Mutex
	events    chan quant.Event
	closed    bool
	timeframe quant.Timeframe
}

// NewChannel builds a channel with the given buffer bound (DefaultCapacity
// if <= 0) gated to timeframe.
func NewChannel(bound int, timeframe quant.Timeframe) *Channel {
	if bound <= 0 {
		bound = DefaultCapacity
	}
	return &Channel{events: make(chan quant.Event, bound), timeframe: timeframe}
}

// Send enqueues event, blocking if the buffer is full (back-pressure)
// until there is room, ctx is cancelled, or the channel is closed.
// Events outside the timeframe are silently dropped; an event past the
// timeframe's end additionally closes the channel.
func (c *Channel) Send(ctx context.Context, event quant.Event) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errs.ErrClosedChannel
	}

	if !c.timeframe.Contains(event.Time) {
		if !event.Time.Before(c.timeframe.End) {
			c.Close()
		}
		return nil
	}

	select {
	case c.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close idempotently closes the channel. Pending buffered events remain
// deliverable; Receive reports end-of-stream once the buffer drains.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// IsClosed reports whether Close has been called.
func (c *Channel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Receive waits up to timeout for the next event. If the producer is
// slow, it synthesizes a heartbeat at now rather than blocking
// indefinitely; callers should clamp now to be no earlier than the
// last event's time, preserving time ordering. endOfStream is true once
// the channel is closed and its buffer has fully drained.
func (c *Channel) Receive(ctx context.Context, timeout time.Duration, now time.Time) (event quant.Event, endOfStream bool, err error) {
	select {
	case ev, ok := <-c.events:
		if !ok {
			return quant.Event{}, true, nil
		}
		return ev, false, nil
	case <-time.After(timeout):
		return quant.Heartbeat(now), false, nil
	case <-ctx.Done():
		return quant.Event{}, false, ctx.Err()
	}
}
