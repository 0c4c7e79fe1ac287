package feed

import (
	"context"

	"github.com/roboquant-go/roboquant/internal/quant"
)

// Feed produces an ordered stream of events into a Channel. Concrete
// feed sources (CSV, vendor APIs, websockets) are out of scope; Feed is
// the abstract collaborator the run kernel and orchestrator consume.
type Feed interface {
	// Play drains events in time order into ch until the feed is
	// exhausted or ctx is cancelled, then closes ch.
	Play(ctx context.Context, ch *Channel) error
}

// FeedFunc adapts a plain function to the Feed interface.
type FeedFunc func(ctx context.Context, ch *Channel) error

func (f FeedFunc) Play(ctx context.Context, ch *Channel) error { return f(ctx, ch) }
