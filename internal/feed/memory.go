package feed

import (
	"context"
	"sort"

	"github.com/roboquant-go/roboquant/internal/quant"
)

// MemoryFeed replays a fixed, in-memory slice of events in time order.
// It is the reference Feed used by kernel and orchestrator tests and by
// small backtests that fit entirely in memory.
type MemoryFeed struct {
	events []quant.Event
}

// NewMemoryFeed builds a MemoryFeed from events, sorting them by time.
// Events sharing a timestamp keep their relative order (stable sort).
func NewMemoryFeed(events []quant.Event) *MemoryFeed {
	sorted := make([]quant.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return &MemoryFeed{events: sorted}
}

// Play sends every event into ch in time order, then closes ch. It
// returns early if ctx is cancelled or ch rejects a send.
func (f *MemoryFeed) Play(ctx context.Context, ch *Channel) error {
	defer ch.Close()
	for _, event := range f.events {
		if err := ch.Send(ctx, event); err != nil {
			return err
		}
		if ch.IsClosed() {
			return nil
		}
	}
	return nil
}

// Timeframe returns the span from the first to the last event, or the
// empty timeframe if there are none.
func (f *MemoryFeed) Timeframe() quant.Timeframe {
	if len(f.events) == 0 {
		return quant.Empty()
	}
	return quant.Timeframe{Start: f.events[0].Time, End: f.events[len(f.events)-1].Time, Inclusive: true}
}
