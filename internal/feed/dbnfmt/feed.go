package dbnfmt

import (
	"context"
	"time"

	"github.com/roboquant-go/roboquant/internal/feed"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Feed replays a persisted binary feed file's records as quant.Events,
// regrouping records that share a timestamp back into a single event.
// Grounded on internal/feed/memory.go's Play shape, reading from a
// Reader/Scanner pair instead of an in-memory slice.
type Feed struct {
	r *Reader
}

// New builds a Feed over an already-opened Reader.
func New(r *Reader) *Feed { return &Feed{r: r} }

// Play decodes records in file order into quant.Events and sends them
// into ch, then closes ch. It returns early if ctx is cancelled or ch
// rejects a send.
func (f *Feed) Play(ctx context.Context, ch *feed.Channel) error {
	defer ch.Close()

	if err := f.r.Rewind(); err != nil {
		return err
	}
	scanner := NewScanner(f.r)

	var curTime time.Time
	haveCur := false
	items := map[quant.Asset]quant.PriceItem{}

	flush := func() error {
		if !haveCur {
			return nil
		}
		event := quant.Event{Time: curTime, Items: items}
		items = map[quant.Asset]quant.PriceItem{}
		return ch.Send(ctx, event)
	}

	for scanner.Next() {
		rec := scanner.Record()
		t := time.Unix(0, rec.TimeNanos).UTC()

		if haveCur && !t.Equal(curTime) {
			if err := flush(); err != nil {
				return err
			}
			if ch.IsClosed() {
				return nil
			}
		}
		curTime = t
		haveCur = true

		asset, err := f.r.AssetAt(rec.AssetIndex)
		if err != nil {
			return err
		}
		item, err := toPriceItem(rec)
		if err != nil {
			return err
		}
		items[asset] = item
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

// ReadAll decodes every record in r, from the beginning, into a
// time-ordered slice of quant.Events, regrouping same-timestamp records
// the same way Play does. Unlike Play, the whole dataset ends up in
// memory at once, for callers (the orchestrator's sweeps) that need
// random access to windows of it rather than a single sequential pass.
func ReadAll(r *Reader) ([]quant.Event, error) {
	if err := r.Rewind(); err != nil {
		return nil, err
	}
	scanner := NewScanner(r)

	var events []quant.Event
	var curTime time.Time
	haveCur := false
	items := map[quant.Asset]quant.PriceItem{}

	flush := func() {
		if !haveCur {
			return
		}
		events = append(events, quant.Event{Time: curTime, Items: items})
		items = map[quant.Asset]quant.PriceItem{}
	}

	for scanner.Next() {
		rec := scanner.Record()
		t := time.Unix(0, rec.TimeNanos).UTC()

		if haveCur && !t.Equal(curTime) {
			flush()
		}
		curTime = t
		haveCur = true

		asset, err := r.AssetAt(rec.AssetIndex)
		if err != nil {
			return nil, err
		}
		item, err := toPriceItem(rec)
		if err != nil {
			return nil, err
		}
		items[asset] = item
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return events, nil
}
