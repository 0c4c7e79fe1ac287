package quant

import "time"

// Event is a timestamp-ordered sample of prices across zero or more
// assets. An empty Items slice is a heartbeat: it carries no price
// information but still advances the simulation clock.
type Event struct {
	Time  time.Time
	Items map[Asset]PriceItem
}

// NewEvent builds an event from a list of (asset, item) pairs; if the
// same asset appears twice, the last one wins.
func NewEvent(t time.Time, pairs ...struct {
	Asset Asset
	Item  PriceItem
}) Event {
	items := make(map[Asset]PriceItem, len(pairs))
	for _, p := range pairs {
		items[p.Asset] = p.Item
	}
	return Event{Time: t, Items: items}
}

// Heartbeat returns an empty event at time t.
func Heartbeat(t time.Time) Event {
	return Event{Time: t, Items: map[Asset]PriceItem{}}
}

// IsHeartbeat reports whether the event carries no price information.
func (e Event) IsHeartbeat() bool { return len(e.Items) == 0 }

// Prices exposes the event's price-item map.
func (e Event) Prices() map[Asset]PriceItem { return e.Items }

// PriceOf returns the price of kind for asset in this event, and
// whether the asset was present at all.
func (e Event) PriceOf(asset Asset, kind PriceKind) (float64, bool) {
	item, ok := e.Items[asset]
	if !ok {
		return 0, false
	}
	return item.PriceOf(kind), true
}
