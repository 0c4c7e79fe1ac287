// Package exec implements per-order-type execution against a single
// price sample: the matching rule for Market, Limit, Stop, StopLimit,
// Trail and TrailLimit orders. Composite orders (OCO/OTO/Bracket) are
// linked at the broker level as groups of single-order tickets rather
// than as executors here, since their coordination (cancel-the-sibling,
// activate-on-completion) spans tickets rather than a single price
// match. Grounded on internal/paper/simulator.go's ExecuteMarket/
// ExecuteLimit branching and on the replay package's tryFill
// high/low-touch rules for Stop orders.
package exec

import (
	"github.com/roboquant-go/roboquant/internal/broker/pricing"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Execution is one fill produced by an executor.
type Execution struct {
	Size  quant.Size
	Price float64
}

// Executor runs one matching attempt for a tracked single order against
// the current event's price item. done reports whether the order has
// reached a terminal outcome (fully executed); a non-terminal executor
// is retried on the next event.
type Executor interface {
	Execute(eng pricing.Engine, item quant.PriceItem) (execs []Execution, done bool)
}

func sideOf(size quant.Size) pricing.Side {
	if size.IsNegative() {
		return pricing.Sell
	}
	return pricing.Buy
}

// New builds the executor for a single order. It panics on a composite
// or modify instruction, which callers must handle before reaching
// here.
func New(o order.Order) Executor {
	switch v := o.(type) {
	case order.MarketOrder:
		return &marketExec{order: v}
	case order.LimitOrder:
		return &limitExec{order: v}
	case order.StopOrder:
		return &stopExec{order: v}
	case order.StopLimitOrder:
		return &stopLimitExec{order: v}
	case order.TrailOrder:
		return &trailExec{order: v}
	case order.TrailLimitOrder:
		return &trailLimitExec{order: v}
	default:
		panic("exec: unsupported order type")
	}
}

type marketExec struct {
	order order.MarketOrder
}

func (e *marketExec) Execute(eng pricing.Engine, item quant.PriceItem) ([]Execution, bool) {
	side := sideOf(e.order.Size())
	price := eng.MarketPrice(item, side)
	return []Execution{{Size: e.order.Size(), Price: price}}, true
}

type limitExec struct {
	order order.LimitOrder
}

func (e *limitExec) Execute(eng pricing.Engine, item quant.PriceItem) ([]Execution, bool) {
	side := sideOf(e.order.Size())
	p := eng.MarketPrice(item, side)
	h := eng.HighPrice(item)
	l := eng.LowPrice(item)

	if side == pricing.Buy {
		if l > e.order.Limit {
			return nil, false
		}
		fill := min(p, e.order.Limit)
		return []Execution{{Size: e.order.Size(), Price: fill}}, true
	}
	if h < e.order.Limit {
		return nil, false
	}
	fill := max(p, e.order.Limit)
	return []Execution{{Size: e.order.Size(), Price: fill}}, true
}

type stopExec struct {
	order  order.StopOrder
	armed  bool
}

func (e *stopExec) Execute(eng pricing.Engine, item quant.PriceItem) ([]Execution, bool) {
	side := sideOf(e.order.Size())
	h := eng.HighPrice(item)
	l := eng.LowPrice(item)

	if !e.armed {
		if side == pricing.Buy && h < e.order.Stop {
			return nil, false
		}
		if side == pricing.Sell && l > e.order.Stop {
			return nil, false
		}
		e.armed = true
	}
	price := eng.MarketPrice(item, side)
	return []Execution{{Size: e.order.Size(), Price: price}}, true
}

type stopLimitExec struct {
	order order.StopLimitOrder
	armed bool
}

func (e *stopLimitExec) Execute(eng pricing.Engine, item quant.PriceItem) ([]Execution, bool) {
	side := sideOf(e.order.Size())
	h := eng.HighPrice(item)
	l := eng.LowPrice(item)

	if !e.armed {
		if side == pricing.Buy && h < e.order.Stop {
			return nil, false
		}
		if side == pricing.Sell && l > e.order.Stop {
			return nil, false
		}
		e.armed = true
	}

	p := eng.MarketPrice(item, side)
	if side == pricing.Buy {
		if l > e.order.Limit {
			return nil, false
		}
		return []Execution{{Size: e.order.Size(), Price: min(p, e.order.Limit)}}, true
	}
	if h < e.order.Limit {
		return nil, false
	}
	return []Execution{{Size: e.order.Size(), Price: max(p, e.order.Limit)}}, true
}

type trailExec struct {
	order      order.TrailOrder
	anchor     float64
	hasAnchor  bool
}

func (e *trailExec) Execute(eng pricing.Engine, item quant.PriceItem) ([]Execution, bool) {
	side := sideOf(e.order.Size())
	p := eng.MarketPrice(item, side)

	if !e.hasAnchor {
		e.anchor = p
		e.hasAnchor = true
	}

	triggered := false
	if side == pricing.Sell {
		e.anchor = max(e.anchor, p)
		if p <= e.anchor*(1-e.order.TrailPct) {
			triggered = true
		}
	} else {
		e.anchor = min(e.anchor, p)
		if p >= e.anchor*(1+e.order.TrailPct) {
			triggered = true
		}
	}

	if !triggered {
		return nil, false
	}
	return []Execution{{Size: e.order.Size(), Price: p}}, true
}

type trailLimitExec struct {
	order       order.TrailLimitOrder
	anchor      float64
	hasAnchor   bool
	triggered   bool
	triggerPx   float64
}

func (e *trailLimitExec) Execute(eng pricing.Engine, item quant.PriceItem) ([]Execution, bool) {
	side := sideOf(e.order.Size())
	p := eng.MarketPrice(item, side)

	if !e.triggered {
		if !e.hasAnchor {
			e.anchor = p
			e.hasAnchor = true
		}
		if side == pricing.Sell {
			e.anchor = max(e.anchor, p)
			if p <= e.anchor*(1-e.order.TrailPct) {
				e.triggered = true
				e.triggerPx = p
			}
		} else {
			e.anchor = min(e.anchor, p)
			if p >= e.anchor*(1+e.order.TrailPct) {
				e.triggered = true
				e.triggerPx = p
			}
		}
		if !e.triggered {
			return nil, false
		}
	}

	limit := e.triggerPx + e.order.LimitOffset
	h := eng.HighPrice(item)
	l := eng.LowPrice(item)
	if side == pricing.Buy {
		if l > limit {
			return nil, false
		}
		return []Execution{{Size: e.order.Size(), Price: min(p, limit)}}, true
	}
	if h < limit {
		return nil, false
	}
	return []Execution{{Size: e.order.Size(), Price: max(p, limit)}}, true
}
