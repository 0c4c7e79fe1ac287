package quant

import "time"

// PriceKind selects which price a PriceItem should report.
type PriceKind int

const (
	PriceDefault PriceKind = iota
	PriceOpen
	PriceHigh
	PriceLow
	PriceClose
)

// PriceItem is a closed variant: exactly one of PriceBar, TradePrice,
// PriceQuote or OrderBook reaches the broker for a given asset per
// event. Modeled as an interface implemented by four concrete structs
// rather than an open class hierarchy.
type PriceItem interface {
	PriceOf(kind PriceKind) float64
	isPriceItem()
}

// OHLCV is an open/high/low/close/volume bar over a span.
type OHLCV struct {
	Open, High, Low, Close, Volume float64
}

// PriceBar is a bar-sampled price with its span (e.g. 1m, 1h, 1d).
type PriceBar struct {
	Bar  OHLCV
	Span time.Duration
}

func (p PriceBar) isPriceItem() {}

func (p PriceBar) PriceOf(kind PriceKind) float64 {
	switch kind {
	case PriceOpen:
		return p.Bar.Open
	case PriceHigh:
		return p.Bar.High
	case PriceLow:
		return p.Bar.Low
	case PriceClose, PriceDefault:
		return p.Bar.Close
	default:
		return p.Bar.Close
	}
}

// TradePrice is a single last-trade print.
type TradePrice struct {
	Price  float64
	Volume float64
}

func (p TradePrice) isPriceItem() {}

func (p TradePrice) PriceOf(kind PriceKind) float64 { return p.Price }

// PriceQuote is a top-of-book bid/ask quote.
type PriceQuote struct {
	Ask     float64
	AskSize float64
	Bid     float64
	BidSize float64
}

func (p PriceQuote) isPriceItem() {}

func (p PriceQuote) PriceOf(kind PriceKind) float64 {
	switch kind {
	case PriceHigh:
		return p.Ask
	case PriceLow:
		return p.Bid
	default:
		return (p.Ask + p.Bid) / 2
	}
}

// BookLevel is a single price/size level in an OrderBook.
type BookLevel struct {
	Size  float64
	Limit float64
}

// OrderBook is a multi-level order book snapshot.
type OrderBook struct {
	Asks []BookLevel
	Bids []BookLevel
}

func (p OrderBook) isPriceItem() {}

// PriceOf reports the volume-weighted mid of level-1 unless a specific
// kind is explicitly requested (HIGH -> best ask, LOW -> best bid, as
// the natural "most aggressive buy/sell price" reading).
func (p OrderBook) PriceOf(kind PriceKind) float64 {
	if len(p.Asks) == 0 || len(p.Bids) == 0 {
		return 0
	}
	bestAsk, bestBid := p.Asks[0], p.Bids[0]
	switch kind {
	case PriceHigh:
		return bestAsk.Limit
	case PriceLow:
		return bestBid.Limit
	default:
		totalSize := bestAsk.Size + bestBid.Size
		if totalSize == 0 {
			return (bestAsk.Limit + bestBid.Limit) / 2
		}
		// Volume-weighted mid: weight each side's price by the
		// opposing side's size, so a thin ask against a thick bid
		// pulls the mid toward the ask (more likely to trade there).
		return (bestAsk.Limit*bestBid.Size + bestBid.Limit*bestAsk.Size) / totalSize
	}
}
