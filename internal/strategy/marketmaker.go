package strategy

import (
	"math"

	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// MarketMakerConfig parameterizes MarketMaker. Grounded on maker.go's
// MakerConfig: the same min-spread/spread-multiplier/inventory-skew
// shape, generalized from a quoted-bps-of-mid spread around a CLOB
// order book to a spread around whatever mid price an event's
// PriceItem resolves to.
type MarketMakerConfig struct {
	Asset quant.Asset

	MinSpreadBps     float64 // floor on the quoted full spread (buy to sell), in bps of mid
	SpreadMultiplier float64 // scales the inferred market spread (OrderBook events only)
	OrderSize        float64

	InventorySkewBps     float64 // shifts mid against net position, in bps per unit of MaxPosition
	InventoryWidenFactor float64 // widens the spread as inventory grows
	MaxPosition          float64 // inventory ratio denominator; 0 disables skew/widen
}

// MarketMaker quotes a resting buy/sell pair around the event's mid
// price every step, skewed and resized by the strategy's current net
// position the way maker.go's ComputeQuote skewed a Polymarket CLOB
// quote by inventory.
type MarketMaker struct {
	cfg MarketMakerConfig
}

// NewMarketMaker builds a MarketMaker quoting cfg.Asset.
func NewMarketMaker(cfg MarketMakerConfig) *MarketMaker {
	return &MarketMaker{cfg: cfg}
}

func (m *MarketMaker) Create(event quant.Event, account ledger.Account) []order.Instruction {
	item, ok := event.Items[m.cfg.Asset]
	if !ok {
		return nil
	}

	mid := item.PriceOf(quant.PriceDefault)
	if mid <= 0 {
		return nil
	}

	halfSpreadBps := m.cfg.MinSpreadBps / 2
	if book, ok := item.(quant.OrderBook); ok && len(book.Asks) > 0 && len(book.Bids) > 0 {
		marketSpreadBps := (book.Asks[0].Limit - book.Bids[0].Limit) / mid * 10000
		if inferred := marketSpreadBps * m.cfg.SpreadMultiplier / 2; inferred > halfSpreadBps {
			halfSpreadBps = inferred
		}
	}

	size := m.cfg.OrderSize
	if m.cfg.MaxPosition > 0 {
		netPosition := account.Positions[m.cfg.Asset.ID()].Size.Float()
		invRatio := netPosition / m.cfg.MaxPosition
		invRatio = math.Max(-1, math.Min(1, invRatio))

		mid -= mid * invRatio * m.cfg.InventorySkewBps / 10000
		halfSpreadBps *= 1 + math.Abs(invRatio)*m.cfg.InventoryWidenFactor
		size *= 1 - math.Abs(invRatio)*0.5
	}
	if size <= 0 {
		return nil
	}

	halfSpread := mid * halfSpreadBps / 10000
	buyPrice := mid - halfSpread
	sellPrice := mid + halfSpread
	if buyPrice <= 0 {
		return nil
	}

	buySize, err := quant.NewSize(size)
	if err != nil {
		return nil
	}
	sellSize, err := quant.NewSize(-size)
	if err != nil {
		return nil
	}

	return []order.Instruction{
		order.NewLimitOrder(m.cfg.Asset, buySize, buyPrice, order.Day(), "mm-buy"),
		order.NewLimitOrder(m.cfg.Asset, sellSize, sellPrice, order.Day(), "mm-sell"),
	}
}

func (m *MarketMaker) Reset() {}
