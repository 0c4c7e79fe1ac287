package strategy

import (
	"math"
	"time"

	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// MomentumConfig parameterizes Momentum. Grounded on taker.go's
// TakerConfig: the same min-imbalance/cooldown/amount shape,
// generalized from parsed CLOB depth strings to an OrderBook event's
// own BookLevel sizes.
type MomentumConfig struct {
	Asset quant.Asset

	MinImbalance float64       // minimum |bidDepth-askDepth|/totalDepth to act on
	DepthLevels  int           // book levels summed per side
	Size         float64       // order size, in the asset's own units
	Cooldown     time.Duration // minimum time between two orders
}

// Momentum reads order-book depth imbalance and crosses the spread in
// the heavier side's direction, the way taker.go's Evaluate crossed a
// CLOB book on a depth-imbalance signal — generalized from a
// USDC-notional market order to a sized market order against any asset.
type Momentum struct {
	cfg       MomentumConfig
	lastTrade time.Time
	hasTraded bool
}

// NewMomentum builds a Momentum strategy trading cfg.Asset.
func NewMomentum(cfg MomentumConfig) *Momentum {
	if cfg.DepthLevels <= 0 {
		cfg.DepthLevels = 1
	}
	return &Momentum{cfg: cfg}
}

func (m *Momentum) Create(event quant.Event, account ledger.Account) []order.Instruction {
	item, ok := event.Items[m.cfg.Asset]
	if !ok {
		return nil
	}
	book, ok := item.(quant.OrderBook)
	if !ok || len(book.Bids) == 0 || len(book.Asks) == 0 {
		return nil
	}

	if m.hasTraded && event.Time.Sub(m.lastTrade) < m.cfg.Cooldown {
		return nil
	}

	var bidDepth, askDepth float64
	for i := 0; i < m.cfg.DepthLevels && i < len(book.Bids); i++ {
		bidDepth += book.Bids[i].Size
	}
	for i := 0; i < m.cfg.DepthLevels && i < len(book.Asks); i++ {
		askDepth += book.Asks[i].Size
	}
	totalDepth := bidDepth + askDepth
	if totalDepth == 0 {
		return nil
	}

	imbalance := (bidDepth - askDepth) / totalDepth
	if math.Abs(imbalance) < m.cfg.MinImbalance {
		return nil
	}

	size := m.cfg.Size
	if imbalance < 0 {
		size = -size
	}
	orderSize, err := quant.NewSize(size)
	if err != nil {
		return nil
	}

	m.lastTrade = event.Time
	m.hasTraded = true
	return []order.Instruction{order.NewMarketOrder(m.cfg.Asset, orderSize, order.ImmediateOrCancel(), "momentum")}
}

func (m *Momentum) Reset() {
	m.hasTraded = false
	m.lastTrade = time.Time{}
}
