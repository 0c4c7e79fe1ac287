package order

import (
	"fmt"

	"github.com/roboquant-go/roboquant/internal/errs"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Order is the closed variant of all order creation types a strategy
// may emit: single orders (Market, Limit, Stop, StopLimit, Trail,
// TrailLimit) and composite orders (OCO, OTO, Bracket). Modeled as an
// interface implemented by a fixed set of concrete structs rather than
// an open class hierarchy, matching PriceItem's design.
type Order interface {
	Asset() quant.Asset
	Size() quant.Size
	Tag() string
	TIF() TIF
	Validate() error
	isOrder()
}

// Instruction is anything a strategy may place with the broker: a new
// Order, or a modify instruction (Cancel, Update) against an
// already-tracked order.
type Instruction interface {
	isInstruction()
}

// base carries the fields common to every single order type.
type base struct {
	asset quant.Asset
	size  quant.Size
	tif   TIF
	tag   string
}

func (b base) Asset() quant.Asset { return b.asset }
func (b base) Size() quant.Size   { return b.size }
func (b base) Tag() string        { return b.tag }
func (b base) TIF() TIF           { return b.tif }

func (b base) validateBase() error {
	if b.size.IsZero() {
		return fmt.Errorf("%w: order size must be non-zero", errs.ErrValidation)
	}
	return nil
}

// MarketOrder executes against the next available price, unconditionally.
type MarketOrder struct {
	base
}

func NewMarketOrder(asset quant.Asset, size quant.Size, tif TIF, tag string) MarketOrder {
	return MarketOrder{base{asset: asset, size: size, tif: tif, tag: tag}}
}

func (o MarketOrder) isOrder()          {}
func (o MarketOrder) Validate() error   { return o.validateBase() }

// LimitOrder executes only at Limit or better.
type LimitOrder struct {
	base
	Limit float64
}

func NewLimitOrder(asset quant.Asset, size quant.Size, limit float64, tif TIF, tag string) LimitOrder {
	return LimitOrder{base{asset: asset, size: size, tif: tif, tag: tag}, limit}
}

func (o LimitOrder) isOrder() {}
func (o LimitOrder) Validate() error {
	if err := o.validateBase(); err != nil {
		return err
	}
	if o.Limit <= 0 {
		return fmt.Errorf("%w: limit price must be positive", errs.ErrValidation)
	}
	return nil
}

// StopOrder becomes a market order once the stop price is touched.
type StopOrder struct {
	base
	Stop float64
}

func NewStopOrder(asset quant.Asset, size quant.Size, stop float64, tif TIF, tag string) StopOrder {
	return StopOrder{base{asset: asset, size: size, tif: tif, tag: tag}, stop}
}

func (o StopOrder) isOrder() {}
func (o StopOrder) Validate() error {
	if err := o.validateBase(); err != nil {
		return err
	}
	if o.Stop <= 0 {
		return fmt.Errorf("%w: stop price must be positive", errs.ErrValidation)
	}
	return nil
}

// StopLimitOrder becomes a limit order once the stop price is touched.
type StopLimitOrder struct {
	base
	Stop  float64
	Limit float64
}

func NewStopLimitOrder(asset quant.Asset, size quant.Size, stop, limit float64, tif TIF, tag string) StopLimitOrder {
	return StopLimitOrder{base{asset: asset, size: size, tif: tif, tag: tag}, stop, limit}
}

func (o StopLimitOrder) isOrder() {}
func (o StopLimitOrder) Validate() error {
	if err := o.validateBase(); err != nil {
		return err
	}
	if o.Stop <= 0 || o.Limit <= 0 {
		return fmt.Errorf("%w: stop and limit price must be positive", errs.ErrValidation)
	}
	return nil
}

// TrailOrder tracks the favorable extreme price and triggers a market
// order once price retraces by TrailPct, a fraction of that extreme
// (0.05 trails 5% off the high/low), not an absolute price distance.
type TrailOrder struct {
	base
	TrailPct float64
}

func NewTrailOrder(asset quant.Asset, size quant.Size, trailPct float64, tif TIF, tag string) TrailOrder {
	return TrailOrder{base{asset: asset, size: size, tif: tif, tag: tag}, trailPct}
}

func (o TrailOrder) isOrder() {}
func (o TrailOrder) Validate() error {
	if err := o.validateBase(); err != nil {
		return err
	}
	if o.TrailPct <= 0 {
		return fmt.Errorf("%w: trail percentage must be positive", errs.ErrValidation)
	}
	return nil
}

// TrailLimitOrder is a TrailOrder whose trigger places a limit order
// offset from the trigger price by LimitOffset rather than a market
// order.
type TrailLimitOrder struct {
	base
	TrailPct    float64
	LimitOffset float64
}

func NewTrailLimitOrder(asset quant.Asset, size quant.Size, trailPct, limitOffset float64, tif TIF, tag string) TrailLimitOrder {
	return TrailLimitOrder{base{asset: asset, size: size, tif: tif, tag: tag}, trailPct, limitOffset}
}

func (o TrailLimitOrder) isOrder() {}
func (o TrailLimitOrder) Validate() error {
	if err := o.validateBase(); err != nil {
		return err
	}
	if o.TrailPct <= 0 {
		return fmt.Errorf("%w: trail percentage must be positive", errs.ErrValidation)
	}
	return nil
}

// OCOOrder (one-cancels-other) links two single orders on the same
// asset and size; when one fills or is cancelled, the broker cancels
// the other.
type OCOOrder struct {
	First, Second Order
	tag           string
}

func NewOCOOrder(first, second Order, tag string) OCOOrder {
	return OCOOrder{First: first, Second: second, tag: tag}
}

func (o OCOOrder) Asset() quant.Asset { return o.First.Asset() }
func (o OCOOrder) Size() quant.Size   { return o.First.Size() }
func (o OCOOrder) Tag() string        { return o.tag }
func (o OCOOrder) TIF() TIF           { return o.First.TIF() }
func (o OCOOrder) isOrder()           {}
func (o OCOOrder) isInstruction()     {}

func (o OCOOrder) Validate() error {
	if err := o.First.Validate(); err != nil {
		return err
	}
	if err := o.Second.Validate(); err != nil {
		return err
	}
	if !o.First.Asset().Equal(o.Second.Asset()) {
		return fmt.Errorf("%w: OCO legs must share an asset", errs.ErrValidation)
	}
	if o.First.Size().Cmp(o.Second.Size()) != 0 {
		return fmt.Errorf("%w: OCO legs must share a size", errs.ErrValidation)
	}
	return nil
}

// OTOOrder (one-triggers-other) places Secondary only once Primary
// completes.
type OTOOrder struct {
	Primary, Secondary Order
	tag                string
}

func NewOTOOrder(primary, secondary Order, tag string) OTOOrder {
	return OTOOrder{Primary: primary, Secondary: secondary, tag: tag}
}

func (o OTOOrder) Asset() quant.Asset { return o.Primary.Asset() }
func (o OTOOrder) Size() quant.Size   { return o.Primary.Size() }
func (o OTOOrder) Tag() string        { return o.tag }
func (o OTOOrder) TIF() TIF           { return o.Primary.TIF() }
func (o OTOOrder) isOrder()           {}
func (o OTOOrder) isInstruction()     {}

func (o OTOOrder) Validate() error {
	if err := o.Primary.Validate(); err != nil {
		return err
	}
	if err := o.Secondary.Validate(); err != nil {
		return err
	}
	if !o.Primary.Asset().Equal(o.Secondary.Asset()) {
		return fmt.Errorf("%w: OTO legs must share an asset", errs.ErrValidation)
	}
	return nil
}

// BracketOrder is an entry order with an attached take-profit and
// stop-loss leg, the two exit legs forming an OCO once the entry fills.
// Entry, TakeProfit and StopLoss must share an asset; the exit legs
// must exactly offset the entry size.
type BracketOrder struct {
	Entry, TakeProfit, StopLoss Order
	tag                         string
}

func NewBracketOrder(entry, takeProfit, stopLoss Order, tag string) BracketOrder {
	return BracketOrder{Entry: entry, TakeProfit: takeProfit, StopLoss: stopLoss, tag: tag}
}

func (o BracketOrder) Asset() quant.Asset { return o.Entry.Asset() }
func (o BracketOrder) Size() quant.Size   { return o.Entry.Size() }
func (o BracketOrder) Tag() string        { return o.tag }
func (o BracketOrder) TIF() TIF           { return o.Entry.TIF() }
func (o BracketOrder) isOrder()           {}
func (o BracketOrder) isInstruction()     {}

func (o BracketOrder) Validate() error {
	for _, leg := range []Order{o.Entry, o.TakeProfit, o.StopLoss} {
		if err := leg.Validate(); err != nil {
			return err
		}
	}
	asset := o.Entry.Asset()
	if !o.TakeProfit.Asset().Equal(asset) || !o.StopLoss.Asset().Equal(asset) {
		return fmt.Errorf("%w: bracket legs must share an asset", errs.ErrValidation)
	}
	entrySize := o.Entry.Size()
	wantExit := entrySize.Neg()
	if o.TakeProfit.Size().Cmp(wantExit) != 0 || o.StopLoss.Size().Cmp(wantExit) != 0 {
		return fmt.Errorf("%w: bracket exit legs must exactly offset the entry size", errs.ErrValidation)
	}
	return nil
}

// Cancel instructs the broker to cancel an already-tracked order.
type Cancel struct {
	TargetID string
}

func (c Cancel) isInstruction() {}

// Update replaces an already-tracked order with a new one, atomically:
// the target is cancelled and Replacement is placed in the same step.
type Update struct {
	TargetID    string
	Replacement Order
}

func (u Update) isInstruction() {}

// instruction adapters so every Order also satisfies Instruction.
func (o MarketOrder) isInstruction()     {}
func (o LimitOrder) isInstruction()      {}
func (o StopOrder) isInstruction()       {}
func (o StopLimitOrder) isInstruction()  {}
func (o TrailOrder) isInstruction()      {}
func (o TrailLimitOrder) isInstruction() {}
