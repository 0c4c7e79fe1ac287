// Package account implements the buying-power models the broker uses
// to size and reject orders: CashAccount, MarginAccount and RegT.
// Grounded on internal/risk/manager.go's Allow/exposure-tracking
// pattern (a position-exposure map checked against a configured limit
// before accepting an order), generalized from a flat USDC exposure cap
// to equity-and-leverage-based buying power.
package account

import (
	"time"

	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// PriceResolver looks up the latest known price for an asset; ok is
// false if the asset has not been seen yet.
type PriceResolver func(asset quant.Asset) (price float64, ok bool)

// Model computes the buying power available to place new orders, and
// whether the model permits short positions at all.
type Model interface {
	BuyingPower(acc ledger.Account, rates ledger.ExchangeRates, priceOf PriceResolver, now time.Time) (quant.Amount, error)
	AllowsShort() bool
}

// reservationPrice is the price a not-yet-filled buy order commits
// against: its limit price if it carries one, otherwise the latest
// market price.
func reservationPrice(o order.Order, priceOf PriceResolver) float64 {
	switch v := o.(type) {
	case order.LimitOrder:
		return v.Limit
	case order.StopLimitOrder:
		return v.Limit
	default:
		if p, ok := priceOf(o.Asset()); ok {
			return p
		}
		return 0
	}
}

// CashAccount requires full cash cover for every buy order and
// disallows short positions entirely.
type CashAccount struct{}

func (CashAccount) AllowsShort() bool { return false }

func (CashAccount) BuyingPower(acc ledger.Account, rates ledger.ExchangeRates, priceOf PriceResolver, now time.Time) (quant.Amount, error) {
	total := quant.NewAmount(acc.BaseCurrency, 0)
	for _, cashAmt := range acc.Cash.Amounts() {
		rate, err := rates.Convert(cashAmt, acc.BaseCurrency, now)
		if err != nil {
			return quant.Amount{}, err
		}
		converted := quant.NewAmount(acc.BaseCurrency, cashAmt.Float()*rate)
		total, err = total.Add(converted)
		if err != nil {
			return quant.Amount{}, err
		}
	}

	for _, t := range acc.OpenOrders {
		if !t.Status.IsOpen() {
			continue
		}
		if t.Order.Size().IsNegative() {
			continue // sells don't consume cash buying power
		}
		price := reservationPrice(t.Order, priceOf)
		commitment := quant.NewAmount(t.Order.Asset().Currency, t.Order.Size().Float()*price)
		rate, err := rates.Convert(commitment, acc.BaseCurrency, now)
		if err != nil {
			return quant.Amount{}, err
		}
		converted := quant.NewAmount(acc.BaseCurrency, commitment.Float()*rate)
		total, err = total.Sub(converted)
		if err != nil {
			return quant.Amount{}, err
		}
	}
	return total, nil
}

// maintenanceMarginRatio is the fraction of gross exposure that must
// stay covered by equity at all times, independent of leverage: a
// position can be opened against initialMargin but is only closed out
// once its maintenance requirement is breached.
const maintenanceMarginRatio = 0.3

// MarginAccount permits shorting. Buying power is equity net of the
// maintenance requirement on existing gross exposure, grossed back up
// by the initial margin rate (the inverse of leverage):
//
//	buyingPower = (equity - maintenanceMarginRatio*grossExposure) / initialMargin
type MarginAccount struct {
	Leverage  float64 // default 2.0; initialMargin = 1/Leverage
	MinEquity float64
}

func NewMarginAccount() MarginAccount {
	return MarginAccount{Leverage: 2.0, MinEquity: 0}
}

func (MarginAccount) AllowsShort() bool { return true }

func (m MarginAccount) BuyingPower(acc ledger.Account, rates ledger.ExchangeRates, priceOf PriceResolver, now time.Time) (quant.Amount, error) {
	leverage := m.Leverage
	if leverage <= 0 {
		leverage = 2.0
	}
	initialMargin := 1 / leverage

	equity, err := acc.Equity(rates)
	if err != nil {
		return quant.Amount{}, err
	}

	var grossExposure float64
	for _, pos := range acc.Positions {
		mv := quant.NewAmount(pos.Asset.Currency, pos.MarketValue())
		rate, err := rates.Convert(mv, acc.BaseCurrency, now)
		if err != nil {
			return quant.Amount{}, err
		}
		exposure := mv.Float() * rate
		if exposure < 0 {
			exposure = -exposure
		}
		grossExposure += exposure
	}

	bp := (equity.Float() - maintenanceMarginRatio*grossExposure) / initialMargin
	if bp < 0 {
		bp = 0
	}
	return quant.NewAmount(acc.BaseCurrency, bp), nil
}

// RegTAccount applies Regulation T margin rules: 2x leverage for
// overnight positions, 4x intraday.
type RegTAccount struct {
	DayTrading bool
}

func (RegTAccount) AllowsShort() bool { return true }

func (r RegTAccount) BuyingPower(acc ledger.Account, rates ledger.ExchangeRates, priceOf PriceResolver, now time.Time) (quant.Amount, error) {
	leverage := 2.0
	if r.DayTrading {
		leverage = 4.0
	}
	m := MarginAccount{Leverage: leverage}
	return m.BuyingPower(acc, rates, priceOf, now)
}
