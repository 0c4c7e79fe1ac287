// Package ledger holds the broker's account state: cash, positions,
// orders and trades, plus the invariants that must hold after every
// step (equity reconciliation, position pruning, append-only trades,
// monotonic order status). Grounded on internal/execution/tracker.go's
// Tracker (position/fill bookkeeping under a single mutex) and
// internal/portfolio/tracker.go's cached-snapshot pattern.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Account is an immutable snapshot of ledger state, returned by the
// broker after every step.
type Account struct {
	BaseCurrency quant.Currency
	Cash         *quant.Wallet
	Positions    map[string]quant.Position // assetID -> position
	OpenOrders   []*order.Ticket
	ClosedOrders []*order.Ticket
	Trades       []quant.Trade
	BuyingPower  quant.Amount
	LastUpdate   time.Time
}

// Equity returns cash plus the market value of every open position,
// all converted to the base currency via rates.
func (a Account) Equity(rates ExchangeRates) (quant.Amount, error) {
	total := quant.NewAmount(a.BaseCurrency, 0)
	for _, cashAmt := range a.Cash.Amounts() {
		rate, err := rates.Convert(cashAmt, a.BaseCurrency, a.LastUpdate)
		if err != nil {
			return quant.Amount{}, err
		}
		total.Value = total.Value.Add(cashAmt.Value.Mul(decimal.NewFromFloat(rate)))
	}
	for _, pos := range a.Positions {
		mv := quant.NewAmount(pos.Asset.Currency, pos.MarketValue())
		rate, err := rates.Convert(mv, a.BaseCurrency, a.LastUpdate)
		if err != nil {
			return quant.Amount{}, err
		}
		total.Value = total.Value.Add(mv.Value.Mul(decimal.NewFromFloat(rate)))
	}
	return total, nil
}

// Ledger is the mutable store behind Account snapshots.
type Ledger struct {
	mu           sync.Mutex
	base         quant.Currency
	cash         *quant.Wallet
	positions    map[string]quant.Position
	openOrders   map[string]*order.Ticket
	closedOrders []*order.Ticket
	trades       []quant.Trade
	buyingPower  quant.Amount
	initial      quant.Amount
	lastUpdate   time.Time
}

// New builds a Ledger funded with an initial cash deposit.
func New(base quant.Currency, initialDeposit quant.Amount) *Ledger {
	l := &Ledger{
		base:       base,
		cash:       quant.NewWallet(),
		positions:  make(map[string]quant.Position),
		openOrders: make(map[string]*order.Ticket),
		initial:    initialDeposit,
	}
	l.cash.Deposit(initialDeposit)
	return l
}

// RegisterTicket tracks a newly-accepted order.
func (l *Ledger) RegisterTicket(t *order.Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openOrders[t.ID] = t
}

// Ticket looks up a tracked order by ID, open or closed.
func (l *Ledger) Ticket(id string) (*order.Ticket, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.openOrders[id]; ok {
		return t, true
	}
	for _, t := range l.closedOrders {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// CloseTicket moves a ticket from open to closed bookkeeping. Caller
// must have already transitioned its status.
func (l *Ledger) CloseTicket(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.openOrders[id]; ok {
		delete(l.openOrders, id)
		l.closedOrders = append(l.closedOrders, t)
	}
}

// RecordRejected appends an already-terminal ticket (Status == Rejected)
// straight to closed bookkeeping, for instructions that never reach the
// open book.
func (l *Ledger) RecordRejected(t *order.Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closedOrders = append(l.closedOrders, t)
}

// ApplyFill folds one execution into the position for asset, appends a
// Trade record, and debits cash by the notional plus fee.
func (l *Ledger) ApplyFill(asset quant.Asset, fillSize quant.Size, fillPrice, fee float64, orderID string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[asset.ID()]
	if !ok {
		pos = quant.Position{Asset: asset}
	}
	result := pos.ApplyFill(fillSize, fillPrice)
	if result.Position.IsOpen() {
		l.positions[asset.ID()] = result.Position
	} else {
		delete(l.positions, asset.ID())
	}

	notional := fillSize.Float() * fillPrice * asset.Multiplier
	l.cash.Withdraw(quant.NewAmount(asset.Currency, notional+fee))

	l.trades = append(l.trades, quant.Trade{
		Time:    at,
		Asset:   asset,
		Size:    fillSize,
		Price:   fillPrice,
		Fee:     fee,
		PnL:     result.RealizedPnL,
		OrderID: orderID,
	})
	l.lastUpdate = at
}

// MarkToMarket updates every held position's mktPrice when asset's
// latest price was observed in the current event.
func (l *Ledger) MarkToMarket(asset quant.Asset, price float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pos, ok := l.positions[asset.ID()]; ok {
		l.positions[asset.ID()] = pos.MarkToMarket(price)
	}
}

// SetBuyingPower records the latest buying-power figure computed by the
// active account model.
func (l *Ledger) SetBuyingPower(bp quant.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buyingPower = bp
}

// Cash exposes the wallet for account-model buying-power computations.
func (l *Ledger) Cash() *quant.Wallet { return l.cash.Clone() }

// Positions returns a snapshot of all open positions.
func (l *Ledger) Positions() map[string]quant.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]quant.Position, len(l.positions))
	for k, v := range l.positions {
		out[k] = v
	}
	return out
}

// OpenTickets returns open tickets ordered by acceptance time, then
// insertion index — the FIFO tie-break order the broker's matching
// algorithm requires.
func (l *Ledger) OpenTickets() []*order.Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*order.Ticket, 0, len(l.openOrders))
	for _, t := range l.openOrders {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AcceptedAt.Equal(out[j].AcceptedAt) {
			return out[i].AcceptedAt.Before(out[j].AcceptedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Snapshot materialises an immutable Account view of the current state.
func (l *Ledger) Snapshot() Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	open := make([]*order.Ticket, 0, len(l.openOrders))
	for _, t := range l.openOrders {
		cp := *t
		open = append(open, &cp)
	}
	closed := make([]*order.Ticket, len(l.closedOrders))
	for i, t := range l.closedOrders {
		cp := *t
		closed[i] = &cp
	}
	positions := make(map[string]quant.Position, len(l.positions))
	for k, v := range l.positions {
		positions[k] = v
	}
	trades := make([]quant.Trade, len(l.trades))
	copy(trades, l.trades)

	return Account{
		BaseCurrency: l.base,
		Cash:         l.cash.Clone(),
		Positions:    positions,
		OpenOrders:   open,
		ClosedOrders: closed,
		Trades:       trades,
		BuyingPower:  l.buyingPower,
		LastUpdate:   l.lastUpdate,
	}
}

// Reset restores the ledger to its initial-deposit state, deterministically.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cash = quant.NewWallet()
	l.cash.Deposit(l.initial)
	l.positions = make(map[string]quant.Position)
	l.openOrders = make(map[string]*order.Ticket)
	l.closedOrders = nil
	l.trades = nil
	l.buyingPower = quant.Amount{}
	l.lastUpdate = time.Time{}
}
