// Package broker implements the simulated broker: the component that
// turns a strategy's instructions and the current price event into
// updated account state. It binds order acceptance, per-order-type
// execution (internal/broker/exec), pricing and cost models
// (internal/broker/pricing, internal/broker/cost), the buying-power
// model (internal/account) and the position/cash ledger
// (internal/ledger) into the single place/sync/reset operation shape.
// Grounded on internal/paper/simulator.go as a whole: its Config,
// Snapshot, mutex-guarded state and fill/openOrder split generalize
// directly into the broker's accept/execute/settle pipeline.
package broker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roboquant-go/roboquant/internal/account"
	"github.com/roboquant-go/roboquant/internal/broker/cost"
	"github.com/roboquant-go/roboquant/internal/broker/exec"
	"github.com/roboquant-go/roboquant/internal/broker/pricing"
	"github.com/roboquant-go/roboquant/internal/errs"
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// link records the cross-ticket coordination a composite order needs
// once one of its legs reaches a terminal state.
type link struct {
	ocoSibling string // ticket ID of the other OCO leg, if any

	otoSecondary order.Order // pending secondary leg, placed once this ticket completes
	hasOTO       bool

	bracketExit *bracketExit // pending OCO exit pair, placed once this entry completes
}

type bracketExit struct {
	takeProfit order.Order
	stopLoss   order.Order
}

// Config bundles the collaborators a Broker needs. Pricing, cost and
// AccountModel default to NoSlippage, NoFee and a CashAccount if left
// zero.
type Config struct {
	Base           quant.Currency
	InitialDeposit quant.Amount
	Rates          ledger.ExchangeRates
	AccountModel   account.Model
	Pricing        pricing.Engine
	Cost           cost.Model
}

// Broker is a single backtest run's simulated exchange: it owns the
// ledger and applies the full matching algorithm on every step.
type Broker struct {
	mu sync.Mutex

	book  *ledger.Ledger
	rates ledger.ExchangeRates
	model account.Model
	eng   pricing.Engine
	fees  cost.Model

	seq uint64

	executors map[string]exec.Executor
	links     map[string]*link

	lastPrices map[string]float64
}

// New builds a Broker from cfg, filling in reference defaults for any
// zero-valued collaborator.
func New(cfg Config) *Broker {
	if cfg.Pricing == nil {
		cfg.Pricing = pricing.NoSlippage{}
	}
	if cfg.Cost == nil {
		cfg.Cost = cost.NoFee{}
	}
	if cfg.AccountModel == nil {
		cfg.AccountModel = account.CashAccount{}
	}
	return &Broker{
		book:       ledger.New(cfg.Base, cfg.InitialDeposit),
		rates:      cfg.Rates,
		model:      cfg.AccountModel,
		eng:        cfg.Pricing,
		fees:       cfg.Cost,
		executors:  make(map[string]exec.Executor),
		links:      make(map[string]*link),
		lastPrices: make(map[string]float64),
	}
}

func (b *Broker) nextID() string {
	n := atomic.AddUint64(&b.seq, 1)
	return fmt.Sprintf("ord-%d", n)
}

// Place applies instructions (new orders and Cancel/Update modifies)
// against event, runs every open executor, settles fills into the
// ledger, marks positions to market and recomputes buying power. It
// returns the resulting account snapshot.
func (b *Broker) Place(instructions []order.Instruction, event quant.Event, now time.Time) (ledger.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expireOpenTickets(now)

	// Latest prices are updated up front so risk checks and executors
	// matching this same event see current marks, not last event's.
	for asset, item := range event.Items {
		b.lastPrices[asset.ID()] = item.PriceOf(quant.PriceDefault)
	}

	// Step 1: modify instructions (Cancel/Update) apply before any new
	// order is accepted or matched this step.
	for _, instr := range instructions {
		switch v := instr.(type) {
		case order.Cancel:
			b.cancelTicket(v.TargetID, now)
		case order.Update:
			b.cancelTicket(v.TargetID, now)
			b.acceptInstruction(v.Replacement, now)
		}
	}

	// Step 2: instantiate executors for newly accepted orders.
	for _, instr := range instructions {
		switch instr.(type) {
		case order.Cancel, order.Update:
			continue
		default:
			if o, ok := instr.(order.Order); ok {
				b.acceptInstruction(o, now)
			}
		}
	}

	// Step 3+4: run every open executor against this event, FIFO by
	// acceptance order, folding fills into the ledger as they occur.
	for _, t := range b.book.OpenTickets() {
		item, ok := event.Items[t.Order.Asset()]
		if !ok {
			continue
		}
		b.runExecutor(t, item, now)
	}

	// Step 5: mark every position to market using this event's prices.
	for asset, item := range event.Items {
		b.book.MarkToMarket(asset, item.PriceOf(quant.PriceDefault))
	}

	// Step 6: recompute buying power against the settled state.
	snap := b.book.Snapshot()
	if b.rates != nil {
		bp, err := b.model.BuyingPower(snap, b.rates, b.priceResolver, now)
		if err != nil {
			return ledger.Account{}, err
		}
		b.book.SetBuyingPower(bp)
	}

	return b.book.Snapshot(), nil
}

// Sync recomputes buying power and returns the current snapshot without
// processing any instructions, for a kernel step with nothing to place.
func (b *Broker) Sync(now time.Time) (ledger.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expireOpenTickets(now)
	snap := b.book.Snapshot()
	if b.rates != nil {
		bp, err := b.model.BuyingPower(snap, b.rates, b.priceResolver, now)
		if err != nil {
			return ledger.Account{}, err
		}
		b.book.SetBuyingPower(bp)
	}
	return b.book.Snapshot(), nil
}

// Reset restores the broker to its initial-deposit state, for the next
// run of a walk-forward or Monte Carlo sweep.
func (b *Broker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.book.Reset()
	b.seq = 0
	b.executors = make(map[string]exec.Executor)
	b.links = make(map[string]*link)
	b.lastPrices = make(map[string]float64)
}

func (b *Broker) priceResolver(asset quant.Asset) (float64, bool) {
	p, ok := b.lastPrices[asset.ID()]
	return p, ok
}

// acceptInstruction accepts o (single or composite) as one or more
// tracked tickets, rejecting it outright if validation or the
// buying-power/short-selling check fails.
func (b *Broker) acceptInstruction(o order.Order, now time.Time) {
	switch v := o.(type) {
	case order.OCOOrder:
		// OCOOrder.Validate also requires the two legs to share a size,
		// which a genuine OCO bracket of uneven sizes (e.g. scaling out
		// of a position with two different exit sizes) legitimately
		// violates. Only the asset-match half of that check is
		// structural here; the size match is left to the caller.
		if !v.First.Asset().Equal(v.Second.Asset()) {
			b.rejectLegs(now, v.First, v.Second)
			return
		}
		// Both legs reserve against the same shares/buying power (only
		// one will ever actually execute), so the risk check runs once
		// against the shared size rather than once per leg.
		if b.riskCheck(v.First, now) != nil {
			b.rejectLegs(now, v.First, v.Second)
			return
		}
		first := b.acceptSingle(v.First, now, false)
		second := b.acceptSingle(v.Second, now, false)
		if first != nil && second != nil {
			b.links[first.ID] = &link{ocoSibling: second.ID}
			b.links[second.ID] = &link{ocoSibling: first.ID}
		}
	case order.OTOOrder:
		if err := v.Validate(); err != nil {
			b.rejectLegs(now, v.Primary, v.Secondary)
			return
		}
		primary := b.acceptSingle(v.Primary, now, true)
		if primary != nil {
			b.links[primary.ID] = &link{otoSecondary: v.Secondary, hasOTO: true}
		}
	case order.BracketOrder:
		if err := v.Validate(); err != nil {
			b.rejectLegs(now, v.Entry, v.TakeProfit, v.StopLoss)
			return
		}
		entry := b.acceptSingle(v.Entry, now, true)
		if entry != nil {
			b.links[entry.ID] = &link{bracketExit: &bracketExit{takeProfit: v.TakeProfit, stopLoss: v.StopLoss}}
		}
	default:
		b.acceptSingle(o, now, true)
	}
}

// rejectLegs records every leg of a composite order as an immediately
// rejected ticket, for a composite whose structural validation (asset
// match, offsetting exit sizes) failed before any leg was accepted.
func (b *Broker) rejectLegs(now time.Time, legs ...order.Order) {
	for _, o := range legs {
		t := order.NewTicket(b.nextID(), o, now)
		_ = t.Close(order.Rejected, now)
		b.book.RecordRejected(t)
	}
}

// acceptSingle validates, optionally risk-checks and registers one
// single order, returning nil if it was rejected. checkRisk is false
// for an OCO leg whose group-level check already ran.
func (b *Broker) acceptSingle(o order.Order, now time.Time, checkRisk bool) *order.Ticket {
	id := b.nextID()
	t := order.NewTicket(id, o, now)

	if err := o.Validate(); err != nil {
		_ = t.Close(order.Rejected, now)
		b.book.RecordRejected(t)
		return nil
	}

	if checkRisk {
		if rejected := b.riskCheck(o, now); rejected != nil {
			_ = t.Close(order.Rejected, now)
			b.book.RecordRejected(t)
			return nil
		}
	}

	if err := t.Accept(now, o.TIF()); err != nil {
		_ = t.Close(order.Rejected, now)
		b.book.RecordRejected(t)
		return nil
	}
	b.book.RegisterTicket(t)
	b.executors[t.ID] = exec.New(o)
	return t
}

// riskCheck enforces no-shorting-without-margin and insufficient
// buying power, matching the active account model. It returns a non-nil
// error describing why the order was rejected, or nil if it may proceed.
func (b *Broker) riskCheck(o order.Order, now time.Time) error {
	if o.Size().IsNegative() && !b.model.AllowsShort() {
		snap := b.book.Snapshot()
		pos := snap.Positions[o.Asset().ID()]
		held := pos.Size.Float()

		var committed float64
		for _, t := range snap.OpenOrders {
			if t.Order.Asset().Equal(o.Asset()) && t.Order.Size().IsNegative() {
				committed += -t.Order.Size().Float()
			}
		}
		if -o.Size().Float() > held-committed {
			return fmt.Errorf("%w: short selling not permitted by the active account model", errs.ErrInsufficientBuyingPower)
		}
	}

	if b.rates == nil || !o.Size().IsPositive() {
		return nil
	}
	snap := b.book.Snapshot()
	bp, err := b.model.BuyingPower(snap, b.rates, b.priceResolver, now)
	if err != nil {
		return err
	}
	price, ok := anyLimit(o)
	if !ok {
		price, ok = b.priceResolver(o.Asset())
	}
	if !ok {
		return nil
	}
	notional := o.Size().Float() * price
	if notional > bp.Float() {
		return fmt.Errorf("%w: order notional %.2f exceeds buying power %.2f", errs.ErrInsufficientBuyingPower, notional, bp.Float())
	}
	return nil
}

func anyLimit(o order.Order) (float64, bool) {
	switch v := o.(type) {
	case order.LimitOrder:
		return v.Limit, true
	case order.StopLimitOrder:
		return v.Limit, true
	}
	return 0, false
}

func (b *Broker) cancelTicket(id string, now time.Time) {
	t, ok := b.book.Ticket(id)
	if !ok || !t.Status.IsOpen() {
		return
	}
	_ = t.Close(order.Cancelled, now)
	b.book.CloseTicket(id)
	delete(b.executors, id)
	b.onTerminal(t, now)
}

// runExecutor runs one matching attempt for an already-accepted ticket,
// settling any fills and closing the ticket on a terminal outcome (full
// execution, or an immediate-or-cancel/fill-or-kill order that could
// not complete on its first attempt).
func (b *Broker) runExecutor(t *order.Ticket, item quant.PriceItem, now time.Time) {
	ex, ok := b.executors[t.ID]
	if !ok {
		return
	}
	execs, done := ex.Execute(b.eng, item)
	for _, e := range execs {
		fee := b.fees.Fee(e.Size.Float(), e.Price)
		b.book.ApplyFill(t.Order.Asset(), e.Size, e.Price, fee, t.ID, now)
	}

	immediate := t.Order.TIF().IsImmediate()
	if !done && !immediate {
		return
	}

	status := order.Completed
	if !done {
		status = order.Cancelled // IOC/FOK residual, no partial-fill model
	}
	_ = t.Close(status, now)
	b.book.CloseTicket(t.ID)
	delete(b.executors, t.ID)
	b.onTerminal(t, now)
}

// expireOpenTickets closes every open ticket whose time-in-force has
// elapsed as of now.
func (b *Broker) expireOpenTickets(now time.Time) {
	for _, t := range b.book.OpenTickets() {
		if t.IsExpired(now) {
			_ = t.Close(order.Expired, now)
			b.book.CloseTicket(t.ID)
			delete(b.executors, t.ID)
			b.onTerminal(t, now)
		}
	}
}

// onTerminal fires the cross-ticket coordination for ticket t, which has
// just reached a terminal status: cancel an OCO sibling, activate an
// OTO secondary, or open a bracket's OCO exit pair.
func (b *Broker) onTerminal(t *order.Ticket, now time.Time) {
	l, ok := b.links[t.ID]
	if !ok {
		return
	}
	delete(b.links, t.ID)

	if l.ocoSibling != "" {
		b.cancelTicket(l.ocoSibling, now)
	}

	if t.Status != order.Completed {
		return
	}

	if l.hasOTO {
		b.acceptInstruction(l.otoSecondary, now)
	}
	if l.bracketExit != nil {
		oco := order.NewOCOOrder(l.bracketExit.takeProfit, l.bracketExit.stopLoss, t.Order.Tag())
		b.acceptInstruction(oco, now)
	}
}

// OpenTickets exposes the current open book, FIFO-ordered, for
// diagnostics and tests.
func (b *Broker) OpenTickets() []*order.Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.OpenTickets()
}
