package broker

import (
	"testing"
	"time"

	"github.com/roboquant-go/roboquant/internal/account"
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

func testAsset() quant.Asset {
	return quant.NewAsset("ABC", quant.AssetStock, quant.GetCurrency("USD"), "XNAS")
}

func newTestBroker(initial float64) *Broker {
	usd := quant.GetCurrency("USD")
	return New(Config{
		Base:           usd,
		InitialDeposit: quant.NewAmount(usd, initial),
		Rates:          ledger.NewFixedRates(nil),
		AccountModel:   account.CashAccount{},
	})
}

func barEvent(at time.Time, asset quant.Asset, price float64) quant.Event {
	return quant.NewEvent(at, struct {
		Asset quant.Asset
		Item  quant.PriceItem
	}{Asset: asset, Item: quant.TradePrice{Price: price}})
}

func TestMarketOrderFillsAndDebitsCash(t *testing.T) {
	b := newTestBroker(10000)
	asset := testAsset()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	size, _ := quant.NewSize(10)

	instr := []order.Instruction{order.NewMarketOrder(asset, size, order.Day(), "")}
	acc, err := b.Place(instr, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(acc.Trades))
	}
	pos, ok := acc.Positions[asset.ID()]
	if !ok || pos.Size.Float() != 10 {
		t.Fatalf("expected open position of size 10, got %+v", pos)
	}
	cash := acc.Cash.Get(quant.GetCurrency("USD")).Float()
	if cash != 9000 {
		t.Fatalf("expected cash 9000 after a 10x100 buy, got %v", cash)
	}
}

func TestLimitOrderRestsUntilTouched(t *testing.T) {
	b := newTestBroker(10000)
	asset := testAsset()
	t0 := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	size, _ := quant.NewSize(5)

	instr := []order.Instruction{order.NewLimitOrder(asset, size, 90, order.GoodTillCancelled(), "")}
	acc, err := b.Place(instr, barEvent(t0, asset, 100), t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 1 {
		t.Fatalf("expected the limit order to remain open, got %d open orders", len(acc.OpenOrders))
	}

	t1 := t0.Add(time.Minute)
	acc, err = b.Place(nil, barEvent(t1, asset, 89), t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 0 {
		t.Fatalf("expected the limit order to fill once price touched 89, got %d still open", len(acc.OpenOrders))
	}
	if len(acc.Trades) != 1 || acc.Trades[0].Price != 89 {
		t.Fatalf("expected a single trade filled at the better market price 89, got %+v", acc.Trades)
	}
}

func TestOCOFillCancelsSibling(t *testing.T) {
	b := newTestBroker(10000)
	asset := testAsset()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	size, _ := quant.NewSize(-5)

	// Both legs are sell limits (a typical OCO exit pair); the nearer
	// target fills first and the broker must cancel the farther one.
	first := order.NewLimitOrder(asset, size, 105, order.GoodTillCancelled(), "")
	second := order.NewLimitOrder(asset, size, 110, order.GoodTillCancelled(), "")
	oco := order.NewOCOOrder(first, second, "bracket-exit")

	// Seed a long position so the cash account permits the sell legs.
	buy := order.NewMarketOrder(asset, quant.SizeOf(5), order.Day(), "")
	if _, err := b.Place([]order.Instruction{buy}, barEvent(now, asset, 100), now); err != nil {
		t.Fatalf("unexpected error seeding position: %v", err)
	}

	acc, err := b.Place([]order.Instruction{oco}, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 2 {
		t.Fatalf("expected both OCO legs open before either touches, got %d", len(acc.OpenOrders))
	}

	t1 := now.Add(time.Minute)
	acc, err = b.Place(nil, barEvent(t1, asset, 106), t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 0 {
		t.Fatalf("expected the untouched sibling to be cancelled once one leg fills, got %d still open", len(acc.OpenOrders))
	}
	if len(acc.Trades) != 2 {
		t.Fatalf("expected the seed buy plus exactly one OCO leg to trade, got %d trades", len(acc.Trades))
	}
}

func TestBuyOrderRejectedWithoutSufficientBuyingPower(t *testing.T) {
	b := newTestBroker(100)
	asset := testAsset()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	size, _ := quant.NewSize(10)

	instr := []order.Instruction{order.NewMarketOrder(asset, size, order.Day(), "")}
	acc, err := b.Place(instr, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.Trades) != 0 {
		t.Fatalf("expected the order to be rejected for insufficient buying power, got %d trades", len(acc.Trades))
	}
	if len(acc.ClosedOrders) != 1 || acc.ClosedOrders[0].Status != order.Rejected {
		t.Fatalf("expected a rejected ticket, got %+v", acc.ClosedOrders)
	}
}

func TestShortSaleRejectedByCashAccount(t *testing.T) {
	b := newTestBroker(10000)
	asset := testAsset()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	size, _ := quant.NewSize(-5)

	instr := []order.Instruction{order.NewMarketOrder(asset, size, order.Day(), "")}
	acc, err := b.Place(instr, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.Trades) != 0 {
		t.Fatalf("expected short sale to be rejected, got %d trades", len(acc.Trades))
	}
}

func TestCancelInstructionClosesOpenTicket(t *testing.T) {
	b := newTestBroker(10000)
	asset := testAsset()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	size, _ := quant.NewSize(5)

	instr := []order.Instruction{order.NewLimitOrder(asset, size, 50, order.GoodTillCancelled(), "")}
	acc, err := b.Place(instr, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 1 {
		t.Fatalf("expected one open order, got %d", len(acc.OpenOrders))
	}
	id := acc.OpenOrders[0].ID

	t1 := now.Add(time.Minute)
	acc, err = b.Place([]order.Instruction{order.Cancel{TargetID: id}}, barEvent(t1, asset, 100), t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 0 {
		t.Fatalf("expected the cancelled order to leave the open book, got %d", len(acc.OpenOrders))
	}
}

func TestBracketRejectsAssetMismatch(t *testing.T) {
	b := newTestBroker(10000)
	asset := testAsset()
	other := quant.NewAsset("XYZ", quant.AssetStock, quant.GetCurrency("USD"), "XNAS")
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	entrySize, _ := quant.NewSize(10)
	exitSize, _ := quant.NewSize(-10)
	entry := order.NewMarketOrder(asset, entrySize, order.Day(), "")
	takeProfit := order.NewLimitOrder(other, exitSize, 120, order.GoodTillCancelled(), "")
	stopLoss := order.NewStopOrder(asset, exitSize, 90, order.GoodTillCancelled(), "")
	bracket := order.NewBracketOrder(entry, takeProfit, stopLoss, "")

	acc, err := b.Place([]order.Instruction{bracket}, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 0 {
		t.Fatalf("expected every bracket leg to be rejected, got %d open orders", len(acc.OpenOrders))
	}
	if len(acc.ClosedOrders) != 3 {
		t.Fatalf("expected all three bracket legs recorded as rejected, got %d closed orders", len(acc.ClosedOrders))
	}
	for _, t2 := range acc.ClosedOrders {
		if t2.Status != order.Rejected {
			t.Fatalf("expected bracket leg %s to be rejected, got status %v", t2.ID, t2.Status)
		}
	}
}

func TestOCOAllowsUnevenExitSizes(t *testing.T) {
	b := newTestBroker(20000)
	asset := testAsset()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	// Scaling out of a position with two differently-sized exits is a
	// legitimate OCO even though the legs don't share a size.
	buy := order.NewMarketOrder(asset, quant.SizeOf(150), order.Day(), "")
	if _, err := b.Place([]order.Instruction{buy}, barEvent(now, asset, 100), now); err != nil {
		t.Fatalf("unexpected error seeding position: %v", err)
	}

	size100, _ := quant.NewSize(-100)
	size50, _ := quant.NewSize(-50)
	first := order.NewLimitOrder(asset, size100, 110, order.GoodTillCancelled(), "")
	second := order.NewLimitOrder(asset, size50, 120, order.GoodTillCancelled(), "")
	oco := order.NewOCOOrder(first, second, "")

	acc, err := b.Place([]order.Instruction{oco}, barEvent(now, asset, 100), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acc.OpenOrders) != 2 {
		t.Fatalf("expected both uneven-sized OCO legs to be accepted, got %d open orders", len(acc.OpenOrders))
	}
}
