package order

import (
	"errors"
	"testing"
	"time"

	"github.com/roboquant-go/roboquant/internal/errs"
	"github.com/roboquant-go/roboquant/internal/quant"
)

func testAsset(symbol string) quant.Asset {
	return quant.NewAsset(symbol, quant.AssetStock, quant.GetCurrency("USD"), "XNAS")
}

func TestBracketOrderValidatesLegs(t *testing.T) {
	asset := testAsset("ABC")
	entrySize, _ := quant.NewSize(10)
	exitSize, _ := quant.NewSize(-10)

	entry := NewMarketOrder(asset, entrySize, Day(), "")
	tp := NewLimitOrder(asset, exitSize, 120, GoodTillCancelled(), "")
	sl := NewStopOrder(asset, exitSize, 90, GoodTillCancelled(), "")

	bracket := NewBracketOrder(entry, tp, sl, "breakout")
	if err := bracket.Validate(); err != nil {
		t.Fatalf("expected valid bracket, got %v", err)
	}
}

func TestBracketOrderRejectsMismatchedExitSize(t *testing.T) {
	asset := testAsset("ABC")
	entrySize, _ := quant.NewSize(10)
	wrongExit, _ := quant.NewSize(-5)

	entry := NewMarketOrder(asset, entrySize, Day(), "")
	tp := NewLimitOrder(asset, wrongExit, 120, GoodTillCancelled(), "")
	sl := NewStopOrder(asset, wrongExit, 90, GoodTillCancelled(), "")

	bracket := NewBracketOrder(entry, tp, sl, "")
	err := bracket.Validate()
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOCOOrderRejectsAssetMismatch(t *testing.T) {
	size, _ := quant.NewSize(-10)
	first := NewLimitOrder(testAsset("ABC"), size, 120, GoodTillCancelled(), "")
	second := NewStopOrder(testAsset("XYZ"), size, 90, GoodTillCancelled(), "")

	oco := NewOCOOrder(first, second, "")
	if err := oco.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for mismatched asset, got %v", err)
	}
}

func TestOCOOrderRejectsSizeMismatch(t *testing.T) {
	sizeA, _ := quant.NewSize(-10)
	sizeB, _ := quant.NewSize(-5)
	asset := testAsset("ABC")
	first := NewLimitOrder(asset, sizeA, 120, GoodTillCancelled(), "")
	second := NewStopOrder(asset, sizeB, 90, GoodTillCancelled(), "")

	oco := NewOCOOrder(first, second, "")
	if err := oco.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for mismatched size, got %v", err)
	}
}

func TestOrderValidateRejectsZeroSize(t *testing.T) {
	o := MarketOrder{base{asset: testAsset("ABC"), size: quant.ZeroSize, tif: Day()}}
	if err := o.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero size, got %v", err)
	}
}

func TestStatusTransitionsAreMonotonicAndAbsorbing(t *testing.T) {
	if !Initial.CanTransition(Accepted) {
		t.Fatal("expected INITIAL -> ACCEPTED to be legal")
	}
	if !Accepted.CanTransition(Completed) {
		t.Fatal("expected ACCEPTED -> COMPLETED to be legal")
	}
	if Completed.CanTransition(Accepted) {
		t.Fatal("expected COMPLETED (terminal) to reject any further transition")
	}
	if Initial.CanTransition(Initial) {
		t.Fatal("expected no self-transition from INITIAL")
	}
}

func TestTicketAcceptComputesDayExpiry(t *testing.T) {
	asset := testAsset("ABC")
	size, _ := quant.NewSize(10)
	o := NewMarketOrder(asset, size, Day(), "")
	ticket := NewTicket("ord-1", o, time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC))

	acceptedAt := time.Date(2024, 3, 1, 14, 0, 1, 0, time.UTC)
	if err := ticket.Accept(acceptedAt, o.TIF()); err != nil {
		t.Fatalf("unexpected error accepting ticket: %v", err)
	}
	if ticket.Status != Accepted {
		t.Fatalf("expected ACCEPTED, got %v", ticket.Status)
	}
	wantExpiry := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
	if !ticket.Expiry.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, ticket.Expiry)
	}
}

func TestTicketCloseAfterTerminalIsIllegal(t *testing.T) {
	asset := testAsset("ABC")
	size, _ := quant.NewSize(10)
	o := NewMarketOrder(asset, size, Day(), "")
	ticket := NewTicket("ord-1", o, time.Now())
	_ = ticket.Accept(time.Now(), o.TIF())

	if err := ticket.Close(Completed, time.Now()); err != nil {
		t.Fatalf("unexpected error closing ticket: %v", err)
	}
	if err := ticket.Close(Cancelled, time.Now()); err == nil {
		t.Fatal("expected error re-closing an already-terminal ticket")
	}
}

func TestGTCDefaultMaxDays(t *testing.T) {
	tif := GoodTillCancelled()
	if tif.MaxDays != DefaultGTCMaxDays {
		t.Fatalf("expected default max days %d, got %d", DefaultGTCMaxDays, tif.MaxDays)
	}
}
