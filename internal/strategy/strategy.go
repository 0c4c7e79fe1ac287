package strategy

import (
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Strategy turns a price event and the current account snapshot into
// zero or more instructions for the broker. Create is called once per
// event by the run kernel; Reset restores any internal state between
// sweep runs (walk-forward windows, Monte Carlo samples).
type Strategy interface {
	Create(event quant.Event, account ledger.Account) []order.Instruction
	Reset()
}
