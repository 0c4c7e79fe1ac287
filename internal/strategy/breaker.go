package strategy

import (
	"time"

	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// CircuitBreaker wraps a Strategy and suppresses its output once it has
// emitted Limit instructions within a rolling Window,
// resuming once old emissions age out of the window. Grounded on
// flow.go's FlowTracker: a per-call timestamp slice pruned from the
// front on every Record/Create call.
type CircuitBreaker struct {
	Inner  Strategy
	Window time.Duration
	Limit  int

	emissions []time.Time
}

func NewCircuitBreaker(inner Strategy, window time.Duration, limit int) *CircuitBreaker {
	return &CircuitBreaker{Inner: inner, Window: window, Limit: limit}
}

func (b *CircuitBreaker) Create(event quant.Event, account ledger.Account) []order.Instruction {
	b.evict(event.Time)

	if len(b.emissions) >= b.Limit {
		return nil
	}

	instructions := b.Inner.Create(event, account)
	for range instructions {
		b.emissions = append(b.emissions, event.Time)
	}
	return instructions
}

func (b *CircuitBreaker) Reset() {
	b.emissions = nil
	b.Inner.Reset()
}

// evict drops emissions older than Window relative to now. Caller
// context: single-threaded kernel loop, no locking needed.
func (b *CircuitBreaker) evict(now time.Time) {
	cutoff := now.Add(-b.Window)
	i := 0
	for i < len(b.emissions) && b.emissions[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.emissions = b.emissions[i:]
	}
}
