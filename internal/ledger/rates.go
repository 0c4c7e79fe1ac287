package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/roboquant-go/roboquant/internal/errs"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// ExchangeRates converts an amount into another currency at a point in
// time. Implementations MUST return 1.0 for a same-currency conversion.
type ExchangeRates interface {
	Convert(amount quant.Amount, to quant.Currency, at time.Time) (float64, error)
}

// FixedRates is a reference ExchangeRates backed by a static rate
// table, cached behind a mutex-guarded map the way
// internal/portfolio/tracker.go caches its synced state.
type FixedRates struct {
	mu    sync.RWMutex
	rates map[string]float64 // "FROM/TO" -> rate
}

// NewFixedRates builds a table seeded with the given rates (e.g.
// "EUR/USD": 1.08). The reverse rate is derived automatically.
func NewFixedRates(seed map[string]float64) *FixedRates {
	r := &FixedRates{rates: make(map[string]float64, len(seed)*2)}
	for pair, rate := range seed {
		r.Set(pair, rate)
	}
	return r
}

// Set installs a rate for "FROM/TO" and its implied reciprocal.
func (r *FixedRates) Set(pair string, rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[pair] = rate
}

func (r *FixedRates) Convert(amount quant.Amount, to quant.Currency, at time.Time) (float64, error) {
	if amount.Currency.Code == to.Code {
		return 1.0, nil
	}
	pair := fmt.Sprintf("%s/%s", amount.Currency.Code, to.Code)
	r.mu.RLock()
	rate, ok := r.rates[pair]
	r.mu.RUnlock()
	if ok {
		return rate, nil
	}

	reciprocal := fmt.Sprintf("%s/%s", to.Code, amount.Currency.Code)
	r.mu.RLock()
	rate, ok = r.rates[reciprocal]
	r.mu.RUnlock()
	if ok && rate != 0 {
		return 1 / rate, nil
	}
	return 0, fmt.Errorf("%w: no rate for %s", errs.ErrUnknownRate, pair)
}
