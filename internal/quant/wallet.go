package quant

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Wallet is a mapping from Currency to value, mirroring
// internal/portfolio/tracker.go's cached-map-with-mutex shape applied to
// a multi-currency cash balance instead of a single totalValue float.
// No implicit currency conversion is ever performed by Wallet itself.
type Wallet struct {
	mu      sync.RWMutex
	amounts map[string]Amount
}

// NewWallet returns an empty wallet.
func NewWallet() *Wallet {
	return &Wallet{amounts: make(map[string]Amount)}
}

// Deposit adds funds in the given currency.
func (w *Wallet) Deposit(a Amount) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.depositLocked(a)
}

func (w *Wallet) depositLocked(a Amount) {
	cur := a.Currency.Code
	if existing, ok := w.amounts[cur]; ok {
		sum, _ := existing.Add(a)
		w.amounts[cur] = sum
	} else {
		w.amounts[cur] = a
	}
}

// Withdraw subtracts funds in the given currency (may go negative, e.g.
// margin debit; callers enforce buying-power limits elsewhere).
func (w *Wallet) Withdraw(a Amount) {
	w.Deposit(a.Neg())
}

// Get returns the current balance in a currency (zero amount if absent).
func (w *Wallet) Get(cur Currency) Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if a, ok := w.amounts[cur.Code]; ok {
		return a
	}
	return Amount{Currency: cur, Value: decimal.Zero}
}

// Amounts returns a snapshot of all non-pruned currency balances, sorted
// by currency code for deterministic iteration.
func (w *Wallet) Amounts() []Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Amount, 0, len(w.amounts))
	for _, a := range w.amounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency.Code < out[j].Currency.Code })
	return out
}

// Prune removes currencies whose balance is exactly zero.
func (w *Wallet) Prune() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for cur, a := range w.amounts {
		if a.IsZero() {
			delete(w.amounts, cur)
		}
	}
}

// Clone returns an independent copy of the wallet.
func (w *Wallet) Clone() *Wallet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := NewWallet()
	for cur, a := range w.amounts {
		out.amounts[cur] = a
	}
	return out
}

// Add returns a new wallet holding the sum of w and other, per-currency.
func (w *Wallet) Add(other *Wallet) *Wallet {
	out := w.Clone()
	for _, a := range other.Amounts() {
		out.Deposit(a)
	}
	return out
}

// IsEmpty reports whether every currency balance is zero.
func (w *Wallet) IsEmpty() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, a := range w.amounts {
		if !a.IsZero() {
			return false
		}
	}
	return true
}

// Negate returns a new wallet with every balance negated.
func (w *Wallet) Negate() *Wallet {
	out := NewWallet()
	for _, a := range w.Amounts() {
		out.Deposit(a.Neg())
	}
	return out
}
