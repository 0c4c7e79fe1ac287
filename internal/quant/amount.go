package quant

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a value denominated in a single currency. Arithmetic between
// two amounts is only permitted when both share the same currency;
// cross-currency arithmetic requires an explicit rate lookup (see
// ExchangeRates in the ledger package).
type Amount struct {
	Currency Currency
	Value    decimal.Decimal
}

// NewAmount builds an Amount from a float64 value, matching the
// teacher's float-based Config fields at the boundary while keeping the
// internal representation a fixed-point decimal.
func NewAmount(cur Currency, value float64) Amount {
	return Amount{Currency: cur, Value: decimal.NewFromFloat(value)}
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Value.StringFixed(int32(a.Currency.Digits)), a.Currency.Code)
}

func (a Amount) IsZero() bool { return a.Value.IsZero() }

func (a Amount) Float() float64 {
	f, _ := a.Value.Float64()
	return f
}

// requireSameCurrency reports a currency mismatch as an error; Add and
// Sub use it.
func (a Amount) requireSameCurrency(b Amount) error {
	if !a.Currency.Equal(b.Currency) {
		return fmt.Errorf("amount: currency mismatch %s vs %s", a.Currency.Code, b.Currency.Code)
	}
	return nil
}

// Add returns a+b. Both must share a currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.requireSameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{Currency: a.Currency, Value: a.Value.Add(b.Value)}, nil
}

// Sub returns a-b. Both must share a currency.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.requireSameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{Currency: a.Currency, Value: a.Value.Sub(b.Value)}, nil
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Neg()}
}

// Mul scales the amount by a plain scalar (e.g. a size or a fee rate).
func (a Amount) Mul(scalar decimal.Decimal) Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Mul(scalar)}
}

// Cmp compares two amounts of the same currency. When the currencies
// differ it returns ok=false and a meaningless result; it never panics.
func (a Amount) Cmp(b Amount) (int, bool) {
	if !a.Currency.Equal(b.Currency) {
		return 0, false
	}
	return a.Value.Cmp(b.Value), true
}
