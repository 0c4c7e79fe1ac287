package quant

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Size is a signed fixed-point quantity. Sign convention: positive means
// buy/long, negative means sell/short. A Size must never
// be the zero value inside an Order (checked by NewSize), but is the
// valid empty state for a closed Position.
type Size struct {
	v decimal.Decimal
}

// ZeroSize is the additive identity, representing "no position".
var ZeroSize = Size{v: decimal.Zero}

// NewSize validates that v is non-zero, as required for any order size.
func NewSize(v float64) (Size, error) {
	d := decimal.NewFromFloat(v)
	if d.IsZero() {
		return Size{}, fmt.Errorf("size: must be non-zero")
	}
	return Size{v: d}, nil
}

// SizeOf builds a Size without the non-zero check, for positions (which
// may legitimately be zero once closed).
func SizeOf(v float64) Size { return Size{v: decimal.NewFromFloat(v)} }

func (s Size) Float() float64 { f, _ := s.v.Float64(); return f }
func (s Size) IsZero() bool   { return s.v.IsZero() }
func (s Size) IsPositive() bool { return s.v.IsPositive() }
func (s Size) IsNegative() bool { return s.v.IsNegative() }
func (s Size) Neg() Size        { return Size{v: s.v.Neg()} }
func (s Size) Abs() Size        { return Size{v: s.v.Abs()} }
func (s Size) Add(o Size) Size  { return Size{v: s.v.Add(o.v)} }
func (s Size) Sub(o Size) Size  { return Size{v: s.v.Sub(o.v)} }
func (s Size) Cmp(o Size) int   { return s.v.Cmp(o.v) }
func (s Size) String() string   { return s.v.String() }

// Sign returns +1, -1 or 0.
func (s Size) Sign() int {
	switch {
	case s.v.IsPositive():
		return 1
	case s.v.IsNegative():
		return -1
	default:
		return 0
	}
}

// SameDirection reports whether both sizes are on the same side (both
// positive or both negative); zero is considered compatible with either.
func (s Size) SameDirection(o Size) bool {
	if s.IsZero() || o.IsZero() {
		return true
	}
	return s.Sign() == o.Sign()
}
