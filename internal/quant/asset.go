package quant

import "fmt"

// AssetClass classifies an asset for display/reporting purposes; the
// simulation core treats all classes identically.
type AssetClass string

const (
	AssetStock   AssetClass = "STOCK"
	AssetForex   AssetClass = "FOREX"
	AssetCrypto  AssetClass = "CRYPTO"
	AssetFutures AssetClass = "FUTURES"
	AssetCFD     AssetClass = "CFD"
)

// Asset identifies a tradable instrument. It is immutable and
// value-equal by its canonical serialised form (Symbol+Exchange).
// Multiplier scales notional and P&L (1.0 for cash instruments; futures
// contracts typically carry a non-1 multiplier).
type Asset struct {
	Symbol     string
	Class      AssetClass
	Currency   Currency
	Exchange   string
	Multiplier float64
}

// NewAsset builds an Asset with a default multiplier of 1.0.
func NewAsset(symbol string, class AssetClass, currency Currency, exchange string) Asset {
	return Asset{Symbol: symbol, Class: class, Currency: currency, Exchange: exchange, Multiplier: 1.0}
}

// ID is the canonical serialised form used for equality and map keys.
func (a Asset) ID() string {
	return fmt.Sprintf("%s.%s", a.Exchange, a.Symbol)
}

func (a Asset) String() string { return a.ID() }

// Equal reports value equality by canonical serialised form.
func (a Asset) Equal(other Asset) bool { return a.ID() == other.ID() }

func (a Asset) multiplier() float64 {
	if a.Multiplier == 0 {
		return 1.0
	}
	return a.Multiplier
}
