package quant

import "time"

// Trade is an append-only execution record.
type Trade struct {
	Time    time.Time
	Asset   Asset
	Size    Size
	Price   float64
	Fee     float64
	PnL     float64
	OrderID string
}
