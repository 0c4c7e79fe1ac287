package quant

// Position tracks the open exposure in a single asset. Grounded on
// internal/execution/tracker.go's updatePosition: average price is the
// size-weighted entry cost, recomputed on same-direction fills, held
// unchanged on a pure reduction, and re-based to the fill price on a
// direction flip.
type Position struct {
	Asset    Asset
	Size     Size
	AvgPrice float64
	MktPrice float64
}

// IsOpen reports whether the position carries a non-zero size; size ==
// 0 implies the position is absent from the portfolio altogether.
func (p Position) IsOpen() bool { return !p.Size.IsZero() }

// MarketValue is size * mktPrice * assetMultiplier, in the asset's
// currency.
func (p Position) MarketValue() float64 {
	return p.Size.Float() * p.MktPrice * p.Asset.multiplier()
}

// UnrealizedPnL is the mark-to-market gain/loss versus the average
// entry price.
func (p Position) UnrealizedPnL() float64 {
	return (p.MktPrice - p.AvgPrice) * p.Size.Float() * p.Asset.multiplier()
}

// ApplyFillResult is returned by Position.ApplyFill: the updated
// position plus the realised P&L of the portion of the fill that closed
// existing exposure (zero if the fill only opened or added to a
// position).
type ApplyFillResult struct {
	Position    Position
	RealizedPnL float64
	ClosedSize  float64
}

// ApplyFill folds one execution into the position's avgPrice/size:
//   - same direction (or opening from flat): size-weighted average.
//   - opposite direction, reducing: avgPrice unchanged, realise P&L on
//     the closed portion.
//   - opposite direction, flipping past flat: the excess opens a new
//     position at the fill price; avgPrice re-bases to fillPrice.
func (p Position) ApplyFill(fillSize Size, fillPrice float64) ApplyFillResult {
	mult := p.Asset.multiplier()

	if p.Size.IsZero() || p.Size.SameDirection(fillSize) {
		newSize := p.Size.Add(fillSize)
		var avg float64
		if newSize.IsZero() {
			avg = 0
		} else {
			totalCost := p.AvgPrice*p.Size.Float() + fillPrice*fillSize.Float()
			avg = totalCost / newSize.Float()
		}
		return ApplyFillResult{
			Position: Position{Asset: p.Asset, Size: newSize, AvgPrice: avg, MktPrice: fillPrice},
		}
	}

	// Opposite direction: this fill reduces (and maybe flips) the
	// position.
	existingAbs := p.Size.Abs().Float()
	fillAbs := fillSize.Abs().Float()

	if fillAbs <= existingAbs {
		// Pure reduction (or exact close).
		closedSize := fillAbs
		pnl := (fillPrice - p.AvgPrice) * closedSize * mult
		if p.Size.IsNegative() {
			pnl = -pnl
		}
		newSize := p.Size.Add(fillSize)
		avg := p.AvgPrice
		if newSize.IsZero() {
			avg = 0
		}
		return ApplyFillResult{
			Position:    Position{Asset: p.Asset, Size: newSize, AvgPrice: avg, MktPrice: fillPrice},
			RealizedPnL: pnl,
			ClosedSize:  closedSize,
		}
	}

	// Flip: close the entire existing position, then open the excess
	// in the opposite direction at the fill price.
	closedSize := existingAbs
	pnl := (fillPrice - p.AvgPrice) * closedSize * mult
	if p.Size.IsNegative() {
		pnl = -pnl
	}
	newSize := p.Size.Add(fillSize)
	return ApplyFillResult{
		Position:    Position{Asset: p.Asset, Size: newSize, AvgPrice: fillPrice, MktPrice: fillPrice},
		RealizedPnL: pnl,
		ClosedSize:  closedSize,
	}
}

// MarkToMarket returns a copy of the position with mktPrice updated.
func (p Position) MarkToMarket(price float64) Position {
	p.MktPrice = price
	return p
}
