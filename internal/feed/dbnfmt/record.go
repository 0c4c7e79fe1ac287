// Package dbnfmt implements a persisted binary feed: a compact,
// seekable on-disk encoding of a quant.Event stream. Grounded on
// NimbleMarkets-dbn-go as a whole — its record/metadata split
// (structs.go, metadata.go), its length-prefixed record scanner
// (dbn_scanner.go) and its compressed reader/writer pair
// (compressed_io.go) are the direct ancestors of this package's
// Record, Scanner and block codec.
package dbnfmt

import "fmt"

// Kind tags which quant.PriceItem variant a Record carries.
type Kind uint8

const (
	KindBar Kind = iota
	KindTrade
	KindQuote
	KindBook
)

func (k Kind) String() string {
	switch k {
	case KindBar:
		return "BAR"
	case KindTrade:
		return "TRADE"
	case KindQuote:
		return "QUOTE"
	case KindBook:
		return "BOOK"
	default:
		return fmt.Sprintf("KIND(%d)", k)
	}
}

// Record is the on-disk shape of one quant.Event sample for one asset:
// a timestamp, an asset reference, a type tag, a flat value payload and
// an optional metadata string. AssetIndex references the AssetTable
// written once at the head of the file rather than repeating the full
// asset identity on every record.
//
// Values is interpreted by Kind:
//   - KindBar:   [open, high, low, close, volume], Meta holds the bar's
//     span as a base-10 nanosecond count.
//   - KindTrade: [price, volume]
//   - KindQuote: [ask, askSize, bid, bidSize]
//   - KindBook:  [nAsks, (size, limit)×nAsks, (size, limit)×nBids]
type Record struct {
	TimeNanos  int64
	AssetIndex uint16
	Kind       Kind
	Values     []float64
	Meta       string
}
