package dbnfmt

import (
	"fmt"
	"strconv"

	"github.com/roboquant-go/roboquant/internal/quant"
)

// toRecord flattens one (asset, item) pair from an event into a Record
// referencing assetIndex in the file's AssetTable.
func toRecord(atNanos int64, assetIndex uint16, item quant.PriceItem) (Record, error) {
	switch v := item.(type) {
	case quant.PriceBar:
		return Record{
			TimeNanos:  atNanos,
			AssetIndex: assetIndex,
			Kind:       KindBar,
			Values:     []float64{v.Bar.Open, v.Bar.High, v.Bar.Low, v.Bar.Close, v.Bar.Volume},
			Meta:       strconv.FormatInt(int64(v.Span), 10),
		}, nil
	case quant.TradePrice:
		return Record{
			TimeNanos:  atNanos,
			AssetIndex: assetIndex,
			Kind:       KindTrade,
			Values:     []float64{v.Price, v.Volume},
		}, nil
	case quant.PriceQuote:
		return Record{
			TimeNanos:  atNanos,
			AssetIndex: assetIndex,
			Kind:       KindQuote,
			Values:     []float64{v.Ask, v.AskSize, v.Bid, v.BidSize},
		}, nil
	case quant.OrderBook:
		values := make([]float64, 0, 1+2*(len(v.Asks)+len(v.Bids)))
		values = append(values, float64(len(v.Asks)))
		for _, lvl := range v.Asks {
			values = append(values, lvl.Size, lvl.Limit)
		}
		for _, lvl := range v.Bids {
			values = append(values, lvl.Size, lvl.Limit)
		}
		return Record{
			TimeNanos:  atNanos,
			AssetIndex: assetIndex,
			Kind:       KindBook,
			Values:     values,
		}, nil
	default:
		return Record{}, fmt.Errorf("dbnfmt: unsupported price item %T", item)
	}
}

// toPriceItem reconstructs the PriceItem a Record was built from.
func toPriceItem(r Record) (quant.PriceItem, error) {
	switch r.Kind {
	case KindBar:
		if len(r.Values) != 5 {
			return nil, fmt.Errorf("dbnfmt: bar record wants 5 values, got %d", len(r.Values))
		}
		span, err := strconv.ParseInt(r.Meta, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dbnfmt: bar span: %w", err)
		}
		return quant.PriceBar{
			Bar: quant.OHLCV{
				Open:   r.Values[0],
				High:   r.Values[1],
				Low:    r.Values[2],
				Close:  r.Values[3],
				Volume: r.Values[4],
			},
			Span: durationFromNanos(span),
		}, nil
	case KindTrade:
		if len(r.Values) != 2 {
			return nil, fmt.Errorf("dbnfmt: trade record wants 2 values, got %d", len(r.Values))
		}
		return quant.TradePrice{Price: r.Values[0], Volume: r.Values[1]}, nil
	case KindQuote:
		if len(r.Values) != 4 {
			return nil, fmt.Errorf("dbnfmt: quote record wants 4 values, got %d", len(r.Values))
		}
		return quant.PriceQuote{Ask: r.Values[0], AskSize: r.Values[1], Bid: r.Values[2], BidSize: r.Values[3]}, nil
	case KindBook:
		if len(r.Values) < 1 {
			return nil, fmt.Errorf("dbnfmt: book record missing ask count")
		}
		nAsks := int(r.Values[0])
		asksEnd := 1 + 2*nAsks
		if len(r.Values) < asksEnd {
			return nil, fmt.Errorf("dbnfmt: book record truncated before %d asks", nAsks)
		}
		asks := make([]quant.BookLevel, nAsks)
		for i := 0; i < nAsks; i++ {
			asks[i] = quant.BookLevel{Size: r.Values[1+2*i], Limit: r.Values[1+2*i+1]}
		}
		bidValues := r.Values[asksEnd:]
		if len(bidValues)%2 != 0 {
			return nil, fmt.Errorf("dbnfmt: book record has an odd bid tail")
		}
		bids := make([]quant.BookLevel, len(bidValues)/2)
		for i := range bids {
			bids[i] = quant.BookLevel{Size: bidValues[2*i], Limit: bidValues[2*i+1]}
		}
		return quant.OrderBook{Asks: asks, Bids: bids}, nil
	default:
		return nil, fmt.Errorf("dbnfmt: unknown record kind %d", r.Kind)
	}
}
