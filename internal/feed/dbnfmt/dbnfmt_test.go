package dbnfmt

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/roboquant-go/roboquant/internal/feed"
	"github.com/roboquant-go/roboquant/internal/quant"
)

func sampleAssets() []quant.Asset {
	return []quant.Asset{
		quant.NewAsset("ABC", quant.AssetStock, quant.GetCurrency("USD"), "NYSE"),
		quant.NewAsset("XYZ", quant.AssetStock, quant.GetCurrency("USD"), "NYSE"),
	}
}

func writeSample(t *testing.T, codec Codec, blockSize int) ([]byte, []quant.Event, []quant.Asset) {
	t.Helper()
	assets := sampleAssets()
	table := NewAssetTable()
	for _, a := range assets {
		if _, err := table.Intern(a); err != nil {
			t.Fatalf("intern: %v", err)
		}
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []quant.Event{
		quant.NewEvent(base, struct {
			Asset quant.Asset
			Item  quant.PriceItem
		}{assets[0], quant.TradePrice{Price: 100, Volume: 10}}),
		quant.NewEvent(base.Add(time.Minute), struct {
			Asset quant.Asset
			Item  quant.PriceItem
		}{assets[1], quant.PriceBar{Bar: quant.OHLCV{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100}, Span: time.Minute}}),
		quant.NewEvent(base.Add(2*time.Minute), struct {
			Asset quant.Asset
			Item  quant.PriceItem
		}{assets[0], quant.OrderBook{
			Asks: []quant.BookLevel{{Size: 5, Limit: 101}, {Size: 3, Limit: 102}},
			Bids: []quant.BookLevel{{Size: 4, Limit: 99}},
		}}),
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, table, codec, blockSize)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, ev := range events {
		if err := w.WriteEvent(ev); err != nil {
			t.Fatalf("WriteEvent: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes(), events, assets
}

func TestWriteReadRoundTripsEventsExactly(t *testing.T) {
	data, events, _ := writeSample(t, CodecSnappy, 1 /* one record per block, forces multiple blocks */)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	scanner := NewScanner(r)

	var got []Record
	for scanner.Next() {
		got = append(got, scanner.Record())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, rec := range got {
		wantTime := events[i].Time.UnixNano()
		if rec.TimeNanos != wantTime {
			t.Fatalf("record %d: expected time %d, got %d", i, wantTime, rec.TimeNanos)
		}
		item, err := toPriceItem(rec)
		if err != nil {
			t.Fatalf("record %d: toPriceItem: %v", i, err)
		}
		asset, err := r.AssetAt(rec.AssetIndex)
		if err != nil {
			t.Fatalf("record %d: AssetAt: %v", i, err)
		}
		wantItem := eventItem(t, events[i])
		if item.PriceOf(quant.PriceDefault) != wantItem.PriceOf(quant.PriceDefault) {
			t.Fatalf("record %d: price mismatch: got %v want %v", i, item, wantItem)
		}
		if !asset.Equal(assetOf(events[i])) {
			t.Fatalf("record %d: asset mismatch: got %v want %v", i, asset, assetOf(events[i]))
		}
	}
}

func TestZstdCodecRoundTrips(t *testing.T) {
	data, events, _ := writeSample(t, CodecZstd, 16)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	scanner := NewScanner(r)
	var n int
	for scanner.Next() {
		n++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != len(events) {
		t.Fatalf("expected %d records, got %d", len(events), n)
	}
}

func TestSeekTimeFindsTheBlockContainingTheTarget(t *testing.T) {
	data, events, _ := writeSample(t, CodecSnappy, 1)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.SeekTime(events[2].Time); err != nil {
		t.Fatalf("SeekTime: %v", err)
	}
	scanner := NewScanner(r)
	if !scanner.Next() {
		t.Fatalf("expected a record after seeking: %v", scanner.Err())
	}
	rec := scanner.Record()
	if rec.TimeNanos != events[2].Time.UnixNano() {
		t.Fatalf("expected to land on the last event's block, got time %d", rec.TimeNanos)
	}
}

func TestFeedPlayReconstructsEventsFromPersistedRecords(t *testing.T) {
	data, events, _ := writeSample(t, CodecSnappy, 16)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	f := New(r)

	tf := quant.Timeframe{Start: events[0].Time, End: events[len(events)-1].Time, Inclusive: true}
	ch := feed.NewChannel(4, tf)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.Play(ctx, ch) }()

	var got []quant.Event
	for {
		ev, eos, err := ch.Receive(ctx, time.Second, events[0].Time)
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		if eos {
			break
		}
		got = append(got, ev)
	}
	if err := <-done; err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i, ev := range got {
		if !ev.Time.Equal(events[i].Time) {
			t.Fatalf("event %d: expected time %v, got %v", i, events[i].Time, ev.Time)
		}
	}
}

func eventItem(t *testing.T, ev quant.Event) quant.PriceItem {
	t.Helper()
	for _, item := range ev.Items {
		return item
	}
	t.Fatal("event has no items")
	return nil
}

func assetOf(ev quant.Event) quant.Asset {
	for a := range ev.Items {
		return a
	}
	return quant.Asset{}
}
