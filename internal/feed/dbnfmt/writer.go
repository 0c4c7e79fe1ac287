package dbnfmt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/roboquant-go/roboquant/internal/quant"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type blockIndexEntry struct {
	firstTimeNanos int64
	offset         int64
}

// Writer appends quant.Event price samples to a persisted binary feed
// file: one Record per (asset, PriceItem) pair, batched into
// fixed-size compressed blocks with a byte-offset index written as a
// footer. Grounded on NimbleMarkets-dbn-go's metadata-then-records
// layout and its compressed writer helper, extended with the
// first-timestamp-per-block index spec.md's seek requirement names.
type Writer struct {
	cw        *countingWriter
	assets    *AssetTable
	codec     Codec
	blockSize int

	pending        []Record
	blockFirstTime int64
	haveFirst      bool

	index  []blockIndexEntry
	closed bool
}

// NewWriter opens a new persisted feed, writing the asset table header
// immediately. blockSize caps the number of records batched into one
// compressed block before it is flushed; 0 selects a default of 1024.
func NewWriter(w io.Writer, assets *AssetTable, codec Codec, blockSize int) (*Writer, error) {
	if blockSize <= 0 {
		blockSize = 1024
	}
	cw := &countingWriter{w: w}
	if err := writeHeader(cw, assets.Assets()); err != nil {
		return nil, err
	}
	return &Writer{cw: cw, assets: assets, codec: codec, blockSize: blockSize}, nil
}

// WriteEvent appends one Record per priced asset in event. A heartbeat
// (no Items) is a no-op, so it is not stored and the reader does not
// replay it.
func (wtr *Writer) WriteEvent(event quant.Event) error {
	for asset, item := range event.Items {
		idx, err := wtr.assets.Intern(asset)
		if err != nil {
			return err
		}
		rec, err := toRecord(event.Time.UnixNano(), idx, item)
		if err != nil {
			return err
		}
		if err := wtr.append(rec); err != nil {
			return err
		}
	}
	return nil
}

func (wtr *Writer) append(rec Record) error {
	if !wtr.haveFirst {
		wtr.blockFirstTime = rec.TimeNanos
		wtr.haveFirst = true
	}
	wtr.pending = append(wtr.pending, rec)
	if len(wtr.pending) >= wtr.blockSize {
		return wtr.flushBlock()
	}
	return nil
}

// flushBlock compresses and writes the currently buffered records as
// one block frame, recording its index entry.
func (wtr *Writer) flushBlock() error {
	if len(wtr.pending) == 0 {
		return nil
	}
	var raw bytes.Buffer
	bw := bufio.NewWriter(&raw)
	for _, rec := range wtr.pending {
		if err := encodeRecord(bw, rec); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	compressed, err := wtr.codec.encode(raw.Bytes())
	if err != nil {
		return err
	}

	blockOffset := wtr.cw.n
	if err := binary.Write(wtr.cw, binary.LittleEndian, uint8(wtr.codec)); err != nil {
		return err
	}
	if err := binary.Write(wtr.cw, binary.LittleEndian, uint32(raw.Len())); err != nil {
		return err
	}
	if err := binary.Write(wtr.cw, binary.LittleEndian, uint32(len(compressed))); err != nil {
		return err
	}
	if _, err := wtr.cw.Write(compressed); err != nil {
		return err
	}

	wtr.index = append(wtr.index, blockIndexEntry{firstTimeNanos: wtr.blockFirstTime, offset: blockOffset})
	wtr.pending = wtr.pending[:0]
	wtr.haveFirst = false
	return nil
}

// Close flushes any buffered records and writes the block index footer.
// The underlying io.Writer is not closed; callers that opened a file
// are responsible for that themselves.
func (wtr *Writer) Close() error {
	if wtr.closed {
		return nil
	}
	wtr.closed = true
	if err := wtr.flushBlock(); err != nil {
		return err
	}

	footerOffset := wtr.cw.n
	if err := binary.Write(wtr.cw, binary.LittleEndian, uint32(len(wtr.index))); err != nil {
		return err
	}
	for _, e := range wtr.index {
		if err := binary.Write(wtr.cw, binary.LittleEndian, e.firstTimeNanos); err != nil {
			return err
		}
		if err := binary.Write(wtr.cw, binary.LittleEndian, e.offset); err != nil {
			return err
		}
	}
	if err := binary.Write(wtr.cw, binary.LittleEndian, footerOffset); err != nil {
		return err
	}
	_, err := wtr.cw.Write(footerMagic[:])
	return err
}
