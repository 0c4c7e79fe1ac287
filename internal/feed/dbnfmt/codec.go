package dbnfmt

import (
	"fmt"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Codec compresses and decompresses one block's serialized record
// bytes. Grounded on NimbleMarkets-dbn-go/compressed_io.go's
// MakeCompressedWriter/MakeCompressedReader pair, adapted from a
// stream-level to a block-level interface since blocks are seeked to
// independently via the index.
type Codec uint8

const (
	// CodecSnappy is the default block codec, named explicitly by
	// spec.md's "compression uses a block codec (snappy by default)".
	CodecSnappy Codec = iota
	// CodecZstd trades encode speed for a smaller on-disk footprint.
	CodecZstd
)

func (c Codec) encode(src []byte) ([]byte, error) {
	switch c {
	case CodecSnappy:
		return snappy.Encode(nil, src), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(src, nil), nil
	default:
		return nil, fmt.Errorf("dbnfmt: unknown codec %d", c)
	}
}

func (c Codec) decode(src []byte, sizeHint int) ([]byte, error) {
	switch c {
	case CodecSnappy:
		return snappy.Decode(nil, src)
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(src, make([]byte, 0, sizeHint))
	default:
		return nil, fmt.Errorf("dbnfmt: unknown codec %d", c)
	}
}
