package dbnfmt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/roboquant-go/roboquant/internal/quant"
)

var fileMagic = [4]byte{'D', 'B', 'N', '1'}
var footerMagic = [4]byte{'D', 'B', 'N', 'X'}

const formatVersion uint8 = 1

func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("dbnfmt: string too long (%d bytes)", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeHeader writes the file magic, format version and asset table.
func writeHeader(w io.Writer, assets []quant.Asset) error {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if len(assets) > math.MaxUint16 {
		return fmt.Errorf("dbnfmt: too many assets (%d)", len(assets))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(assets))); err != nil {
		return err
	}
	for _, a := range assets {
		if err := writeString(w, a.Symbol); err != nil {
			return err
		}
		if err := writeString(w, string(a.Class)); err != nil {
			return err
		}
		if err := writeString(w, a.Currency.Code); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(a.Currency.Digits)); err != nil {
			return err
		}
		if err := writeString(w, a.Exchange); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, a.Multiplier); err != nil {
			return err
		}
	}
	return nil
}

// readHeader parses the header written by writeHeader, validating the
// magic and returning the decoded asset list.
func readHeader(r io.Reader) ([]quant.Asset, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("dbnfmt: bad file magic %q", magic)
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("dbnfmt: unsupported format version %d", version)
	}
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	assets := make([]quant.Asset, n)
	for i := range assets {
		symbol, err := readString(r)
		if err != nil {
			return nil, err
		}
		class, err := readString(r)
		if err != nil {
			return nil, err
		}
		currencyCode, err := readString(r)
		if err != nil {
			return nil, err
		}
		var digits uint8
		if err := binary.Read(r, binary.LittleEndian, &digits); err != nil {
			return nil, err
		}
		exchange, err := readString(r)
		if err != nil {
			return nil, err
		}
		var multiplier float64
		if err := binary.Read(r, binary.LittleEndian, &multiplier); err != nil {
			return nil, err
		}
		assets[i] = quant.Asset{
			Symbol:     symbol,
			Class:      quant.AssetClass(class),
			Currency:   quant.Currency{Code: currencyCode, Digits: int(digits)},
			Exchange:   exchange,
			Multiplier: multiplier,
		}
	}
	return assets, nil
}

// encodeRecord writes r's wire encoding to w.
func encodeRecord(w *bufio.Writer, r Record) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(r.Kind)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.TimeNanos); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.AssetIndex); err != nil {
		return err
	}
	if len(r.Values) > math.MaxUint16 {
		return fmt.Errorf("dbnfmt: record carries too many values (%d)", len(r.Values))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(r.Values))); err != nil {
		return err
	}
	for _, v := range r.Values {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return writeString(w, r.Meta)
}

// decodeRecord reads one record from r. io.EOF signals a clean
// end-of-block.
func decodeRecord(r *bufio.Reader) (Record, error) {
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return Record{}, err
	}
	var rec Record
	rec.Kind = Kind(kind)
	if err := binary.Read(r, binary.LittleEndian, &rec.TimeNanos); err != nil {
		return Record{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.AssetIndex); err != nil {
		return Record{}, err
	}
	var numValues uint16
	if err := binary.Read(r, binary.LittleEndian, &numValues); err != nil {
		return Record{}, err
	}
	rec.Values = make([]float64, numValues)
	for i := range rec.Values {
		if err := binary.Read(r, binary.LittleEndian, &rec.Values[i]); err != nil {
			return Record{}, err
		}
	}
	meta, err := readString(r)
	if err != nil {
		return Record{}, err
	}
	rec.Meta = meta
	return rec, nil
}
