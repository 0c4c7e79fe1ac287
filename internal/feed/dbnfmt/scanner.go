package dbnfmt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// Scanner decodes records block-by-block from a Reader's current
// position, the way NimbleMarkets-dbn-go's DbnScanner.Next() pulls one
// record at a time off a buffered stream — generalized here to
// transparently cross a block boundary by decompressing the next
// block frame once the current one is exhausted.
type Scanner struct {
	r   *Reader
	cur *bufio.Reader
	rec Record
	err error
}

// NewScanner builds a Scanner starting at r's current position.
func NewScanner(r *Reader) *Scanner { return &Scanner{r: r} }

// Next decodes the next record, returning false at end-of-file or on
// error; check Err afterward to distinguish the two.
func (s *Scanner) Next() bool {
	for {
		if s.cur != nil {
			rec, err := decodeRecord(s.cur)
			if err == nil {
				s.rec = rec
				return true
			}
			if err != io.EOF {
				s.err = err
				return false
			}
			s.cur = nil
		}
		if !s.loadBlock() {
			return false
		}
	}
}

// loadBlock decompresses the next block frame into s.cur, or reports
// false once the data region is exhausted.
func (s *Scanner) loadBlock() bool {
	pos, err := s.r.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		s.err = err
		return false
	}
	if pos >= s.r.footerOffset {
		return false
	}

	var codec uint8
	if err := binary.Read(s.r.rs, binary.LittleEndian, &codec); err != nil {
		s.err = err
		return false
	}
	var uncompressedLen, compressedLen uint32
	if err := binary.Read(s.r.rs, binary.LittleEndian, &uncompressedLen); err != nil {
		s.err = err
		return false
	}
	if err := binary.Read(s.r.rs, binary.LittleEndian, &compressedLen); err != nil {
		s.err = err
		return false
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(s.r.rs, compressed); err != nil {
		s.err = err
		return false
	}
	raw, err := Codec(codec).decode(compressed, int(uncompressedLen))
	if err != nil {
		s.err = err
		return false
	}
	s.cur = bufio.NewReader(bytes.NewReader(raw))
	return true
}

// Record returns the record decoded by the most recent successful Next.
func (s *Scanner) Record() Record { return s.rec }

// Err reports the error that stopped iteration, or nil at a clean EOF.
func (s *Scanner) Err() error { return s.err }
