/*
DESCRIPTION
  bitreader.go provides a bit reader implementation that can read or peek
  from an io.Reader data source, plus the Exp-Golomb and emulation-
  prevention-byte handling needed to consume HEVC RBSP payloads.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a bit reader implementation that can read or peek
// from an io.Reader data source.
package bits

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ErrStreamExhausted is returned whenever a read requests more bits than
// remain in the source.
var ErrStreamExhausted = errors.New("stream exhausted")

type bytePeeker interface {
	io.ByteReader
	Peek(int) ([]byte, error)
}

// BitReader is a bit reader that provides methods for reading bits, flags,
// and Exp-Golomb codes from an io.Reader source. A BitReader built with
// NewRBSPReader also discards emulation-prevention bytes (0x03 following
// 0x00 0x00) as it goes; one built with NewBitReader reads bytes as they are.
type BitReader struct {
	r     bytePeeker
	n     uint64
	nbits int
	nRead int

	epb *epbStripper // non-nil when constructed via NewRBSPReader.
}

// NewBitReader returns a new BitReader that reads raw (non-EPB-aware) bits
// from r. Use NewRBSPReader for HEVC RBSP payloads that may contain
// emulation-prevention bytes.
func NewBitReader(r io.Reader) *BitReader {
	byter, ok := r.(bytePeeker)
	if !ok {
		byter = bufio.NewReader(r)
	}
	return &BitReader{r: byter}
}

// NewRBSPReader returns a BitReader over rbsp that strips emulation-
// prevention bytes (the 0x03 in any 0x00 0x00 0x03 sequence) as it reads,
// and tracks how many were stripped via EPBCount.
func NewRBSPReader(rbsp []byte) *BitReader {
	e := &epbStripper{data: rbsp}
	br := NewBitReader(e)
	br.epb = e
	return br
}

// EPBCount returns the number of 0x03 emulation-prevention bytes skipped so
// far. It is zero for a BitReader not constructed via NewRBSPReader.
func (br *BitReader) EPBCount() int {
	if br.epb == nil {
		return 0
	}
	return br.epb.skipped
}

// epbStripper is an io.Reader that removes emulation-prevention bytes from
// an in-memory RBSP buffer, one byte at a time.
type epbStripper struct {
	data    []byte
	off     int
	zeros   int
	skipped int
}

func (e *epbStripper) ReadByte() (byte, error) {
	if e.off >= len(e.data) {
		return 0, io.EOF
	}
	b := e.data[e.off]
	if e.zeros >= 2 && b == 0x03 {
		e.off++
		e.zeros = 0
		e.skipped++
		if e.off >= len(e.data) {
			return 0, io.EOF
		}
		b = e.data[e.off]
	}
	e.off++
	if b == 0x00 {
		e.zeros++
	} else {
		e.zeros = 0
	}
	return b, nil
}

func (e *epbStripper) Read(p []byte) (int, error) {
	for i := range p {
		b, err := e.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	return len(p), nil
}

// ReadBits reads n bits (0 < n <= 32) from the source and returns them in
// the least-significant part of a uint64, MSB-first.
func (br *BitReader) ReadBits(n int) (uint64, error) {
	for n > br.nbits {
		b, err := br.r.ReadByte()
		if err == io.EOF {
			return 0, ErrStreamExhausted
		}
		if err != nil {
			return 0, err
		}
		br.nRead++
		br.n <<= 8
		br.n |= uint64(b)
		br.nbits += 8
	}

	r := (br.n >> uint(br.nbits-n)) & ((1 << uint(n)) - 1)
	br.nbits -= n
	return r, nil
}

// ReadFlag reads a single bit and returns it as a bool.
func (br *BitReader) ReadFlag() (bool, error) {
	b, err := br.ReadBits(1)
	return b == 1, err
}

// ReadUE parses an unsigned Exp-Golomb coded syntax element (ue(v)): count
// leading zeros k, then read k+1 bits to form (1<<k)-1+suffix.
func (br *BitReader) ReadUE() (uint64, error) {
	leadingZeros := 0
	for {
		b, err := br.ReadBits(1)
		if err != nil {
			return 0, err
		}
		if b != 0 {
			break
		}
		leadingZeros++
		if leadingZeros > 32 {
			return 0, errors.New("ue(v) code too long")
		}
	}
	if leadingZeros == 0 {
		return 0, nil
	}
	suffix, err := br.ReadBits(leadingZeros)
	if err != nil {
		return 0, err
	}
	return (uint64(1)<<uint(leadingZeros) - 1) + suffix, nil
}

// ReadSE parses a signed Exp-Golomb coded syntax element (se(v)): decode
// unsigned u, then map u&1 ? (u+1)/2 : -(u/2).
func (br *BitReader) ReadSE() (int64, error) {
	u, err := br.ReadUE()
	if err != nil {
		return 0, err
	}
	if u&1 == 1 {
		return int64((u + 1) / 2), nil
	}
	return -int64(u / 2), nil
}

// PeekBits returns the next n bits without advancing through the source.
func (br *BitReader) PeekBits(n int) (uint64, error) {
	byt, err := br.r.Peek(int((n-br.nbits)+7) / 8)
	nbits := br.nbits
	if err != nil {
		if err == io.EOF {
			return 0, ErrStreamExhausted
		}
		return 0, err
	}
	acc := br.n
	for i := 0; n > nbits; i++ {
		acc <<= 8
		acc |= uint64(byt[i])
		nbits += 8
	}
	return (acc >> uint(nbits-n)) & ((1 << uint(n)) - 1), nil
}

// SkipBits discards n bits, applying the same constraints as ReadBits.
func (br *BitReader) SkipBits(n int) error {
	_, err := br.ReadBits(n)
	return err
}

// ByteAligned returns true if the reader position is at the start of a
// byte.
func (br *BitReader) ByteAligned() bool {
	return br.nbits == 0
}

// Off returns the number of bits of the current byte not yet consumed (0
// when the reader is byte aligned).
func (br *BitReader) Off() int {
	return br.nbits
}

// BytesRead returns the number of bytes consumed from the underlying
// source so far. For a reader built with NewRBSPReader, skipped
// emulation-prevention bytes are not included (see EPBCount).
func (br *BitReader) BytesRead() int {
	return br.nRead
}

// NumBitsLeft estimates the number of unread bits, valid only when the
// underlying reader is a bytePeeker over a fully buffered in-memory source
// such as one produced by NewRBSPReader.
func (br *BitReader) NumBitsLeft(totalBytes int) int {
	return totalBytes*8 - (br.nRead*8 - br.nbits)
}
