/*
DESCRIPTION
  bitwriter.go provides a bit writer implementation that mirrors BitReader,
  used by the syntax writer to emit HEVC RBSP payloads.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

import (
	"bytes"
)

// BitWriter accumulates bits into a growable buffer and flushes whole bytes
// as they fill, MSB-first. The zero value is ready for use; NewBitWriter
// returns a pointer to one.
type BitWriter struct {
	buf   bytes.Buffer
	n     uint64
	nbits int
}

// NewBitWriter returns a BitWriter ready for use.
func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// PutBits writes the low n bits of v (0 < n <= 32), MSB-first.
func (bw *BitWriter) PutBits(n int, v uint64) {
	v &= (1 << uint(n)) - 1
	bw.n = (bw.n << uint(n)) | v
	bw.nbits += n
	for bw.nbits >= 8 {
		shift := uint(bw.nbits - 8)
		bw.buf.WriteByte(byte(bw.n >> shift))
		bw.nbits -= 8
		bw.n &= (1 << uint(bw.nbits)) - 1
	}
}

// PutFlag writes a single bit for b.
func (bw *BitWriter) PutFlag(b bool) {
	if b {
		bw.PutBits(1, 1)
	} else {
		bw.PutBits(1, 0)
	}
}

// PutUE writes v as an unsigned Exp-Golomb code (ue(v)).
func (bw *BitWriter) PutUE(v uint64) {
	codeNum := v + 1
	leadingZeros := bitLen(codeNum) - 1
	for i := 0; i < leadingZeros; i++ {
		bw.PutBits(1, 0)
	}
	bw.PutBits(leadingZeros+1, codeNum)
}

// PutSE writes v as a signed Exp-Golomb code (se(v)).
func (bw *BitWriter) PutSE(v int64) {
	var u uint64
	if v > 0 {
		u = uint64(2*v - 1)
	} else {
		u = uint64(-2 * v)
	}
	bw.PutUE(u)
}

// ByteAligned reports whether the writer is currently at a byte boundary.
func (bw *BitWriter) ByteAligned() bool {
	return bw.nbits == 0
}

// ByteAlign pads with zero bits up to the next byte boundary.
func (bw *BitWriter) ByteAlign() {
	if bw.nbits != 0 {
		bw.PutBits(8-bw.nbits, 0)
	}
}

// RBSPTrailingBits writes the rbsp_trailing_bits() syntax: a stop bit of 1
// followed by zero bits up to byte alignment.
func (bw *BitWriter) RBSPTrailingBits() {
	bw.PutBits(1, 1)
	bw.ByteAlign()
}

// Bytes returns the bytes flushed so far. Any unflushed trailing bits (fewer
// than 8) are not included; call ByteAlign or RBSPTrailingBits first if a
// complete byte stream is required.
func (bw *BitWriter) Bytes() []byte {
	return bw.buf.Bytes()
}

// Len returns the number of whole bytes flushed so far.
func (bw *BitWriter) Len() int {
	return bw.buf.Len()
}

// bitLen returns the number of bits needed to represent v (v >= 1).
func bitLen(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
