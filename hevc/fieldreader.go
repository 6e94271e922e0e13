/*
DESCRIPTION
  fieldreader.go provides a sticky-error wrapper over bits.BitReader used
  throughout parameter-set and slice-header parsing.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package hevc

import (
	"github.com/ausocean/hevc/bits"
)

// fieldReader wraps a bits.BitReader with a sticky error: once a read
// fails, subsequent reads become no-ops that return zero values, so a
// parsing function can issue a long sequence of reads and check err() once
// at the end.
type fieldReader struct {
	e  error
	br *bits.BitReader
}

func newFieldReader(br *bits.BitReader) *fieldReader {
	return &fieldReader{br: br}
}

func (r *fieldReader) err() error { return r.e }

// u reads n bits and returns them as a uint64.
func (r *fieldReader) u(n int) uint64 {
	if r.e != nil {
		return 0
	}
	var v uint64
	v, r.e = r.br.ReadBits(n)
	return v
}

// flag reads a single bit as a bool.
func (r *fieldReader) flag() bool {
	return r.u(1) == 1
}

// ue reads an unsigned Exp-Golomb code.
func (r *fieldReader) ue() uint64 {
	if r.e != nil {
		return 0
	}
	var v uint64
	v, r.e = r.br.ReadUE()
	return v
}

// se reads a signed Exp-Golomb code.
func (r *fieldReader) se() int64 {
	if r.e != nil {
		return 0
	}
	var v int64
	v, r.e = r.br.ReadSE()
	return v
}

// skip discards n bits.
func (r *fieldReader) skip(n int) {
	if r.e != nil {
		return
	}
	r.e = r.br.SkipBits(n)
}

// bitPos returns the number of bits consumed from the source so far.
func (r *fieldReader) bitPos() int {
	return r.br.BytesRead()*8 - r.br.Off()
}
