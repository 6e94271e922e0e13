/*
DESCRIPTION
  nal.go scans an Annex-B byte stream for start codes and yields the
  individual NAL units it contains, with emulation-prevention bytes already
  stripped from each unit's RBSP payload.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package nal implements Annex-B NAL unit framing for HEVC bitstreams:
// locating start codes, splitting the stream into individual NAL units, and
// parsing each unit's two-byte header.
package nal

import (
	"github.com/pkg/errors"
)

// Unit types, from HEVC Table 7-1. Only the ranges this module dispatches
// on are named individually; others are referenced by range in the parser.
const (
	TypeTrailN    = 0
	TypeTrailR    = 1
	TypeTSAN      = 2
	TypeTSAR      = 3
	TypeSTSAN     = 4
	TypeSTSAR     = 5
	TypeRADLN     = 6
	TypeRADLR     = 7
	TypeRASLN     = 8
	TypeRASLR     = 9
	TypeBLAWLP    = 16
	TypeBLAWRADL  = 17
	TypeBLANLP    = 18
	TypeIDRWRADL  = 19
	TypeIDRNLP    = 20
	TypeCRA       = 21
	TypeVPS       = 32
	TypeSPS       = 33
	TypePPS       = 34
	TypeAUD       = 35
	TypeEOS       = 36
	TypeEOB       = 37
	TypeFD        = 38
	TypePrefixSEI = 39
	TypeSuffixSEI = 40
)

// ErrForbiddenBitSet is returned when a NAL header's forbidden_zero_bit is
// not zero.
var ErrForbiddenBitSet = errors.New("nal: forbidden_zero_bit is set")

// Header is the two-byte NAL unit header described in HEVC 7.3.1.2.
type Header struct {
	Type             int
	LayerID          int
	TemporalIDPlus1  int
}

// Unit is a single framed NAL unit: its header plus its RBSP payload with
// emulation-prevention bytes already removed.
type Unit struct {
	Header
	RBSP         []byte
	EPBCount     int // number of emulation-prevention bytes stripped from RBSP
	StartCodeLen int // 3 or 4, length of the start code that preceded this unit
}

// IsIRAP reports whether the unit is an intra random access point picture
// (IDR, CRA, or BLA), i.e. nal_unit_type in [16, 23].
func (u Unit) IsIRAP() bool {
	return u.Type >= 16 && u.Type <= 23
}

// IsIDR reports whether the unit is an IDR picture (nal_unit_type 19 or 20).
func (u Unit) IsIDR() bool {
	return u.Type == TypeIDRWRADL || u.Type == TypeIDRNLP
}

// IsVCL reports whether the unit carries a coded slice segment, i.e.
// nal_unit_type in [0, 31].
func (u Unit) IsVCL() bool {
	return u.Type <= 31
}

// Split scans data for Annex-B start codes and returns the NAL units found,
// in stream order. It expects data to hold one or more complete NAL units;
// it does not retain state across calls, matching the source's assumption
// that streaming reassembly across chunks is out of scope.
func Split(data []byte) ([]Unit, error) {
	starts := findStartCodes(data)
	if len(starts) == 0 {
		return nil, nil
	}

	var units []Unit
	for i, s := range starts {
		payloadStart := s.offset + s.length
		var payloadEnd int
		if i+1 < len(starts) {
			payloadEnd = starts[i+1].offset
		} else {
			payloadEnd = len(data)
		}
		// Annex-B permits trailing zero bytes before the next start code
		// (trailing_zero_8bits); trim them so they don't leak into RBSP.
		for payloadEnd > payloadStart && data[payloadEnd-1] == 0x00 {
			payloadEnd--
		}
		if payloadEnd-payloadStart < 2 {
			continue // no room for a NAL header; skip an empty/degenerate unit
		}

		hdr, err := parseHeader(data[payloadStart], data[payloadStart+1])
		if err != nil {
			return units, err
		}

		rbsp, epbCount := stripEPB(data[payloadStart+2 : payloadEnd])
		units = append(units, Unit{
			Header:       hdr,
			RBSP:         rbsp,
			EPBCount:     epbCount,
			StartCodeLen: s.length,
		})
	}
	return units, nil
}

// parseHeader decodes the two NAL header bytes per 7.3.1.2.
func parseHeader(b0, b1 byte) (Header, error) {
	if b0&0x80 != 0 {
		return Header{}, ErrForbiddenBitSet
	}
	return Header{
		Type:            int((b0 >> 1) & 0x3f),
		LayerID:         int((b0&0x1)<<5) | int(b1>>3),
		TemporalIDPlus1: int(b1 & 0x7),
	}, nil
}

// stripEPB removes any 0x03 byte that immediately follows two 0x00 bytes,
// returning the cleaned RBSP and the number of bytes removed.
func stripEPB(b []byte) ([]byte, int) {
	out := make([]byte, 0, len(b))
	zeros := 0
	removed := 0
	for i := 0; i < len(b); i++ {
		if zeros >= 2 && b[i] == 0x03 {
			zeros = 0
			removed++
			continue
		}
		out = append(out, b[i])
		if b[i] == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out, removed
}

type startCode struct {
	offset int
	length int // 3 for 00 00 01, 4 for 00 00 00 01
}

// findStartCodes locates every Annex-B start code in data, reporting a
// 4-byte length when the "00 00 01" is preceded by an extra zero byte.
func findStartCodes(data []byte) []startCode {
	var codes []startCode
	for i := 0; i+2 < len(data); i++ {
		if data[i] != 0x00 || data[i+1] != 0x00 || data[i+2] != 0x01 {
			continue
		}
		offset, length := i, 3
		if i >= 1 && data[i-1] == 0x00 {
			offset, length = i-1, 4
		}
		codes = append(codes, startCode{offset: offset, length: length})
		i += 2 // advance past the 01; outer loop's i++ moves past it
	}
	return codes
}
