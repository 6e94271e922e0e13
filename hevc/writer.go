/*
DESCRIPTION
  writer.go assembles complete Annex-B NAL units from the RBSP bytes the
  per-structure Write* functions produce: a start code, the two-byte NAL
  header, and the payload.

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

import "github.com/ausocean/hevc/nal"

// WriteNALUnit wraps rbsp in a NAL header and start code for nalType,
// writing emulation-prevention bytes into the payload so the result can be
// safely concatenated into an Annex-B stream. layerID and temporalIDPlus1
// are not validated beyond their bit widths.
func WriteNALUnit(nalType int, layerID, temporalIDPlus1 int, rbsp []byte) []byte {
	out := make([]byte, 0, len(rbsp)+8)
	out = append(out, nalStartCode(nalType)...)

	b0 := byte((nalType&0x3f)<<1) | byte((layerID>>5)&0x1)
	b1 := byte((layerID&0x1f)<<3) | byte(temporalIDPlus1&0x7)
	out = append(out, b0, b1)

	out = append(out, insertEPB(rbsp)...)
	return out
}

// nalStartCode returns the four-byte start code for parameter-set and AUD
// NAL types, and the three-byte form otherwise, matching how the pack's
// source framed each unit type on output.
func nalStartCode(nalType int) []byte {
	switch nalType {
	case nal.TypeVPS, nal.TypeSPS, nal.TypePPS, nal.TypeAUD:
		return []byte{0x00, 0x00, 0x00, 0x01}
	default:
		return []byte{0x00, 0x00, 0x01}
	}
}

// insertEPB inserts emulation-prevention 0x03 bytes wherever rbsp contains
// the two-zero-byte sequence a decoder's start-code scanner would
// otherwise misinterpret.
func insertEPB(rbsp []byte) []byte {
	out := make([]byte, 0, len(rbsp)+len(rbsp)/2)
	zeros := 0
	for _, b := range rbsp {
		if zeros >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
