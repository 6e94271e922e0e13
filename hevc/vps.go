/*
DESCRIPTION
  vps.go parses and writes the video_parameter_set_rbsp() syntax structure.

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
	"bytes"

	"github.com/ausocean/hevc/bits"
)

// VPS is a parsed video_parameter_set_rbsp(). Fields follow 7.3.2.1; layer
// set and HRD-per-operation-point detail beyond what a single-layer stream
// needs is parsed for bit accuracy but not retained structurally.
type VPS struct {
	ID                          uint8
	BaseLayerInternalFlag       bool
	BaseLayerAvailableFlag      bool
	MaxLayersMinus1             uint8
	MaxSubLayersMinus1          uint8
	TemporalIDNestingFlag       bool

	PTL *ProfileTierLevel

	SubLayerOrderingInfoPresentFlag bool
	MaxDecPicBufferingMinus1        [maxSubLayers]uint32
	MaxNumReorderPics                [maxSubLayers]uint32
	MaxLatencyIncreasePlus1          [maxSubLayers]uint32

	MaxLayerID           uint8
	NumLayerSetsMinus1   uint32

	TimingInfoPresentFlag        bool
	NumUnitsInTick               uint32
	TimeScale                    uint32
	PocProportionalToTimingFlag  bool
	NumTicksPocDiffOneMinus1     uint32

	NumHrdParameters uint32

	ExtensionFlag bool
}

// ParseVPS parses a video_parameter_set_rbsp() from rbsp.
func ParseVPS(rbsp []byte) (*VPS, error) {
	// rbsp has already had emulation-prevention bytes stripped by nal.Split;
	// stripping again here would corrupt a legitimate 00 00 03 sequence in
	// the decoded payload.
	br := bits.NewBitReader(bytes.NewReader(rbsp))
	r := newFieldReader(br)

	v := &VPS{}
	v.ID = uint8(r.u(4))
	v.BaseLayerInternalFlag = r.flag()
	v.BaseLayerAvailableFlag = r.flag()
	v.MaxLayersMinus1 = uint8(r.u(6))
	v.MaxSubLayersMinus1 = uint8(r.u(3))
	v.TemporalIDNestingFlag = r.flag()
	r.skip(16) // vps_reserved_0xffff_16bits
	if err := r.err(); err != nil {
		return nil, invalid("vps header", err)
	}

	ptl, err := parseProfileTierLevel(r, int(v.MaxSubLayersMinus1))
	if err != nil {
		return nil, err
	}
	v.PTL = ptl

	v.SubLayerOrderingInfoPresentFlag = r.flag()
	from := uint8(0)
	if !v.SubLayerOrderingInfoPresentFlag {
		from = v.MaxSubLayersMinus1
	}
	for i := from; i <= v.MaxSubLayersMinus1; i++ {
		v.MaxDecPicBufferingMinus1[i] = uint32(r.ue())
		v.MaxNumReorderPics[i] = uint32(r.ue())
		v.MaxLatencyIncreasePlus1[i] = uint32(r.ue())
	}
	if !v.SubLayerOrderingInfoPresentFlag {
		// Propagate the single top-level slot down to every lower index, per
		// the sub-layer ordering info propagation rule.
		for i := 0; i < int(v.MaxSubLayersMinus1); i++ {
			v.MaxDecPicBufferingMinus1[i] = v.MaxDecPicBufferingMinus1[v.MaxSubLayersMinus1]
			v.MaxNumReorderPics[i] = v.MaxNumReorderPics[v.MaxSubLayersMinus1]
			v.MaxLatencyIncreasePlus1[i] = v.MaxLatencyIncreasePlus1[v.MaxSubLayersMinus1]
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("vps sub layer ordering info", err)
	}

	v.MaxLayerID = uint8(r.u(6))
	v.NumLayerSetsMinus1 = uint32(r.ue())
	if err := r.err(); err != nil {
		return nil, invalid("vps layer sets", err)
	}
	for i := uint32(1); i <= v.NumLayerSetsMinus1; i++ {
		for j := uint8(0); j <= v.MaxLayerID; j++ {
			r.skip(1) // layer_id_included_flag[i][j]
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("vps layer_id_included_flag", err)
	}

	v.TimingInfoPresentFlag = r.flag()
	if v.TimingInfoPresentFlag {
		v.NumUnitsInTick = uint32(r.u(32))
		v.TimeScale = uint32(r.u(32))
		v.PocProportionalToTimingFlag = r.flag()
		if v.PocProportionalToTimingFlag {
			v.NumTicksPocDiffOneMinus1 = uint32(r.ue())
		}
		v.NumHrdParameters = uint32(r.ue())
		if err := r.err(); err != nil {
			return nil, invalid("vps timing info", err)
		}
		for i := uint32(0); i < v.NumHrdParameters; i++ {
			r.ue() // hrd_layer_set_idx[i]
			cprmsPresent := true
			if i > 0 {
				cprmsPresent = r.flag()
			}
			if _, err := parseHRDParameters(r, cprmsPresent, int(v.MaxSubLayersMinus1)); err != nil {
				return nil, err
			}
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("vps hrd parameters", err)
	}

	v.ExtensionFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("vps_extension_flag", err)
	}
	if v.ExtensionFlag {
		return nil, unsupported("vps_extension_data")
	}

	return v, nil
}

// WriteVPS emits a video_parameter_set_rbsp() for v.
func WriteVPS(v *VPS) []byte {
	bw := bits.NewBitWriter()

	bw.PutBits(4, uint64(v.ID))
	bw.PutFlag(v.BaseLayerInternalFlag)
	bw.PutFlag(v.BaseLayerAvailableFlag)
	bw.PutBits(6, uint64(v.MaxLayersMinus1))
	bw.PutBits(3, uint64(v.MaxSubLayersMinus1))
	bw.PutFlag(v.TemporalIDNestingFlag)
	bw.PutBits(16, 0xffff)

	writeProfileTierLevel(bw, v.PTL, int(v.MaxSubLayersMinus1))

	bw.PutFlag(v.SubLayerOrderingInfoPresentFlag)
	from := uint8(0)
	if !v.SubLayerOrderingInfoPresentFlag {
		from = v.MaxSubLayersMinus1
	}
	for i := from; i <= v.MaxSubLayersMinus1; i++ {
		bw.PutUE(uint64(v.MaxDecPicBufferingMinus1[i]))
		bw.PutUE(uint64(v.MaxNumReorderPics[i]))
		bw.PutUE(uint64(v.MaxLatencyIncreasePlus1[i]))
	}

	bw.PutBits(6, uint64(v.MaxLayerID))
	bw.PutUE(uint64(v.NumLayerSetsMinus1))
	for i := uint32(1); i <= v.NumLayerSetsMinus1; i++ {
		for j := uint8(0); j <= v.MaxLayerID; j++ {
			bw.PutBits(1, 0)
		}
	}

	bw.PutFlag(v.TimingInfoPresentFlag)
	if v.TimingInfoPresentFlag {
		bw.PutBits(32, uint64(v.NumUnitsInTick))
		bw.PutBits(32, uint64(v.TimeScale))
		bw.PutFlag(v.PocProportionalToTimingFlag)
		if v.PocProportionalToTimingFlag {
			bw.PutUE(uint64(v.NumTicksPocDiffOneMinus1))
		}
		bw.PutUE(uint64(v.NumHrdParameters))
		// Per-operation-point HRD parameter sets are not retained on VPS, so
		// none are re-emitted here; NumHrdParameters is expected to be 0 for
		// writer-originated streams.
	}

	bw.PutFlag(v.ExtensionFlag)
	bw.RBSPTrailingBits()
	return bw.Bytes()
}
