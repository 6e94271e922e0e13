/*
DESCRIPTION
  pps.go parses and writes the pic_parameter_set_rbsp() syntax structure,
  including tile column/row geometry.

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

// PPS is a parsed pic_parameter_set_rbsp(), 7.3.2.3.
type PPS struct {
	ID                 uint8
	SeqParameterSetID  uint8

	DependentSliceSegmentsEnabledFlag bool
	OutputFlagPresentFlag             bool
	NumExtraSliceHeaderBits           uint8
	SignDataHidingEnabledFlag         bool
	CabacInitPresentFlag              bool

	NumRefIdxL0DefaultActiveMinus1 uint32
	NumRefIdxL1DefaultActiveMinus1 uint32
	InitQPMinus26                  int32

	ConstrainedIntraPredFlag bool
	TransformSkipEnabledFlag bool
	CuQpDeltaEnabledFlag     bool
	DiffCuQpDeltaDepth       uint32

	PPSCbQpOffset int32
	PPSCrQpOffset int32

	PPSSliceChromaQpOffsetsPresentFlag bool
	WeightedPredFlag                   bool
	WeightedBipredFlag                 bool
	TransquantBypassEnabledFlag        bool

	TilesEnabledFlag              bool
	EntropyCodingSyncEnabledFlag  bool
	NumTileColumnsMinus1          uint32
	NumTileRowsMinus1             uint32
	UniformSpacingFlag            bool
	ColumnWidthMinus1             []uint32
	RowHeightMinus1               []uint32
	LoopFilterAcrossTilesEnabledFlag bool

	PPSLoopFilterAcrossSlicesEnabledFlag bool

	DeblockingFilterControlPresentFlag  bool
	DeblockingFilterOverrideEnabledFlag  bool
	PPSDeblockingFilterDisabledFlag      bool
	PPSBetaOffsetDiv2                    int32
	PPSTcOffsetDiv2                      int32

	PPSScalingListDataPresentFlag bool
	ScalingList                   *ScalingListData

	ListsModificationPresentFlag   bool
	Log2ParallelMergeLevelMinus2   uint32
	SliceSegmentHeaderExtensionPresentFlag bool

	ExtensionPresentFlag bool
}

// ParsePPS parses a pic_parameter_set_rbsp() from rbsp.
func ParsePPS(rbsp []byte) (*PPS, error) {
	// rbsp has already had emulation-prevention bytes stripped by nal.Split;
	// stripping again here would corrupt a legitimate 00 00 03 sequence in
	// the decoded payload.
	br := bits.NewBitReader(bytes.NewReader(rbsp))
	r := newFieldReader(br)

	p := &PPS{}
	p.ID = uint8(r.ue())
	p.SeqParameterSetID = uint8(r.ue())
	p.DependentSliceSegmentsEnabledFlag = r.flag()
	p.OutputFlagPresentFlag = r.flag()
	p.NumExtraSliceHeaderBits = uint8(r.u(3))
	p.SignDataHidingEnabledFlag = r.flag()
	p.CabacInitPresentFlag = r.flag()
	p.NumRefIdxL0DefaultActiveMinus1 = uint32(r.ue())
	p.NumRefIdxL1DefaultActiveMinus1 = uint32(r.ue())
	p.InitQPMinus26 = int32(r.se())
	p.ConstrainedIntraPredFlag = r.flag()
	p.TransformSkipEnabledFlag = r.flag()
	p.CuQpDeltaEnabledFlag = r.flag()
	if p.CuQpDeltaEnabledFlag {
		p.DiffCuQpDeltaDepth = uint32(r.ue())
	}
	p.PPSCbQpOffset = int32(r.se())
	p.PPSCrQpOffset = int32(r.se())
	p.PPSSliceChromaQpOffsetsPresentFlag = r.flag()
	p.WeightedPredFlag = r.flag()
	p.WeightedBipredFlag = r.flag()
	p.TransquantBypassEnabledFlag = r.flag()
	p.TilesEnabledFlag = r.flag()
	p.EntropyCodingSyncEnabledFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("pps header", err)
	}

	if p.TilesEnabledFlag {
		p.NumTileColumnsMinus1 = uint32(r.ue())
		p.NumTileRowsMinus1 = uint32(r.ue())
		p.UniformSpacingFlag = r.flag()
		if err := r.err(); err != nil {
			return nil, invalid("pps tile counts", err)
		}
		if !p.UniformSpacingFlag {
			p.ColumnWidthMinus1 = make([]uint32, p.NumTileColumnsMinus1)
			for i := uint32(0); i < p.NumTileColumnsMinus1; i++ {
				p.ColumnWidthMinus1[i] = uint32(r.ue())
			}
			p.RowHeightMinus1 = make([]uint32, p.NumTileRowsMinus1)
			for i := uint32(0); i < p.NumTileRowsMinus1; i++ {
				p.RowHeightMinus1[i] = uint32(r.ue())
			}
			if err := r.err(); err != nil {
				return nil, invalid("pps explicit tile sizes", err)
			}
		}
		p.LoopFilterAcrossTilesEnabledFlag = r.flag()
	}
	p.PPSLoopFilterAcrossSlicesEnabledFlag = r.flag()
	p.DeblockingFilterControlPresentFlag = r.flag()
	if p.DeblockingFilterControlPresentFlag {
		p.DeblockingFilterOverrideEnabledFlag = r.flag()
		p.PPSDeblockingFilterDisabledFlag = r.flag()
		if !p.PPSDeblockingFilterDisabledFlag {
			p.PPSBetaOffsetDiv2 = int32(r.se())
			p.PPSTcOffsetDiv2 = int32(r.se())
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("pps deblocking", err)
	}

	p.PPSScalingListDataPresentFlag = r.flag()
	if p.PPSScalingListDataPresentFlag {
		sl, err := parseScalingListData(r)
		if err != nil {
			return nil, err
		}
		p.ScalingList = sl
	}

	p.ListsModificationPresentFlag = r.flag()
	p.Log2ParallelMergeLevelMinus2 = uint32(r.ue())
	p.SliceSegmentHeaderExtensionPresentFlag = r.flag()
	p.ExtensionPresentFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("pps trailing flags", err)
	}
	if p.ExtensionPresentFlag {
		return nil, unsupported("pps_extension_data")
	}

	return p, nil
}

// ColumnWidths returns the per-column CTB widths, computing the uniform
// derivation if uniform_spacing_flag was set.
func (p *PPS) ColumnWidths(picWidthInCtbsY uint32) []uint32 {
	if !p.UniformSpacingFlag {
		widths := make([]uint32, 0, p.NumTileColumnsMinus1+1)
		sum := uint32(0)
		for _, w := range p.ColumnWidthMinus1 {
			widths = append(widths, w+1)
			sum += w + 1
		}
		widths = append(widths, picWidthInCtbsY-sum)
		return widths
	}
	cols, _ := UniformTileSizes(picWidthInCtbsY, p.NumTileColumnsMinus1+1, 1, 1)
	return cols
}

// RowHeights returns the per-row CTB heights, computing the uniform
// derivation if uniform_spacing_flag was set.
func (p *PPS) RowHeights(picHeightInCtbsY uint32) []uint32 {
	if !p.UniformSpacingFlag {
		heights := make([]uint32, 0, p.NumTileRowsMinus1+1)
		sum := uint32(0)
		for _, h := range p.RowHeightMinus1 {
			heights = append(heights, h+1)
			sum += h + 1
		}
		heights = append(heights, picHeightInCtbsY-sum)
		return heights
	}
	_, rows := UniformTileSizes(1, 1, picHeightInCtbsY, p.NumTileRowsMinus1+1)
	return rows
}

// WritePPS emits a pic_parameter_set_rbsp() for p.
func WritePPS(p *PPS) []byte {
	bw := bits.NewBitWriter()

	bw.PutUE(uint64(p.ID))
	bw.PutUE(uint64(p.SeqParameterSetID))
	bw.PutFlag(p.DependentSliceSegmentsEnabledFlag)
	bw.PutFlag(p.OutputFlagPresentFlag)
	bw.PutBits(3, uint64(p.NumExtraSliceHeaderBits))
	bw.PutFlag(p.SignDataHidingEnabledFlag)
	bw.PutFlag(p.CabacInitPresentFlag)
	bw.PutUE(uint64(p.NumRefIdxL0DefaultActiveMinus1))
	bw.PutUE(uint64(p.NumRefIdxL1DefaultActiveMinus1))
	bw.PutSE(int64(p.InitQPMinus26))
	bw.PutFlag(p.ConstrainedIntraPredFlag)
	bw.PutFlag(p.TransformSkipEnabledFlag)
	bw.PutFlag(p.CuQpDeltaEnabledFlag)
	if p.CuQpDeltaEnabledFlag {
		bw.PutUE(uint64(p.DiffCuQpDeltaDepth))
	}
	bw.PutSE(int64(p.PPSCbQpOffset))
	bw.PutSE(int64(p.PPSCrQpOffset))
	bw.PutFlag(p.PPSSliceChromaQpOffsetsPresentFlag)
	bw.PutFlag(p.WeightedPredFlag)
	bw.PutFlag(p.WeightedBipredFlag)
	bw.PutFlag(p.TransquantBypassEnabledFlag)
	bw.PutFlag(p.TilesEnabledFlag)
	bw.PutFlag(p.EntropyCodingSyncEnabledFlag)

	if p.TilesEnabledFlag {
		bw.PutUE(uint64(p.NumTileColumnsMinus1))
		bw.PutUE(uint64(p.NumTileRowsMinus1))
		bw.PutFlag(p.UniformSpacingFlag)
		if !p.UniformSpacingFlag {
			for _, w := range p.ColumnWidthMinus1 {
				bw.PutUE(uint64(w))
			}
			for _, h := range p.RowHeightMinus1 {
				bw.PutUE(uint64(h))
			}
		}
		bw.PutFlag(p.LoopFilterAcrossTilesEnabledFlag)
	}
	bw.PutFlag(p.PPSLoopFilterAcrossSlicesEnabledFlag)
	bw.PutFlag(p.DeblockingFilterControlPresentFlag)
	if p.DeblockingFilterControlPresentFlag {
		bw.PutFlag(p.DeblockingFilterOverrideEnabledFlag)
		bw.PutFlag(p.PPSDeblockingFilterDisabledFlag)
		if !p.PPSDeblockingFilterDisabledFlag {
			bw.PutSE(int64(p.PPSBetaOffsetDiv2))
			bw.PutSE(int64(p.PPSTcOffsetDiv2))
		}
	}

	bw.PutFlag(p.PPSScalingListDataPresentFlag)
	if p.PPSScalingListDataPresentFlag {
		writeScalingListData(bw, p.ScalingList)
	}

	bw.PutFlag(p.ListsModificationPresentFlag)
	bw.PutUE(uint64(p.Log2ParallelMergeLevelMinus2))
	bw.PutFlag(p.SliceSegmentHeaderExtensionPresentFlag)
	bw.PutFlag(p.ExtensionPresentFlag)

	bw.RBSPTrailingBits()
	return bw.Bytes()
}
