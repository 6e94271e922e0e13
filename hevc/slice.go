/*
DESCRIPTION
  slice.go parses and writes slice_segment_header(), 7.3.6.1. A dependent
  slice segment re-uses almost all of the preceding independent segment's
  header: rather than re-deriving which fields repeat, the header is split
  into a small leading part that every segment reads fresh and a body that a
  dependent segment copies outright from the segment before it.

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
	"github.com/ausocean/hevc/nal"
)

const maxNumLongTermPics = 32

// SliceHeaderBody holds the fields of slice_segment_header() that a
// dependent slice segment inherits wholesale from the independent segment
// that precedes it in the same picture, rather than re-parsing.
type SliceHeaderBody struct {
	SliceType    uint32
	PicOutputFlag bool
	ColourPlaneID uint8

	SlicePicOrderCntLsb       uint32
	ShortTermRefPicSetSPSFlag bool
	ShortTermRefPicSetIdx     uint32
	RPS                       *ShortTermRPS
	CurrRpsIdx                int
	InlineRPSBitLength        int // bits spanned by an inline st_ref_pic_set(); 0 when ShortTermRefPicSetSPSFlag

	NumLongTermSPS         uint32
	NumLongTermPics        uint32
	PocLsbLT               [maxNumLongTermPics]uint32
	UsedByCurrPicLT        [maxNumLongTermPics]bool
	DeltaPocMsbPresentFlag [maxNumLongTermPics]bool
	DeltaPocMsbCycleLT     [maxNumLongTermPics]uint32

	SliceTemporalMvpEnabledFlag bool
	SliceSaoLumaFlag            bool
	SliceSaoChromaFlag          bool

	NumRefIdxActiveOverrideFlag bool
	NumRefIdxL0ActiveMinus1     uint32
	NumRefIdxL1ActiveMinus1     uint32

	NumPicTotalCurr         int
	RefPicListsModification *RefPicListsModification

	MvdL1ZeroFlag        bool
	CabacInitFlag        bool
	CollocatedFromL0Flag bool
	CollocatedRefIdx     uint32

	PredWeightTable *PredWeightTable

	FiveMinusMaxNumMergeCand uint32

	SliceQpDelta    int32
	SliceCbQpOffset int32
	SliceCrQpOffset int32

	SliceDeblockingFilterDisabledFlag      bool
	SliceBetaOffsetDiv2                    int32
	SliceTcOffsetDiv2                      int32
	SliceLoopFilterAcrossSlicesEnabledFlag bool
}

// SliceHeader is a parsed slice_segment_header(). FirstSliceSegmentInPicFlag
// through SliceSegmentAddress are read fresh for every segment; Body is
// either parsed fresh (an independent segment) or copied from the prior
// segment's Body (a dependent segment).
type SliceHeader struct {
	NALUnitType int
	LayerID     int

	FirstSliceSegmentInPicFlag bool
	NoOutputOfPriorPicsFlag    bool
	PPSID                      uint8
	DependentSliceSegmentFlag  bool
	SliceSegmentAddress        uint32

	Body SliceHeaderBody
}

func (s *SliceHeader) irapPic() bool {
	return s.NALUnitType >= nal.TypeBLAWLP && s.NALUnitType <= 23
}

// IsBSlice, IsPSlice and IsISlice classify Body.SliceType per Table 7-7.
func (s *SliceHeader) IsBSlice() bool { return s.Body.SliceType == 0 }
func (s *SliceHeader) IsPSlice() bool { return s.Body.SliceType == 1 }
func (s *SliceHeader) IsISlice() bool { return s.Body.SliceType == 2 }

// ParseSliceHeader parses a slice_segment_header() from rbsp. getPPS
// resolves the PPS a slice references by id, once that id is known from
// the bitstream itself; getSPS resolves a PPS's SPS the same way. prior is
// the most recently parsed slice header for the same picture, or nil at
// the start of a picture; it is required when dependent_slice_segment_flag
// is set, since the body is copied from it rather than parsed.
func ParseSliceHeader(rbsp []byte, nalUnitType, layerID int, getPPS func(id uint8) (*PPS, bool), getSPS func(id uint8) (*SPS, bool), prior *SliceHeader) (*SliceHeader, error) {
	// rbsp has already had emulation-prevention bytes stripped by nal.Split;
	// stripping again here would corrupt a legitimate 00 00 03 sequence in
	// the decoded payload.
	br := bits.NewBitReader(bytes.NewReader(rbsp))
	r := newFieldReader(br)

	sh := &SliceHeader{NALUnitType: nalUnitType, LayerID: layerID}

	sh.FirstSliceSegmentInPicFlag = r.flag()
	if sh.irapPic() {
		sh.NoOutputOfPriorPicsFlag = r.flag()
	}
	ppsID := r.ue()
	if err := r.err(); err != nil {
		return nil, invalid("slice header leading fields", err)
	}
	sh.PPSID = uint8(ppsID)

	pps, ok := getPPS(sh.PPSID)
	if !ok {
		return nil, missingParamSet("pps")
	}
	sps, ok := getSPS(pps.SeqParameterSetID)
	if !ok {
		return nil, missingParamSet("sps")
	}

	if !sh.FirstSliceSegmentInPicFlag {
		if pps.DependentSliceSegmentsEnabledFlag {
			sh.DependentSliceSegmentFlag = r.flag()
		}
		sh.SliceSegmentAddress = uint32(r.u(bitLen(uint64(sps.PicWidthInCtbsY()*sps.PicHeightInCtbsY() - 1))))
		if err := r.err(); err != nil {
			return nil, invalid("slice_segment_address", err)
		}
	}

	if sh.DependentSliceSegmentFlag {
		if prior == nil {
			return nil, invalid("dependent slice segment without prior segment", nil)
		}
		sh.Body = prior.Body
		return sh, nil
	}

	if err := parseSliceHeaderBody(r, sh, pps, sps); err != nil {
		return nil, err
	}

	// Tile/WPP entry point offsets: the values only matter to a decoder
	// locating substream boundaries, which is outside this package's scope,
	// so they are consumed but not retained.
	if pps.TilesEnabledFlag || pps.EntropyCodingSyncEnabledFlag {
		numEntryPointOffsets := r.ue()
		if numEntryPointOffsets > 0 {
			offsetLenMinus1 := r.ue()
			r.skip(int(numEntryPointOffsets) * (int(offsetLenMinus1) + 1))
		}
	}
	if pps.SliceSegmentHeaderExtensionPresentFlag {
		length := r.ue()
		r.skip(int(length) * 8)
	}
	if err := r.err(); err != nil {
		return nil, invalid("slice header trailer", err)
	}

	return sh, nil
}

// parseSliceHeaderBody parses the independent-segment fields of
// slice_segment_header() into sh.Body.
func parseSliceHeaderBody(r *fieldReader, sh *SliceHeader, pps *PPS, sps *SPS) error {
	b := &sh.Body

	b.PicOutputFlag = true
	b.NumRefIdxL0ActiveMinus1 = pps.NumRefIdxL0DefaultActiveMinus1
	b.NumRefIdxL1ActiveMinus1 = pps.NumRefIdxL1DefaultActiveMinus1
	b.CollocatedFromL0Flag = true
	b.SliceDeblockingFilterDisabledFlag = pps.PPSDeblockingFilterDisabledFlag
	b.SliceBetaOffsetDiv2 = pps.PPSBetaOffsetDiv2
	b.SliceTcOffsetDiv2 = pps.PPSTcOffsetDiv2
	b.SliceLoopFilterAcrossSlicesEnabledFlag = pps.PPSLoopFilterAcrossSlicesEnabledFlag
	b.CurrRpsIdx = sps.NumShortTermRefPicSets

	r.skip(int(pps.NumExtraSliceHeaderBits))
	b.SliceType = uint32(r.ue())
	if err := r.err(); err != nil {
		return invalid("slice_type", err)
	}
	if sh.irapPic() && sh.LayerID == 0 && !sh.IsISlice() {
		return invalid("IRAP picture must be an I slice", nil)
	}

	if pps.OutputFlagPresentFlag {
		b.PicOutputFlag = r.flag()
	}
	if sps.SeparateColourPlaneFlag {
		b.ColourPlaneID = uint8(r.u(2))
	}

	if sh.NALUnitType != nal.TypeIDRWRADL && sh.NALUnitType != nal.TypeIDRNLP {
		b.SlicePicOrderCntLsb = uint32(r.u(int(sps.Log2MaxPicOrderCntLsbMinus4 + 4)))
		b.ShortTermRefPicSetSPSFlag = r.flag()
		if err := r.err(); err != nil {
			return invalid("slice poc/st-rps flags", err)
		}
		if !b.ShortTermRefPicSetSPSFlag {
			start := r.bitPos()
			rps, err := parseShortTermRPS(r, sps.NumShortTermRefPicSets, sps.NumShortTermRefPicSets, sps.ShortTermRPS[:])
			if err != nil {
				return err
			}
			b.RPS = rps
			b.InlineRPSBitLength = r.bitPos() - start
		} else {
			if sps.NumShortTermRefPicSets > 1 {
				b.ShortTermRefPicSetIdx = uint32(r.u(bitLen(uint64(sps.NumShortTermRefPicSets - 1))))
			}
			if err := r.err(); err != nil {
				return invalid("short_term_ref_pic_set_idx", err)
			}
			b.CurrRpsIdx = int(b.ShortTermRefPicSetIdx)
			b.RPS = sps.ShortTermRPS[b.ShortTermRefPicSetIdx]
		}

		if sps.LongTermRefPicsPresentFlag {
			if sps.NumLongTermRefPicsSPS > 0 {
				b.NumLongTermSPS = uint32(r.ue())
			}
			b.NumLongTermPics = uint32(r.ue())
			if err := r.err(); err != nil {
				return invalid("long-term ref pic counts", err)
			}
			total := int(b.NumLongTermSPS + b.NumLongTermPics)
			for i := 0; i < total && i < maxNumLongTermPics; i++ {
				if i < int(b.NumLongTermSPS) {
					ltIdxSPS := 0
					if sps.NumLongTermRefPicsSPS > 1 {
						ltIdxSPS = int(r.u(bitLen(uint64(sps.NumLongTermRefPicsSPS - 1))))
					}
					b.PocLsbLT[i] = sps.LtRefPicPocLsbSPS[ltIdxSPS]
					b.UsedByCurrPicLT[i] = sps.UsedByCurrPicLtSPSFlag[ltIdxSPS]
				} else {
					b.PocLsbLT[i] = uint32(r.u(int(sps.Log2MaxPicOrderCntLsbMinus4 + 4)))
					b.UsedByCurrPicLT[i] = r.flag()
				}
				b.DeltaPocMsbPresentFlag[i] = r.flag()
				if b.DeltaPocMsbPresentFlag[i] {
					b.DeltaPocMsbCycleLT[i] = uint32(r.ue())
					if i != 0 && i != int(b.NumLongTermSPS) {
						b.DeltaPocMsbCycleLT[i] += b.DeltaPocMsbCycleLT[i-1]
					}
				}
			}
			if err := r.err(); err != nil {
				return invalid("long-term ref pic entries", err)
			}
		}
		if sps.SPSTemporalMvpEnabledFlag {
			b.SliceTemporalMvpEnabledFlag = r.flag()
		}
	}

	if sps.SampleAdaptiveOffsetEnabledFlag {
		b.SliceSaoLumaFlag = r.flag()
		if sps.ChromaArrayType() != 0 {
			b.SliceSaoChromaFlag = r.flag()
		}
	}
	if err := r.err(); err != nil {
		return invalid("slice sao flags", err)
	}

	if sh.IsPSlice() || sh.IsBSlice() {
		b.NumRefIdxActiveOverrideFlag = r.flag()
		if b.NumRefIdxActiveOverrideFlag {
			b.NumRefIdxL0ActiveMinus1 = uint32(r.ue())
			if sh.IsBSlice() {
				b.NumRefIdxL1ActiveMinus1 = uint32(r.ue())
			}
		}
		if err := r.err(); err != nil {
			return invalid("num_ref_idx overrides", err)
		}

		b.NumPicTotalCurr = numPicTotalCurr(b)
		if pps.ListsModificationPresentFlag && b.NumPicTotalCurr > 1 {
			m, err := parseRefPicListsModification(r, b.NumPicTotalCurr, int(b.NumRefIdxL0ActiveMinus1), int(b.NumRefIdxL1ActiveMinus1), sh.IsBSlice())
			if err != nil {
				return err
			}
			b.RefPicListsModification = m
		}
		if sh.IsBSlice() {
			b.MvdL1ZeroFlag = r.flag()
		}
		if pps.CabacInitPresentFlag {
			b.CabacInitFlag = r.flag()
		}
		if b.SliceTemporalMvpEnabledFlag {
			if sh.IsBSlice() {
				b.CollocatedFromL0Flag = r.flag()
			}
			if (b.CollocatedFromL0Flag && b.NumRefIdxL0ActiveMinus1 > 0) || (!b.CollocatedFromL0Flag && b.NumRefIdxL1ActiveMinus1 > 0) {
				b.CollocatedRefIdx = uint32(r.ue())
			}
		}
		if err := r.err(); err != nil {
			return invalid("slice ref list fields", err)
		}

		if (pps.WeightedPredFlag && sh.IsPSlice()) || (pps.WeightedBipredFlag && sh.IsBSlice()) {
			wt, err := parsePredWeightTable(r, sps.ChromaArrayType(), int(b.NumRefIdxL0ActiveMinus1), int(b.NumRefIdxL1ActiveMinus1), sh.IsBSlice())
			if err != nil {
				return err
			}
			b.PredWeightTable = wt
		}
		b.FiveMinusMaxNumMergeCand = uint32(r.ue())
		if err := r.err(); err != nil {
			return invalid("five_minus_max_num_merge_cand", err)
		}
	}

	b.SliceQpDelta = int32(r.se())
	if pps.PPSSliceChromaQpOffsetsPresentFlag {
		b.SliceCbQpOffset = int32(r.se())
		b.SliceCrQpOffset = int32(r.se())
	}
	if err := r.err(); err != nil {
		return invalid("slice qp fields", err)
	}

	deblockingOverride := false
	if pps.DeblockingFilterOverrideEnabledFlag {
		deblockingOverride = r.flag()
	}
	if deblockingOverride {
		b.SliceDeblockingFilterDisabledFlag = r.flag()
		if !b.SliceDeblockingFilterDisabledFlag {
			b.SliceBetaOffsetDiv2 = int32(r.se())
			b.SliceTcOffsetDiv2 = int32(r.se())
		}
	}
	if pps.PPSLoopFilterAcrossSlicesEnabledFlag && (b.SliceSaoLumaFlag || b.SliceSaoChromaFlag || !b.SliceDeblockingFilterDisabledFlag) {
		b.SliceLoopFilterAcrossSlicesEnabledFlag = r.flag()
	}
	if err := r.err(); err != nil {
		return invalid("slice deblocking fields", err)
	}
	return nil
}

// numPicTotalCurr derives NumPicTotalCurr (7.4.7.2) from the reference
// picture sets already resolved into b.
func numPicTotalCurr(b *SliceHeaderBody) int {
	n := 0
	if b.RPS != nil {
		for i := 0; i < b.RPS.NumNegativePics; i++ {
			if b.RPS.UsedByCurrPicS0[i] {
				n++
			}
		}
		for i := 0; i < b.RPS.NumPositivePics; i++ {
			if b.RPS.UsedByCurrPicS1[i] {
				n++
			}
		}
	}
	total := int(b.NumLongTermSPS + b.NumLongTermPics)
	for i := 0; i < total && i < maxNumLongTermPics; i++ {
		if b.UsedByCurrPicLT[i] {
			n++
		}
	}
	return n
}

// WriteSliceHeader emits a slice_segment_header() for sh. When sh is a
// dependent slice segment, only the leading fields are written; the body
// is assumed identical to the independent segment it follows, matching
// ParseSliceHeader's inheritance.
func WriteSliceHeader(sh *SliceHeader, pps *PPS, sps *SPS) []byte {
	bw := bits.NewBitWriter()

	bw.PutFlag(sh.FirstSliceSegmentInPicFlag)
	if sh.irapPic() {
		bw.PutFlag(sh.NoOutputOfPriorPicsFlag)
	}
	bw.PutUE(uint64(sh.PPSID))

	if !sh.FirstSliceSegmentInPicFlag {
		if pps.DependentSliceSegmentsEnabledFlag {
			bw.PutFlag(sh.DependentSliceSegmentFlag)
		}
		bw.PutBits(bitLen(uint64(sps.PicWidthInCtbsY()*sps.PicHeightInCtbsY()-1)), uint64(sh.SliceSegmentAddress))
	}

	if sh.DependentSliceSegmentFlag {
		bw.RBSPTrailingBits()
		return bw.Bytes()
	}

	b := &sh.Body
	bw.PutBits(int(pps.NumExtraSliceHeaderBits), 0)
	bw.PutUE(uint64(b.SliceType))
	if pps.OutputFlagPresentFlag {
		bw.PutFlag(b.PicOutputFlag)
	}
	if sps.SeparateColourPlaneFlag {
		bw.PutBits(2, uint64(b.ColourPlaneID))
	}

	if sh.NALUnitType != nal.TypeIDRWRADL && sh.NALUnitType != nal.TypeIDRNLP {
		bw.PutBits(int(sps.Log2MaxPicOrderCntLsbMinus4+4), uint64(b.SlicePicOrderCntLsb))
		bw.PutFlag(b.ShortTermRefPicSetSPSFlag)
		if !b.ShortTermRefPicSetSPSFlag {
			writeShortTermRPS(bw, b.RPS, sps.NumShortTermRefPicSets)
		} else if sps.NumShortTermRefPicSets > 1 {
			bw.PutBits(bitLen(uint64(sps.NumShortTermRefPicSets-1)), uint64(b.ShortTermRefPicSetIdx))
		}

		if sps.LongTermRefPicsPresentFlag {
			if sps.NumLongTermRefPicsSPS > 0 {
				bw.PutUE(uint64(b.NumLongTermSPS))
			}
			bw.PutUE(uint64(b.NumLongTermPics))
			total := int(b.NumLongTermSPS + b.NumLongTermPics)
			for i := 0; i < total && i < maxNumLongTermPics; i++ {
				if i >= int(b.NumLongTermSPS) {
					bw.PutBits(int(sps.Log2MaxPicOrderCntLsbMinus4+4), uint64(b.PocLsbLT[i]))
					bw.PutFlag(b.UsedByCurrPicLT[i])
				} else if sps.NumLongTermRefPicsSPS > 1 {
					bw.PutBits(bitLen(uint64(sps.NumLongTermRefPicsSPS-1)), 0)
				}
				bw.PutFlag(b.DeltaPocMsbPresentFlag[i])
				if b.DeltaPocMsbPresentFlag[i] {
					bw.PutUE(uint64(b.DeltaPocMsbCycleLT[i]))
				}
			}
		}
		if sps.SPSTemporalMvpEnabledFlag {
			bw.PutFlag(b.SliceTemporalMvpEnabledFlag)
		}
	}

	if sps.SampleAdaptiveOffsetEnabledFlag {
		bw.PutFlag(b.SliceSaoLumaFlag)
		if sps.ChromaArrayType() != 0 {
			bw.PutFlag(b.SliceSaoChromaFlag)
		}
	}

	if sh.IsPSlice() || sh.IsBSlice() {
		bw.PutFlag(b.NumRefIdxActiveOverrideFlag)
		if b.NumRefIdxActiveOverrideFlag {
			bw.PutUE(uint64(b.NumRefIdxL0ActiveMinus1))
			if sh.IsBSlice() {
				bw.PutUE(uint64(b.NumRefIdxL1ActiveMinus1))
			}
		}
		if pps.ListsModificationPresentFlag && b.NumPicTotalCurr > 1 {
			writeRefPicListsModification(bw, b.RefPicListsModification, b.NumPicTotalCurr, sh.IsBSlice())
		}
		if sh.IsBSlice() {
			bw.PutFlag(b.MvdL1ZeroFlag)
		}
		if pps.CabacInitPresentFlag {
			bw.PutFlag(b.CabacInitFlag)
		}
		if b.SliceTemporalMvpEnabledFlag {
			if sh.IsBSlice() {
				bw.PutFlag(b.CollocatedFromL0Flag)
			}
			if (b.CollocatedFromL0Flag && b.NumRefIdxL0ActiveMinus1 > 0) || (!b.CollocatedFromL0Flag && b.NumRefIdxL1ActiveMinus1 > 0) {
				bw.PutUE(uint64(b.CollocatedRefIdx))
			}
		}
		if (pps.WeightedPredFlag && sh.IsPSlice()) || (pps.WeightedBipredFlag && sh.IsBSlice()) {
			writePredWeightTable(bw, b.PredWeightTable, sps.ChromaArrayType(), int(b.NumRefIdxL0ActiveMinus1), int(b.NumRefIdxL1ActiveMinus1), sh.IsBSlice())
		}
		bw.PutUE(uint64(b.FiveMinusMaxNumMergeCand))
	}

	bw.PutSE(int64(b.SliceQpDelta))
	if pps.PPSSliceChromaQpOffsetsPresentFlag {
		bw.PutSE(int64(b.SliceCbQpOffset))
		bw.PutSE(int64(b.SliceCrQpOffset))
	}

	deblockingOverride := b.SliceDeblockingFilterDisabledFlag != pps.PPSDeblockingFilterDisabledFlag ||
		b.SliceBetaOffsetDiv2 != pps.PPSBetaOffsetDiv2 || b.SliceTcOffsetDiv2 != pps.PPSTcOffsetDiv2
	if pps.DeblockingFilterOverrideEnabledFlag {
		bw.PutFlag(deblockingOverride)
	}
	if deblockingOverride {
		bw.PutFlag(b.SliceDeblockingFilterDisabledFlag)
		if !b.SliceDeblockingFilterDisabledFlag {
			bw.PutSE(int64(b.SliceBetaOffsetDiv2))
			bw.PutSE(int64(b.SliceTcOffsetDiv2))
		}
	}
	if pps.PPSLoopFilterAcrossSlicesEnabledFlag && (b.SliceSaoLumaFlag || b.SliceSaoChromaFlag || !b.SliceDeblockingFilterDisabledFlag) {
		bw.PutFlag(b.SliceLoopFilterAcrossSlicesEnabledFlag)
	}

	// Entry point offsets are not reconstructed on write: callers construct
	// single-substream slices, so num_entry_point_offsets is always 0.
	if pps.TilesEnabledFlag || pps.EntropyCodingSyncEnabledFlag {
		bw.PutUE(0)
	}
	if pps.SliceSegmentHeaderExtensionPresentFlag {
		bw.PutUE(0)
	}

	bw.RBSPTrailingBits()
	return bw.Bytes()
}
