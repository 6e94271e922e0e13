/*
DESCRIPTION
  descriptor.go lowers a parsed VPS/SPS/PPS/slice-header quadruple into the
  flattened, hardware-decoder-shaped records a DXVA/VA-API style consumer
  expects: a picture-parameters descriptor and a quantization-matrix
  descriptor. Reference-picture-list slot population and DPB bookkeeping
  are out of scope; the reference index arrays are left in their "absent"
  state (0xFF) for a caller to fill in from its own DPB.

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

const numRefPicListSlots = 15

// PicParams is a flattened picture-parameters descriptor, suitable for
// handing to a hardware decoder that expects a DXVA/VA-API-shaped struct.
type PicParams struct {
	PicWidthInMinCbsY  uint32
	PicHeightInMinCbsY uint32

	ChromaFormatIDC         uint32
	SeparateColourPlaneFlag bool
	BitDepthLumaMinus8      uint32
	BitDepthChromaMinus8    uint32
	Log2MaxPicOrderCntLsbMinus4 uint32
	ScalingListEnabledFlag  bool
	AmpEnabledFlag          bool
	SampleAdaptiveOffsetEnabledFlag bool
	PCMEnabledFlag          bool
	LongTermRefPicsPresentFlag bool
	SPSTemporalMvpEnabledFlag  bool
	StrongIntraSmoothingEnabledFlag bool

	SPSMaxDecPicBufferingMinus1 uint32
	NoPicReorderingFlag         bool

	IRAPPicFlag bool
	IDRPicFlag  bool
	IntraPicFlag bool

	NumRefIdxL0DefaultActiveMinus1 uint32
	NumRefIdxL1DefaultActiveMinus1 uint32
	PPSDeblockingFilterDisabledFlag bool
	PPSBetaOffsetDiv2 int32
	PPSTcOffsetDiv2   int32
	TilesEnabledFlag  bool
	NumTileColumnsMinus1 uint32
	NumTileRowsMinus1    uint32
	PPSCbQpOffset int32
	PPSCrQpOffset int32

	UCNumDeltaPocsOfRefRpsIdx    uint32
	WNumBitsForShortTermRPSInSlice uint32

	CurrPicOrderCntVal int32

	RefPicList0 [numRefPicListSlots]uint8
	RefPicList1 [numRefPicListSlots]uint8
}

// QMatrix is a quantization-matrix descriptor sized for the standard
// 4x4/8x8/16x16/32x32 tiers, the last of which only carries matrices 0
// and 3 per the HEVC scaling-list syntax.
type QMatrix struct {
	ScalingList4x4   [6][16]uint8
	ScalingList8x8   [6][64]uint8
	ScalingList16x16 [6][64]uint8
	ScalingList32x32 [2][64]uint8 // indices correspond to matrix IDs 0 and 3

	DCCoef16x16 [6]uint8
	DCCoef32x32 [2]uint8
}

// LowerPicParams builds the picture-parameters descriptor for a slice
// belonging to the given SPS/PPS.
func LowerPicParams(sps *SPS, pps *PPS, sh *SliceHeader) *PicParams {
	minCbLog2SizeY := sps.Log2MinLumaCodingBlockSizeMinus3 + 3

	pp := &PicParams{
		PicWidthInMinCbsY:  sps.PicWidthInLumaSamples >> minCbLog2SizeY,
		PicHeightInMinCbsY: sps.PicHeightInLumaSamples >> minCbLog2SizeY,

		ChromaFormatIDC:                 sps.ChromaFormatIDC,
		SeparateColourPlaneFlag:         sps.SeparateColourPlaneFlag,
		BitDepthLumaMinus8:              sps.BitDepthLumaMinus8,
		BitDepthChromaMinus8:            sps.BitDepthChromaMinus8,
		Log2MaxPicOrderCntLsbMinus4:     sps.Log2MaxPicOrderCntLsbMinus4,
		ScalingListEnabledFlag:          sps.ScalingListEnabledFlag,
		AmpEnabledFlag:                  sps.AmpEnabledFlag,
		SampleAdaptiveOffsetEnabledFlag: sps.SampleAdaptiveOffsetEnabledFlag,
		PCMEnabledFlag:                  sps.PCMEnabledFlag,
		LongTermRefPicsPresentFlag:      sps.LongTermRefPicsPresentFlag,
		SPSTemporalMvpEnabledFlag:       sps.SPSTemporalMvpEnabledFlag,
		StrongIntraSmoothingEnabledFlag: sps.StrongIntraSmoothingEnabledFlag,

		NumRefIdxL0DefaultActiveMinus1:   pps.NumRefIdxL0DefaultActiveMinus1,
		NumRefIdxL1DefaultActiveMinus1:   pps.NumRefIdxL1DefaultActiveMinus1,
		PPSDeblockingFilterDisabledFlag: pps.PPSDeblockingFilterDisabledFlag,
		PPSBetaOffsetDiv2:               pps.PPSBetaOffsetDiv2,
		PPSTcOffsetDiv2:                 pps.PPSTcOffsetDiv2,
		TilesEnabledFlag:                pps.TilesEnabledFlag,
		NumTileColumnsMinus1:            pps.NumTileColumnsMinus1,
		NumTileRowsMinus1:               pps.NumTileRowsMinus1,
		PPSCbQpOffset:                   pps.PPSCbQpOffset,
		PPSCrQpOffset:                   pps.PPSCrQpOffset,
	}

	top := sps.MaxSubLayersMinus1
	pp.SPSMaxDecPicBufferingMinus1 = sps.MaxDecPicBufferingMinus1[top]
	pp.NoPicReorderingFlag = sps.MaxNumReorderPics[top] == 0

	pp.IRAPPicFlag = sh.irapPic()
	pp.IDRPicFlag = sh.NALUnitType == nal.TypeIDRWRADL || sh.NALUnitType == nal.TypeIDRNLP
	pp.IntraPicFlag = sh.IsISlice()

	if !sh.Body.ShortTermRefPicSetSPSFlag && sh.Body.RPS != nil {
		pp.UCNumDeltaPocsOfRefRpsIdx = uint32(sh.Body.RPS.NumDeltaPocs())
		pp.WNumBitsForShortTermRPSInSlice = uint32(sh.Body.InlineRPSBitLength)
	}
	pp.CurrPicOrderCntVal = int32(sh.Body.SlicePicOrderCntLsb)

	for i := range pp.RefPicList0 {
		pp.RefPicList0[i] = 0xff
	}
	for i := range pp.RefPicList1 {
		pp.RefPicList1[i] = 0xff
	}

	return pp
}

// LowerQMatrix builds the quantization-matrix descriptor from PPS scaling
// list data when present, falling back to the SPS's.
func LowerQMatrix(sps *SPS, pps *PPS) *QMatrix {
	sl := sps.ScalingList
	if pps.PPSScalingListDataPresentFlag {
		sl = pps.ScalingList
	}
	qm := &QMatrix{}
	if sl == nil {
		return qm
	}

	for m := 0; m < 6; m++ {
		copy(qm.ScalingList4x4[m][:], sl.Lists[0][m])
		copy(qm.ScalingList8x8[m][:], sl.Lists[1][m])
		copy(qm.ScalingList16x16[m][:], sl.Lists[2][m])
		qm.DCCoef16x16[m] = sl.DCCoef16x16[m]
	}
	for i, m := range []int{0, 3} {
		copy(qm.ScalingList32x32[i][:], sl.Lists[3][m])
		qm.DCCoef32x32[i] = sl.DCCoef32x32[m]
	}

	return qm
}

// SliceControl is the short per-slice record a hardware decoder needs to
// locate the bitstream bytes for one slice within its input buffer.
type SliceControl struct {
	BSNALUnitDataLocation uint32
	SliceBytesInBuffer    uint32
}

// LowerSliceControl builds the slice-control record for a NAL unit found
// at offset 0 of the decoder's input buffer, given the length of its start
// code and RBSP payload.
func LowerSliceControl(startCodeLen, payloadLen int) SliceControl {
	return SliceControl{
		BSNALUnitDataLocation: 0,
		SliceBytesInBuffer:    uint32(startCodeLen + payloadLen),
	}
}
