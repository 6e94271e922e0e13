/*
DESCRIPTION
  sps.go parses and writes the seq_parameter_set_rbsp() syntax structure.

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

const maxShortTermRefPicSets = 66
const maxLongTermRefPicsSPS = 32

// SPS is a parsed seq_parameter_set_rbsp(), 7.3.2.2.
type SPS struct {
	VideoParameterSetID uint8
	MaxSubLayersMinus1  uint8
	TemporalIDNestingFlag bool

	PTL *ProfileTierLevel

	ID uint8 // sps_seq_parameter_set_id

	ChromaFormatIDC         uint32
	SeparateColourPlaneFlag bool
	PicWidthInLumaSamples   uint32
	PicHeightInLumaSamples  uint32

	ConformanceWindowFlag bool
	ConfWinLeftOffset     uint32
	ConfWinRightOffset    uint32
	ConfWinTopOffset      uint32
	ConfWinBottomOffset   uint32

	BitDepthLumaMinus8   uint32
	BitDepthChromaMinus8 uint32

	Log2MaxPicOrderCntLsbMinus4 uint32

	SubLayerOrderingInfoPresentFlag bool
	MaxDecPicBufferingMinus1        [maxSubLayers]uint32
	MaxNumReorderPics                [maxSubLayers]uint32
	MaxLatencyIncreasePlus1          [maxSubLayers]uint32

	Log2MinLumaCodingBlockSizeMinus3   uint32
	Log2DiffMaxMinLumaCodingBlockSize  uint32
	Log2MinLumaTransformBlockSizeMinus2 uint32
	Log2DiffMaxMinLumaTransformBlockSize uint32
	MaxTransformHierarchyDepthInter    uint32
	MaxTransformHierarchyDepthIntra    uint32

	ScalingListEnabledFlag          bool
	SPSScalingListDataPresentFlag   bool
	ScalingList                     *ScalingListData

	AmpEnabledFlag                bool
	SampleAdaptiveOffsetEnabledFlag bool

	PCMEnabledFlag                  bool
	PCMSampleBitDepthLumaMinus1      uint8
	PCMSampleBitDepthChromaMinus1    uint8
	Log2MinPCMLumaCodingBlockSizeMinus3 uint32
	Log2DiffMaxMinPCMLumaCodingBlockSize uint32
	PCMLoopFilterDisabledFlag        bool

	NumShortTermRefPicSets int
	ShortTermRPS           [maxShortTermRefPicSets]*ShortTermRPS

	LongTermRefPicsPresentFlag bool
	NumLongTermRefPicsSPS      int
	LtRefPicPocLsbSPS          [maxLongTermRefPicsSPS]uint32
	UsedByCurrPicLtSPSFlag     [maxLongTermRefPicsSPS]bool

	SPSTemporalMvpEnabledFlag          bool
	StrongIntraSmoothingEnabledFlag    bool

	VUIParametersPresentFlag bool
	VUI                      *VUIParameters

	ExtensionPresentFlag bool
}

// CtbLog2SizeY returns this SPS's CTB size exponent.
func (s *SPS) CtbLog2SizeY() uint32 {
	return CtbLog2SizeY(s.Log2MinLumaCodingBlockSizeMinus3, s.Log2DiffMaxMinLumaCodingBlockSize)
}

// PicWidthInCtbsY returns the picture width in whole CTBs.
func (s *SPS) PicWidthInCtbsY() uint32 {
	return PicWidthInCtbsY(s.PicWidthInLumaSamples, s.CtbLog2SizeY())
}

// PicHeightInCtbsY returns the picture height in whole CTBs.
func (s *SPS) PicHeightInCtbsY() uint32 {
	return PicHeightInCtbsY(s.PicHeightInLumaSamples, s.CtbLog2SizeY())
}

// ChromaArrayType returns the derived ChromaArrayType for this SPS.
func (s *SPS) ChromaArrayType() uint32 {
	return ChromaArrayType(s.ChromaFormatIDC, s.SeparateColourPlaneFlag)
}

// ParseSPS parses a seq_parameter_set_rbsp() from rbsp.
func ParseSPS(rbsp []byte) (*SPS, error) {
	// rbsp has already had emulation-prevention bytes stripped by nal.Split;
	// stripping again here would corrupt a legitimate 00 00 03 sequence in
	// the decoded payload.
	br := bits.NewBitReader(bytes.NewReader(rbsp))
	r := newFieldReader(br)

	s := &SPS{}
	s.VideoParameterSetID = uint8(r.u(4))
	s.MaxSubLayersMinus1 = uint8(r.u(3))
	s.TemporalIDNestingFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("sps header", err)
	}

	ptl, err := parseProfileTierLevel(r, int(s.MaxSubLayersMinus1))
	if err != nil {
		return nil, err
	}
	s.PTL = ptl

	id := r.ue()
	if err := r.err(); err != nil {
		return nil, invalid("sps_seq_parameter_set_id", err)
	}
	if id > 15 {
		return nil, invalid("sps_seq_parameter_set_id out of range", nil)
	}
	s.ID = uint8(id)
	s.ChromaFormatIDC = uint32(r.ue())
	if s.ChromaFormatIDC == 3 {
		s.SeparateColourPlaneFlag = r.flag()
	}
	s.PicWidthInLumaSamples = uint32(r.ue())
	s.PicHeightInLumaSamples = uint32(r.ue())
	s.ConformanceWindowFlag = r.flag()
	if s.ConformanceWindowFlag {
		s.ConfWinLeftOffset = uint32(r.ue())
		s.ConfWinRightOffset = uint32(r.ue())
		s.ConfWinTopOffset = uint32(r.ue())
		s.ConfWinBottomOffset = uint32(r.ue())
	}
	s.BitDepthLumaMinus8 = uint32(r.ue())
	s.BitDepthChromaMinus8 = uint32(r.ue())
	s.Log2MaxPicOrderCntLsbMinus4 = uint32(r.ue())
	if err := r.err(); err != nil {
		return nil, invalid("sps picture format", err)
	}

	s.SubLayerOrderingInfoPresentFlag = r.flag()
	from := uint8(0)
	if !s.SubLayerOrderingInfoPresentFlag {
		from = s.MaxSubLayersMinus1
	}
	for i := from; i <= s.MaxSubLayersMinus1; i++ {
		s.MaxDecPicBufferingMinus1[i] = uint32(r.ue())
		s.MaxNumReorderPics[i] = uint32(r.ue())
		s.MaxLatencyIncreasePlus1[i] = uint32(r.ue())
	}
	if !s.SubLayerOrderingInfoPresentFlag {
		for i := 0; i < int(s.MaxSubLayersMinus1); i++ {
			s.MaxDecPicBufferingMinus1[i] = s.MaxDecPicBufferingMinus1[s.MaxSubLayersMinus1]
			s.MaxNumReorderPics[i] = s.MaxNumReorderPics[s.MaxSubLayersMinus1]
			s.MaxLatencyIncreasePlus1[i] = s.MaxLatencyIncreasePlus1[s.MaxSubLayersMinus1]
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("sps sub layer ordering info", err)
	}

	s.Log2MinLumaCodingBlockSizeMinus3 = uint32(r.ue())
	s.Log2DiffMaxMinLumaCodingBlockSize = uint32(r.ue())
	s.Log2MinLumaTransformBlockSizeMinus2 = uint32(r.ue())
	s.Log2DiffMaxMinLumaTransformBlockSize = uint32(r.ue())
	s.MaxTransformHierarchyDepthInter = uint32(r.ue())
	s.MaxTransformHierarchyDepthIntra = uint32(r.ue())
	if err := r.err(); err != nil {
		return nil, invalid("sps coding block sizes", err)
	}

	s.ScalingListEnabledFlag = r.flag()
	if s.ScalingListEnabledFlag {
		s.SPSScalingListDataPresentFlag = r.flag()
		if err := r.err(); err != nil {
			return nil, invalid("sps_scaling_list_data_present_flag", err)
		}
		if s.SPSScalingListDataPresentFlag {
			sl, err := parseScalingListData(r)
			if err != nil {
				return nil, err
			}
			s.ScalingList = sl
		}
	}

	s.AmpEnabledFlag = r.flag()
	s.SampleAdaptiveOffsetEnabledFlag = r.flag()
	s.PCMEnabledFlag = r.flag()
	if s.PCMEnabledFlag {
		s.PCMSampleBitDepthLumaMinus1 = uint8(r.u(4))
		s.PCMSampleBitDepthChromaMinus1 = uint8(r.u(4))
		s.Log2MinPCMLumaCodingBlockSizeMinus3 = uint32(r.ue())
		s.Log2DiffMaxMinPCMLumaCodingBlockSize = uint32(r.ue())
		s.PCMLoopFilterDisabledFlag = r.flag()
	}
	if err := r.err(); err != nil {
		return nil, invalid("sps pcm parameters", err)
	}

	s.NumShortTermRefPicSets = int(r.ue())
	if err := r.err(); err != nil {
		return nil, invalid("num_short_term_ref_pic_sets", err)
	}
	if s.NumShortTermRefPicSets > maxShortTermRefPicSets {
		return nil, invalid("num_short_term_ref_pic_sets", nil)
	}
	for i := 0; i < s.NumShortTermRefPicSets; i++ {
		rps, err := parseShortTermRPS(r, i, s.NumShortTermRefPicSets, sliceRPS(s.ShortTermRPS[:]))
		if err != nil {
			return nil, err
		}
		s.ShortTermRPS[i] = rps
	}

	s.LongTermRefPicsPresentFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("long_term_ref_pics_present_flag", err)
	}
	if s.LongTermRefPicsPresentFlag {
		s.NumLongTermRefPicsSPS = int(r.ue())
		if s.NumLongTermRefPicsSPS > maxLongTermRefPicsSPS {
			return nil, invalid("num_long_term_ref_pics_sps", nil)
		}
		for i := 0; i < s.NumLongTermRefPicsSPS; i++ {
			s.LtRefPicPocLsbSPS[i] = uint32(r.u(int(s.Log2MaxPicOrderCntLsbMinus4 + 4)))
			s.UsedByCurrPicLtSPSFlag[i] = r.flag()
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("sps long term ref pics", err)
	}

	s.SPSTemporalMvpEnabledFlag = r.flag()
	s.StrongIntraSmoothingEnabledFlag = r.flag()
	s.VUIParametersPresentFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("sps trailing flags", err)
	}
	if s.VUIParametersPresentFlag {
		vui, err := parseVUIParameters(r, int(s.MaxSubLayersMinus1))
		if err != nil {
			return nil, err
		}
		s.VUI = vui
	}

	s.ExtensionPresentFlag = r.flag()
	if err := r.err(); err != nil {
		return nil, invalid("sps_extension_present_flag", err)
	}
	if s.ExtensionPresentFlag {
		return nil, unsupported("sps_extension_data")
	}

	return s, nil
}

// sliceRPS returns sets unchanged, for use as the prediction-reference pool
// while parsing later entries; entries not yet parsed are still nil.
func sliceRPS(sets []*ShortTermRPS) []*ShortTermRPS { return sets }

// WriteSPS emits a seq_parameter_set_rbsp() for s.
func WriteSPS(s *SPS) []byte {
	bw := bits.NewBitWriter()

	bw.PutBits(4, uint64(s.VideoParameterSetID))
	bw.PutBits(3, uint64(s.MaxSubLayersMinus1))
	bw.PutFlag(s.TemporalIDNestingFlag)

	writeProfileTierLevel(bw, s.PTL, int(s.MaxSubLayersMinus1))

	bw.PutUE(uint64(s.ID))
	bw.PutUE(uint64(s.ChromaFormatIDC))
	if s.ChromaFormatIDC == 3 {
		bw.PutFlag(s.SeparateColourPlaneFlag)
	}
	bw.PutUE(uint64(s.PicWidthInLumaSamples))
	bw.PutUE(uint64(s.PicHeightInLumaSamples))
	bw.PutFlag(s.ConformanceWindowFlag)
	if s.ConformanceWindowFlag {
		bw.PutUE(uint64(s.ConfWinLeftOffset))
		bw.PutUE(uint64(s.ConfWinRightOffset))
		bw.PutUE(uint64(s.ConfWinTopOffset))
		bw.PutUE(uint64(s.ConfWinBottomOffset))
	}
	bw.PutUE(uint64(s.BitDepthLumaMinus8))
	bw.PutUE(uint64(s.BitDepthChromaMinus8))
	bw.PutUE(uint64(s.Log2MaxPicOrderCntLsbMinus4))

	bw.PutFlag(s.SubLayerOrderingInfoPresentFlag)
	from := uint8(0)
	if !s.SubLayerOrderingInfoPresentFlag {
		from = s.MaxSubLayersMinus1
	}
	for i := from; i <= s.MaxSubLayersMinus1; i++ {
		bw.PutUE(uint64(s.MaxDecPicBufferingMinus1[i]))
		bw.PutUE(uint64(s.MaxNumReorderPics[i]))
		bw.PutUE(uint64(s.MaxLatencyIncreasePlus1[i]))
	}

	bw.PutUE(uint64(s.Log2MinLumaCodingBlockSizeMinus3))
	bw.PutUE(uint64(s.Log2DiffMaxMinLumaCodingBlockSize))
	bw.PutUE(uint64(s.Log2MinLumaTransformBlockSizeMinus2))
	bw.PutUE(uint64(s.Log2DiffMaxMinLumaTransformBlockSize))
	bw.PutUE(uint64(s.MaxTransformHierarchyDepthInter))
	bw.PutUE(uint64(s.MaxTransformHierarchyDepthIntra))

	bw.PutFlag(s.ScalingListEnabledFlag)
	if s.ScalingListEnabledFlag {
		bw.PutFlag(s.SPSScalingListDataPresentFlag)
		if s.SPSScalingListDataPresentFlag {
			writeScalingListData(bw, s.ScalingList)
		}
	}

	bw.PutFlag(s.AmpEnabledFlag)
	bw.PutFlag(s.SampleAdaptiveOffsetEnabledFlag)
	bw.PutFlag(s.PCMEnabledFlag)
	if s.PCMEnabledFlag {
		bw.PutBits(4, uint64(s.PCMSampleBitDepthLumaMinus1))
		bw.PutBits(4, uint64(s.PCMSampleBitDepthChromaMinus1))
		bw.PutUE(uint64(s.Log2MinPCMLumaCodingBlockSizeMinus3))
		bw.PutUE(uint64(s.Log2DiffMaxMinPCMLumaCodingBlockSize))
		bw.PutFlag(s.PCMLoopFilterDisabledFlag)
	}

	bw.PutUE(uint64(s.NumShortTermRefPicSets))
	for i := 0; i < s.NumShortTermRefPicSets; i++ {
		writeShortTermRPS(bw, s.ShortTermRPS[i], i)
	}

	bw.PutFlag(s.LongTermRefPicsPresentFlag)
	if s.LongTermRefPicsPresentFlag {
		bw.PutUE(uint64(s.NumLongTermRefPicsSPS))
		for i := 0; i < s.NumLongTermRefPicsSPS; i++ {
			bw.PutBits(int(s.Log2MaxPicOrderCntLsbMinus4+4), uint64(s.LtRefPicPocLsbSPS[i]))
			bw.PutFlag(s.UsedByCurrPicLtSPSFlag[i])
		}
	}

	bw.PutFlag(s.SPSTemporalMvpEnabledFlag)
	bw.PutFlag(s.StrongIntraSmoothingEnabledFlag)
	bw.PutFlag(s.VUIParametersPresentFlag)
	if s.VUIParametersPresentFlag {
		writeVUIParameters(bw, s.VUI, int(s.MaxSubLayersMinus1))
	}

	bw.PutFlag(s.ExtensionPresentFlag)
	bw.RBSPTrailingBits()
	return bw.Bytes()
}
