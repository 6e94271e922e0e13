/*
DESCRIPTION
  vui.go parses and writes the vui_parameters() syntax structure (Annex E),
  referenced from the sequence parameter set.

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

import "github.com/ausocean/hevc/bits"

const extendedSAR = 255

// VUIParameters corresponds to vui_parameters() in Annex E.2.1.
type VUIParameters struct {
	// AspectRatioInfoPresentFlag if true, AspectRatioIDC (and possibly
	// SARWidth/SARHeight) are present.
	AspectRatioInfoPresentFlag bool
	AspectRatioIDC             uint8
	SARWidth                   uint16
	SARHeight                  uint16

	OverscanInfoPresentFlag bool
	OverscanAppropriateFlag bool

	VideoSignalTypePresentFlag  bool
	VideoFormat                 uint8
	VideoFullRangeFlag          bool
	ColourDescriptionPresentFlag bool
	ColourPrimaries             uint8
	TransferCharacteristics     uint8
	MatrixCoefficients          uint8

	ChromaLocInfoPresentFlag     bool
	ChromaSampleLocTypeTopField  uint64
	ChromaSampleLocTypeBottomField uint64

	NeutralChromaIndicationFlag bool
	FieldSeqFlag                bool
	FrameFieldInfoPresentFlag   bool

	DefaultDisplayWindowFlag bool
	DefDispWinLeftOffset     uint64
	DefDispWinRightOffset    uint64
	DefDispWinTopOffset      uint64
	DefDispWinBottomOffset   uint64

	TimingInfoPresentFlag       bool
	NumUnitsInTick              uint32
	TimeScale                   uint32
	PocProportionalToTimingFlag bool
	NumTicksPocDiffOneMinus1    uint64
	HrdParametersPresentFlag    bool
	HRD                         *HRDParameters

	BitstreamRestrictionFlag               bool
	TilesFixedStructureFlag                bool
	MotionVectorsOverPicBoundariesFlag     bool
	RestrictedRefPicListsFlag              bool
	MinSpatialSegmentationIDC              uint64
	MaxBytesPerPicDenom                    uint64
	MaxBitsPerMinCuDenom                   uint64
	Log2MaxMvLengthHorizontal              uint64
	Log2MaxMvLengthVertical                uint64
}

// parseVUIParameters parses vui_parameters() with the sub-layer count from
// the enclosing SPS.
func parseVUIParameters(r *fieldReader, maxSubLayersMinus1 int) (*VUIParameters, error) {
	v := &VUIParameters{}

	v.AspectRatioInfoPresentFlag = r.flag()
	if v.AspectRatioInfoPresentFlag {
		v.AspectRatioIDC = uint8(r.u(8))
		if int(v.AspectRatioIDC) == extendedSAR {
			v.SARWidth = uint16(r.u(16))
			v.SARHeight = uint16(r.u(16))
		} else {
			w, h, err := sarFromIDC(v.AspectRatioIDC)
			if err != nil {
				return nil, err
			}
			v.SARWidth, v.SARHeight = w, h
		}
	}

	v.OverscanInfoPresentFlag = r.flag()
	if v.OverscanInfoPresentFlag {
		v.OverscanAppropriateFlag = r.flag()
	}

	v.VideoSignalTypePresentFlag = r.flag()
	if v.VideoSignalTypePresentFlag {
		v.VideoFormat = uint8(r.u(3))
		v.VideoFullRangeFlag = r.flag()
		v.ColourDescriptionPresentFlag = r.flag()
		if v.ColourDescriptionPresentFlag {
			v.ColourPrimaries = uint8(r.u(8))
			v.TransferCharacteristics = uint8(r.u(8))
			v.MatrixCoefficients = uint8(r.u(8))
		}
	}

	v.ChromaLocInfoPresentFlag = r.flag()
	if v.ChromaLocInfoPresentFlag {
		v.ChromaSampleLocTypeTopField = r.ue()
		v.ChromaSampleLocTypeBottomField = r.ue()
	}

	v.NeutralChromaIndicationFlag = r.flag()
	v.FieldSeqFlag = r.flag()
	v.FrameFieldInfoPresentFlag = r.flag()

	v.DefaultDisplayWindowFlag = r.flag()
	if v.DefaultDisplayWindowFlag {
		v.DefDispWinLeftOffset = r.ue()
		v.DefDispWinRightOffset = r.ue()
		v.DefDispWinTopOffset = r.ue()
		v.DefDispWinBottomOffset = r.ue()
	}

	v.TimingInfoPresentFlag = r.flag()
	if v.TimingInfoPresentFlag {
		v.NumUnitsInTick = uint32(r.u(32))
		v.TimeScale = uint32(r.u(32))
		v.PocProportionalToTimingFlag = r.flag()
		if v.PocProportionalToTimingFlag {
			v.NumTicksPocDiffOneMinus1 = r.ue()
		}
		v.HrdParametersPresentFlag = r.flag()
		if err := r.err(); err != nil {
			return nil, invalid("vui timing info", err)
		}
		if v.HrdParametersPresentFlag {
			hrd, err := parseHRDParameters(r, true, maxSubLayersMinus1)
			if err != nil {
				return nil, err
			}
			v.HRD = hrd
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("vui", err)
	}

	v.BitstreamRestrictionFlag = r.flag()
	if v.BitstreamRestrictionFlag {
		v.TilesFixedStructureFlag = r.flag()
		v.MotionVectorsOverPicBoundariesFlag = r.flag()
		v.RestrictedRefPicListsFlag = r.flag()
		v.MinSpatialSegmentationIDC = r.ue()
		v.MaxBytesPerPicDenom = r.ue()
		v.MaxBitsPerMinCuDenom = r.ue()
		v.Log2MaxMvLengthHorizontal = r.ue()
		v.Log2MaxMvLengthVertical = r.ue()
	}
	if err := r.err(); err != nil {
		return nil, invalid("vui bitstream restriction", err)
	}

	return v, nil
}

// writeVUIParameters mirrors parseVUIParameters for the syntax writer.
func writeVUIParameters(bw *bits.BitWriter, v *VUIParameters, maxSubLayersMinus1 int) {
	bw.PutFlag(v.AspectRatioInfoPresentFlag)
	if v.AspectRatioInfoPresentFlag {
		bw.PutBits(8, uint64(v.AspectRatioIDC))
		if int(v.AspectRatioIDC) == extendedSAR {
			bw.PutBits(16, uint64(v.SARWidth))
			bw.PutBits(16, uint64(v.SARHeight))
		}
	}

	bw.PutFlag(v.OverscanInfoPresentFlag)
	if v.OverscanInfoPresentFlag {
		bw.PutFlag(v.OverscanAppropriateFlag)
	}

	bw.PutFlag(v.VideoSignalTypePresentFlag)
	if v.VideoSignalTypePresentFlag {
		bw.PutBits(3, uint64(v.VideoFormat))
		bw.PutFlag(v.VideoFullRangeFlag)
		bw.PutFlag(v.ColourDescriptionPresentFlag)
		if v.ColourDescriptionPresentFlag {
			bw.PutBits(8, uint64(v.ColourPrimaries))
			bw.PutBits(8, uint64(v.TransferCharacteristics))
			bw.PutBits(8, uint64(v.MatrixCoefficients))
		}
	}

	bw.PutFlag(v.ChromaLocInfoPresentFlag)
	if v.ChromaLocInfoPresentFlag {
		bw.PutUE(v.ChromaSampleLocTypeTopField)
		bw.PutUE(v.ChromaSampleLocTypeBottomField)
	}

	bw.PutFlag(v.NeutralChromaIndicationFlag)
	bw.PutFlag(v.FieldSeqFlag)
	bw.PutFlag(v.FrameFieldInfoPresentFlag)

	bw.PutFlag(v.DefaultDisplayWindowFlag)
	if v.DefaultDisplayWindowFlag {
		bw.PutUE(v.DefDispWinLeftOffset)
		bw.PutUE(v.DefDispWinRightOffset)
		bw.PutUE(v.DefDispWinTopOffset)
		bw.PutUE(v.DefDispWinBottomOffset)
	}

	bw.PutFlag(v.TimingInfoPresentFlag)
	if v.TimingInfoPresentFlag {
		bw.PutBits(32, uint64(v.NumUnitsInTick))
		bw.PutBits(32, uint64(v.TimeScale))
		bw.PutFlag(v.PocProportionalToTimingFlag)
		if v.PocProportionalToTimingFlag {
			bw.PutUE(v.NumTicksPocDiffOneMinus1)
		}
		bw.PutFlag(v.HrdParametersPresentFlag)
		if v.HrdParametersPresentFlag {
			writeHRDParameters(bw, v.HRD, true, maxSubLayersMinus1)
		}
	}

	bw.PutFlag(v.BitstreamRestrictionFlag)
	if v.BitstreamRestrictionFlag {
		bw.PutFlag(v.TilesFixedStructureFlag)
		bw.PutFlag(v.MotionVectorsOverPicBoundariesFlag)
		bw.PutFlag(v.RestrictedRefPicListsFlag)
		bw.PutUE(v.MinSpatialSegmentationIDC)
		bw.PutUE(v.MaxBytesPerPicDenom)
		bw.PutUE(v.MaxBitsPerMinCuDenom)
		bw.PutUE(v.Log2MaxMvLengthHorizontal)
		bw.PutUE(v.Log2MaxMvLengthVertical)
	}
}
