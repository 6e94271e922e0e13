/*
DESCRIPTION
  hrd.go parses and writes the hrd_parameters() syntax structure (Annex E),
  referenced from both VPS timing info and SPS VUI parameters.

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

// SubLayerHRD holds one sub-layer's CPB specifications, read by
// sub_layer_hrd_parameters() once per operating sub-layer.
type SubLayerHRD struct {
	BitRateValueMinus1  []uint64
	CPBSizeValueMinus1  []uint64
	CPBSizeDUValueMinus1 []uint64
	BitRateDUValueMinus1 []uint64
	CBRFlag             []bool
}

// HRDParameters corresponds to hrd_parameters() in Annex E.1.2.
type HRDParameters struct {
	NalHRDParametersPresentFlag bool
	VclHRDParametersPresentFlag bool
	SubPicHRDParamsPresentFlag  bool

	TickDivisorMinus2                       uint8
	DuCpbRemovalDelayIncrementLenMinus1      uint8
	SubPicCPBParamsInPicTimingSEIFlag        bool
	DpbOutputDelayDuLenMinus1                uint8

	BitRateScale uint8
	CPBSizeScale uint8
	CPBSizeDUScale uint8

	InitialCPBRemovalDelayLenMinus1 uint8
	AuCPBRemovalDelayLenMinus1      uint8
	DPBOutputDelayLenMinus1         uint8

	FixedPicRateGeneralFlag    [maxSubLayers]bool
	FixedPicRateWithinCvsFlag  [maxSubLayers]bool
	ElementalDurationInTcMinus1 [maxSubLayers]uint64
	LowDelayHRDFlag            [maxSubLayers]bool
	CPBCntMinus1               [maxSubLayers]uint64

	NalSubLayerHRD [maxSubLayers]*SubLayerHRD
	VclSubLayerHRD [maxSubLayers]*SubLayerHRD
}

// parseHRDParameters parses hrd_parameters(commonInfPresentFlag,
// maxNumSubLayersMinus1) per Annex E.1.2.
func parseHRDParameters(r *fieldReader, commonInfPresentFlag bool, maxNumSubLayersMinus1 int) (*HRDParameters, error) {
	h := &HRDParameters{}

	if commonInfPresentFlag {
		h.NalHRDParametersPresentFlag = r.flag()
		h.VclHRDParametersPresentFlag = r.flag()
		if h.NalHRDParametersPresentFlag || h.VclHRDParametersPresentFlag {
			h.SubPicHRDParamsPresentFlag = r.flag()
			if h.SubPicHRDParamsPresentFlag {
				h.TickDivisorMinus2 = uint8(r.u(8))
				h.DuCpbRemovalDelayIncrementLenMinus1 = uint8(r.u(5))
				h.SubPicCPBParamsInPicTimingSEIFlag = r.flag()
				h.DpbOutputDelayDuLenMinus1 = uint8(r.u(5))
			}
			h.BitRateScale = uint8(r.u(4))
			h.CPBSizeScale = uint8(r.u(4))
			if h.SubPicHRDParamsPresentFlag {
				h.CPBSizeDUScale = uint8(r.u(4))
			}
			h.InitialCPBRemovalDelayLenMinus1 = uint8(r.u(5))
			h.AuCPBRemovalDelayLenMinus1 = uint8(r.u(5))
			h.DPBOutputDelayLenMinus1 = uint8(r.u(5))
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("hrd common info", err)
	}

	for i := 0; i <= maxNumSubLayersMinus1; i++ {
		h.FixedPicRateGeneralFlag[i] = r.flag()
		if !h.FixedPicRateGeneralFlag[i] {
			h.FixedPicRateWithinCvsFlag[i] = r.flag()
		} else {
			h.FixedPicRateWithinCvsFlag[i] = true
		}
		if h.FixedPicRateWithinCvsFlag[i] {
			h.ElementalDurationInTcMinus1[i] = r.ue()
		} else {
			h.LowDelayHRDFlag[i] = r.flag()
		}
		if !h.LowDelayHRDFlag[i] {
			h.CPBCntMinus1[i] = r.ue()
		}
		if err := r.err(); err != nil {
			return nil, invalid("hrd sub layer flags", err)
		}

		if h.NalHRDParametersPresentFlag {
			sl, err := parseSubLayerHRD(r, int(h.CPBCntMinus1[i]), h.SubPicHRDParamsPresentFlag)
			if err != nil {
				return nil, err
			}
			h.NalSubLayerHRD[i] = sl
		}
		if h.VclHRDParametersPresentFlag {
			sl, err := parseSubLayerHRD(r, int(h.CPBCntMinus1[i]), h.SubPicHRDParamsPresentFlag)
			if err != nil {
				return nil, err
			}
			h.VclSubLayerHRD[i] = sl
		}
	}

	return h, nil
}

func parseSubLayerHRD(r *fieldReader, cpbCntMinus1 int, subPic bool) (*SubLayerHRD, error) {
	sl := &SubLayerHRD{}
	for j := 0; j <= cpbCntMinus1; j++ {
		sl.BitRateValueMinus1 = append(sl.BitRateValueMinus1, r.ue())
		sl.CPBSizeValueMinus1 = append(sl.CPBSizeValueMinus1, r.ue())
		if subPic {
			sl.CPBSizeDUValueMinus1 = append(sl.CPBSizeDUValueMinus1, r.ue())
			sl.BitRateDUValueMinus1 = append(sl.BitRateDUValueMinus1, r.ue())
		}
		sl.CBRFlag = append(sl.CBRFlag, r.flag())
	}
	if err := r.err(); err != nil {
		return nil, invalid("sub_layer_hrd_parameters", err)
	}
	return sl, nil
}

// writeHRDParameters mirrors parseHRDParameters for the syntax writer.
func writeHRDParameters(bw *bits.BitWriter, h *HRDParameters, commonInfPresentFlag bool, maxNumSubLayersMinus1 int) {
	if commonInfPresentFlag {
		bw.PutFlag(h.NalHRDParametersPresentFlag)
		bw.PutFlag(h.VclHRDParametersPresentFlag)
		if h.NalHRDParametersPresentFlag || h.VclHRDParametersPresentFlag {
			bw.PutFlag(h.SubPicHRDParamsPresentFlag)
			if h.SubPicHRDParamsPresentFlag {
				bw.PutBits(8, uint64(h.TickDivisorMinus2))
				bw.PutBits(5, uint64(h.DuCpbRemovalDelayIncrementLenMinus1))
				bw.PutFlag(h.SubPicCPBParamsInPicTimingSEIFlag)
				bw.PutBits(5, uint64(h.DpbOutputDelayDuLenMinus1))
			}
			bw.PutBits(4, uint64(h.BitRateScale))
			bw.PutBits(4, uint64(h.CPBSizeScale))
			if h.SubPicHRDParamsPresentFlag {
				bw.PutBits(4, uint64(h.CPBSizeDUScale))
			}
			bw.PutBits(5, uint64(h.InitialCPBRemovalDelayLenMinus1))
			bw.PutBits(5, uint64(h.AuCPBRemovalDelayLenMinus1))
			bw.PutBits(5, uint64(h.DPBOutputDelayLenMinus1))
		}
	}

	for i := 0; i <= maxNumSubLayersMinus1; i++ {
		bw.PutFlag(h.FixedPicRateGeneralFlag[i])
		if !h.FixedPicRateGeneralFlag[i] {
			bw.PutFlag(h.FixedPicRateWithinCvsFlag[i])
		}
		if h.FixedPicRateWithinCvsFlag[i] {
			bw.PutUE(h.ElementalDurationInTcMinus1[i])
		} else {
			bw.PutFlag(h.LowDelayHRDFlag[i])
		}
		if !h.LowDelayHRDFlag[i] {
			bw.PutUE(h.CPBCntMinus1[i])
		}
		if h.NalHRDParametersPresentFlag {
			writeSubLayerHRD(bw, h.NalSubLayerHRD[i], h.SubPicHRDParamsPresentFlag)
		}
		if h.VclHRDParametersPresentFlag {
			writeSubLayerHRD(bw, h.VclSubLayerHRD[i], h.SubPicHRDParamsPresentFlag)
		}
	}
}

func writeSubLayerHRD(bw *bits.BitWriter, sl *SubLayerHRD, subPic bool) {
	if sl == nil {
		return
	}
	for j := range sl.BitRateValueMinus1 {
		bw.PutUE(sl.BitRateValueMinus1[j])
		bw.PutUE(sl.CPBSizeValueMinus1[j])
		if subPic {
			bw.PutUE(sl.CPBSizeDUValueMinus1[j])
			bw.PutUE(sl.BitRateDUValueMinus1[j])
		}
		bw.PutFlag(sl.CBRFlag[j])
	}
}
