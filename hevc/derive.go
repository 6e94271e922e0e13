/*
DESCRIPTION
  derive.go computes values implied by, but not directly carried in, parsed
  parameter sets: chroma subsampling factors, picture and CTB dimensions,
  DPB sizing, QP offsets, tile geometry, and the sample aspect ratio table.

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

// sarTableWidth and sarTableHeight hold the standard sample aspect ratio lookup (Table E-1),
// indexed by aspect_ratio_idc 1..16. Index 0 is unused (reserved idc 0).
var sarTableWidth = [...]uint16{0,
	1, 12, 10, 16, 40, 24, 20, 32, 80, 18, 15, 64, 160, 4, 3, 2,
}

var sarTableHeight = [...]uint16{0,
	1, 11, 11, 11, 33, 11, 11, 11, 33, 11, 11, 33, 99, 3, 2, 1,
}

// sarFromIDC resolves a non-extended aspect_ratio_idc to its width/height.
func sarFromIDC(idc uint8) (uint16, uint16, error) {
	if int(idc) == 0 || int(idc) >= len(sarTableWidth) {
		return 0, 0, invalid("aspect_ratio_idc", nil)
	}
	return sarTableWidth[idc], sarTableHeight[idc], nil
}

// SubWidthC and SubHeightC give the horizontal/vertical chroma subsampling
// factor per Table 6-1, indexed by chroma_format_idc (separate_colour_
// plane_flag forces 4:4:4 to behave as monochrome for these purposes, so
// callers should pass chromaFormatIDC=0 in that case).
func SubWidthC(chromaFormatIDC uint32) int {
	switch chromaFormatIDC {
	case 1: // 4:2:0
		return 2
	case 2: // 4:2:2
		return 2
	default: // 0 (monochrome), 3 (4:4:4)
		return 1
	}
}

func SubHeightC(chromaFormatIDC uint32) int {
	switch chromaFormatIDC {
	case 1: // 4:2:0
		return 2
	default: // 0, 2, 3
		return 1
	}
}

// ChromaArrayType implements the derivation in 7.4.3.2: equal to 0 when
// separate_colour_plane_flag is set, otherwise equal to chroma_format_idc.
func ChromaArrayType(chromaFormatIDC uint32, separateColourPlaneFlag bool) uint32 {
	if separateColourPlaneFlag {
		return 0
	}
	return chromaFormatIDC
}

// MaxPicOrderCntLsb returns 2^(log2_max_pic_order_cnt_lsb_minus4 + 4).
func MaxPicOrderCntLsb(log2MaxPicOrderCntLsbMinus4 uint32) uint32 {
	return 1 << (log2MaxPicOrderCntLsbMinus4 + 4)
}

// levelLumaPS pairs a general_level_idc value with the MaxLumaPs limit from
// Table A.8, keyed directly off the raw idc values the bitstream carries
// (general_level_idc is level*30, so level 1 = 30, level 2 = 60, level
// 2.1 = 63, and so on).
type levelLumaPS struct {
	levelIDC uint8
	maxLumaPS uint32
}

var levelLumaPSTable = []levelLumaPS{
	{30, 36864},
	{60, 122880},
	{63, 245760},
	{90, 552960},
	{93, 983040},
	{123, 2228224},
	{156, 8912896},
}

// maxLumaPSBeyondTable is the limit for levels 6, 6.1 and 6.2, and for any
// level beyond those (Table A.8's final, unbounded row).
const maxLumaPSBeyondTable = 35651584

// MaxLumaPS returns the MaxLumaPs limit (Table A.8) for generalLevelIDC, or
// maxLumaPSBeyondTable if the level exceeds the table (matching the
// piecewise "and higher" rows of the table).
func MaxLumaPS(generalLevelIDC uint8) uint32 {
	for _, e := range levelLumaPSTable {
		if generalLevelIDC <= e.levelIDC {
			return e.maxLumaPS
		}
	}
	return maxLumaPSBeyondTable
}

// Profile IDC values relevant to the DPB size derivation (Table A.2).
const (
	ProfileIDCMain           = 1
	ProfileIDCHighThroughput = 5
)

// MaxDpbPicBuf implements the footnote to Table A.8 used in the DPB size
// derivation (Equation A-2): 6 when sps_curr_pic_ref_enabled_flag is
// required to be zero (profile_idc in [Main, HighThroughput]), else 7.
func MaxDpbPicBuf(generalProfileIDC uint8) uint32 {
	if generalProfileIDC >= ProfileIDCMain && generalProfileIDC <= ProfileIDCHighThroughput {
		return 6
	}
	return 7
}

// MaxDpbSize implements Equation A-2: the maximum decoded picture buffer
// size in pictures, given the picture size in luma samples (picSizeInSamplesY),
// the level's MaxLumaPs, and the stream's general_profile_idc.
func MaxDpbSize(picSizeInSamplesY, maxLumaPS uint32, generalProfileIDC uint8) uint32 {
	maxDpbPicBuf := MaxDpbPicBuf(generalProfileIDC)
	switch {
	case picSizeInSamplesY <= maxLumaPS/4:
		return min32(4*maxDpbPicBuf, 16)
	case picSizeInSamplesY <= maxLumaPS/2:
		return min32(2*maxDpbPicBuf, 16)
	case picSizeInSamplesY <= (3*maxLumaPS)/4:
		return min32((4*maxDpbPicBuf)/3, 16)
	default:
		return maxDpbPicBuf
	}
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// CtbLog2SizeY returns log2CtbSizeY = log2_min_luma_coding_block_size_minus3
// + 3 + log2_diff_max_min_luma_coding_block_size.
func CtbLog2SizeY(log2MinLumaCodingBlockSizeMinus3, log2DiffMaxMinLumaCodingBlockSize uint32) uint32 {
	return log2MinLumaCodingBlockSizeMinus3 + 3 + log2DiffMaxMinLumaCodingBlockSize
}

// PicWidthInCtbsY returns Ceil(picWidthInLumaSamples / CtbSizeY).
func PicWidthInCtbsY(picWidthInLumaSamples, ctbLog2SizeY uint32) uint32 {
	ctbSizeY := uint32(1) << ctbLog2SizeY
	return ceilDiv(picWidthInLumaSamples, ctbSizeY)
}

// PicHeightInCtbsY returns Ceil(picHeightInLumaSamples / CtbSizeY).
func PicHeightInCtbsY(picHeightInLumaSamples, ctbLog2SizeY uint32) uint32 {
	ctbSizeY := uint32(1) << ctbLog2SizeY
	return ceilDiv(picHeightInLumaSamples, ctbSizeY)
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// bitLen returns the number of bits needed to represent v (Ceil(Log2(v+1))
// for v >= 1, 0 for v == 0), used to size fixed-width fields such as
// ref_pic_list_modification entries.
func bitLen(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// QpBdOffsetY returns 6 * bit_depth_luma_minus8, the offset applied to QP'Y
// derivations per 7.4.3.2.1.
func QpBdOffsetY(bitDepthLumaMinus8 uint32) int32 {
	return 6 * int32(bitDepthLumaMinus8)
}

// UniformTileSizes derives column widths and row heights (in CTBs) for
// uniform_spacing_flag equal to 1, per 6.5.1 Equations 6-4 and 6-5.
func UniformTileSizes(picWidthInCtbsY, numTileColumns, picHeightInCtbsY, numTileRows uint32) (colWidths, rowHeights []uint32) {
	colWidths = make([]uint32, numTileColumns)
	for i := uint32(0); i < numTileColumns; i++ {
		colWidths[i] = (i+1)*picWidthInCtbsY/numTileColumns - i*picWidthInCtbsY/numTileColumns
	}
	rowHeights = make([]uint32, numTileRows)
	for j := uint32(0); j < numTileRows; j++ {
		rowHeights[j] = (j+1)*picHeightInCtbsY/numTileRows - j*picHeightInCtbsY/numTileRows
	}
	return colWidths, rowHeights
}
