/*
DESCRIPTION
  scalinglist.go parses and writes scaling_list_data(), including the
  default 8x8 scaling lists used when a matrix is predicted from the
  defaults (delta_scaling_list_idx equal to 0).

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

// defaultScalingListIntra is the default 8x8 scaling list for matrixId
// 0, 1, 2 (intra luma/Cb/Cr), Table 7-5, in up-right diagonal scan order
// (the order scaling_list_delta_coef values are coded in, not raster order).
var defaultScalingListIntra = [64]uint8{
	16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 17, 16, 17, 16, 17, 18,
	17, 18, 18, 17, 18, 21, 19, 20, 21, 20, 19, 21, 24, 22, 22, 24,
	24, 22, 22, 24, 25, 25, 27, 30, 27, 25, 25, 29, 31, 35, 35, 31,
	29, 36, 41, 44, 41, 36, 47, 54, 54, 47, 65, 70, 65, 88, 88, 115,
}

// defaultScalingListInter is the default 8x8 scaling list for matrixId
// 3, 4, 5 (inter luma/Cb/Cr), Table 7-6, in the same diagonal scan order.
var defaultScalingListInter = [64]uint8{
	16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 17, 17, 17, 17, 17, 18,
	18, 18, 18, 18, 18, 20, 20, 20, 20, 20, 20, 20, 24, 24, 24, 24,
	24, 24, 24, 24, 25, 25, 25, 25, 25, 25, 25, 28, 28, 28, 28, 28,
	28, 33, 33, 33, 33, 33, 41, 41, 41, 41, 54, 54, 54, 71, 71, 91,
}

// default4x4 is the flat default scaling list for size_id 0 (4x4),
// value 16 at every position, per 7.4.5.
var default4x4 = [16]uint8{
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
}

const numSizeIDs = 4

// ScalingListData corresponds to scaling_list_data() in 7.3.4. Matrices are
// stored in up-right diagonal scan order as read from the bitstream (or as
// filled from the defaults), one slice per (sizeId, matrixId).
type ScalingListData struct {
	// Lists[sizeID][matrixID] holds min(64, 1<<(4+2*sizeID)) coefficients.
	// For sizeID 3, only matrixID 0 and 3 are populated (the spec's matrixId
	// step of 3); the other four entries stay nil.
	Lists [numSizeIDs][6][]uint8

	// DCCoef16x16[matrixID] and DCCoef32x32[matrixID] hold the separate DC
	// coefficients used for sizeID 2 and 3 respectively.
	DCCoef16x16 [6]uint8
	DCCoef32x32 [6]uint8
}

func matrixIDStep(sizeID int) int {
	if sizeID == 3 {
		return 3
	}
	return 1
}

func matrixCount(sizeID int) int {
	if sizeID == 3 {
		return 6 // loop visits 0 and 3 only, but indices up to 5 are addressed
	}
	return 6
}

func listLen(sizeID int) int {
	n := 1 << (4 + 2*sizeID)
	if n > 64 {
		return 64
	}
	return n
}

// parseScalingListData parses scaling_list_data() per 7.3.4.
func parseScalingListData(r *fieldReader) (*ScalingListData, error) {
	s := &ScalingListData{}

	for sizeID := 0; sizeID < numSizeIDs; sizeID++ {
		for matrixID := 0; matrixID < matrixCount(sizeID); matrixID += matrixIDStep(sizeID) {
			predModeFlag := r.flag()
			if err := r.err(); err != nil {
				return nil, invalid("scaling_list_pred_mode_flag", err)
			}

			if !predModeFlag {
				delta := r.ue()
				if err := r.err(); err != nil {
					return nil, invalid("scaling_list_pred_matrix_id_delta", err)
				}
				if delta == 0 {
					fillDefaultScalingList(s, sizeID, matrixID)
				} else {
					refMatrixID := matrixID - int(delta)*matrixIDStep(sizeID)
					if refMatrixID < 0 {
						return nil, invalid("scaling_list_pred_matrix_id_delta", nil)
					}
					s.Lists[sizeID][matrixID] = append([]uint8(nil), s.Lists[sizeID][refMatrixID]...)
					if sizeID == 2 {
						s.DCCoef16x16[matrixID] = s.DCCoef16x16[refMatrixID]
					} else if sizeID == 3 {
						s.DCCoef32x32[matrixID] = s.DCCoef32x32[refMatrixID]
					}
				}
				continue
			}

			if err := parseExplicitScalingList(r, s, sizeID, matrixID); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// fillDefaultScalingList installs the hardcoded default for (sizeID,
// matrixID): the flat 16 list at size 4x4, and the appropriate 8x8 default
// at 8x8/16x16/32x32, with DC coefficients defaulting to 16.
func fillDefaultScalingList(s *ScalingListData, sizeID, matrixID int) {
	if sizeID == 0 {
		s.Lists[sizeID][matrixID] = append([]uint8(nil), default4x4[:]...)
		return
	}

	var src [64]uint8
	if matrixID < 3 {
		src = defaultScalingListIntra
	} else {
		src = defaultScalingListInter
	}
	s.Lists[sizeID][matrixID] = append([]uint8(nil), src[:]...)

	if sizeID == 2 {
		s.DCCoef16x16[matrixID] = 16
	} else if sizeID == 3 {
		s.DCCoef32x32[matrixID] = 16
	}
}

// parseExplicitScalingList reads an explicitly coded coefficient list: a
// zig-zag (up-right diagonal) ordered run where each value is the previous
// running value plus a signed delta, modulo 256.
func parseExplicitScalingList(r *fieldReader, s *ScalingListData, sizeID, matrixID int) error {
	var nextCoef int64 = 8
	coefNum := listLen(sizeID)

	if sizeID > 1 {
		delta := r.se()
		if err := r.err(); err != nil {
			return invalid("scaling_list_dc_coef_minus8", err)
		}
		nextCoef = delta + 8
		if sizeID == 2 {
			s.DCCoef16x16[matrixID] = uint8(nextCoef)
		} else {
			s.DCCoef32x32[matrixID] = uint8(nextCoef)
		}
	}

	list := make([]uint8, coefNum)
	for i := 0; i < coefNum; i++ {
		delta := r.se()
		if err := r.err(); err != nil {
			return invalid("scaling_list_delta_coef", err)
		}
		nextCoef = (nextCoef + delta + 256) % 256
		list[i] = uint8(nextCoef)
	}
	s.Lists[sizeID][matrixID] = list
	return nil
}

// writeScalingListData mirrors parseScalingListData, always writing
// explicit (non-predicted) coefficient lists.
func writeScalingListData(bw *bits.BitWriter, s *ScalingListData) {
	for sizeID := 0; sizeID < numSizeIDs; sizeID++ {
		for matrixID := 0; matrixID < matrixCount(sizeID); matrixID += matrixIDStep(sizeID) {
			bw.PutFlag(true) // scaling_list_pred_mode_flag: always explicit
			list := s.Lists[sizeID][matrixID]

			var nextCoef int64 = 8
			if sizeID > 1 {
				var dc uint8
				if sizeID == 2 {
					dc = s.DCCoef16x16[matrixID]
				} else {
					dc = s.DCCoef32x32[matrixID]
				}
				bw.PutSE(int64(dc) - 8)
				nextCoef = int64(dc)
			}

			for _, v := range list {
				delta := int64(v) - nextCoef
				// Normalize into (-128, 128] so the writer always emits the
				// smallest-magnitude equivalent delta modulo 256.
				if delta > 128 {
					delta -= 256
				} else if delta <= -128 {
					delta += 256
				}
				bw.PutSE(delta)
				nextCoef = int64(v)
			}
		}
	}
}
