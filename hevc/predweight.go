/*
DESCRIPTION
  predweight.go parses and writes pred_weight_table(), the explicit
  weighted prediction syntax structure referenced from the slice segment
  header.

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

const maxNumRefIdx = 16

// PredWeightTable corresponds to pred_weight_table() in 7.3.6.3.
type PredWeightTable struct {
	LumaLog2WeightDenom   uint32
	DeltaChromaLog2WeightDenom int32

	LumaWeightL0Flag [maxNumRefIdx]bool
	ChromaWeightL0Flag [maxNumRefIdx]bool
	DeltaLumaWeightL0 [maxNumRefIdx]int32
	LumaOffsetL0      [maxNumRefIdx]int32
	DeltaChromaWeightL0 [maxNumRefIdx][2]int32
	ChromaOffsetL0      [maxNumRefIdx][2]int32

	LumaWeightL1Flag [maxNumRefIdx]bool
	ChromaWeightL1Flag [maxNumRefIdx]bool
	DeltaLumaWeightL1 [maxNumRefIdx]int32
	LumaOffsetL1      [maxNumRefIdx]int32
	DeltaChromaWeightL1 [maxNumRefIdx][2]int32
	ChromaOffsetL1      [maxNumRefIdx][2]int32
}

// parsePredWeightTable parses pred_weight_table() given the active
// reference counts and whether this is a B slice (which makes L1 present).
func parsePredWeightTable(r *fieldReader, chromaArrayType uint32, numRefIdxL0ActiveMinus1 int, numRefIdxL1ActiveMinus1 int, isBSlice bool) (*PredWeightTable, error) {
	w := &PredWeightTable{}

	w.LumaLog2WeightDenom = uint32(r.ue())
	if chromaArrayType != 0 {
		w.DeltaChromaLog2WeightDenom = int32(r.se())
	}
	if err := r.err(); err != nil {
		return nil, invalid("pred_weight_table header", err)
	}

	parseHalf := func(n int, lumaFlag, chromaFlag *[maxNumRefIdx]bool, deltaLuma, lumaOff *[maxNumRefIdx]int32, deltaChroma, chromaOff *[maxNumRefIdx][2]int32) error {
		for i := 0; i < n; i++ {
			lumaFlag[i] = r.flag()
		}
		if chromaArrayType != 0 {
			for i := 0; i < n; i++ {
				chromaFlag[i] = r.flag()
			}
		}
		if err := r.err(); err != nil {
			return invalid("pred_weight_table flags", err)
		}
		for i := 0; i < n; i++ {
			if lumaFlag[i] {
				deltaLuma[i] = int32(r.se())
				lumaOff[i] = int32(r.se())
			}
			if chromaArrayType != 0 && chromaFlag[i] {
				for j := 0; j < 2; j++ {
					deltaChroma[i][j] = int32(r.se())
					chromaOff[i][j] = int32(r.se())
				}
			}
		}
		return r.err()
	}

	if err := parseHalf(numRefIdxL0ActiveMinus1+1, &w.LumaWeightL0Flag, &w.ChromaWeightL0Flag, &w.DeltaLumaWeightL0, &w.LumaOffsetL0, &w.DeltaChromaWeightL0, &w.ChromaOffsetL0); err != nil {
		return nil, invalid("pred_weight_table l0", err)
	}
	if isBSlice {
		if err := parseHalf(numRefIdxL1ActiveMinus1+1, &w.LumaWeightL1Flag, &w.ChromaWeightL1Flag, &w.DeltaLumaWeightL1, &w.LumaOffsetL1, &w.DeltaChromaWeightL1, &w.ChromaOffsetL1); err != nil {
			return nil, invalid("pred_weight_table l1", err)
		}
	}

	return w, nil
}

// writePredWeightTable mirrors parsePredWeightTable for the syntax writer.
func writePredWeightTable(bw *bits.BitWriter, w *PredWeightTable, chromaArrayType uint32, numRefIdxL0ActiveMinus1 int, numRefIdxL1ActiveMinus1 int, isBSlice bool) {
	bw.PutUE(uint64(w.LumaLog2WeightDenom))
	if chromaArrayType != 0 {
		bw.PutSE(int64(w.DeltaChromaLog2WeightDenom))
	}

	writeHalf := func(n int, lumaFlag, chromaFlag [maxNumRefIdx]bool, deltaLuma, lumaOff [maxNumRefIdx]int32, deltaChroma, chromaOff [maxNumRefIdx][2]int32) {
		for i := 0; i < n; i++ {
			bw.PutFlag(lumaFlag[i])
		}
		if chromaArrayType != 0 {
			for i := 0; i < n; i++ {
				bw.PutFlag(chromaFlag[i])
			}
		}
		for i := 0; i < n; i++ {
			if lumaFlag[i] {
				bw.PutSE(int64(deltaLuma[i]))
				bw.PutSE(int64(lumaOff[i]))
			}
			if chromaArrayType != 0 && chromaFlag[i] {
				for j := 0; j < 2; j++ {
					bw.PutSE(int64(deltaChroma[i][j]))
					bw.PutSE(int64(chromaOff[i][j]))
				}
			}
		}
	}

	writeHalf(numRefIdxL0ActiveMinus1+1, w.LumaWeightL0Flag, w.ChromaWeightL0Flag, w.DeltaLumaWeightL0, w.LumaOffsetL0, w.DeltaChromaWeightL0, w.ChromaOffsetL0)
	if isBSlice {
		writeHalf(numRefIdxL1ActiveMinus1+1, w.LumaWeightL1Flag, w.ChromaWeightL1Flag, w.DeltaLumaWeightL1, w.LumaOffsetL1, w.DeltaChromaWeightL1, w.ChromaOffsetL1)
	}
}
