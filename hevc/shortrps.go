/*
DESCRIPTION
  shortrps.go parses and writes st_ref_pic_set(), the short-term reference
  picture set syntax structure used by both the sequence parameter set and
  the slice segment header.

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

const maxNumDeltaPOC = 32

// ShortTermRPS is a fully resolved short-term reference picture set: after
// parsing, DeltaPocS0/S1 and UsedByCurrPicS0/S1 hold the final per-entry
// values regardless of whether the set was coded by prediction or directly,
// matching how a consumer (derivation engine, descriptor lowering) wants to
// use it.
type ShortTermRPS struct {
	NumNegativePics int
	NumPositivePics int
	DeltaPocS0      [maxNumDeltaPOC]int32
	UsedByCurrPicS0 [maxNumDeltaPOC]bool
	DeltaPocS1      [maxNumDeltaPOC]int32
	UsedByCurrPicS1 [maxNumDeltaPOC]bool

	// InterRefPicSetPredictionFlag and the fields below hold the prediction
	// syntax as parsed. The writer does not use them: it always emits the
	// direct form from the resolved fields above.
	InterRefPicSetPredictionFlag bool
	DeltaIdxMinus1               uint32
	DeltaRpsSign                 bool
	AbsDeltaRpsMinus1            uint32
	UsedByCurrPicFlag            [maxNumDeltaPOC + 1]bool
	UseDeltaFlag                 [maxNumDeltaPOC + 1]bool
}

// NumDeltaPocs returns the total number of delta POC entries (negative plus
// positive), the quantity bounded by sps_max_dec_pic_buffering_minus1.
func (s *ShortTermRPS) NumDeltaPocs() int {
	return s.NumNegativePics + s.NumPositivePics
}

// NumPicTotalCurr counts entries marked used_by_curr_pic in the short-term
// set, to which the caller adds the long-term contribution.
func (s *ShortTermRPS) NumPicTotalCurr() int {
	n := 0
	for i := 0; i < s.NumNegativePics; i++ {
		if s.UsedByCurrPicS0[i] {
			n++
		}
	}
	for i := 0; i < s.NumPositivePics; i++ {
		if s.UsedByCurrPicS1[i] {
			n++
		}
	}
	return n
}

// parseShortTermRPS parses st_ref_pic_set(stRpsIdx) per 7.3.7, resolving
// against the sets already parsed into sets[0:stRpsIdx].
func parseShortTermRPS(r *fieldReader, stRpsIdx int, numShortTermRefPicSets int, sets []*ShortTermRPS) (*ShortTermRPS, error) {
	s := &ShortTermRPS{}

	if stRpsIdx != 0 {
		s.InterRefPicSetPredictionFlag = r.flag()
	}
	if err := r.err(); err != nil {
		return nil, invalid("inter_ref_pic_set_prediction_flag", err)
	}

	if s.InterRefPicSetPredictionFlag {
		if stRpsIdx == numShortTermRefPicSets {
			s.DeltaIdxMinus1 = uint32(r.ue())
		}
		s.DeltaRpsSign = r.flag()
		s.AbsDeltaRpsMinus1 = uint32(r.ue())
		if err := r.err(); err != nil {
			return nil, invalid("st_ref_pic_set prediction header", err)
		}

		refRpsIdx := stRpsIdx - (int(s.DeltaIdxMinus1) + 1)
		if refRpsIdx < 0 || refRpsIdx >= len(sets) || sets[refRpsIdx] == nil {
			return nil, invalid("ref_rps_idx", nil)
		}
		ref := sets[refRpsIdx]

		sign := int32(1)
		if s.DeltaRpsSign {
			sign = -1
		}
		deltaRps := sign * (int32(s.AbsDeltaRpsMinus1) + 1)

		numRefDeltaPocs := ref.NumDeltaPocs()
		for j := 0; j <= numRefDeltaPocs; j++ {
			s.UsedByCurrPicFlag[j] = r.flag()
			if !s.UsedByCurrPicFlag[j] {
				s.UseDeltaFlag[j] = r.flag()
			} else {
				s.UseDeltaFlag[j] = true
			}
		}
		if err := r.err(); err != nil {
			return nil, invalid("st_ref_pic_set used_by_curr_pic_flag", err)
		}

		if err := deriveFromPrediction(s, ref, deltaRps); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.NumNegativePics = int(r.ue())
	s.NumPositivePics = int(r.ue())
	if err := r.err(); err != nil {
		return nil, invalid("num_negative_pics", err)
	}
	if s.NumNegativePics > maxNumDeltaPOC || s.NumPositivePics > maxNumDeltaPOC {
		return nil, invalid("num_negative_pics/num_positive_pics", nil)
	}

	prev := int32(0)
	for i := 0; i < s.NumNegativePics; i++ {
		deltaMinus1 := r.ue()
		used := r.flag()
		if err := r.err(); err != nil {
			return nil, invalid("delta_poc_s0_minus1", err)
		}
		prev -= int32(deltaMinus1) + 1
		s.DeltaPocS0[i] = prev
		s.UsedByCurrPicS0[i] = used
	}

	prev = 0
	for i := 0; i < s.NumPositivePics; i++ {
		deltaMinus1 := r.ue()
		used := r.flag()
		if err := r.err(); err != nil {
			return nil, invalid("delta_poc_s1_minus1", err)
		}
		prev += int32(deltaMinus1) + 1
		s.DeltaPocS1[i] = prev
		s.UsedByCurrPicS1[i] = used
	}

	return s, nil
}

// deriveFromPrediction implements Equations 7-59 through 7-62: merge the
// referenced set's delta POCs (offset by deltaRps) with the new entry
// implied by deltaRps itself, then partition into negative/positive lists.
func deriveFromPrediction(s *ShortTermRPS, ref *ShortTermRPS, deltaRps int32) error {
	type entry struct {
		deltaPoc int32
		used     bool
	}
	var all []entry

	// Positive-side referenced entries, processed from the highest index
	// down, per Equation 7-61/7-62's iteration order.
	for j := ref.NumPositivePics - 1; j >= 0; j-- {
		dPoc := ref.DeltaPocS1[j] + deltaRps
		if dPoc < 0 && s.UseDeltaFlag[ref.NumNegativePics+j] {
			all = append(all, entry{dPoc, s.UsedByCurrPicFlag[ref.NumNegativePics+j]})
		}
	}
	if deltaRps < 0 && s.UseDeltaFlag[ref.NumDeltaPocs()] {
		all = append(all, entry{deltaRps, s.UsedByCurrPicFlag[ref.NumDeltaPocs()]})
	}
	for j := 0; j < ref.NumNegativePics; j++ {
		dPoc := ref.DeltaPocS0[j] + deltaRps
		if dPoc < 0 && s.UseDeltaFlag[j] {
			all = append(all, entry{dPoc, s.UsedByCurrPicFlag[j]})
		}
	}
	for i, e := range all {
		if i >= maxNumDeltaPOC {
			return invalid("st_ref_pic_set negative entries", nil)
		}
		s.DeltaPocS0[i] = e.deltaPoc
		s.UsedByCurrPicS0[i] = e.used
	}
	s.NumNegativePics = len(all)

	all = nil
	for j := ref.NumNegativePics - 1; j >= 0; j-- {
		dPoc := ref.DeltaPocS0[j] + deltaRps
		if dPoc > 0 && s.UseDeltaFlag[j] {
			all = append(all, entry{dPoc, s.UsedByCurrPicFlag[j]})
		}
	}
	if deltaRps > 0 && s.UseDeltaFlag[ref.NumDeltaPocs()] {
		all = append(all, entry{deltaRps, s.UsedByCurrPicFlag[ref.NumDeltaPocs()]})
	}
	for j := 0; j < ref.NumPositivePics; j++ {
		dPoc := ref.DeltaPocS1[j] + deltaRps
		if dPoc > 0 && s.UseDeltaFlag[ref.NumNegativePics+j] {
			all = append(all, entry{dPoc, s.UsedByCurrPicFlag[ref.NumNegativePics+j]})
		}
	}
	for i, e := range all {
		if i >= maxNumDeltaPOC {
			return invalid("st_ref_pic_set positive entries", nil)
		}
		s.DeltaPocS1[i] = e.deltaPoc
		s.UsedByCurrPicS1[i] = e.used
	}
	s.NumPositivePics = len(all)

	return nil
}

// writeShortTermRPS mirrors parseShortTermRPS's non-prediction branch; the
// writer always emits direct-coded sets for simplicity and determinism.
func writeShortTermRPS(bw *bits.BitWriter, s *ShortTermRPS, stRpsIdx int) {
	if stRpsIdx != 0 {
		bw.PutFlag(false) // inter_ref_pic_set_prediction_flag
	}
	bw.PutUE(uint64(s.NumNegativePics))
	bw.PutUE(uint64(s.NumPositivePics))

	prev := int32(0)
	for i := 0; i < s.NumNegativePics; i++ {
		deltaMinus1 := uint64(prev - s.DeltaPocS0[i] - 1)
		bw.PutUE(deltaMinus1)
		bw.PutFlag(s.UsedByCurrPicS0[i])
		prev = s.DeltaPocS0[i]
	}
	prev = 0
	for i := 0; i < s.NumPositivePics; i++ {
		deltaMinus1 := uint64(s.DeltaPocS1[i] - prev - 1)
		bw.PutUE(deltaMinus1)
		bw.PutFlag(s.UsedByCurrPicS1[i])
		prev = s.DeltaPocS1[i]
	}
}
