/*
DESCRIPTION
  slice_test.go exercises slice_segment_header() round-tripping and the
  dependent-slice-segment body inheritance invariant.

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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/hevc/nal"
)

func TestDependentSliceSegmentInheritsBody(t *testing.T) {
	sps := minimalSPS()
	pps := minimalPPS()
	pps.DependentSliceSegmentsEnabledFlag = true

	getPPS := func(id uint8) (*PPS, bool) { return pps, id == pps.ID }
	getSPS := func(id uint8) (*SPS, bool) { return sps, id == sps.ID }

	independent := &SliceHeader{
		NALUnitType:                nal.TypeIDRWRADL,
		FirstSliceSegmentInPicFlag: true,
		PPSID:                      pps.ID,
	}
	independent.Body.SliceType = 2 // I slice

	rbsp1 := WriteSliceHeader(independent, pps, sps)
	parsed1, err := ParseSliceHeader(rbsp1, nal.TypeIDRWRADL, 0, getPPS, getSPS, nil)
	if err != nil {
		t.Fatalf("ParseSliceHeader (independent): %v", err)
	}

	dependent := &SliceHeader{
		NALUnitType:                nal.TypeTrailR,
		FirstSliceSegmentInPicFlag: false,
		PPSID:                      pps.ID,
		DependentSliceSegmentFlag:  true,
		SliceSegmentAddress:        1,
	}
	rbsp2 := WriteSliceHeader(dependent, pps, sps)
	parsed2, err := ParseSliceHeader(rbsp2, nal.TypeTrailR, 0, getPPS, getSPS, parsed1)
	if err != nil {
		t.Fatalf("ParseSliceHeader (dependent): %v", err)
	}

	if diff := cmp.Diff(parsed1.Body, parsed2.Body); diff != "" {
		t.Errorf("dependent segment's body diverged from independent segment's (-independent +dependent):\n%s", diff)
	}
	if !parsed2.DependentSliceSegmentFlag {
		t.Fatal("expected dependent_slice_segment_flag to be set")
	}
	if parsed2.SliceSegmentAddress != 1 {
		t.Fatalf("slice_segment_address = %d, want 1", parsed2.SliceSegmentAddress)
	}
}

func TestDependentSliceSegmentWithoutPriorFails(t *testing.T) {
	sps := minimalSPS()
	pps := minimalPPS()
	pps.DependentSliceSegmentsEnabledFlag = true

	getPPS := func(id uint8) (*PPS, bool) { return pps, id == pps.ID }
	getSPS := func(id uint8) (*SPS, bool) { return sps, id == sps.ID }

	dependent := &SliceHeader{
		NALUnitType:                nal.TypeTrailR,
		FirstSliceSegmentInPicFlag: false,
		PPSID:                      pps.ID,
		DependentSliceSegmentFlag:  true,
		SliceSegmentAddress:        1,
	}
	rbsp := WriteSliceHeader(dependent, pps, sps)

	_, err := ParseSliceHeader(rbsp, nal.TypeTrailR, 0, getPPS, getSPS, nil)
	if err == nil {
		t.Fatal("expected an error parsing a dependent segment with no prior segment")
	}
}

func TestSliceHeaderRejectsMissingPPS(t *testing.T) {
	sps := minimalSPS()
	pps := minimalPPS()

	getPPS := func(id uint8) (*PPS, bool) { return nil, false }
	getSPS := func(id uint8) (*SPS, bool) { return sps, id == sps.ID }

	independent := &SliceHeader{
		NALUnitType:                nal.TypeIDRWRADL,
		FirstSliceSegmentInPicFlag: true,
		PPSID:                      pps.ID,
	}
	independent.Body.SliceType = 2
	rbsp := WriteSliceHeader(independent, pps, sps)

	_, err := ParseSliceHeader(rbsp, nal.TypeIDRWRADL, 0, getPPS, getSPS, nil)
	if err == nil {
		t.Fatal("expected an error for a missing PPS")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != MissingParameterSet {
		t.Fatalf("got %v, want MissingParameterSet", err)
	}
}
