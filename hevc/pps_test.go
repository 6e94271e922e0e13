/*
DESCRIPTION
  pps_test.go exercises pic_parameter_set_rbsp() round-tripping, including
  explicit and uniform tile geometry.

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
)

func minimalPPS() *PPS {
	return &PPS{
		ID:                0,
		SeqParameterSetID: 0,
		NumRefIdxL0DefaultActiveMinus1: 0,
		NumRefIdxL1DefaultActiveMinus1: 0,
		InitQPMinus26:                  0,
		PPSLoopFilterAcrossSlicesEnabledFlag: true,
		Log2ParallelMergeLevelMinus2:         0,
	}
}

func TestPPSRoundTrip(t *testing.T) {
	want := minimalPPS()

	rbsp := WritePPS(want)
	got, err := ParsePPS(rbsp)
	if err != nil {
		t.Fatalf("ParsePPS: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PPS round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPPSRoundTripExplicitTiles(t *testing.T) {
	want := minimalPPS()
	want.TilesEnabledFlag = true
	want.NumTileColumnsMinus1 = 1
	want.NumTileRowsMinus1 = 1
	want.UniformSpacingFlag = false
	want.ColumnWidthMinus1 = []uint32{3}
	want.RowHeightMinus1 = []uint32{2}
	want.LoopFilterAcrossTilesEnabledFlag = true

	rbsp := WritePPS(want)
	got, err := ParsePPS(rbsp)
	if err != nil {
		t.Fatalf("ParsePPS: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PPS round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPPSRoundTripUniformTiles(t *testing.T) {
	want := minimalPPS()
	want.TilesEnabledFlag = true
	want.NumTileColumnsMinus1 = 2
	want.NumTileRowsMinus1 = 1
	want.UniformSpacingFlag = true

	rbsp := WritePPS(want)
	got, err := ParsePPS(rbsp)
	if err != nil {
		t.Fatalf("ParsePPS: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PPS round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPPSRejectsExtension(t *testing.T) {
	p := minimalPPS()
	p.ExtensionPresentFlag = true
	rbsp := WritePPS(p)

	_, err := ParsePPS(rbsp)
	if err == nil {
		t.Fatal("expected unsupported error for pps_extension_present_flag")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != UnsupportedStream {
		t.Fatalf("got %v, want UnsupportedStream", err)
	}
}
