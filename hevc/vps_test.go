/*
DESCRIPTION
  vps_test.go exercises video_parameter_set_rbsp() round-tripping through
  the writer and back through the parser.

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

func minimalPTL() *ProfileTierLevel {
	return &ProfileTierLevel{
		GeneralProfileIDC: 1,
		GeneralLevelIDC:   120,
	}
}

func TestVPSRoundTrip(t *testing.T) {
	want := &VPS{
		ID:                    0,
		MaxSubLayersMinus1:    0,
		TemporalIDNestingFlag: true,
		PTL:                   minimalPTL(),
		MaxLayerID:            0,
		NumLayerSetsMinus1:    0,
	}
	want.MaxDecPicBufferingMinus1[0] = 4
	want.MaxNumReorderPics[0] = 2
	want.MaxLatencyIncreasePlus1[0] = 0

	rbsp := WriteVPS(want)
	got, err := ParseVPS(rbsp)
	if err != nil {
		t.Fatalf("ParseVPS: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VPS round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestVPSRoundTripMultipleSubLayers(t *testing.T) {
	want := &VPS{
		ID:                 1,
		MaxSubLayersMinus1: 2,
		PTL:                minimalPTL(),
	}
	want.SubLayerOrderingInfoPresentFlag = true
	for i := 0; i <= int(want.MaxSubLayersMinus1); i++ {
		want.MaxDecPicBufferingMinus1[i] = uint32(i + 1)
		want.MaxNumReorderPics[i] = uint32(i)
		want.MaxLatencyIncreasePlus1[i] = 0
	}

	rbsp := WriteVPS(want)
	got, err := ParseVPS(rbsp)
	if err != nil {
		t.Fatalf("ParseVPS: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VPS round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestVPSRejectsExtension(t *testing.T) {
	v := &VPS{PTL: minimalPTL()}
	v.ExtensionFlag = true
	rbsp := WriteVPS(v)

	_, err := ParseVPS(rbsp)
	if err == nil {
		t.Fatal("expected unsupported error for vps_extension_flag")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != UnsupportedStream {
		t.Fatalf("got %v, want UnsupportedStream", err)
	}
}
