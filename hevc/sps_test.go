/*
DESCRIPTION
  sps_test.go exercises seq_parameter_set_rbsp() round-tripping and the
  sps_seq_parameter_set_id bounds check.

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

func minimalSPS() *SPS {
	s := &SPS{
		VideoParameterSetID:   0,
		MaxSubLayersMinus1:    0,
		TemporalIDNestingFlag: true,
		PTL:                   minimalPTL(),
		ID:                    0,
		ChromaFormatIDC:       1,
		PicWidthInLumaSamples: 1920,
		PicHeightInLumaSamples: 1080,
		BitDepthLumaMinus8:          0,
		BitDepthChromaMinus8:        0,
		Log2MaxPicOrderCntLsbMinus4: 4,
		Log2MinLumaCodingBlockSizeMinus3:    0,
		Log2DiffMaxMinLumaCodingBlockSize:   3,
		Log2MinLumaTransformBlockSizeMinus2: 0,
		Log2DiffMaxMinLumaTransformBlockSize: 3,
		MaxTransformHierarchyDepthInter: 0,
		MaxTransformHierarchyDepthIntra: 0,
		SampleAdaptiveOffsetEnabledFlag: true,
		StrongIntraSmoothingEnabledFlag: true,
	}
	s.MaxDecPicBufferingMinus1[0] = 4
	s.MaxNumReorderPics[0] = 2
	return s
}

func TestSPSRoundTrip(t *testing.T) {
	want := minimalSPS()

	rbsp := WriteSPS(want)
	got, err := ParseSPS(rbsp)
	if err != nil {
		t.Fatalf("ParseSPS: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SPS round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSPSRejectsOutOfRangeID(t *testing.T) {
	s := minimalSPS()
	s.ID = 16
	rbsp := WriteSPS(s)

	_, err := ParseSPS(rbsp)
	if err == nil {
		t.Fatal("expected an error for sps_seq_parameter_set_id = 16")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != InvalidStream {
		t.Fatalf("got %v, want InvalidStream", err)
	}
}

func TestSPSRejectsExtension(t *testing.T) {
	s := minimalSPS()
	s.ExtensionPresentFlag = true
	rbsp := WriteSPS(s)

	_, err := ParseSPS(rbsp)
	if err == nil {
		t.Fatal("expected unsupported error for sps_extension_present_flag")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != UnsupportedStream {
		t.Fatalf("got %v, want UnsupportedStream", err)
	}
}
