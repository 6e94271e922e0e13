/*
DESCRIPTION
  derive_test.go tests the derivation engine's pure formulas: SAR lookup,
  CTB sizing, DPB sizing, and uniform tile-size splitting.

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

import "testing"

func TestSarFromIDC(t *testing.T) {
	w, h, err := sarFromIDC(1)
	if err != nil || w != 1 || h != 1 {
		t.Fatalf("idc 1: got (%d,%d,%v), want (1,1,nil)", w, h, err)
	}
	w, h, err = sarFromIDC(14)
	if err != nil || w != 4 || h != 3 {
		t.Fatalf("idc 14: got (%d,%d,%v), want (4,3,nil)", w, h, err)
	}
	if _, _, err := sarFromIDC(0); err == nil {
		t.Fatal("idc 0 (reserved) should be an error")
	}
	if _, _, err := sarFromIDC(17); err == nil {
		t.Fatal("idc 17 (out of table) should be an error")
	}
}

func TestSubWidthHeightC(t *testing.T) {
	cases := []struct {
		idc                int
		wantW, wantH int
	}{
		{0, 1, 1},
		{1, 2, 2},
		{2, 2, 1},
		{3, 1, 1},
	}
	for _, c := range cases {
		if got := SubWidthC(uint32(c.idc)); got != c.wantW {
			t.Errorf("SubWidthC(%d) = %d, want %d", c.idc, got, c.wantW)
		}
		if got := SubHeightC(uint32(c.idc)); got != c.wantH {
			t.Errorf("SubHeightC(%d) = %d, want %d", c.idc, got, c.wantH)
		}
	}
}

func TestMaxDpbSizeDeterminism(t *testing.T) {
	maxLumaPS := MaxLumaPS(120)
	a := MaxDpbSize(maxLumaPS/8, maxLumaPS, ProfileIDCMain)
	b := MaxDpbSize(maxLumaPS/8, maxLumaPS, ProfileIDCMain)
	if a != b {
		t.Fatalf("MaxDpbSize not deterministic: %d != %d", a, b)
	}
	if want := min32(4*MaxDpbPicBuf(ProfileIDCMain), 16); a != want {
		t.Fatalf("MaxDpbSize at 1/8 luma_ps = %d, want %d", a, want)
	}
}

func TestMaxDpbPicBufByProfile(t *testing.T) {
	if got := MaxDpbPicBuf(ProfileIDCMain); got != 6 {
		t.Errorf("MaxDpbPicBuf(Main) = %d, want 6", got)
	}
	if got := MaxDpbPicBuf(ProfileIDCHighThroughput); got != 6 {
		t.Errorf("MaxDpbPicBuf(HighThroughput) = %d, want 6", got)
	}
	if got := MaxDpbPicBuf(0); got != 7 {
		t.Errorf("MaxDpbPicBuf(0) = %d, want 7", got)
	}
	if got := MaxDpbPicBuf(9); got != 7 {
		t.Errorf("MaxDpbPicBuf(ScreenContentCoding) = %d, want 7", got)
	}
}

func TestMaxLumaPSPiecewise(t *testing.T) {
	if got := MaxLumaPS(30); got != 36864 {
		t.Errorf("MaxLumaPS(30) = %d, want 36864", got)
	}
	if got := MaxLumaPS(63); got != 245760 {
		t.Errorf("MaxLumaPS(63) = %d, want 245760", got)
	}
	if got := MaxLumaPS(255); got != 35651584 {
		t.Errorf("MaxLumaPS(255) = %d, want 35651584 (beyond-table limit)", got)
	}
}

func TestUniformTileSizesSumsToPicDimensions(t *testing.T) {
	cols, rows := UniformTileSizes(10, 3, 7, 2)
	var sum uint32
	for _, c := range cols {
		sum += c
	}
	if sum != 10 {
		t.Fatalf("column widths sum to %d, want 10", sum)
	}
	sum = 0
	for _, r := range rows {
		sum += r
	}
	if sum != 7 {
		t.Fatalf("row heights sum to %d, want 7", sum)
	}
}

func TestBitLen(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {7, 3}, {8, 4},
	}
	for _, c := range cases {
		if got := bitLen(c.v); got != c.want {
			t.Errorf("bitLen(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}
