/*
DESCRIPTION
  poc_test.go tests POCTracker's IDR reset and MSB wraparound handling.

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

func TestPOCTrackerAcrossGOP(t *testing.T) {
	var tr POCTracker
	const maxLsb = 16

	cases := []struct {
		lsb   int32
		isIDR bool
		isB   bool
		want  int32
	}{
		{lsb: 0, isIDR: true, isB: false, want: 0},
		{lsb: 4, isIDR: false, isB: false, want: 4},
		{lsb: 2, isIDR: false, isB: false, want: 2},
		{lsb: 6, isIDR: false, isB: false, want: 6},
	}
	for i, c := range cases {
		got := tr.Next(c.lsb, maxLsb, c.isIDR, c.isB)
		if got != c.want {
			t.Errorf("case %d: got POC %d, want %d", i, got, c.want)
		}
	}
}

func TestPOCTrackerBFrameDoesNotUpdateState(t *testing.T) {
	var tr POCTracker
	const maxLsb = 16

	tr.Next(0, maxLsb, true, false)
	// A B-frame referencing the prior state should not move prevLSB/prevMSB.
	// lsb 10 is more than half of maxLsb above prevLSB 0, so MSB steps down
	// to -16 and POC is -6.
	if got := tr.Next(10, maxLsb, false, true); got != -6 {
		t.Fatalf("B frame POC = %d, want -6", got)
	}
	if got := tr.Next(4, maxLsb, false, false); got != 4 {
		t.Fatalf("non-B frame POC after B = %d, want 4 (B must not have updated state)", got)
	}
}

func TestPOCTrackerMSBWraparound(t *testing.T) {
	var tr POCTracker
	const maxLsb = 16 // half = 8

	tr.Next(14, maxLsb, true, false) // prevLSB=14
	// lsb=2 < prevLSB=14, diff=12 >= half(8) -> MSB wraps forward by maxLsb.
	got := tr.Next(2, maxLsb, false, false)
	want := int32(16 + 2)
	if got != want {
		t.Fatalf("wrapped POC = %d, want %d", got, want)
	}
}

func TestPOCTrackerResetsOnIDR(t *testing.T) {
	var tr POCTracker
	const maxLsb = 16

	tr.Next(14, maxLsb, true, false)
	tr.Next(2, maxLsb, false, false) // MSB now wrapped to 16

	got := tr.Next(0, maxLsb, true, false) // new IDR resets MSB/LSB to 0
	if got != 0 {
		t.Fatalf("POC after IDR reset = %d, want 0", got)
	}
}
