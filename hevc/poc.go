/*
DESCRIPTION
  poc.go derives picture order count (POC) values from the POC-lsb carried
  in each slice header, per HEVC 8.3.1. The source this package was ported
  from keeps the previous MSB/LSB in process-wide statics, which corrupts
  POC tracking across concurrent streams; here it is a field on POCTracker,
  one instance per independent bitstream.

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

// POCTracker derives picture order count values across a sequence of
// pictures rooted at successive IDRs. Its zero value is ready to use.
type POCTracker struct {
	prevMSB int32
	prevLSB int32
}

// Reset returns the tracker to its post-IDR state.
func (t *POCTracker) Reset() {
	t.prevMSB = 0
	t.prevLSB = 0
}

// Next computes the POC for a picture given its slice_pic_order_cnt_lsb,
// the sequence's MaxPicOrderCntLsb, whether this picture is an IDR, and
// whether it is a B-frame. A B-frame's lsb never becomes the new reference
// state, since B-frames are not used to predict POC for subsequent
// pictures in the source this follows.
func (t *POCTracker) Next(lsb int32, maxPicOrderCntLsb uint32, isIDR, isB bool) int32 {
	if isIDR {
		t.prevMSB, t.prevLSB = 0, 0
	}
	prevMSB, prevLSB := t.prevMSB, t.prevLSB

	half := int32(maxPicOrderCntLsb / 2)
	var msb int32
	switch {
	case lsb < prevLSB && (prevLSB-lsb) >= half:
		msb = prevMSB + int32(maxPicOrderCntLsb)
	case lsb > prevLSB && (lsb-prevLSB) > half:
		msb = prevMSB - int32(maxPicOrderCntLsb)
	default:
		msb = prevMSB
	}

	poc := msb + lsb
	if !isB {
		t.prevMSB, t.prevLSB = msb, lsb
	}
	return poc
}
