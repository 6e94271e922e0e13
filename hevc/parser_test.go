/*
DESCRIPTION
  parser_test.go exercises Parser end to end: NAL dispatch, parameter-set
  cross-reference validation, POC tracking across a GOP, and the error
  taxonomy a caller sees for malformed or unsupported streams.

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

	"github.com/ausocean/hevc/nal"
)

func minimalVPS() *VPS {
	v := &VPS{PTL: minimalPTL()}
	v.MaxDecPicBufferingMinus1[0] = 4
	v.MaxNumReorderPics[0] = 2
	return v
}

// buildMinimalStream assembles a VPS, SPS, PPS and a single IDR slice into
// one Annex-B byte stream with ids 0 throughout.
func buildMinimalStream(t *testing.T) []byte {
	t.Helper()

	vps := minimalVPS()
	sps := minimalSPS()
	pps := minimalPPS()

	slice := &SliceHeader{
		NALUnitType:                nal.TypeIDRWRADL,
		FirstSliceSegmentInPicFlag: true,
		PPSID:                      pps.ID,
	}
	slice.Body.SliceType = 2 // I slice

	var out []byte
	out = append(out, WriteNALUnit(nal.TypeVPS, 0, 1, WriteVPS(vps))...)
	out = append(out, WriteNALUnit(nal.TypeSPS, 0, 1, WriteSPS(sps))...)
	out = append(out, WriteNALUnit(nal.TypePPS, 0, 1, WritePPS(pps))...)
	out = append(out, WriteNALUnit(nal.TypeIDRWRADL, 0, 1, WriteSliceHeader(slice, pps, sps))...)
	return out
}

func TestParserMinimalIDRStream(t *testing.T) {
	p := NewParser()
	units, err := p.Parse(buildMinimalStream(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(units) != 4 {
		t.Fatalf("got %d units, want 4", len(units))
	}

	if units[0].VPS == nil || units[0].VPS.ID != 0 {
		t.Fatalf("unit 0: expected VPS with id 0, got %+v", units[0].VPS)
	}
	if units[1].SPS == nil || units[1].SPS.ID != 0 {
		t.Fatalf("unit 1: expected SPS with id 0, got %+v", units[1].SPS)
	}
	if units[2].PPS == nil || units[2].PPS.ID != 0 {
		t.Fatalf("unit 2: expected PPS with id 0, got %+v", units[2].PPS)
	}

	last := units[3]
	if last.SliceHeader == nil {
		t.Fatal("unit 3: expected a parsed slice header")
	}
	if last.POC != 0 {
		t.Fatalf("IDR POC = %d, want 0", last.POC)
	}
	if last.PicParams == nil {
		t.Fatal("expected PicParams to be lowered for a VCL unit")
	}
	if last.QMatrix == nil {
		t.Fatal("expected QMatrix to be lowered for a VCL unit")
	}
}

func TestParserRejectsMissingSPSForPPS(t *testing.T) {
	p := NewParser()

	pps := minimalPPS()
	pps.SeqParameterSetID = 3 // never supplied

	var data []byte
	data = append(data, WriteNALUnit(nal.TypePPS, 0, 1, WritePPS(pps))...)

	_, err := p.Parse(data)
	if err == nil {
		t.Fatal("expected an error for a PPS referencing an unknown SPS")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != MissingParameterSet {
		t.Fatalf("got %v, want MissingParameterSet", err)
	}
}

func TestParserRejectsMissingVPSForSPS(t *testing.T) {
	p := NewParser()

	sps := minimalSPS()
	sps.VideoParameterSetID = 5 // never supplied

	var data []byte
	data = append(data, WriteNALUnit(nal.TypeSPS, 0, 1, WriteSPS(sps))...)

	_, err := p.Parse(data)
	if err == nil {
		t.Fatal("expected an error for an SPS referencing an unknown VPS")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != MissingParameterSet {
		t.Fatalf("got %v, want MissingParameterSet", err)
	}
}

func TestParserRejectsOutOfRangeSPSID(t *testing.T) {
	p := NewParser()

	var data []byte
	data = append(data, WriteNALUnit(nal.TypeVPS, 0, 1, WriteVPS(minimalVPS()))...)

	sps := minimalSPS()
	sps.ID = 16
	data = append(data, WriteNALUnit(nal.TypeSPS, 0, 1, WriteSPS(sps))...)

	_, err := p.Parse(data)
	if err == nil {
		t.Fatal("expected an error for sps_seq_parameter_set_id = 16")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != InvalidStream {
		t.Fatalf("got %v, want InvalidStream", err)
	}
}

func TestParserRejectsUnsupportedSPSExtension(t *testing.T) {
	p := NewParser()

	var data []byte
	data = append(data, WriteNALUnit(nal.TypeVPS, 0, 1, WriteVPS(minimalVPS()))...)

	sps := minimalSPS()
	sps.ExtensionPresentFlag = true
	data = append(data, WriteNALUnit(nal.TypeSPS, 0, 1, WriteSPS(sps))...)

	_, err := p.Parse(data)
	if err == nil {
		t.Fatal("expected an error for sps_extension_present_flag")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != UnsupportedStream {
		t.Fatalf("got %v, want UnsupportedStream", err)
	}
}

func TestParserPOCAcrossGOP(t *testing.T) {
	p := NewParser()

	vps := minimalVPS()
	sps := minimalSPS()
	pps := minimalPPS()

	var data []byte
	data = append(data, WriteNALUnit(nal.TypeVPS, 0, 1, WriteVPS(vps))...)
	data = append(data, WriteNALUnit(nal.TypeSPS, 0, 1, WriteSPS(sps))...)
	data = append(data, WriteNALUnit(nal.TypePPS, 0, 1, WritePPS(pps))...)

	idr := &SliceHeader{
		NALUnitType:                nal.TypeIDRWRADL,
		FirstSliceSegmentInPicFlag: true,
		PPSID:                      pps.ID,
	}
	idr.Body.SliceType = 2
	data = append(data, WriteNALUnit(nal.TypeIDRWRADL, 0, 1, WriteSliceHeader(idr, pps, sps))...)

	lsbs := []uint32{4, 2, 6}
	for _, lsb := range lsbs {
		sh := &SliceHeader{
			NALUnitType:                nal.TypeTrailR,
			FirstSliceSegmentInPicFlag: true,
			PPSID:                      pps.ID,
		}
		sh.Body.SliceType = 1 // P slice
		sh.Body.SlicePicOrderCntLsb = lsb
		sh.Body.ShortTermRefPicSetSPSFlag = false
		sh.Body.RPS = &ShortTermRPS{}
		data = append(data, WriteNALUnit(nal.TypeTrailR, 0, 1, WriteSliceHeader(sh, pps, sps))...)
	}

	units, err := p.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantPOC := []int32{0, 4, 2, 6}
	var gotVCL []Unit
	for _, u := range units {
		if u.SliceHeader != nil {
			gotVCL = append(gotVCL, u)
		}
	}
	if len(gotVCL) != len(wantPOC) {
		t.Fatalf("got %d VCL units, want %d", len(gotVCL), len(wantPOC))
	}
	for i, u := range gotVCL {
		if u.POC != wantPOC[i] {
			t.Errorf("unit %d: POC = %d, want %d", i, u.POC, wantPOC[i])
		}
	}
}
