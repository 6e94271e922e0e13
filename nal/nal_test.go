/*
DESCRIPTION
  nal_test.go provides testing for NAL unit framing.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package nal

import (
	"reflect"
	"testing"
)

func TestSplitSingleVPS(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01, 0x40, 0x01, 0x0c, 0x01}
	units, err := Split(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	u := units[0]
	if u.Type != TypeVPS {
		t.Errorf("Type = %d, want %d", u.Type, TypeVPS)
	}
	if u.LayerID != 0 {
		t.Errorf("LayerID = %d, want 0", u.LayerID)
	}
	if u.TemporalIDPlus1 != 1 {
		t.Errorf("TemporalIDPlus1 = %d, want 1", u.TemporalIDPlus1)
	}
	if want := []byte{0x0c, 0x01}; !reflect.DeepEqual(u.RBSP, want) {
		t.Errorf("RBSP = %x, want %x", u.RBSP, want)
	}
	if u.StartCodeLen != 4 {
		t.Errorf("StartCodeLen = %d, want 4", u.StartCodeLen)
	}
}

func TestSplitMultipleUnitsMixedStartCodes(t *testing.T) {
	var data []byte
	data = append(data, 0x00, 0x00, 0x00, 0x01, 0x40, 0x01, 0xaa) // VPS, 4-byte start code
	data = append(data, 0x00, 0x00, 0x01, 0x42, 0x01, 0xbb)       // SPS, 3-byte start code
	data = append(data, 0x00, 0x00, 0x01, 0x26, 0x01, 0xcc)       // IDR_W_RADL (type 19), 3-byte

	units, err := Split(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}
	wantTypes := []int{TypeVPS, TypeSPS, TypeIDRWRADL}
	for i, u := range units {
		if u.Type != wantTypes[i] {
			t.Errorf("unit %d: Type = %d, want %d", i, u.Type, wantTypes[i])
		}
	}
}

func TestSplitStripsEmulationPreventionBytes(t *testing.T) {
	var data []byte
	data = append(data, 0x00, 0x00, 0x00, 0x01, 0x40, 0x01)
	data = append(data, 0x00, 0x00, 0x03, 0x01, 0x02) // EPB inside payload
	units, err := Split(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if want := []byte{0x00, 0x00, 0x01, 0x02}; !reflect.DeepEqual(units[0].RBSP, want) {
		t.Errorf("RBSP = %x, want %x", units[0].RBSP, want)
	}
	if units[0].EPBCount != 1 {
		t.Errorf("EPBCount = %d, want 1", units[0].EPBCount)
	}
}

func TestSplitRejectsForbiddenBit(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01, 0x80, 0x01, 0x00}
	_, err := Split(data)
	if err != ErrForbiddenBitSet {
		t.Errorf("got %v, want ErrForbiddenBitSet", err)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	units, err := Split(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units != nil {
		t.Errorf("got %v units, want nil", units)
	}
}

func TestUnitClassification(t *testing.T) {
	tests := []struct {
		typ      int
		irap     bool
		idr      bool
		vcl      bool
	}{
		{TypeTrailN, false, false, true},
		{TypeIDRWRADL, true, true, true},
		{TypeIDRNLP, true, true, true},
		{TypeCRA, true, false, true},
		{TypeVPS, false, false, false},
	}
	for _, test := range tests {
		u := Unit{Header: Header{Type: test.typ}}
		if got := u.IsIRAP(); got != test.irap {
			t.Errorf("type %d: IsIRAP() = %v, want %v", test.typ, got, test.irap)
		}
		if got := u.IsIDR(); got != test.idr {
			t.Errorf("type %d: IsIDR() = %v, want %v", test.typ, got, test.idr)
		}
		if got := u.IsVCL(); got != test.vcl {
			t.Errorf("type %d: IsVCL() = %v, want %v", test.typ, got, test.vcl)
		}
	}
}
