/*
DESCRIPTION
  bits_test.go provides testing for the bit reader and writer.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

import (
	"bytes"
	"errors"
	"testing"
)

// binToSlice converts a string of binary into a corresponding byte slice,
// e.g. "0100 0001 1000 1100" => {0x41,0x8c}. Spaces are ignored.
func binToSlice(s string) ([]byte, error) {
	var (
		a   byte = 0x80
		cur byte
		out []byte
	)
	for i, c := range s {
		switch c {
		case ' ':
			continue
		case '1':
			cur |= a
		case '0':
		default:
			return nil, errors.New("invalid binary string")
		}
		a >>= 1
		if a == 0 || i == (len(s)-1) {
			out = append(out, cur)
			cur = 0
			a = 0x80
		}
	}
	return out, nil
}

func TestReadBits(t *testing.T) {
	in, err := binToSlice("1011 0010 1100 1101")
	if err != nil {
		t.Fatalf("binToSlice failed: %v", err)
	}
	br := NewBitReader(bytes.NewReader(in))

	got, err := br.ReadBits(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint64(0xb); got != want {
		t.Errorf("got %x want %x", got, want)
	}

	got, err = br.ReadBits(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint64(0x2c); got != want {
		t.Errorf("got %x want %x", got, want)
	}
}

func TestReadFlag(t *testing.T) {
	in, err := binToSlice("1010 0000")
	if err != nil {
		t.Fatalf("binToSlice failed: %v", err)
	}
	br := NewBitReader(bytes.NewReader(in))
	want := []bool{true, false, true, false}
	for i, w := range want {
		got, err := br.ReadFlag()
		if err != nil {
			t.Fatalf("unexpected error at bit %d: %v", i, err)
		}
		if got != w {
			t.Errorf("bit %d: got %v want %v", i, got, w)
		}
	}
}

func TestReadUE(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1", 0},
		{"010", 1},
		{"011", 2},
		{"00100", 3},
		{"00101", 4},
		{"00110", 5},
		{"00111", 6},
		{"0001000", 7},
	}
	for i, test := range tests {
		in, err := binToSlice(test.in)
		if err != nil {
			t.Fatalf("test %d: binToSlice failed: %v", i, err)
		}
		br := NewBitReader(bytes.NewReader(in))
		got, err := br.ReadUE()
		if err != nil {
			t.Fatalf("test %d: unexpected error: %v", i, err)
		}
		if got != test.want {
			t.Errorf("test %d: got %d want %d", i, got, test.want)
		}
	}
}

func TestReadSE(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1", 0},
		{"010", 1},
		{"011", -1},
		{"00100", 2},
		{"00101", -2},
		{"00110", 3},
		{"00111", -3},
	}
	for i, test := range tests {
		in, err := binToSlice(test.in)
		if err != nil {
			t.Fatalf("test %d: binToSlice failed: %v", i, err)
		}
		br := NewBitReader(bytes.NewReader(in))
		got, err := br.ReadSE()
		if err != nil {
			t.Fatalf("test %d: unexpected error: %v", i, err)
		}
		if got != test.want {
			t.Errorf("test %d: got %d want %d", i, got, test.want)
		}
	}
}

func TestReadBitsExhausted(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xff}))
	if _, err := br.ReadBits(8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := br.ReadBits(1); err != ErrStreamExhausted {
		t.Errorf("got %v want ErrStreamExhausted", err)
	}
}

func TestRBSPReaderStripsEmulationPreventionBytes(t *testing.T) {
	// 0x00 0x00 0x03 0x01 encodes the two bytes 0x00 0x00 followed by the
	// real byte 0x01, with 0x03 being the emulation-prevention byte.
	rbsp := []byte{0x00, 0x00, 0x03, 0x01, 0x02}
	br := NewRBSPReader(rbsp)

	want := []byte{0x00, 0x00, 0x01, 0x02}
	for i, w := range want {
		got, err := br.ReadBits(8)
		if err != nil {
			t.Fatalf("byte %d: unexpected error: %v", i, err)
		}
		if byte(got) != w {
			t.Errorf("byte %d: got %x want %x", i, got, w)
		}
	}
	if got := br.EPBCount(); got != 1 {
		t.Errorf("EPBCount() = %d, want 1", got)
	}
}

func TestRBSPReaderDoesNotStripTwoZerosThenNonThree(t *testing.T) {
	rbsp := []byte{0x00, 0x00, 0x01}
	br := NewRBSPReader(rbsp)
	for i, w := range rbsp {
		got, err := br.ReadBits(8)
		if err != nil {
			t.Fatalf("byte %d: unexpected error: %v", i, err)
		}
		if byte(got) != w {
			t.Errorf("byte %d: got %x want %x", i, got, w)
		}
	}
	if got := br.EPBCount(); got != 0 {
		t.Errorf("EPBCount() = %d, want 0", got)
	}
}

func TestPeekBitsDoesNotAdvance(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xa5}))
	peeked, err := br.PeekBits(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peeked != 0xa5 {
		t.Errorf("PeekBits() = %x, want a5", peeked)
	}
	got, err := br.ReadBits(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0xa5 {
		t.Errorf("ReadBits() after PeekBits = %x, want a5", got)
	}
}

func TestBitWriterRoundTripUE(t *testing.T) {
	vals := []uint64{0, 1, 2, 3, 4, 5, 6, 7, 100, 1000}
	bw := NewBitWriter()
	for _, v := range vals {
		bw.PutUE(v)
	}
	bw.RBSPTrailingBits()

	br := NewBitReader(bytes.NewReader(bw.Bytes()))
	for _, want := range vals {
		got, err := br.ReadUE()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("got %d want %d", got, want)
		}
	}
}

func TestBitWriterRoundTripSE(t *testing.T) {
	vals := []int64{0, 1, -1, 2, -2, 3, -3, 100, -100}
	bw := NewBitWriter()
	for _, v := range vals {
		bw.PutSE(v)
	}
	bw.RBSPTrailingBits()

	br := NewBitReader(bytes.NewReader(bw.Bytes()))
	for _, want := range vals {
		got, err := br.ReadSE()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("got %d want %d", got, want)
		}
	}
}

func TestBitWriterByteAlign(t *testing.T) {
	bw := NewBitWriter()
	bw.PutBits(3, 0x5)
	bw.ByteAlign()
	if !bw.ByteAligned() {
		t.Fatal("expected writer to be byte aligned")
	}
	if got, want := bw.Len(), 1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}
