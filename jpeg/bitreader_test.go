// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "testing"

func TestBitReaderReadBits(t *testing.T) {
	// 0xB5 = 1011 0101
	br := newBitReader([]byte{0xB5})
	for _, want := range []uint32{1, 0, 1, 1, 0, 1, 0, 1} {
		got, ok := br.readBit()
		if !ok {
			t.Fatal("readBit: unexpected EOF")
		}
		if got != want {
			t.Errorf("readBit() = %d, want %d", got, want)
		}
	}
}

func TestBitReaderByteStuffing(t *testing.T) {
	// 0xFF 0x00 destuffs to a single data byte 0xFF.
	br := newBitReader([]byte{0xFF, 0x00, 0x0F})
	v, ok := br.readBits(16)
	if !ok {
		t.Fatal("readBits: unexpected EOF")
	}
	if v != 0xFF0F {
		t.Errorf("readBits(16) = %#x, want 0xff0f", v)
	}
}

func TestBitReaderStopsAtMarker(t *testing.T) {
	br := newBitReader([]byte{0x00, 0xFF, 0xD9})
	if _, ok := br.readBits(8); !ok {
		t.Fatal("first byte should read fine")
	}
	if _, ok := br.readBits(1); ok {
		t.Fatal("readBits should stop at the marker instead of consuming it")
	}
	m, ok := br.tryReadMarker()
	if !ok || m != 0xD9 {
		t.Errorf("tryReadMarker() = %#x,%v, want 0xd9,true", m, ok)
	}
}

func TestReceiveExtend(t *testing.T) {
	cases := []struct {
		bits []byte
		n    int
		want int32
	}{
		{[]byte{0x00}, 1, -1}, // single 0 bit, size 1 -> -1
		{[]byte{0x80}, 1, 1},  // single 1 bit, size 1 -> 1
		{[]byte{0x00}, 0, 0},
	}
	for _, c := range cases {
		br := newBitReader(c.bits)
		got, ok := br.receiveExtend(c.n)
		if !ok {
			t.Fatalf("receiveExtend(%d): unexpected EOF", c.n)
		}
		if got != c.want {
			t.Errorf("receiveExtend(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestBitReaderCaptureRestore(t *testing.T) {
	br := newBitReader([]byte{0xAA, 0x55})
	br.readBits(5)
	s := br.capture()
	a, _ := br.readBits(4)
	br.restore(s)
	b, _ := br.readBits(4)
	if a != b {
		t.Errorf("restore did not round-trip: %#x != %#x", a, b)
	}
}

func TestSeekRestartMarkerFindsUnfetchedMarker(t *testing.T) {
	// Byte-aligned already, but nothing has tried to fill() past the
	// marker yet -- r.marker is not set passively until seekRestartMarker
	// forces the discovery.
	br := newBitReader([]byte{0xFF, 0xD2})
	m, ok := br.seekRestartMarker()
	if !ok || m != 0xD2 {
		t.Fatalf("seekRestartMarker() = %#x,%v, want 0xd2,true", m, ok)
	}
}

func TestSeekRestartMarkerSkipsStrayBytes(t *testing.T) {
	// A desynced stream with garbage before the real restart marker: the
	// tolerant scan should skip past it rather than reporting missing.
	br := newBitReader([]byte{0x42, 0x99, 0xFF, 0xD5})
	m, ok := br.seekRestartMarker()
	if !ok || m != 0xD5 {
		t.Fatalf("seekRestartMarker() = %#x,%v, want 0xd5,true", m, ok)
	}
}
