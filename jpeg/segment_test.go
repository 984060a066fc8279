// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "testing"

func TestNextMarkerSkipsPadding(t *testing.T) {
	p := newSegParser([]byte{0x00, 0xFF, 0xFF, 0xFF, 0xD8, 0x00})
	m, err := p.nextMarker()
	if err != nil {
		t.Fatalf("nextMarker: %v", err)
	}
	if m != markerSOI {
		t.Errorf("nextMarker() = %#x, want SOI", m)
	}
}

func TestNextMarkerSkipsStuffedZero(t *testing.T) {
	// 0xFF 0x00 inside the marker stream (not a valid marker) is skipped.
	p := newSegParser([]byte{0xFF, 0x00, 0xFF, 0xD9})
	m, err := p.nextMarker()
	if err != nil {
		t.Fatalf("nextMarker: %v", err)
	}
	if m != markerEOI {
		t.Errorf("nextMarker() = %#x, want EOI", m)
	}
}

func TestSegmentReadsLengthPrefixedBody(t *testing.T) {
	// length field 0x0006 covers itself plus 4 bytes of body.
	p := newSegParser([]byte{0x00, 0x06, 0xAA, 0xBB, 0xCC, 0xDD, 0xFF})
	body, err := p.segment()
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if len(body) != len(want) {
		t.Fatalf("segment() len = %d, want %d", len(body), len(want))
	}
	for i := range want {
		if body[i] != want[i] {
			t.Errorf("body[%d] = %#x, want %#x", i, body[i], want[i])
		}
	}
}

func TestEntropyRegionStopsAtRealMarker(t *testing.T) {
	// 0xFF00 is stuffed data, 0xFFD0 is a restart marker (skipped over too),
	// 0xFFD9 is EOI and should stop the region.
	data := []byte{0x01, 0xFF, 0x00, 0x02, 0xFF, 0xD0, 0x03, 0xFF, 0xD9}
	p := newSegParser(data)
	region := p.entropyRegion()
	want := []byte{0x01, 0xFF, 0x00, 0x02, 0xFF, 0xD0, 0x03}
	if len(region) != len(want) {
		t.Fatalf("entropyRegion() len = %d, want %d (region=%x)", len(region), len(want), region)
	}
	if p.pos != 7 {
		t.Errorf("pos after entropyRegion = %d, want 7 (pointing at trailing FF D9)", p.pos)
	}
}

func TestParseDQT8Bit(t *testing.T) {
	body := make([]byte, 1+64)
	body[0] = 0x00 // precision 0 (8-bit), table id 0
	for i := 0; i < 64; i++ {
		body[1+i] = byte(i + 1)
	}
	tables, ids, err := parseDQT(body)
	if err != nil {
		t.Fatalf("parseDQT: %v", err)
	}
	if len(tables) != 1 || ids[0] != 0 {
		t.Fatalf("parseDQT() = %d tables, ids=%v, want 1 table id 0", len(tables), ids)
	}
	if tables[0].Natural[0] != 1 || tables[0].Natural[63] != 64 {
		t.Errorf("Natural[0]=%d Natural[63]=%d, want 1,64", tables[0].Natural[0], tables[0].Natural[63])
	}
}

func TestParseSOFBaseline(t *testing.T) {
	// precision=8, height=16, width=16, 1 component (id=1, H=1,V=1, Tq=0).
	body := []byte{8, 0, 16, 0, 16, 1, 1, 0x11, 0}
	h, err := parseSOF(body, false)
	if err != nil {
		t.Fatalf("parseSOF: %v", err)
	}
	if h.Width != 16 || h.Height != 16 {
		t.Fatalf("dimensions = %dx%d, want 16x16", h.Width, h.Height)
	}
	if len(h.Components) != 1 {
		t.Fatalf("len(Components) = %d, want 1", len(h.Components))
	}
	if h.MCUsPerLine != 2 || h.MCUsPerColumn != 2 {
		t.Errorf("MCUsPerLine/Column = %d/%d, want 2/2", h.MCUsPerLine, h.MCUsPerColumn)
	}
}

func TestParseSOFRejectsNonEightBitPrecision(t *testing.T) {
	body := []byte{12, 0, 16, 0, 16, 1, 1, 0x11, 0}
	if _, err := parseSOF(body, false); err == nil {
		t.Fatal("parseSOF with 12-bit precision should be rejected")
	}
}

func TestParseSOSMapsComponentsAndSelectors(t *testing.T) {
	h := &Header{Components: []Component{{ID: 1}, {ID: 2}}}
	body := []byte{2, 1, 0x01, 2, 0x23, 0, 63, 0}
	scan, err := parseSOS(body, h)
	if err != nil {
		t.Fatalf("parseSOS: %v", err)
	}
	if len(scan.Components) != 2 || scan.Components[0] != 0 || scan.Components[1] != 1 {
		t.Fatalf("scan.Components = %v, want [0 1]", scan.Components)
	}
	if h.Components[0].DCTable != 0 || h.Components[0].ACTable != 1 {
		t.Errorf("component 0 DC/AC = %d/%d, want 0/1", h.Components[0].DCTable, h.Components[0].ACTable)
	}
	if h.Components[1].DCTable != 2 || h.Components[1].ACTable != 3 {
		t.Errorf("component 1 DC/AC = %d/%d, want 2/3", h.Components[1].DCTable, h.Components[1].ACTable)
	}
	if scan.Se != 63 {
		t.Errorf("Se = %d, want 63", scan.Se)
	}
}

func TestParseAPP14AdobeTransform(t *testing.T) {
	body := append([]byte("Adobe"), make([]byte, 7)...)
	body[11] = 2 // YCCK
	tr, ok := parseAPP14(body)
	if !ok {
		t.Fatal("parseAPP14: not recognised as Adobe segment")
	}
	if tr != TransformYCCK {
		t.Errorf("transform = %d, want TransformYCCK", tr)
	}
}
