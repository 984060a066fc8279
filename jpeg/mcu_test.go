// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "testing"

func TestComponentTileSampleAtUpsamples(t *testing.T) {
	tile := componentTile{
		pix:    []byte{10, 20, 30, 40},
		w:      2,
		h:      2,
		hScale: 2,
		vScale: 2,
	}
	cases := []struct{ x, y int; want byte }{
		{0, 0, 10}, {1, 0, 10}, {2, 0, 20}, {3, 0, 20},
		{0, 2, 30}, {0, 3, 30}, {2, 2, 40},
	}
	for _, c := range cases {
		if got := tile.sampleAt(c.x, c.y); got != c.want {
			t.Errorf("sampleAt(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestComponentTileSampleAtClampsEdge(t *testing.T) {
	tile := componentTile{pix: []byte{1, 2, 3, 4}, w: 2, h: 2, hScale: 1, vScale: 1}
	if got := tile.sampleAt(5, 5); got != 4 {
		t.Errorf("sampleAt(5,5) = %d, want clamped 4 (bottom-right sample)", got)
	}
}

func TestYCbCrToRGBGray(t *testing.T) {
	// Cb=Cr=128 is neutral chroma: RGB should equal Y.
	r, g, b := ycbcrToRGB(200, 128, 128)
	if r != 200 || g != 200 || b != 200 {
		t.Errorf("ycbcrToRGB(200,128,128) = (%d,%d,%d), want (200,200,200)", r, g, b)
	}
}

func TestYCbCrToRGBClips(t *testing.T) {
	r, _, _ := ycbcrToRGB(255, 128, 255)
	if r != 255 {
		t.Errorf("ycbcrToRGB red channel = %d, want clipped to 255", r)
	}
}

func TestWriteGraySingleComponent(t *testing.T) {
	tile := componentTile{pix: []byte{7, 8, 9, 10}, w: 2, h: 2, hScale: 1, vScale: 1}
	out := make([]byte, 4*4)
	writeMCU(&Header{Components: []Component{{}}}, []componentTile{tile}, out, 4, 0, 0, 2, 2)
	if out[0] != 7 || out[1] != 8 || out[4] != 9 || out[5] != 10 {
		t.Errorf("writeGray output = %v, want [7 8 _ _ 9 10 ...]", out)
	}
}

func TestWriteYCCKInvertsRGBToCMY(t *testing.T) {
	y := componentTile{pix: []byte{200}, w: 1, h: 1, hScale: 1, vScale: 1}
	cb := componentTile{pix: []byte{128}, w: 1, h: 1, hScale: 1, vScale: 1}
	cr := componentTile{pix: []byte{128}, w: 1, h: 1, hScale: 1, vScale: 1}
	k := componentTile{pix: []byte{50}, w: 1, h: 1, hScale: 1, vScale: 1}
	out := make([]byte, 4)
	h := &Header{Components: []Component{{}, {}, {}, {}}, Transform: TransformYCCK}
	writeMCU(h, []componentTile{y, cb, cr, k}, out, 4, 0, 0, 1, 1)
	if out[0] != 55 || out[1] != 55 || out[2] != 55 || out[3] != 50 {
		t.Errorf("writeYCCK output = %v, want [55 55 55 50] (255-200=55, K passthrough)", out)
	}
}
