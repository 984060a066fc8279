// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "testing"

func TestClip8(t *testing.T) {
	cases := []struct {
		in   int32
		want byte
	}{
		{-10, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := clip8(c.in); got != c.want {
			t.Errorf("clip8(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestAllZeroAC(t *testing.T) {
	var coef [64]int32
	if !allZeroAC(&coef) {
		t.Error("allZeroAC() on a zero block should be true")
	}
	coef[1] = 5
	if allZeroAC(&coef) {
		t.Error("allZeroAC() with a nonzero AC term should be false")
	}
	// DC alone (index 0) never affects allZeroAC.
	var dcOnly [64]int32
	dcOnly[0] = 100
	if !allZeroAC(&dcOnly) {
		t.Error("allZeroAC() should ignore coef[0]")
	}
}

func TestDequantizeScalesByNaturalOrder(t *testing.T) {
	var coef [64]int32
	coef[0], coef[1] = 2, 3
	q := &quantTable{}
	q.Natural[0], q.Natural[1] = 10, 20
	dequantize(&coef, q)
	if coef[0] != 20 || coef[1] != 60 {
		t.Errorf("dequantize() = [%d %d ...], want [20 60 ...]", coef[0], coef[1])
	}
}

func TestIDCTBlockAllZeroIsFlatGray(t *testing.T) {
	var blk [64]int32
	dst := make([]byte, 8*8)
	idctBlock(&blk, dst, 8, 0, 0)
	for i, v := range dst {
		if v != 128 {
			t.Fatalf("dst[%d] = %d, want 128 (level-shifted zero block)", i, v)
		}
	}
}

func TestIDCTBlockDCOnlyIsFlat(t *testing.T) {
	var blk [64]int32
	blk[0] = 64
	dst := make([]byte, 8*8)
	idctBlock(&blk, dst, 8, 0, 0)
	first := dst[0]
	for i, v := range dst {
		if v != first {
			t.Fatalf("dst[%d] = %d, want uniform %d (DC-only block)", i, v, first)
		}
	}
}

func TestIDCTDCOnlyMatchesFullPathForZeroAC(t *testing.T) {
	var blk [64]int32
	blk[0] = 40
	full := make([]byte, 8*8)
	idctBlock(&blk, full, 8, 0, 0)

	fast := make([]byte, 8*8)
	idctDCOnly(blk[0], fast, 8, 0, 0)

	for i := range full {
		if full[i] != fast[i] {
			t.Errorf("full[%d]=%d fast[%d]=%d, DC-only fast path should match the general IDCT", i, full[i], i, fast[i])
		}
	}
}
