// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "testing"

// tinyGrayJPEG is a hand-built 8x8 single-component baseline JPEG: one MCU,
// one block, DC symbol 0 (diff=0) followed immediately by an AC EOB, both
// drawn from minimal one-entry canonical Huffman tables (a single length-1
// code "0" in each). Quant table entries are all 1, so dequantised
// coefficients equal the raw (all-zero) ones, and the IDCT of an all-zero
// block is a flat level-shifted 128 gray.
var tinyGrayJPEG = []byte{
	0xFF, 0xD8, // SOI
	0xFF, 0xDB, 0x00, 0x43, 0x00, // DQT, Pq/Tq=0
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0xFF, 0xC0, 0x00, 0x0B, // SOF0
	8, 0x00, 0x08, 0x00, 0x08, 1, 1, 0x11, 0,
	0xFF, 0xC4, 0x00, 0x14, // DHT DC
	0x00, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x00,
	0xFF, 0xC4, 0x00, 0x14, // DHT AC
	0x10, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x00,
	0xFF, 0xDA, 0x00, 0x08, // SOS
	1, 1, 0x00, 0, 63, 0,
	0b00111111, // entropy: DC "0", AC "0" (EOB), padded with 1s
	0xFF, 0xD9, // EOI
}

func TestDecoderTinyBaselineAllZeroIsFlatGray(t *testing.T) {
	dec, err := NewDecoder(tinyGrayJPEG)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if dec.Header.Width != 8 || dec.Header.Height != 8 {
		t.Fatalf("Header dims = %dx%d, want 8x8", dec.Header.Width, dec.Header.Height)
	}
	row := make([]byte, dec.Stride())
	rows := 0
	for {
		ok, err := dec.TryReadRow(row)
		if err != nil {
			t.Fatalf("TryReadRow: %v", err)
		}
		if !ok {
			break
		}
		for i, v := range row {
			if v != 128 {
				t.Fatalf("row %d byte %d = %d, want 128", rows, i, v)
			}
		}
		rows++
	}
	if rows != 8 {
		t.Fatalf("decoded %d rows, want 8", rows)
	}
}
