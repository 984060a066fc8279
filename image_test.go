// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"context"
	"testing"

	"github.com/anthropics/gopdf/jpeg"
)

// tinyGrayJPEG is the same hand-built 8x8 single-component, all-zero-AC
// baseline fixture used in jpeg's own decoder test: one MCU, one block, a
// flat 128-gray result once decoded.
var tinyGrayJPEG = []byte{
	0xFF, 0xD8,
	0xFF, 0xDB, 0x00, 0x43, 0x00,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0xFF, 0xC0, 0x00, 0x0B,
	8, 0x00, 0x08, 0x00, 0x08, 1, 1, 0x11, 0,
	0xFF, 0xC4, 0x00, 0x14,
	0x00, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x00,
	0xFF, 0xC4, 0x00, 0x14,
	0x10, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x00,
	0xFF, 0xDA, 0x00, 0x08,
	1, 1, 0x00, 0, 63, 0,
	0b00111111,
	0xFF, 0xD9,
}

func TestReadAllRowsContextHappyPath(t *testing.T) {
	dec, err := jpeg.NewDecoder(tinyGrayJPEG)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	out, err := ReadAllRowsContext(context.Background(), dec)
	if err != nil {
		t.Fatalf("ReadAllRowsContext: %v", err)
	}
	if len(out) != dec.Stride()*dec.Header.Height {
		t.Fatalf("len(out) = %d, want %d", len(out), dec.Stride()*dec.Header.Height)
	}
	for i, v := range out {
		if v != 128 {
			t.Fatalf("out[%d] = %d, want 128", i, v)
		}
	}
}

func TestReadAllRowsContextHonorsCancellation(t *testing.T) {
	dec, err := jpeg.NewDecoder(tinyGrayJPEG)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ReadAllRowsContext(ctx, dec)
	if err == nil {
		t.Fatal("ReadAllRowsContext with a cancelled context should fail, got nil error")
	}
}
