// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "testing"

func TestHuffmanSingleBitCode(t *testing.T) {
	// One symbol at code length 1: code "0" -> symbol 0x05.
	var counts [16]byte
	counts[0] = 1
	tbl := buildHuffTable(counts, []byte{0x05})

	br := newBitReader([]byte{0x00})
	sym, err := tbl.decode(br)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sym != 0x05 {
		t.Errorf("decode() = %#x, want 0x05", sym)
	}
}

func TestHuffmanTwoBitCodes(t *testing.T) {
	// Two symbols at code length 2, assigned in symbol order: 0xAA -> "00",
	// 0xBB -> "01".
	var counts [16]byte
	counts[1] = 2
	tbl := buildHuffTable(counts, []byte{0xAA, 0xBB})

	br := newBitReader([]byte{0x10}) // bits: 0001 0000
	first, err := tbl.decode(br)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if first != 0xAA {
		t.Errorf("first symbol = %#x, want 0xaa", first)
	}
	second, err := tbl.decode(br)
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if second != 0xBB {
		t.Errorf("second symbol = %#x, want 0xbb", second)
	}
}

func TestHuffmanLongCodeBeyondFastPath(t *testing.T) {
	// A single symbol at code length 9 exercises the slow bit-at-a-time
	// fallback (huffFastBits == 8).
	var counts [16]byte
	counts[8] = 1
	tbl := buildHuffTable(counts, []byte{0x42})

	// Code of length 9 with all-zero codeword is bits "000000000".
	br := newBitReader([]byte{0x00, 0x00})
	sym, err := tbl.decode(br)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sym != 0x42 {
		t.Errorf("decode() = %#x, want 0x42", sym)
	}
}

func TestHuffmanMissReturnsError(t *testing.T) {
	var counts [16]byte
	counts[0] = 1
	tbl := buildHuffTable(counts, []byte{0x01}) // code "0" is the only valid code

	br := newBitReader([]byte{0xFF, 0x00, 0xFF, 0x00}) // all-ones, destuffed
	if _, err := tbl.decode(br); err == nil {
		t.Fatal("decode() with no matching code should return an error")
	}
}
