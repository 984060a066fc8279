// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

// zigZag maps zig-zag scan order (as DQT/entropy data present coefficients)
// to natural (row-major) order within an 8x8 block.
var zigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// quantTable stores a DQT table in both orders (C11): Natural is indexed by
// row-major block position, matching the IDCT engine's fused dequant step;
// ZigZag is indexed the way DQT segments and entropy-coded coefficients are.
type quantTable struct {
	Natural [64]int32
	ZigZag  [64]int32
}

func newQuantTable(values [64]int32) *quantTable {
	t := &quantTable{ZigZag: values}
	for i, v := range values {
		t.Natural[zigZag[i]] = v
	}
	return t
}
