// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

// Fixed-point constants for the accurate integer IDCT (ITU T.81 Annex A.3.3
// style, CONST_BITS=13, PASS1_BITS=2), per C14. blk holds natural-order,
// already-dequantised coefficients on entry.
const (
	idctBits  = 13
	pass1Bits = 2
	fix0298   = 2446  // 0.298631336
	fix0390   = 3196  // 0.390180644
	fix0541   = 4433  // 0.541196100
	fix0765   = 6270  // 0.765366865
	fix0899   = 7373  // 0.899976223
	fix1175   = 9633  // 1.175875602
	fix1501   = 12299 // 1.501321110
	fix1847   = 15137 // 1.847759065
	fix1961   = 16069 // 1.961570560
	fix2053   = 16819 // 2.053119869
	fix2562   = 20995 // 2.562915447
	fix3072   = 25172 // 3.072711026
)

// idctBlock performs the two-pass scaled-integer IDCT plus level shift and
// clip described in §4.14, writing 8x8 bytes into dst at the given stride
// starting at (x0,y0). The column pass (idct1DPass1) descales by
// CONST_BITS-PASS1_BITS so its output fits a second round of fixed-point
// multiplication; the row pass (idct1DPass2) leaves its result at full
// scale, and the combined CONST_BITS+PASS1_BITS+3 descale plus level shift
// happens once, here, after both passes.
func idctBlock(blk *[64]int32, dst []byte, stride, x0, y0 int) {
	var tmp [64]int32

	for i := 0; i < 8; i++ {
		idct1DPass1(blk[i:], 8, tmp[i*8:i*8+8], 1)
	}
	for i := 0; i < 8; i++ {
		idct1DPass2(tmp[i:], 8, tmp[i:], 8)
	}

	for row := 0; row < 8; row++ {
		rowOff := (y0+row)*stride + x0
		if rowOff < 0 || rowOff+8 > len(dst) {
			continue
		}
		for col := 0; col < 8; col++ {
			v := (tmp[col*8+row] + (1 << 17)) >> 18
			v += 128
			dst[rowOff+col] = clip8(v)
		}
	}
}

// idctButterfly computes the shared even/odd-part arithmetic of the 1-D
// IDCT, returning the four even-part sums/differences and the four odd-part
// combinations, all still at the caller's input scale (no final descale).
func idctButterfly(s0, s1, s2, s3, s4, s5, s6, s7 int32) (x0, x1, x2, x3, t0, t1, t2, t3 int32) {
	// Even part.
	p2 := s2
	p3 := s6
	p1 := (p2 + p3) * fix0541
	e2 := p1 + p3*(-fix1847)
	e3 := p1 + p2*fix0765

	p2 = s0
	p3 = s4
	a0 := (p2 + p3) << idctBits
	a1 := (p2 - p3) << idctBits

	x0 = a0 + e3
	x3 = a0 - e3
	x1 = a1 + e2
	x2 = a1 - e2

	// Odd part.
	o0 := s7
	o1 := s5
	o2 := s3
	o3 := s1

	p3 = o0 + o2
	p4 := o1 + o3
	p1 = o0 + o3
	p2 = o1 + o2
	p5 := (p3 + p4) * fix1175

	o0 = o0 * fix0298
	o1 = o1 * fix2053
	o2 = o2 * fix3072
	o3 = o3 * fix1501
	p1 = p5 + p1*(-fix0899)
	p2 = p5 + p2*(-fix2562)
	p3 = p3 * (-fix1961)
	p4 = p4 * (-fix0390)

	o3 += p1 + p4
	o2 += p2 + p3
	o1 += p2 + p4
	o0 += p1 + p3

	return x0, x1, x2, x3, o0, o1, o2, o3
}

// idct1DPass1 is the column pass: descale by CONST_BITS-PASS1_BITS=11 with
// rounding, leaving PASS1_BITS of extra scale for the row pass to consume.
func idct1DPass1(src []int32, srcStride int, dst []int32, dstStride int) {
	s0 := src[0*srcStride]
	s1 := src[1*srcStride]
	s2 := src[2*srcStride]
	s3 := src[3*srcStride]
	s4 := src[4*srcStride]
	s5 := src[5*srcStride]
	s6 := src[6*srcStride]
	s7 := src[7*srcStride]

	if s1|s2|s3|s4|s5|s6|s7 == 0 {
		v := s0 << pass1Bits
		for i := 0; i < 8; i++ {
			dst[i*dstStride] = v
		}
		return
	}

	x0, x1, x2, x3, t0, t1, t2, t3 := idctButterfly(s0, s1, s2, s3, s4, s5, s6, s7)
	const rnd = 1 << (11 - 1)
	dst[0*dstStride] = (x0 + t3 + rnd) >> 11
	dst[7*dstStride] = (x0 - t3 + rnd) >> 11
	dst[1*dstStride] = (x1 + t2 + rnd) >> 11
	dst[6*dstStride] = (x1 - t2 + rnd) >> 11
	dst[2*dstStride] = (x2 + t1 + rnd) >> 11
	dst[5*dstStride] = (x2 - t1 + rnd) >> 11
	dst[3*dstStride] = (x3 + t0 + rnd) >> 11
	dst[4*dstStride] = (x3 - t0 + rnd) >> 11
}

// idct1DPass2 is the row pass: its output is left at full CONST_BITS scale
// (plus the PASS1_BITS carried over from pass 1); idctBlock applies the one
// combined final descale, level shift and clamp afterward.
func idct1DPass2(src []int32, srcStride int, dst []int32, dstStride int) {
	s0 := src[0*srcStride]
	s1 := src[1*srcStride]
	s2 := src[2*srcStride]
	s3 := src[3*srcStride]
	s4 := src[4*srcStride]
	s5 := src[5*srcStride]
	s6 := src[6*srcStride]
	s7 := src[7*srcStride]

	if s1|s2|s3|s4|s5|s6|s7 == 0 {
		v := s0 << idctBits
		for i := 0; i < 8; i++ {
			dst[i*dstStride] = v
		}
		return
	}

	x0, x1, x2, x3, t0, t1, t2, t3 := idctButterfly(s0, s1, s2, s3, s4, s5, s6, s7)
	dst[0*dstStride] = x0 + t3
	dst[7*dstStride] = x0 - t3
	dst[1*dstStride] = x1 + t2
	dst[6*dstStride] = x1 - t2
	dst[2*dstStride] = x2 + t1
	dst[5*dstStride] = x2 - t1
	dst[3*dstStride] = x3 + t0
	dst[4*dstStride] = x3 - t0
}

// idctDCOnly is the fast path from §4.14: when every AC coefficient of a
// block is zero, every output pixel is a single rounded DC value (the
// combined two-pass descale above collapses to (dc+4)>>3 for a lone DC term).
func idctDCOnly(dc int32, dst []byte, stride, x0, y0 int) {
	v := clip8(((dc + 4) >> 3) + 128)
	for row := 0; row < 8; row++ {
		rowOff := (y0+row)*stride + x0
		if rowOff < 0 || rowOff+8 > len(dst) {
			continue
		}
		for col := 0; col < 8; col++ {
			dst[rowOff+col] = v
		}
	}
}

func clip8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// dequantize multiplies natural-order coefficients by the natural-order
// quant table entries, fusing dequantisation into the IDCT's first pass as
// the design notes permit.
func dequantize(coef *[64]int32, q *quantTable) {
	for i := 0; i < 64; i++ {
		coef[i] *= q.Natural[i]
	}
}

// allZeroAC reports whether every AC coefficient (indices 1..63, natural
// order) is zero, selecting the fast IDCT path.
func allZeroAC(coef *[64]int32) bool {
	for i := 1; i < 64; i++ {
		if coef[i] != 0 {
			return false
		}
	}
	return true
}
