// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

// componentTile holds one component's decoded samples for the current MCU,
// at that component's own sampling resolution (8*H x 8*V), plus the H/V
// factors needed to upsample it back to MCU geometry.
type componentTile struct {
	pix    []byte
	w, h   int // 8*H, 8*V
	hScale int // HMax / H
	vScale int // VMax / V
}

func (t *componentTile) sampleAt(x, y int) byte {
	sx := x / t.hScale
	sy := y / t.vScale
	if sx >= t.w {
		sx = t.w - 1
	}
	if sy >= t.h {
		sy = t.h - 1
	}
	return t.pix[sy*t.w+sx]
}

// writeMCU is C15: it selects one of the four colour specialisations by
// component count and colour model, upsamples by nearest-neighbour
// replication using each component's H/V factors, and writes band rows
// clipped to the image bounds.
//
// out is the output band for the current MCU row, stride bytes per row.
// x0,y0 is the MCU's top-left pixel within that band. rows/cols bound how much of
// the MCU is actually inside the image (right/bottom MCUs clip).
func writeMCU(h *Header, tiles []componentTile, out []byte, stride, x0, y0, rows, cols int) {
	switch {
	case len(tiles) == 1:
		writeGray(tiles, out, stride, x0, y0, rows, cols)
	case len(tiles) == 3 && h.Transform == TransformNone:
		writeRGBDirect(tiles, out, stride, x0, y0, rows, cols)
	case len(tiles) == 3:
		writeYCbCr(tiles, out, stride, x0, y0, rows, cols)
	case len(tiles) == 4 && h.Transform == TransformYCCK:
		writeYCCK(tiles, out, stride, x0, y0, rows, cols)
	default:
		writeCMYK(tiles, out, stride, x0, y0, rows, cols)
	}
}

func writeGray(tiles []componentTile, out []byte, stride, x0, y0, rows, cols int) {
	y := tiles[0]
	for r := 0; r < rows; r++ {
		rowOff := (y0+r)*stride + x0
		for c := 0; c < cols; c++ {
			out[rowOff+c] = y.sampleAt(c, r)
		}
	}
}

func writeRGBDirect(tiles []componentTile, out []byte, stride, x0, y0, rows, cols int) {
	for r := 0; r < rows; r++ {
		rowOff := (y0+r)*stride + x0*3
		for c := 0; c < cols; c++ {
			out[rowOff+c*3+0] = tiles[0].sampleAt(c, r)
			out[rowOff+c*3+1] = tiles[1].sampleAt(c, r)
			out[rowOff+c*3+2] = tiles[2].sampleAt(c, r)
		}
	}
}

// ycbcrToRGB applies the ITU-T T.871 conversion with half-up rounding,
// clipped to [0,255].
func ycbcrToRGB(yy, cb, cr byte) (r, g, b byte) {
	Y := float64(yy)
	Cb := float64(cb) - 128
	Cr := float64(cr) - 128
	r = clipRound(Y + 1.402*Cr)
	g = clipRound(Y - 0.344136*Cb - 0.714136*Cr)
	b = clipRound(Y + 1.772*Cb)
	return
}

func clipRound(v float64) byte {
	v += 0.5
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func writeYCbCr(tiles []componentTile, out []byte, stride, x0, y0, rows, cols int) {
	for r := 0; r < rows; r++ {
		rowOff := (y0+r)*stride + x0*3
		for c := 0; c < cols; c++ {
			y := tiles[0].sampleAt(c, r)
			cb := tiles[1].sampleAt(c, r)
			cr := tiles[2].sampleAt(c, r)
			rr, gg, bb := ycbcrToRGB(y, cb, cr)
			out[rowOff+c*3+0] = rr
			out[rowOff+c*3+1] = gg
			out[rowOff+c*3+2] = bb
		}
	}
}

func writeYCCK(tiles []componentTile, out []byte, stride, x0, y0, rows, cols int) {
	for r := 0; r < rows; r++ {
		rowOff := (y0+r)*stride + x0*4
		for c := 0; c < cols; c++ {
			y := tiles[0].sampleAt(c, r)
			cb := tiles[1].sampleAt(c, r)
			cr := tiles[2].sampleAt(c, r)
			k := tiles[3].sampleAt(c, r)
			rr, gg, bb := ycbcrToRGB(y, cb, cr)
			out[rowOff+c*4+0] = 255 - rr
			out[rowOff+c*4+1] = 255 - gg
			out[rowOff+c*4+2] = 255 - bb
			out[rowOff+c*4+3] = k
		}
	}
}

func writeCMYK(tiles []componentTile, out []byte, stride, x0, y0, rows, cols int) {
	for r := 0; r < rows; r++ {
		rowOff := (y0+r)*stride + x0*4
		for c := 0; c < cols; c++ {
			for p := 0; p < 4; p++ {
				out[rowOff+c*4+p] = tiles[p].sampleAt(c, r)
			}
		}
	}
}

// outputComponents returns the number of interleaved bytes per pixel this
// header's MCU writer produces.
func outputComponents(h *Header) int {
	return len(h.Components)
}
