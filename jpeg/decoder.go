// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

import "fmt"

// Decoder is C17: it parses the full marker structure up front (all input
// is resident, per the byte-cursor design notes), then exposes a pull API,
// TryReadRow, that produces interleaved-component rows top-to-bottom.
type Decoder struct {
	Header Header

	quant    [4]*quantTable
	dcTables [4]*huffTable
	acTables [4]*huffTable

	baseline *baselineDriver
	prog     *progressiveState

	row       int
	band      []byte
	bandRows  int
	bandStart int
	stride    int
}

// NewDecoder parses every segment from SOI to EOI, decodes all scans up
// front for a progressive image (a baseline image streams its first scan
// later, row by row), and returns a Decoder ready to pull rows from. It returns an error
// classified per §7 if the stream is truncated or uses an unsupported
// feature (non-8-bit precision, an unrecognised SOF marker).
func NewDecoder(data []byte) (*Decoder, error) {
	p := newSegParser(data)
	m, err := p.nextMarker()
	if err != nil {
		return nil, err
	}
	if m != markerSOI {
		return nil, newErr(KindStructuralMismatch, "decode", ErrNoSOI)
	}

	d := &Decoder{}
	var scans []ScanSpec
	var entropies [][]byte
	var restartInterval int

	for {
		m, err := p.nextMarker()
		if err != nil {
			return nil, err
		}
		switch {
		case m == markerEOI:
			goto doneParsing
		case m == markerSOF0 || m == markerSOF2:
			body, err := p.segment()
			if err != nil {
				return nil, err
			}
			h, err := parseSOF(body, m == markerSOF2)
			if err != nil {
				return nil, err
			}
			jfif, adobe, transform := d.Header.JFIF, d.Header.Adobe, d.Header.Transform
			d.Header = *h
			d.Header.JFIF = jfif
			if adobe {
				d.Header.Adobe = true
				d.Header.Transform = transform
			}
		case m >= 0xC1 && m <= 0xCF && m != markerDHT && m != 0xC8 && m != 0xCC:
			// SOF1, SOF3 and SOF5-SOF15: frame types other than baseline
			// and progressive Huffman.
			return nil, newErr(KindUnsupportedFeature, "decode", fmt.Errorf("unsupported frame type SOF%d", m-0xC0))
		case m == markerDQT:
			body, err := p.segment()
			if err != nil {
				return nil, err
			}
			tables, ids, err := parseDQT(body)
			if err != nil {
				return nil, err
			}
			for i, id := range ids {
				if id < len(d.quant) {
					d.quant[id] = tables[i]
				}
			}
		case m == markerDHT:
			body, err := p.segment()
			if err != nil {
				return nil, err
			}
			entries, err := parseDHT(body)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if e.id >= 4 {
					continue
				}
				if e.class == 0 {
					d.dcTables[e.id] = e.table
				} else {
					d.acTables[e.id] = e.table
				}
			}
		case m == markerDRI:
			body, err := p.segment()
			if err != nil {
				return nil, err
			}
			if len(body) >= 2 {
				restartInterval = int(body[0])<<8 | int(body[1])
			}
		case m == markerSOS:
			body, err := p.segment()
			if err != nil {
				return nil, err
			}
			if d.Header.Width == 0 {
				return nil, newErr(KindStructuralMismatch, "decode", ErrNoSOF)
			}
			scan, err := parseSOS(body, &d.Header)
			if err != nil {
				return nil, err
			}
			entropy := p.entropyRegion()
			scans = append(scans, scan)
			entropies = append(entropies, entropy)
		case m >= markerAPP0 && m <= markerAPPF:
			body, err := p.segment()
			if err != nil {
				return nil, err
			}
			if m == markerAPP0 && parseAPP0(body) {
				d.Header.JFIF = true
			}
			if m == markerAPP14 {
				if t, ok := parseAPP14(body); ok {
					d.Header.Adobe = true
					d.Header.Transform = t
				}
			}
		case m == markerCOM:
			if _, err := p.segment(); err != nil {
				return nil, err
			}
		case m >= 0xD0 && m <= 0xD7:
			// Stray restart marker outside a scan; ignore.
		default:
			if _, err := p.segment(); err != nil {
				return nil, err
			}
		}
	}
doneParsing:

	if len(scans) == 0 {
		return nil, newErr(KindStructuralMismatch, "decode", ErrNoSOF)
	}
	d.Header.RestartInterval = restartInterval
	d.stride = outputComponents(&d.Header) * d.Header.Width
	d.band = make([]byte, d.Header.MCUHeight*d.stride)

	if d.Header.Progressive {
		ps := newProgressiveState(&d.Header, d.dcTables, d.acTables, d.quant)
		for i, scan := range scans {
			if err := ps.decodeScan(scan, entropies[i]); err != nil {
				return nil, err
			}
		}
		d.prog = ps
	} else {
		d.baseline = newBaselineDriver(&d.Header, scans[0], entropies[0], d.dcTables, d.acTables, d.quant)
	}
	return d, nil
}

// TryReadRow fills buf (which must be at least Header.Width*outputComponents(&Header)
// bytes) with the next interleaved row and returns true, or returns false
// once current_row has reached Header.Height.
func (d *Decoder) TryReadRow(buf []byte) (bool, error) {
	if d.row >= d.Header.Height {
		return false, nil
	}
	if d.bandRows == 0 {
		if err := d.fillBand(); err != nil {
			return false, err
		}
		if d.bandRows == 0 {
			return false, nil
		}
	}
	off := d.bandStart * d.stride
	copy(buf, d.band[off:off+d.stride])
	d.bandStart++
	d.bandRows--
	d.row++
	return true, nil
}

func (d *Decoder) fillBand() error {
	d.bandStart = 0
	if d.baseline != nil {
		rows, err := d.baseline.decodeBand(d.band, d.stride)
		if err != nil {
			return err
		}
		d.bandRows = rows
		return nil
	}
	return d.fillProgressiveBand()
}

// fillProgressiveBand produces the next MCU row of output by running IDCT
// over the already fully-decoded coefficient buffers, matching the
// property that progressive output is invariant to scan decode order since
// decoding happened entirely before any row was requested.
func (d *Decoder) fillProgressiveBand() error {
	mcuRow := d.row / d.Header.MCUHeight
	if mcuRow >= d.Header.MCUsPerColumn {
		d.bandRows = 0
		return nil
	}
	tiles := make([]componentTile, len(d.Header.Components))
	for i, c := range d.Header.Components {
		tiles[i] = componentTile{
			w: 8 * c.H, h: 8 * c.V,
			hScale: d.Header.HMax / c.H, vScale: d.Header.VMax / c.V,
			pix: make([]byte, 8*c.H*8*c.V),
		}
	}
	for mcuCol := 0; mcuCol < d.Header.MCUsPerLine; mcuCol++ {
		for ci, c := range d.Header.Components {
			cc := d.prog.coeffs[ci]
			q := d.quant[c.TQ]
			for v := 0; v < c.V; v++ {
				for hh := 0; hh < c.H; hh++ {
					bx := mcuCol*c.H + hh
					by := mcuRow*c.V + v
					var natural [64]int32
					if bx < cc.blocksPerLine && by < cc.blocksPerCol {
						natural = cc.blocks[by*cc.blocksPerLine+bx]
						dequantize(&natural, q)
					}
					tile := &tiles[ci]
					if allZeroAC(&natural) {
						idctDCOnly(natural[0], tile.pix, tile.w, hh*8, v*8)
					} else {
						idctBlock(&natural, tile.pix, tile.w, hh*8, v*8)
					}
				}
			}
		}
		x0 := mcuCol * d.Header.MCUWidth
		cols := d.Header.MCUWidth
		if x0+cols > d.Header.Width {
			cols = d.Header.Width - x0
		}
		rows := d.Header.MCUHeight
		if (mcuRow+1)*d.Header.MCUHeight > d.Header.Height {
			rows = d.Header.Height - mcuRow*d.Header.MCUHeight
		}
		writeMCU(&d.Header, tiles, d.band, d.stride, x0, 0, rows, cols)
	}
	rows := d.Header.MCUHeight
	if (mcuRow+1)*d.Header.MCUHeight > d.Header.Height {
		rows = d.Header.Height - mcuRow*d.Header.MCUHeight
	}
	d.bandRows = rows
	return nil
}

// Stride returns the number of bytes per output row (Width * component
// count), matching the invariant that H.width*H.component_count equals the
// driver's output stride.
func (d *Decoder) Stride() int { return d.stride }
