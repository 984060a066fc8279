// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

// baselineDriver implements C12 + the baseline half of C17: it streams one
// MCU row of output per decodeBand call, decoding each component's blocks
// with differential DC + run-length AC (§4.12) straight into that row's
// component tiles, then handing them to the MCU writer.
type baselineDriver struct {
	h       *Header
	scan    ScanSpec
	br      *bitReader
	restart *restartManager
	dcPred  []int32 // one per scan component, indexed the same as scan.Components

	dcTables [4]*huffTable
	acTables [4]*huffTable
	quant    [4]*quantTable

	mcuRow  int
	stride  int
	tiles   []componentTile
}

func newBaselineDriver(h *Header, scan ScanSpec, entropy []byte, dc, ac [4]*huffTable, q [4]*quantTable) *baselineDriver {
	d := &baselineDriver{
		h:        h,
		scan:     scan,
		br:       newBitReader(entropy),
		restart:  newRestartManager(h.RestartInterval),
		dcPred:   make([]int32, len(scan.Components)),
		dcTables: dc,
		acTables: ac,
		quant:    q,
		stride:   h.MCUWidth, // not read; decodeBand takes the output stride as a parameter
	}
	d.tiles = make([]componentTile, len(scan.Components))
	for i, ci := range scan.Components {
		c := h.Components[ci]
		d.tiles[i] = componentTile{
			w: 8 * c.H, h: 8 * c.V,
			hScale: h.HMax / c.H, vScale: h.VMax / c.V,
			pix: make([]byte, 8*c.H*8*c.V),
		}
	}
	return d
}

// decodeBlock reads one 8x8 block for scan component index sc (differential
// DC, then run-length AC per §4.12), dequantises, and IDCTs it straight
// into the component tile at block offset (bx,by) within the current MCU.
func (d *baselineDriver) decodeBlock(sc int, bx, by int) error {
	ci := d.scan.Components[sc]
	comp := d.h.Components[ci]
	dcTab := d.dcTables[comp.DCTable]
	acTab := d.acTables[comp.ACTable]
	q := d.quant[comp.TQ]

	var coefZZ [64]int32
	cat, err := dcTab.decode(d.br)
	if err != nil {
		return err
	}
	diff, ok := d.br.receiveExtend(int(cat))
	if !ok {
		return newErr(KindTruncated, "decode DC", ErrTruncated)
	}
	d.dcPred[sc] += diff
	coefZZ[0] = d.dcPred[sc]

	k := 1
	for k < 64 {
		rs, err := acTab.decode(d.br)
		if err != nil {
			return err
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)
		if size == 0 {
			if run == 15 {
				k += 16
				continue
			}
			break // EOB
		}
		k += run
		if k >= 64 {
			return newErr(KindStructuralMismatch, "decode AC", errBlockOverrun)
		}
		v, ok := d.br.receiveExtend(size)
		if !ok {
			return newErr(KindTruncated, "decode AC", ErrTruncated)
		}
		coefZZ[k] = v
		k++
	}

	var natural [64]int32
	for i, v := range coefZZ {
		natural[zigZag[i]] = v
	}
	dequantize(&natural, q)

	tile := &d.tiles[sc]
	if allZeroAC(&natural) {
		idctDCOnly(natural[0], tile.pix, tile.w, bx*8, by*8)
	} else {
		idctBlock(&natural, tile.pix, tile.w, bx*8, by*8)
	}
	return nil
}

// decodeBand decodes one full MCU row into out (an already-sized
// MCUHeight*stride buffer) and returns how many of those rows are within
// the image (bottom-edge MCUs are partially off-image per §4.15).
func (d *baselineDriver) decodeBand(out []byte, stride int) (int, error) {
	if d.mcuRow >= d.h.MCUsPerColumn {
		return 0, nil
	}
	for mcuCol := 0; mcuCol < d.h.MCUsPerLine; mcuCol++ {
		for sc, ci := range d.scan.Components {
			comp := d.h.Components[ci]
			for v := 0; v < comp.V; v++ {
				for hh := 0; hh < comp.H; hh++ {
					if err := d.decodeBlock(sc, hh, v); err != nil {
						return 0, err
					}
				}
			}
		}
		x0 := mcuCol * d.h.MCUWidth
		cols := d.h.MCUWidth
		if x0+cols > d.h.Width {
			cols = d.h.Width - x0
		}
		rows := d.h.MCUHeight
		if (d.mcuRow+1)*d.h.MCUHeight > d.h.Height {
			rows = d.h.Height - d.mcuRow*d.h.MCUHeight
		}
		writeMCU(d.h, d.tiles, out, stride, x0, 0, rows, cols)

		if d.restart.decrement() && !(mcuCol == d.h.MCUsPerLine-1 && d.mcuRow == d.h.MCUsPerColumn-1) {
			if err := d.restart.processRestart(d.br, d.dcPred); err != nil {
				return 0, err
			}
		}
	}
	d.mcuRow++
	rows := d.h.MCUHeight
	if d.mcuRow*d.h.MCUHeight > d.h.Height {
		rows = d.h.Height - (d.mcuRow-1)*d.h.MCUHeight
	}
	return rows, nil
}

type blockOverrunError struct{}

func (blockOverrunError) Error() string { return "AC run length overruns the 64-coefficient block" }

var errBlockOverrun = blockOverrunError{}
