// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jpeg

// progressiveState is C13 plus the buffering half of C17's progressive
// driver: coefficients accumulate in natural-order per-component buffers
// across every scan before any row is produced, since a later scan can
// refine bits anywhere in the image.
type progressiveState struct {
	h        *Header
	quant    [4]*quantTable
	dcTables [4]*huffTable
	acTables [4]*huffTable

	coeffs []progCompCoeffs
}

type progCompCoeffs struct {
	blocks       [][64]int32
	blocksPerLine int
	blocksPerCol  int
}

func newProgressiveState(h *Header, dc, ac [4]*huffTable, q [4]*quantTable) *progressiveState {
	p := &progressiveState{h: h, quant: q, dcTables: dc, acTables: ac}
	p.coeffs = make([]progCompCoeffs, len(h.Components))
	for i, c := range h.Components {
		p.coeffs[i] = progCompCoeffs{
			blocks:        make([][64]int32, c.BlocksPerLine*c.BlocksPerCol),
			blocksPerLine: c.BlocksPerLine,
			blocksPerCol:  c.BlocksPerCol,
		}
	}
	return p
}

// decodeScan runs one SOS segment's worth of entropy data into the
// component coefficient buffers, dispatching to the four §4.13 rules by
// (Ss,Ah).
func (p *progressiveState) decodeScan(scan ScanSpec, entropy []byte) error {
	br := newBitReader(entropy)
	restart := newRestartManager(p.h.RestartInterval)
	dcPred := make([]int32, len(scan.Components))
	eobRun := 0

	interleaved := len(scan.Components) > 1

	decodeOneBlock := func(sc int, bx, by int) error {
		ci := scan.Components[sc]
		blk := &p.coeffs[ci].blocks[by*p.coeffs[ci].blocksPerLine+bx]
		comp := p.h.Components[ci]
		var err error
		switch {
		case scan.Ss == 0 && scan.Ah == 0:
			err = p.decodeDCFirst(br, blk, &dcPred[sc], comp, scan.Al)
		case scan.Ss == 0:
			err = p.decodeDCRefine(br, blk, scan.Al)
		case scan.Ah == 0:
			eobRun, err = p.decodeACFirst(br, blk, comp, scan, &eobRun0Box{&eobRun})
		default:
			eobRun, err = p.decodeACRefine(br, blk, comp, scan, &eobRun0Box{&eobRun})
		}
		return err
	}

	restartAt := func() error {
		if err := restart.processRestart(br, dcPred); err != nil {
			return err
		}
		eobRun = 0
		return nil
	}

	if interleaved {
		mcusDone := 0
		for my := 0; my < p.h.MCUsPerColumn; my++ {
			for mx := 0; mx < p.h.MCUsPerLine; mx++ {
				for sc, ci := range scan.Components {
					comp := p.h.Components[ci]
					for v := 0; v < comp.V; v++ {
						for hh := 0; hh < comp.H; hh++ {
							bx := mx*comp.H + hh
							by := my*comp.V + v
							if bx >= p.coeffs[ci].blocksPerLine || by >= p.coeffs[ci].blocksPerCol {
								continue
							}
							if err := decodeOneBlock(sc, bx, by); err != nil {
								return err
							}
						}
					}
				}
				mcusDone++
				if restart.decrement() && mcusDone < p.h.MCUsPerColumn*p.h.MCUsPerLine {
					if err := restartAt(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	// Non-interleaved: a single-component scan walks that component's own
	// block grid directly, not MCU geometry.
	ci := scan.Components[0]
	cc := p.coeffs[ci]
	blocksDone := 0
	total := cc.blocksPerLine * cc.blocksPerCol
	for by := 0; by < cc.blocksPerCol; by++ {
		for bx := 0; bx < cc.blocksPerLine; bx++ {
			if err := decodeOneBlock(0, bx, by); err != nil {
				return err
			}
			blocksDone++
			if restart.decrement() && blocksDone < total {
				if err := restartAt(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// eobRun0Box lets the four decode helpers below read/update the scan's
// running EOB-run counter without every caller threading it by hand.
type eobRun0Box struct{ v *int }

func (b *eobRun0Box) get() int     { return *b.v }
func (b *eobRun0Box) set(v int)    { *b.v = v }

func (p *progressiveState) decodeDCFirst(br *bitReader, blk *[64]int32, dcPred *int32, comp Component, al int) error {
	dcTab := p.dcTables[comp.DCTable]
	cat, err := dcTab.decode(br)
	if err != nil {
		return err
	}
	diff, ok := br.receiveExtend(int(cat))
	if !ok {
		return newErr(KindTruncated, "progressive DC first", ErrTruncated)
	}
	*dcPred += diff
	blk[0] = *dcPred << uint(al)
	return nil
}

func (p *progressiveState) decodeDCRefine(br *bitReader, blk *[64]int32, al int) error {
	bit, ok := br.readBit()
	if !ok {
		return newErr(KindTruncated, "progressive DC refine", ErrTruncated)
	}
	if bit != 0 {
		blk[0] |= 1 << uint(al)
	}
	return nil
}

func (p *progressiveState) decodeACFirst(br *bitReader, blk *[64]int32, comp Component, scan ScanSpec, eob *eobRun0Box) (int, error) {
	run := eob.get()
	if run > 0 {
		eob.set(run - 1)
		return eob.get(), nil
	}
	acTab := p.acTables[comp.ACTable]
	k := scan.Ss
	for k <= scan.Se {
		rs, err := acTab.decode(br)
		if err != nil {
			return 0, err
		}
		r := int(rs >> 4)
		s := int(rs & 0x0F)
		if s == 0 {
			if r < 15 {
				extra, ok := br.readBits(r)
				if !ok {
					return 0, newErr(KindTruncated, "progressive AC first EOB", ErrTruncated)
				}
				run = (1 << uint(r)) + int(extra) - 1
				return run, nil
			}
			k += 16 // ZRL
			continue
		}
		k += r
		if k > scan.Se {
			return 0, newErr(KindStructuralMismatch, "progressive AC first", errBlockOverrun)
		}
		v, ok := br.receiveExtend(s)
		if !ok {
			return 0, newErr(KindTruncated, "progressive AC first", ErrTruncated)
		}
		blk[zigZag[k]] = v << uint(scan.Al)
		k++
	}
	return 0, nil
}

func (p *progressiveState) decodeACRefine(br *bitReader, blk *[64]int32, comp Component, scan ScanSpec, eob *eobRun0Box) (int, error) {
	acTab := p.acTables[comp.ACTable]
	bitVal := int32(1) << uint(scan.Al)
	k := scan.Ss
	run := eob.get()

	refineNonZero := func(pos int) error {
		if blk[zigZag[pos]] != 0 {
			bit, ok := br.readBit()
			if !ok {
				return newErr(KindTruncated, "progressive AC refine", ErrTruncated)
			}
			if bit != 0 && blk[zigZag[pos]]&bitVal == 0 {
				if blk[zigZag[pos]] > 0 {
					blk[zigZag[pos]] += bitVal
				} else {
					blk[zigZag[pos]] -= bitVal
				}
			}
		}
		return nil
	}

	if run == 0 {
		for k <= scan.Se {
			rs, err := acTab.decode(br)
			if err != nil {
				return 0, err
			}
			r := int(rs >> 4)
			s := int(rs & 0x0F)
			var newVal int32
			if s == 0 {
				if r < 15 {
					extra, ok := br.readBits(r)
					if !ok {
						return 0, newErr(KindTruncated, "progressive AC refine EOB", ErrTruncated)
					}
					run = (1 << uint(r)) + int(extra)
					break
				}
				// ZRL: skip 16 zero-history positions, refining any
				// nonzero coefficients found along the way.
			} else {
				bit, ok := br.readBit()
				if !ok {
					return 0, newErr(KindTruncated, "progressive AC refine sign", ErrTruncated)
				}
				if bit != 0 {
					newVal = bitVal
				} else {
					newVal = -bitVal
				}
			}
			zeroesToSkip := r
			for k <= scan.Se {
				if blk[zigZag[k]] != 0 {
					if err := refineNonZero(k); err != nil {
						return 0, err
					}
					k++
					continue
				}
				if zeroesToSkip == 0 {
					break
				}
				zeroesToSkip--
				k++
			}
			if k <= scan.Se {
				if s != 0 {
					blk[zigZag[k]] = newVal
				}
				k++
			}
		}
	}

	if run > 0 {
		for ; k <= scan.Se; k++ {
			if err := refineNonZero(k); err != nil {
				return 0, err
			}
		}
		run--
	}
	return run, nil
}
