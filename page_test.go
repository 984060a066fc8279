// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"fmt"
	"testing"
)

// buildSimplePagePDF assembles a minimal, structurally valid one-page PDF
// whose Page dictionary inherits MediaBox/Resources from its parent Pages
// node, matching §8 scenario 1's linearised-PDF shape (without the actual
// linearisation dictionary).
func buildSimplePagePDF() []byte {
	var b bytes.Buffer
	var offsets []int
	b.WriteString("%PDF-1.7\n")

	offsets = append(offsets, b.Len())
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets = append(offsets, b.Len())
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] /Resources << /Font << >> >> >>\nendobj\n")

	offsets = append(offsets, b.Len())
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /Rotate 90 >>\nendobj\n")

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 4\n")
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", xrefOffset)
	return b.Bytes()
}

func newTestReader(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return r
}

func TestPageInheritsMediaBoxAndResources(t *testing.T) {
	r := newTestReader(t, buildSimplePagePDF())
	if n := r.NumPage(); n != 1 {
		t.Fatalf("NumPage() = %d, want 1", n)
	}
	page := r.Page(1)
	if page.V.IsNull() {
		t.Fatal("Page(1) is null")
	}
	mb := page.MediaBox()
	want := [4]float64{0, 0, 612, 792}
	for i, w := range want {
		if got := mb.Index(i).Float64(); got != w {
			t.Errorf("MediaBox[%d] = %v, want %v", i, got, w)
		}
	}
	if page.Resources().Kind() != Dict {
		t.Errorf("Resources() kind = %v, want Dict (inherited from Pages node)", page.Resources().Kind())
	}
}

func TestPageRotateNormalizes(t *testing.T) {
	r := newTestReader(t, buildSimplePagePDF())
	if got := r.Page(1).Rotate(); got != 90 {
		t.Errorf("Rotate() = %d, want 90", got)
	}
}

func TestPageOutOfRange(t *testing.T) {
	r := newTestReader(t, buildSimplePagePDF())
	if p := r.Page(2); !p.V.IsNull() {
		t.Errorf("Page(2) = %+v, want null page", p.V)
	}
}

func TestCropBoxFallsBackToMediaBox(t *testing.T) {
	r := newTestReader(t, buildSimplePagePDF())
	page := r.Page(1)
	cb := page.CropBox()
	mb := page.MediaBox()
	for i := 0; i < 4; i++ {
		if cb.Index(i).Float64() != mb.Index(i).Float64() {
			t.Errorf("CropBox[%d] = %v, want it to fall back to MediaBox[%d] = %v", i, cb.Index(i).Float64(), i, mb.Index(i).Float64())
		}
	}
}

// buildSelfParentPagePDF builds a one-page PDF whose Page dictionary's
// /Parent points back at the page itself, with no MediaBox anywhere in
// the (degenerate) chain.
func buildSelfParentPagePDF() []byte {
	var b bytes.Buffer
	var offsets []int
	b.WriteString("%PDF-1.7\n")

	offsets = append(offsets, b.Len())
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets = append(offsets, b.Len())
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets = append(offsets, b.Len())
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 3 0 R >>\nendobj\n")

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 4\n")
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", xrefOffset)
	return b.Bytes()
}

// TestFindInheritedSelfParentTerminates guards against a page whose
// /Parent points at itself: the inheritance walk must stop rather than
// recursing forever, and an attribute absent from the whole (degenerate)
// chain should resolve to null.
func TestFindInheritedSelfParentTerminates(t *testing.T) {
	r := newTestReader(t, buildSelfParentPagePDF())
	page := r.Page(1)
	if page.V.IsNull() {
		t.Fatal("Page(1) is null")
	}
	if mb := page.MediaBox(); !mb.IsNull() {
		t.Errorf("MediaBox() = %+v, want null (no MediaBox anywhere in the self-referential chain)", mb)
	}
	if rot := page.Rotate(); rot != 0 {
		t.Errorf("Rotate() = %d, want 0 (missing Rotate defaults to 0)", rot)
	}
}
