// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
)

// TestXrefPrevSelfCycleTerminates builds a trailer whose /Prev points back
// at its own xref table's offset. The walk must stop instead of looping
// forever, degrading to the partial index already built (here, the one
// table it read) rather than failing outright.
func TestXrefPrevSelfCycleTerminates(t *testing.T) {
	base := "%PDF-1.4\n"
	xrefOffset := len(base)

	section := fmt.Sprintf(
		"xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Root 1 0 R /Prev %d >>\n",
		xrefOffset,
	)
	data := []byte(base + section)

	r := &Reader{f: bytes.NewReader(data), end: int64(len(data)), cacheCap: 2000}
	b := newBuffer(io.NewSectionReader(r.f, int64(xrefOffset), r.end-int64(xrefOffset)), int64(xrefOffset))

	table, _, _, err := readXref(r, b, nil)
	if err != nil {
		t.Fatalf("readXref: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("len(table) = %d, want 1 (the partial index built before the cycle was detected)", len(table))
	}
}

// TestXrefPrevTwoCycleTerminates covers a longer cycle: table A's /Prev
// points to table B, and B's /Prev points back to A.
func TestXrefPrevTwoCycleTerminates(t *testing.T) {
	base := "%PDF-1.4\n"
	aOffset := len(base)

	// bOffset depends on A's encoded length, which in turn depends on
	// bOffset's own digit count -- pick a value wide enough (a fixed
	// width field) that the two are independent.
	aTemplate := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Root 1 0 R /Prev %09d >>\n"
	aSection := fmt.Sprintf(aTemplate, 0)
	bOffset := aOffset + len(aSection)

	aSection = fmt.Sprintf(aTemplate, bOffset)
	data := []byte(base + aSection)

	bSection := fmt.Sprintf("xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Root 1 0 R /Prev %09d >>\n", aOffset)
	data = append(data, []byte(bSection)...)

	r := &Reader{f: bytes.NewReader(data), end: int64(len(data)), cacheCap: 2000}
	b := newBuffer(io.NewSectionReader(r.f, int64(aOffset), r.end-int64(aOffset)), int64(aOffset))

	table, _, _, err := readXref(r, b, nil)
	if err != nil {
		t.Fatalf("readXref: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("len(table) = %d, want 1", len(table))
	}
}

// TestXrefPrevChainHonorsCancellation builds a two-table /Prev chain (A
// points to B, no cycle) and drives the walk with an already-cancelled
// context. The walk must stop before following Prev into B, returning the
// partial table built from A alone along with the context's error.
func TestXrefPrevChainHonorsCancellation(t *testing.T) {
	base := "%PDF-1.4\n"
	aOffset := len(base)

	aTemplate := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Root 1 0 R /Prev %09d >>\n"
	bOffset := aOffset + len(fmt.Sprintf(aTemplate, 0))
	data := []byte(base + fmt.Sprintf(aTemplate, bOffset))

	bSection := "xref\n1 1\n0000000000 65535 f \ntrailer\n<< /Size 2 /Root 1 0 R >>\n"
	data = append(data, []byte(bSection)...)

	r := &Reader{f: bytes.NewReader(data), end: int64(len(data)), cacheCap: 2000}
	b := newBuffer(io.NewSectionReader(r.f, int64(aOffset), r.end-int64(aOffset)), int64(aOffset))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cc := newContextChecker(ctx, 1000)

	table, _, _, err := readXref(r, b, cc)
	if err == nil {
		t.Fatal("readXref with a cancelled context should fail, got nil error")
	}
	if len(table) != 1 {
		t.Fatalf("len(table) = %d, want 1 (B must not be visited once the context is cancelled)", len(table))
	}
}
