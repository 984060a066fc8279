// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"testing"
)

// buildFlateStreamPDF assembles a one-object PDF whose object 1 is a
// FlateDecode stream wrapping n bytes of repeated 'A', so its decoded
// size is easy to pick relative to a test's MaxStreamBytes limit.
func buildFlateStreamPDF(t *testing.T, n int) []byte {
	t.Helper()
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(bytes.Repeat([]byte{'A'}, n)); err != nil {
		t.Fatalf("zlib.Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib.Close: %v", err)
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	objOffset := b.Len()
	fmt.Fprintf(&b, "1 0 obj\n<< /Length %d /Filter /FlateDecode >>\nstream\n", compressed.Len())
	b.Write(compressed.Bytes())
	b.WriteString("\nendstream\nendobj\n")

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", objOffset)
	fmt.Fprintf(&b, "trailer\n<< /Size 2 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", xrefOffset)
	return b.Bytes()
}

func TestValueReaderEnforcesMaxStreamBytes(t *testing.T) {
	data := buildFlateStreamPDF(t, 4096)
	r := newTestReader(t, data)

	limits := DefaultParseLimits()
	limits.MaxStreamBytes = 256
	r.SetParseLimits(limits)

	v := r.resolve(objptr{}, objptr{1, 0})
	if v.Kind() != Stream {
		t.Fatalf("resolve(1 0): Kind() = %v, want Stream", v.Kind())
	}
	rd := v.Reader()
	defer rd.Close()

	_, err := io.Copy(io.Discard, rd)
	if err == nil {
		t.Fatal("io.Copy should fail once the decoded stream exceeds MaxStreamBytes, got nil error")
	}
	if !strings.Contains(err.Error(), "MaxStreamBytes") {
		t.Fatalf("err = %v, want it to mention MaxStreamBytes", err)
	}
}

func TestValueReaderWithoutLimitsReadsFullStream(t *testing.T) {
	data := buildFlateStreamPDF(t, 4096)
	r := newTestReader(t, data)

	v := r.resolve(objptr{}, objptr{1, 0})
	rd := v.Reader()
	defer rd.Close()

	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 4096 {
		t.Fatalf("len(got) = %d, want 4096 (no limit configured)", len(got))
	}
}
