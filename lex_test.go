// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"strings"
	"testing"
)

func TestReadTokenNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want interface{}
	}{
		{"123", int64(123)},
		{"-45", int64(-45)},
		{"3.14", 3.14},
		{"-0.5", -0.5},
	}
	for _, c := range cases {
		buf := newBuffer(strings.NewReader(c.in), 0)
		got := buf.readToken()
		if got != c.want {
			t.Errorf("readToken(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestReadTokenName(t *testing.T) {
	buf := newBuffer(strings.NewReader("/Type#20Name"), 0)
	got := buf.readToken()
	n, ok := got.(name)
	if !ok {
		t.Fatalf("readToken() = %#v, want name", got)
	}
	if string(n) != "Type Name" {
		t.Errorf("name = %q, want %q (hex escape #20 decodes to space)", string(n), "Type Name")
	}
}

func TestReadTokenDictAndArray(t *testing.T) {
	buf := newBuffer(strings.NewReader("<< /A [1 2 3] >>"), 0)
	tok := buf.readToken()
	if tok != keyword("<<") {
		t.Fatalf("first token = %#v, want <<", tok)
	}
}

func TestLiteralStringEscapes(t *testing.T) {
	// Octal \101 ('A') plus a line-continuation that emits nothing.
	buf := newBuffer(strings.NewReader("(a\\101\\\nb)"), 0)
	tok := buf.readToken()
	s, ok := tok.(string)
	if !ok {
		t.Fatalf("readToken() = %#v, want string", tok)
	}
	if s != "aAb" {
		t.Errorf("literal string = %q, want %q", s, "aAb")
	}
}

func TestReadObjectParsesIndirectObjectDefinition(t *testing.T) {
	buf := newBuffer(strings.NewReader("1 0 obj\n42\nendobj"), 0)
	obj := buf.readObject()
	o, ok := obj.(objdef)
	if !ok {
		t.Fatalf("readObject() = %#v, want objdef", obj)
	}
	if o.ptr.id != 1 || o.ptr.gen != 0 {
		t.Errorf("ptr = %+v, want {1 0}", o.ptr)
	}
	if o.obj != int64(42) {
		t.Errorf("obj = %#v, want 42", o.obj)
	}
}
