// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// A Page represents a single page in a PDF file.
// The methods interpret a Page dictionary stored in V.
type Page struct {
	V Value
}

// Page returns the page for the given page number.
// Page numbers are indexed starting at 1, not 0.
// If the page is not found, Page returns a Page with p.V.IsNull().
func (r *Reader) Page(num int) Page {
	num-- // now 0-indexed
	page := r.Trailer().Key("Root").Key("Pages")
Search:
	for page.Key("Type").Name() == "Pages" {
		count := int(page.Key("Count").Int64())
		if count < num {
			return Page{V: Value{}}
		}
		kids := page.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			if kid.Key("Type").Name() == "Pages" {
				c := int(kid.Key("Count").Int64())
				if num < c {
					page = kid
					continue Search
				}
				num -= c
				continue
			}
			if kid.Key("Type").Name() == "Page" {
				if num == 0 {
					return Page{V: kid}
				}
				num--
			}
		}
		break
	}
	return Page{V: Value{}}
}

// NumPage returns the number of pages in the PDF file.
func (r *Reader) NumPage() int {
	return int(r.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

// findInherited walks up the /Parent chain looking for key, since several
// page attributes (MediaBox, CropBox, Resources, Rotate) are only required
// on the Pages node that first sets them and are inherited by their kids.
//
// The walk tracks visited object numbers so a page tree whose /Parent
// points back at a node already seen (including a page pointing at
// itself) terminates instead of looping forever.
func (p Page) findInherited(key string) Value {
	seen := map[objptr]bool{}
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if v.ptr != (objptr{}) {
			if seen[v.ptr] {
				break
			}
			seen[v.ptr] = true
		}
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return Value{}
}

// MediaBox returns the page's media box, walking the Pages tree for an
// inherited value if the page itself does not set one.
func (p Page) MediaBox() Value {
	return p.findInherited("MediaBox")
}

// CropBox returns the page's crop box, falling back to MediaBox when the
// page tree defines no CropBox at all.
func (p Page) CropBox() Value {
	if v := p.findInherited("CropBox"); !v.IsNull() {
		return v
	}
	return p.MediaBox()
}

// Rotate returns the page's /Rotate value normalized into [0, 90, 180, 270].
// A missing or malformed Rotate is treated as 0, per PDF 32000-1:2008 §7.7.3.3.
func (p Page) Rotate() int {
	v := p.findInherited("Rotate")
	if v.IsNull() {
		return 0
	}
	deg := int(v.Int64()) % 360
	if deg < 0 {
		deg += 360
	}
	deg -= deg % 90
	return deg
}

// Resources returns the resources dictionary associated with the page.
func (p Page) Resources() Value {
	return p.findInherited("Resources")
}
