// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/gopdf/jpeg"
)

// Image represents an image XObject reached through a page's resources
// (§4.18). V is the XObject's stream dictionary.
type Image struct {
	V Value
}

// Images returns every /Image XObject directly referenced by the page's
// /Resources /XObject dictionary.
func (p Page) Images() []Image {
	xobj := p.Resources().Key("XObject")
	if xobj.Kind() != Dict {
		return nil
	}
	var out []Image
	for _, name := range xobj.Keys() {
		v := xobj.Key(name)
		if v.Kind() == Stream && v.Key("Subtype").Name() == "Image" {
			out = append(out, Image{V: v})
		}
	}
	return out
}

// IsDCTEncoded reports whether the image's immediate filter is
// /DCTDecode, the only encoding this package's jpeg codec understands.
func (im Image) IsDCTEncoded() bool {
	f := im.V.Key("Filter")
	switch f.Kind() {
	case Name:
		return f.Name() == "DCTDecode"
	case Array:
		return f.Len() > 0 && f.Index(f.Len()-1).Name() == "DCTDecode"
	}
	return false
}

// DecodeJPEG returns a jpeg.Decoder over the image's entropy-coded bytes.
// The stream's own Reader() already applies any filters ahead of
// DCTDecode (e.g. a Crypt filter) and per-object decryption; DCTDecode
// itself is a passthrough (§1: filter decoding is external to the codec),
// so the bytes handed to jpeg.NewDecoder are exactly the JPEG byte stream.
func (im Image) DecodeJPEG() (*jpeg.Decoder, error) {
	if !im.IsDCTEncoded() {
		return nil, wrapError(KindUnsupportedFeature, "decode image", fmt.Errorf("image is not DCTDecode-encoded"))
	}
	rd := im.V.Reader()
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, wrapError(KindTruncated, "read image stream", err)
	}
	dec, err := jpeg.NewDecoder(data)
	if err != nil {
		return nil, wrapError(KindStructuralMismatch, "parse JPEG", err)
	}
	return dec, nil
}

// ReadAllRows pulls every row of decoded image data, returning one
// interleaved byte slice of Height rows of Stride() bytes each.
func ReadAllRows(dec *jpeg.Decoder) ([]byte, error) {
	return ReadAllRowsContext(context.Background(), dec)
}

// ReadAllRowsContext is ReadAllRows with cancellation: row-pulling is the
// other long-running loop besides xref/trailer loading (NewReaderContext
// honors ctx the same way, via the same contextChecker), and a large
// progressive image can pull many rows, so this checks ctx every row
// rather than only once up front.
func ReadAllRowsContext(ctx context.Context, dec *jpeg.Decoder) ([]byte, error) {
	cc := newContextChecker(ctx, 1)
	stride := dec.Stride()
	out := make([]byte, stride*dec.Header.Height)
	row := make([]byte, stride)
	for i := 0; i < dec.Header.Height; i++ {
		if cc.CheckNow() {
			return nil, wrapError(KindUnsupportedFeature, "decode JPEG row", ErrContextCancelled)
		}
		ok, err := dec.TryReadRow(row)
		if err != nil {
			return nil, wrapError(KindUnsupportedFeature, "decode JPEG row", err)
		}
		if !ok {
			break
		}
		copy(out[i*stride:(i+1)*stride], row)
	}
	return out, nil
}
