// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pdfcli inspects a PDF's page tree and, on request, decodes the
// first DCTDecode image XObject it finds on a page to a PPM file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	pdf "github.com/anthropics/gopdf"
)

func main() {
	page := flag.Int("page", 0, "page number to inspect (1-indexed); 0 lists every page")
	password := flag.String("password", "", "password to try if the document is encrypted")
	recoverFlag := flag.Bool("recover", false, "attempt xref/trailer recovery before giving up")
	dumpImage := flag.String("dump-image", "", "write the first DCTDecode image on -page to this PPM path")
	checkFlag := flag.Bool("check", false, "report structural integrity (header/xref/trailer) and exit, without fully opening the document")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pdfcli [options] file.pdf")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *checkFlag {
		reportIntegrity(path)
		return
	}

	reader, closer, err := openDocument(path, *password, *recoverFlag)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	if *page <= 0 {
		listPages(reader)
		return
	}
	describePage(reader, *page)
	if *dumpImage != "" {
		if err := dumpFirstImage(reader, *page, *dumpImage); err != nil {
			log.Fatalf("dump-image: %v", err)
		}
	}
}

// reportIntegrity runs the quick structural check (no object-graph parse)
// and prints a one-line-per-field summary, exiting non-zero if the file
// doesn't look like a usable PDF at all.
func reportIntegrity(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		log.Fatalf("stat %s: %v", path, err)
	}
	status := pdf.CheckIntegrity(f, fi.Size())
	fmt.Printf("valid=%v truncated=%v header=%v eof=%v startxref=%v xref=%v trailer=%v estimated_objects=%d\n",
		status.IsValid, status.IsTruncated, status.HasValidHeader, status.HasValidEOF,
		status.HasStartxref, status.HasXref, status.HasTrailer, status.EstimatedObjects)
	for _, issue := range status.Issues {
		fmt.Printf("issue: %s\n", issue)
	}
	if !status.IsValid {
		os.Exit(1)
	}
}

func openDocument(path, password string, allowRecover bool) (*pdf.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	reader, err := pdf.NewReaderEncrypted(f, fi.Size(), func() string { return password })
	if err == nil {
		return reader, f, nil
	}
	f.Close()
	if !allowRecover {
		return nil, nil, err
	}
	rf, rerr := os.Open(path)
	if rerr != nil {
		return nil, nil, err
	}
	rfi, rerr := rf.Stat()
	if rerr != nil {
		rf.Close()
		return nil, nil, err
	}
	reader, rerr = pdf.RecoverPDF(rf, rfi.Size(), pdf.DefaultRecoveryOptions())
	if rerr != nil {
		rf.Close()
		return nil, nil, err
	}
	return reader, rf, nil
}

func listPages(reader *pdf.Reader) {
	n := reader.NumPage()
	fmt.Printf("%d page(s)\n", n)
	for i := 1; i <= n; i++ {
		describePage(reader, i)
	}
}

func describePage(reader *pdf.Reader, num int) {
	page := reader.Page(num)
	if page.V.IsNull() {
		fmt.Printf("page %d: not found\n", num)
		return
	}
	mb := page.MediaBox()
	fmt.Printf("page %d: media_box=[%v %v %v %v] rotate=%d images=%d\n",
		num, mb.Index(0), mb.Index(1), mb.Index(2), mb.Index(3),
		page.Rotate(), len(page.Images()))
}

func dumpFirstImage(reader *pdf.Reader, num int, outPath string) error {
	page := reader.Page(num)
	for _, im := range page.Images() {
		if !im.IsDCTEncoded() {
			continue
		}
		dec, err := im.DecodeJPEG()
		if err != nil {
			return err
		}
		pixels, err := pdf.ReadAllRows(dec)
		if err != nil {
			return err
		}
		return writePPM(outPath, dec.Header.Width, dec.Header.Height, len(dec.Header.Components), pixels)
	}
	return fmt.Errorf("no DCTDecode image found on page %d", num)
}

// writePPM writes a binary PPM (P6, RGB) or PGM (P5, grayscale). Four
// component output (CMYK/YCCK) has no plain PPM representation and is
// rejected rather than silently mis-rendered.
func writePPM(path string, width, height, components int, pixels []byte) error {
	if components != 1 && components != 3 {
		return fmt.Errorf("cannot write %d-component image as PPM/PGM", components)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if components == 1 {
		fmt.Fprintf(w, "P5\n%d %d\n255\n", width, height)
	} else {
		fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height)
	}
	if _, err := w.Write(pixels); err != nil {
		return err
	}
	return w.Flush()
}
