// compatibility.go - PDF version compatibility handling
package pdf

import "fmt"

// PDFVersion represents a PDF version as read from the file header.
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version string.
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SupportedVersions lists the header versions this reader accepts.
var SupportedVersions = []PDFVersion{
	{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5}, {1, 6}, {1, 7},
	{2, 0},
}

// IsSupported reports whether v is one of SupportedVersions.
func (v PDFVersion) IsSupported() bool {
	for _, sv := range SupportedVersions {
		if sv.Major == v.Major && sv.Minor == v.Minor {
			return true
		}
	}
	return false
}

// parsePDFVersion extracts the PDF version from a %PDF-M.m header.
func parsePDFVersion(data []byte) (PDFVersion, error) {
	sig := "%PDF-"
	sigIdx := -1
	for i := 0; i+len(sig) <= len(data); i++ {
		if string(data[i:i+len(sig)]) == sig {
			sigIdx = i
			break
		}
	}
	if sigIdx == -1 {
		return PDFVersion{}, fmt.Errorf("not a PDF file: missing %%PDF- header")
	}
	if sigIdx+8 > len(data) {
		return PDFVersion{}, fmt.Errorf("not a PDF file: truncated header")
	}

	major := int(data[sigIdx+5] - '0')
	minor := int(data[sigIdx+7] - '0')
	return PDFVersion{Major: major, Minor: minor}, nil
}
