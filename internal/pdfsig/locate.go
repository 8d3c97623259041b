// Package pdfsig implements C4: PDF object-graph parsing, signature
// dictionary location, ByteRange/Contents extraction, byte-range digesting,
// and DSS detection.
package pdfsig

import (
	"io"

	pdflib "github.com/digitorus/pdf"

	"github.com/blastrider/notar-verify/internal/verrors"
)

// Document wraps an opened PDF object graph together with the underlying
// reader the byte ranges are later read from.
type Document struct {
	reader *pdflib.Reader
	file   io.ReaderAt
	size   int64
}

// Open parses the size bytes readable from file into an in-memory object table. Fails PdfParse on
// malformed input.
func Open(file io.ReaderAt, size int64) (*Document, error) {
	rdr, err := pdflib.NewReader(file, size)
	if err != nil {
		return nil, verrors.Wrap(verrors.PdfParse, "failed to parse PDF object graph", err)
	}
	return &Document{reader: rdr, file: file, size: size}, nil
}

// Size returns the total length of the underlying PDF file.
func (d *Document) Size() int64 { return d.size }

// FindSignatureDict walks AcroForm.Fields, filtering by FT = Sig, and
// returns the first signature dictionary encountered — the "intended
// target behaviour" over a cruder whole-object-table scan. Fails
// NoSignature if the form has no signature fields at all.
func (d *Document) FindSignatureDict() (pdflib.Value, error) {
	root := d.reader.Trailer().Key("Root")
	acroForm := root.Key("AcroForm")

	var found pdflib.Value
	ok := false

	var traverse func(pdflib.Value) bool
	traverse = func(arr pdflib.Value) bool {
		if arr.IsNull() || arr.Kind() != pdflib.Array {
			return true
		}
		for i := 0; i < arr.Len(); i++ {
			field := arr.Index(i)

			if field.Key("FT").Name() == "Sig" {
				v := field.Key("V")
				if isSignatureValue(v) {
					found = v
					ok = true
					return false
				}
			}

			kids := field.Key("Kids")
			if !kids.IsNull() {
				if !traverse(kids) {
					return false
				}
			}
		}
		return true
	}

	traverse(acroForm.Key("Fields"))

	if !ok {
		return pdflib.Value{}, verrors.New(verrors.NoSignature, "no signature field found in AcroForm.Fields")
	}
	return found, nil
}

func isSignatureValue(v pdflib.Value) bool {
	if v.IsNull() {
		return false
	}
	sigType := v.Key("Type").Name()
	if sigType == "Sig" || sigType == "DocTimeStamp" {
		return true
	}
	return !v.Key("Filter").IsNull() && !v.Key("Contents").IsNull()
}
