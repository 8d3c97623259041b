package pdfsig

import (
	"fmt"
	"io"

	pdflib "github.com/digitorus/pdf"

	"github.com/blastrider/notar-verify/internal/verrors"
)

// Segment is one (offset, length) pair of a ByteRange array.
type Segment struct {
	Offset int64
	Length int64
}

// ByteRange reads the ByteRange array of v as an even-length sequence of
// Segments, per §4.4 step 3. Fails NoByteRange if the array is missing, odd
// in length, or empty.
func ByteRange(v pdflib.Value) ([]Segment, error) {
	br := v.Key("ByteRange")
	if br.IsNull() || br.Kind() != pdflib.Array || br.Len() == 0 || br.Len()%2 != 0 {
		return nil, verrors.New(verrors.NoByteRange, "ByteRange missing or of odd length")
	}

	segs := make([]Segment, 0, br.Len()/2)
	for i := 0; i < br.Len(); i += 2 {
		segs = append(segs, Segment{
			Offset: br.Index(i).Int64(),
			Length: br.Index(i + 1).Int64(),
		})
	}
	return segs, nil
}

// CheckBounds validates that every segment lies within [0, fileSize]. Fails
// ByteRangeOutOfBounds otherwise, per §4.4 step 5.
func CheckBounds(segs []Segment, fileSize int64) error {
	for _, s := range segs {
		if s.Offset < 0 || s.Length < 0 || s.Offset+s.Length > fileSize {
			return verrors.New(verrors.ByteRangeOutOfBounds,
				fmt.Sprintf("segment [%d, %d) escapes file of length %d", s.Offset, s.Offset+s.Length, fileSize))
		}
	}
	return nil
}

// ReadSegments concatenates the byte ranges from file, in order, into one
// buffer — the signed payload PAdES signers actually digest.
func ReadSegments(file io.ReaderAt, segs []Segment) ([]byte, error) {
	var total int64
	readers := make([]io.Reader, 0, len(segs))
	for _, s := range segs {
		readers = append(readers, io.NewSectionReader(file, s.Offset, s.Length))
		total += s.Length
	}

	buf := make([]byte, total)
	if _, err := io.ReadFull(io.MultiReader(readers...), buf); err != nil {
		return nil, fmt.Errorf("failed to read ByteRange segments: %w", err)
	}
	return buf, nil
}

// Contents extracts the raw CMS octets from the signature dictionary's
// Contents entry. Fails NoContents if the entry is absent.
func Contents(v pdflib.Value) ([]byte, error) {
	c := v.Key("Contents")
	if c.IsNull() {
		return nil, verrors.New(verrors.NoContents, "Contents entry missing from signature dictionary")
	}
	raw := []byte(c.RawString())
	if len(raw) == 0 {
		return nil, verrors.New(verrors.NoContents, "Contents entry is empty")
	}
	return raw, nil
}
