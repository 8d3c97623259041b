// Package verrors defines the closed error taxonomy shared by every
// verification component, and the fatal/recovered propagation split the
// orchestrator relies on to decide whether a Report is still produced.
package verrors

import (
	"errors"
	"fmt"
)

// Kind identifies which class of failure occurred. The zero value is never
// used directly; every Error carries an explicit Kind.
type Kind int

const (
	_ Kind = iota

	// PathInvalid: path fails canonicalisation or contains a traversal token. Raised by C1.
	PathInvalid
	// InputTooLarge: file exceeds Limits.MaxBytes. Raised by C1.
	InputTooLarge
	// PemInvalid: PEM missing markers or non-UTF-8. Raised by C1.
	PemInvalid
	// CmsDecode: base64/PEM decoding of the signature blob failed. Raised by C2.
	CmsDecode
	// CmsParse: PKCS#7 ASN.1 parse failed. Raised by C3. Recovered.
	CmsParse
	// AnchorInvalid: an anchor PEM did not contain a valid certificate. Raised by C3.
	AnchorInvalid
	// SignatureInvalid: cryptographic verification failed. Raised by C3. Recovered.
	SignatureInvalid
	// PdfParse: PDF parse failed. Raised by C4.
	PdfParse
	// NoSignature: no signature field located in the PDF. Raised by C4.
	NoSignature
	// NoByteRange: ByteRange missing or malformed. Raised by C4.
	NoByteRange
	// NoContents: Contents missing or of the wrong PDF type. Raised by C4.
	NoContents
	// ByteRangeOutOfBounds: a ByteRange segment escapes the file. Raised by C4.
	ByteRangeOutOfBounds
	// UsageError: neither or both of --in/--sig were provided. Raised by C6.
	UsageError
)

func (k Kind) String() string {
	switch k {
	case PathInvalid:
		return "PathInvalid"
	case InputTooLarge:
		return "InputTooLarge"
	case PemInvalid:
		return "PemInvalid"
	case CmsDecode:
		return "CmsDecode"
	case CmsParse:
		return "CmsParse"
	case AnchorInvalid:
		return "AnchorInvalid"
	case SignatureInvalid:
		return "SignatureInvalid"
	case PdfParse:
		return "PdfParse"
	case NoSignature:
		return "NoSignature"
	case NoByteRange:
		return "NoByteRange"
	case NoContents:
		return "NoContents"
	case ByteRangeOutOfBounds:
		return "ByteRangeOutOfBounds"
	case UsageError:
		return "UsageError"
	default:
		return "Unknown"
	}
}

// Recovered reports whether errors of this kind should materialise as a
// Report component (signature = Invalid) instead of aborting the run.
// Per the error handling design, only CmsParse and SignatureInvalid recover;
// every other kind is fatal.
func (k Kind) Recovered() bool {
	return k == CmsParse || k == SignatureInvalid
}

// Error wraps a Kind with a human-readable detail and an optional cause.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, verrors.Kind) style matching work by comparing Kind
// when the target is itself an *Error with no cause and no detail set.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Cause == nil && t.Detail == "" && t.Kind == e.Kind
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error; ok is false otherwise.
func KindOf(err error) (Kind, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return 0, false
}
