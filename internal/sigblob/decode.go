// Package sigblob implements C2: detection of PEM / base64 / raw DER framing
// around a CMS signature blob, normalising any of the three into canonical DER.
package sigblob

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/blastrider/notar-verify/internal/verrors"
)

const beginMarker = "-----BEGIN"
const endMarker = "-----END"

// DecodeDER turns raw signature-file bytes into canonical DER, per §4.2:
// PEM (label advisory) first, else standard base64, else treated as DER
// already.
func DecodeDER(raw []byte) ([]byte, error) {
	if strings.HasPrefix(string(raw), beginMarker) {
		return decodePEM(raw)
	}
	if der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw))); err == nil {
		return der, nil
	}
	return raw, nil
}

func decodePEM(raw []byte) ([]byte, error) {
	if !utf8.Valid(raw) {
		return nil, verrors.New(verrors.CmsDecode, "PEM signature is not UTF-8")
	}
	text := string(raw)

	endIdx := strings.Index(text, endMarker)
	if endIdx < 0 {
		return nil, verrors.New(verrors.CmsDecode, "PEM BEGIN without matching END")
	}

	firstLineEnd := strings.IndexByte(text, '\n')
	if firstLineEnd < 0 || firstLineEnd > endIdx {
		return nil, verrors.New(verrors.CmsDecode, "PEM BEGIN without matching END")
	}

	body := text[firstLineEnd+1 : endIdx]
	var sb strings.Builder
	for _, line := range strings.Split(body, "\n") {
		sb.WriteString(strings.TrimSpace(line))
	}

	der, err := base64.StdEncoding.DecodeString(sb.String())
	if err != nil {
		return nil, verrors.Wrap(verrors.CmsDecode, "PEM body is not valid base64", err)
	}
	return der, nil
}
