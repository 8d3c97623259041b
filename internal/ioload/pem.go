package ioload

import (
	"strings"
	"unicode/utf8"

	"github.com/blastrider/notar-verify/internal/limits"
	"github.com/blastrider/notar-verify/internal/verrors"
)

// PemBundle is the raw text of one --trust file: one or more PEM blocks.
type PemBundle struct {
	Path string
	Text string
}

// ReadAllPEMs reads every path bounded, validates UTF-8, and requires the
// literal marker "-----BEGIN" to appear. Fails fast on the first offender.
func ReadAllPEMs(paths []string, lim limits.Limits) ([]PemBundle, error) {
	bundles := make([]PemBundle, 0, len(paths))
	for _, p := range paths {
		data, err := ReadFileBounded(p, lim)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(data) {
			return nil, verrors.New(verrors.PemInvalid, "not UTF-8: "+p)
		}
		text := string(data)
		if !strings.Contains(text, "-----BEGIN") {
			return nil, verrors.New(verrors.PemInvalid, "no PEM BEGIN block: "+p)
		}
		bundles = append(bundles, PemBundle{Path: p, Text: text})
	}
	return bundles, nil
}
