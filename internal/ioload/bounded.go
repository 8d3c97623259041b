// Package ioload implements C1: path canonicalisation, size-bounded file
// reads, and PEM bundle loading. Every untrusted path in this module passes
// through ReadFileBounded before its bytes are touched.
package ioload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blastrider/notar-verify/internal/limits"
	"github.com/blastrider/notar-verify/internal/verrors"
)

// ReadFileBounded canonicalises path, rejects traversal, stats it, and reads
// it fully only if its size does not exceed lim.MaxBytes.
func ReadFileBounded(path string, lim limits.Limits) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, verrors.Wrap(verrors.PathInvalid, "path invalid: "+path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, verrors.Wrap(verrors.PathInvalid, "path invalid: "+path, err)
	}
	if strings.Contains(resolved, "..") {
		return nil, verrors.New(verrors.PathInvalid, "traversal detected: "+path)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, verrors.Wrap(verrors.PathInvalid, "stat failed: "+resolved, err)
	}
	if info.Size() > lim.MaxBytes {
		return nil, verrors.New(verrors.InputTooLarge, "file exceeds size limit: "+resolved)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, verrors.Wrap(verrors.PathInvalid, "read failed: "+resolved, err)
	}
	return data, nil
}
