package pdfsig

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestSegments hashes the concatenation of segments with SHA-256 and
// returns the hex-encoded digest. Recomputing this over the same PDF always
// yields the same string (idempotence, §8 property 6); two consecutive
// segments [a,l1),[b,l2) with a+l1==b digest identically to the single
// contiguous range [a, l1+l2) (§8 property 7), since concatenation is
// associative over the same bytes either way.
func DigestSegments(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
