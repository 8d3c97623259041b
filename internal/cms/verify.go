// Package cms implements C3: PKCS#7 SignedData parsing, an anchors-only
// trust store, detached-signature verification, and signer subject
// extraction.
package cms

import (
	"bytes"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/timestamp"

	"github.com/blastrider/notar-verify/internal/ioload"
	"github.com/blastrider/notar-verify/internal/verrors"
)

// Result is what C3 hands back to its caller: the signer subjects (chain,
// informational), the primary signer's DN, whether a trusted chain was
// built against the supplied anchors, any RFC 3161 timestamp token found in
// the SignerInfo's unauthenticated attributes, and the first SignerInfo's
// digest algorithm (when present).
type Result struct {
	SignerSubjects    []string
	PrimarySignerDN   string
	TrustedChain      bool
	TimestampRFC3161  string
	DigestAlgorithm   string
}

// BuildAnchorPool parses every certificate in every anchor bundle into one
// x509.CertPool. Anchors form the only trust root; system trust stores are
// never consulted. Fails AnchorInvalid on the first malformed certificate;
// duplicates are harmless (CertPool dedupes by raw bytes internally only in
// so far as repeated AddCert calls are benign).
func BuildAnchorPool(anchors []ioload.PemBundle) (*x509.CertPool, int, error) {
	pool := x509.NewCertPool()
	count := 0
	for _, bundle := range anchors {
		rest := []byte(bundle.Text)
		for {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" {
				continue
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, 0, verrors.Wrap(verrors.AnchorInvalid, "malformed anchor certificate in "+bundle.Path, err)
			}
			pool.AddCert(cert)
			count++
		}
	}
	return pool, count, nil
}

// VerifyDetached parses sigDER as PKCS#7 SignedData and verifies it as a
// detached signature over data, per §4.3's algorithm. The caller-supplied
// data is treated as the exact octet string the signer hashed: no
// content-type normalisation happens beyond what Parse/VerifyWithChain
// already does for BINARY-style detached content.
//
// Cryptographic failure of any kind (malformed ASN.1, broken chain, bad
// digest) is reported via a SignatureInvalid or CmsParse *verrors.Error;
// both kinds are recovered by the orchestrator rather than aborting the run.
// With no anchors supplied, the chain is not checked: only the signature
// itself is verified, and TrustedChain is false.
func VerifyDetached(sigDER, data []byte, anchors []ioload.PemBundle) (*Result, error) {
	p7, err := pkcs7.Parse(sigDER)
	if err != nil {
		return nil, verrors.Wrap(verrors.CmsParse, "PKCS#7 ASN.1 parse failed", err)
	}

	pool, anchorCount, err := BuildAnchorPool(anchors)
	if err != nil {
		return nil, err
	}

	p7.Content = data

	trusted := true
	if err := p7.VerifyWithChain(pool); err != nil {
		if anchorCount > 0 {
			return nil, verrors.Wrap(verrors.SignatureInvalid, "PKCS#7 signature or certification path verification failed", err)
		}
		if verr := p7.Verify(); verr != nil {
			return nil, verrors.Wrap(verrors.SignatureInvalid, "PKCS#7 signature verification failed", verr)
		}
		trusted = false
	}

	res := &Result{TrustedChain: trusted && anchorCount > 0}

	res.SignerSubjects, res.PrimarySignerDN = signerSubjects(p7)
	if len(p7.Certificates) == 0 && anchorCount > 0 {
		// No embedded certificates: report anchor subjects as the chain,
		// informational only, per §4.3 step 5.
		res.SignerSubjects = anchorSubjects(anchors)
		if len(res.SignerSubjects) > 0 {
			res.PrimarySignerDN = res.SignerSubjects[0]
		}
	}

	res.TimestampRFC3161, _ = extractTimestamp(p7)
	res.DigestAlgorithm = digestAlgorithmName(p7)

	return res, nil
}

// subjectIdentifier prefers the CN RDN, falls back to the first RDN entry,
// falls back to empty — per §4.3 step 4.
func subjectIdentifier(name pkix.Name) string {
	if name.CommonName != "" {
		return name.CommonName
	}
	for _, rdn := range name.Names {
		if s, ok := rdn.Value.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func signerSubjects(p7 *pkcs7.PKCS7) (subjects []string, primary string) {
	for _, signerInfo := range p7.Signers {
		cert := findSignerCert(p7.Certificates, signerInfo)
		if cert == nil {
			continue
		}
		subj := subjectIdentifier(cert.Subject)
		subjects = append(subjects, subj)
		if primary == "" {
			primary = subj
		}
	}
	return subjects, primary
}

func findSignerCert(certs []*x509.Certificate, signerInfo pkcs7.SignerInfo) *x509.Certificate {
	for _, cert := range certs {
		if cert.SerialNumber.Cmp(signerInfo.IssuerAndSerialNumber.SerialNumber) != 0 {
			continue
		}
		if bytes.Equal(cert.RawIssuer, signerInfo.IssuerAndSerialNumber.IssuerName.FullBytes) {
			return cert
		}
	}
	return nil
}

func anchorSubjects(anchors []ioload.PemBundle) []string {
	var subjects []string
	for _, bundle := range anchors {
		rest := []byte(bundle.Text)
		for {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" {
				continue
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				continue
			}
			subjects = append(subjects, subjectIdentifier(cert.Subject))
		}
	}
	return subjects
}

// idTimeStampToken is the RFC 3161 unauthenticated-attribute OID the
// teacher's own processTimestamp looks for.
var idTimeStampToken = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 14}

func extractTimestamp(p7 *pkcs7.PKCS7) (string, error) {
	for _, s := range p7.Signers {
		for _, attr := range s.UnauthenticatedAttributes {
			if !attr.Type.Equal(idTimeStampToken) {
				continue
			}
			ts, err := timestamp.Parse(attr.Value.Bytes)
			if err != nil {
				return "", err
			}
			if ts.Time.IsZero() {
				return "", nil
			}
			return ts.Time.UTC().Format("2006-01-02T15:04:05Z"), nil
		}
	}
	return "", nil
}

func digestAlgorithmName(p7 *pkcs7.PKCS7) string {
	if len(p7.Signers) == 0 {
		return ""
	}
	alg := p7.Signers[0].DigestAlgorithm.Algorithm
	switch {
	case alg.Equal(asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}):
		return "SHA-256"
	case alg.Equal(asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}):
		return "SHA-384"
	case alg.Equal(asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}):
		return "SHA-512"
	case alg.Equal(asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}):
		return "SHA-1"
	default:
		return alg.String()
	}
}
