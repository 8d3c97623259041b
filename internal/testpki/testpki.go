// Package testpki generates in-process PKI fixtures and signed CMS blobs so
// package tests never depend on files checked into the repository. It is a
// trimmed adaptation of a signing library's own certificate-generation test
// helper, extended with a detached-PKCS#7 signing helper so tests can build
// their own fixtures end to end.
package testpki

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/digitorus/pkcs7"
)

// KeyProfile selects the key algorithm and size used by GenerateKey.
type KeyProfile string

const (
	RSA2048   KeyProfile = "RSA_2048"
	ECDSAP256 KeyProfile = "ECDSA_P256"
	ECDSAP384 KeyProfile = "ECDSA_P384"
)

// TestPKI is a minimal root+intermediate CA hierarchy generated fresh for
// one test.
type TestPKI struct {
	T                *testing.T
	RootKey          crypto.Signer
	RootCert         *x509.Certificate
	IntermediateKey  crypto.Signer
	IntermediateCert *x509.Certificate
	Profile          KeyProfile
}

// NewTestPKI creates a fresh root CA and one intermediate CA beneath it.
func NewTestPKI(t *testing.T, profile KeyProfile) *TestPKI {
	rootKey := GenerateKey(t, profile)
	rootTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "notar-verify Test Root CA",
			Organization: []string{"notar-verify Test Org"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          []byte{1, 2, 3, 4},
	}

	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, rootKey.Public(), rootKey)
	if err != nil {
		t.Fatalf("create root cert: %v", err)
	}
	rootCert, err := x509.ParseCertificate(rootDER)
	if err != nil {
		t.Fatalf("parse root cert: %v", err)
	}

	intKey := GenerateKey(t, profile)
	intTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			CommonName:   "notar-verify Test Intermediate CA",
			Organization: []string{"notar-verify Test Org"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            0,
		SubjectKeyId:          []byte{5, 6, 7, 8},
		AuthorityKeyId:        rootCert.SubjectKeyId,
	}

	intDER, err := x509.CreateCertificate(rand.Reader, intTemplate, rootCert, intKey.Public(), rootKey)
	if err != nil {
		t.Fatalf("create intermediate cert: %v", err)
	}
	intCert, err := x509.ParseCertificate(intDER)
	if err != nil {
		t.Fatalf("parse intermediate cert: %v", err)
	}

	return &TestPKI{
		T:                t,
		RootKey:          rootKey,
		RootCert:         rootCert,
		IntermediateKey:  intKey,
		IntermediateCert: intCert,
		Profile:          profile,
	}
}

// IssueLeaf generates a leaf certificate signed by the intermediate CA.
func (p *TestPKI) IssueLeaf(commonName string) (crypto.Signer, *x509.Certificate) {
	priv := GenerateKey(p.T, p.Profile)

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		p.T.Fatalf("generate serial: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"notar-verify Test Org"},
		},
		NotBefore:    time.Now().Add(-1 * time.Hour),
		NotAfter:     time.Now().Add(1 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, p.IntermediateCert, priv.Public(), p.IntermediateKey)
	if err != nil {
		p.T.Fatalf("issue leaf cert: %v", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		p.T.Fatalf("parse leaf cert: %v", err)
	}
	return priv, leaf
}

// Chain returns the leaf's issuing chain, intermediate first then root.
func (p *TestPKI) Chain() []*x509.Certificate {
	return []*x509.Certificate{p.IntermediateCert, p.RootCert}
}

// AnchorPEM renders the root certificate as a single PEM bundle, suitable
// for a --trust file.
func (p *TestPKI) AnchorPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: p.RootCert.Raw}))
}

// GenerateKey produces a fresh signing key for the requested profile.
func GenerateKey(t *testing.T, profile KeyProfile) crypto.Signer {
	switch profile {
	case RSA2048:
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate RSA 2048 key: %v", err)
		}
		return k
	case ECDSAP256:
		k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatalf("generate P-256 key: %v", err)
		}
		return k
	case ECDSAP384:
		k, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		if err != nil {
			t.Fatalf("generate P-384 key: %v", err)
		}
		return k
	default:
		t.Fatalf("unknown key profile: %s", profile)
		return nil
	}
}

// SignDetached builds a detached PKCS#7 SignedData over content, signed by
// leaf/leafKey with chain appended, and returns the DER-encoded envelope —
// the same NewSignedData/AddSignerChain/Detach/Finish sequence a signing
// pipeline uses, run here purely to manufacture test fixtures.
func SignDetached(t *testing.T, content []byte, leaf *x509.Certificate, leafKey crypto.Signer, chain []*x509.Certificate) []byte {
	signedData, err := pkcs7.NewSignedData(content)
	if err != nil {
		t.Fatalf("new signed data: %v", err)
	}
	if err := signedData.AddSignerChain(leaf, leafKey, chain, pkcs7.SignerInfoConfig{}); err != nil {
		t.Fatalf("add signer chain: %v", err)
	}
	signedData.Detach()

	der, err := signedData.Finish()
	if err != nil {
		t.Fatalf("finish signed data: %v", err)
	}
	return der
}

// EncodePEM wraps der as a "-----BEGIN PKCS7-----" PEM block, for exercising
// C2's PEM-framing path.
func EncodePEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "PKCS7", Bytes: der})
}
