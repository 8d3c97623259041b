package cms

import (
	"testing"

	"github.com/blastrider/notar-verify/internal/ioload"
	"github.com/blastrider/notar-verify/internal/testpki"
	"github.com/blastrider/notar-verify/internal/verrors"
)

func anchorBundle(pki *testpki.TestPKI) []ioload.PemBundle {
	return []ioload.PemBundle{{Path: "anchor.pem", Text: pki.AnchorPEM()}}
}

func TestVerifyDetachedValidWithAnchor(t *testing.T) {
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Signer One")
	data := []byte("hello world")
	der := testpki.SignDetached(t, data, leaf, leafKey, pki.Chain())

	res, err := VerifyDetached(der, data, anchorBundle(pki))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TrustedChain {
		t.Fatal("expected trusted chain against the supplied anchor")
	}
	if res.PrimarySignerDN != "Signer One" {
		t.Fatalf("got signer DN %q, want %q", res.PrimarySignerDN, "Signer One")
	}
}

func TestVerifyDetachedValidNoAnchor(t *testing.T) {
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Signer Two")
	data := []byte("hello world")
	der := testpki.SignDetached(t, data, leaf, leafKey, pki.Chain())

	res, err := VerifyDetached(der, data, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TrustedChain {
		t.Fatal("expected untrusted chain with no anchors supplied")
	}
}

func TestVerifyDetachedTamperedData(t *testing.T) {
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Signer Three")
	der := testpki.SignDetached(t, []byte("hello world"), leaf, leafKey, pki.Chain())

	_, err := VerifyDetached(der, []byte("hello wOrld"), anchorBundle(pki))
	if err == nil {
		t.Fatal("expected SignatureInvalid for tampered data, got nil")
	}
	if kind, ok := verrors.KindOf(err); !ok || kind != verrors.SignatureInvalid {
		t.Fatalf("expected SignatureInvalid, got %v (ok=%v)", kind, ok)
	}
}

func TestVerifyDetachedMalformedDER(t *testing.T) {
	_, err := VerifyDetached([]byte("not-a-real-p7s"), []byte("hello world"), nil)
	if err == nil {
		t.Fatal("expected CmsParse error, got nil")
	}
	if kind, ok := verrors.KindOf(err); !ok || kind != verrors.CmsParse {
		t.Fatalf("expected CmsParse, got %v (ok=%v)", kind, ok)
	}
}

func TestVerifyDetachedAnchorInvalid(t *testing.T) {
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Signer Four")
	data := []byte("hello world")
	der := testpki.SignDetached(t, data, leaf, leafKey, pki.Chain())

	badAnchor := []ioload.PemBundle{{Path: "bad.pem", Text: "-----BEGIN CERTIFICATE-----\nAA==\n-----END CERTIFICATE-----\n"}}
	_, err := VerifyDetached(der, data, badAnchor)
	if err == nil {
		t.Fatal("expected AnchorInvalid, got nil")
	}
	if kind, ok := verrors.KindOf(err); !ok || kind != verrors.AnchorInvalid {
		t.Fatalf("expected AnchorInvalid, got %v (ok=%v)", kind, ok)
	}
}
