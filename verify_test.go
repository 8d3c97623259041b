package notarverify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blastrider/notar-verify/internal/limits"
	"github.com/blastrider/notar-verify/internal/report"
	"github.com/blastrider/notar-verify/internal/testpki"
)

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func baseOptions(dir string) Options {
	return Options{
		Limits: limits.Default(),
		Logger: zerolog.Nop(),
	}
}

// S1: neither a real signature nor a crash — a Report is still produced.
func TestVerifyScenarioS1NoBackendAvailable(t *testing.T) {
	dir := t.TempDir()
	sigPath := writeTemp(t, dir, "s.p7s", []byte("not-a-real-p7s"))
	dataPath := writeTemp(t, dir, "d.bin", []byte("hello world"))

	opts := baseOptions(dir)
	opts.SigPath = sigPath
	opts.DataPath = dataPath

	rep, err := Verify(context.Background(), opts)
	if err != nil {
		t.Fatalf("expected a Report, not a fatal error: %v", err)
	}
	if rep.DocumentSHA256 == nil || *rep.DocumentSHA256 != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Fatalf("unexpected document_sha256: %v", rep.DocumentSHA256)
	}
	if rep.Verdict != report.Invalid && rep.Verdict != report.Warning {
		t.Fatalf("expected INVALID or WARNING, got %s", rep.Verdict)
	}
	if rep.ExitCode() == 0 {
		t.Fatal("S1 must never exit 0")
	}
}

// S2: valid detached CMS, anchor supplied.
func TestVerifyScenarioS2ValidWithAnchor(t *testing.T) {
	dir := t.TempDir()
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Alice Signer")
	data := []byte("the quick brown fox jumps over the lazy dog")
	der := testpki.SignDetached(t, data, leaf, leafKey, pki.Chain())

	sigPath := writeTemp(t, dir, "data.bin.p7s", der)
	dataPath := writeTemp(t, dir, "data.bin", data)
	anchorPath := writeTemp(t, dir, "anchor.pem", []byte(pki.AnchorPEM()))

	opts := baseOptions(dir)
	opts.SigPath = sigPath
	opts.DataPath = dataPath
	opts.TrustPaths = []string{anchorPath}

	rep, err := Verify(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Verdict != report.Valid {
		t.Fatalf("expected VALID, got %s", rep.Verdict)
	}
	if rep.ExitCode() != 0 {
		t.Fatalf("expected exit 0, got %d", rep.ExitCode())
	}
	if rep.Integrity.Status != report.Valid || rep.Signature.Status != report.Valid || rep.Chain.Status != report.Valid {
		t.Fatalf("expected all three core components Valid, got integrity=%s signature=%s chain=%s",
			rep.Integrity.Status, rep.Signature.Status, rep.Chain.Status)
	}
	if rep.SignerDN == nil || *rep.SignerDN != "Alice Signer" {
		t.Fatalf("expected signer_dn populated from CN, got %v", rep.SignerDN)
	}
}

// S3: valid CMS, no anchor supplied.
func TestVerifyScenarioS3ValidNoAnchor(t *testing.T) {
	dir := t.TempDir()
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Bob Signer")
	data := []byte("another signed payload")
	der := testpki.SignDetached(t, data, leaf, leafKey, pki.Chain())

	sigPath := writeTemp(t, dir, "data.bin.p7s", der)
	dataPath := writeTemp(t, dir, "data.bin", data)

	opts := baseOptions(dir)
	opts.SigPath = sigPath
	opts.DataPath = dataPath

	rep, err := Verify(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Verdict != report.Warning {
		t.Fatalf("expected WARNING, got %s", rep.Verdict)
	}
	if rep.ExitCode() != 2 {
		t.Fatalf("expected exit 2, got %d", rep.ExitCode())
	}
	if rep.Signature.Status != report.Valid {
		t.Fatalf("expected signature Valid, got %s", rep.Signature.Status)
	}
	if rep.Chain.Status != report.Warning {
		t.Fatalf("expected chain Warning (anchor-free never Valid), got %s", rep.Chain.Status)
	}
}

// S4: tampered data.
func TestVerifyScenarioS4TamperedData(t *testing.T) {
	dir := t.TempDir()
	pki := testpki.NewTestPKI(t, testpki.ECDSAP256)
	leafKey, leaf := pki.IssueLeaf("Carol Signer")
	der := testpki.SignDetached(t, []byte("original content"), leaf, leafKey, pki.Chain())

	sigPath := writeTemp(t, dir, "data.bin.p7s", der)
	dataPath := writeTemp(t, dir, "data.bin", []byte("tampered content"))
	anchorPath := writeTemp(t, dir, "anchor.pem", []byte(pki.AnchorPEM()))

	opts := baseOptions(dir)
	opts.SigPath = sigPath
	opts.DataPath = dataPath
	opts.TrustPaths = []string{anchorPath}

	rep, err := Verify(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Verdict != report.Invalid {
		t.Fatalf("expected INVALID, got %s", rep.Verdict)
	}
	if rep.ExitCode() != 1 {
		t.Fatalf("expected exit 1, got %d", rep.ExitCode())
	}
	if rep.Signature.Status != report.Invalid {
		t.Fatalf("expected signature Invalid, got %s", rep.Signature.Status)
	}
}

func TestVerifyUsageErrorNeitherModeSelected(t *testing.T) {
	opts := baseOptions(t.TempDir())
	_, err := Verify(context.Background(), opts)
	if err == nil {
		t.Fatal("expected UsageError, got nil")
	}
}

func TestVerifyUsageErrorBothModesSelected(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	opts.PDFPath = writeTemp(t, dir, "doc.pdf", []byte("%PDF-1.4"))
	opts.SigPath = writeTemp(t, dir, "sig.p7s", []byte("x"))
	_, err := Verify(context.Background(), opts)
	if err == nil {
		t.Fatal("expected UsageError, got nil")
	}
}

func TestVerifyEnvelopedCMSWithoutData(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	opts.SigPath = writeTemp(t, dir, "enveloped.p7m", []byte("irrelevant"))

	rep, err := Verify(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Signature.Status != report.Warning {
		t.Fatalf("expected signature Warning for enveloped CMS, got %s", rep.Signature.Status)
	}
	if rep.Verdict != report.Warning {
		t.Fatalf("expected overall Warning, got %s", rep.Verdict)
	}
}

// S7: oversized file fails before any cryptography runs.
func TestVerifyScenarioS7OversizedFile(t *testing.T) {
	dir := t.TempDir()
	sigPath := writeTemp(t, dir, "sig.p7s", []byte("whatever"))
	dataPath := writeTemp(t, dir, "data.bin", make([]byte, 128))

	opts := baseOptions(dir)
	opts.SigPath = sigPath
	opts.DataPath = dataPath
	opts.Limits = limits.Limits{MaxBytes: 64}

	_, err := Verify(context.Background(), opts)
	if err == nil {
		t.Fatal("expected InputTooLarge, got nil")
	}
}
