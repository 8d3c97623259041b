// Package notarverify implements C6: the verification orchestrator that
// classifies the input, sequences C1 through C5, and returns the finished
// Report.
package notarverify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blastrider/notar-verify/internal/cms"
	"github.com/blastrider/notar-verify/internal/ioload"
	"github.com/blastrider/notar-verify/internal/limits"
	"github.com/blastrider/notar-verify/internal/pdfsig"
	"github.com/blastrider/notar-verify/internal/report"
	"github.com/blastrider/notar-verify/internal/revocation"
	"github.com/blastrider/notar-verify/internal/sigblob"
	"github.com/blastrider/notar-verify/internal/verrors"
)

// Options selects a verification mode and the resources it draws on.
// Exactly one of PDFPath or SigPath must be set.
type Options struct {
	PDFPath    string
	SigPath    string
	DataPath   string
	TrustPaths []string
	CRLPaths   []string
	OCSPPaths  []string
	Online     bool
	Limits     limits.Limits
	Logger     zerolog.Logger
}

// Verify dispatches on Options, runs the pipeline described in §4.6, and
// returns the finished Report. A non-nil error means no Report was
// produced: the caller must treat this as a fatal failure, print the
// message to the diagnostic stream, and exit non-zero without attempting to
// write a JSON report.
func Verify(ctx context.Context, opts Options) (*report.Report, error) {
	runID := uuid.New().String()
	log := opts.Logger.With().Str("run_id", runID).Logger()

	havePDF := opts.PDFPath != ""
	haveSig := opts.SigPath != ""
	if havePDF == haveSig {
		return nil, verrors.New(verrors.UsageError, "exactly one of --in or --sig must be provided")
	}

	anchors, err := ioload.ReadAllPEMs(opts.TrustPaths, opts.Limits)
	if err != nil {
		log.Error().Err(err).Msg("failed to load trust anchors")
		return nil, err
	}
	log.Info().Int("anchor_bundles", len(anchors)).Bool("online", opts.Online).Msg("anchors loaded")

	if haveSig {
		return verifyCMS(log, opts, anchors)
	}
	return verifyPDF(ctx, log, opts, anchors)
}

func verifyCMS(log zerolog.Logger, opts Options, anchors []ioload.PemBundle) (*report.Report, error) {
	rep := report.New("CMS")

	sigBytes, err := ioload.ReadFileBounded(opts.SigPath, opts.Limits)
	if err != nil {
		return nil, err
	}

	if opts.DataPath == "" {
		// Enveloped CMS (p7m): detached is the only supported shape, per
		// §4.6. No cryptographic verification is attempted.
		rep.Signature = report.Component{Status: report.Warning, Detail: "enveloped CMS (p7m) not supported"}
		rep.Chain = report.Component{Status: report.Warning, Detail: "chain not evaluated"}
		rep.Revocation = revocation.EvaluateOffline(opts.CRLPaths, opts.OCSPPaths)
		rep.LTV = report.Component{Status: report.Warning, Detail: "not applicable (no detached data supplied)"}
		rep.Finalize()
		log.Warn().Str("verdict", rep.Verdict.String()).Msg("cms verification skipped: enveloped signature")
		return rep, nil
	}

	dataBytes, err := ioload.ReadFileBounded(opts.DataPath, opts.Limits)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(dataBytes)
	docHash := hex.EncodeToString(sum[:])
	rep.DocumentSHA256 = &docHash

	der, err := sigblob.DecodeDER(sigBytes)
	if err != nil {
		return nil, err
	}

	result, err := cms.VerifyDetached(der, dataBytes, anchors)
	if err != nil {
		rep.Revocation = revocation.EvaluateOffline(opts.CRLPaths, opts.OCSPPaths)
		return recoverOrFail(rep, err)
	}

	populateCMSResult(rep, result, len(anchors))
	rep.Integrity = report.Component{Status: report.Valid, Detail: "MessageDigest/Data verified"}
	rep.Revocation = revocation.EvaluateOffline(opts.CRLPaths, opts.OCSPPaths)
	rep.LTV = report.Component{Status: report.Warning, Detail: "not applicable (detached CMS)"}

	rep.Finalize()
	log.Info().Str("verdict", rep.Verdict.String()).Msg("cms verification complete")
	return rep, nil
}

func verifyPDF(ctx context.Context, log zerolog.Logger, opts Options, anchors []ioload.PemBundle) (*report.Report, error) {
	rep := report.New("PDF")

	pdfBytes, err := ioload.ReadFileBounded(opts.PDFPath, opts.Limits)
	if err != nil {
		return nil, err
	}
	file := bytes.NewReader(pdfBytes)

	doc, err := pdfsig.Open(file, int64(len(pdfBytes)))
	if err != nil {
		return nil, err
	}

	sigDict, err := doc.FindSignatureDict()
	if err != nil {
		return nil, err
	}

	segs, err := pdfsig.ByteRange(sigDict)
	if err != nil {
		return nil, err
	}
	if err := pdfsig.CheckBounds(segs, doc.Size()); err != nil {
		return nil, err
	}

	contents, err := pdfsig.Contents(sigDict)
	if err != nil {
		return nil, err
	}

	segBytes, err := pdfsig.ReadSegments(file, segs)
	if err != nil {
		return nil, verrors.Wrap(verrors.ByteRangeOutOfBounds, "failed to read ByteRange segments", err)
	}

	docHash := pdfsig.DigestSegments(segBytes)
	rep.DocumentSHA256 = &docHash
	rep.Integrity = report.Component{Status: report.Valid, Detail: "ByteRange coherent"}

	// The signed payload is the concatenation of the ByteRange segments, not
	// the whole file — the corrected reading of §9 Open Question 1.
	result, err := cms.VerifyDetached(contents, segBytes, anchors)
	if err != nil {
		rep.Revocation = revocation.EvaluateOffline(opts.CRLPaths, opts.OCSPPaths)
		return recoverOrFail(rep, err)
	}
	populateCMSResult(rep, result, len(anchors))

	rep.Revocation = revocation.EvaluateOffline(opts.CRLPaths, opts.OCSPPaths)
	if opts.Online {
		rep.Revocation = revocation.EvaluateOnline(ctx, opts.OCSPPaths)
	}

	if doc.HasDSS() {
		rep.LTV = report.Component{Status: report.Warning, Detail: "DSS present (not yet mined for embedded CRL/OCSP)"}
	} else {
		rep.LTV = report.Component{Status: report.Warning, Detail: "DSS absent"}
	}

	rep.Finalize()
	log.Info().Str("verdict", rep.Verdict.String()).Msg("pdf verification complete")
	return rep, nil
}

// recoverOrFail materialises a recovered verrors.Kind (CmsParse,
// SignatureInvalid) as signature=Invalid and still returns the Report;
// every other kind propagates as a fatal error, per §7's propagation table.
func recoverOrFail(rep *report.Report, err error) (*report.Report, error) {
	kind, ok := verrors.KindOf(err)
	if !ok || !kind.Recovered() {
		return nil, err
	}
	rep.Signature = report.Component{Status: report.Invalid, Detail: err.Error()}
	rep.Chain = report.Component{Status: report.Warning, Detail: "chain not evaluated"}
	rep.Finalize()
	return rep, nil
}

func populateCMSResult(rep *report.Report, result *cms.Result, anchorCount int) {
	rep.Signature = report.Component{Status: report.Valid, Detail: "PKCS#7 detached signature valid"}

	switch {
	case anchorCount == 0:
		rep.Chain = report.Component{Status: report.Warning, Detail: "no anchor supplied, chain not attested"}
	case result.TrustedChain:
		rep.Chain = report.Component{Status: report.Valid, Detail: "chain verified against supplied anchors"}
	default:
		rep.Chain = report.Component{Status: report.Warning, Detail: "chain not verified against supplied anchors"}
	}

	if result.PrimarySignerDN != "" {
		dn := result.PrimarySignerDN
		rep.SignerDN = &dn
	}
	rep.CertificateChain = result.SignerSubjects
	if result.TimestampRFC3161 != "" {
		ts := result.TimestampRFC3161
		rep.TimestampRFC3161 = &ts
	}
	if result.DigestAlgorithm != "" {
		rep.Algorithms = append(rep.Algorithms, result.DigestAlgorithm)
	}
}
