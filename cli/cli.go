// Package cli is the command-line front end: flag parsing, the JSON report
// writer, the terminal table renderer, and exit-code mapping. None of this
// is part of the core verification pipeline (spec.md §1 treats it as an
// external collaborator); it only supplies paths and limits in, and
// consumes the finished Report out.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	notarverify "github.com/blastrider/notar-verify"
	"github.com/blastrider/notar-verify/internal/config"
	"github.com/blastrider/notar-verify/internal/limits"
	"github.com/blastrider/notar-verify/internal/report"
)

var flags struct {
	in        string
	sig       string
	data      string
	trust     []string
	crl       []string
	ocsp      []string
	out       string
	online    bool
	logLevel  string
	maxMiB    int64
	configure string
}

// NewRootCommand builds the cobra command tree for the notarverify binary.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "notarverify",
		Short: "Verify CMS/PKCS#7 and PAdES-embedded signatures offline",
		Long:  "notarverify checks the cryptographic authenticity and integrity of detached CMS signatures and PDF documents carrying PAdES signatures, against operator-supplied trust anchors.",
		RunE:  run,
	}

	f := root.Flags()
	f.StringVar(&flags.in, "in", "", "PDF file to verify")
	f.StringVar(&flags.sig, "sig", "", "CMS signature file to verify (PEM, base64, or raw DER)")
	f.StringVar(&flags.data, "data", "", "detached data file, required companion to --sig")
	f.StringSliceVar(&flags.trust, "trust", nil, "PEM bundle of trust anchors (repeatable)")
	f.StringSliceVar(&flags.crl, "crl", nil, "CRL file, propagated to the revocation stub (repeatable)")
	f.StringSliceVar(&flags.ocsp, "ocsp", nil, "OCSP response file, propagated to the revocation stub (repeatable)")
	f.StringVar(&flags.out, "out", "", "write the JSON report to this path")
	f.BoolVar(&flags.online, "online", false, "authorise future network revocation calls")
	f.StringVar(&flags.logLevel, "log-level", "info", "logging verbosity (trace, debug, info, warn, error)")
	f.Int64Var(&flags.maxMiB, "max-mib", limits.DefaultMaxMiB, "input size cap in MiB")
	f.StringVar(&flags.configure, "config", "", "optional TOML config file supplying defaults")

	root.MarkFlagsMutuallyExclusive("in", "sig")
	root.MarkFlagsOneRequired("in", "sig")

	return root
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(flags.configure)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if !cmd.Flags().Changed("max-mib") && cfg.MaxMiB > 0 {
		flags.maxMiB = cfg.MaxMiB
	}
	if len(flags.trust) == 0 && len(cfg.Trust) > 0 {
		flags.trust = cfg.Trust
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		flags.logLevel = cfg.LogLevel
	}

	level, err := zerolog.ParseLevel(flags.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flags.logLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if flags.sig != "" && flags.data == "" {
		logger.Warn().Msg("--sig supplied without --data: enveloped CMS verification will be skipped")
	}

	opts := notarverify.Options{
		PDFPath:    flags.in,
		SigPath:    flags.sig,
		DataPath:   flags.data,
		TrustPaths: flags.trust,
		CRLPaths:   flags.crl,
		OCSPPaths:  flags.ocsp,
		Online:     flags.online,
		Limits:     limits.FromMiB(flags.maxMiB),
		Logger:     logger,
	}

	rep, err := notarverify.Verify(cmd.Context(), opts)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "notarverify:", err)
		os.Exit(1)
	}

	printTable(cmd.OutOrStdout(), rep)

	if flags.out != "" {
		if err := writeJSON(rep, flags.out); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "notarverify: failed to write report:", err)
			os.Exit(1)
		}
	}

	os.Exit(rep.ExitCode())
	return nil
}

func writeJSON(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printTable(w io.Writer, rep *report.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INTEGRITY\tSIGNATURE\tCHAIN\tREVOCATION\tLTV\tVERDICT")
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		rep.Integrity.Status, rep.Signature.Status, rep.Chain.Status,
		rep.Revocation.Status, rep.LTV.Status, rep.Verdict)
	tw.Flush()
}
