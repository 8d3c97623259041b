package report

// Finalize applies the §4.5 aggregation rule, once all components are
// populated: any of signature/integrity/chain Invalid wins to Invalid; all
// three Valid wins to Valid; anything else is Warning. Revocation and LTV
// are informational only and never move the needle.
func (r *Report) Finalize() {
	sig, integ, chain := r.Signature.Status, r.Integrity.Status, r.Chain.Status

	switch {
	case sig == Invalid || integ == Invalid || chain == Invalid:
		r.Verdict = Invalid
	case sig == Valid && integ == Valid && chain == Valid:
		r.Verdict = Valid
	default:
		r.Verdict = Warning
	}
}

// ExitCode maps the final verdict to the CLI's 0/1/2 process exit code.
func (r *Report) ExitCode() int {
	switch r.Verdict {
	case Valid:
		return 0
	case Invalid:
		return 1
	default:
		return 2
	}
}
