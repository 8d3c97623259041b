// Package report implements C5: the per-aspect Component model, the Report
// record the orchestrator populates in place, and the aggregation rule that
// derives the final verdict.
package report

import "fmt"

// Verdict is the enumerated status of a Component or of a whole Report.
// The zero value is Warning, matching spec.md's "default Warning" for every
// freshly constructed component.
type Verdict int

const (
	Warning Verdict = iota
	Valid
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "VALID"
	case Invalid:
		return "INVALID"
	default:
		return "WARNING"
	}
}

// MarshalJSON writes the SCREAMING_SNAKE_CASE wire form the JSON report
// layout requires.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON accepts the same SCREAMING_SNAKE_CASE wire form; any other
// token is rejected with an error.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		s = string(data[1 : len(data)-1])
	}
	switch s {
	case "VALID":
		*v = Valid
	case "INVALID":
		*v = Invalid
	case "WARNING":
		*v = Warning
	default:
		return fmt.Errorf("report: unknown verdict %q", s)
	}
	return nil
}

// Component is one per-aspect sub-status of a Report.
type Component struct {
	Status Verdict `json:"status"`
	Detail string  `json:"detail"`
}

// warn is the default value every Component starts life as.
func warn(detail string) Component {
	return Component{Status: Warning, Detail: detail}
}

// Report is the aggregated record produced by a single verification call.
// It is constructed with every component defaulting to Warning, mutated in
// place by each pipeline stage, and finalised by Finalize. Reports are owned
// by the orchestrator and never shared across calls.
type Report struct {
	InputKind         string   `json:"input_kind"`
	DocumentSHA256    *string  `json:"document_sha256"`
	SignerDN          *string  `json:"signer_dn"`
	SigningTime       *string  `json:"signing_time"`
	TimestampRFC3161  *string  `json:"timestamp_rfc3161"`
	CertificateChain  []string `json:"certificate_chain"`
	Algorithms        []string `json:"algorithms"`
	Integrity         Component `json:"integrity"`
	Signature         Component `json:"signature"`
	Chain             Component `json:"chain"`
	Revocation        Component `json:"revocation"`
	LTV               Component `json:"ltv"`
	Verdict           Verdict   `json:"verdict"`
}

// New constructs a Report for the given input kind with every component
// defaulted to Warning, per the Report lifecycle in §3.
func New(inputKind string) *Report {
	return &Report{
		InputKind:        inputKind,
		CertificateChain: []string{},
		Algorithms:       []string{},
		Integrity:        warn(""),
		Signature:        warn(""),
		Chain:            warn(""),
		Revocation:       warn(""),
		LTV:              warn(""),
		Verdict:          Warning,
	}
}
