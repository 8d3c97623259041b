// Package revocation implements C7: a placeholder CRL/OCSP evaluator.
//
// The orchestrator calls a uniform interface today so that a real backend
// can be swapped in later without a type change; for now neither operation
// parses CRL/OCSP material or performs network I/O. Absence of crypto
// capability is reported as Warning, never Invalid — see DESIGN.md.
package revocation

import (
	"context"

	"github.com/blastrider/notar-verify/internal/report"
)

// EvaluateOffline always yields a Warning component. crlPaths and ocspPaths
// are accepted and propagated per the CLI surface but are not read.
func EvaluateOffline(crlPaths, ocspPaths []string) report.Component {
	return report.Component{
		Status: report.Warning,
		Detail: "offline revocation not evaluated",
	}
}

// EvaluateOnline is the one suspension point reserved for a future
// implementation (§5): today it completes immediately with a Warning and
// never touches the network. ctx is honoured for cancellation once a real
// HTTP exchange exists; cancelling it must never surface as a fatal error,
// only ever as this same Warning component.
func EvaluateOnline(ctx context.Context, urls []string) report.Component {
	select {
	case <-ctx.Done():
	default:
	}
	return report.Component{
		Status: report.Warning,
		Detail: "online revocation not implemented",
	}
}
