package revocation

import (
	"context"
	"testing"

	"github.com/blastrider/notar-verify/internal/report"
)

func TestEvaluateOfflineAlwaysWarns(t *testing.T) {
	c := EvaluateOffline([]string{"a.crl"}, []string{"b.ocsp"})
	if c.Status != report.Warning {
		t.Fatalf("got %s, want Warning", c.Status)
	}
	if c.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestEvaluateOnlineAlwaysWarns(t *testing.T) {
	c := EvaluateOnline(context.Background(), []string{"https://example.test/ocsp"})
	if c.Status != report.Warning {
		t.Fatalf("got %s, want Warning", c.Status)
	}
}

func TestEvaluateOnlineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := EvaluateOnline(ctx, nil)
	if c.Status != report.Warning {
		t.Fatalf("cancellation must still surface a Warning component, got %s", c.Status)
	}
}
