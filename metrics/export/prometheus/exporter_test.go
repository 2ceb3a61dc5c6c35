package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/sharedauth"
)

type fakeSource struct {
	snapshot sharedauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() sharedauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: sharedauth.MetricsSnapshot{
			Counters:   map[sharedauth.MetricID]uint64{},
			Histograms: map[sharedauth.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: sharedauth.MetricsSnapshot{
			Counters: map[sharedauth.MetricID]uint64{
				sharedauth.MetricLoginSuccess:    7,
				sharedauth.MetricSignupDuplicate: 3,
			},
			Histograms: map[sharedauth.MetricID][]uint64{
				sharedauth.MetricLoginLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"sharedauth_login_success_total 7",
		"sharedauth_signup_duplicate_total 3",
		"sharedauth_logout_total 0",
		"# TYPE sharedauth_login_latency_seconds histogram",
		`sharedauth_login_latency_seconds_bucket{le="0.005"} 1`,
		`sharedauth_login_latency_seconds_bucket{le="+Inf"} 36`,
		"sharedauth_login_latency_seconds_count 36",
		"sharedauth_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRenderSkipsDisabledHistogram(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: sharedauth.MetricsSnapshot{
			Counters:   map[sharedauth.MetricID]uint64{sharedauth.MetricLogout: 1},
			Histograms: map[sharedauth.MetricID][]uint64{},
		},
	})

	if out := exp.Render(); strings.Contains(out, "latency") {
		t.Fatalf("expected no histogram when latency is disabled, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: sharedauth.MetricsSnapshot{
			Counters:   map[sharedauth.MetricID]uint64{sharedauth.MetricLoginSuccess: 1},
			Histograms: map[sharedauth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNilExporterRendersNothing(t *testing.T) {
	var exp *Exporter
	if exp.Render() != "" {
		t.Fatal("expected empty output")
	}
}
