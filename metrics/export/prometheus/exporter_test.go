package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goPolicy "github.com/MrEthical07/goPolicy"
)

type fakeSource struct {
	snapshot goPolicy.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goPolicy.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goPolicy.MetricsSnapshot{
			Counters:   map[goPolicy.MetricID]uint64{},
			Histograms: map[goPolicy.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goPolicy.MetricsSnapshot{
			Counters: map[goPolicy.MetricID]uint64{
				goPolicy.MetricCheckGranted: 7,
			},
			Histograms: map[goPolicy.MetricID][]uint64{
				goPolicy.MetricCheckLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "gopolicy_check_granted_total 7") {
		t.Fatalf("expected check_granted counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gopolicy_check_latency_seconds_bucket{le=\"0.000001\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gopolicy_check_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gopolicy_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goPolicy.MetricsSnapshot{
			Counters:   map[goPolicy.MetricID]uint64{goPolicy.MetricCheckGranted: 1},
			Histograms: map[goPolicy.MetricID][]uint64{},
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

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goPolicy.MetricsSnapshot{
			Counters: map[goPolicy.MetricID]uint64{
				goPolicy.MetricCheckGranted:       1000,
				goPolicy.MetricCheckDenied:        40,
				goPolicy.MetricDeserializeSuccess: 800,
				goPolicy.MetricDeserializeFailure: 10,
				goPolicy.MetricTokenIssued:        800,
				goPolicy.MetricPolicySaved:        20,
				goPolicy.MetricStoreFailure:       3,
			},
			Histograms: map[goPolicy.MetricID][]uint64{
				goPolicy.MetricCheckLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
