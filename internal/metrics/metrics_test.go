package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/metrics"
)

func newMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	cfg := &config.MetricsConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	return metrics.New(cfg)
}

func TestObservers(t *testing.T) {
	m := newMetrics(t)

	m.ObserveClassify(metrics.OutcomeCreated, 2*time.Second)
	m.ObserveClassify(metrics.OutcomeCreated, time.Second)
	m.ObserveClassify(metrics.OutcomeInvalid, time.Second)
	m.ObserveGateway("google", "gemini", "ok", time.Second)
	m.ObserveViolation("invalid_label")

	if got := testutil.ToFloat64(m.ClassifyTotal.WithLabelValues(metrics.OutcomeCreated)); got != 2 {
		t.Errorf("classify created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.GatewayTotal.WithLabelValues("google", "gemini", "ok")); got != 1 {
		t.Errorf("gateway ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Violations.WithLabelValues("invalid_label")); got != 1 {
		t.Errorf("violations = %v, want 1", got)
	}
}

func TestMiddlewareUsesPattern(t *testing.T) {
	m := newMetrics(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /results/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := m.Middleware()(mux)

	for _, id := range []string{"a", "b"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/results/"+id, nil))
	}

	if got := testutil.ToFloat64(m.HTTPTotal.WithLabelValues("GET", "GET /results/{id}", "404")); got != 2 {
		t.Errorf("http total = %v, want 2", got)
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := newMetrics(t)
	m.ObserveClassify(metrics.OutcomeExisting, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `schemata_classify_total{outcome="existing"} 1`) {
		t.Errorf("exposition missing classify counter:\n%s", body)
	}
}
