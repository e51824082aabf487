package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/widgets/42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// The counter must label by the chi route pattern, not the raw path,
	// or per-id URLs explode the cardinality.
	got := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/widgets/{id}", "200"))
	if got != 1 {
		t.Errorf("requests_total{/widgets/{id}} = %v, want 1", got)
	}
	raw := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/widgets/42", "200"))
	if raw != 0 {
		t.Errorf("requests_total{/widgets/42} = %v, want 0", raw)
	}
}
