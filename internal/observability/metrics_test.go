package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	_ "github.com/bfauber71/MyParkingMgr-sub002/testing"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware)
	router.Get("/vehicles/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/vehicles/5", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `parkingmgr_http_requests_total{code="200",route="/vehicles/{id}"} 1`) {
		t.Fatalf("request counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "parkingmgr_http_request_duration_seconds_bucket") {
		t.Fatalf("duration histogram missing from exposition")
	}
}

func TestCountDenial(t *testing.T) {
	metrics := NewMetrics()
	metrics.CountDenial("Administrator privilege required")
	metrics.CountDenial("Administrator privilege required")

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `parkingmgr_authz_denials_total{reason="Administrator privilege required"} 2`) {
		t.Fatalf("denial counter missing from exposition:\n%s", rec.Body.String())
	}
}

func TestNewAuditFailuresCounter(t *testing.T) {
	metrics := NewMetrics()
	counter := NewAuditFailuresCounter(metrics.Registerer())
	counter.Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "parkingmgr_audit_write_failures_total 1") {
		t.Fatalf("audit failure counter missing from exposition:\n%s", rec.Body.String())
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.CountDenial("x")

	handled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handled = true })
	metrics.Middleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !handled {
		t.Fatal("nil metrics middleware must pass requests through")
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics handler, got %d", rec.Code)
	}
}
