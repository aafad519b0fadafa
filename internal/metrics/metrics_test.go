package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/forms/{op}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/forms/{op}", "422"))

	req := httptest.NewRequest("POST", "/v1/forms/fill", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/forms/{op}", "422"))
	if after-before != 1 {
		t.Errorf("expected requests_total to grow by 1, got %f", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_DefaultStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", http.NoBody))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/healthz", "200"))

	if after-before != 1 {
		t.Errorf("expected requests_total to grow by 1, got %f", after-before)
	}
}

func TestObserveOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(operationsTotal.WithLabelValues(OperationFill, "ok"))
	errBefore := testutil.ToFloat64(operationsTotal.WithLabelValues(OperationFill, "error"))

	ObserveOperation(OperationFill, time.Now(), nil)
	ObserveOperation(OperationFill, time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(operationsTotal.WithLabelValues(OperationFill, "ok")) - okBefore; got != 1 {
		t.Errorf("ok count grew by %f, want 1", got)
	}
	if got := testutil.ToFloat64(operationsTotal.WithLabelValues(OperationFill, "error")) - errBefore; got != 1 {
		t.Errorf("error count grew by %f, want 1", got)
	}
}

func TestObserveFill(t *testing.T) {
	fieldsBefore := testutil.ToFloat64(fillUpdatesTotal.WithLabelValues("field"))
	widgetsBefore := testutil.ToFloat64(fillUpdatesTotal.WithLabelValues("widget"))
	unmatchedBefore := testutil.ToFloat64(fillUnmatchedTotal)

	ObserveFill(2, 3, 1)

	if got := testutil.ToFloat64(fillUpdatesTotal.WithLabelValues("field")) - fieldsBefore; got != 2 {
		t.Errorf("field updates grew by %f, want 2", got)
	}
	if got := testutil.ToFloat64(fillUpdatesTotal.WithLabelValues("widget")) - widgetsBefore; got != 3 {
		t.Errorf("widget updates grew by %f, want 3", got)
	}
	if got := testutil.ToFloat64(fillUnmatchedTotal) - unmatchedBefore; got != 1 {
		t.Errorf("unmatched grew by %f, want 1", got)
	}
}
