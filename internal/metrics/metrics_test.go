package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := NewMetrics("esign_test")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/sign/{doc_id}/{token}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sign/doc-1/secret-token", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCount.WithLabelValues(http.MethodGet, "/api/sign/{doc_id}/{token}", "404")))
}

func TestRecorder(t *testing.T) {
	m := NewMetrics("esign_test")

	m.EmailSent("smtp", true)
	m.EmailSent("smtp", false)
	m.EmailSent("smtp", false)
	m.DocumentSigned()
	m.DocumentCompleted()
	m.CompletionFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("smtp", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("smtp", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsSigned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsDone))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompletionFailure))
}

func TestHandler_Exposes(t *testing.T) {
	m := NewMetrics("esign_test")
	m.DocumentSigned()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "esign_test_signing_signatures_total 1")
}
