package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func signRouter(m *Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/sign/{doc_id}/{token}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func TestMiddleware_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))

	m := NewMetrics("esign_test")
	m.Tracer = tp.Tracer("esign_test")

	signRouter(m).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sign/doc-1/secret-token", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/sign/{doc_id}/{token}", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", http.StatusNotFound))
	assert.Contains(t, spans[0].Attributes(), attribute.String("http.route", "/api/sign/{doc_id}/{token}"))
}

func TestInitTracing_ExportsSpansToLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tp := InitTracing("esign-test", "test", zap.New(core))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	m := NewMetrics("esign_test")
	signRouter(m).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sign/doc-1/secret-token", nil))

	require.NoError(t, tp.Shutdown(context.Background()))

	entries := logs.FilterMessage("[Tracing] спан завершён").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET /api/sign/{doc_id}/{token}", fields["span"])
	assert.Equal(t, "404", fields["http.status_code"])
	assert.NotEmpty(t, fields["trace_id"])
	assert.NotContains(t, fields["span"], "secret-token")
}
