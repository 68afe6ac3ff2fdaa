package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Metrics : HTTP-метрики и счетчики подписания
type Metrics struct {
	registry *prometheus.Registry

	RequestCount      *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	EmailsSent        *prometheus.CounterVec
	DocumentsSigned   prometheus.Counter
	DocumentsDone     prometheus.Counter
	CompletionFailure prometheus.Counter

	Tracer trace.Tracer
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Signing request emails by provider and result",
		}, []string{"provider", "result"}),
		DocumentsSigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "signatures_total",
			Help:      "Recipients who finished signing",
		}),
		DocumentsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "documents_completed_total",
			Help:      "Documents signed by every signer",
		}),
		CompletionFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "completion_failures_total",
			Help:      "Failed attempts to render field values into the PDF",
		}),
		Tracer: otel.Tracer(namespace),
	}

	registry.MustRegister(
		m.RequestCount,
		m.RequestDuration,
		m.EmailsSent,
		m.DocumentsSigned,
		m.DocumentsDone,
		m.CompletionFailure,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) EmailSent(provider string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.EmailsSent.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) DocumentSigned()    { m.DocumentsSigned.Inc() }
func (m *Metrics) DocumentCompleted() { m.DocumentsDone.Inc() }
func (m *Metrics) CompletionFailed()  { m.CompletionFailure.Inc() }

// Middleware : метка route берется из шаблона chi, чтобы токены подписи не попадали в метрики
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.Tracer.Start(r.Context(), r.Method+" request")
		defer span.End()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		duration := time.Since(start).Seconds()
		m.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(duration)

		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", wrapped.statusCode),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Noop : для тестов и запуска без метрик
type Noop struct{}

func (Noop) EmailSent(string, bool) {}
func (Noop) DocumentSigned()        {}
func (Noop) DocumentCompleted()     {}
func (Noop) CompletionFailed()      {}
