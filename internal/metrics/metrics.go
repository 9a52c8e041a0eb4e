// Package metrics exposes Prometheus collectors for HTTP traffic and progress events
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patientportal/backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	VideoCompletionsTotal   prometheus.Counter
	ProgramsCompletedTotal  prometheus.Counter
	ProgressRecomputeTotal  *prometheus.CounterVec
	StoreRetriesTotal       *prometheus.CounterVec
	NotificationFailedTotal prometheus.Counter
}

// NewCollector registers the collectors with reg. A nil reg uses the default registerer.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		VideoCompletionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "progress",
			Name:      "video_completions_total",
			Help:      "Total video completion events persisted.",
		}),

		ProgramsCompletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "progress",
			Name:      "programs_completed_total",
			Help:      "Total transitions of a user's program to completed.",
		}),

		ProgressRecomputeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "progress",
			Name:      "recompute_total",
			Help:      "Progress recomputations by outcome.",
		}, []string{"outcome"}),

		StoreRetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "store",
			Name:      "retries_total",
			Help:      "Store operations retried after a failure, by operation.",
		}, []string{"operation"}),

		NotificationFailedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "notifications",
			Name:      "enqueue_failed_total",
			Help:      "Program completion notifications that could not be enqueued.",
		}),
	}
}

// Middleware records request count, latency, and in-flight requests per chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		c.InFlightGauge.Inc()
		defer c.InFlightGauge.Dec()

		ww := middleware.NewStatusRecorder(w)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.Status())

		c.RequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		c.RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the metrics of the default gatherer
func Handler() http.Handler {
	return promhttp.Handler()
}
