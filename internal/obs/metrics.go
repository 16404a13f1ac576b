// Package obs holds observability wiring: prometheus metric definitions,
// registration, and the HTTP instrumentation middleware.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP-level metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Session lifecycle metrics. RefreshTotal's outcome label distinguishes
// internally what the API deliberately does not expose to end users.
var (
	LoginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authsvc_logins_total",
		Help: "Successful logins via the identity provider.",
	})

	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authsvc_refresh_total",
			Help: "Refresh attempts by outcome.",
		},
		[]string{"outcome"}, // success, invalid, expired, reuse
	)

	ReuseDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authsvc_refresh_reuse_detected_total",
		Help: "Refresh token reuse detections (each triggers mass revocation).",
	})

	RevocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authsvc_revocations_total",
			Help: "Refresh token revocations by scope.",
		},
		[]string{"scope"}, // single, user
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		LoginsTotal, RefreshTotal, ReuseDetectedTotal, RevocationsTotal,
	)
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps an HTTP handler with request count/latency/in-flight
// measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
