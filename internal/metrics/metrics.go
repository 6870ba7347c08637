// Package metrics provides Prometheus metrics for the yday server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yday_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yday_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.05, .1, .5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"method", "path"},
	)

	// Discogs API metrics
	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yday_discogs_calls_total",
			Help: "Total Discogs API calls",
		},
		[]string{"operation", "status"},
	)

	remoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yday_discogs_call_duration_seconds",
			Help:    "Discogs API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Reconciliation metrics
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yday_uploads_total",
			Help: "Total upload requests by result",
		},
		[]string{"result"},
	)

	itemOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yday_item_outcomes_total",
			Help: "Per-release outcomes",
		},
		[]string{"status"},
	)

	foldersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yday_folders_created_total",
			Help: "Collection folders created because the target was missing",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRemoteCall records a Discogs API call.
func RecordRemoteCall(operation string, duration time.Duration, success bool) {
	remoteCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	remoteCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordUpload records the top-level result of an upload ("ok", "invalid", "remote_error", "timeout").
func RecordUpload(result string) {
	uploadsTotal.WithLabelValues(result).Inc()
}

// RecordOutcome records a single per-release outcome.
func RecordOutcome(status string) {
	itemOutcomesTotal.WithLabelValues(status).Inc()
}

// RecordFolderCreated records an automatic folder creation.
func RecordFolderCreated() {
	foldersCreatedTotal.Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
//
// Requests are labeled by their matched route pattern to keep label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
