// Package metrics exposes prometheus counters for remote traffic, backups
// and the feed server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "remote_operations_total",
			Help:      "Remote gateway operations by operation and result",
		},
		[]string{"op", "result"},
	)

	backups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "backups_total",
			Help:      "Scheduled and manual cloud backups by result",
		},
		[]string{"result"},
	)

	leadsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.MetricNamespace,
			Name:      "leads",
			Help:      "Number of leads in the canonical collection",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "http_requests_total",
			Help:      "Feed server requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.MetricNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Feed server request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordRemote counts one remote operation outcome.
func RecordRemote(op, result string) {
	remoteOperations.WithLabelValues(op, result).Inc()
}

// RecordBackup counts one backup attempt outcome.
func RecordBackup(result string) {
	backups.WithLabelValues(result).Inc()
}

// SetLeads publishes the collection size.
func SetLeads(n int) {
	leadsGauge.Set(float64(n))
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		httpDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
