// Package metrics holds the Prometheus metrics for bag decoding and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Decode metrics
	recordsTotal      *prometheus.CounterVec
	decodeTotal       *prometheus.CounterVec
	decodeErrorsTotal *prometheus.CounterVec
	indexEntriesTotal prometheus.Counter
	scanDuration      prometheus.Histogram

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bagindex_records_total",
				Help: "Total number of records read, by op",
			},
			[]string{"op"},
		),

		decodeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bagindex_decode_total",
				Help: "Total number of typed record decodes, by op and status",
			},
			[]string{"op", "status"},
		),

		decodeErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bagindex_decode_errors_total",
				Help: "Total number of decode errors, by kind",
			},
			[]string{"kind"},
		),

		indexEntriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bagindex_index_entries_total",
				Help: "Total number of index entries decoded",
			},
		),

		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bagindex_scan_duration_seconds",
				Help:    "Duration of a full bag scan in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bagindex_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bagindex_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bagindex_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),
	}
}

// RecordSeen counts a raw record read from a bag.
func (m *Metrics) RecordSeen(op string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(op).Inc()
}

// RecordDecode counts a typed decode attempt. kind labels the error and is
// ignored on success.
func (m *Metrics) RecordDecode(op string, success bool, kind string) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !success {
		status = statusError
		m.decodeErrorsTotal.WithLabelValues(kind).Inc()
	}
	m.decodeTotal.WithLabelValues(op, status).Inc()
}

// RecordIndexEntries adds n decoded index entries.
func (m *Metrics) RecordIndexEntries(n int) {
	if m == nil {
		return
	}
	m.indexEntriesTotal.Add(float64(n))
}

// ObserveScan records the duration of a scan.
func (m *Metrics) ObserveScan(d time.Duration) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(d.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Capture the status code written by the handler
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
