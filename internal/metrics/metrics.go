package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lyricsync_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Burn Metrics
	BurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_burns_total",
			Help: "Total number of burn invocations",
		},
		[]string{"status"},
	)

	BurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lyricsync_burn_duration_seconds",
			Help:    "Wall-clock duration of burn invocations",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9), // 1s to ~4 min
		},
	)

	BurnsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lyricsync_burns_in_progress",
			Help: "Number of encoder processes currently running",
		},
	)

	BurnsWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lyricsync_burns_waiting",
			Help: "Number of burn requests waiting for an admission slot",
		},
	)

	// Probe Metrics
	ProbeFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_probe_fallbacks_total",
			Help: "Probe results that did not come from the JSON stream listing",
		},
		[]string{"kind"},
	)

	// Transcription Metrics
	TranscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_transcriptions_total",
			Help: "Total number of transcription runs",
		},
		[]string{"status"},
	)

	TranscriptionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lyricsync_transcription_duration_seconds",
			Help:    "Duration of speech-to-text runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Segment Store Metrics
	SegmentWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_segment_writes_total",
			Help: "Total number of segment replacement transactions",
		},
		[]string{"status"},
	)

	// Archive Metrics
	ArchiveOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_archive_operations_total",
			Help: "Total number of render archive operations",
		},
		[]string{"operation", "status"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordBurn records a finished burn invocation
func RecordBurn(status string, duration float64) {
	BurnsTotal.WithLabelValues(status).Inc()
	BurnDuration.Observe(duration)
}

// RecordProbeFallback records a probe that fell back past JSON parsing
func RecordProbeFallback(kind string) {
	ProbeFallbacksTotal.WithLabelValues(kind).Inc()
}

// RecordTranscription records a finished transcription run
func RecordTranscription(status string, duration float64) {
	TranscriptionsTotal.WithLabelValues(status).Inc()
	TranscriptionDuration.Observe(duration)
}

// RecordSegmentWrite records a segment replacement attempt
func RecordSegmentWrite(status string) {
	SegmentWritesTotal.WithLabelValues(status).Inc()
}

// RecordArchiveOperation records a render archive operation
func RecordArchiveOperation(operation, status string) {
	ArchiveOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
