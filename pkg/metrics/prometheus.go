// Package metrics provides Prometheus metrics for the call evaluation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for pipeline invocations.
const (
	OutcomeLive     = "live"
	OutcomeDegraded = "degraded"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline Metrics
	evaluations       *prometheus.CounterVec
	degradedReasons   *prometheus.CounterVec
	validationErrors  *prometheus.CounterVec
	stageLatency      *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	uploadSize        prometheus.Histogram
	totalScore        prometheus.Histogram
	transcriptLength  prometheus.Histogram
	evaluationActive  prometheus.Gauge
	capabilityEnabled *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "callqa",
		subsystem:        "pipeline",
		histogramBuckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.evaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("evaluations_total"),
		Help:        "Pipeline invocations by outcome (live, degraded, rejected, failed)",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.degradedReasons = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("degraded_total"),
		Help:        "Degraded-mode substitutions by reason",
		ConstLabels: constLabels,
	}, []string{"reason"})

	m.validationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("validation_errors_total"),
		Help:        "Rejected uploads by validation kind",
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stage_latency_milliseconds"),
		Help:        "Latency of external pipeline stages in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"stage", "status"})

	m.externalErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("external_errors_total"),
		Help:        "Failures of external capabilities by component and error type",
		ConstLabels: constLabels,
	}, []string{"component", "error_type"})

	m.uploadSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("upload_size_bytes"),
		Help:        "Size of accepted audio uploads",
		Buckets:     prometheus.ExponentialBuckets(64*1024, 4, 8),
		ConstLabels: constLabels,
	})

	m.totalScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("total_score"),
		Help:        "Distribution of live evaluation totals",
		Buckets:     prometheus.LinearBuckets(10, 10, 10),
		ConstLabels: constLabels,
	})

	m.transcriptLength = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("transcript_length_chars"),
		Help:        "Length of transcripts handed to the evaluation engine",
		Buckets:     prometheus.ExponentialBuckets(100, 2, 10),
		ConstLabels: constLabels,
	})

	m.evaluationActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("in_flight"),
		Help:        "Pipeline invocations currently running",
		ConstLabels: constLabels,
	})

	m.capabilityEnabled = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("capability_configured"),
		Help:        "1 when the external capability is configured, labelled by provider",
		ConstLabels: constLabels,
	}, []string{"capability", "provider"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("errors_total"),
		Help:        "Total number of HTTP errors by endpoint",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// RecordEvaluation counts a finished pipeline invocation.
func (m *Manager) RecordEvaluation(outcome string) {
	if !m.enabled {
		return
	}
	m.evaluations.WithLabelValues(outcome).Inc()
}

// RecordDegraded counts a degraded-mode substitution.
func (m *Manager) RecordDegraded(reason string) {
	if !m.enabled {
		return
	}
	m.degradedReasons.WithLabelValues(reason).Inc()
}

// RecordValidationError counts a rejected upload.
func (m *Manager) RecordValidationError(kind string) {
	if !m.enabled {
		return
	}
	m.validationErrors.WithLabelValues(kind).Inc()
}

// RecordStageLatency observes the latency of an external stage.
func (m *Manager) RecordStageLatency(stage, status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.stageLatency.WithLabelValues(stage, status).Observe(float64(d.Milliseconds()))
}

// RecordExternalError counts a failure of an external capability.
func (m *Manager) RecordExternalError(component, errorType string) {
	if !m.enabled {
		return
	}
	m.externalErrors.WithLabelValues(component, errorType).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordEvaluation counts a finished pipeline invocation.
func RecordEvaluation(outcome string) { globalManager.RecordEvaluation(outcome) }

// RecordDegraded counts a degraded-mode substitution.
func RecordDegraded(reason string) { globalManager.RecordDegraded(reason) }

// RecordValidationError counts a rejected upload.
func RecordValidationError(kind string) { globalManager.RecordValidationError(kind) }

// RecordStageLatency observes the latency of an external stage.
func RecordStageLatency(stage, status string, d time.Duration) {
	globalManager.RecordStageLatency(stage, status, d)
}

// RecordExternalError counts a failure of an external capability.
func RecordExternalError(component, errorType string) {
	globalManager.RecordExternalError(component, errorType)
}

// RecordUploadSize observes an accepted upload size.
func RecordUploadSize(bytes int64) {
	globalManager.uploadSize.Observe(float64(bytes))
}

// RecordTotalScore observes a live evaluation total.
func RecordTotalScore(total int) {
	globalManager.totalScore.Observe(float64(total))
}

// RecordTranscriptLength observes a transcript length in characters.
func RecordTranscriptLength(chars int) {
	globalManager.transcriptLength.Observe(float64(chars))
}

// IncInFlight marks a pipeline invocation as started.
func IncInFlight() { globalManager.evaluationActive.Inc() }

// DecInFlight marks a pipeline invocation as finished.
func DecInFlight() { globalManager.evaluationActive.Dec() }

// SetCapability records whether an external capability is configured.
func SetCapability(capability, provider string, configured bool) {
	v := 0.0
	if configured {
		v = 1
	}
	globalManager.capabilityEnabled.WithLabelValues(capability, provider).Set(v)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
