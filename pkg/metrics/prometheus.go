// Package metrics provides Prometheus metrics for the rankscope service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus collector rankscope exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Ingestion
	uploads      *prometheus.CounterVec
	rowsIngested prometheus.Counter
	rowsSkipped  prometheus.Counter

	// Store
	storeDomains         prometheus.Gauge
	storeSamples         prometheus.Gauge
	storePersistDuration prometheus.Histogram
	storePersistFailures prometheus.Counter
	storeLoadFailures    prometheus.Counter

	// Comparison
	comparisons          *prometheus.CounterVec
	comparisonDomains    prometheus.Histogram
	comparisonFailures   prometheus.Counter
	remoteFetchLatency   *prometheus.HistogramVec
	comparisonAxisLength prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rankscope",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often gauges should be refreshed by callers.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval is the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.uploads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "uploads_total",
		Help:      "CSV uploads by outcome (ok, no_valid_data, read_failure)",
	}, []string{"outcome"})

	m.rowsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_ingested_total",
		Help:      "Total CSV rows accepted as samples",
	})

	m.rowsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_skipped_total",
		Help:      "Total non-blank CSV rows discarded as unparseable",
	})

	m.storeDomains = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_domains",
		Help:      "Number of domains held by the sample store",
	})

	m.storeSamples = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_samples",
		Help:      "Number of samples held by the sample store",
	})

	m.storePersistDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_persist_duration_milliseconds",
		Help:      "Duration of full store re-serialization and write",
		Buckets:   m.histogramBuckets,
	})

	m.storePersistFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_persist_failures_total",
		Help:      "Persist attempts that failed; in-memory state stays authoritative",
	})

	m.storeLoadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_load_failures_total",
		Help:      "Startup loads that fell back to an empty store",
	})

	m.comparisons = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_total",
		Help:      "Comparison requests by outcome",
	}, []string{"outcome"})

	m.comparisonDomains = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparison_domains",
		Help:      "Number of domains requested per comparison",
		Buckets:   []float64{2, 3, 4, 5, 8, 12, 20},
	})

	m.comparisonFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparison_domain_failures_total",
		Help:      "Per-domain fetch failures isolated inside comparisons",
	})

	m.comparisonAxisLength = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparison_axis_length",
		Help:      "Length of the aligned date axis per comparison",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.remoteFetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_fetch_latency_milliseconds",
		Help:      "Latency of per-domain sample fetches by source",
		Buckets:   m.histogramBuckets,
	}, []string{"source"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Total number of errors by type",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordUpload counts an upload by outcome.
func RecordUpload(outcome string) {
	globalManager.uploads.WithLabelValues(outcome).Inc()
}

// RecordRows adds accepted and skipped CSV row counts.
func RecordRows(accepted, skipped int) {
	globalManager.rowsIngested.Add(float64(accepted))
	globalManager.rowsSkipped.Add(float64(skipped))
}

// UpdateStoreSize sets the store gauges.
func UpdateStoreSize(domains, samples int) {
	globalManager.storeDomains.Set(float64(domains))
	globalManager.storeSamples.Set(float64(samples))
}

// RecordPersist observes a persist duration and counts failures.
func RecordPersist(durationMs float64, failed bool) {
	globalManager.storePersistDuration.Observe(durationMs)
	if failed {
		globalManager.storePersistFailures.Inc()
	}
}

// RecordStoreLoadFailure counts a load that fell back to an empty store.
func RecordStoreLoadFailure() {
	globalManager.storeLoadFailures.Inc()
}

// RecordComparison counts a comparison and observes its shape.
func RecordComparison(outcome string, domains, axisLength int) {
	globalManager.comparisons.WithLabelValues(outcome).Inc()
	globalManager.comparisonDomains.Observe(float64(domains))
	if axisLength > 0 {
		globalManager.comparisonAxisLength.Observe(float64(axisLength))
	}
}

// RecordComparisonFailure counts one isolated per-domain failure.
func RecordComparisonFailure() {
	globalManager.comparisonFailures.Inc()
}

// RecordFetchLatency observes a per-domain sample fetch.
func RecordFetchLatency(source string, latencyMs float64) {
	globalManager.remoteFetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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
