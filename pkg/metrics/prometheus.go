// Package metrics provides Prometheus metrics for the salesdash service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring pipeline
	refreshes        *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	employeesByGrade *prometheus.GaugeVec
	employeesUnrated prometheus.Gauge
	rowsSkipped      prometheus.Counter
	hrMatchMisses    prometheus.Counter
	lastRefreshUnix  prometheus.Gauge

	// External gateways
	gatewayLogins      *prometheus.CounterVec
	gatewayErrors      *prometheus.CounterVec
	exportPollAttempts prometheus.Histogram
	exportDuration     prometheus.Histogram

	// Refresh queue and worker
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected prometheus.Counter
	workerBusy    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorByEndpoint     *prometheus.CounterVec
	errorByType         *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salesdash",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.refreshes = auto.NewCounterVec(m.counterOpts("refreshes_total", "Load-and-score runs by outcome"), []string{"outcome"})
	m.refreshDuration = auto.NewHistogram(m.histogramOpts("refresh_duration_seconds", "Wall-clock duration of a load-and-score run",
		[]float64{1, 5, 15, 30, 60, 120, 300, 600}))
	m.employeesByGrade = auto.NewGaugeVec(m.gaugeOpts("employees_rated", "Employees per rating letter in the latest snapshot"), []string{"rating"})
	m.employeesUnrated = auto.NewGauge(m.gaugeOpts("employees_unrated", "Employees whose rating was undefined in the latest snapshot"))
	m.rowsSkipped = auto.NewCounter(m.counterOpts("rows_skipped_total", "Transaction rows skipped for lacking an employee name"))
	m.hrMatchMisses = auto.NewCounter(m.counterOpts("hr_match_misses_total", "Sales names without an HR directory match"))
	m.lastRefreshUnix = auto.NewGauge(m.gaugeOpts("last_refresh_unix", "Unix time of the latest published snapshot"))

	m.gatewayLogins = auto.NewCounterVec(m.counterOpts("gateway_logins_total", "Authentication calls against external APIs"), []string{"gateway", "outcome"})
	m.gatewayErrors = auto.NewCounterVec(m.counterOpts("gateway_errors_total", "External API failures by kind"), []string{"gateway", "kind"})
	m.exportPollAttempts = auto.NewHistogram(m.histogramOpts("export_poll_attempts", "Task-status polls issued per export",
		[]float64{1, 2, 4, 8, 16, 32, 64, 120}))
	m.exportDuration = auto.NewHistogram(m.histogramOpts("export_duration_milliseconds", "Duration of an async sales export including download",
		m.histogramBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("refresh_queue_size", "Refresh jobs waiting for the worker"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("refresh_queue_capacity", "Capacity of the refresh queue"))
	m.queueRejected = auto.NewCounter(m.counterOpts("refresh_queue_rejected_total", "Refresh jobs rejected because the queue was full or closed"))
	m.workerBusy = auto.NewGauge(m.gaugeOpts("refresh_worker_busy", "1 while the refresh worker is running a job"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// RecordRefresh counts a finished load-and-score run.
func RecordRefresh(outcome string, duration time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.refreshes.WithLabelValues(outcome).Inc()
	globalManager.refreshDuration.Observe(duration.Seconds())
}

// UpdateRatingDistribution replaces the per-letter gauges.
func UpdateRatingDistribution(byLetter map[string]int, unrated int) {
	for _, letter := range []string{"A", "B", "C", "D"} {
		globalManager.employeesByGrade.WithLabelValues(letter).Set(float64(byLetter[letter]))
	}
	globalManager.employeesUnrated.Set(float64(unrated))
	globalManager.lastRefreshUnix.Set(float64(time.Now().Unix()))
}

// RecordRowsSkipped adds n skipped transaction rows.
func RecordRowsSkipped(n int) {
	if n > 0 {
		globalManager.rowsSkipped.Add(float64(n))
	}
}

// RecordHRMatchMiss counts one unresolved sales name.
func RecordHRMatchMiss() {
	globalManager.hrMatchMisses.Inc()
}

// RecordGatewayLogin counts an authentication call.
func RecordGatewayLogin(gateway string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	globalManager.gatewayLogins.WithLabelValues(gateway, outcome).Inc()
}

// RecordGatewayError counts an external API failure.
func RecordGatewayError(gateway, kind string) {
	globalManager.gatewayErrors.WithLabelValues(gateway, kind).Inc()
}

// RecordExport observes a finished export.
func RecordExport(attempts int, duration time.Duration) {
	globalManager.exportPollAttempts.Observe(float64(attempts))
	globalManager.exportDuration.Observe(float64(duration.Milliseconds()))
}

// UpdateQueueSize sets the refresh queue backlog.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a rejected refresh job.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// SetWorkerBusy flags the refresh worker as busy or idle.
func SetWorkerBusy(busy bool) {
	if busy {
		globalManager.workerBusy.Set(1)
		return
	}
	globalManager.workerBusy.Set(0)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry for serving metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns how often background gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
