// Package metrics provides Prometheus metrics for the courtside session service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Score and sAA histogram buckets.
var (
	scoreBuckets     = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}                   //nolint:gochecknoglobals // fixed buckets
	biometricBuckets = []float64{40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160} //nolint:gochecknoglobals // fixed buckets
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Session metrics
	cyclesStarted     prometheus.Counter
	cyclesCompleted   prometheus.Counter
	cyclesCancelled   prometheus.Counter
	actionsLogged     *prometheus.CounterVec
	performanceScore  prometheus.Histogram
	biometricValue    *prometheus.HistogramVec
	captureRejections *prometheus.CounterVec
	phase             prometheus.Gauge
	timelinePointer   prometheus.Gauge
	recordsTotal      prometheus.Gauge

	// Clock metrics
	clockRemaining prometheus.Gauge
	clockQuarter   prometheus.Gauge
	clockTicks     *prometheus.CounterVec

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	archiveWrites           prometheus.Counter

	// Stream metrics
	streamClients  prometheus.Gauge
	streamMessages *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
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
		namespace:        "courtside",
		subsystem:        "session",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.cyclesStarted = m.counter("cycles_started_total", "Total number of event blocks started")
	m.cyclesCompleted = m.counter("cycles_completed_total", "Total number of event blocks committed to history")
	m.cyclesCancelled = m.counter("cycles_cancelled_total", "Total number of event blocks cancelled before commit")
	m.actionsLogged = m.counterVec("actions_logged_total", "Total number of logged player actions by tag", "action")
	m.performanceScore = m.histogram("performance_score", "Distribution of committed checkpoint performance scores", scoreBuckets)
	m.biometricValue = m.histogramVec("biometric_value", "Distribution of committed sAA readings in U/mL", biometricBuckets, "source")
	m.captureRejections = m.counterVec("capture_rejections_total", "Total number of rejected survey or biometric submissions", "capture")
	m.phase = m.gauge("phase", "Current orchestrator phase (0 idle .. 4 committing)")
	m.timelinePointer = m.gauge("timeline_pointer", "Current timeline point (1..7)")
	m.recordsTotal = m.gauge("records_total", "Number of committed timeline records")

	m.clockRemaining = m.gauge("clock_remaining_seconds", "Seconds remaining in the current quarter")
	m.clockQuarter = m.gauge("clock_quarter", "Current game quarter")
	m.clockTicks = m.counterVec("clock_ticks_total", "Total number of clock decrements by mode", "mode")

	m.queueSize = m.gauge("archive_queue_size", "Current size of the archive queue")
	m.queueCapacity = m.gauge("archive_queue_capacity", "Maximum archive queue capacity")
	m.queueUtilization = m.gauge("archive_queue_utilization_ratio", "Archive queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("archive_queue_enqueue_total", "Total number of records enqueued for archival")
	m.queueDequeueRate = m.counter("archive_queue_dequeue_total", "Total number of records dequeued for archival")
	m.queueEnqueueErrors = m.counter("archive_queue_enqueue_errors_total", "Total number of archive enqueue errors")
	m.queueProcessingLatency = m.histogram("archive_queue_latency_milliseconds", "Archive enqueue latency in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("archive_worker_active_count", "Number of archive workers")
	m.workerProcessingLatency = m.histogram("archive_worker_latency_milliseconds", "Archive write latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("archive_worker_errors_total", "Total number of archive write errors")
	m.archiveWrites = m.counter("archive_writes_total", "Total number of archived timeline records")

	m.streamClients = m.gauge("stream_clients", "Connected websocket stream clients")
	m.streamMessages = m.counterVec("stream_messages_total", "Total number of stream messages broadcast by type", "type")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors",
		m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Session Metrics Functions.

// RecordCycleStarted increments the started event block counter.
func RecordCycleStarted() {
	globalManager.cyclesStarted.Inc()
}

// RecordCycleCompleted increments the committed event block counter.
func RecordCycleCompleted() {
	globalManager.cyclesCompleted.Inc()
}

// RecordCycleCancelled increments the cancelled event block counter.
func RecordCycleCancelled() {
	globalManager.cyclesCancelled.Inc()
}

// RecordActionLogged increments the action counter for a tag.
func RecordActionLogged(action string) {
	globalManager.actionsLogged.WithLabelValues(action).Inc()
}

// RecordPerformanceScore observes a committed checkpoint's performance score.
func RecordPerformanceScore(score float64) {
	globalManager.performanceScore.Observe(score)
}

// RecordBiometricValue observes a committed sAA reading.
func RecordBiometricValue(source string, value float64) {
	globalManager.biometricValue.WithLabelValues(source).Observe(value)
}

// RecordCaptureRejected counts a rejected submission ("survey" or "biometric").
func RecordCaptureRejected(capture string) {
	globalManager.captureRejections.WithLabelValues(capture).Inc()
}

// UpdatePhase sets the orchestrator phase gauge.
func UpdatePhase(phase int) {
	globalManager.phase.Set(float64(phase))
}

// UpdateTimelinePointer sets the current timeline point.
func UpdateTimelinePointer(point int) {
	globalManager.timelinePointer.Set(float64(point))
}

// UpdateRecordsTotal sets the committed record count.
func UpdateRecordsTotal(count int) {
	globalManager.recordsTotal.Set(float64(count))
}

// Clock Metrics Functions.

// UpdateClockRemaining sets the seconds remaining in the quarter.
func UpdateClockRemaining(seconds int) {
	globalManager.clockRemaining.Set(float64(seconds))
}

// UpdateClockQuarter sets the current quarter.
func UpdateClockQuarter(quarter int) {
	globalManager.clockQuarter.Set(float64(quarter))
}

// RecordClockTick counts a clock decrement in the given mode.
func RecordClockTick(mode string) {
	globalManager.clockTicks.WithLabelValues(mode).Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current archive queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum archive queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the archive queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of archive workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records archive write latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the archive error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordArchiveWrite increments the archived record counter.
func RecordArchiveWrite() {
	globalManager.archiveWrites.Inc()
}

// Stream Metrics Functions.

// UpdateStreamClients sets the connected websocket client count.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// RecordStreamMessage counts a broadcast message of the given type.
func RecordStreamMessage(msgType string) {
	globalManager.streamMessages.WithLabelValues(msgType).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Metrics Functions.

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
