// Package metrics provides Prometheus metrics for the matching service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomePartial   = "partial"
	OutcomeCancelled = "cancelled"
	OutcomeRejected  = "rejected"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Matching
	batches          *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
	batchPoolSize    prometheus.Histogram
	recordsEvaluated *prometheus.CounterVec
	recordsSkipped   *prometheus.CounterVec
	belowThreshold   prometheus.Counter
	matchScore       prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Jobs
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueRejected     prometheus.Counter
	jobs              *prometheus.CounterVec
	jobLatency        prometheus.Histogram
	jobDuplicates     prometheus.Counter
	workerCount       prometheus.Gauge
	workerActiveCount prometheus.Gauge

	// Store
	storeLatency *prometheus.HistogramVec
	storeRecords prometheus.Gauge

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "matchcore",
		subsystem:      "engine",
		latencyBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.batches = auto.NewCounterVec(m.counterOpts("batches_total", "Ranking batches by direction and outcome"),
		[]string{"direction", "outcome"})
	m.batchDuration = auto.NewHistogramVec(m.histogramOpts("batch_duration_milliseconds", "Ranking batch wall time in milliseconds", m.latencyBuckets),
		[]string{"direction"})
	m.batchPoolSize = auto.NewHistogram(m.histogramOpts("batch_pool_size", "Records supplied per batch",
		prometheus.ExponentialBuckets(1, 4, 10)))
	m.recordsEvaluated = auto.NewCounterVec(m.counterOpts("records_evaluated_total", "Pool records scored"),
		[]string{"direction"})
	m.recordsSkipped = auto.NewCounterVec(m.counterOpts("records_skipped_total", "Pool records skipped by validation"),
		[]string{"direction"})
	m.belowThreshold = auto.NewCounter(m.counterOpts("results_below_threshold_total", "Results dropped by the minimum score"))
	m.matchScore = auto.NewHistogram(m.histogramOpts("match_score", "Composite score of returned results",
		prometheus.LinearBuckets(0.1, 0.1, 10)))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.httpRateLimited = auto.NewCounterVec(m.counterOpts("http_rate_limited_total", "Requests rejected by the rate limiter"),
		[]string{"endpoint"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size over capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Jobs dequeued"))
	m.queueRejected = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs rejected because the queue was full"))
	m.jobs = auto.NewCounterVec(m.counterOpts("jobs_total", "Finished jobs by status"), []string{"status"})
	m.jobLatency = auto.NewHistogram(m.histogramOpts("job_processing_latency_milliseconds", "Job processing time in milliseconds", m.latencyBuckets))
	m.jobDuplicates = auto.NewCounter(m.counterOpts("job_duplicates_total", "Job submissions rejected as duplicate request ids"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured job workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently processing a job"))

	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds", "Result store operation latency in milliseconds", m.latencyBuckets),
		[]string{"operation"})
	m.storeRecords = auto.NewGauge(m.gaugeOpts("store_records", "Job records held by the result store"))

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type"),
		[]string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordBatch records one finished ranking batch.
func (m *Manager) RecordBatch(direction, outcome string, poolSize, evaluated, skipped, belowThreshold int, elapsed time.Duration) {
	m.batches.WithLabelValues(direction, outcome).Inc()
	m.batchDuration.WithLabelValues(direction).Observe(float64(elapsed.Microseconds()) / 1000)
	m.batchPoolSize.Observe(float64(poolSize))
	m.recordsEvaluated.WithLabelValues(direction).Add(float64(evaluated))
	m.recordsSkipped.WithLabelValues(direction).Add(float64(skipped))
	m.belowThreshold.Add(float64(belowThreshold))
}

// RecordRejectedBatch counts a batch refused before scoring.
func (m *Manager) RecordRejectedBatch(direction string) {
	m.batches.WithLabelValues(direction, OutcomeRejected).Inc()
}

// RecordMatchScore observes the score of a returned result.
func (m *Manager) RecordMatchScore(score float64) {
	m.matchScore.Observe(score)
}

// Global helpers. They delegate to the manager registered on GetRegistry.

// RecordBatch records one finished ranking batch.
func RecordBatch(direction, outcome string, poolSize, evaluated, skipped, belowThreshold int, elapsed time.Duration) {
	globalManager.RecordBatch(direction, outcome, poolSize, evaluated, skipped, belowThreshold, elapsed)
}

// RecordRejectedBatch counts a batch refused before scoring.
func RecordRejectedBatch(direction string) {
	globalManager.RecordRejectedBatch(direction)
}

// RecordMatchScore observes the score of a returned result.
func RecordMatchScore(score float64) {
	globalManager.RecordMatchScore(score)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited counts a request refused by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a job refused by a full queue.
func RecordQueueEnqueueError() {
	globalManager.queueRejected.Inc()
}

// RecordJob counts a finished job by status and observes its latency.
func RecordJob(status string, latencyMs float64) {
	globalManager.jobs.WithLabelValues(status).Inc()
	globalManager.jobLatency.Observe(latencyMs)
}

// RecordJobDuplicate counts a submission with an already seen request id.
func RecordJobDuplicate() {
	globalManager.jobDuplicates.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordStoreLatency observes a result store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateStoreRecords sets the number of stored job records.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
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

// GetRegistry returns the registry the global manager is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
