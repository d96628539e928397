package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	snapshotsProcessed prometheus.Counter
	snapshotsDuplicate prometheus.Counter
	snapshotsStale     prometheus.Counter
	snapshotErrors     prometheus.Counter
	ingestLatency      prometheus.Histogram
	seriesTracked      prometheus.Gauge
	progressions       *prometheus.CounterVec

	// Upstream feed
	polls           *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	upstreamRetries prometheus.Counter

	// Predictions
	predictionsSubmitted prometheus.Counter
	predictionsRejected  *prometheus.CounterVec
	outcomes             *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount  prometheus.Gauge
	workerErrors prometheus.Counter

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the Go runtime collectors off /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "puckpicks",
		subsystem:        "playoffs",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.snapshotsProcessed = auto.NewCounter(m.counterOpts("snapshots_processed_total",
		"Series snapshots persisted to the store"))
	m.snapshotsDuplicate = auto.NewCounter(m.counterOpts("snapshots_duplicate_total",
		"Series snapshots skipped because nothing changed"))
	m.snapshotsStale = auto.NewCounter(m.counterOpts("snapshots_stale_total",
		"Series snapshots skipped because the store holds a newer one"))
	m.snapshotErrors = auto.NewCounter(m.counterOpts("snapshot_errors_total",
		"Series snapshots that failed to persist"))
	m.ingestLatency = auto.NewHistogram(m.histogramOpts("ingest_latency_milliseconds",
		"Time to persist one series snapshot in milliseconds"))
	m.seriesTracked = auto.NewGauge(m.gaugeOpts("series_tracked",
		"Number of series known to the store"))
	m.progressions = auto.NewCounterVec(m.counterOpts("series_progression_total",
		"Persisted snapshots by series progression"), []string{"progression"})

	m.polls = auto.NewCounterVec(m.counterOpts("upstream_polls_total",
		"Upstream feed polls by result"), []string{"result"})
	m.upstreamLatency = auto.NewHistogram(m.histogramOpts("upstream_latency_milliseconds",
		"Upstream feed request latency in milliseconds"))
	m.upstreamRetries = auto.NewCounter(m.counterOpts("upstream_retries_total",
		"Upstream feed requests retried after a transient failure"))

	m.predictionsSubmitted = auto.NewCounter(m.counterOpts("predictions_submitted_total",
		"Predictions accepted"))
	m.predictionsRejected = auto.NewCounterVec(m.counterOpts("predictions_rejected_total",
		"Predictions rejected by reason"), []string{"reason"})
	m.outcomes = auto.NewCounterVec(m.counterOpts("outcomes_total",
		"Prediction classifications served by outcome"), []string{"outcome"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size",
		"Current number of snapshots waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity",
		"Configured queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total",
		"Snapshots enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total",
		"Snapshots dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Snapshots rejected by a full or closed queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count",
		"Number of running workers"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Errors returned while processing snapshots"))

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds",
		"Repository write latency in milliseconds"))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds",
		"Repository read latency in milliseconds"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status code"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds"))
}

// RecordSnapshotProcessed counts a persisted snapshot.
func RecordSnapshotProcessed() { globalManager.snapshotsProcessed.Inc() }

// RecordSnapshotDuplicate counts a skipped unchanged snapshot.
func RecordSnapshotDuplicate() { globalManager.snapshotsDuplicate.Inc() }

// RecordSnapshotStale counts a snapshot older than the stored series.
func RecordSnapshotStale() { globalManager.snapshotsStale.Inc() }

// RecordSnapshotError counts a snapshot that failed to persist.
func RecordSnapshotError() { globalManager.snapshotErrors.Inc() }

// RecordIngestLatency observes the time spent persisting one snapshot.
func RecordIngestLatency(latencyMs float64) { globalManager.ingestLatency.Observe(latencyMs) }

// UpdateSeriesTracked sets the number of series in the store.
func UpdateSeriesTracked(count int) { globalManager.seriesTracked.Set(float64(count)) }

// RecordSeriesProgression counts a persisted snapshot by progression.
func RecordSeriesProgression(progression string) {
	globalManager.progressions.WithLabelValues(progression).Inc()
}

// RecordPoll counts an upstream poll by result ("ok" or "error").
func RecordPoll(result string) { globalManager.polls.WithLabelValues(result).Inc() }

// RecordUpstreamLatency observes one upstream request.
func RecordUpstreamLatency(latencyMs float64) { globalManager.upstreamLatency.Observe(latencyMs) }

// RecordUpstreamRetry counts a retried upstream request.
func RecordUpstreamRetry() { globalManager.upstreamRetries.Inc() }

// RecordPredictionSubmitted counts an accepted prediction.
func RecordPredictionSubmitted() { globalManager.predictionsSubmitted.Inc() }

// RecordPredictionRejected counts a rejected prediction.
func RecordPredictionRejected(reason string) {
	globalManager.predictionsRejected.WithLabelValues(reason).Inc()
}

// RecordOutcome counts a served classification.
func RecordOutcome(outcome string) { globalManager.outcomes.WithLabelValues(outcome).Inc() }

// UpdateQueueSize sets the current queue backlog.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue counts an enqueued snapshot.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued snapshot.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerError counts a worker processing error.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordRepositoryUpdateLatency observes a repository write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency observes a repository read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
