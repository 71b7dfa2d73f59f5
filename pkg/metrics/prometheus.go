// Package metrics provides Prometheus metrics for the robocloud service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 5 * time.Second
)

// frameLatencyBuckets cover 0.1ms..500ms; typical publish periods are 10-100ms.
var frameLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 50, 100, 250, 500} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the robocloud service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  atomic.Int64 // nanoseconds
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Frame pipeline
	framesPublished     prometheus.Counter
	frameComputeLatency prometheus.Histogram
	frameOverruns       prometheus.Counter
	stateWaitTimeouts   prometheus.Counter
	framePoints         prometheus.Gauge
	frameSegments       prometheus.Gauge
	frameResizes        prometheus.Counter
	publishErrors       prometheus.Counter
	shapesSkipped       prometheus.Counter

	// Joint-state ingest
	jointStateMessages *prometheus.CounterVec
	jointStateRejected *prometheus.CounterVec
	jointStateApplied  prometheus.Counter

	// Queue Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueErrors      prometheus.Counter

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "robocloud",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.framesPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frames_published_total"),
		Help: "Total number of point-cloud frames handed to the transport",
	})

	m.frameComputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("frame_compute_milliseconds"),
		Help:    "Time spent transforming and publishing one frame",
		Buckets: frameLatencyBuckets,
	})

	m.frameOverruns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frame_overruns_total"),
		Help: "Frames whose compute time exceeded the target period",
	})

	m.stateWaitTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("state_wait_timeouts_total"),
		Help: "Waits for a fresh skeletal state that timed out",
	})

	m.framePoints = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frame_points"),
		Help: "Number of points in the last published frame",
	})

	m.frameSegments = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frame_segments"),
		Help: "Number of segments sampled in the last published frame",
	})

	m.frameResizes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frame_buffer_resizes_total"),
		Help: "Frames where the output buffer changed size after initialization",
	})

	m.publishErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("publish_errors_total"),
		Help: "Frames the transport failed to accept",
	})

	m.shapesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("shapes_skipped_total"),
		Help: "Non-mesh collision shapes skipped while sampling",
	})

	m.jointStateMessages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("joint_state_messages_total"),
		Help: "Joint-state messages accepted by source",
	}, []string{"source"})

	m.jointStateRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("joint_state_rejected_total"),
		Help: "Joint-state messages rejected by reason",
	}, []string{"reason"})

	m.jointStateApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("joint_state_applied_total"),
		Help: "Joint-state messages applied to the state monitor",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_size"),
		Help: "Current size of the joint-state queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_capacity"),
		Help: "Maximum capacity of the joint-state queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_utilization_ratio"),
		Help: "Queue utilization ratio (size / capacity)",
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueued_total"),
		Help: "Total number of messages enqueued",
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_dequeued_total"),
		Help: "Total number of messages dequeued",
	})

	m.queueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueue_errors_total"),
		Help: "Total number of enqueue failures",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_active_count"),
		Help: "Number of ingest workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("worker_processing_latency_milliseconds"),
		Help:    "Time to apply one joint-state message",
		Buckets: m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_errors_total"),
		Help: "Joint-state messages the worker failed to apply",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
			Name: m.name("http_requests_total"),
			Help: "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
			Name:    m.name("http_request_duration_milliseconds"),
			Help:    "HTTP request duration in milliseconds",
			Buckets: m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
			Name: m.name("errors_by_component_total"),
			Help: "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_memory_usage_bytes"),
		Help: "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_goroutine_count"),
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("system_gc_pause_time_milliseconds"),
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Frame pipeline.

// RecordFramePublished increments the published frames counter.
func RecordFramePublished() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.framesPublished.Inc()
}

// RecordFrameComputeLatency records frame compute time in milliseconds.
func RecordFrameComputeLatency(latencyMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.frameComputeLatency.Observe(latencyMs)
}

// RecordFrameOverrun increments the overrun counter.
func RecordFrameOverrun() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.frameOverruns.Inc()
}

// RecordStateWaitTimeout increments the state wait timeout counter.
func RecordStateWaitTimeout() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.stateWaitTimeouts.Inc()
}

// UpdateFrameSize sets the point and segment gauges for the last frame.
func UpdateFrameSize(points, segments int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.framePoints.Set(float64(points))
	globalManager.frameSegments.Set(float64(segments))
}

// RecordFrameResize increments the buffer resize counter.
func RecordFrameResize() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.frameResizes.Inc()
}

// RecordPublishError increments the publish error counter.
func RecordPublishError() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.publishErrors.Inc()
}

// RecordShapesSkipped adds n skipped shapes.
func RecordShapesSkipped(n int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.shapesSkipped.Add(float64(n))
}

// Joint-state ingest.

// RecordJointStateMessage increments accepted messages for a source (http, udp).
func RecordJointStateMessage(source string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.jointStateMessages.WithLabelValues(source).Inc()
}

// RecordJointStateRejected increments rejected messages for a reason.
func RecordJointStateRejected(reason string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.jointStateRejected.WithLabelValues(reason).Inc()
}

// RecordJointStateApplied increments applied messages.
func RecordJointStateApplied() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.jointStateApplied.Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.queueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.workerErrors.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
