// Package metrics provides Prometheus metrics for the forecast rendering
// pipeline.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for pipeline runs.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline metrics
	pipelineRuns      *prometheus.CounterVec
	stageLatency      *prometheus.HistogramVec
	elementsExtracted *prometheus.CounterVec
	elementsDropped   *prometheus.CounterVec
	alignedRows       prometheus.Histogram
	artifactBytes     *prometheus.HistogramVec
	windowsSelected   *prometheus.CounterVec

	// Render queue metrics
	renderQueueDepth    prometheus.Gauge
	renderQueueRejected *prometheus.CounterVec
	renderWorkers       prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Metrics
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
		namespace:        "wxgrid",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
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
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("runs_total"),
		Help:        "Pipeline runs by horizon, mode and outcome",
		ConstLabels: labels,
	}, []string{"horizon", "mode", "outcome"})

	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stage_latency_milliseconds"),
		Help:        "Latency of each pipeline stage in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.elementsExtracted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("elements_extracted_total"),
		Help:        "Weather elements that produced a non-empty series",
		ConstLabels: labels,
	}, []string{"horizon"})

	m.elementsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("elements_dropped_total"),
		Help:        "Weather elements skipped during extraction, by reason",
		ConstLabels: labels,
	}, []string{"horizon", "reason"})

	m.alignedRows = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("aligned_rows"),
		Help:        "Number of grid rows produced by the aligner",
		Buckets:     []float64{1, 8, 16, 24, 32, 48, 64, 128},
		ConstLabels: labels,
	})

	m.artifactBytes = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("artifact_bytes"),
		Help:        "Size of rendered artifacts in bytes",
		Buckets:     prometheus.ExponentialBuckets(256, 4, 8),
		ConstLabels: labels,
	}, []string{"mode"})

	m.windowsSelected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("windows_selected_total"),
		Help:        "Snapshot windows selected, by policy and whether the window contained now",
		ConstLabels: labels,
	}, []string{"policy", "contained"})

	m.renderQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "render_queue",
		Name:        m.name("depth"),
		Help:        "Image render jobs waiting for a worker",
		ConstLabels: labels,
	})

	m.renderQueueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "render_queue",
		Name:        m.name("rejected_total"),
		Help:        "Image render jobs refused by the queue, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.renderWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "render_queue",
		Name:        m.name("workers"),
		Help:        "Running image render workers",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_component_total"),
		Help:        "Errors by component and error kind",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by HTTP endpoint, method and error kind",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutines"),
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("gc_pause_milliseconds"),
		Help:        "Average garbage collection pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		ConstLabels: labels,
	})
}

// RecordPipelineRun counts one pipeline run. outcome is OutcomeOK or
// OutcomeError.
func (m *Manager) RecordPipelineRun(horizon, mode, outcome string) error {
	if outcome != OutcomeOK && outcome != OutcomeError {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	if !m.enabled {
		return nil
	}
	m.pipelineRuns.WithLabelValues(horizon, mode, outcome).Inc()
	return nil
}

// RecordStageLatency observes one stage duration in milliseconds.
func (m *Manager) RecordStageLatency(stage string, latencyMs float64) {
	if m.enabled {
		m.stageLatency.WithLabelValues(stage).Observe(latencyMs)
	}
}

// RecordElementsExtracted adds n kept elements for horizon.
func (m *Manager) RecordElementsExtracted(horizon string, n int) {
	if m.enabled && n > 0 {
		m.elementsExtracted.WithLabelValues(horizon).Add(float64(n))
	}
}

// RecordElementDropped counts one skipped element.
func (m *Manager) RecordElementDropped(horizon, reason string) {
	if m.enabled {
		m.elementsDropped.WithLabelValues(horizon, reason).Inc()
	}
}

// RecordAlignedRows observes the row count of one aligned table.
func (m *Manager) RecordAlignedRows(n int) {
	if m.enabled {
		m.alignedRows.Observe(float64(n))
	}
}

// RecordArtifactBytes observes the size of one rendered artifact.
func (m *Manager) RecordArtifactBytes(mode string, n int) {
	if m.enabled {
		m.artifactBytes.WithLabelValues(mode).Observe(float64(n))
	}
}

// RecordWindowSelected counts one snapshot window selection.
func (m *Manager) RecordWindowSelected(policy string, contained bool) {
	if m.enabled {
		m.windowsSelected.WithLabelValues(policy, strconv.FormatBool(contained)).Inc()
	}
}

// UpdateRenderQueueDepth sets the number of waiting render jobs.
func (m *Manager) UpdateRenderQueueDepth(n int) {
	if m.enabled {
		m.renderQueueDepth.Set(float64(n))
	}
}

// RecordRenderQueueRejected counts one refused render job.
func (m *Manager) RecordRenderQueueRejected(reason string) {
	if m.enabled {
		m.renderQueueRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateRenderWorkers sets the number of running render workers.
func (m *Manager) UpdateRenderWorkers(n int) {
	if m.enabled {
		m.renderWorkers.Set(float64(n))
	}
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(n int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(n))
	}
}

// RecordSystemGCPauseTime observes an average GC pause.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// Package-level recorders backed by the global manager.

// RecordPipelineRun counts one pipeline run on the global manager.
func RecordPipelineRun(horizon, mode, outcome string) error {
	return globalManager.RecordPipelineRun(horizon, mode, outcome)
}

// RecordStageLatency observes one stage duration in milliseconds.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.RecordStageLatency(stage, latencyMs)
}

// RecordElementsExtracted adds n kept elements for horizon.
func RecordElementsExtracted(horizon string, n int) {
	globalManager.RecordElementsExtracted(horizon, n)
}

// RecordElementDropped counts one skipped element.
func RecordElementDropped(horizon, reason string) {
	globalManager.RecordElementDropped(horizon, reason)
}

// RecordAlignedRows observes the row count of one aligned table.
func RecordAlignedRows(n int) {
	globalManager.RecordAlignedRows(n)
}

// RecordArtifactBytes observes the size of one rendered artifact.
func RecordArtifactBytes(mode string, n int) {
	globalManager.RecordArtifactBytes(mode, n)
}

// RecordWindowSelected counts one snapshot window selection.
func RecordWindowSelected(policy string, contained bool) {
	globalManager.RecordWindowSelected(policy, contained)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateRenderQueueDepth sets the number of waiting render jobs.
func UpdateRenderQueueDepth(n int) {
	globalManager.UpdateRenderQueueDepth(n)
}

// RecordRenderQueueRejected counts one refused render job.
func RecordRenderQueueRejected(reason string) {
	globalManager.RecordRenderQueueRejected(reason)
}

// UpdateRenderWorkers sets the number of running render workers.
func UpdateRenderWorkers(n int) {
	globalManager.UpdateRenderWorkers(n)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.UpdateSystemMemoryUsage(bytes)
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.UpdateSystemGoroutineCount(n)
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.RecordSystemGCPauseTime(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
