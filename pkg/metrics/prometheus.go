// Package metrics provides Prometheus metrics for the trust graph pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Normalization
	recordsNormalized *prometheus.CounterVec
	eventsEmitted     *prometheus.CounterVec
	eventsDropped     *prometheus.CounterVec
	sourcesSkipped    *prometheus.CounterVec

	// Deduplication and aggregation
	duplicates   *prometheus.CounterVec
	eventsMerged *prometheus.CounterVec
	edgesEmitted prometheus.Counter
	edgeWeight   prometheus.Histogram

	// Seed and score tables
	seedsEmitted     prometheus.Counter
	seedsFiltered    prometheus.Counter
	scoresNormalized *prometheus.CounterVec
	scoresDiscarded  prometheus.Counter

	// Runs
	stageLatency *prometheus.HistogramVec
	stageErrors  *prometheus.CounterVec
	lastRunUnix  prometheus.Gauge
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
		namespace:        "trustgraph",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsNormalized = m.counterVec("records_normalized_total",
		"Records read from source documents, by source kind", "kind")
	m.eventsEmitted = m.counterVec("events_emitted_total",
		"Canonical interaction events produced by the normalizer, by type", "type")
	m.eventsDropped = m.counterVec("events_dropped_total",
		"Events or records dropped before aggregation, by reason", "reason")
	m.sourcesSkipped = m.counterVec("sources_skipped_total",
		"Source documents skipped because they were missing or undecodable", "reason")

	m.duplicates = m.counterVec("duplicates_total",
		"Records discarded because their dedup key was already counted", "key_kind")
	m.eventsMerged = m.counterVec("events_aggregated_total",
		"Events that contributed weight to the trust graph, by type", "type")
	m.edgesEmitted = m.counter("edges_emitted_total",
		"Trust edges written to edge lists")
	m.edgeWeight = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "edge_weight",
		Help:        "Distribution of aggregate trust edge weights",
		Buckets:     prometheus.ExponentialBuckets(10, 2, 12),
		ConstLabels: m.constLabels,
	})

	m.seedsEmitted = m.counter("seeds_emitted_total",
		"Seed vector entries written")
	m.seedsFiltered = m.counter("seeds_filtered_total",
		"Configured seeds excluded for falling outside the observed id range")
	m.scoresNormalized = m.counterVec("scores_normalized_total",
		"Score entries written by the post-processor, by transform", "transform")
	m.scoresDiscarded = m.counter("scores_discarded_total",
		"Raw scores discarded for being non-positive")

	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of pipeline stages in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})
	m.stageErrors = m.counterVec("stage_errors_total",
		"Pipeline stages that ended in a fatal error", "stage")
	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time of the last completed pipeline stage",
		ConstLabels: m.constLabels,
	})
}

// RecordRecordNormalized increments the per-kind record counter.
func RecordRecordNormalized(kind string) {
	globalManager.recordsNormalized.WithLabelValues(kind).Inc()
}

// RecordEventEmitted increments the per-type normalizer output counter.
func RecordEventEmitted(eventType string) {
	globalManager.eventsEmitted.WithLabelValues(eventType).Inc()
}

// RecordEventDropped increments the drop counter for reason.
func RecordEventDropped(reason string) {
	globalManager.eventsDropped.WithLabelValues(reason).Inc()
}

// RecordSourceSkipped increments the skipped source counter.
func RecordSourceSkipped(reason string) {
	globalManager.sourcesSkipped.WithLabelValues(reason).Inc()
}

// RecordDuplicate increments the duplicate counter for a dedup key kind.
func RecordDuplicate(keyKind string) {
	globalManager.duplicates.WithLabelValues(keyKind).Inc()
}

// RecordEventAggregated increments the per-type aggregation counter.
func RecordEventAggregated(eventType string) {
	globalManager.eventsMerged.WithLabelValues(eventType).Inc()
}

// RecordEdgeEmitted counts one written edge and observes its weight.
func RecordEdgeEmitted(weight float64) {
	globalManager.edgesEmitted.Inc()
	globalManager.edgeWeight.Observe(weight)
}

// RecordSeedsEmitted adds n written seed entries.
func RecordSeedsEmitted(n int) {
	globalManager.seedsEmitted.Add(float64(n))
}

// RecordSeedsFiltered adds n seeds excluded by the id range.
func RecordSeedsFiltered(n int) {
	globalManager.seedsFiltered.Add(float64(n))
}

// RecordScoresNormalized adds n written score entries for transform.
func RecordScoresNormalized(transform string, n int) {
	globalManager.scoresNormalized.WithLabelValues(transform).Add(float64(n))
}

// RecordScoresDiscarded adds n non-positive scores.
func RecordScoresDiscarded(n int) {
	globalManager.scoresDiscarded.Add(float64(n))
}

// RecordStageDuration observes a stage duration in seconds and stamps the last run gauge.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(seconds)
	globalManager.lastRunUnix.SetToCurrentTime()
}

// RecordStageError increments the fatal error counter for stage.
func RecordStageError(stage string) {
	globalManager.stageErrors.WithLabelValues(stage).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in text exposition format to path, for
// pickup by a node-exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
