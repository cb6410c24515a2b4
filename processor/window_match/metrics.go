package windowmatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/seqmatch/metric"
)

// processorMetrics holds Prometheus metrics for window match processor operations.
type processorMetrics struct {
	// Item counters
	itemsTotal *prometheus.CounterVec // By component and status (matched/passed/error)
	matched    *prometheus.CounterVec // By component and pattern
	errors     *prometheus.CounterVec // By component and error_type

	// Performance metrics
	scanDuration *prometheus.HistogramVec // By component

	// Journal metrics
	journalDropped *prometheus.CounterVec // By component
}

// newProcessorMetrics creates and registers window match metrics with the provided registry.
func newProcessorMetrics(registry *metric.MetricsRegistry, componentName string) (*processorMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &processorMetrics{
		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "window_match",
			Name:      "items_total",
			Help:      "Total number of stream items scanned",
		}, []string{"component", "status"}), // status: matched, passed, error

		matched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "window_match",
			Name:      "matched_total",
			Help:      "Total number of completed matches by pattern",
		}, []string{"component", "pattern"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "window_match",
			Name:      "errors_total",
			Help:      "Total number of processing errors",
		}, []string{"component", "error_type"}), // error_type: scan, publish, journal

		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seqmatch",
			Subsystem: "window_match",
			Name:      "scan_duration_seconds",
			Help:      "Window scan duration per item in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"component"}),

		journalDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "window_match",
			Name:      "journal_dropped_total",
			Help:      "Journal writes dropped because the write queue was full",
		}, []string{"component"}),
	}

	if err := registry.RegisterCounterVec("window_match", "items_total", m.itemsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("window_match", "matched", m.matched); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("window_match", "errors", m.errors); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("window_match", "scan_duration", m.scanDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("window_match", "journal_dropped", m.journalDropped); err != nil {
		return nil, err
	}

	return m, nil
}

// recordScan records one item scan and whether it completed a match.
func (m *processorMetrics) recordScan(componentName string, pattern string, duration time.Duration) {
	if m == nil {
		return
	}

	status := "passed"
	if pattern != "" {
		status = "matched"
		m.matched.WithLabelValues(componentName, pattern).Inc()
	}

	m.itemsTotal.WithLabelValues(componentName, status).Inc()
	m.scanDuration.WithLabelValues(componentName).Observe(duration.Seconds())
}

// recordError records a processing error.
func (m *processorMetrics) recordError(componentName, errorType string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(componentName, errorType).Inc()
	m.itemsTotal.WithLabelValues(componentName, "error").Inc()
}

// recordJournalDrop records a journal write discarded under backpressure.
func (m *processorMetrics) recordJournalDrop(componentName string) {
	if m == nil {
		return
	}

	m.journalDropped.WithLabelValues(componentName).Inc()
}
