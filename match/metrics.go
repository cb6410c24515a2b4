package match

import (
	"time"

	"github.com/c360/seqmatch/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// matcherMetrics holds Prometheus metrics for one matcher instance. All
// record methods are nil-safe so a matcher without metrics pays nothing.
type matcherMetrics struct {
	name string

	itemsTotal   *prometheus.CounterVec // by matcher
	scansTotal   *prometheus.CounterVec // by matcher and mode (batch/stream)
	matchesTotal *prometheus.CounterVec // by matcher and pattern
	errorsTotal  *prometheus.CounterVec // by matcher

	scanDuration *prometheus.HistogramVec // by matcher and mode

	windowLen prometheus.Gauge
}

// newMatcherMetrics creates and registers matcher metrics with the
// provided registry, labeled with the matcher name.
func newMatcherMetrics(registry *metric.MetricsRegistry, name string) (*matcherMetrics, error) {
	if registry == nil {
		return nil, nil // metrics disabled
	}

	m := &matcherMetrics{
		name: name,

		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "matcher",
			Name:      "items_total",
			Help:      "Total number of items pushed through the streaming entry points",
		}, []string{"matcher"}),

		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "matcher",
			Name:      "scans_total",
			Help:      "Total number of scan runs",
		}, []string{"matcher", "mode"}), // mode: batch, stream

		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "matcher",
			Name:      "matches_total",
			Help:      "Total number of accepted matches",
		}, []string{"matcher", "pattern"}),

		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqmatch",
			Subsystem: "matcher",
			Name:      "errors_total",
			Help:      "Total number of scan errors",
		}, []string{"matcher"}),

		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seqmatch",
			Subsystem: "matcher",
			Name:      "scan_duration_seconds",
			Help:      "Scan run duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"matcher", "mode"}),

		windowLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seqmatch",
			Subsystem: "matcher",
			Name:      "window_items",
			Help:      "Number of items currently retained in the scrolling window",
		}),
	}

	if err := registry.RegisterCounterVec(name, "items_total", m.itemsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(name, "scans_total", m.scansTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(name, "matches_total", m.matchesTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(name, "errors_total", m.errorsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(name, "scan_duration", m.scanDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "window_items", m.windowLen); err != nil {
		return nil, err
	}

	return m, nil
}

// recordItem records one item pushed through a streaming entry point.
func (m *matcherMetrics) recordItem(windowLen int) {
	if m == nil {
		return
	}
	m.itemsTotal.WithLabelValues(m.name).Inc()
	m.windowLen.Set(float64(windowLen))
}

// recordScan records one completed scan run.
func (m *matcherMetrics) recordScan(mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(m.name, mode).Inc()
	m.scanDuration.WithLabelValues(m.name, mode).Observe(duration.Seconds())
}

// recordMatch records one accepted match.
func (m *matcherMetrics) recordMatch(patternName string) {
	if m == nil {
		return
	}
	m.matchesTotal.WithLabelValues(m.name, patternName).Inc()
}

// recordError records one scan error.
func (m *matcherMetrics) recordError() {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(m.name).Inc()
}
