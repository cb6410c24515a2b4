package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProcessor simulates a processor that registers its own metrics
type MockProcessor struct {
	name    string
	metrics struct {
		matchesEmitted prometheus.Counter
		windowDepth    prometheus.Gauge
	}
}

func NewMockProcessor(name string) *MockProcessor {
	return &MockProcessor{name: name}
}

func (m *MockProcessor) Name() string {
	return m.name
}

// RegisterMetrics registers pattern-specific metrics for the mock processor
func (m *MockProcessor) RegisterMetrics(registrar MetricsRegistrar) error {
	// Register a custom counter
	m.metrics.matchesEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "seqmatch",
		Subsystem: "mock_processor",
		Name:      "matches_emitted_total",
		Help:      "Total number of matches emitted",
	})

	err := registrar.RegisterCounter(m.name, "matches_emitted_total", m.metrics.matchesEmitted)
	if err != nil {
		return err
	}

	// Register a custom gauge
	m.metrics.windowDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "seqmatch",
		Subsystem: "mock_processor",
		Name:      "window_depth",
		Help:      "Current number of items retained in the window",
	})

	return registrar.RegisterGauge(m.name, "window_depth", m.metrics.windowDepth)
}

// Scan simulates a window scan and updates metrics
func (m *MockProcessor) Scan(matches int, windowDepth int) {
	m.metrics.matchesEmitted.Add(float64(matches))
	m.metrics.windowDepth.Set(float64(windowDepth))
}

func TestMetricsIntegration_ServiceRegistration(t *testing.T) {
	// Create a new metrics registry
	registry := NewMetricsRegistry()

	// Create mock processor
	mockProcessor := NewMockProcessor("test-processor")

	// Register the processor's metrics
	err := mockProcessor.RegisterMetrics(registry)
	require.NoError(t, err)

	// Simulate some scan activity
	mockProcessor.Scan(10, 5)

	// Verify metrics are registered and have values
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	foundMetrics := make(map[string]bool)
	for _, mf := range metricFamilies {
		foundMetrics[mf.GetName()] = true
	}

	// Verify custom metrics are registered
	assert.True(t, foundMetrics["seqmatch_mock_processor_matches_emitted_total"],
		"Custom matches_emitted metric should be registered")
	assert.True(t, foundMetrics["seqmatch_mock_processor_window_depth"],
		"Custom window_depth metric should be registered")
}

func TestMetricsIntegration_NoDuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	// Create two processors with the same name (this shouldn't happen in real usage)
	processor1 := NewMockProcessor("duplicate-processor")
	processor2 := NewMockProcessor("duplicate-processor")

	// Register first processor's metrics
	err := processor1.RegisterMetrics(registry)
	require.NoError(t, err)

	// Try to register second processor's metrics - should fail
	err = processor2.RegisterMetrics(registry)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestMetricsIntegration_CoreAndServiceMetricsSeparate(t *testing.T) {
	registry := NewMetricsRegistry()
	coreMetrics := registry.CoreMetrics()

	mockProcessor := NewMockProcessor("separation-test")
	err := mockProcessor.RegisterMetrics(registry)
	require.NoError(t, err)

	// Use core metrics
	coreMetrics.RecordServiceStatus("separation-test", 2)
	coreMetrics.RecordItemReceived("separation-test", "event")

	// Use processor-specific metrics
	mockProcessor.Scan(5, 3)

	// Verify both types of metrics are present
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	foundMetrics := make(map[string]bool)
	for _, mf := range metricFamilies {
		foundMetrics[mf.GetName()] = true
	}

	// Verify core metrics
	assert.True(t, foundMetrics["seqmatch_service_status"],
		"core service status metric should be present")
	assert.True(t, foundMetrics["seqmatch_items_received_total"],
		"core items received metric should be present")

	// Verify processor-specific metrics
	assert.True(t, foundMetrics["seqmatch_mock_processor_matches_emitted_total"],
		"Processor-specific matches emitted metric should be present")
	assert.True(t, foundMetrics["seqmatch_mock_processor_window_depth"],
		"Processor-specific window depth metric should be present")

	// Verify pattern metrics are NOT present (they should be registered by specific processors only)
	assert.False(t, foundMetrics["seqmatch_window_match_matches_total"],
		"Pattern match metric should NOT be in core registry")
	assert.False(t, foundMetrics["seqmatch_window_match_patterns_active"],
		"Active pattern metric should NOT be in core registry")
}

func TestMetricsIntegration_MetricsUnregistration(t *testing.T) {
	registry := NewMetricsRegistry()

	mockProcessor := NewMockProcessor("unregister-test")

	// Register metrics
	err := mockProcessor.RegisterMetrics(registry)
	require.NoError(t, err)

	// Scan some data to make metrics visible
	mockProcessor.Scan(1, 1)

	// Verify metrics are present
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	foundBefore := make(map[string]bool)
	for _, mf := range metricFamilies {
		foundBefore[mf.GetName()] = true
	}

	assert.True(t, foundBefore["seqmatch_mock_processor_matches_emitted_total"],
		"Metric should be present before unregistration")

	// Unregister one of the metrics
	success := registry.Unregister("unregister-test", "matches_emitted_total")
	assert.True(t, success, "Unregistration should succeed")

	// Verify metric is no longer present
	metricFamilies, err = registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	foundAfter := make(map[string]bool)
	for _, mf := range metricFamilies {
		foundAfter[mf.GetName()] = true
	}

	assert.False(t, foundAfter["seqmatch_mock_processor_matches_emitted_total"],
		"Metric should be absent after unregistration")
	assert.True(t, foundAfter["seqmatch_mock_processor_window_depth"],
		"Other processor metrics should remain")
}

func TestMetricsIntegration_MultipleProcessorsWithUniqueMetrics(t *testing.T) {
	registry := NewMetricsRegistry()

	// Create multiple processors - they need different metric names to coexist
	processor1 := NewMockProcessor("window-match")
	processor2 := NewMockProcessor("batch-match")

	// Register first processor
	err := processor1.RegisterMetrics(registry)
	require.NoError(t, err)

	// The second processor will fail because it tries to register the same Prometheus metric names
	// This demonstrates that our registry correctly prevents Prometheus-level conflicts
	err = processor2.RegisterMetrics(registry)
	assert.Error(t, err, "Second processor should fail due to Prometheus metric name conflict")
	assert.Contains(t, err.Error(), "prometheus conflict")
}

func TestMetricsIntegration_MultipleProcessorsSameNames(t *testing.T) {
	registry := NewMetricsRegistry()

	// Create processors with identical names - this simulates trying to register
	// the same processor twice, which should be prevented
	processor1 := NewMockProcessor("identical-processor")
	processor2 := NewMockProcessor("identical-processor")

	// Register first processor
	err := processor1.RegisterMetrics(registry)
	require.NoError(t, err)

	// Second processor with same name should fail at our registry level
	err = processor2.RegisterMetrics(registry)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}
