package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not pattern-specific)
type Metrics struct {
	// Service metrics
	ServiceStatus     *prometheus.GaugeVec
	ItemsReceived     *prometheus.CounterVec
	ItemsProcessed    *prometheus.CounterVec
	ResultsPublished  *prometheus.CounterVec
	ScanDuration      *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
	HealthCheckStatus *prometheus.GaugeVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSRTT        prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Service metrics
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "seqmatch",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		ItemsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seqmatch",
				Subsystem: "items",
				Name:      "received_total",
				Help:      "Total number of sequence items received",
			},
			[]string{"service", "type"},
		),

		ItemsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seqmatch",
				Subsystem: "items",
				Name:      "processed_total",
				Help:      "Total number of sequence items processed",
			},
			[]string{"service", "type", "status"},
		),

		ResultsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seqmatch",
				Subsystem: "results",
				Name:      "published_total",
				Help:      "Total number of match results published",
			},
			[]string{"service", "subject"},
		),

		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "seqmatch",
				Subsystem: "scan",
				Name:      "duration_seconds",
				Help:      "Window scan duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
			},
			[]string{"service", "operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seqmatch",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"service", "type"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "seqmatch",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"service"},
		),

		// NATS metrics
		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "seqmatch",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "seqmatch",
				Subsystem: "nats",
				Name:      "rtt_milliseconds",
				Help:      "NATS round-trip time in milliseconds",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "seqmatch",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// RecordServiceStatus updates service status metric
func (c *Metrics) RecordServiceStatus(service string, status int) {
	c.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordItemReceived increments received item counter
func (c *Metrics) RecordItemReceived(service, itemType string) {
	c.ItemsReceived.WithLabelValues(service, itemType).Inc()
}

// RecordItemProcessed increments processed item counter
func (c *Metrics) RecordItemProcessed(service, itemType, status string) {
	c.ItemsProcessed.WithLabelValues(service, itemType, status).Inc()
}

// RecordResultPublished increments published result counter
func (c *Metrics) RecordResultPublished(service, subject string) {
	c.ResultsPublished.WithLabelValues(service, subject).Inc()
}

// RecordScanDuration records window scan time
func (c *Metrics) RecordScanDuration(service, operation string, duration time.Duration) {
	c.ScanDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordError increments error counter
func (c *Metrics) RecordError(service, errorType string) {
	c.ErrorsTotal.WithLabelValues(service, errorType).Inc()
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(service).Set(value)
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSRTT updates NATS round-trip time
func (c *Metrics) RecordNATSRTT(rtt time.Duration) {
	c.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}
