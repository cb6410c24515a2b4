// Package metric provides Prometheus-based metrics collection and HTTP server
// for SeqMatch platform monitoring and observability.
//
// The package offers a centralized metrics registry managing both core platform
// metrics (service status, item processing, NATS health) and custom
// service-specific metrics. It includes an HTTP server exposing metrics in
// Prometheus format for monitoring system integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Platform-level metrics automatically registered (Metrics type)
//  2. Service Registry: Extensible registration for service-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This architecture separates infrastructure concerns (core metrics) from
// application concerns (service-specific metrics) while providing a unified
// metrics endpoint for monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil && err != http.ErrServerClosed {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core platform metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordServiceStatus("window-match", 2)
//	coreMetrics.RecordItemReceived("window-match", "event")
//	coreMetrics.RecordScanDuration("window-match", "scan", elapsed)
//
// The metrics server will expose Prometheus-formatted metrics at http://localhost:9090/metrics
// and a health check at http://localhost:9090/health.
//
// # Core Metrics
//
// The package automatically registers core platform metrics tracking:
//
//   - Service lifecycle: service_status (0=stopped, 1=starting, 2=running, 3=stopping)
//   - Item processing: items_received_total, items_processed_total
//   - Result delivery: results_published_total
//   - Scan performance: scan_duration_seconds
//   - NATS connectivity: nats_connected, nats_rtt_milliseconds, nats_reconnects_total
//   - Error tracking: errors_total
//
// Access core metrics through the registry:
//
//	coreMetrics := registry.CoreMetrics()
//
//	// Service lifecycle tracking
//	coreMetrics.RecordServiceStatus("window-match", 2) // 2 = running
//
//	// Item processing metrics
//	coreMetrics.RecordItemReceived("window-match", "event")
//	coreMetrics.RecordItemProcessed("window-match", "event", "success")
//	coreMetrics.RecordResultPublished("window-match", "match.results")
//
//	// Scan performance
//	coreMetrics.RecordScanDuration("window-match", "scan", 150*time.Microsecond)
//
//	// NATS connectivity
//	coreMetrics.RecordNATSStatus(true)
//	coreMetrics.RecordNATSRTT(5 * time.Millisecond)
//
//	// Error tracking
//	coreMetrics.RecordError("window-match", "extractor")
//
// # Service-Specific Metrics
//
// Services can register custom metrics through the registry:
//
//	matchCounter := prometheus.NewCounterVec(
//	    prometheus.CounterOpts{
//	        Namespace: "seqmatch",
//	        Subsystem: "window_match",
//	        Name:      "matches_total",
//	        Help:      "Total matches emitted by pattern",
//	    },
//	    []string{"pattern"},
//	)
//	err := registry.RegisterCounterVec("window-match", "matches_total", matchCounter)
//
//	// Use the metric with specific label values
//	matchCounter.WithLabelValues("login-burst").Inc()
//
// # HTTP Server
//
// The metrics server provides three endpoints:
//
//   - GET / - HTML page with links to metrics and health endpoints
//   - GET /metrics - Prometheus-formatted metrics (default path, configurable)
//   - GET /health - plain OK health check response
//
// Server configuration:
//
//	// Default configuration (port 9090, path /metrics)
//	server := metric.NewServer(0, "", registry)
//
//	// Custom configuration
//	server := metric.NewServer(8080, "/prometheus", registry)
//
//	// Start server (blocking)
//	if err := server.Start(); err != nil {
//	    log.Fatalf("Failed to start metrics server: %v", err)
//	}
//
//	// Stop server (in another goroutine)
//	if err := server.Stop(); err != nil {
//	    log.Printf("Error stopping server: %v", err)
//	}
//
// # Prometheus Integration
//
// The package uses the official Prometheus Go client library and exposes
// metrics in OpenMetrics format. Configure Prometheus to scrape the endpoint:
//
//	# prometheus.yml
//	scrape_configs:
//	  - job_name: 'seqmatch'
//	    static_configs:
//	      - targets: ['localhost:9090']
//	    metrics_path: '/metrics'
//	    scrape_interval: 15s
//
// All core metrics use the namespace "seqmatch" and appropriate subsystems:
//   - seqmatch_service_status{service="..."}
//   - seqmatch_items_processed_total{service="..."}
//   - seqmatch_nats_connected
//
// Service-specific metrics use the metric name as provided during registration.
//
// # MetricsRegistrar Interface
//
// Services implement against the MetricsRegistrar interface for dependency injection:
//
//	type MyProcessor struct {
//	    metrics metric.MetricsRegistrar
//	}
//
//	func NewMyProcessor(metrics metric.MetricsRegistrar) *MyProcessor {
//	    counter := prometheus.NewCounter(prometheus.CounterOpts{
//	        Name: "scans_total",
//	        Help: "Total scans",
//	    })
//	    metrics.RegisterCounter("my-processor", "scans_total", counter)
//
//	    return &MyProcessor{metrics: metrics}
//	}
//
// This enables testing with mock registrars and provides loose coupling.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//   - PrometheusRegistry() is safe for concurrent access
//
// # Error Handling
//
// Registration methods return errors for:
//
//   - Duplicate registration: attempting to register same metric name twice
//   - Prometheus conflicts: internal Prometheus registration failures
//
// The Server.Start() method returns errors for:
//
//   - Server already running
//   - Nil registry
//   - HTTP server failures (port in use, permission denied)
//
// # Design Decisions
//
// Centralized Registry: Chose centralized registry over distributed collectors
// to ensure consistent metric namespace, prevent duplication, and enable
// runtime metric discovery.
//
// Core vs Service Metrics: Separated platform-level metrics (core) from
// service-specific metrics to distinguish infrastructure health from
// pattern-matching health.
//
// Prometheus Direct Integration: Used official Prometheus client rather than
// abstraction to leverage native features, avoid wrapper overhead, and ensure
// compatibility with Prometheus ecosystem.
package metric
