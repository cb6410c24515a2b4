// Package health provides health reporting for matcher processors and the
// services that host them.
//
// A Status captures one component's state as healthy, degraded, or
// unhealthy, with optional metrics and nested sub-statuses. FromError maps
// classified errors onto that scale: transient failures degrade, anything
// else is unhealthy.
//
// Monitor aggregates statuses from many components behind a single
// thread-safe view, suitable for serving from an HTTP health endpoint:
//
//	monitor := health.NewMonitor()
//	monitor.Update("window_match", processor.Health())
//	overall := monitor.AggregateHealth("seqmatch")
//
// Aggregation is pessimistic. Any unhealthy sub-status makes the
// aggregate unhealthy; otherwise any degraded sub-status makes it
// degraded.
package health
