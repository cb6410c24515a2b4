package health

import "time"

// NewHealthy creates a healthy status for the named component.
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    "healthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates an unhealthy status for the named component.
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    "unhealthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a degraded status for the named component.
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    "degraded",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Aggregate combines sub-statuses into one system status. Any unhealthy
// sub-status makes the aggregate unhealthy; otherwise any degraded
// sub-status makes it degraded. Pipeline metrics carried by the
// sub-statuses are summed onto the aggregate.
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "No sub-components to aggregate")
	}

	hasUnhealthy := false
	hasDegraded := false

	for _, sub := range subStatuses {
		if sub.IsUnhealthy() {
			hasUnhealthy = true
		} else if sub.IsDegraded() {
			hasDegraded = true
		}
	}

	var status Status
	if hasUnhealthy {
		status = NewUnhealthy(component, "One or more sub-components are unhealthy")
	} else if hasDegraded {
		status = NewDegraded(component, "One or more sub-components are degraded")
	} else {
		status = NewHealthy(component, "All sub-components are healthy")
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)

	if agg := sumMetrics(subStatuses); agg != nil {
		status.Metrics = agg
	}

	return status
}

// sumMetrics totals the metrics of sub-statuses that carry them. Returns
// nil when none do.
func sumMetrics(subStatuses []Status) *Metrics {
	var agg *Metrics
	for _, sub := range subStatuses {
		if sub.Metrics == nil {
			continue
		}
		if agg == nil {
			agg = &Metrics{}
		}
		agg.ErrorCount += sub.Metrics.ErrorCount
		agg.ItemsProcessed += sub.Metrics.ItemsProcessed
		agg.MatchesAccepted += sub.Metrics.MatchesAccepted
		if sub.Metrics.Uptime > agg.Uptime {
			agg.Uptime = sub.Metrics.Uptime
		}
		if sub.Metrics.LastActivity.After(agg.LastActivity) {
			agg.LastActivity = sub.Metrics.LastActivity
		}
	}
	return agg
}
