package health

import (
	"testing"
	"time"
)

func TestNewHealthy(t *testing.T) {
	status := NewHealthy("matcher", "scanning")

	if status.Component != "matcher" {
		t.Errorf("Expected component matcher, got %s", status.Component)
	}

	if status.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", status.Status)
	}

	if status.Message != "scanning" {
		t.Errorf("Expected message scanning, got %s", status.Message)
	}

	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	if !status.IsHealthy() {
		t.Error("Expected IsHealthy() to return true")
	}
}

func TestNewUnhealthy(t *testing.T) {
	status := NewUnhealthy("journal", "database unreachable")

	if status.Component != "journal" {
		t.Errorf("Expected component journal, got %s", status.Component)
	}

	if status.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got %s", status.Status)
	}

	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	if !status.IsUnhealthy() {
		t.Error("Expected IsUnhealthy() to return true")
	}
}

func TestNewDegraded(t *testing.T) {
	status := NewDegraded("processor", "NATS reconnecting")

	if status.Component != "processor" {
		t.Errorf("Expected component processor, got %s", status.Component)
	}

	if status.Status != "degraded" {
		t.Errorf("Expected status 'degraded', got %s", status.Status)
	}

	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	if !status.IsDegraded() {
		t.Error("Expected IsDegraded() to return true")
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name         string
		component    string
		subStatuses  []Status
		wantStatus   string
		wantMessage  string
		wantSubCount int
	}{
		{
			name:         "empty sub-statuses",
			component:    "pipeline",
			subStatuses:  []Status{},
			wantStatus:   "healthy",
			wantMessage:  "No sub-components to aggregate",
			wantSubCount: 0,
		},
		{
			name:      "all healthy",
			component: "pipeline",
			subStatuses: []Status{
				{Status: "healthy", Component: "matcher"},
				{Status: "healthy", Component: "journal"},
			},
			wantStatus:   "healthy",
			wantMessage:  "All sub-components are healthy",
			wantSubCount: 2,
		},
		{
			name:      "one unhealthy",
			component: "pipeline",
			subStatuses: []Status{
				{Status: "healthy", Component: "matcher"},
				{Status: "unhealthy", Component: "journal"},
			},
			wantStatus:   "unhealthy",
			wantMessage:  "One or more sub-components are unhealthy",
			wantSubCount: 2,
		},
		{
			name:      "one degraded no unhealthy",
			component: "pipeline",
			subStatuses: []Status{
				{Status: "healthy", Component: "matcher"},
				{Status: "degraded", Component: "processor"},
			},
			wantStatus:   "degraded",
			wantMessage:  "One or more sub-components are degraded",
			wantSubCount: 2,
		},
		{
			name:      "degraded and unhealthy - unhealthy wins",
			component: "pipeline",
			subStatuses: []Status{
				{Status: "degraded", Component: "processor"},
				{Status: "unhealthy", Component: "journal"},
			},
			wantStatus:   "unhealthy",
			wantMessage:  "One or more sub-components are unhealthy",
			wantSubCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Aggregate(tt.component, tt.subStatuses)

			if result.Component != tt.component {
				t.Errorf("Expected component %s, got %s", tt.component, result.Component)
			}

			if result.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, result.Status)
			}

			if result.Message != tt.wantMessage {
				t.Errorf("Expected message %s, got %s", tt.wantMessage, result.Message)
			}

			if len(result.SubStatuses) != tt.wantSubCount {
				t.Errorf("Expected %d sub-statuses, got %d", tt.wantSubCount, len(result.SubStatuses))
			}

			if result.Timestamp.IsZero() {
				t.Error("Expected timestamp to be set")
			}
		})
	}
}

func TestAggregateSumsMetrics(t *testing.T) {
	later := time.Now()
	earlier := later.Add(-time.Minute)

	subs := []Status{
		{Status: "healthy", Component: "matcher", Metrics: &Metrics{
			ItemsProcessed:  100,
			MatchesAccepted: 7,
			ErrorCount:      1,
			Uptime:          2 * time.Minute,
			LastActivity:    earlier,
		}},
		{Status: "healthy", Component: "processor", Metrics: &Metrics{
			ItemsProcessed:  40,
			MatchesAccepted: 3,
			Uptime:          time.Minute,
			LastActivity:    later,
		}},
		{Status: "healthy", Component: "journal"}, // no metrics
	}

	result := Aggregate("pipeline", subs)
	if result.Metrics == nil {
		t.Fatal("Expected aggregated metrics")
	}
	if result.Metrics.ItemsProcessed != 140 {
		t.Errorf("Expected 140 items processed, got %d", result.Metrics.ItemsProcessed)
	}
	if result.Metrics.MatchesAccepted != 10 {
		t.Errorf("Expected 10 matches accepted, got %d", result.Metrics.MatchesAccepted)
	}
	if result.Metrics.ErrorCount != 1 {
		t.Errorf("Expected 1 error, got %d", result.Metrics.ErrorCount)
	}
	if result.Metrics.Uptime != 2*time.Minute {
		t.Errorf("Expected max uptime, got %v", result.Metrics.Uptime)
	}
	if !result.Metrics.LastActivity.Equal(later) {
		t.Errorf("Expected latest activity timestamp, got %v", result.Metrics.LastActivity)
	}
}

func TestAggregateWithoutMetrics(t *testing.T) {
	result := Aggregate("pipeline", []Status{
		{Status: "healthy", Component: "matcher"},
	})
	if result.Metrics != nil {
		t.Error("Expected no metrics when no sub-status carries them")
	}
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	original := []Status{
		{Status: "healthy", Component: "matcher"},
		{Status: "unhealthy", Component: "journal"},
	}

	result := Aggregate("pipeline", original)

	// Sub-statuses must be independent copies.
	result.SubStatuses[0].Component = "modified"
	if original[0].Component == "modified" {
		t.Error("Modifying result sub-statuses should not affect input")
	}
}
