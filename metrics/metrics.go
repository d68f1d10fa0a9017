// Package metrics provides Prometheus observability metrics for the agent performance pipeline.
// It includes data-quality metrics for the loaded inputs and operational metrics for each stage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// DATA QUALITY METRICS
// =============================================================================

// RowsLoadedTotal tracks validated rows per input table, after deduplication.
var RowsLoadedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "rows_total",
	Help:      "Validated rows loaded per input table",
}, []string{"table"})

// DuplicateRowsTotal tracks exact duplicate rows dropped per input table.
var DuplicateRowsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "duplicate_rows_total",
	Help:      "Exact duplicate rows removed per input table",
}, []string{"table"})

// LoadErrorsTotal tracks fatal load failures by table and kind (schema, parse).
var LoadErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "errors_total",
	Help:      "Fatal load errors by table and error kind",
}, []string{"table", "kind"})

// NonPositiveDurations tracks call rows whose duration is zero or negative.
var NonPositiveDurations = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "pipeline",
	Name:      "non_positive_durations",
	Help:      "Call rows with a non-positive duration in the current run",
})

// CallsMissingMetadata tracks calls with no matching roster row.
var CallsMissingMetadata = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "joiner",
	Name:      "calls_missing_metadata",
	Help:      "Calls without matching agent roster metadata",
})

// CallsWithPresence tracks calls whose agent was logged in that day.
var CallsWithPresence = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "joiner",
	Name:      "calls_with_presence",
	Help:      "Calls whose agent had a recorded login time on the call date",
})

// =============================================================================
// OPERATIONAL METRICS
// =============================================================================

// LoadDurationSeconds tracks time to load and validate each input table.
var LoadDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "loader",
	Name:      "duration_seconds",
	Help:      "Time taken to load and validate an input table",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
}, []string{"table"})

// JoinDurationSeconds tracks time to join the three tables.
var JoinDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "joiner",
	Name:      "duration_seconds",
	Help:      "Time taken to join calls with roster and disposition",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// AggregateDurationSeconds tracks time to build the agent-day summary.
var AggregateDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "aggregator",
	Name:      "duration_seconds",
	Help:      "Time taken to aggregate joined calls per agent per day",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// SummaryRows tracks the number of (call_date, agent_id) rows produced.
var SummaryRows = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "aggregator",
	Name:      "summary_rows",
	Help:      "Agent-day rows in the performance summary",
})

// ActiveAgents tracks distinct agents appearing in the summary.
var ActiveAgents = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "aggregator",
	Name:      "active_agents",
	Help:      "Distinct agents appearing in the performance summary",
})

// NotificationsTotal tracks webhook delivery attempts by outcome (sent, rejected, failed, skipped).
var NotificationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "notifier",
	Name:      "notifications_total",
	Help:      "Notification delivery attempts by outcome",
}, []string{"outcome"})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetRunGauges resets all per-run gauges before a new pipeline run.
// Call this at the start of pipeline.Run.
func ResetRunGauges() {
	NonPositiveDurations.Set(0)
	CallsMissingMetadata.Set(0)
	CallsWithPresence.Set(0)
	SummaryRows.Set(0)
	ActiveAgents.Set(0)
}
