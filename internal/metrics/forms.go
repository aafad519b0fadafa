// Package metrics holds the prometheus collectors of the forms server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pdf_forms"

// Operation names used as the "operation" label
const (
	OperationFields   = "fields"
	OperationFill     = "fill"
	OperationValidate = "validate"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of form operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Form operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	fillUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_updates_total",
			Help:      "Objects rewritten by fills, by target",
		},
		[]string{"target"}, // "field" / "widget"
	)

	fillUnmatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_unmatched_names_total",
			Help:      "Input names that matched neither a field nor a widget",
		},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal)
	prometheus.MustRegister(operationDuration)
	prometheus.MustRegister(fillUpdatesTotal)
	prometheus.MustRegister(fillUnmatchedTotal)
}

// ObserveOperation records one completed form operation
func ObserveOperation(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveFill records the outcome of a successful fill
func ObserveFill(fields, widgets, unmatched int) {
	fillUpdatesTotal.WithLabelValues("field").Add(float64(fields))
	fillUpdatesTotal.WithLabelValues("widget").Add(float64(widgets))
	fillUnmatchedTotal.Add(float64(unmatched))
}
