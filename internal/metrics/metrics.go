// Package metrics exposes Prometheus counters for workout interactions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "operations_total",
		Help:      "Number of workout operations, labeled by operation and result.",
	}, []string{"operation", "result"})

	workoutsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "stored",
		Help:      "Number of workouts currently in the collection.",
	})

	markersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapty",
		Subsystem: "map",
		Name:      "markers",
		Help:      "Number of workout markers currently on the map.",
	})

	syncFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "view",
		Name:      "sync_failures_total",
		Help:      "Number of view or marker updates that failed, labeled by step.",
	}, []string{"step"})
)

func init() {
	prometheus.MustRegister(operationsCounter, workoutsGauge, markersGauge, syncFailures)
}

// Result values for RecordOperation.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// RecordOperation counts one create, edit, delete, pan or reset.
func RecordOperation(op, result string) {
	operationsCounter.WithLabelValues(op, result).Inc()
}

// SetCounts updates the collection and marker gauges.
func SetCounts(workouts, markers int) {
	workoutsGauge.Set(float64(workouts))
	markersGauge.Set(float64(markers))
}

// RecordSyncFailure counts a failed synchronizer step.
func RecordSyncFailure(step string) {
	syncFailures.WithLabelValues(step).Inc()
}
