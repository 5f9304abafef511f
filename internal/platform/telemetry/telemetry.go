// Package telemetry owns the process-wide Prometheus collectors.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leverlab"

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "experiment_transitions_total",
		Help:      "Experiment lifecycle operations by outcome.",
	}, []string{"op", "result"})

	PhraserCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "phraser_calls_total",
		Help:      "Conclusion phraser invocations by outcome.",
	}, []string{"outcome"})

	BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "best_effort_failures_total",
		Help:      "Side effects that failed without failing the operation.",
	}, []string{"kind"})

	FocusModes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "focus_mode_total",
		Help:      "Next-focus computations by gate mode.",
	}, []string{"mode"})

	FocusCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "focus_cache_total",
		Help:      "Weekly focus snapshot cache lookups.",
	}, []string{"result"})
)

// Result labels shared by the counters above.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
