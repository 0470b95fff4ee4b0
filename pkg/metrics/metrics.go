// Package metrics declares the Prometheus instrumentation exposed by a
// running synthesis: iteration counters, convergence step timings, and the
// best-cost gauge the optimizer updates, all in one registry so cmd/snowcap
// can mount a single /metrics handler regardless of which entry point
// (Synthesize, SynthesizeParallel, Optimize) is in use.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace is the Prometheus metric namespace for every collector below.
const Namespace = "snowcap"

var (
	// Iterations counts candidate orderings drawn from the permutator,
	// labeled by worker id (fan-out workers each increment their own).
	Iterations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "strategy",
		Name:      "iterations_total",
		Help:      "Number of candidate orderings evaluated by the TRTA strategy.",
	}, []string{"worker"})

	// ProblemGroups tracks the size of the problem-group stack.
	ProblemGroups = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "strategy",
		Name:      "problem_groups",
		Help:      "Current number of problem groups recorded by the TRTA strategy.",
	}, []string{"worker"})

	// ConvergenceSteps histograms the number of message-passing steps a
	// single Apply call took to reach its fixed point.
	ConvergenceSteps = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "netsim",
		Name:      "convergence_steps",
		Help:      "Number of messages processed by a single convergence run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	})

	// BestCost is the soft cost of the best valid ordering found so far
	// by the optimizer. It only ever decreases within one Optimize call.
	BestCost = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "optimizer",
		Name:      "best_cost",
		Help:      "Soft cost of the best hard-valid ordering found so far.",
	})
)

// MustRegister registers every collector above on reg. Called once from
// cmd/snowcap at startup; library packages never register metrics on the
// global default registry themselves.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Iterations, ProblemGroups, ConvergenceSteps, BestCost)
}
