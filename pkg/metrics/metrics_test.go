package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/pkg/metrics"
)

func TestMustRegister_RegistersEveryCollectorOnAFreshRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	// Label vectors are only gathered once they have at least one child.
	metrics.Iterations.WithLabelValues("w0")
	metrics.ProblemGroups.WithLabelValues("w0")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["snowcap_strategy_iterations_total"])
	assert.True(t, names["snowcap_strategy_problem_groups"])
	assert.True(t, names["snowcap_netsim_convergence_steps"])
	assert.True(t, names["snowcap_optimizer_best_cost"])
}

func TestIterations_IncrementsPerWorkerLabel(t *testing.T) {
	metrics.Iterations.Reset()
	metrics.Iterations.WithLabelValues("w0").Inc()
	metrics.Iterations.WithLabelValues("w0").Inc()
	metrics.Iterations.WithLabelValues("w1").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Iterations.WithLabelValues("w0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Iterations.WithLabelValues("w1")))
}

func TestBestCost_SetOverwritesPreviousValue(t *testing.T) {
	metrics.BestCost.Set(5)
	metrics.BestCost.Set(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.BestCost))
}
