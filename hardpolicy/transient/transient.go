// Package transient implements the exhaustive transient-behavior analysis
// supplemented from the original implementation's transient_behavior
// module. spec.md §1 explicitly scopes this out of the continuous
// hard-policy monitor as "a separately invoked check, not a continuous
// guarantee" — this package is that separate check: it replays a single
// command's convergence and evaluates the hard policy against every
// intermediate forwarding state the network passes through, not just the
// final converged one, catching transient blackholes a steady-state-only
// check would miss.
//
// Never invoked by strategy or optimizer; wired only into cmd/snowcap's
// "snowcap check" subcommand and this package's own tests.
package transient

import (
	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/netsim"
)

// Check applies cmd to a clone of net and evaluates policy against the
// full sequence of intermediate forwarding states observed during its
// convergence (not just the converged result). It returns false, and the
// first violating step's witness, if any transient state violates the
// policy; it never mutates net.
func Check(net *netsim.Network, cmd netsim.Command, policy *hardpolicy.Formula) (bool, hardpolicy.Predicate, error) {
	probe := net.Clone()

	_, transient, err := probe.ApplyWithTrace(cmd)
	if err != nil {
		return false, hardpolicy.ConvergeWitness(0), err
	}

	m := hardpolicy.NewMonitor(policy)
	for _, fs := range transient {
		res := m.Step(fs)
		if res.Status == hardpolicy.Violated {
			return false, res.Witness, nil
		}
	}
	final := m.Final()
	if final.Status == hardpolicy.Violated {
		return false, final.Witness, nil
	}
	return true, nil, nil
}
