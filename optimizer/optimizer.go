// Package optimizer implements the Optimizer TRTA of spec.md §4.7: it
// wraps a strategy.Strategy and keeps enumerating valid orderings until a
// budget expires, retaining only the best one seen under a pluggable
// softcost.Func.
package optimizer

import (
	"context"
	"errors"
	"time"

	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/pkg/log"
	"github.com/nsg-ethz/snowcap/pkg/metrics"
	"github.com/nsg-ethz/snowcap/softcost"
	"github.com/nsg-ethz/snowcap/strategy"
)

// Best is the best valid ordering Optimize found, and the soft cost it
// scored, per the synth.Result JSON schema's (ordering, cost) pair.
type Best struct {
	Ordering []netsim.Command
	Cost     float64
}

// Optimizer drives one strategy.Strategy through repeated Next() calls,
// tracking the best-scoring hard-valid ordering seen so far. It never
// restarts the underlying search: each call to Next continues from the
// Strategy's current problem-group stack and permutator cursor, so later
// iterations only get cheaper as more of the search space is pruned.
type Optimizer struct {
	strat *strategy.Strategy
	cost  softcost.Func

	best    *Best
	iterations int
}

// New builds an Optimizer over an already-constructed Strategy. cost scores
// each valid ordering's trace (strategy.Strategy.LastTrace); lower is
// better.
func New(strat *strategy.Strategy, cost softcost.Func) *Optimizer {
	return &Optimizer{strat: strat, cost: cost}
}

// Best returns the best ordering found so far, or nil if none has been
// found yet.
func (o *Optimizer) Best() *Best { return o.best }

// Iterations is the number of valid orderings actually scored (not the
// number of candidates drawn — failed/pruned candidates are Strategy's
// concern, not Optimizer's).
func (o *Optimizer) Iterations() int { return o.iterations }

// Run repeatedly calls Strategy.Next until budget elapses, the search space
// is exhausted, or ctx is canceled, keeping the best-scoring valid ordering
// seen. It returns ErrNoSolution only if the search space was exhausted
// before a single valid ordering was ever found; once at least one valid
// ordering has been scored, budget expiry or cancellation returns that
// best ordering with a nil error instead — the caller asked for the best
// achievable within budget, not a guarantee of having seen them all.
func (o *Optimizer) Run(ctx context.Context, budget time.Duration) (Best, error) {
	deadline := ctx
	var cancel context.CancelFunc
	if budget > 0 {
		deadline, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	for {
		ordering, err := o.strat.Next(deadline)
		if err != nil {
			if errors.Is(err, strategy.ErrCanceled) || errors.Is(err, context.DeadlineExceeded) {
				if o.best != nil {
					return *o.best, nil
				}
				return Best{}, strategy.ErrCanceled
			}
			if errors.Is(err, strategy.ErrNoSolution) {
				if o.best != nil {
					return *o.best, nil
				}
				return Best{}, strategy.ErrNoSolution
			}
			return Best{}, err
		}

		o.iterations++
		cost := o.cost(o.strat.LastTrace())
		if o.best == nil || cost < o.best.Cost {
			o.best = &Best{Ordering: ordering, Cost: cost}
			metrics.BestCost.Set(cost)
			log.Root().Debugw("optimizer improved best", "cost", cost, "iteration", o.iterations)
		}

		select {
		case <-deadline.Done():
			return *o.best, nil
		default:
		}
	}
}

// PolicyFrom is a convenience constructor mirroring strategy.New's
// signature, for callers (cmd/snowcap) that build an Optimizer straight
// from a network/commands/policy triple rather than an existing Strategy.
func PolicyFrom(net *netsim.Network, commands []netsim.Command, policy *hardpolicy.Formula, stopper *strategy.Stopper, cost softcost.Func) *Optimizer {
	return New(strategy.New(net, commands, policy, stopper), cost)
}
