// Package synth is the public synthesis façade of spec.md §6: the three
// entry points (Synthesize, SynthesizeParallel, Optimize) that cmd/snowcap
// and any other caller use, wiring together netsim, hardpolicy, softcost,
// strategy and optimizer without exposing their internals.
package synth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/optimizer"
	"github.com/nsg-ethz/snowcap/permutators"
	"github.com/nsg-ethz/snowcap/pkg/log"
	"github.com/nsg-ethz/snowcap/softcost"
	"github.com/nsg-ethz/snowcap/strategy"
	"golang.org/x/sync/errgroup"
)

// Synthesize runs a single-threaded TRTA search for one valid ordering of
// commands against net, per spec.md §6. net is mutated in place by the
// search and left converged to the target configuration on success; on
// failure it is rolled back to its original state. A nil stopper is
// equivalent to one with no external cancellation source beyond ctx.
func Synthesize(ctx context.Context, net *netsim.Network, commands []netsim.Command, policy *hardpolicy.Formula, stopper *strategy.Stopper) ([]netsim.Command, error) {
	if stopper == nil {
		stopper = strategy.NewStopper(ctx)
	}
	return strategy.New(net, commands, policy, stopper).Synthesize(ctx)
}

// SynthesizeParallel fans out numWorkers independent searches, each over its
// own net.Clone() and a distinct deterministic ordering seed (spec.md §5):
// the first worker to find a valid ordering wins, the rest observe the
// shared Stopper at their next iteration boundary and exit. seed makes the
// whole race reproducible: the same (seed, numWorkers, commands) always
// explores the same per-worker starting orderings, though which worker
// finishes first — and therefore which valid ordering is returned, when
// more than one exists — is not itself guaranteed deterministic.
func SynthesizeParallel(ctx context.Context, net *netsim.Network, commands []netsim.Command, policy *hardpolicy.Formula, numWorkers int, seed uint64, stopper *strategy.Stopper) ([]netsim.Command, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if stopper == nil {
		stopper = strategy.NewStopper(ctx)
	}

	ids := make([]netsim.CommandID, len(commands))
	for i, c := range commands {
		ids[i] = c.ID()
	}

	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var winner []netsim.Command
	var once sync.Once
	noSolutionCount := 0

	for i := 0; i < numWorkers; i++ {
		i := i
		g.Go(func() error {
			workerSeed := seed + uint64(i)*0x9e3779b97f4a7c15
			clone := net.Clone()
			strat := strategy.New(clone, commands, policy, stopper).
				WithWorkerLabel(fmt.Sprintf("w%d", i)).
				WithPermutator(permutators.NewRandom(ids, workerSeed))

			ordering, err := strat.Synthesize(gctx)
			if err == nil {
				once.Do(func() {
					mu.Lock()
					winner = ordering
					mu.Unlock()
					stopper.Stop()
				})
				return nil
			}
			switch {
			case errors.Is(err, strategy.ErrCanceled):
				return nil
			case errors.Is(err, strategy.ErrNoSolution):
				mu.Lock()
				noSolutionCount++
				mu.Unlock()
				return nil
			default:
				return err
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if winner != nil {
		return winner, nil
	}
	if noSolutionCount == numWorkers {
		return nil, strategy.ErrNoSolution
	}
	return nil, strategy.ErrCanceled
}

// Optimize runs the Optimizer TRTA of spec.md §4.7: it repeatedly asks a
// single Strategy for the next valid ordering within budget, scoring each
// with cost, and returns the best-scoring one found. A zero budget means
// "run until the search space is exhausted or ctx is canceled".
func Optimize(ctx context.Context, net *netsim.Network, commands []netsim.Command, policy *hardpolicy.Formula, cost softcost.Func, budget time.Duration, stopper *strategy.Stopper) ([]netsim.Command, float64, error) {
	if stopper == nil {
		stopper = strategy.NewStopper(ctx)
	}
	strat := strategy.New(net, commands, policy, stopper)
	opt := optimizer.New(strat, cost)

	best, err := opt.Run(ctx, budget)
	if err != nil {
		return nil, 0, err
	}
	log.Root().Infow("optimize finished", "iterations", opt.Iterations(), "cost", best.Cost)
	return best.Ordering, best.Cost, nil
}
