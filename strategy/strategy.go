// Package strategy implements the TRTA ("Try, Refine, Try Again")
// counter-example-guided search of spec.md §4.6: it proposes command
// orderings, drives the Network Model, feeds the resulting forwarding
// states to the hard-policy monitor, and on every violation extracts a
// problem group used to prune the remaining search.
package strategy

import (
	"context"

	"github.com/nsg-ethz/snowcap/fwstate"
	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/pkg/log"
	"github.com/nsg-ethz/snowcap/pkg/metrics"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
	"github.com/nsg-ethz/snowcap/permutators"
)

// Strategy drives a single TRTA search against one live Network (spec.md
// §3's Ownership rule: mutate and rollback one Network, never clone it in
// the hot loop).
type Strategy struct {
	net    *netsim.Network
	cmds   map[netsim.CommandID]netsim.Command
	order  []netsim.CommandID
	policy *hardpolicy.Formula
	perm   permutators.Permutator[netsim.CommandID]
	groups []ProblemGroup
	stopper *Stopper
	worker string // metrics label, e.g. "w0"; "" for a single-threaded run

	iterations int
	lastTrace  []*fwstate.State
}

// New builds a Strategy over net (mutated in place) for the given
// configuration delta and compiled hard policy. commands must all be
// Insert/Remove/Update variants of the delta to be applied; their order in
// the slice has no significance beyond giving the permutator its item
// identity set.
//
// The initial permutator is HeapsPermutator whenever the static dependency
// pass finds no problem group to seed the search with: with nothing yet to
// prune, TreePermutator's pin bookkeeping buys nothing over Heap's
// algorithm's cheaper O(1)-amortized step. The first violation recorded by
// onViolation switches it to TreePermutator instead (see there).
func New(net *netsim.Network, commands []netsim.Command, policy *hardpolicy.Formula, stopper *Stopper) *Strategy {
	ids := make([]netsim.CommandID, len(commands))
	cmds := make(map[netsim.CommandID]netsim.Command, len(commands))
	for i, c := range commands {
		id := c.ID()
		ids[i] = id
		cmds[id] = c
	}
	groups := staticDependencies(commands)
	var perm permutators.Permutator[netsim.CommandID]
	if len(groups) == 0 {
		perm = permutators.NewHeaps(ids)
	} else {
		perm = permutators.NewTree(ids)
	}
	return &Strategy{
		net:    net,
		cmds:   cmds,
		order:  ids,
		policy: policy,
		perm:   perm,
		groups: groups,
		stopper: stopper,
	}
}

// WithWorkerLabel sets the Prometheus label used for this Strategy's
// metrics (spec.md §5's fan-out workers each report their own series).
func (s *Strategy) WithWorkerLabel(label string) *Strategy {
	s.worker = label
	return s
}

// WithPermutator overrides the permutator New picked by default. A fan-out
// caller with no problem group of its own (synth.SynthesizeParallel, racing
// independent RandomPermutator-seeded workers against each other per
// spec.md §5) uses this to start from a uniform random draw instead of
// Heaps' or Tree's deterministic enumeration order; the TRTA loop above
// still drives pruning through s.groups exactly as it would for any other
// permutator.
func (s *Strategy) WithPermutator(p permutators.Permutator[netsim.CommandID]) *Strategy {
	s.perm = p
	return s
}

// Iterations is the number of candidate orderings actually applied so far
// (admissible ones; pruned candidates are not counted).
func (s *Strategy) Iterations() int { return s.iterations }

// ProblemGroups returns the problem groups recorded so far, for diagnostic
// reporting on NoSolution.
func (s *Strategy) ProblemGroups() []ProblemGroup { return append([]ProblemGroup(nil), s.groups...) }

// LastTrace returns the sequence of forwarding states observed after each
// command of the most recently returned successful ordering, FS0 included.
// The optimizer uses this to evaluate a softcost.Func without re-applying
// the ordering itself.
func (s *Strategy) LastTrace() []*fwstate.State { return s.lastTrace }

// Synthesize runs the main TRTA loop to completion: it returns a valid
// ordering, or ErrNoSolution / ErrCanceled.
func (s *Strategy) Synthesize(ctx context.Context) ([]netsim.Command, error) {
	if witness, unsat := s.precheckUnsat(); unsat {
		return nil, serrors.Wrap("target configuration violates hard policy regardless of ordering", ErrNoSolution, "witness", witness.String())
	}

	for {
		if s.stopper.Stopped() {
			return nil, ErrCanceled
		}
		select {
		case <-ctx.Done():
			return nil, ErrCanceled
		default:
		}

		candidate, ok := s.nextAdmissible()
		if !ok {
			return nil, ErrNoSolution
		}
		s.iterations++
		metrics.Iterations.WithLabelValues(s.worker).Inc()
		metrics.ProblemGroups.WithLabelValues(s.worker).Set(float64(len(s.groups)))

		result, violated := s.tryCandidate(candidate)
		if !violated {
			return result, nil
		}
	}
}

// Next is the Optimizer's hook into a running search: it continues from
// the current permutator/PG state rather than restarting (spec.md §4.7).
// It returns the same result/error pair as one could get by calling
// Synthesize once more.
func (s *Strategy) Next(ctx context.Context) ([]netsim.Command, error) {
	return s.Synthesize(ctx)
}

func (s *Strategy) nextAdmissible() ([]netsim.CommandID, bool) {
	for {
		candidate, ok := s.perm.Next()
		if !ok {
			return nil, false
		}
		if admissible(candidate, s.groups) {
			return candidate, true
		}
	}
}

// tryCandidate applies candidate to the live network one command at a
// time, feeding each resulting forwarding state to a fresh monitor
// instance. On success it leaves the network converged to the target
// configuration and returns (ordering, false). On violation it records a
// ProblemGroup, rolls the network back to FS0, and returns (nil, true).
func (s *Strategy) tryCandidate(candidate []netsim.CommandID) ([]netsim.Command, bool) {
	m := hardpolicy.NewMonitor(s.policy)
	trace := []*fwstate.State{s.net.ForwardingState()}
	m.Step(trace[0])

	// base is a snapshot of the network exactly as it stood before any
	// command of this candidate was applied, so the dependency sweep can
	// replay arbitrary subsets of "applied" from a clean starting point -
	// s.net itself accumulates the candidate's commands as the loop below
	// progresses, so it can no longer stand in for "nothing applied yet".
	base := s.net.Clone()

	applied := make([]netsim.CommandID, 0, len(candidate))
	for k, id := range candidate {
		cmd := s.cmds[id]
		if _, err := s.net.Apply(cmd); err != nil {
			applied = append(applied, id)
			s.onViolation(candidate, k, applied, hardpolicy.ConvergeWitness(k), base)
			s.rollback(applied)
			return nil, true
		}
		applied = append(applied, id)
		fs := s.net.ForwardingState()
		trace = append(trace, fs)

		if k < len(candidate)-1 {
			res := m.Step(fs)
			if res.Status == hardpolicy.Violated {
				s.onViolation(candidate, k, applied, res.Witness, base)
				s.rollback(applied)
				return nil, true
			}
			continue
		}

		// Final command: the monitor's terminal verdict decides success.
		m.Step(fs)
		final := m.Final()
		if final.Status == hardpolicy.Violated {
			s.onViolation(candidate, k, applied, final.Witness, base)
			s.rollback(applied)
			return nil, true
		}
	}

	result := make([]netsim.Command, len(candidate))
	for i, id := range candidate {
		result[i] = s.cmds[id]
	}
	s.lastTrace = trace
	return result, false
}

func (s *Strategy) rollback(applied []netsim.CommandID) {
	for i := len(applied) - 1; i >= 0; i-- {
		if err := s.net.Undo(s.cmds[applied[i]]); err != nil {
			log.Root().Errorw("rollback failed", "cmd", applied[i], "err", err)
		}
	}
}

func (s *Strategy) onViolation(candidate []netsim.CommandID, k int, applied []netsim.CommandID, witness hardpolicy.Predicate, base *netsim.Network) {
	deps := s.dependencySet(candidate, applied, base)
	group := ProblemGroup{
		Deps:     deps,
		Order:    orderedSubsequence(applied, deps),
		Terminal: applied[len(applied)-1],
	}
	hadNoGroups := len(s.groups) == 0
	s.groups = append(s.groups, group)
	log.Root().Debugw("problem group recorded", "terminal", group.Terminal, "deps", len(deps), "witness", witness.String())

	// The very first recorded group is the point where pruning starts
	// paying for itself: switch off HeapsPermutator (which cannot exclude
	// orderings mid-walk) onto TreePermutator, whose pin/remaining-pool
	// enumeration admissible() relies on to eventually reach every
	// still-viable ordering.
	if hadNoGroups {
		s.perm = permutators.NewTree(s.order)
	}
}

// orderedSubsequence returns the elements of set, in the order they appear
// in order.
func orderedSubsequence(order []netsim.CommandID, set []netsim.CommandID) []netsim.CommandID {
	in := make(map[netsim.CommandID]bool, len(set))
	for _, id := range set {
		in[id] = true
	}
	out := make([]netsim.CommandID, 0, len(set))
	for _, id := range order {
		if in[id] {
			out = append(out, id)
		}
	}
	return out
}
