package strategy

import (
	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/netsim"
)

// dependencySet implements spec.md §4.6 step 4a's linear sweep: starting
// from the applied prefix that produced a violation, test removing each
// command (scanning from the most recently applied backward) and keep it
// in D iff removing it, on its own, makes the resulting sub-trace no
// longer violate the policy. Each trial replays on an independent clone of
// base - the network as it stood before any command of this candidate was
// applied - never on the live network, which by violation time already has
// the full "applied" prefix baked in and so cannot stand in for "command i
// removed".
func (s *Strategy) dependencySet(candidate []netsim.CommandID, applied []netsim.CommandID, base *netsim.Network) []netsim.CommandID {
	var deps []netsim.CommandID
	for i := len(applied) - 1; i >= 0; i-- {
		trial := make([]netsim.CommandID, 0, len(applied)-1)
		for j, id := range applied {
			if j == i {
				continue
			}
			trial = append(trial, id)
		}
		if !s.traceSatisfied(trial, base) {
			continue // still violates without it: not responsible
		}
		deps = append(deps, applied[i])
	}
	return orderedSubsequence(candidate, deps)
}

// traceSatisfied replays trial, in order, on a fresh clone of base and
// reports whether the policy is not Violated over the resulting trace
// (Satisfied or Undetermined both count as "not responsible for the
// violation").
func (s *Strategy) traceSatisfied(trial []netsim.CommandID, base *netsim.Network) bool {
	probe := base.Clone()
	m := hardpolicy.NewMonitor(s.policy)
	m.Step(probe.ForwardingState())
	for _, id := range trial {
		cmd := s.cmds[id]
		if _, err := probe.Apply(cmd); err != nil {
			return false // convergence failure: still a violation
		}
		if res := m.Step(probe.ForwardingState()); res.Status == hardpolicy.Violated {
			return false
		}
	}
	return m.Final().Status != hardpolicy.Violated
}

// precheckUnsat detects the case where the fully-applied target
// configuration violates the policy regardless of ordering (spec.md §8
// scenario 6: "expect NoSolution immediately ... not after full
// enumeration"). It is a sound but incomplete fast path: it only catches
// formulas whose violation at the final state cannot be cured by any
// prefix, which holds for the common case of a bare terminal predicate or
// a top-level G — it does not attempt to prove unsatisfiability for every
// formula shape. See DESIGN.md.
func (s *Strategy) precheckUnsat() (hardpolicy.Predicate, bool) {
	probe := s.net.Clone()
	for _, id := range s.order {
		if _, err := probe.Apply(s.cmds[id]); err != nil {
			return nil, false
		}
	}
	m := hardpolicy.NewMonitor(s.policy)
	m.Step(probe.ForwardingState())
	res := m.Final()
	if res.Status == hardpolicy.Violated {
		return res.Witness, true
	}
	return nil, false
}
