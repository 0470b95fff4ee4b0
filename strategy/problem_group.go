package strategy

import "github.com/nsg-ethz/snowcap/netsim"

// ProblemGroup is the counter-example record extracted from one violation,
// per spec.md §4.6: a partially ordered set of commands whose relative
// order, as it appeared in the failing candidate, must not be repeated.
type ProblemGroup struct {
	// Deps is the minimal dependency set D discovered by the linear sweep.
	Deps []netsim.CommandID
	// Order is the relative order Deps appeared in within the failing
	// candidate — the "failing order" the pruning rule forbids repeating.
	Order []netsim.CommandID
	// Terminal is σ[k], the command whose application produced the
	// violation.
	Terminal netsim.CommandID
}

// forbids reports whether candidate repeats this group's exact failing
// relative order (spec.md §4.6's pruning rule): the commands of Deps, read
// off in candidate's order, form the same sequence as g.Order, and
// Terminal still appears after them in candidate.
func (g ProblemGroup) forbids(candidate []netsim.CommandID) bool {
	if len(g.Deps) == 0 {
		return false
	}
	pos := make(map[netsim.CommandID]int, len(candidate))
	for i, c := range candidate {
		pos[c] = i
	}

	seen := make([]netsim.CommandID, 0, len(g.Deps))
	for _, c := range candidate {
		for _, d := range g.Deps {
			if c == d {
				seen = append(seen, c)
				break
			}
		}
	}
	if len(seen) != len(g.Order) {
		return false
	}
	for i := range seen {
		if seen[i] != g.Order[i] {
			return false
		}
	}

	termPos, ok := pos[g.Terminal]
	if !ok {
		return false
	}
	lastDepPos := pos[g.Order[len(g.Order)-1]]
	return termPos > lastDepPos
}

// admissible reports whether candidate is consistent with every recorded
// problem group (does not repeat any of their failing orders).
func admissible(candidate []netsim.CommandID, groups []ProblemGroup) bool {
	for _, g := range groups {
		if g.forbids(candidate) {
			return false
		}
	}
	return true
}
