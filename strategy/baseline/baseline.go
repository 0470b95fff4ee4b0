// Package baseline implements naive, non-search command orderings, used
// only to characterize how much pruning TRTA gains over them (spec.md §8
// scenario 1's "expected to need hundreds" claim) — not a production
// synthesis entry point. Supplemented from the original implementation's
// modifier_ordering module.
package baseline

import (
	"math/rand/v2"
	"sort"

	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/permutators"
)

// NaiveOrdering returns commands sorted by their stable CommandID, the
// simplest deterministic ordering with no regard for dependencies —
// "simple" in the original implementation.
func NaiveOrdering(commands []netsim.Command) []netsim.Command {
	out := append([]netsim.Command(nil), commands...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// UnorderedOrdering returns commands in exactly the order they were given,
// the degenerate "whatever the caller's delta order already was" baseline.
func UnorderedOrdering(commands []netsim.Command) []netsim.Command {
	return append([]netsim.Command(nil), commands...)
}

// RandomOrdering returns commands shuffled with a seeded source, for
// reproducible benchmark comparisons against TRTA's fan-out workers (which
// draw their starting orderings from permutators.RandomPermutator directly).
func RandomOrdering(commands []netsim.Command, seed uint64) []netsim.Command {
	out := append([]netsim.Command(nil), commands...)
	rng := rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d))
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// MostImportantFirst orders commands by a caller-supplied importance score,
// highest first, using permutators.HeuristicPermutator's single-shot greedy
// construction (spec.md §4.5: "used by baselines: Most-Important-First,
// etc."). importance is evaluated once per command; ties keep commands in
// their input order since HeuristicPermutator's pool scan picks the first
// lowest-scoring remaining item.
func MostImportantFirst(commands []netsim.Command, importance func(netsim.Command) float64) []netsim.Command {
	ids := make([]netsim.CommandID, len(commands))
	byID := make(map[netsim.CommandID]netsim.Command, len(commands))
	score := make(map[netsim.CommandID]float64, len(commands))
	for i, c := range commands {
		id := c.ID()
		ids[i] = id
		byID[id] = c
		score[id] = importance(c)
	}

	p := permutators.NewHeuristic(ids, func(_ []netsim.CommandID, candidate netsim.CommandID) float64 {
		return -score[candidate]
	})
	ordered, _ := p.Next()

	out := make([]netsim.Command, len(ordered))
	for i, id := range ordered {
		out[i] = byID[id]
	}
	return out
}
