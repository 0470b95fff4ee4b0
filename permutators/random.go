package permutators

import "math/rand/v2"

// RandomPermutator draws uniformly random orderings of the remaining pool
// after a pinned prefix, forever — used by synth.SynthesizeParallel's
// fan-out workers (spec.md §5), each with its own seeded source so that
// (seed, worker-index) reproduces a run.
type RandomPermutator[T comparable] struct {
	items  []T
	pinned []T
	rng    *rand.Rand
}

// NewRandom builds a RandomPermutator seeded deterministically from seed.
func NewRandom[T comparable](items []T, seed uint64) *RandomPermutator[T] {
	return &RandomPermutator[T]{
		items: append([]T(nil), items...),
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *RandomPermutator[T]) Pin(prefix []T) { r.pinned = append([]T(nil), prefix...) }
func (r *RandomPermutator[T]) Reset()         { r.pinned = nil }

// Next always succeeds: a random source never runs out of draws.
func (r *RandomPermutator[T]) Next() ([]T, bool) {
	pool := remainingAfter(r.items, r.pinned)
	for i := len(pool) - 1; i > 0; i-- {
		j := r.rng.IntN(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]T, 0, len(r.items))
	out = append(out, r.pinned...)
	out = append(out, pool...)
	return out, true
}
