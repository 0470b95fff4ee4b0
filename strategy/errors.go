package strategy

import "github.com/nsg-ethz/snowcap/pkg/serrors"

// Error kinds surfaced by Strategy, per spec.md §7.
var (
	// ErrNoSolution means the budget expired or the whole permutation
	// tree (as pruned by recorded problem groups) was exhausted.
	ErrNoSolution = serrors.New("no valid ordering found within budget")
	// ErrCanceled means the Stopper fired before a solution was found.
	ErrCanceled = serrors.New("synthesis canceled")
)
