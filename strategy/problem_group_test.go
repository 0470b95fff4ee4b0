package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsg-ethz/snowcap/netsim"
)

func TestProblemGroup_ForbidsExactFailingOrder(t *testing.T) {
	g := ProblemGroup{
		Deps:     []netsim.CommandID{1, 2},
		Order:    []netsim.CommandID{1, 2},
		Terminal: 3,
	}

	assert.True(t, g.forbids([]netsim.CommandID{1, 2, 3}))
	assert.True(t, g.forbids([]netsim.CommandID{9, 1, 2, 3, 8}), "unrelated commands interleaved must not change the verdict")
}

func TestProblemGroup_AllowsReversedDepOrder(t *testing.T) {
	g := ProblemGroup{
		Deps:     []netsim.CommandID{1, 2},
		Order:    []netsim.CommandID{1, 2},
		Terminal: 3,
	}
	// Deps appear in the opposite relative order: not the failing sequence.
	assert.False(t, g.forbids([]netsim.CommandID{2, 1, 3}))
}

func TestProblemGroup_AllowsTerminalBeforeDeps(t *testing.T) {
	g := ProblemGroup{
		Deps:     []netsim.CommandID{1, 2},
		Order:    []netsim.CommandID{1, 2},
		Terminal: 3,
	}
	assert.False(t, g.forbids([]netsim.CommandID{3, 1, 2}))
}

func TestProblemGroup_EmptyDepsNeverForbids(t *testing.T) {
	g := ProblemGroup{Terminal: 1}
	assert.False(t, g.forbids([]netsim.CommandID{1, 2, 3}))
}

func TestProblemGroup_MissingTerminalDoesNotForbid(t *testing.T) {
	g := ProblemGroup{
		Deps:     []netsim.CommandID{1},
		Order:    []netsim.CommandID{1},
		Terminal: 99,
	}
	assert.False(t, g.forbids([]netsim.CommandID{1, 2, 3}))
}

func TestAdmissible_FalseIfAnyGroupForbids(t *testing.T) {
	groups := []ProblemGroup{
		{Deps: []netsim.CommandID{1}, Order: []netsim.CommandID{1}, Terminal: 2},
	}
	assert.False(t, admissible([]netsim.CommandID{1, 2}, groups))
	assert.True(t, admissible([]netsim.CommandID{2, 1}, groups))
}

func TestAdmissible_TrueWithNoGroups(t *testing.T) {
	assert.True(t, admissible([]netsim.CommandID{1, 2, 3}, nil))
}
