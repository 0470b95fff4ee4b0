package netsim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsg-ethz/snowcap/netsim"
)

func TestClause_IsNoOp_TrueForPermitWithNoMatchOrActions(t *testing.T) {
	c := netsim.Clause{SeqNum: 0, Permit: true}
	assert.True(t, c.IsNoOp())
}

func TestClause_IsNoOp_FalseForDeny(t *testing.T) {
	c := netsim.Clause{SeqNum: 0, Permit: false}
	assert.False(t, c.IsNoOp())
}

func TestClause_IsNoOp_FalseWhenItMatchesOnCommunity(t *testing.T) {
	c := netsim.Clause{SeqNum: 0, Permit: true, MatchCommunity: []uint32{100}}
	assert.False(t, c.IsNoOp())
}

func TestClause_IsNoOp_FalseWhenItMatchesOnNeighborAS(t *testing.T) {
	c := netsim.Clause{SeqNum: 0, Permit: true}.WithNeighborAS(65001)
	assert.False(t, c.IsNoOp())
}

func TestClause_IsNoOp_FalseWhenItRewritesAnAttribute(t *testing.T) {
	pref := uint32(200)
	c := netsim.Clause{SeqNum: 0, Permit: true, SetLocalPref: &pref}
	assert.False(t, c.IsNoOp())
}

func TestRouteMap_ApplyKeepsRouteUnmodifiedOnNoOpClause(t *testing.T) {
	m := netsim.RouteMap{{SeqNum: 0, Permit: true}}
	r := netsim.Route{ASPath: []netsim.AsId{100}}
	out, keep := m.Apply(r)
	assert.True(t, keep)
	assert.Equal(t, r.ASPath, out.ASPath)
}
