package transient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/hardpolicy/transient"
	"github.com/nsg-ethz/snowcap/netsim"
)

type routerNamer map[string]netsim.RouterId

func (n routerNamer) RouterID(name string) (netsim.RouterId, bool) {
	id, ok := n[name]
	return id, ok
}

func (n routerNamer) PrefixOf(string) (netsim.Prefix, bool) { return 0, true }

func TestCheck_PassesWhenCommandNeverViolatesEvenTransiently(t *testing.T) {
	n := netsim.New()
	e1 := n.AddRouter(netsim.External, 100)
	i1 := n.AddRouter(netsim.Internal, 1)
	i2 := n.AddRouter(netsim.Internal, 1)
	n.AddBGPSession(e1, i1, netsim.EBGP)
	n.AddLink(i1, i2, 10)
	n.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})

	namer := routerNamer{"i1": i1, "i2": i2, "e1": e1}
	policy, err := hardpolicy.Parse("F reach(i2,e1)", namer)
	require.NoError(t, err)

	cmd := netsim.Command{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i1, B: i2, Kind: netsim.IBGPPeer}}

	ok, witness, err := transient.Check(n, cmd, policy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, witness)
}

func TestCheck_ReportsViolatingState(t *testing.T) {
	n := netsim.New()
	e1 := n.AddRouter(netsim.External, 100)
	i1 := n.AddRouter(netsim.Internal, 1)
	i2 := n.AddRouter(netsim.Internal, 1)
	n.AddBGPSession(e1, i1, netsim.EBGP)
	n.AddLink(i1, i2, 10)
	n.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})

	namer := routerNamer{"i1": i1, "i2": i2, "e1": e1}
	// i2's only candidate route, once relayed over the new iBGP session, is
	// e1's - so demanding i2 never reach e1 can never hold once the session
	// converges.
	policy, err := hardpolicy.Parse("G !reach(i2,e1)", namer)
	require.NoError(t, err)

	cmd := netsim.Command{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i1, B: i2, Kind: netsim.IBGPPeer}}

	ok, witness, err := transient.Check(n, cmd, policy)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, witness)
}

func TestCheck_DoesNotMutateTheOriginalNetwork(t *testing.T) {
	n := netsim.New()
	e1 := n.AddRouter(netsim.External, 100)
	i1 := n.AddRouter(netsim.Internal, 1)
	i2 := n.AddRouter(netsim.Internal, 1)
	n.AddBGPSession(e1, i1, netsim.EBGP)
	n.AddLink(i1, i2, 10)
	n.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})

	before := n.ForwardingState()

	namer := routerNamer{"i1": i1, "i2": i2, "e1": e1}
	policy, err := hardpolicy.Parse("F reach(i2,e1)", namer)
	require.NoError(t, err)
	cmd := netsim.Command{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i1, B: i2, Kind: netsim.IBGPPeer}}

	_, _, err = transient.Check(n, cmd, policy)
	require.NoError(t, err)

	after := n.ForwardingState()
	beforeHop, beforeOK := before.NextHop(i2, 0)
	afterHop, afterOK := after.NextHop(i2, 0)
	assert.Equal(t, beforeOK, afterOK)
	assert.Equal(t, beforeHop, afterHop)
}
