package netsim_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/fwstate"
	"github.com/nsg-ethz/snowcap/netsim"
)

// stateSnapshot is a full, comparable copy of a *fwstate.State's
// (router, prefix) -> next-hop table, built entirely through State's public
// accessors (NumRouters/Prefixes/NextHop) rather than reaching into its
// unexported fields (its LRU path cache in particular is neither
// comparable nor meaningful to compare). Two snapshots are cmp.Diff-equal
// iff the two states agree on every forwarding entry, which is the
// "bit-identical" full-state notion spec.md §8 asks the determinism and
// rollback-identity properties to check, rather than a single sampled
// (router, prefix) pair.
type stateSnapshot map[netsim.RouterId]map[netsim.Prefix]netsim.RouterId

func snapshot(fs *fwstate.State) stateSnapshot {
	out := stateSnapshot{}
	for r := netsim.RouterId(0); r < netsim.RouterId(fs.NumRouters()); r++ {
		for _, p := range fs.Prefixes() {
			nh, ok := fs.NextHop(r, p)
			if !ok {
				continue
			}
			if out[r] == nil {
				out[r] = map[netsim.Prefix]netsim.RouterId{}
			}
			out[r][p] = nh
		}
	}
	return out
}

// chainNet builds e1 -- i1 -- i2 -- e2, a 2-AS eBGP chain with an IGP link
// between the two internal routers and a full-mesh iBGP session, the
// simplest topology that exercises route propagation across both BGP and
// IGP. e1 advertises prefix 0.
func chainNet(t *testing.T) (*netsim.Network, map[string]netsim.RouterId) {
	t.Helper()
	n := netsim.New()
	e1 := n.AddRouter(netsim.External, 100)
	i1 := n.AddRouter(netsim.Internal, 1)
	i2 := n.AddRouter(netsim.Internal, 1)
	e2 := n.AddRouter(netsim.External, 200)

	n.AddBGPSession(e1, i1, netsim.EBGP)
	n.AddBGPSession(i1, i2, netsim.IBGPPeer)
	n.AddBGPSession(i2, e2, netsim.EBGP)
	n.AddLink(i1, i2, 10)

	n.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})

	return n, map[string]netsim.RouterId{"e1": e1, "i1": i1, "i2": i2, "e2": e2}
}

func TestNetwork_BuilderConverges(t *testing.T) {
	n, r := chainNet(t)
	fs := n.ForwardingState()

	// Route attributes (including NextHop) propagate unmodified across
	// iBGP absent a next-hop-self route-map action, so every internal
	// router's selected route still points at the originating external
	// router e1 directly; fwstate.Path resolves reachability through that
	// BGP-attribute chain, not a physical hop sequence.
	nh, ok := fs.NextHop(r["i1"], 0)
	require.True(t, ok)
	assert.Equal(t, r["e1"], nh)

	nh, ok = fs.NextHop(r["i2"], 0)
	require.True(t, ok)
	assert.Equal(t, r["e1"], nh)

	assert.True(t, fs.Reachable(r["i2"], 0))
}

func TestNetwork_ApplyBGPSessionPropagatesRoute(t *testing.T) {
	n := netsim.New()
	e1 := n.AddRouter(netsim.External, 100)
	i1 := n.AddRouter(netsim.Internal, 1)
	i2 := n.AddRouter(netsim.Internal, 1)
	n.AddLink(i1, i2, 5)
	n.AddBGPSession(e1, i1, netsim.EBGP)
	n.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})

	// i2 has no route yet: no iBGP session to i1.
	fs := n.ForwardingState()
	_, ok := fs.NextHop(i2, 0)
	assert.False(t, ok)

	cmd := netsim.Command{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i1, B: i2, Kind: netsim.IBGPPeer}}
	delta, err := n.Apply(cmd)
	require.NoError(t, err)
	assert.NotEmpty(t, delta)

	fs = n.ForwardingState()
	nh, ok := fs.NextHop(i2, 0)
	require.True(t, ok)
	assert.Equal(t, e1, nh)
}

func TestNetwork_UndoRestoresState(t *testing.T) {
	n, r := chainNet(t)
	before := snapshot(n.ForwardingState())

	cmd := netsim.Command{Kind: netsim.Remove, Expr: netsim.BGPSessionExpr{A: r["i1"], B: r["i2"], Kind: netsim.IBGPPeer}}
	_, err := n.Apply(cmd)
	require.NoError(t, err)

	mid := n.ForwardingState()
	_, midOK := mid.NextHop(r["i2"], 0)
	assert.False(t, midOK, "removing the iBGP session should drop i2's route")

	require.NoError(t, n.Undo(cmd))

	// Undo must restore the network to a state bit-identical to the one
	// before Apply, not merely agree on the one (router, prefix) pair the
	// command touched most directly.
	after := snapshot(n.ForwardingState())
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("forwarding state after undo differs from state before apply (-before +after):\n%s", diff)
	}

	// It must also be bit-identical to a network built fresh, never having
	// seen the command at all.
	fresh, _ := chainNet(t)
	freshState := snapshot(fresh.ForwardingState())
	if diff := cmp.Diff(freshState, after); diff != "" {
		t.Errorf("forwarding state after undo differs from a freshly built network (-fresh +after):\n%s", diff)
	}
}

func TestNetwork_ConvergenceIsDeterministicAcrossIndependentBuilds(t *testing.T) {
	// Two independently constructed networks, given the same starting
	// topology and the same command sequence in the same order, must
	// produce identical forwarding-state traces at every step - spec.md
	// §8's determinism invariant, checked here on the full state rather
	// than a sampled entry.
	commandsFor := func(r map[string]netsim.RouterId) []netsim.Command {
		return []netsim.Command{
			{Kind: netsim.Remove, Expr: netsim.BGPSessionExpr{A: r["i1"], B: r["i2"], Kind: netsim.IBGPPeer}},
			{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: r["i1"], B: r["i2"], Kind: netsim.IBGPPeer}},
			{
				Kind:   netsim.Update,
				Expr:   netsim.IGPLinkWeightExpr{A: r["i1"], B: r["i2"], Weight: 50},
				OldVal: netsim.IGPLinkWeightExpr{A: r["i1"], B: r["i2"], Weight: 10},
			},
		}
	}

	traceOf := func(t *testing.T) []stateSnapshot {
		n, r := chainNet(t)
		trace := []stateSnapshot{snapshot(n.ForwardingState())}
		for _, cmd := range commandsFor(r) {
			_, err := n.Apply(cmd)
			require.NoError(t, err)
			trace = append(trace, snapshot(n.ForwardingState()))
		}
		return trace
	}

	traceA := traceOf(t)
	traceB := traceOf(t)
	if diff := cmp.Diff(traceA, traceB); diff != "" {
		t.Errorf("independently built networks diverged on the same command sequence (-a +b):\n%s", diff)
	}
}

func TestNetwork_ApplyDuplicateCommandErrors(t *testing.T) {
	n := netsim.New()
	a := n.AddRouter(netsim.Internal, 1)
	b := n.AddRouter(netsim.Internal, 1)
	cmd := netsim.Command{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: a, B: b, Kind: netsim.IBGPPeer}}
	_, err := n.Apply(cmd)
	require.NoError(t, err)

	// Applying the same command id again without an intervening Undo must
	// fail: it would overwrite an existing config key.
	_, err = n.Apply(cmd)
	assert.Error(t, err)
}

func TestNetwork_RemoveUnknownKeyErrors(t *testing.T) {
	n := netsim.New()
	a := n.AddRouter(netsim.Internal, 1)
	b := n.AddRouter(netsim.Internal, 1)
	cmd := netsim.Command{Kind: netsim.Remove, Expr: netsim.BGPSessionExpr{A: a, B: b, Kind: netsim.IBGPPeer}}
	_, err := n.Apply(cmd)
	assert.Error(t, err)
}

func TestNetwork_CloneIsIndependent(t *testing.T) {
	n, r := chainNet(t)
	clone := n.Clone()

	cmd := netsim.Command{Kind: netsim.Remove, Expr: netsim.BGPSessionExpr{A: r["i1"], B: r["i2"], Kind: netsim.IBGPPeer}}
	_, err := clone.Apply(cmd)
	require.NoError(t, err)

	// The original network must be unaffected by mutating the clone.
	fs := n.ForwardingState()
	_, ok := fs.NextHop(r["i2"], 0)
	assert.True(t, ok, "original network must not be mutated by a clone's Apply")

	cloneFS := clone.ForwardingState()
	_, cloneOK := cloneFS.NextHop(r["i2"], 0)
	assert.False(t, cloneOK)
}

func TestNetwork_IGPCostBreaksTieBetweenEqualEBGPRoutes(t *testing.T) {
	// i1 peers eBGP directly with two distinct external routers, each
	// announcing the same prefix with an equally long, equally-preferred
	// AS-path from a different neighbor AS (so MED is never compared).
	// Route attributes (including NextHop) are never rewritten in transit
	// absent a next-hop-self action, so the two candidate routes really do
	// carry distinct NextHop values here (the two originators themselves),
	// and betterRoute's IGP-cost-to-next-hop clause is what decides
	// between them.
	n := netsim.New()
	i1 := n.AddRouter(netsim.Internal, 1)
	e2a := n.AddRouter(netsim.External, 201)
	e2b := n.AddRouter(netsim.External, 202)

	n.AddLink(i1, e2a, 1)
	n.AddLink(i1, e2b, 100)
	n.AddBGPSession(i1, e2a, netsim.EBGP)
	n.AddBGPSession(i1, e2b, netsim.EBGP)

	n.AdvertiseExternalRoute(e2a, 0, []netsim.AsId{201})
	n.AdvertiseExternalRoute(e2b, 0, []netsim.AsId{202})

	fs := n.ForwardingState()
	nh, ok := fs.NextHop(i1, 0)
	require.True(t, ok)
	assert.Equal(t, e2a, nh, "lower IGP cost to the candidate's next-hop should win the tie")

	// Raising the i1-e2a link weight above the i1-e2b one should flip the
	// selection.
	cmd := netsim.Command{
		Kind:   netsim.Update,
		Expr:   netsim.IGPLinkWeightExpr{A: i1, B: e2a, Weight: 1000},
		OldVal: netsim.IGPLinkWeightExpr{A: i1, B: e2a, Weight: 1},
	}
	_, err := n.Apply(cmd)
	require.NoError(t, err)

	fs = n.ForwardingState()
	nh, ok = fs.NextHop(i1, 0)
	require.True(t, ok)
	assert.Equal(t, e2b, nh)
}

func TestCommand_IDStableAndKindSensitive(t *testing.T) {
	expr := netsim.IGPLinkWeightExpr{A: 0, B: 1, Weight: 10}
	insert := netsim.Command{Kind: netsim.Insert, Expr: expr}
	remove := netsim.Command{Kind: netsim.Remove, Expr: expr}

	assert.Equal(t, insert.ID(), insert.ID())
	assert.NotEqual(t, insert.ID(), remove.ID(), "ID must depend on kind, not just the expression")
}
