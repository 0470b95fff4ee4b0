// Package testnets builds the named example networks from spec.md §8 and
// the additional generators carried over from the original implementation's
// example_networks module (smallnet, mediumnet, firewallnet, evil_twin,
// carousel, difficult, repetitions, abilene), as reusable fixtures for the
// rest of the test suite.
package testnets

import (
	"fmt"

	"github.com/nsg-ethz/snowcap/netsim"
)

// Namer resolves router names to IDs and a destination name to the prefix
// it originates, implementing hardpolicy.Namer without importing it (would
// be a cycle: hardpolicy doesn't depend on testnets, but importing it here
// just for the interface type isn't worth the coupling).
type Namer map[string]netsim.RouterId

func (n Namer) RouterID(name string) (netsim.RouterId, bool) {
	id, ok := n[name]
	return id, ok
}

func (n Namer) PrefixOf(string) (netsim.Prefix, bool) { return 0, true }

// Net bundles a built network with the name->id map used to address it and
// the commands (if any) still pending application, for delta-driven
// scenarios.
type Net struct {
	Net      *netsim.Network
	Names    Namer
	Commands []netsim.Command
}

func chainRouter(n *netsim.Network, names Namer, name string, kind netsim.RouterKind, as netsim.AsId) netsim.RouterId {
	id := n.AddRouter(kind, as)
	names[name] = id
	return id
}

// Chain builds a linear chain of n internal routers (r0..r(n-1)) in a
// single AS, an iBGP session between each pair of neighbours, unit IGP
// link weights, with the last router
// externally peered and originating prefix 0 - the "chain gadget" named in
// spec.md §8 scenario "dependency chains of length k".
func Chain(n int) Net {
	net := netsim.New()
	names := Namer{}
	ids := make([]netsim.RouterId, n)
	for i := 0; i < n; i++ {
		ids[i] = chainRouter(net, names, fmt.Sprintf("r%d", i), netsim.Internal, 1)
	}
	for i := 0; i < n-1; i++ {
		net.AddLink(ids[i], ids[i+1], 1)
		net.AddBGPSession(ids[i], ids[i+1], netsim.IBGPPeer)
	}
	ext := chainRouter(net, names, "ext", netsim.External, 100)
	net.AddBGPSession(ext, ids[n-1], netsim.EBGP)
	net.AdvertiseExternalRoute(ext, 0, []netsim.AsId{100})
	return Net{Net: net, Names: names}
}

// Bipartite builds two disjoint internal routers a0, a1 each eBGP-peered to
// their own external origin (e0 for a0, e1 for a1), e0 originating prefix
// 0 and e1 prefix 1 under distinct ASes, with a0 and a1 not yet
// iBGP-connected - the
// "bipartite gadget" named in spec.md §8, used to test that independent
// command groups compose without spurious ordering constraints between
// them.
func Bipartite() Net {
	net := netsim.New()
	names := Namer{}
	a0 := chainRouter(net, names, "a0", netsim.Internal, 1)
	a1 := chainRouter(net, names, "a1", netsim.Internal, 1)
	e0 := chainRouter(net, names, "e0", netsim.External, 100)
	e1 := chainRouter(net, names, "e1", netsim.External, 200)
	net.AddBGPSession(e0, a0, netsim.EBGP)
	net.AddBGPSession(e1, a1, netsim.EBGP)
	net.AdvertiseExternalRoute(e0, 0, []netsim.AsId{100})
	net.AdvertiseExternalRoute(e1, 1, []netsim.AsId{200})
	net.AddLink(a0, a1, 10)

	commands := []netsim.Command{
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: a0, B: a1, Kind: netsim.IBGPPeer}},
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// FM2RR builds a three-router full-mesh iBGP core (rr, c1, c2) plus an
// external origin peered to rr, and returns the migration command that
// converts c1 and c2 from full-mesh peers of rr into route-reflector
// clients of rr - the "FM2RR" (full-mesh to route-reflector) scenario
// named in spec.md §8.
func FM2RR() Net {
	net := netsim.New()
	names := Namer{}
	rr := chainRouter(net, names, "rr", netsim.Internal, 1)
	c1 := chainRouter(net, names, "c1", netsim.Internal, 1)
	c2 := chainRouter(net, names, "c2", netsim.Internal, 1)
	ext := chainRouter(net, names, "ext", netsim.External, 100)

	net.AddLink(rr, c1, 1)
	net.AddLink(rr, c2, 1)
	net.AddLink(c1, c2, 100)
	net.AddBGPSession(rr, c1, netsim.IBGPPeer)
	net.AddBGPSession(rr, c2, netsim.IBGPPeer)
	net.AddBGPSession(ext, rr, netsim.EBGP)
	net.AdvertiseExternalRoute(ext, 0, []netsim.AsId{100})

	commands := []netsim.Command{
		{Kind: netsim.Remove, Expr: netsim.BGPSessionExpr{A: rr, B: c1, Kind: netsim.IBGPPeer}},
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: rr, B: c1, Kind: netsim.IBGPRouteReflectorClient}},
		{Kind: netsim.Remove, Expr: netsim.BGPSessionExpr{A: rr, B: c2, Kind: netsim.IBGPPeer}},
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: rr, B: c2, Kind: netsim.IBGPRouteReflectorClient}},
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// IGPx2 builds a four-router ring (r0-r1-r2-r3-r0) with uniform IGP weight
// 10 on every link and an external origin attached at r0, and returns the
// commands that double every ring link's weight one at a time - the
// "IGPx2" ring scenario named in spec.md §8, testing that IGP reweighing
// commands commute safely (or don't) with respect to a reachability
// policy while the shortest-path next hop shifts underneath a fixed
// selected BGP route.
func IGPx2() Net {
	net := netsim.New()
	names := Namer{}
	ids := make([]netsim.RouterId, 4)
	for i := 0; i < 4; i++ {
		ids[i] = chainRouter(net, names, fmt.Sprintf("r%d", i), netsim.Internal, 1)
	}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		net.AddLink(ids[i], ids[j], 10)
		net.AddBGPSession(ids[i], ids[j], netsim.IBGPPeer)
	}
	ext := chainRouter(net, names, "ext", netsim.External, 100)
	net.AddBGPSession(ext, ids[0], netsim.EBGP)
	net.AdvertiseExternalRoute(ext, 0, []netsim.AsId{100})

	commands := make([]netsim.Command, 4)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		commands[i] = netsim.Command{
			Kind:   netsim.Update,
			Expr:   netsim.IGPLinkWeightExpr{A: ids[i], B: ids[j], Weight: 20},
			OldVal: netsim.IGPLinkWeightExpr{A: ids[i], B: ids[j], Weight: 10},
		}
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// NetAcq builds two independent internal "companies" (left: l0, l1; right:
// r0, r1), each with its own external origin for prefix 0 under its own
// AS, and returns the commands that merge them into one iBGP mesh (a new
// l1-r0 link plus the cross iBGP session) - the "NetAcq" (network
// acquisition/merge) scenario named in spec.md §8.
func NetAcq() Net {
	net := netsim.New()
	names := Namer{}
	l0 := chainRouter(net, names, "l0", netsim.Internal, 1)
	l1 := chainRouter(net, names, "l1", netsim.Internal, 1)
	r0 := chainRouter(net, names, "r0", netsim.Internal, 1)
	r1 := chainRouter(net, names, "r1", netsim.Internal, 1)
	el := chainRouter(net, names, "el", netsim.External, 100)
	er := chainRouter(net, names, "er", netsim.External, 200)

	net.AddLink(l0, l1, 1)
	net.AddLink(r0, r1, 1)
	net.AddBGPSession(l0, l1, netsim.IBGPPeer)
	net.AddBGPSession(r0, r1, netsim.IBGPPeer)
	net.AddBGPSession(el, l0, netsim.EBGP)
	net.AddBGPSession(er, r0, netsim.EBGP)
	net.AdvertiseExternalRoute(el, 0, []netsim.AsId{100})
	net.AdvertiseExternalRoute(er, 0, []netsim.AsId{200})

	commands := []netsim.Command{
		{Kind: netsim.Insert, Expr: netsim.IGPLinkWeightExpr{A: l1, B: r0, Weight: 50}},
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: l1, B: r0, Kind: netsim.IBGPPeer}},
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// Unsatisfiable builds the simplest evil-twin topology where the demanded
// policy can never hold in the fully-converged final state regardless of
// command order - the "one unsatisfiable instance" scenario named in
// spec.md §8, used to assert that strategy.Synthesize reports ErrNoSolution
// rather than looping or panicking.
func Unsatisfiable() Net {
	net := netsim.New()
	names := Namer{}
	i1 := chainRouter(net, names, "i1", netsim.Internal, 1)
	i2 := chainRouter(net, names, "i2", netsim.Internal, 1)
	e1 := chainRouter(net, names, "e1", netsim.External, 100)
	e2 := chainRouter(net, names, "e2", netsim.External, 200)

	net.AddBGPSession(e1, i1, netsim.EBGP)
	net.AddLink(i1, i2, 10)
	net.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})
	net.AdvertiseExternalRoute(e2, 0, []netsim.AsId{200})

	commands := []netsim.Command{
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i1, B: i2, Kind: netsim.IBGPPeer}},
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i2, B: e2, Kind: netsim.EBGP}},
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// SmallNet is a five-router single-AS network (r0..r4, a star around r0)
// with one external origin, a minimal richer-than-chain fixture for tests
// that need more than two non-trivial internal routers without the size of
// MediumNet.
func SmallNet() Net {
	net := netsim.New()
	names := Namer{}
	hub := chainRouter(net, names, "r0", netsim.Internal, 1)
	for i := 1; i < 5; i++ {
		leaf := chainRouter(net, names, fmt.Sprintf("r%d", i), netsim.Internal, 1)
		net.AddLink(hub, leaf, 1)
		net.AddBGPSession(hub, leaf, netsim.IBGPPeer)
	}
	ext := chainRouter(net, names, "ext", netsim.External, 100)
	net.AddBGPSession(ext, hub, netsim.EBGP)
	net.AdvertiseExternalRoute(ext, 0, []netsim.AsId{100})
	return Net{Net: net, Names: names}
}

// MediumNet is a ten-router two-level star (one hub, three mid-level
// routers each with two leaves) in a single AS with one external origin,
// scaled up from SmallNet for tests exercising the search's performance
// envelope on a larger network; every internal router has a single iBGP
// session, to the hub.
func MediumNet() Net {
	net := netsim.New()
	names := Namer{}
	hub := chainRouter(net, names, "hub", netsim.Internal, 1)
	mids := make([]netsim.RouterId, 3)
	for i := 0; i < 3; i++ {
		mids[i] = chainRouter(net, names, fmt.Sprintf("mid%d", i), netsim.Internal, 1)
		net.AddLink(hub, mids[i], 1)
		net.AddBGPSession(hub, mids[i], netsim.IBGPPeer)
		for j := 0; j < 2; j++ {
			leaf := chainRouter(net, names, fmt.Sprintf("leaf%d_%d", i, j), netsim.Internal, 1)
			net.AddLink(mids[i], leaf, 1)
			net.AddBGPSession(hub, leaf, netsim.IBGPPeer)
		}
	}
	ext := chainRouter(net, names, "ext", netsim.External, 100)
	net.AddBGPSession(ext, hub, netsim.EBGP)
	net.AdvertiseExternalRoute(ext, 0, []netsim.AsId{100})
	return Net{Net: net, Names: names}
}

// FirewallNet builds a border router (fw) sitting between an internal core
// router (core, originating prefix 0) and an external peer (ext), with a
// route-map on fw's egress toward ext that denies every route; the pending
// command inserts a permit clause ahead of the deny clause - the
// "firewallnet" fixture, for tests of route-map-clause commands rather
// than session/link commands.
func FirewallNet() Net {
	net := netsim.New()
	names := Namer{}
	core := chainRouter(net, names, "core", netsim.Internal, 1)
	fw := chainRouter(net, names, "fw", netsim.Internal, 1)
	ext := chainRouter(net, names, "ext", netsim.External, 100)

	net.AddLink(core, fw, 1)
	net.AddBGPSession(core, fw, netsim.IBGPPeer)
	net.AddBGPSession(fw, ext, netsim.EBGP)
	net.AdvertiseExternalRoute(core, 0, []netsim.AsId{})

	denyAll := netsim.RouteMap{{SeqNum: 10, Permit: false}}
	net.SetRouteMap(fw, ext, netsim.Out, denyAll)

	permitPrefix0 := netsim.Clause{SeqNum: 0, Permit: true}
	commands := []netsim.Command{
		{Kind: netsim.Insert, Expr: netsim.RouteMapClauseExpr{Router: fw, Peer: ext, Dir: netsim.Out, Clause: permitPrefix0}},
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// EvilTwin is the same duplicate-origination fixture as Unsatisfiable
// (i1/e1 already connected, i2 isolated, e2 a duplicate originator of
// prefix 0) except the policy "i2 must never reach e1" IS satisfiable:
// connecting i2 to e2 before i2 to i1 avoids the transient relay window.
// Named after the original implementation's evil_twin_gadget generator.
func EvilTwin() Net {
	net := netsim.New()
	names := Namer{}
	e1 := chainRouter(net, names, "e1", netsim.External, 100)
	i1 := chainRouter(net, names, "i1", netsim.Internal, 1)
	i2 := chainRouter(net, names, "i2", netsim.Internal, 1)
	e2 := chainRouter(net, names, "e2", netsim.External, 200)

	net.AddBGPSession(e1, i1, netsim.EBGP)
	net.AddLink(i1, i2, 10)
	net.AdvertiseExternalRoute(e1, 0, []netsim.AsId{100})
	net.AdvertiseExternalRoute(e2, 0, []netsim.AsId{200})

	commands := []netsim.Command{
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i1, B: i2, Kind: netsim.IBGPPeer}},
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: i2, B: e2, Kind: netsim.EBGP}},
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// Carousel builds a ring of n internal routers with iBGP sessions around the
// ring, each
// with its own externally-peered origin advertising a distinct prefix, so
// that every router's best route to every other router's prefix "goes
// around" the ring - named after the original implementation's
// carousel_gadget, used to stress the dependency-set sweep against many
// simultaneous, loosely coupled announcement commands.
func Carousel(n int) Net {
	net := netsim.New()
	names := Namer{}
	ids := make([]netsim.RouterId, n)
	for i := 0; i < n; i++ {
		ids[i] = chainRouter(net, names, fmt.Sprintf("r%d", i), netsim.Internal, 1)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		net.AddLink(ids[i], ids[j], 10)
		net.AddBGPSession(ids[i], ids[j], netsim.IBGPPeer)
	}

	commands := make([]netsim.Command, 0, n)
	for i := 0; i < n; i++ {
		ext := chainRouter(net, names, fmt.Sprintf("ext%d", i), netsim.External, netsim.AsId(100+i))
		commands = append(commands, netsim.Command{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: ext, B: ids[i], Kind: netsim.EBGP}})
		commands = append(commands, netsim.Command{Kind: netsim.Insert, Expr: netsim.LocalAnnouncementExpr{Router: ext, Prefix: netsim.Prefix(i), ASPath: []netsim.AsId{netsim.AsId(100 + i)}}})
	}
	return Net{Net: net, Names: names, Commands: commands}
}

// Difficult combines FM2RR's route-reflector migration with an
// IGPx2-style reweighing of the core links, interleaved in a single
// command set, so that the two families of dependency constraints (BGP
// session role changes and IGP next-hop shifts) compete for ordering
// priority at once - named after the original implementation's
// difficult_gadget, the scenario spec.md §8 notes "expected to need
// hundreds" of naive orderings before TRTA's pruning was added.
func Difficult() Net {
	fm := FM2RR()
	r1, _ := fm.Names.RouterID("rr")
	r2, _ := fm.Names.RouterID("c1")
	commands := append([]netsim.Command{}, fm.Commands...)
	commands = append(commands, netsim.Command{
		Kind:   netsim.Update,
		Expr:   netsim.IGPLinkWeightExpr{A: r1, B: r2, Weight: 5},
		OldVal: netsim.IGPLinkWeightExpr{A: r1, B: r2, Weight: 1},
	})
	return Net{Net: fm.Net, Names: fm.Names, Commands: commands}
}

// Repetitions builds the Chain gadget's command set repeated k times with
// distinct target weights, used to confirm the search handles a delta
// where multiple commands target the same link/session pair across
// different points in the ordering without conflating their dependency
// sets - named after the original implementation's repetitions generator.
func Repetitions(k int) Net {
	c := Chain(3)
	a, _ := c.Names.RouterID("r0")
	b, _ := c.Names.RouterID("r1")
	commands := make([]netsim.Command, 0, k)
	for i := 0; i < k; i++ {
		commands = append(commands, netsim.Command{
			Kind:   netsim.Update,
			Expr:   netsim.IGPLinkWeightExpr{A: a, B: b, Weight: netsim.LinkWeight(10 + i)},
			OldVal: netsim.IGPLinkWeightExpr{A: a, B: b, Weight: 1},
		})
	}
	return Net{Net: c.Net, Names: c.Names, Commands: commands}
}

// abilenePOPs are the twelve Abilene backbone POP names, carried over from
// the original implementation's topology-zoo-derived abilene_net fixture
// (GraphML parsing itself is out of scope; only the fixed POP/link layout
// is reproduced here).
var abilenePOPs = []string{
	"seattle", "sunnyvale", "losangeles", "denver", "kansascity",
	"houston", "chicago", "indianapolis", "atlanta", "washington",
	"newyork", "nycm",
}

var abileneLinks = [][2]int{
	{0, 1}, {0, 3}, {1, 2}, {2, 5}, {3, 4}, {3, 6},
	{4, 5}, {4, 8}, {6, 7}, {6, 9}, {7, 8}, {9, 10}, {10, 11}, {8, 11},
}

// Abilene builds the fixed twelve-router Abilene backbone topology (one
// AS, full-mesh iBGP, link weights all 10) with an external origin
// attached at "seattle" - the abilene_net fixture from the original
// implementation, minus GraphML parsing.
func Abilene() Net {
	return abilene(10)
}

// VariableAbilene is Abilene with every link weight scaled by factor,
// corresponding to the original implementation's variable_abilene_net
// generator (used to study how IGP cost magnitude affects convergence
// step count without changing topology).
func VariableAbilene(factor netsim.LinkWeight) Net {
	return abilene(factor)
}

func abilene(weight netsim.LinkWeight) Net {
	net := netsim.New()
	names := Namer{}
	ids := make([]netsim.RouterId, len(abilenePOPs))
	for i, name := range abilenePOPs {
		ids[i] = chainRouter(net, names, name, netsim.Internal, 1)
	}
	for _, l := range abileneLinks {
		net.AddLink(ids[l[0]], ids[l[1]], weight)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			net.AddBGPSession(ids[i], ids[j], netsim.IBGPPeer)
		}
	}
	ext := chainRouter(net, names, "ext", netsim.External, 100)
	net.AddBGPSession(ext, ids[0], netsim.EBGP)
	net.AdvertiseExternalRoute(ext, 0, []netsim.AsId{100})
	return Net{Net: net, Names: names}
}
