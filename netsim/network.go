package netsim

import (
	"sort"

	"github.com/nsg-ethz/snowcap/fwstate"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// maxConvergenceFactor bounds the convergence step count at
// maxConvergenceFactor * |routers|, per spec.md §4.1.
const maxConvergenceFactor = 100

type linkKey struct{ A, B RouterId }

func newLinkKey(a, b RouterId) linkKey {
	if a <= b {
		return linkKey{a, b}
	}
	return linkKey{b, a}
}

// routerRecord is the per-router mutable BGP/IGP state, held in a dense
// slice indexed by RouterId; there are no pointers back to the Network or
// to peers, only RouterId lookups, per spec.md §9.
type routerRecord struct {
	kind RouterKind
	as   AsId

	// sessions maps peer -> this router's relationship to that peer.
	sessions map[RouterId]SessionKind

	inRouteMap  map[RouterId]RouteMap
	outRouteMap map[RouterId]RouteMap

	// ribInRaw holds routes as received, before the ingress route-map;
	// ribIn holds them after. Both are needed so that an in-route-map
	// change can be re-applied without re-requesting anything from the
	// peer.
	ribInRaw map[RouterId]map[Prefix]Route
	ribIn    map[RouterId]map[Prefix]Route

	// localAnnouncements are routes this router originates itself: a
	// directly-attached prefix, or (for an External router) an
	// eBGP-advertised prefix. Keyed by a synthetic "peer" id equal to the
	// router's own id.
	localAnnouncements map[Prefix]Route

	localRib   map[Prefix]Route
	forwarding map[Prefix]RouterId
}

func newRouterRecord(kind RouterKind, as AsId) *routerRecord {
	return &routerRecord{
		kind:               kind,
		as:                 as,
		sessions:           map[RouterId]SessionKind{},
		inRouteMap:         map[RouterId]RouteMap{},
		outRouteMap:        map[RouterId]RouteMap{},
		ribInRaw:           map[RouterId]map[Prefix]Route{},
		ribIn:              map[RouterId]map[Prefix]Route{},
		localAnnouncements: map[Prefix]Route{},
		localRib:           map[Prefix]Route{},
		forwarding:         map[Prefix]RouterId{},
	}
}

func (r *routerRecord) clone() *routerRecord {
	c := &routerRecord{
		kind:                r.kind,
		as:                  r.as,
		sessions:            map[RouterId]SessionKind{},
		inRouteMap:          map[RouterId]RouteMap{},
		outRouteMap:         map[RouterId]RouteMap{},
		ribInRaw:            map[RouterId]map[Prefix]Route{},
		ribIn:               map[RouterId]map[Prefix]Route{},
		localAnnouncements:  map[Prefix]Route{},
		localRib:            map[Prefix]Route{},
		forwarding:          map[Prefix]RouterId{},
	}
	for k, v := range r.sessions {
		c.sessions[k] = v
	}
	for k, v := range r.inRouteMap {
		c.inRouteMap[k] = append(RouteMap(nil), v...)
	}
	for k, v := range r.outRouteMap {
		c.outRouteMap[k] = append(RouteMap(nil), v...)
	}
	for peer, byPrefix := range r.ribInRaw {
		c.ribInRaw[peer] = cloneRouteMapByPrefix(byPrefix)
	}
	for peer, byPrefix := range r.ribIn {
		c.ribIn[peer] = cloneRouteMapByPrefix(byPrefix)
	}
	for p, rt := range r.localAnnouncements {
		c.localAnnouncements[p] = rt.Clone()
	}
	for p, rt := range r.localRib {
		c.localRib[p] = rt.Clone()
	}
	for p, nh := range r.forwarding {
		c.forwarding[p] = nh
	}
	return c
}

func cloneRouteMapByPrefix(m map[Prefix]Route) map[Prefix]Route {
	out := make(map[Prefix]Route, len(m))
	for p, r := range m {
		out[p] = r.Clone()
	}
	return out
}

// TraceDelta is the list of (router, prefix, old-next-hop -> new-next-hop)
// updates produced by one Apply call, per spec.md §4.1.
type TraceDelta []NextHopChange

// NextHopChange is one forwarding-entry update.
type NextHopChange struct {
	Router        RouterId
	Prefix        Prefix
	OldNextHop    RouterId
	NewNextHop    RouterId
	HadOldNextHop bool
	HasNewNextHop bool
}

// Network is the live Network Model: spec.md §4.1. Mutation happens
// in-place with an undo log keyed by command, not by cloning, per the
// Ownership rule in spec.md §3: a synthesis run mutates exactly one live
// Network and rolls it back between candidate orderings.
type Network struct {
	routers []*routerRecord
	links   map[linkKey]LinkWeight
	config  map[string]ConfigExpr

	// igpDist[r][x] is the shortest IGP distance from internal router r
	// to router x, recomputed by Dijkstra whenever a link weight changes.
	igpDist map[RouterId]map[RouterId]LinkWeight

	undoLog map[CommandID][]undoOp
	seq     int

	// queue is the in-flight BGP update queue, live only for the duration
	// of a single Apply/converge call.
	queue *messageHeap

	// onMessageProcessed, if set, is invoked after every message popped
	// from the queue during converge — used only by ApplyWithTrace to
	// capture transient intermediate forwarding states.
	onMessageProcessed func()
}

type undoOp func(n *Network)

// New creates an empty Network with no routers.
func New() *Network {
	return &Network{
		links:   map[linkKey]LinkWeight{},
		config:  map[string]ConfigExpr{},
		igpDist: map[RouterId]map[RouterId]LinkWeight{},
		undoLog: map[CommandID][]undoOp{},
	}
}

// --- Builder interface (spec.md §6) ---

// AddRouter adds a new router of the given kind and returns its id. For
// External routers, as is the AS the router belongs to; for Internal
// routers, as is the network's own AS (same for all internal routers).
func (n *Network) AddRouter(kind RouterKind, as AsId) RouterId {
	id := RouterId(len(n.routers))
	n.routers = append(n.routers, newRouterRecord(kind, as))
	n.igpDist[id] = map[RouterId]LinkWeight{id: 0}
	return id
}

// AddLink installs an IGP link of the given weight between a and b. This is
// part of the builder interface used to construct C₀; ongoing weight
// changes during synthesis go through Apply(Insert/Update(IGPLinkWeightExpr)).
func (n *Network) AddLink(a, b RouterId, weight LinkWeight) {
	key := newLinkKey(a, b)
	n.links[key] = weight
	expr := IGPLinkWeightExpr{A: key.A, B: key.B, Weight: weight}
	n.config[expr.Key()] = expr
	n.recomputeIGP()
}

// AddBGPSession installs a BGP session of the given kind between a and b as
// part of building C₀.
func (n *Network) AddBGPSession(a, b RouterId, kind SessionKind) {
	n.installSession(a, b, kind)
	expr := BGPSessionExpr{A: a, B: b, Kind: kind}
	n.config[expr.Key()] = expr
}

func (n *Network) installSession(a, b RouterId, kind SessionKind) {
	switch kind {
	case IBGPRouteReflectorClient:
		n.routers[a].sessions[b] = IBGPRouteReflectorClient // a is the RR
		n.routers[b].sessions[a] = ibgpClientRole
	default:
		n.routers[a].sessions[b] = kind
		n.routers[b].sessions[a] = kind
	}
}

// ibgpClientRole is the reciprocal role recorded at the client's side of an
// IBGPRouteReflectorClient session: "my peer is my route reflector".
const ibgpClientRole SessionKind = 100

// SetRouteMap installs the route-map a router applies to a given peer in a
// given direction as part of building C₀.
func (n *Network) SetRouteMap(router, peer RouterId, dir Direction, rm RouteMap) {
	if dir == In {
		n.routers[router].inRouteMap[peer] = rm
	} else {
		n.routers[router].outRouteMap[peer] = rm
	}
	for _, clause := range rm {
		expr := RouteMapClauseExpr{Router: router, Peer: peer, Dir: dir, Clause: clause}
		n.config[expr.Key()] = expr
	}
}

// AdvertiseExternalRoute has router r originate prefix p with as-path
// asPath, as part of building C₀.
func (n *Network) AdvertiseExternalRoute(r RouterId, p Prefix, asPath []AsId) {
	route := Route{
		Prefix:      p,
		ASPath:      append([]AsId(nil), asPath...),
		NextHop:     r,
		LocalPref:   100,
		Communities: map[uint32]struct{}{},
		Origin:      r,
		learnedFrom: r,
		learnedKind: EBGP,
	}
	n.routers[r].localAnnouncements[p] = route
	expr := LocalAnnouncementExpr{Router: r, Prefix: p, ASPath: asPath}
	n.config[expr.Key()] = expr
	n.runSelection(r, p)
	// Propagate the new route to a fixed point, so a network built through
	// this interface is already converged.
	_ = n.converge(nil)
}

// --- Apply / Undo / ForwardingState / Clone (spec.md §4.1) ---

// Apply mutates the configuration according to cmd, runs BGP/IGP
// convergence to a fixed point, and returns the resulting forwarding
// changes.
func (n *Network) Apply(cmd Command) (TraceDelta, error) {
	id := cmd.ID()
	if _, ok := n.undoLog[id]; ok {
		// Re-applying the same command id without an intervening Undo is
		// a programmer error in the search; surfaced as DuplicateKey so
		// the strategy treats it as an ordering violation rather than a
		// panic.
		return nil, serrors.Wrap("command already applied", ErrDuplicateKey, "cmd", cmd.String())
	}
	n.undoLog[id] = nil
	// Convergence can rewrite the RIBs of routers the command does not
	// name, so every router is snapshotted for Undo.
	for r := range n.routers {
		n.touchRouter(id, RouterId(r))
	}

	touched, err := n.applyExpr(id, cmd)
	if err != nil {
		delete(n.undoLog, id)
		return nil, err
	}

	before := n.snapshotForwarding()
	if err := n.converge(touched); err != nil {
		return nil, err
	}
	return n.diffForwarding(before), nil
}

// ApplyWithTrace behaves exactly like Apply, but additionally returns the
// sequence of intermediate forwarding states observed after every message
// processed during convergence — the transient states a steady-state-only
// check never sees. It exists solely for hardpolicy/transient; the regular
// search never calls it, since capturing a ForwardingState snapshot per
// message is far too costly for the TRTA hot loop.
func (n *Network) ApplyWithTrace(cmd Command) (TraceDelta, []*fwstate.State, error) {
	var transient []*fwstate.State
	n.onMessageProcessed = func() { transient = append(transient, n.ForwardingState()) }
	defer func() { n.onMessageProcessed = nil }()

	delta, err := n.Apply(cmd)
	return delta, transient, err
}

// applyExpr performs the direct effect of cmd (the config mutation plus
// whatever initial selection re-runs it implies) and returns the set of
// routers whose RIB-in changed directly, seeding convergence.
func (n *Network) applyExpr(id CommandID, cmd Command) (map[RouterId]bool, error) {
	switch cmd.Kind {
	case Insert:
		return n.insertExpr(id, cmd.Expr)
	case Remove:
		return n.removeExpr(id, cmd.Expr)
	case Update:
		touched, err := n.removeExpr(id, cmd.OldVal)
		if err != nil {
			return nil, err
		}
		more, err := n.insertExpr(id, cmd.Expr)
		if err != nil {
			return nil, err
		}
		for r := range more {
			touched[r] = true
		}
		return touched, nil
	default:
		return nil, serrors.New("unknown command kind")
	}
}

func (n *Network) insertExpr(id CommandID, expr ConfigExpr) (map[RouterId]bool, error) {
	if _, exists := n.config[expr.Key()]; exists {
		return nil, serrors.Wrap("insert would overwrite existing key", ErrDuplicateKey, "key", expr.Key())
	}
	n.pushUndo(id, func(net *Network) { delete(net.config, expr.Key()) })
	n.config[expr.Key()] = expr

	switch e := expr.(type) {
	case IGPLinkWeightExpr:
		n.pushUndo(id, n.undoDeleteLink(e.A, e.B))
		n.links[newLinkKey(e.A, e.B)] = e.Weight
		n.recomputeIGP()
		return n.allInternalRouters(), nil

	case BGPSessionExpr:
		n.touchRouter(id, e.A)
		n.touchRouter(id, e.B)
		n.installSession(e.A, e.B, e.Kind)
		touched := map[RouterId]bool{e.A: true, e.B: true}
		n.exchangeInitialRoutes(e.A, e.B, touched)
		return touched, nil

	case RouteMapClauseExpr:
		n.touchRouter(id, e.Router)
		if e.Dir == In {
			n.routers[e.Router].inRouteMap[e.Peer] = append(n.routers[e.Router].inRouteMap[e.Peer], e.Clause)
			n.refilterIngress(e.Router, e.Peer)
		} else {
			n.routers[e.Router].outRouteMap[e.Peer] = append(n.routers[e.Router].outRouteMap[e.Peer], e.Clause)
			n.reannounceToPeer(e.Router, e.Peer)
		}
		return map[RouterId]bool{e.Router: true}, nil

	case LocalAnnouncementExpr:
		n.touchRouter(id, e.Router)
		route := Route{
			Prefix: e.Prefix, ASPath: append([]AsId(nil), e.ASPath...),
			NextHop: e.Router, LocalPref: 100, Communities: map[uint32]struct{}{},
			Origin: e.Router, learnedFrom: e.Router, learnedKind: EBGP,
		}
		n.routers[e.Router].localAnnouncements[e.Prefix] = route
		n.runSelection(e.Router, e.Prefix)
		return map[RouterId]bool{e.Router: true}, nil

	default:
		return nil, serrors.New("unsupported configuration expression")
	}
}

func (n *Network) removeExpr(id CommandID, expr ConfigExpr) (map[RouterId]bool, error) {
	stored, exists := n.config[expr.Key()]
	if !exists {
		return nil, serrors.Wrap("remove of unknown key", ErrUnknownKey, "key", expr.Key())
	}
	n.pushUndo(id, func(net *Network) { net.config[expr.Key()] = stored })
	delete(n.config, expr.Key())

	switch e := expr.(type) {
	case IGPLinkWeightExpr:
		n.pushUndo(id, n.undoSetLink(e.A, e.B, n.links[newLinkKey(e.A, e.B)]))
		delete(n.links, newLinkKey(e.A, e.B))
		n.recomputeIGP()
		return n.allInternalRouters(), nil

	case BGPSessionExpr:
		n.touchRouter(id, e.A)
		n.touchRouter(id, e.B)
		touched := map[RouterId]bool{e.A: true, e.B: true}
		n.teardownSession(e.A, e.B, touched)
		return touched, nil

	case RouteMapClauseExpr:
		n.touchRouter(id, e.Router)
		if e.Dir == In {
			n.routers[e.Router].inRouteMap[e.Peer] = removeClause(n.routers[e.Router].inRouteMap[e.Peer], e.Clause)
			n.refilterIngress(e.Router, e.Peer)
		} else {
			n.routers[e.Router].outRouteMap[e.Peer] = removeClause(n.routers[e.Router].outRouteMap[e.Peer], e.Clause)
			n.reannounceToPeer(e.Router, e.Peer)
		}
		return map[RouterId]bool{e.Router: true}, nil

	case LocalAnnouncementExpr:
		n.touchRouter(id, e.Router)
		delete(n.routers[e.Router].localAnnouncements, e.Prefix)
		n.runSelection(e.Router, e.Prefix)
		return map[RouterId]bool{e.Router: true}, nil

	default:
		return nil, serrors.New("unsupported configuration expression")
	}
}

func removeClause(rm RouteMap, c Clause) RouteMap {
	out := make(RouteMap, 0, len(rm))
	for _, existing := range rm {
		if existing.SeqNum == c.SeqNum {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// Undo restores the network to exactly the state before cmd was applied.
func (n *Network) Undo(cmd Command) error {
	id := cmd.ID()
	ops, ok := n.undoLog[id]
	if !ok {
		return serrors.New("undo of command that was not applied", "cmd", cmd.String())
	}
	for i := len(ops) - 1; i >= 0; i-- {
		ops[i](n)
	}
	delete(n.undoLog, id)
	return nil
}

func (n *Network) pushUndo(id CommandID, op undoOp) {
	n.undoLog[id] = append(n.undoLog[id], op)
}

func (n *Network) touchRouter(id CommandID, r RouterId) {
	snap := n.routers[r].clone()
	n.pushUndo(id, func(net *Network) { net.routers[r] = snap })
}

func (n *Network) undoDeleteLink(a, b RouterId) undoOp {
	key := newLinkKey(a, b)
	return func(net *Network) {
		delete(net.links, key)
		net.recomputeIGP()
	}
}

func (n *Network) undoSetLink(a, b RouterId, w LinkWeight) undoOp {
	key := newLinkKey(a, b)
	return func(net *Network) {
		net.links[key] = w
		net.recomputeIGP()
	}
}

func (n *Network) allInternalRouters() map[RouterId]bool {
	out := map[RouterId]bool{}
	for id, r := range n.routers {
		if r.kind == Internal {
			out[RouterId(id)] = true
		}
	}
	return out
}

// ForwardingState snapshots the current converged forwarding state as an
// immutable fwstate.State.
func (n *Network) ForwardingState() *fwstate.State {
	nextHop := make(map[RouterId]map[Prefix]RouterId, len(n.routers))
	terminal := map[Prefix]map[RouterId]bool{}
	for id, r := range n.routers {
		m := make(map[Prefix]RouterId, len(r.forwarding))
		for p, nh := range r.forwarding {
			m[p] = nh
		}
		nextHop[RouterId(id)] = m
		for p := range r.localAnnouncements {
			if terminal[p] == nil {
				terminal[p] = map[RouterId]bool{}
			}
			terminal[p][RouterId(id)] = true
		}
		// An internal router with a direct eBGP session announcing p is
		// also a valid terminus for Reachable, per spec.md §4.2.
		if r.kind == Internal {
			for peer, kind := range r.sessions {
				if kind != EBGP {
					continue
				}
				for p := range n.routers[peer].localAnnouncements {
					if terminal[p] == nil {
						terminal[p] = map[RouterId]bool{}
					}
					terminal[p][RouterId(id)] = true
				}
			}
		}
	}
	return fwstate.NewState(len(n.routers), nextHop, terminal)
}

// Clone returns a deep, independent copy of the Network. Used only to
// snapshot the C₀ baseline and for fan-out worker threads, per spec.md §3's
// Ownership rule — never in the search's hot loop.
func (n *Network) Clone() *Network {
	c := &Network{
		links:   map[linkKey]LinkWeight{},
		config:  map[string]ConfigExpr{},
		igpDist: map[RouterId]map[RouterId]LinkWeight{},
		undoLog: map[CommandID][]undoOp{},
	}
	c.routers = make([]*routerRecord, len(n.routers))
	for i, r := range n.routers {
		c.routers[i] = r.clone()
	}
	for k, v := range n.links {
		c.links[k] = v
	}
	for k, v := range n.config {
		c.config[k] = v
	}
	for r, m := range n.igpDist {
		cm := make(map[RouterId]LinkWeight, len(m))
		for k, v := range m {
			cm[k] = v
		}
		c.igpDist[r] = cm
	}
	return c
}

func (n *Network) snapshotForwarding() map[RouterId]map[Prefix]RouterId {
	out := make(map[RouterId]map[Prefix]RouterId, len(n.routers))
	for id, r := range n.routers {
		m := make(map[Prefix]RouterId, len(r.forwarding))
		for p, nh := range r.forwarding {
			m[p] = nh
		}
		out[RouterId(id)] = m
	}
	return out
}

func (n *Network) diffForwarding(before map[RouterId]map[Prefix]RouterId) TraceDelta {
	var delta TraceDelta
	for id, r := range n.routers {
		rid := RouterId(id)
		old := before[rid]
		seen := map[Prefix]bool{}
		for p, newNH := range r.forwarding {
			seen[p] = true
			oldNH, hadOld := old[p]
			if hadOld && oldNH == newNH {
				continue
			}
			delta = append(delta, NextHopChange{
				Router: rid, Prefix: p,
				OldNextHop: oldNH, HadOldNextHop: hadOld,
				NewNextHop: newNH, HasNewNextHop: true,
			})
		}
		for p, oldNH := range old {
			if seen[p] {
				continue
			}
			delta = append(delta, NextHopChange{
				Router: rid, Prefix: p,
				OldNextHop: oldNH, HadOldNextHop: true,
				HasNewNextHop: false,
			})
		}
	}
	sort.Slice(delta, func(i, j int) bool {
		if delta[i].Router != delta[j].Router {
			return delta[i].Router < delta[j].Router
		}
		return delta[i].Prefix < delta[j].Prefix
	})
	return delta
}

// --- IGP (Dijkstra) ---

func (n *Network) recomputeIGP() {
	adj := make(map[RouterId]map[RouterId]LinkWeight, len(n.routers))
	for id := range n.routers {
		adj[RouterId(id)] = map[RouterId]LinkWeight{}
	}
	for key, w := range n.links {
		adj[key.A][key.B] = w
		adj[key.B][key.A] = w
	}
	n.igpDist = map[RouterId]map[RouterId]LinkWeight{}
	for id, r := range n.routers {
		if r.kind != Internal {
			continue
		}
		n.igpDist[RouterId(id)] = dijkstra(RouterId(id), adj, len(n.routers))
	}
}

func dijkstra(src RouterId, adj map[RouterId]map[RouterId]LinkWeight, n int) map[RouterId]LinkWeight {
	const inf = LinkWeight(1 << 30)
	dist := make(map[RouterId]LinkWeight, n)
	visited := make(map[RouterId]bool, n)
	for r := range adj {
		dist[r] = inf
	}
	dist[src] = 0
	for i := 0; i < n; i++ {
		u, best := RouterId(-1), inf+1
		for r, d := range dist {
			if !visited[r] && d < best {
				u, best = r, d
			}
		}
		if u == RouterId(-1) {
			break
		}
		visited[u] = true
		for v, w := range adj[u] {
			if nd := dist[u] + w; nd < dist[v] {
				dist[v] = nd
			}
		}
	}
	return dist
}

func (n *Network) igpCostFrom(router RouterId) func(RouterId) LinkWeight {
	dist := n.igpDist[router]
	return func(to RouterId) LinkWeight {
		if dist == nil {
			return LinkWeight(1 << 30)
		}
		if d, ok := dist[to]; ok {
			return d
		}
		return LinkWeight(1 << 30)
	}
}
