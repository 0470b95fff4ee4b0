package netsim

import "container/heap"

// message is one in-flight BGP update, queued per spec.md §4.1's
// message-passing convergence loop: an announcement or withdrawal of
// prefix from one router to a peer.
type message struct {
	router   RouterId // recipient
	seq      int      // global arrival sequence, for deterministic FIFO
	fromPeer RouterId
	prefix   Prefix
	route    Route
	withdraw bool
}

type messageHeap []message

func (h messageHeap) Len() int { return len(h) }
func (h messageHeap) Less(i, j int) bool {
	if h[i].router != h[j].router {
		return h[i].router < h[j].router
	}
	return h[i].seq < h[j].seq
}
func (h messageHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *messageHeap) Push(x interface{}) { *h = append(*h, x.(message)) }
func (h *messageHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (n *Network) enqueue(router RouterId, fromPeer RouterId, prefix Prefix, route Route, withdraw bool) {
	if n.queue == nil {
		n.queue = &messageHeap{}
		heap.Init(n.queue)
	}
	n.seq++
	heap.Push(n.queue, message{
		router: router, seq: n.seq, fromPeer: fromPeer,
		prefix: prefix, route: route, withdraw: withdraw,
	})
}

// converge drains the message queue to a fixed point, per spec.md §4.1's
// message-passing loop, and additionally re-runs best-path selection for
// every (router, prefix) pair at every router in touched — required after
// an IGP weight change, since the winning route can change even though no
// new BGP update was received (the IGP-cost tie-break shifted).
func (n *Network) converge(touched map[RouterId]bool) error {
	for r := range touched {
		for p := range n.allPrefixesAt(r) {
			n.runSelection(r, p)
		}
	}

	limit := maxConvergenceFactor * len(n.routers)
	steps := 0
	for n.queue != nil && n.queue.Len() > 0 {
		if steps >= limit {
			n.queue = nil
			return ErrNoConvergence
		}
		steps++
		msg := heap.Pop(n.queue).(message)
		n.processMessage(msg)
		if n.onMessageProcessed != nil {
			n.onMessageProcessed()
		}
	}
	n.queue = nil
	return nil
}

func (n *Network) allPrefixesAt(router RouterId) map[Prefix]bool {
	r := n.routers[router]
	out := map[Prefix]bool{}
	for p := range r.localAnnouncements {
		out[p] = true
	}
	for _, byPrefix := range r.ribIn {
		for p := range byPrefix {
			out[p] = true
		}
	}
	return out
}

func (n *Network) processMessage(msg message) {
	r := n.routers[msg.router]
	if msg.withdraw {
		if byPrefix, ok := r.ribInRaw[msg.fromPeer]; ok {
			delete(byPrefix, msg.prefix)
		}
		if byPrefix, ok := r.ribIn[msg.fromPeer]; ok {
			delete(byPrefix, msg.prefix)
		}
	} else {
		raw := msg.route
		raw.learnedFrom = msg.fromPeer
		raw.learnedKind = effectiveKind(r.sessions[msg.fromPeer])
		ensureRouteMap(r.ribInRaw, msg.fromPeer)[msg.prefix] = raw

		filtered, keep := r.inRouteMap[msg.fromPeer].Apply(raw)
		if !keep {
			if byPrefix, ok := r.ribIn[msg.fromPeer]; ok {
				delete(byPrefix, msg.prefix)
			}
		} else {
			filtered.learnedFrom = msg.fromPeer
			filtered.learnedKind = raw.learnedKind
			ensureRouteMap(r.ribIn, msg.fromPeer)[msg.prefix] = filtered
		}
	}
	n.runSelection(msg.router, msg.prefix)
}

func ensureRouteMap(m map[RouterId]map[Prefix]Route, peer RouterId) map[Prefix]Route {
	if m[peer] == nil {
		m[peer] = map[Prefix]Route{}
	}
	return m[peer]
}

// effectiveKind collapses the reciprocal route-reflector-client role into
// plain IBGPPeer for route-selection purposes: spec.md §3's tie-break only
// distinguishes eBGP from iBGP.
func effectiveKind(role SessionKind) SessionKind {
	if role == EBGP {
		return EBGP
	}
	return IBGPPeer
}

// runSelection recomputes the best route for (router, prefix) and, if it
// changed, updates the local RIB/forwarding entry and announces the change
// to peers.
func (n *Network) runSelection(router RouterId, prefix Prefix) {
	r := n.routers[router]
	old, hadOld := r.localRib[prefix]
	best, hasBest := n.computeBest(router, prefix)

	if hadOld == hasBest && (!hasBest || routesEqual(old, best)) {
		return
	}
	if hasBest {
		r.localRib[prefix] = best
		r.forwarding[prefix] = best.NextHop
	} else {
		delete(r.localRib, prefix)
		delete(r.forwarding, prefix)
	}
	n.announce(router, prefix)
}

func (n *Network) computeBest(router RouterId, prefix Prefix) (Route, bool) {
	r := n.routers[router]
	var best Route
	hasBest := false
	consider := func(route Route) {
		if !hasBest || betterRoute(route, best, n.igpCostFrom(router)) {
			best, hasBest = route, true
		}
	}
	if route, ok := r.localAnnouncements[prefix]; ok {
		route.learnedFrom = router
		route.learnedKind = EBGP
		consider(route)
	}
	for _, byPrefix := range r.ribIn {
		if route, ok := byPrefix[prefix]; ok {
			consider(route)
		}
	}
	return best, hasBest
}

func routesEqual(a, b Route) bool {
	if a.NextHop != b.NextHop || a.LocalPref != b.LocalPref || a.MED != b.MED {
		return false
	}
	if len(a.ASPath) != len(b.ASPath) {
		return false
	}
	for i := range a.ASPath {
		if a.ASPath[i] != b.ASPath[i] {
			return false
		}
	}
	return true
}

// announce broadcasts the router's current selection for prefix (or a
// withdrawal, if none) to every session, honoring split-horizon / route
// reflection rules.
func (n *Network) announce(router RouterId, prefix Prefix) {
	r := n.routers[router]
	best, hasBest := r.localRib[prefix]
	for peer := range r.sessions {
		n.announceOne(router, peer, prefix, best, hasBest)
	}
}

// reannounceToPeer re-sends the router's entire current selection to one
// peer, ignoring whether the selection "changed" — used when a session or
// an egress route-map is (re)installed, since from the peer's perspective
// this is new information even if the router's own best routes are
// unchanged.
func (n *Network) reannounceToPeer(router, peer RouterId) {
	r := n.routers[router]
	for prefix, best := range r.localRib {
		n.announceOne(router, peer, prefix, best, true)
	}
}

func (n *Network) announceOne(router, peer RouterId, prefix Prefix, best Route, hasBest bool) {
	r := n.routers[router]
	if !hasBest {
		n.enqueue(peer, router, prefix, Route{}, true)
		return
	}
	if best.learnedFrom == peer {
		return // never reflect a route back to where it came from
	}
	if !n.shouldAnnounceTo(router, peer, best) {
		return
	}
	out, keep := r.outRouteMap[peer].Apply(best)
	if !keep {
		n.enqueue(peer, router, prefix, Route{}, true)
		return
	}
	n.enqueue(peer, router, prefix, out, false)
}

// shouldAnnounceTo implements iBGP split-horizon and route-reflection:
// eBGP- or client-learned routes are reflected everywhere; plain
// iBGP-peer- or RR-learned routes are only re-announced over eBGP
// sessions, per spec.md §3's session-type vocabulary.
func (n *Network) shouldAnnounceTo(router, peer RouterId, best Route) bool {
	r := n.routers[router]
	if best.learnedFrom == router {
		return true // locally originated
	}
	srcRole, hasSrc := r.sessions[best.learnedFrom]
	myRole := r.sessions[peer]
	if !hasSrc {
		return true
	}
	switch srcRole {
	case EBGP, IBGPRouteReflectorClient:
		return true
	case IBGPPeer, ibgpClientRole:
		return myRole == EBGP
	default:
		return myRole == EBGP
	}
}

// exchangeInitialRoutes is called when a new BGP session is installed: each
// side re-sends its current selection to the other, since the peer cannot
// yet have learned anything.
func (n *Network) exchangeInitialRoutes(a, b RouterId, touched map[RouterId]bool) {
	n.reannounceToPeer(a, b)
	n.reannounceToPeer(b, a)
	touched[a] = true
	touched[b] = true
}

// teardownSession removes a session and every route learned over it; the
// resulting re-selection (performed by the caller's converge sweep) picks
// the next-best alternative, if any, and propagates further as usual.
func (n *Network) teardownSession(a, b RouterId, touched map[RouterId]bool) {
	delete(n.routers[a].sessions, b)
	delete(n.routers[b].sessions, a)
	delete(n.routers[a].ribInRaw, b)
	delete(n.routers[a].ribIn, b)
	delete(n.routers[b].ribInRaw, a)
	delete(n.routers[b].ribIn, a)
	touched[a] = true
	touched[b] = true
}

// refilterIngress re-derives ribIn[peer] from ribInRaw[peer] after an
// ingress route-map change, then re-runs selection for every affected
// prefix.
func (n *Network) refilterIngress(router, peer RouterId) {
	r := n.routers[router]
	raw := r.ribInRaw[peer]
	for prefix, route := range raw {
		filtered, keep := r.inRouteMap[peer].Apply(route)
		if !keep {
			if byPrefix, ok := r.ribIn[peer]; ok {
				delete(byPrefix, prefix)
			}
			continue
		}
		filtered.learnedFrom = peer
		filtered.learnedKind = route.learnedKind
		ensureRouteMap(r.ribIn, peer)[prefix] = filtered
	}
	for prefix := range raw {
		n.runSelection(router, prefix)
	}
}
