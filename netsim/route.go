package netsim

// Route is the BGP Route tuple from spec.md §3: (prefix, as-path, next-hop,
// local-pref, MED, community set, origin-router).
type Route struct {
	Prefix    Prefix
	ASPath    []AsId
	NextHop   RouterId
	LocalPref uint32
	MED       uint32
	Communities map[uint32]struct{}
	// Origin is the router that first announced this route into the AS
	// (an External router, or an Internal router with a local
	// announcement).
	Origin RouterId
	// learnedFrom is the session endpoint this route was learned over;
	// used only to determine eBGP-vs-iBGP in tie-breaks, not persisted
	// across route-map rewrites.
	learnedFrom RouterId
	learnedKind SessionKind
}

// Clone returns a deep copy, since Communities is a mutable map.
func (r Route) Clone() Route {
	c := r
	c.ASPath = append([]AsId(nil), r.ASPath...)
	c.Communities = make(map[uint32]struct{}, len(r.Communities))
	for k := range r.Communities {
		c.Communities[k] = struct{}{}
	}
	return c
}

func (r Route) hasCommunity(c uint32) bool {
	_, ok := r.Communities[c]
	return ok
}

// betterRoute implements the route selection order of spec.md §3:
//
//	highest local-pref -> shortest AS-path -> lowest MED (same neighbor AS)
//	-> eBGP > iBGP -> lowest IGP cost to next-hop -> deterministic
//	tie-break on router id.
//
// igpCost(nh) resolves the IGP distance from the selecting router to
// candidate next-hop nh; it is supplied by the caller (Network), since the
// cost is relative to whichever router is running selection.
func betterRoute(a, b Route, igpCost func(RouterId) LinkWeight) bool {
	if a.LocalPref != b.LocalPref {
		return a.LocalPref > b.LocalPref
	}
	if len(a.ASPath) != len(b.ASPath) {
		return len(a.ASPath) < len(b.ASPath)
	}
	sameNeighborAS := len(a.ASPath) > 0 && len(b.ASPath) > 0 && a.ASPath[0] == b.ASPath[0]
	if sameNeighborAS && a.MED != b.MED {
		return a.MED < b.MED
	}
	aEBGP := a.learnedKind == EBGP
	bEBGP := b.learnedKind == EBGP
	if aEBGP != bEBGP {
		return aEBGP
	}
	ca, cb := igpCost(a.NextHop), igpCost(b.NextHop)
	if ca != cb {
		return ca < cb
	}
	return a.NextHop < b.NextHop
}
