package netsim

// Clause is one match/action entry of an ordered route-map, applied at a
// session's ingress or egress per spec.md §3. Clauses are evaluated in
// ascending SeqNum order; the first matching clause decides the route's
// fate.
type Clause struct {
	SeqNum int

	// Match fields: zero-value (nil/empty) means "don't care".
	MatchCommunity  []uint32
	MatchMinASLen   int
	MatchNeighborAS AsId
	hasNeighborAS   bool

	// Permit decides whether a matching route is kept (true) or dropped
	// (false, the route-map equivalent of an ACL "deny").
	Permit bool

	// Actions, applied only when Permit is true.
	SetLocalPref   *uint32
	SetMED         *uint32
	AddCommunity   []uint32
	RemoveCommunity []uint32
	PrependASPath  []AsId
}

// WithNeighborAS returns a copy of c that additionally matches on the
// nearest AS in the path (constructor helper, since hasNeighborAS is
// unexported).
func (c Clause) WithNeighborAS(as AsId) Clause {
	c.MatchNeighborAS = as
	c.hasNeighborAS = true
	return c
}

// IsNoOp reports whether c matches every route (no match criteria at all)
// and, being a permit, rewrites nothing either: installing or removing such
// a clause can never change which routes flow or how, so ordering it
// relative to the session it guards has no observable effect. strategy's
// static warm-start pass uses this to avoid pruning session-before-clause
// orderings for clauses that could never have filtered anything regardless
// of when they were installed.
func (c Clause) IsNoOp() bool {
	if !c.Permit {
		return false
	}
	if c.hasNeighborAS || c.MatchMinASLen > 0 || len(c.MatchCommunity) > 0 {
		return false
	}
	return c.SetLocalPref == nil && c.SetMED == nil &&
		len(c.AddCommunity) == 0 && len(c.RemoveCommunity) == 0 && len(c.PrependASPath) == 0
}

func (c Clause) matches(r Route) bool {
	if c.hasNeighborAS {
		if len(r.ASPath) == 0 || r.ASPath[0] != c.MatchNeighborAS {
			return false
		}
	}
	if c.MatchMinASLen > 0 && len(r.ASPath) < c.MatchMinASLen {
		return false
	}
	for _, want := range c.MatchCommunity {
		if !r.hasCommunity(want) {
			return false
		}
	}
	return true
}

func (c Clause) apply(r Route) Route {
	out := r.Clone()
	if c.SetLocalPref != nil {
		out.LocalPref = *c.SetLocalPref
	}
	if c.SetMED != nil {
		out.MED = *c.SetMED
	}
	for _, community := range c.AddCommunity {
		out.Communities[community] = struct{}{}
	}
	for _, community := range c.RemoveCommunity {
		delete(out.Communities, community)
	}
	if len(c.PrependASPath) > 0 {
		out.ASPath = append(append([]AsId(nil), c.PrependASPath...), out.ASPath...)
	}
	return out
}

// RouteMap is an ordered list of Clauses applied at one session's ingress or
// egress.
type RouteMap []Clause

// Apply runs r through the route-map in SeqNum order. It returns the
// (possibly rewritten) route and whether it should be kept. An empty
// route-map keeps every route unmodified (the default, implicit "permit
// any" of spec.md's route-map model).
func (m RouteMap) Apply(r Route) (Route, bool) {
	ordered := m.sorted()
	for _, clause := range ordered {
		if !clause.matches(r) {
			continue
		}
		if !clause.Permit {
			return Route{}, false
		}
		return clause.apply(r), true
	}
	return r, true
}

func (m RouteMap) sorted() []Clause {
	out := append([]Clause(nil), m...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].SeqNum < out[j-1].SeqNum; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
