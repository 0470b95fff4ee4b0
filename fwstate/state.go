package fwstate

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/arc/v2"
)

// State is an immutable snapshot of the converged forwarding state: the
// total function (router, prefix) -> next-hop ∪ {⋄} from spec.md §3. It is
// produced once per Apply in netsim and never mutated afterwards, so it is
// safe to share across goroutines (e.g. the LTL monitor and the soft-cost
// function both read the same trace concurrently).
type State struct {
	numRouters int
	nextHop    map[RouterId]map[Prefix]RouterId
	// terminal marks routers that either originate p themselves, or are
	// internal routers with a direct eBGP session announcing p - the two
	// cases in which spec.md §4.2 considers a path "reachable" once it
	// arrives there.
	terminal map[Prefix]map[RouterId]bool

	cache *lru.ARCCache[pathKey, pathResult]
}

type pathKey struct {
	src RouterId
	p   Prefix
}

type pathResult struct {
	path   []RouterId
	looped bool
}

// NewState builds an immutable State from the per-router next-hop table and
// the set of routers that terminate each prefix (originators and eBGP
// announcers). numRouters bounds the loop-detection walk.
func NewState(numRouters int, nextHop map[RouterId]map[Prefix]RouterId,
	terminal map[Prefix]map[RouterId]bool) *State {

	c, _ := lru.NewARC[pathKey, pathResult](4096)
	return &State{
		numRouters: numRouters,
		nextHop:    nextHop,
		terminal:   terminal,
		cache:      c,
	}
}

// NumRouters is the number of routers this State was built over.
func (s *State) NumRouters() int { return s.numRouters }

// Prefixes lists every prefix this State has a forwarding or origination
// entry for. Used by soft-cost functions that need to iterate the whole
// (router, prefix) space; the LTL monitor never calls this, since its
// atomic predicates are always evaluated for one caller-specified prefix.
func (s *State) Prefixes() []Prefix {
	seen := map[Prefix]bool{}
	for _, byPrefix := range s.nextHop {
		for p := range byPrefix {
			seen[p] = true
		}
	}
	for p := range s.terminal {
		seen[p] = true
	}
	out := make([]Prefix, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	return out
}

// NextHop returns the forwarding entry for (r, p), and false if it is ⋄
// (no route selected).
func (s *State) NextHop(r RouterId, p Prefix) (RouterId, bool) {
	m, ok := s.nextHop[r]
	if !ok {
		return NoNextHop, false
	}
	nh, ok := m[p]
	if !ok || nh == NoNextHop {
		return NoNextHop, false
	}
	return nh, true
}

// Path walks next-hops starting at src for prefix p and returns the
// sequence of routers traversed, stopping at a terminal router (one that
// originates p or announces it over eBGP). It returns (nil, false) if no
// next-hop exists at some point before reaching a terminal router, or if the
// walk loops (a router is visited twice within numRouters+1 hops).
func (s *State) Path(src RouterId, p Prefix) ([]RouterId, bool) {
	if cached, ok := s.cache.Get(pathKey{src, p}); ok {
		if cached.looped {
			return nil, false
		}
		return cached.path, true
	}
	path, ok := s.computePath(src, p)
	if ok {
		s.cache.Add(pathKey{src, p}, pathResult{path: path})
	} else {
		s.cache.Add(pathKey{src, p}, pathResult{looped: true})
	}
	return path, ok
}

func (s *State) computePath(src RouterId, p Prefix) ([]RouterId, bool) {
	visited := make(map[RouterId]bool, s.numRouters+1)
	path := make([]RouterId, 0, s.numRouters+1)
	cur := src
	for i := 0; i <= s.numRouters; i++ {
		if visited[cur] {
			return nil, false // loop
		}
		visited[cur] = true
		path = append(path, cur)
		if s.isTerminal(p, cur) {
			return path, true
		}
		nh, ok := s.NextHop(cur, p)
		if !ok {
			return nil, false
		}
		cur = nh
	}
	return nil, false
}

func (s *State) isTerminal(p Prefix, r RouterId) bool {
	m, ok := s.terminal[p]
	return ok && m[r]
}

// LoopDetected reports whether Path(src, p) would cycle.
func (s *State) LoopDetected(src RouterId, p Prefix) bool {
	_, ok := s.Path(src, p)
	if ok {
		return false
	}
	// Distinguish "no route" from "loop": recompute without caching the
	// terminal-vs-dead-end distinction collapsed above.
	visited := make(map[RouterId]bool, s.numRouters+1)
	cur := src
	for i := 0; i <= s.numRouters; i++ {
		if visited[cur] {
			return true
		}
		visited[cur] = true
		if s.isTerminal(p, cur) {
			return false
		}
		nh, ok := s.NextHop(cur, p)
		if !ok {
			return false
		}
		cur = nh
	}
	return true
}

// Reachable reports whether a non-looping path from src for prefix p ends
// at a terminal router.
func (s *State) Reachable(src RouterId, p Prefix) bool {
	_, ok := s.Path(src, p)
	return ok
}

// PathString renders a path as a dotted router-index string, e.g. "0.1.3",
// used by hardpolicy's waypoint-regex evaluation.
func PathString(path []RouterId) string {
	parts := make([]string, len(path))
	for i, r := range path {
		parts[i] = fmt.Sprintf("%d", r)
	}
	return strings.Join(parts, ".")
}
