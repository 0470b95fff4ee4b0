// Package netsim implements the deterministic event-driven BGP/IGP
// convergence engine: the Network Model of spec.md §4.1. It exposes
// Apply/Undo/ForwardingState/Clone over a set of routers, links, BGP
// sessions and route-maps laid out as flat, index-keyed tables rather than
// a pointer graph, per spec.md §9's "cyclic references" design note.
package netsim

import "github.com/nsg-ethz/snowcap/fwstate"

// RouterId, Prefix, AsId and LinkWeight are re-exported from fwstate so
// that callers of netsim never need to import fwstate directly just to
// build a topology.
type (
	RouterId   = fwstate.RouterId
	Prefix     = fwstate.Prefix
	AsId       = fwstate.AsId
	LinkWeight = fwstate.LinkWeight
)

// RouterKind distinguishes internal routers (run IGP + iBGP + route
// selection) from external routers (announce prefixes via eBGP only).
type RouterKind int

const (
	Internal RouterKind = iota
	External
)

func (k RouterKind) String() string {
	if k == External {
		return "external"
	}
	return "internal"
}

// SessionKind is the BGP session type of spec.md §3.
type SessionKind int

const (
	// IBGPPeer is a full-mesh iBGP session between two internal routers.
	IBGPPeer SessionKind = iota
	// IBGPRouteReflectorClient is an iBGP session where the first router
	// (A, by convention the route reflector) reflects routes to the
	// second (B, the client).
	IBGPRouteReflectorClient
	// EBGP is a session across an AS boundary.
	EBGP
)

func (k SessionKind) String() string {
	switch k {
	case IBGPRouteReflectorClient:
		return "ibgp-client"
	case EBGP:
		return "ebgp"
	default:
		return "ibgp-peer"
	}
}

// Direction is the route-map application point: ingress (routes learned
// from a peer) or egress (routes announced to a peer).
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}
