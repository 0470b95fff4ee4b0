package config

import (
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// ErrUnknownRouter names a router referenced by a TopologyConfig or
// DeltaConfig section that was never declared in [[router]].
var ErrUnknownRouter = serrors.New("unknown router name")

// routerNames is the name<->id mapping a built network carries alongside
// it, needed to translate DeltaConfig (which also names routers by string)
// and to implement hardpolicy.Parse's Namer interface.
type routerNames struct {
	byName     map[string]netsim.RouterId
	originates map[string]netsim.Prefix
}

func (n *routerNames) id(name string) (netsim.RouterId, error) {
	id, ok := n.byName[name]
	if !ok {
		return 0, serrors.Wrap("router not declared in topology", ErrUnknownRouter, "name", name)
	}
	return id, nil
}

// RouterID implements hardpolicy.Namer.
func (n *routerNames) RouterID(name string) (netsim.RouterId, bool) {
	id, ok := n.byName[name]
	return id, ok
}

// PrefixOf implements hardpolicy.Namer: it resolves a destination name to
// the prefix that router originates, per the [[announcement]] section of
// its topology.
func (n *routerNames) PrefixOf(dstName string) (netsim.Prefix, bool) {
	p, ok := n.originates[dstName]
	return p, ok
}

// BuildNetwork materializes a *netsim.Network from a validated
// TopologyConfig, returning the router name->id mapping alongside it since
// DeltaConfig and the hard-policy Namer both need it too.
func BuildNetwork(cfg *TopologyConfig) (*netsim.Network, *routerNames, error) {
	net := netsim.New()
	names := &routerNames{byName: map[string]netsim.RouterId{}, originates: map[string]netsim.Prefix{}}

	for _, r := range cfg.Routers {
		kind := netsim.Internal
		if r.Kind == "external" {
			kind = netsim.External
		}
		names.byName[r.Name] = net.AddRouter(kind, netsim.AsId(r.AS))
	}
	for _, l := range cfg.Links {
		a, err := names.id(l.A)
		if err != nil {
			return nil, nil, err
		}
		b, err := names.id(l.B)
		if err != nil {
			return nil, nil, err
		}
		net.AddLink(a, b, netsim.LinkWeight(l.Weight))
	}
	for _, s := range cfg.Sessions {
		a, err := names.id(s.A)
		if err != nil {
			return nil, nil, err
		}
		b, err := names.id(s.B)
		if err != nil {
			return nil, nil, err
		}
		net.AddBGPSession(a, b, sessionKind(s.Kind))
	}
	for _, rm := range cfg.RouteMaps {
		router, err := names.id(rm.Router)
		if err != nil {
			return nil, nil, err
		}
		peer, err := names.id(rm.Peer)
		if err != nil {
			return nil, nil, err
		}
		clauses := make(netsim.RouteMap, len(rm.Clauses))
		for i, cl := range rm.Clauses {
			clauses[i] = buildClause(cl)
		}
		net.SetRouteMap(router, peer, direction(rm.Dir), clauses)
	}
	for _, a := range cfg.Announcements {
		router, err := names.id(a.Router)
		if err != nil {
			return nil, nil, err
		}
		path := make([]netsim.AsId, len(a.ASPath))
		for i, v := range a.ASPath {
			path[i] = netsim.AsId(v)
		}
		net.AdvertiseExternalRoute(router, netsim.Prefix(a.Prefix), path)
		names.originates[a.Router] = netsim.Prefix(a.Prefix)
	}
	return net, names, nil
}

// BuildCommands translates a validated DeltaConfig into the []netsim.Command
// the search operates over, resolving router names against the mapping
// BuildNetwork returned for the same topology.
func BuildCommands(cfg *DeltaConfig, names *routerNames) ([]netsim.Command, error) {
	out := make([]netsim.Command, 0, len(cfg.Commands))
	for i, dc := range cfg.Commands {
		expr, err := buildExpr(dc, names)
		if err != nil {
			return nil, serrors.Wrap("building command", err, "index", i)
		}
		kind := netsim.Insert
		if dc.Kind == "remove" {
			kind = netsim.Remove
		}
		out = append(out, netsim.Command{Kind: kind, Expr: expr})
	}
	return out, nil
}

func buildExpr(dc DeltaCommandConfig, names *routerNames) (netsim.ConfigExpr, error) {
	switch {
	case dc.IGPWeight != nil:
		a, err := names.id(dc.IGPWeight.A)
		if err != nil {
			return nil, err
		}
		b, err := names.id(dc.IGPWeight.B)
		if err != nil {
			return nil, err
		}
		return netsim.IGPLinkWeightExpr{A: a, B: b, Weight: netsim.LinkWeight(dc.IGPWeight.Weight)}, nil
	case dc.Session != nil:
		a, err := names.id(dc.Session.A)
		if err != nil {
			return nil, err
		}
		b, err := names.id(dc.Session.B)
		if err != nil {
			return nil, err
		}
		return netsim.BGPSessionExpr{A: a, B: b, Kind: sessionKind(dc.Session.Kind)}, nil
	case dc.RouteMapClause != nil:
		router, err := names.id(dc.RouteMapClause.Router)
		if err != nil {
			return nil, err
		}
		peer, err := names.id(dc.RouteMapClause.Peer)
		if err != nil {
			return nil, err
		}
		return netsim.RouteMapClauseExpr{
			Router: router, Peer: peer, Dir: direction(dc.RouteMapClause.Dir),
			Clause: buildClause(dc.RouteMapClause.Clause),
		}, nil
	case dc.Announcement != nil:
		router, err := names.id(dc.Announcement.Router)
		if err != nil {
			return nil, err
		}
		path := make([]netsim.AsId, len(dc.Announcement.ASPath))
		for i, v := range dc.Announcement.ASPath {
			path[i] = netsim.AsId(v)
		}
		return netsim.LocalAnnouncementExpr{Router: router, Prefix: netsim.Prefix(dc.Announcement.Prefix), ASPath: path}, nil
	default:
		return nil, serrors.New("command carries no expression variant")
	}
}

func buildClause(cl ClauseConfig) netsim.Clause {
	c := netsim.Clause{
		SeqNum:          cl.SeqNum,
		MatchCommunity:  cl.MatchCommunity,
		MatchMinASLen:   cl.MatchMinASLen,
		Permit:          cl.Permit,
		SetLocalPref:    cl.SetLocalPref,
		SetMED:          cl.SetMED,
		AddCommunity:    cl.AddCommunity,
		RemoveCommunity: cl.RemoveCommunity,
	}
	if cl.MatchNeighborAS != nil {
		c = c.WithNeighborAS(netsim.AsId(*cl.MatchNeighborAS))
	}
	for _, v := range cl.PrependASPath {
		c.PrependASPath = append(c.PrependASPath, netsim.AsId(v))
	}
	return c
}

func sessionKind(s string) netsim.SessionKind {
	switch s {
	case "ibgp-client":
		return netsim.IBGPRouteReflectorClient
	case "ebgp":
		return netsim.EBGP
	default:
		return netsim.IBGPPeer
	}
}

func direction(s string) netsim.Direction {
	if s == "out" {
		return netsim.Out
	}
	return netsim.In
}
