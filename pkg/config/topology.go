package config

import (
	"fmt"
	"io"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// ErrInvalidTopology is returned by TopologyConfig.Validate.
var ErrInvalidTopology = serrors.New("invalid topology configuration")

// TopologyConfig is the TOML-level description of a starting network
// configuration C0 (spec.md §3), parsed by pkg/config and never by netsim
// itself: it names routers and peers by string, which netsim.Builder (dense
// integer RouterIds) knows nothing about.
type TopologyConfig struct {
	Routers       []RouterConfig       `toml:"router"`
	Links         []LinkConfig         `toml:"link"`
	Sessions      []SessionConfig      `toml:"session"`
	RouteMaps     []RouteMapConfig     `toml:"route_map"`
	Announcements []AnnouncementConfig `toml:"announcement"`
}

// RouterConfig names one router; Kind is "internal" or "external".
type RouterConfig struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	AS   uint32 `toml:"as"`
}

// LinkConfig is an IGP link between two named routers.
type LinkConfig struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Weight uint32 `toml:"weight"`
}

// SessionConfig is a BGP session between two named routers. Kind is one of
// "ibgp-peer", "ibgp-client" (A reflects to B), or "ebgp".
type SessionConfig struct {
	A    string `toml:"a"`
	B    string `toml:"b"`
	Kind string `toml:"kind"`
}

// ClauseConfig is one route-map clause; nil pointer fields mean "unset".
type ClauseConfig struct {
	SeqNum          int      `toml:"seq_num"`
	MatchCommunity  []uint32 `toml:"match_community,omitempty"`
	MatchMinASLen   int      `toml:"match_min_as_len,omitempty"`
	MatchNeighborAS *uint32  `toml:"match_neighbor_as,omitempty"`
	Permit          bool     `toml:"permit"`
	SetLocalPref    *uint32  `toml:"set_local_pref,omitempty"`
	SetMED          *uint32  `toml:"set_med,omitempty"`
	AddCommunity    []uint32 `toml:"add_community,omitempty"`
	RemoveCommunity []uint32 `toml:"remove_community,omitempty"`
	PrependASPath   []uint32 `toml:"prepend_as_path,omitempty"`
}

// RouteMapConfig is the ordered set of clauses applied at one session's
// ingress or egress. Dir is "in" or "out".
type RouteMapConfig struct {
	Router  string         `toml:"router"`
	Peer    string         `toml:"peer"`
	Dir     string         `toml:"dir"`
	Clauses []ClauseConfig `toml:"clause"`
}

// AnnouncementConfig has Router originate Prefix with the given AS-path.
type AnnouncementConfig struct {
	Router string   `toml:"router"`
	Prefix uint32   `toml:"prefix"`
	ASPath []uint32 `toml:"as_path"`
}

// InitDefaults is a no-op: every TopologyConfig field is either required
// or has a meaningful TOML zero value (e.g. seq_num 0 is a legal clause
// priority, not an "unset" marker).
func (c *TopologyConfig) InitDefaults() {}

func (c *TopologyConfig) Validate() error {
	seen := map[string]bool{}
	for _, r := range c.Routers {
		if r.Name == "" {
			return serrors.Wrap("router missing name", ErrInvalidTopology)
		}
		if seen[r.Name] {
			return serrors.Wrap("duplicate router name", ErrInvalidTopology, "name", r.Name)
		}
		seen[r.Name] = true
		if r.Kind != "internal" && r.Kind != "external" {
			return serrors.Wrap("router has invalid kind", ErrInvalidTopology, "name", r.Name, "kind", r.Kind)
		}
	}
	for _, l := range c.Links {
		if !seen[l.A] || !seen[l.B] {
			return serrors.Wrap("link references unknown router", ErrInvalidTopology, "a", l.A, "b", l.B)
		}
	}
	for _, s := range c.Sessions {
		if !seen[s.A] || !seen[s.B] {
			return serrors.Wrap("session references unknown router", ErrInvalidTopology, "a", s.A, "b", s.B)
		}
		switch s.Kind {
		case "ibgp-peer", "ibgp-client", "ebgp":
		default:
			return serrors.Wrap("session has invalid kind", ErrInvalidTopology, "kind", s.Kind)
		}
	}
	for _, rm := range c.RouteMaps {
		if !seen[rm.Router] || !seen[rm.Peer] {
			return serrors.Wrap("route_map references unknown router", ErrInvalidTopology, "router", rm.Router, "peer", rm.Peer)
		}
		if rm.Dir != "in" && rm.Dir != "out" {
			return serrors.Wrap("route_map has invalid dir", ErrInvalidTopology, "dir", rm.Dir)
		}
	}
	for _, a := range c.Announcements {
		if !seen[a.Router] {
			return serrors.Wrap("announcement references unknown router", ErrInvalidTopology, "router", a.Router)
		}
	}
	return nil
}

func (c *TopologyConfig) Sample(w io.Writer) {
	fmt.Fprint(w, `# Topology configuration: the starting network C0.
[[router]]
  name = "r1"
  kind = "internal"
  as = 1

[[router]]
  name = "r2"
  kind = "internal"
  as = 1

[[link]]
  a = "r1"
  b = "r2"
  weight = 10

[[session]]
  a = "r1"
  b = "r2"
  kind = "ibgp-peer"
`)
}
