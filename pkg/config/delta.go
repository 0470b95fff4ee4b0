package config

import (
	"fmt"
	"io"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// ErrInvalidDelta is returned by DeltaConfig.Validate.
var ErrInvalidDelta = serrors.New("invalid delta configuration")

// DeltaConfig is the TOML-level description of the Configuration Command
// set C0 -> C1 (spec.md §3): each entry names one atomic command, by kind
// and the single expression variant it carries. Exactly one of the *Expr
// fields must be set per command.
type DeltaConfig struct {
	Commands []DeltaCommandConfig `toml:"command"`
}

// DeltaCommandConfig is one Configuration Command. Kind is "insert" or
// "remove" ("update" is expressed in spec.md §3 but every scenario in
// spec.md §8 only ever inserts or removes whole expressions, so cmd/snowcap
// does not expose update in the TOML surface; the strategy/netsim packages
// still support Command{Kind: Update} for callers that build commands
// programmatically).
type DeltaCommandConfig struct {
	Kind string `toml:"kind"`

	IGPWeight      *IGPWeightExprConfig      `toml:"igp_weight,omitempty"`
	Session        *SessionConfig            `toml:"session,omitempty"`
	RouteMapClause *RouteMapClauseExprConfig `toml:"route_map_clause,omitempty"`
	Announcement   *AnnouncementConfig       `toml:"announcement,omitempty"`
}

// IGPWeightExprConfig is the IGP-link-weight command variant.
type IGPWeightExprConfig struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Weight uint32 `toml:"weight"`
}

// RouteMapClauseExprConfig is the route-map-clause command variant.
type RouteMapClauseExprConfig struct {
	Router string       `toml:"router"`
	Peer   string       `toml:"peer"`
	Dir    string       `toml:"dir"`
	Clause ClauseConfig `toml:"clause"`
}

func (c *DeltaConfig) InitDefaults() {}

func (c *DeltaConfig) Validate() error {
	for i, cmd := range c.Commands {
		if cmd.Kind != "insert" && cmd.Kind != "remove" {
			return serrors.Wrap("command has invalid kind", ErrInvalidDelta, "index", i, "kind", cmd.Kind)
		}
		set := 0
		for _, present := range []bool{cmd.IGPWeight != nil, cmd.Session != nil, cmd.RouteMapClause != nil, cmd.Announcement != nil} {
			if present {
				set++
			}
		}
		if set != 1 {
			return serrors.Wrap("command must carry exactly one expression variant", ErrInvalidDelta, "index", i, "variants_set", set)
		}
		if cmd.Session != nil {
			switch cmd.Session.Kind {
			case "ibgp-peer", "ibgp-client", "ebgp":
			default:
				return serrors.Wrap("session command has invalid kind", ErrInvalidDelta, "index", i, "kind", cmd.Session.Kind)
			}
		}
		if cmd.RouteMapClause != nil {
			if cmd.RouteMapClause.Dir != "in" && cmd.RouteMapClause.Dir != "out" {
				return serrors.Wrap("route_map_clause command has invalid dir", ErrInvalidDelta, "index", i, "dir", cmd.RouteMapClause.Dir)
			}
		}
	}
	return nil
}

func (c *DeltaConfig) Sample(w io.Writer) {
	fmt.Fprint(w, `# Configuration delta: the commands taking C0 to C1.
[[command]]
  kind = "insert"
  [command.session]
    a = "r1"
    b = "r3"
    kind = "ibgp-peer"
`)
}
