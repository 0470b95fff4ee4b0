package strategy

import "github.com/nsg-ethz/snowcap/netsim"

// staticDependencies precomputes a cheap warm start for the PG stack from
// ordering constraints that are statically inferrable from the commands
// themselves, before any search iteration runs at all — supplemented from
// the original implementation's dep_pairs_builder. It only knows one rule:
// a RouteMapClauseExpr command must not be ordered before the
// BGPSessionExpr command for the same (router, peer) pair it configures,
// since a route-map with no session behind it has no effect to speak of
// and several scenarios rely on "route-map first, then session" being the
// only valid order (spec.md §8 scenario 5).
func staticDependencies(commands []netsim.Command) []ProblemGroup {
	sessionCmd := map[netsim.RouterId]map[netsim.RouterId]netsim.CommandID{}
	for _, c := range commands {
		if c.Kind != netsim.Insert {
			continue
		}
		if sess, ok := c.Expr.(netsim.BGPSessionExpr); ok {
			if sessionCmd[sess.A] == nil {
				sessionCmd[sess.A] = map[netsim.RouterId]netsim.CommandID{}
			}
			if sessionCmd[sess.B] == nil {
				sessionCmd[sess.B] = map[netsim.RouterId]netsim.CommandID{}
			}
			sessionCmd[sess.A][sess.B] = c.ID()
			sessionCmd[sess.B][sess.A] = c.ID()
		}
	}

	var groups []ProblemGroup
	for _, c := range commands {
		if c.Kind != netsim.Insert {
			continue
		}
		rm, ok := c.Expr.(netsim.RouteMapClauseExpr)
		if !ok {
			continue
		}
		sessID, ok := sessionCmd[rm.Router][rm.Peer]
		if !ok {
			continue // route-map toward a peer with no new session in this delta
		}
		if rm.Clause.IsNoOp() {
			// A clause that matches every route and rewrites nothing behaves
			// identically whether it is installed before or after the
			// session: there is no unfiltered window to protect against, so
			// forbidding session-before-clause here would only prune
			// otherwise-valid, possibly lower-cost orderings for no safety
			// gain.
			continue
		}
		// Forbid any candidate that places the session before the
		// route-map clause meant to filter it: inserting the clause first
		// means refilterIngress/reannounceToPeer never runs unfiltered, so
		// the session comes up already governed by it; inserting the
		// session first leaves a transient window, until the clause is
		// later inserted, where routes flow unfiltered. ProblemGroup.forbids
		// flags a candidate when Deps appear (in Order) strictly before
		// Terminal, so setting Deps/Order to the session and Terminal to
		// the clause prunes exactly "session before clause".
		groups = append(groups, ProblemGroup{
			Deps:     []netsim.CommandID{sessID},
			Order:    []netsim.CommandID{sessID},
			Terminal: c.ID(),
		})
	}
	return groups
}
