package netsim

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// Configuration errors, surfaced to the search per spec.md §4.1/§7.
var (
	ErrDuplicateKey  = serrors.New("duplicate configuration key")
	ErrUnknownKey    = serrors.New("unknown configuration key")
	ErrNoConvergence = serrors.New("no convergence")
)

// ConfigExpr is a configuration expression: an IGP link weight, a static
// route, a BGP session's existence, a route-map clause, or a local
// announcement (spec.md §3). Its Key is its identity; a Configuration is
// well-formed iff keys are unique.
type ConfigExpr interface {
	Key() string
	kindTag() string
}

// IGPLinkWeightExpr sets the IGP weight of link (A,B).
type IGPLinkWeightExpr struct {
	A, B   RouterId
	Weight LinkWeight
}

func (e IGPLinkWeightExpr) Key() string {
	a, b := orderedPair(e.A, e.B)
	return fmt.Sprintf("igp-weight(%d,%d)", a, b)
}
func (e IGPLinkWeightExpr) kindTag() string { return "igp-weight" }

// BGPSessionExpr declares the existence of a BGP session between A and B.
type BGPSessionExpr struct {
	A, B RouterId
	Kind SessionKind
}

func (e BGPSessionExpr) Key() string {
	return fmt.Sprintf("bgp-session(%d,%d)", e.A, e.B)
}
func (e BGPSessionExpr) kindTag() string { return "bgp-session" }

// RouteMapClauseExpr installs one clause of the route-map a router applies
// to a given peer, in a given direction.
type RouteMapClauseExpr struct {
	Router RouterId
	Peer   RouterId
	Dir    Direction
	Clause Clause
}

func (e RouteMapClauseExpr) Key() string {
	return fmt.Sprintf("route-map(%d,%d,%s,%d)", e.Router, e.Peer, e.Dir, e.Clause.SeqNum)
}
func (e RouteMapClauseExpr) kindTag() string { return "route-map" }

// LocalAnnouncementExpr has router r originate prefix p with the given
// AS-path (used for eBGP-facing external routers, and for internal routers
// announcing a locally-attached prefix).
type LocalAnnouncementExpr struct {
	Router RouterId
	Prefix Prefix
	ASPath []AsId
}

func (e LocalAnnouncementExpr) Key() string {
	return fmt.Sprintf("announce(%d,%d)", e.Router, e.Prefix)
}
func (e LocalAnnouncementExpr) kindTag() string { return "announce" }

func orderedPair(a, b RouterId) (RouterId, RouterId) {
	if a <= b {
		return a, b
	}
	return b, a
}

// CommandKind is the variant tag of a Configuration Command (spec.md §3).
type CommandKind int

const (
	Insert CommandKind = iota
	Remove
	Update
)

func (k CommandKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	default:
		return "update"
	}
}

// CommandID is the stable key format from spec.md §6: (kind,
// expression-hash). It is preserved across runs so that persisted orderings
// remain meaningful even if the in-process command slice is rebuilt.
type CommandID string

// Command is one atomic configuration mutation: Insert(expr), Remove(expr),
// or Update(key, old_val, new_val).
type Command struct {
	Kind   CommandKind
	Expr   ConfigExpr // for Insert/Remove, and the new value for Update
	OldVal ConfigExpr // only set for Update
}

// ID computes the command's stable identity: (kind, sha256(expression)).
func (c Command) ID() CommandID {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%#v", c.Expr.Key(), c.Expr)))
	return CommandID(fmt.Sprintf("%s:%s", c.Kind, hex.EncodeToString(h[:8])))
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Expr.Key())
}
