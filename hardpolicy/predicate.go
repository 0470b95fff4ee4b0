package hardpolicy

import (
	"fmt"
	"regexp"

	"github.com/nsg-ethz/snowcap/fwstate"
)

// Predicate is an atomic LTL proposition, evaluated against one forwarding
// state. spec.md §3 names three: Reachable, PathCondition, NotLoop.
type Predicate interface {
	Eval(fs *fwstate.State) bool
	String() string
}

// Namer resolves the textual router identifiers used in a parsed formula
// (e.g. "R1") to the fwstate.RouterId the Network Model actually indexes
// by, and resolves a destination identifier to the prefix it originates
// (a "reach(src,dst)" atom means "src has a non-looping path to the prefix
// dst originates"). Callers of Parse supply one built from their Network's
// naming, since the Network Model itself has no notion of names — only
// dense indices (spec.md §9).
type Namer interface {
	RouterID(name string) (fwstate.RouterId, bool)
	PrefixOf(dstName string) (fwstate.Prefix, bool)
}

// Reachable holds iff there is a non-looping path from src to dst's
// originated prefix that terminates at dst, per spec.md §4.2's Reachable
// definition.
type Reachable struct {
	Src, Dst fwstate.RouterId
	Prefix   fwstate.Prefix
	srcName, dstName string
}

func (p Reachable) Eval(fs *fwstate.State) bool {
	if fs.LoopDetected(p.Src, p.Prefix) {
		return false
	}
	path, ok := fs.Path(p.Src, p.Prefix)
	if !ok || len(path) == 0 {
		return false
	}
	return path[len(path)-1] == p.Dst
}

func (p Reachable) String() string {
	return fmt.Sprintf("reach(%s,%s)", p.srcName, p.dstName)
}

// PathCondition holds iff the non-looping path from src to dst's prefix
// matches waypoint, a regex over the dotted router-index path string (e.g.
// "0.1.3"), per spec.md §4.3's "Regex waypoints" note.
type PathCondition struct {
	Src, Dst fwstate.RouterId
	Prefix   fwstate.Prefix
	Waypoint *regexp.Regexp
	srcName, dstName, waypointSrc string
}

func (p PathCondition) Eval(fs *fwstate.State) bool {
	if fs.LoopDetected(p.Src, p.Prefix) {
		return false
	}
	path, ok := fs.Path(p.Src, p.Prefix)
	if !ok || len(path) == 0 || path[len(path)-1] != p.Dst {
		return false
	}
	return p.Waypoint.MatchString(fwstate.PathString(path))
}

func (p PathCondition) String() string {
	return fmt.Sprintf("path(%s,%s,%s)", p.srcName, p.dstName, p.waypointSrc)
}

// NotLoop holds iff src's path for its prefix does not loop.
type NotLoop struct {
	Src    fwstate.RouterId
	Prefix fwstate.Prefix
	srcName, dstName string
}

func (p NotLoop) Eval(fs *fwstate.State) bool {
	return !fs.LoopDetected(p.Src, p.Prefix)
}

func (p NotLoop) String() string {
	return fmt.Sprintf("noloop(%s,%s)", p.srcName, p.dstName)
}

// constPredicate is the internal "always true"/"always false" atom produced
// by the monitor's boolean-constant simplification; it is never produced by
// Parse.
type constPredicate bool

func (c constPredicate) Eval(*fwstate.State) bool { return bool(c) }
func (c constPredicate) String() string {
	if c {
		return "true"
	}
	return "false"
}

// convergePredicate is the synthetic witness predicate "converge(σ[0..k])"
// used when a ConvergenceError interrupts the trace mid-search, per
// spec.md §4.6's failure semantics. It always evaluates false: it exists
// only to be reported as a witness, never consumed by Eval in normal
// monitor operation.
type convergePredicate struct{ step int }

func (c convergePredicate) Eval(*fwstate.State) bool { return false }
func (c convergePredicate) String() string            { return fmt.Sprintf("converge(σ[0..%d])", c.step) }

// ConvergeWitness constructs the synthetic witness predicate for a
// ConvergenceError encountered at the given step.
func ConvergeWitness(step int) Predicate { return convergePredicate{step: step} }

// boundaryPredicate is the witness reported when a temporal obligation
// (an unresolved "X φ", or a still-pending F/U) never comes due because
// the trace ended, per spec.md §4.3's finite-trace boundary semantics.
type boundaryPredicate struct{ formula string }

func (b boundaryPredicate) Eval(*fwstate.State) bool { return false }
func (b boundaryPredicate) String() string            { return fmt.Sprintf("boundary(%s)", b.formula) }

// BoundaryWitness constructs the witness predicate for an obligation left
// unmet at the end of a finite trace.
func BoundaryWitness(formula fmt.Stringer) Predicate {
	return boundaryPredicate{formula: formula.String()}
}
