// Package hardpolicy compiles a textual LTL formula over path predicates
// (spec.md §6) into an incremental monitor that consumes a sequence of
// forwarding states and reports whether the hard policy holds.
package hardpolicy

import "fmt"

// Op is the tag of a Formula node: a tagged-union tree, per spec.md §9 — no
// classes, no dispatch, just a switch on Op.
type Op int

const (
	OpAtom Op = iota
	OpNot
	OpAnd
	OpOr
	OpImplies
	OpNext
	OpUntil
	OpGlobally
	OpFinally
)

// Formula is one LTL formula node. Atom is set iff Op == OpAtom; Left/Right
// hold operands for unary/binary operators (Right is nil for unary Op).
type Formula struct {
	Op    Op
	Atom  Predicate
	Left  *Formula
	Right *Formula
}

func (f *Formula) String() string {
	if f == nil {
		return "<nil>"
	}
	switch f.Op {
	case OpAtom:
		return f.Atom.String()
	case OpNot:
		return fmt.Sprintf("!%s", f.Left)
	case OpAnd:
		return fmt.Sprintf("(%s && %s)", f.Left, f.Right)
	case OpOr:
		return fmt.Sprintf("(%s || %s)", f.Left, f.Right)
	case OpImplies:
		return fmt.Sprintf("(%s -> %s)", f.Left, f.Right)
	case OpNext:
		return fmt.Sprintf("X %s", f.Left)
	case OpUntil:
		return fmt.Sprintf("(%s U %s)", f.Left, f.Right)
	case OpGlobally:
		return fmt.Sprintf("G %s", f.Left)
	case OpFinally:
		return fmt.Sprintf("F %s", f.Left)
	default:
		return "?"
	}
}

// atomF, notF, ... are tiny constructors kept private to this package; the
// parser and the monitor's rewrite rules are the only callers.
func atomF(p Predicate) *Formula          { return &Formula{Op: OpAtom, Atom: p} }
func notF(f *Formula) *Formula            { return &Formula{Op: OpNot, Left: f} }
func andF(a, b *Formula) *Formula         { return &Formula{Op: OpAnd, Left: a, Right: b} }
func orF(a, b *Formula) *Formula          { return &Formula{Op: OpOr, Left: a, Right: b} }
func impliesF(a, b *Formula) *Formula     { return &Formula{Op: OpImplies, Left: a, Right: b} }
func nextF(f *Formula) *Formula           { return &Formula{Op: OpNext, Left: f} }
func untilF(a, b *Formula) *Formula       { return &Formula{Op: OpUntil, Left: a, Right: b} }
func globallyF(f *Formula) *Formula       { return &Formula{Op: OpGlobally, Left: f} }
func finallyF(f *Formula) *Formula        { return &Formula{Op: OpFinally, Left: f} }

// boolean constants, used as the collapsed form of a fully-decided branch
// (spec.md §4.3 step 3: "simplifies with boolean constants").
var (
	trueF  = &Formula{Op: OpAtom, Atom: constPredicate(true)}
	falseF = &Formula{Op: OpAtom, Atom: constPredicate(false)}
)

func isTrue(f *Formula) bool  { c, ok := f.Atom.(constPredicate); return f.Op == OpAtom && ok && bool(c) }
func isFalse(f *Formula) bool { c, ok := f.Atom.(constPredicate); return f.Op == OpAtom && ok && !bool(c) }
