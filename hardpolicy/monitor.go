package hardpolicy

import "github.com/nsg-ethz/snowcap/fwstate"

// Status is the three-valued result of feeding one forwarding state to a
// Monitor, per spec.md §4.3.
type Status int

const (
	Undetermined Status = iota
	Satisfied
	Violated
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Violated:
		return "violated"
	default:
		return "undetermined"
	}
}

// Result is the outcome of one Monitor.Step call.
type Result struct {
	Status  Status
	Step    int       // the index of the state that produced this result
	Witness Predicate // set iff Status == Violated
}

// Monitor is an incremental LTL evaluator: it consumes one fwstate.State at
// a time and maintains, internally, the residual formula that must hold
// from the next step onward (spec.md §4.3's "after consuming FS0..FSi, the
// set of residual formulae"). A single Formula tree represents the whole
// branch set: disjunction/until branches are just OpOr/OpNext subtrees.
//
// A Monitor never panics; Step always returns a Result, never an error
// (spec.md §7: "the LTL monitor never fails").
type Monitor struct {
	residual *Formula
	done     bool
	result   Result
	lastFalse Predicate
}

// NewMonitor starts a fresh monitor for formula. The first Step call is
// expected to carry FS0, per spec.md §4.3's ⟨FS0, FS1, ..., FSn⟩ sequence.
func NewMonitor(formula *Formula) *Monitor {
	return &Monitor{residual: formula, result: Result{Step: -1}}
}

// Step feeds the next forwarding state in the trace. Once a Monitor has
// returned Satisfied or Violated it is terminal; further Step calls return
// the same Result without re-evaluating.
func (m *Monitor) Step(fs *fwstate.State) Result {
	if m.done {
		return m.result
	}
	m.lastFalse = nil
	rewritten := m.rewriteStep(m.residual, fs)
	return m.settle(rewritten, m.result.Step+1, false)
}

// Final must be called after the last state of a finite trace has been fed
// via Step, to apply the boundary semantics of spec.md §4.3: any surviving
// "F φ" / "φ U ψ" obligation is Violated; a surviving "G φ" is discharged.
// If the monitor already settled (Satisfied/Violated), Final is a no-op.
func (m *Monitor) Final() Result {
	if m.done {
		return m.result
	}
	m.lastFalse = nil
	finalized := m.boundary(m.residual)
	return m.settle(finalized, m.result.Step, true)
}

func (m *Monitor) settle(f *Formula, step int, isBoundary bool) Result {
	if isTrue(f) {
		m.done = true
		m.result = Result{Status: Satisfied, Step: step}
		return m.result
	}
	if isFalse(f) {
		m.done = true
		m.result = Result{Status: Violated, Step: step, Witness: m.lastFalse}
		return m.result
	}
	if isBoundary {
		// A non-constant residual at the trace boundary still contains an
		// unmet obligation (e.g. inside a Not, or an unresolved And/Or of
		// mixed obligations) — finite-trace semantics treats it as
		// Violated, per spec.md §4.3.
		m.done = true
		m.result = Result{Status: Violated, Step: step, Witness: m.lastFalse}
		return m.result
	}
	m.residual = f
	m.result = Result{Status: Undetermined, Step: step}
	return m.result
}

// rewriteStep performs one LTL-unrolling + boolean-simplification pass
// against fs, per spec.md §4.3 steps 2-3.
func (m *Monitor) rewriteStep(f *Formula, fs *fwstate.State) *Formula {
	switch f.Op {
	case OpAtom:
		if ok := f.Atom.Eval(fs); ok {
			return trueF
		}
		m.lastFalse = f.Atom
		return falseF

	case OpNot:
		inner := m.rewriteStep(f.Left, fs)
		if isTrue(inner) {
			return falseF
		}
		if isFalse(inner) {
			return trueF
		}
		return notF(inner)

	case OpAnd:
		a := m.rewriteStep(f.Left, fs)
		b := m.rewriteStep(f.Right, fs)
		if isFalse(a) || isFalse(b) {
			return falseF
		}
		if isTrue(a) {
			return b
		}
		if isTrue(b) {
			return a
		}
		return andF(a, b)

	case OpOr:
		a := m.rewriteStep(f.Left, fs)
		b := m.rewriteStep(f.Right, fs)
		if isTrue(a) || isTrue(b) {
			return trueF
		}
		if isFalse(a) {
			return b
		}
		if isFalse(b) {
			return a
		}
		return orF(a, b)

	case OpImplies:
		return m.rewriteStep(orF(notF(f.Left), f.Right), fs)

	case OpNext:
		// The wrapped formula applies starting at the next state, not this
		// one: strip the wrapper without evaluating f.Left now, so the
		// following Step call dispatches on f.Left's own Op directly
		// (rather than re-wrapping and deferring forever).
		return f.Left

	case OpUntil:
		// φ U ψ → ψ ∨ (φ ∧ X(φ U ψ))
		return m.rewriteStep(orF(f.Right, andF(f.Left, nextF(f))), fs)

	case OpGlobally:
		// G φ → φ ∧ X(G φ)
		return m.rewriteStep(andF(f.Left, nextF(f)), fs)

	case OpFinally:
		// F φ → φ ∨ X(F φ)
		return m.rewriteStep(orF(f.Left, nextF(f)), fs)

	default:
		return falseF
	}
}

// boundary resolves every deferred "X(...)" obligation left in f at the end
// of a finite trace: an until/finally obligation that never came due is
// Violated; a globally obligation that survived every step is discharged.
func (m *Monitor) boundary(f *Formula) *Formula {
	switch f.Op {
	case OpAtom:
		return f // already a constant by construction; a fresh atom here
		// would mean Final was called before any Step, which callers must
		// not do.
	case OpNot:
		inner := m.boundary(f.Left)
		if isTrue(inner) {
			return falseF
		}
		return trueF
	case OpAnd:
		a, b := m.boundary(f.Left), m.boundary(f.Right)
		if isFalse(a) || isFalse(b) {
			return falseF
		}
		return trueF
	case OpOr:
		a, b := m.boundary(f.Left), m.boundary(f.Right)
		if isTrue(a) || isTrue(b) {
			return trueF
		}
		return falseF
	case OpImplies:
		return m.boundary(orF(notF(f.Left), f.Right))
	case OpNext:
		if f.Left.Op == OpGlobally {
			return trueF
		}
		m.lastFalse = BoundaryWitness(f.Left)
		return falseF
	case OpGlobally:
		return trueF
	case OpUntil, OpFinally:
		m.lastFalse = BoundaryWitness(f)
		return falseF
	default:
		return falseF
	}
}
