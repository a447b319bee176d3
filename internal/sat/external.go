package sat

import "log"

// External is the bidirectional map between external variable indices
// (stable, user visible) and internal indices (compactable, contiguous).
// It also owns the external mirror of the unit registry, the witness
// marks, the external assumptions and the optional constraint.
type External struct {
	engine *Engine

	maxVar int
	e2i    []Lit // external variable index -> internal literal, 0 if inactive

	// extUnits mirrors the engine's unit registry under external
	// literals so compaction cannot destroy the mapping.
	extUnits UnitRegistry

	// witness marks literals recorded on the elimination reconstruction
	// stack. A marked literal must not re-enter the solver through
	// clause import. One byte per external variable, one bit per
	// polarity.
	witness []uint8

	assumptions []int
	constraint  []int
	failed      map[int]bool

	learnSource LearnSource
	learner     Learner
}

func newExternal(e *Engine) *External {
	return &External{
		engine: e,
		e2i:    make([]Lit, 1),
		failed: map[int]bool{},
	}
}

// ConnectLearnSource attaches the incoming clause source.
func (x *External) ConnectLearnSource(src LearnSource) { x.learnSource = src }

// ConnectLearner attaches the outgoing clause consumer.
func (x *External) ConnectLearner(l Learner) { x.learner = l }

// Learner returns the attached learner, or nil.
func (x *External) Learner() Learner { return x.learner }

// MaxVar returns the largest external variable index seen so far.
func (x *External) MaxVar() int { return x.maxVar }

// grow makes room for external variables up to eidx.
func (x *External) grow(eidx int) {
	for len(x.e2i) <= eidx {
		x.e2i = append(x.e2i, 0)
		x.witness = append(x.witness, 0)
	}
	if eidx > x.maxVar {
		x.maxVar = eidx
	}
	if len(x.witness) < len(x.e2i) {
		x.witness = append(x.witness, make([]uint8, len(x.e2i)-len(x.witness))...)
	}
}

// Internalize maps an external literal to an internal one, allocating a
// fresh active internal variable on first sight.
func (x *External) Internalize(elit int) Lit {
	if elit == 0 {
		log.Fatal("cannot internalize the zero literal")
	}
	eidx := elit
	if eidx < 0 {
		eidx = -eidx
	}
	x.grow(eidx)
	ilit := x.e2i[eidx]
	if ilit == 0 {
		v := x.engine.newVar(eidx)
		ilit = Lit(v)
		x.e2i[eidx] = ilit
	}
	if elit < 0 {
		return -ilit
	}
	return ilit
}

// Lookup returns the internal image of an external literal without
// allocating, or zero.
func (x *External) Lookup(elit int) Lit {
	eidx := elit
	if eidx < 0 {
		eidx = -eidx
	}
	if eidx >= len(x.e2i) {
		return 0
	}
	ilit := x.e2i[eidx]
	if elit < 0 {
		return -ilit
	}
	return ilit
}

// MarkWitness marks an external literal as a reconstruction witness.
func (x *External) MarkWitness(elit int) {
	eidx, bit := elit, uint8(1)
	if eidx < 0 {
		eidx, bit = -eidx, 2
	}
	x.grow(eidx)
	x.witness[eidx] |= bit
}

// MarkedWitness reports whether the external literal carries a witness
// mark.
func (x *External) MarkedWitness(elit int) bool {
	eidx, bit := elit, uint8(1)
	if eidx < 0 {
		eidx, bit = -eidx, 2
	}
	if eidx >= len(x.witness) {
		return false
	}
	return x.witness[eidx]&bit != 0
}

// Assume registers an external assumption for the next solve call.
func (x *External) Assume(elit int) {
	x.assumptions = append(x.assumptions, elit)
}

// Assumptions returns the registered external assumptions.
func (x *External) Assumptions() []int { return x.assumptions }

// ResetAssumptions drops all assumptions and failure marks.
func (x *External) ResetAssumptions() {
	x.assumptions = x.assumptions[:0]
	x.failed = map[int]bool{}
}

// Constrain appends a literal to the constraint clause; zero terminates.
func (x *External) Constrain(elit int) {
	if elit == 0 {
		return
	}
	x.constraint = append(x.constraint, elit)
}

// Constraint returns the external constraint literals.
func (x *External) Constraint() []int { return x.constraint }

// ResetConstraint drops the constraint.
func (x *External) ResetConstraint() { x.constraint = x.constraint[:0] }

// Failed reports whether the given assumption literal was responsible for
// unsatisfiability in the last solve call.
func (x *External) Failed(elit int) bool { return x.failed[elit] }

// Val returns the external literal's value in the current assignment.
func (x *External) Val(elit int) int8 {
	ilit := x.Lookup(elit)
	if ilit == 0 {
		return 0
	}
	return x.engine.val(ilit)
}

// Fixed returns the root-level value of the external literal, or zero.
func (x *External) Fixed(elit int) int8 {
	ilit := x.Lookup(elit)
	if ilit == 0 {
		return 0
	}
	return x.engine.fixedVal(ilit)
}

/*--------------------------------------------------------------------------*/
// Freezing. Frozen variables survive inprocessing untouched; the counters
// are summed into the surrogate during compaction.

func (x *External) Freeze(elit int) {
	ilit := x.Internalize(elit)
	x.engine.frozentab[ilit.Var()]++
}

func (x *External) Melt(elit int) {
	ilit := x.Lookup(elit)
	if ilit == 0 {
		return
	}
	v := ilit.Var()
	if x.engine.frozentab[v] == 0 {
		log.Fatalf("melting completely molten variable %d", elit)
	}
	x.engine.frozentab[v]--
}

func (x *External) Frozen(elit int) bool {
	ilit := x.Lookup(elit)
	if ilit == 0 {
		return false
	}
	return x.engine.frozentab[ilit.Var()] > 0
}

/*--------------------------------------------------------------------------*/
// Export side.

// ExportLearnedUnitClause pushes a locally derived unit outward.
func (x *External) ExportLearnedUnitClause(id uint64, ilit Lit) {
	if x.learner == nil {
		return
	}
	if !x.learner.Learning(1) {
		return
	}
	x.learner.ExportLearnedUnitClause(id, x.engine.externalize(ilit))
}

// ExportLearnedLargeClause pushes a locally derived clause outward.
func (x *External) ExportLearnedLargeClause(id uint64, elits []int, glue int) {
	if x.learner == nil {
		return
	}
	if !x.learner.Learning(len(elits)) {
		return
	}
	x.learner.ExportLearnedLargeClause(id, elits, glue)
}
