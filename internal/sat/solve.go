package sat

import (
	"log"
	"time"
)

// AddClause adds an original clause given as external literals. Tautologies
// and duplicate literals are removed; value-based simplification is left
// to the root-level garbage collector so the proof sees the clause exactly
// as given.
func (e *Engine) AddClause(elits []int) {
	if e.level() != 0 {
		log.Fatalf("can only add clauses at the root level")
	}

	id := e.store.nextOriginalID()
	if e.proof != nil {
		e.proof.AddOriginalClause(id, elits)
	}

	e.clause = e.clause[:0]
	tautological := false
	for _, elit := range elits {
		ilit := e.external.Internalize(elit)
		switch e.marks[ilit.Var()] {
		case 0:
			if ilit < 0 {
				e.marks[ilit.Var()] = -1
			} else {
				e.marks[ilit.Var()] = 1
			}
			e.clause = append(e.clause, ilit)
		case 1:
			if ilit < 0 {
				tautological = true
			}
		case -1:
			if ilit > 0 {
				tautological = true
			}
		}
		if tautological {
			break
		}
	}
	for _, l := range e.clause {
		e.marks[l.Var()] = 0
	}
	if tautological {
		if e.proof != nil {
			e.proof.DeleteClause(id, elits)
		}
		e.clause = e.clause[:0]
		return
	}

	switch len(e.clause) {
	case 0:
		e.unsat = true
		if e.proof != nil {
			e.proof.AddDerivedClause(e.store.NextLratID(), false, false, 1, nil, []uint64{id})
		}
	case 1:
		l := e.clause[0]
		switch e.val(l) {
		case 1:
			// Already fixed by an earlier unit.
		case -1:
			e.unsat = true
			if e.proof != nil {
				chain := []uint64{e.units.Lookup(-l), id}
				e.proof.AddDerivedClause(e.store.NextLratID(), false, false, 1, nil, chain)
			}
		default:
			e.assignOriginalUnit(id, l)
		}
	default:
		c := e.store.newClause(id, e.clause, false, 0)
		e.addOccs(c)
		e.watchClause(c)
	}
	e.clause = e.clause[:0]
}

// Simplify propagates at the root and collects garbage.
func (e *Engine) Simplify() bool {
	if l := e.level(); l != 0 {
		log.Fatalf("Simplify called on non root-level: %d", l)
	}
	if e.unsat {
		return false
	}
	if conflict := e.propagate(); conflict != nil {
		e.rootConflict(conflict)
		return false
	}
	e.garbageCollect()
	return !e.unsat
}

// rootConflict turns a conflict at decision level zero into the empty
// clause, deriving it in the proof from the conflicting clause and the
// units falsifying its literals.
func (e *Engine) rootConflict(conflict *Clause) {
	e.unsat = true
	if e.proof == nil {
		return
	}
	var chain []uint64
	if e.opts.LRAT {
		for _, l := range conflict.lits {
			if uid := e.units.Lookup(-l); uid != 0 {
				chain = append(chain, uid)
			}
		}
		chain = append(chain, conflict.id)
	}
	e.proof.AddDerivedClause(e.store.NextLratID(), false, false, 1, nil, chain)
}

// satisfied reports whether all active variables are assigned and
// propagation is at fixpoint.
func (e *Engine) satisfied() bool {
	if e.propagated != len(e.trail) {
		return false
	}
	return e.numAssigned == e.active()+e.stats.Now.Fixed
}

func (e *Engine) shouldStop() bool {
	if e.terminationForced {
		return true
	}
	if e.opts.MaxConflicts >= 0 && e.stats.Conflicts >= e.opts.MaxConflicts {
		return true
	}
	if e.opts.Timeout >= 0 && time.Since(e.startTime) >= e.opts.Timeout {
		return true
	}
	return false
}

// Solve runs the search loop until a result is known or a stop condition
// fires. It returns True, False or Unknown.
func (e *Engine) Solve() LBool {
	e.startTime = time.Now()
	if e.unsat {
		return False
	}

	assumptions := e.external.assumptions
	nConflicts := int64(100)
	status := Unknown

	for status == Unknown && !e.shouldStop() {
		status = e.search(nConflicts, assumptions)
		nConflicts += nConflicts / 10
	}

	if status == True {
		e.external.failed = map[int]bool{}
	}
	e.backtrack(0)
	return status
}

// search runs up to nConflicts conflicts before yielding for a restart.
func (e *Engine) search(nConflicts int64, assumptions []int) LBool {
	e.stats.Restarts++
	conflicts := int64(0)

	for !e.shouldStop() {
		if conflict := e.propagate(); conflict != nil {
			conflicts++
			e.stats.Conflicts++
			e.averages.trailFast.Add(float64(len(e.trail)))
			e.averages.trailSlow.Add(float64(len(e.trail)))

			if e.level() == 0 {
				e.rootConflict(conflict)
				return False
			}
			e.analyze(conflict)
			e.decayActivities()
			continue
		}

		if e.level() == 0 {
			// Root level housekeeping: drain shared clauses, collect
			// garbage and compact the variable domain when worthwhile.
			if e.importing() {
				if res := e.ImportRedundantClauses(); res != Unknown {
					return res
				}
			}
			e.garbageCollect()
			if e.unsat {
				return False
			}
			if e.compacting() {
				e.Compact()
			}
		}

		if int64(len(e.redundantClauses()))-int64(e.numAssigned) >= e.lim.reduce {
			e.reduce()
		}

		if conflicts >= nConflicts {
			e.backtrack(0)
			return Unknown
		}

		// Re-assert pending assumptions before regular decisions.
		if lvl := e.level(); lvl < len(assumptions) {
			elit := assumptions[lvl]
			ilit := e.external.Internalize(elit)
			switch e.val(ilit) {
			case 1:
				e.trailLim = append(e.trailLim, len(e.trail))
			case -1:
				e.external.failed[elit] = true
				return False
			default:
				e.trailLim = append(e.trailLim, len(e.trail))
				e.assign(ilit, nil)
			}
			continue
		}

		if e.satisfied() {
			if !e.constraintSatisfied() {
				continue
			}
			return True
		}

		if !e.decide() {
			// No decision candidate left although not all active
			// variables are assigned would be a bug; re-check.
			if e.satisfied() && e.constraintSatisfied() {
				return True
			}
			return Unknown
		}
	}
	return Unknown
}

// constraintSatisfied checks the optional constraint under the current
// assignment. A violated constraint is learned as a clause so the search
// moves away from the model.
func (e *Engine) constraintSatisfied() bool {
	if len(e.external.constraint) == 0 {
		return true
	}
	for _, elit := range e.external.constraint {
		if e.external.Val(elit) > 0 {
			return true
		}
	}
	e.backtrack(0)
	e.AddConstraintClause()
	return false
}

// AddConstraintClause materializes the constraint as an irredundant
// clause.
func (e *Engine) AddConstraintClause() {
	lits := append([]int(nil), e.external.constraint...)
	e.external.ResetConstraint()
	e.AddClause(lits)
}

// redundantClauses returns the redundant clauses currently stored.
func (e *Engine) redundantClauses() []*Clause {
	res := e.store.clauses[:0:0]
	for _, c := range e.store.clauses {
		if c.redundant && !c.garbage {
			res = append(res, c)
		}
	}
	return res
}

// Model extracts the current assignment for external variables 1..n.
func (e *Engine) Model() []bool {
	model := make([]bool, e.external.maxVar+1)
	for eidx := 1; eidx <= e.external.maxVar; eidx++ {
		model[eidx] = e.external.Val(eidx) > 0
	}
	return model
}

// Unsat reports whether the problem reached a top level conflict.
func (e *Engine) Unsat() bool { return e.unsat }
