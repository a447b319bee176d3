package sat

import (
	"log"
	"sort"
)

// garbageCollect removes root-satisfied clauses, flushes root-falsified
// literals out of surviving clauses (emitting delete+add proof events so
// the proof stays connected), rebuilds all watch lists and reclaims
// garbage storage. Compaction relies on running on a GC-quiesced state.
func (e *Engine) garbageCollect() {
	if e.level() != 0 {
		log.Fatalf("garbage collection called at level %d", e.level())
	}
	e.stats.Collects++

	for _, c := range e.store.clauses {
		if c.garbage {
			continue
		}
		satisfied := false
		falsified := 0
		for _, l := range c.lits {
			switch e.fixedVal(l) {
			case 1:
				satisfied = true
			case -1:
				falsified++
			}
		}
		if satisfied {
			e.markGarbage(c)
			continue
		}
		if falsified > 0 {
			e.flushFalsified(c)
		}
	}

	e.rebuildWatches()
	e.store.sweep()
}

// markGarbage flags the clause for reclamation and traces its deletion.
func (e *Engine) markGarbage(c *Clause) {
	if c.garbage {
		return
	}
	c.garbage = true
	e.subOccs(c)
	if e.proof != nil {
		e.proof.DeleteClause(c.id, e.externalizeAll(c.lits))
	}
}

// flushFalsified removes root-falsified literals from the clause. The
// shortened clause is derived under a fresh local ID from the old clause
// plus the units falsifying the removed literals; the old clause is then
// deleted. The clause object is reused, only its ID changes.
func (e *Engine) flushFalsified(c *Clause) {
	e.lratChain = e.lratChain[:0]
	oldLits := e.externalizeAll(c.lits)

	j := 0
	for _, l := range c.lits {
		if e.fixedVal(l) < 0 {
			if uid := e.units.Lookup(-l); uid != 0 {
				e.lratChain = append(e.lratChain, uid)
			}
			e.ntab[vlit(l)]--
			continue
		}
		c.lits[j] = l
		j++
	}
	if j == len(c.lits) {
		return
	}
	c.lits = c.lits[:j]
	e.lratChain = append(e.lratChain, c.id)

	id := e.store.NextLratID()
	switch j {
	case 0:
		e.unsat = true
		if e.proof != nil {
			e.proof.AddDerivedClause(id, false, false, 1, nil, e.chainForProof())
		}
	case 1:
		l := c.lits[0]
		if e.proof != nil {
			e.proof.AddDerivedClause(id, true, false, 1, []int{e.externalize(l)}, e.chainForProof())
		}
		if e.val(l) == 0 {
			e.assign(l, nil)
		}
		if e.ftab[l.Var()].Active() {
			e.markFixed(l.Var())
		}
		e.registerUnit(id, l)
		e.markGarbageWithLits(c, oldLits)
	default:
		if e.proof != nil {
			e.proof.AddDerivedClause(id, c.redundant, false, c.glue, e.externalizeAll(c.lits), e.chainForProof())
			e.proof.DeleteClause(c.id, oldLits)
		}
		c.id = id
	}
	e.lratChain = e.lratChain[:0]
}

// markGarbageWithLits is markGarbage with the literals the clause had
// before shrinking.
func (e *Engine) markGarbageWithLits(c *Clause, oldLits []int) {
	if c.garbage {
		return
	}
	c.garbage = true
	e.subOccs(c)
	if e.proof != nil {
		e.proof.DeleteClause(c.id, oldLits)
	}
}

// rebuildWatches drops all watch lists and re-watches the surviving
// clauses.
func (e *Engine) rebuildWatches() {
	for i := range e.wtab {
		e.wtab[i] = e.wtab[i][:0]
	}
	for _, c := range e.store.clauses {
		if c.garbage {
			continue
		}
		if len(c.lits) >= 2 {
			e.watchClause(c)
		}
	}
}

// reduce discards the less useful half of the redundant clauses, keeping
// locked ones and those with high activity.
func (e *Engine) reduce() {
	e.stats.Reduced++

	learnts := e.redundantClauses()
	if len(learnts) == 0 {
		return
	}
	lim := e.clauseInc / float64(len(learnts))

	sort.Slice(learnts, func(i, j int) bool {
		return learnts[i].activity < learnts[j].activity
	})

	i := 0
	for ; i < len(learnts)/2; i++ {
		if !learnts[i].reason {
			e.markGarbage(learnts[i])
		}
	}
	for ; i < len(learnts); i++ {
		if !learnts[i].reason && learnts[i].activity < lim {
			e.markGarbage(learnts[i])
		}
	}

	if e.level() == 0 {
		e.rebuildWatches()
		e.store.sweep()
	}
	// Garbage clauses above the root are skipped lazily during
	// propagation and reclaimed at the next root-level collection.
	e.lim.reduce += e.lim.reduce / 10
}
