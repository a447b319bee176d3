package sat

// analyze derives the first-UIP clause from the conflict, learns it,
// backtracks and assigns the asserting literal. The LRAT chain is built
// on the fly: the IDs of all resolved clauses plus the unit IDs of
// root-falsified literals, reversed so verification can replay the
// resolution.
func (e *Engine) analyze(conflict *Clause) {
	e.clause = e.clause[:0]
	e.clause = append(e.clause, 0) // slot for the asserting literal
	e.lratChain = e.lratChain[:0]
	e.seenVar.Clear()

	levels := map[int]struct{}{}
	unresolved := 0
	next := len(e.trail) - 1
	var uip Lit

	reason := conflict
	e.lratChain = append(e.lratChain, conflict.id)
	if conflict.redundant {
		e.bumpClause(conflict)
	}

	for {
		for _, q := range reason.lits {
			if q == uip {
				continue
			}
			v := q.Var()
			if e.seenVar.Contains(v) {
				continue
			}
			lvl := e.vtab[v].level
			if lvl == 0 {
				// Falsified at the root: resolved away by its unit.
				if uid := e.units.Lookup(-q); uid != 0 {
					e.lratChain = append(e.lratChain, uid)
				}
				continue
			}
			e.seenVar.Add(v)
			e.bumpVar(v)
			if lvl == e.level() {
				unresolved++
				continue
			}
			e.clause = append(e.clause, q)
			levels[lvl] = struct{}{}
		}

		// Select the next trail literal to resolve on.
		for {
			uip = e.trail[next]
			next--
			if e.seenVar.Contains(uip.Var()) {
				break
			}
		}

		unresolved--
		if unresolved <= 0 {
			break
		}

		reason = e.vtab[uip.Var()].reason
		e.lratChain = append(e.lratChain, reason.id)
		if reason.redundant {
			e.bumpClause(reason)
		}
	}

	e.clause[0] = -uip
	glue := len(levels) + 1 // lower levels plus the asserting level

	// Reverse the chain so antecedents come in propagation order.
	for i, j := 0, len(e.lratChain)-1; i < j; i, j = i+1, j-1 {
		e.lratChain[i], e.lratChain[j] = e.lratChain[j], e.lratChain[i]
	}

	id := e.store.NextLratID()
	e.stats.Learned++

	if len(e.clause) == 1 {
		if e.proof != nil {
			chain := e.chainForProof()
			e.proof.AddDerivedClause(id, true, false, 1, []int{e.externalize(e.clause[0])}, chain)
		}
		e.backtrack(0)
		l := e.clause[0]
		e.assign(l, nil)
		e.markFixed(l.Var())
		e.registerUnit(id, l)
		e.lratChain = e.lratChain[:0]
		return
	}

	// Move a literal of the backtrack level into the second watch slot.
	backtrackLevel := 0
	wl := 1
	for i := 1; i < len(e.clause); i++ {
		if lvl := e.vtab[e.clause[i].Var()].level; lvl > backtrackLevel {
			backtrackLevel = lvl
			wl = i
		}
	}
	e.clause[1], e.clause[wl] = e.clause[wl], e.clause[1]

	c := e.store.newClause(id, e.clause, true, glue)
	e.addOccs(c)
	e.bumpClause(c)
	if e.proof != nil {
		e.proof.AddDerivedClause(id, true, false, glue, e.externalizeAll(c.lits), e.chainForProof())
	}
	e.backtrack(backtrackLevel)
	e.watchClause(c)
	e.assign(c.lits[0], c)
	e.lratChain = e.lratChain[:0]
}

// chainForProof returns the in-flight chain when hint production is on,
// nil otherwise.
func (e *Engine) chainForProof() []uint64 {
	if !e.opts.LRAT {
		return nil
	}
	return append([]uint64(nil), e.lratChain...)
}
