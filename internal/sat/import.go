package sat

// Clause import. Incoming clauses arrive through the attached LearnSource
// as external literals. Each clause is validated against the current
// flags and trail, simplified through the fixed units (extending the
// in-flight LRAT chain) and then discarded, added as a unit, or installed
// as a learned clause.

// importing reports whether the import pipeline should run: only at the
// root level, with a source attached and a clause ready.
func (e *Engine) importing() bool {
	return e.level() == 0 &&
		e.external.learnSource != nil &&
		e.external.learnSource.HasNextClause()
}

// addClauseToProof writes an LRAT derivation for the temporary clause
// straight to the tracers, without the detour over the regular derived
// clause entry points.
func (e *Engine) addClauseToProof(id uint64) {
	if e.proof == nil {
		return
	}
	elits := e.externalizeAll(e.clause)
	e.proof.AddDerivedClause(id, true, false, 1, elits, e.chainForProof())
}

// tryImportUnit attempts to import an incoming unit clause, possibly
// arising from the simplification of a larger incoming clause. In the
// simplified case the in-flight chain holds the IDs of the units used.
func (e *Engine) tryImportUnit(id uint64, elit int, simplified bool) {
	clearChain := func() {
		if simplified && e.opts.LRAT {
			e.lratChain = e.lratChain[:0]
		}
	}

	// Witness literals must not re-enter the solver.
	if e.external.MarkedWitness(elit) {
		e.stats.ClauseImport.RWit++
		e.stats.ClauseImport.Discarded++
		clearChain()
		return
	}
	ilit := e.external.Internalize(elit)
	f := e.flags(ilit)
	switch {
	case f.Eliminated() || f.Substituted():
		e.stats.ClauseImport.REl++
		e.stats.ClauseImport.Discarded++
		clearChain()
		return
	case f.Pure():
		e.stats.ClauseImport.Discarded++
		clearChain()
		return
	case f.Fixed():
		e.stats.ClauseImport.RFx++
		e.stats.ClauseImport.Discarded++
		clearChain()
		return
	}

	impID := id
	if simplified {
		impID = e.store.NextLratID()
		if e.opts.LRAT {
			// The ID of the original incoming clause closes the chain.
			e.lratChain = append(e.lratChain, id)
			e.clause = append(e.clause[:0], ilit)
			e.addClauseToProof(impID)
			e.lratChain = e.lratChain[:0]
			e.clause = e.clause[:0]
		}
		// Re-export the clause in its simplified form.
		e.external.ExportLearnedUnitClause(impID, ilit)
	}
	e.assignOriginalUnit(impID, ilit)
	e.stats.ClauseImport.Imported++
}

// handleIncomingClause classifies, simplifies and installs one incoming
// clause.
func (e *Engine) handleIncomingClause(id uint64, glue int, elits []int, sig []byte) {
	e.stats.IncomingCls++

	// Echoes of one's own exports are dropped silently.
	if e.store.IsLocallyProducedLratID(id) {
		return
	}

	if len(elits) == 1 {
		if sig != nil && e.proof != nil {
			// A signed unit arriving unshortened enters the proof as an
			// axiom under signature validation.
			e.proof.AddOriginalClauseWithSignature(id, elits, sig)
			e.stats.ValidatedIncomingCls++
		}
		e.tryImportUnit(id, elits[0], false)
		return
	}

	e.clause = e.clause[:0]
	e.lratChain = e.lratChain[:0]
	reducedSize := false
	addClause := true

analysis:
	for _, elit := range elits {
		if e.external.MarkedWitness(elit) {
			e.stats.ClauseImport.RWit++
			addClause = false
			break analysis
		}
		ilit := e.external.Internalize(elit)
		f := e.flags(ilit)
		switch {
		case f.Eliminated() || f.Substituted():
			e.stats.ClauseImport.REl++
			addClause = false
			break analysis
		case f.Pure():
			addClause = false
			break analysis
		case f.Fixed():
			if e.val(ilit) > 0 {
				// True at the root: the clause is subsumed.
				e.stats.ClauseImport.RFx++
				addClause = false
				break analysis
			}
			// False at the root: the literal is dropped and the unit
			// shortening the clause joins the chain, looked up under
			// the external literal so compaction cannot have lost it.
			reducedSize = true
			if e.opts.LRAT {
				uid := e.external.extUnits.Lookup(Lit(-elit))
				if uid == 0 {
					uid = e.units.Lookup(-ilit)
				}
				e.lratChain = append(e.lratChain, uid)
			}
		default:
			e.clause = append(e.clause, ilit)
		}
	}

	if !addClause {
		e.stats.ClauseImport.Discarded++
		e.clause = e.clause[:0]
		e.lratChain = e.lratChain[:0]
		return
	}

	switch len(e.clause) {
	case 0:
		// The incoming clause is empty under the root assignment.
		if e.opts.LRAT && e.proof != nil {
			e.lratChain = append(e.lratChain, id)
			e.addClauseToProof(e.store.NextLratID())
		}
		e.lratChain = e.lratChain[:0]
		e.stats.ClauseImport.RFx++
		e.stats.ClauseImport.Discarded++
		e.unsat = true
		return
	case 1:
		elit := e.externalize(e.clause[0])
		e.clause = e.clause[:0]
		e.tryImportUnit(id, elit, true)
		return
	}

	impID := id
	if reducedSize {
		impID = e.store.NextLratID()
	} else if sig != nil && e.proof != nil {
		// Unshortened imports enter the proof as axioms under signature
		// validation; their derivation lives in the producer's proof.
		e.proof.AddOriginalClauseWithSignature(id, elits, sig)
		e.stats.ValidatedIncomingCls++
	}
	c := e.store.newClause(impID, e.clause, true, glue)
	e.addOccs(c)
	if reducedSize && e.opts.LRAT && e.proof != nil {
		e.lratChain = append(e.lratChain, id)
		e.addClauseToProof(impID)
	}
	e.clause = e.clause[:0]
	e.lratChain = e.lratChain[:0]
	e.watchClause(c)
	e.stats.ClauseImport.Imported++
}

// ImportRedundantClauses drains the learn source. It returns False when
// an incoming clause refutes the instance, True when the assignment is
// already total, and Unknown otherwise.
func (e *Engine) ImportRedundantClauses() LBool {
	src := e.external.learnSource
	if src == nil {
		return Unknown
	}
	for src.HasNextClause() {
		id, glue, lits, sig := src.NextClause()
		e.handleIncomingClause(id, glue, lits, sig)

		if e.unsat {
			return False
		}
		if e.satisfied() {
			return True
		}
	}
	return Unknown
}
