// Package proof fans clause derivation events out to a set of attached
// tracers and implements the DRAT, LRAT and FRAT file formats as well as a
// callback-based tracer for clause sharing with signature validation.
//
// All literals crossing this package boundary are external literals; the
// engine externalizes before emitting an event.
package proof

// Tracer observes clause events. Events for a single clause are totally
// ordered as add, zero or more deletes, finalize.
type Tracer interface {
	// Begin tells the tracer the highest clause ID already in use before
	// any derivation is traced.
	Begin(id uint64)

	// AddOriginalClause records a clause of the original formula.
	AddOriginalClause(id uint64, lits []int)

	// AddOriginalClauseWithSignature records a clause whose correctness
	// is vouched for out-of-band by the given signature.
	AddOriginalClauseWithSignature(id uint64, lits []int, sig []byte)

	// AddDerivedClause records a derived clause. The chain holds the IDs
	// of the antecedents, every one of them smaller than id. Imported
	// clauses are marked so file tracers can skip them.
	AddDerivedClause(id uint64, redundant, imported bool, glue int, lits []int, chain []uint64)

	// DeleteClause records that a clause is no longer used.
	DeleteClause(id uint64, lits []int)

	// FinalizeClause records that a clause is still active at the end of
	// the proof.
	FinalizeClause(id uint64, lits []int)

	// AddTodo records auxiliary values for derivations with missing
	// chains. Only FRAT files materialize these.
	AddTodo(vals []int64)

	Flush() error
	Close() error
}
