package proof

import "fmt"

// ProduceFunc checks and records a clause derivation. It returns the
// clause's signature (nil if signing is disabled) and whether the
// derivation was accepted. A glue of zero means the clause should not be
// exported.
type ProduceFunc func(id uint64, lits []int, chain []uint64, glue int) ([]byte, bool)

// ImportFunc adds a clause as an axiom, as if it were part of the original
// formula, while validating the provided signature.
type ImportFunc func(id uint64, lits []int, sig []byte) bool

// DeleteFunc deletes a batch of clauses identified by their IDs.
type DeleteFunc func(ids []uint64) bool

// deleteChunk bounds the number of IDs handed to a single DeleteFunc call
// so individual statements stay manageable.
const deleteChunk = 1 << 16

// CallbackTracer forwards proof events to embedder-provided callbacks. It
// is the tracer used for cryptographically signed clause sharing: produced
// clauses are signed through the produce callback and incoming axioms are
// validated through the import callback.
//
// IDs must be strictly increasing. An out-of-order ID is unrecoverable:
// the proof stream cannot be repaired later, so the tracer panics.
type CallbackTracer struct {
	produce ProduceFunc
	imprt   ImportFunc
	delete  DeleteFunc

	// RegisterUnit, when set, is told the ID of every produced unit
	// clause under its external literal, so the mapping survives
	// variable domain compaction.
	RegisterUnit func(id uint64, elit int)

	// SignShared requests signatures (a non-zero glue) for redundant and
	// unit clauses.
	SignShared bool

	// OnProduced and OnImported, when set, observe accepted events.
	OnProduced func()
	OnImported func(validated bool)

	latestID  uint64
	deleteIDs []uint64

	added   int64
	deleted int64
}

func NewCallbackTracer(produce ProduceFunc, imprt ImportFunc, del DeleteFunc) *CallbackTracer {
	return &CallbackTracer{produce: produce, imprt: imprt, delete: del}
}

func (t *CallbackTracer) Begin(id uint64) {
	t.latestID = id
}

func (t *CallbackTracer) AddOriginalClause(uint64, []int) {}

func (t *CallbackTracer) AddOriginalClauseWithSignature(id uint64, lits []int, sig []byte) {
	ok := t.imprt(id, lits, sig)
	if t.OnImported != nil {
		t.OnImported(ok)
	}
	if !ok {
		panic(fmt.Sprintf("proof: signature validation failed for incoming clause %d", id))
	}
}

func (t *CallbackTracer) AddDerivedClause(id uint64, redundant, _ bool, glue int, lits []int, chain []uint64) {
	if id <= t.latestID {
		panic(fmt.Sprintf("proof: produced ID %d out of order (previous %d)", id, t.latestID))
	}
	t.flushDeletes()
	t.latestID = id

	if len(lits) == 1 && t.RegisterUnit != nil {
		// Remember the unit's ID under its external literal so internal
		// variable domain compaction does not destroy the mapping.
		t.RegisterUnit(id, lits[0])
	}

	exportGlue := 0
	if t.SignShared && (redundant || len(lits) == 1) {
		exportGlue = glue
	}

	if _, ok := t.produce(id, lits, chain, exportGlue); !ok {
		panic(fmt.Sprintf("proof: produce callback rejected clause %d", id))
	}
	if t.OnProduced != nil {
		t.OnProduced()
	}
	t.added++
}

// DeleteClause defers the deletion. Deferred IDs are flushed in bounded
// chunks immediately before the next production so the ordering of the
// proof stream stays stable.
func (t *CallbackTracer) DeleteClause(id uint64, _ []int) {
	t.deleteIDs = append(t.deleteIDs, id)
	t.deleted++
}

func (t *CallbackTracer) flushDeletes() {
	if len(t.deleteIDs) == 0 {
		return
	}
	for start := 0; start < len(t.deleteIDs); start += deleteChunk {
		end := start + deleteChunk
		if end > len(t.deleteIDs) {
			end = len(t.deleteIDs)
		}
		if !t.delete(t.deleteIDs[start:end]) {
			panic("proof: delete callback failed")
		}
	}
	t.deleteIDs = t.deleteIDs[:0]
}

func (t *CallbackTracer) FinalizeClause(uint64, []int) {}

func (t *CallbackTracer) AddTodo([]int64) {}

func (t *CallbackTracer) Flush() error { return nil }

func (t *CallbackTracer) Close() error { return nil }
