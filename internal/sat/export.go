package sat

import "log"

// LearnerObserver pushes locally derived redundant clauses outward
// through the attached Learner. It observes the proof bus after the file
// tracers, so on-disk proof lines always precede export side effects.
type LearnerObserver struct {
	external *External
}

func NewLearnerObserver(x *External) *LearnerObserver {
	return &LearnerObserver{external: x}
}

func (o *LearnerObserver) Begin(uint64) {}

func (o *LearnerObserver) AddOriginalClause(uint64, []int) {}

func (o *LearnerObserver) AddOriginalClauseWithSignature(uint64, []int, []byte) {}

func (o *LearnerObserver) AddDerivedClause(id uint64, _, imported bool, glue int, lits []int, _ []uint64) {
	if imported {
		// Re-exporting an import would loop the clause through the
		// sharing fabric forever.
		return
	}
	learner := o.external.learner
	if learner == nil {
		return
	}
	if glue == -1 {
		log.Fatalf("invalid glue value for exported clause %d", id)
	}
	switch {
	case len(lits) == 1:
		if learner.Learning(1) {
			learner.ExportLearnedUnitClause(id, lits[0])
		}
	case len(lits) > 1:
		if learner.Learning(len(lits)) {
			learner.ExportLearnedLargeClause(id, lits, glue)
		}
	}
	// The empty clause is not exported.
}

func (o *LearnerObserver) DeleteClause(uint64, []int) {}

func (o *LearnerObserver) FinalizeClause(uint64, []int) {}

func (o *LearnerObserver) AddTodo([]int64) {}

func (o *LearnerObserver) Flush() error { return nil }

func (o *LearnerObserver) Close() error { return nil }
