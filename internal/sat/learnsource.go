package sat

// LearnSource supplies externally produced clauses to the import pipeline.
// Literals are external. The source is borrowed from the embedder; it may
// be backed by a lock-protected queue whose locking discipline is its own
// concern.
type LearnSource interface {
	// HasNextClause reports whether a clause is ready for import.
	HasNextClause() bool

	// NextClause returns the next incoming clause: its producer-assigned
	// ID, glue, external literals and optional signature.
	NextClause() (id uint64, glue int, lits []int, sig []byte)
}

// Learner consumes locally derived clauses pushed outward by the export
// pipeline. Borrowed from the embedder.
type Learner interface {
	// Learning reports whether the learner wants clauses of this size.
	Learning(size int) bool

	ExportLearnedUnitClause(id uint64, elit int)
	ExportLearnedLargeClause(id uint64, elits []int, glue int)
}

// SharedClause is one clause travelling through a ClauseBuffer.
type SharedClause struct {
	ID   uint64
	Glue int
	Lits []int
	Sig  []byte
}

// ClauseBuffer is an in-memory LearnSource for embedders that collect
// incoming clauses ahead of the solver draining them. It is not
// synchronized: the core is single-threaded and drains it synchronously
// from the search loop.
type ClauseBuffer struct {
	q *ringQueue[SharedClause]
}

func NewClauseBuffer() *ClauseBuffer {
	return &ClauseBuffer{q: newRingQueue[SharedClause](128)}
}

// Add enqueues an incoming clause.
func (b *ClauseBuffer) Add(c SharedClause) {
	b.q.Push(c)
}

func (b *ClauseBuffer) HasNextClause() bool {
	return !b.q.IsEmpty()
}

func (b *ClauseBuffer) NextClause() (uint64, int, []int, []byte) {
	c := b.q.Pop()
	return c.ID, c.Glue, c.Lits, c.Sig
}
