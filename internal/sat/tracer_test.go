package sat

import (
	"github.com/sirupsen/logrus"

	"github.com/domschrei/cadical/internal/proof"
)

// recTracer records proof events for assertions.
type recTracer struct {
	derived   []recDerived
	deleted   []uint64
	originals []uint64
}

type recDerived struct {
	id       uint64
	glue     int
	imported bool
	lits     []int
	chain    []uint64
}

func (r *recTracer) Begin(uint64)                    {}
func (r *recTracer) AddOriginalClause(id uint64, _ []int) { r.originals = append(r.originals, id) }
func (r *recTracer) AddOriginalClauseWithSignature(id uint64, _ []int, _ []byte) {
	r.originals = append(r.originals, id)
}

func (r *recTracer) AddDerivedClause(id uint64, _, imported bool, glue int, lits []int, chain []uint64) {
	r.derived = append(r.derived, recDerived{
		id: id, glue: glue, imported: imported,
		lits:  append([]int(nil), lits...),
		chain: append([]uint64(nil), chain...),
	})
}

func (r *recTracer) DeleteClause(id uint64, _ []int) { r.deleted = append(r.deleted, id) }
func (r *recTracer) FinalizeClause(uint64, []int)    {}
func (r *recTracer) AddTodo([]int64)                 {}
func (r *recTracer) Flush() error                    { return nil }
func (r *recTracer) Close() error                    { return nil }

// newTestEngine builds an engine with a recording proof tracer attached.
func newTestEngine(lrat bool) (*Engine, *recTracer) {
	opts := DefaultOptions
	opts.LRAT = lrat
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	e := NewEngine(opts, logger)

	rec := &recTracer{}
	p := proof.New(lrat)
	p.Connect(rec)
	e.ConnectProof(p)
	return e, rec
}

// reserve internalizes external variables 1..n so internal and external
// indices coincide.
func reserve(e *Engine, n int) {
	for v := 1; v <= n; v++ {
		e.External().Internalize(v)
	}
}

func (r *recTracer) lastDerived() recDerived {
	return r.derived[len(r.derived)-1]
}
