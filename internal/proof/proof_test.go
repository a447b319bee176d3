package proof

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingTracer captures events for assertions.
type recordingTracer struct {
	name    string
	log     *[]string
	derived []derivedEvent
}

type derivedEvent struct {
	id       uint64
	glue     int
	imported bool
	lits     []int
	chain    []uint64
}

func newRecorder(name string, log *[]string) *recordingTracer {
	return &recordingTracer{name: name, log: log}
}

func (r *recordingTracer) Begin(uint64)                   {}
func (r *recordingTracer) AddOriginalClause(uint64, []int) {}
func (r *recordingTracer) AddOriginalClauseWithSignature(uint64, []int, []byte) {}

func (r *recordingTracer) AddDerivedClause(id uint64, _, imported bool, glue int, lits []int, chain []uint64) {
	*r.log = append(*r.log, r.name)
	r.derived = append(r.derived, derivedEvent{
		id: id, glue: glue, imported: imported,
		lits:  append([]int(nil), lits...),
		chain: append([]uint64(nil), chain...),
	})
}

func (r *recordingTracer) DeleteClause(uint64, []int)   {}
func (r *recordingTracer) FinalizeClause(uint64, []int) {}
func (r *recordingTracer) AddTodo([]int64)              {}
func (r *recordingTracer) Flush() error                 { return nil }
func (r *recordingTracer) Close() error                 { return nil }

func TestGlueIsClamped(t *testing.T) {
	var log []string
	rec := newRecorder("rec", &log)
	p := New(true)
	p.Connect(rec)

	// A glue larger than the clause collapses onto the clause size.
	p.AddDerivedClause(1, true, false, 9, []int{1, 2, 3}, []uint64{1})
	// A degenerate glue is raised to one.
	p.AddDerivedClause(2, true, false, 0, []int{1, 2, 3}, []uint64{1})

	require.Equal(t, 3, rec.derived[0].glue)
	require.Equal(t, 1, rec.derived[1].glue)
}

func TestConnectTracerObservesFirst(t *testing.T) {
	var log []string
	exporter := newRecorder("exporter", &log)
	file := newRecorder("file", &log)

	p := New(false)
	p.Connect(exporter)
	p.ConnectTracer(file) // the file tracer must observe first

	p.AddDerivedClause(1, true, false, 1, []int{1}, nil)
	require.Equal(t, []string{"file", "exporter"}, log)
}

func TestFinalizeRequiresLRAT(t *testing.T) {
	count := 0
	p := New(false)
	p.Connect(&funcTracer{onFinalize: func() { count++ }})
	p.FinalizeClause(1, []int{1})
	require.Zero(t, count)

	p = New(true)
	p.Connect(&funcTracer{onFinalize: func() { count++ }})
	p.FinalizeClause(1, []int{1})
	require.Equal(t, 1, count)
}

type funcTracer struct {
	recordingTracer
	onFinalize func()
}

func (f *funcTracer) FinalizeClause(uint64, []int) { f.onFinalize() }
