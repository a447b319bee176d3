package proof

import (
	"bufio"
	"fmt"
	"io"
)

// Format selects the proof file family.
type Format int

const (
	// DRAT traces literals only.
	DRAT Format = iota
	// LRAT adds clause IDs and antecedent hints.
	LRAT
	// FRAT additionally records the original clause set and per-clause
	// finalization.
	FRAT
)

func (f Format) String() string {
	switch f {
	case DRAT:
		return "drat"
	case LRAT:
		return "lrat"
	case FRAT:
		return "frat"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FileTracer writes a proof trace in DRAT, LRAT or FRAT format, either
// textual or binary. It implements Tracer.
type FileTracer struct {
	w      *bufio.Writer
	closer io.Closer

	format      Format
	binary      bool
	deleteLines bool

	lastID         uint64
	pendingDeletes []uint64
	closed         bool

	added   int64
	deleted int64
}

// NewFileTracer wraps w in a proof tracer. If w is an io.Closer it is
// closed with the tracer. Deletion statements are only emitted in LRAT
// when deleteLines is set.
func NewFileTracer(w io.Writer, format Format, binary, deleteLines bool) *FileTracer {
	t := &FileTracer{
		w:           bufio.NewWriter(w),
		format:      format,
		binary:      binary,
		deleteLines: deleteLines,
	}
	if c, ok := w.(io.Closer); ok {
		t.closer = c
	}
	return t
}

func (t *FileTracer) Begin(id uint64) {
	t.lastID = id
}

func (t *FileTracer) putLits(lits []int) {
	for _, l := range lits {
		if t.binary {
			putSigned(t.w, int64(l))
		} else {
			fmt.Fprintf(t.w, "%d ", l)
		}
	}
}

func (t *FileTracer) endLine() {
	if t.binary {
		putZero(t.w)
	} else {
		t.w.WriteString("0\n")
	}
}

// AddOriginalClause is a no-op except for FRAT, the only format that
// records the original clause set.
func (t *FileTracer) AddOriginalClause(id uint64, lits []int) {
	if t.format != FRAT || t.closed {
		return
	}
	if t.binary {
		t.w.WriteByte('o')
		putUnsigned(t.w, id)
	} else {
		fmt.Fprintf(t.w, "o %d ", id)
	}
	t.putLits(lits)
	t.endLine()
}

// AddOriginalClauseWithSignature traces the clause like an original one;
// signature validation is the callback tracer's concern.
func (t *FileTracer) AddOriginalClauseWithSignature(id uint64, lits []int, _ []byte) {
	t.AddOriginalClause(id, lits)
}

func (t *FileTracer) AddDerivedClause(id uint64, _, imported bool, _ int, lits []int, chain []uint64) {
	if imported || t.closed {
		// Imported clauses have their derivation in the producer's
		// proof, not in this file.
		return
	}
	if t.format == LRAT && len(chain) == 0 {
		panic(fmt.Sprintf("proof: derived clause %d without chain in LRAT trace", id))
	}
	t.flushDeletes()

	switch {
	case t.binary && t.format != DRAT:
		t.w.WriteByte('a')
		if t.format == LRAT {
			putSigned(t.w, int64(id))
		} else {
			putUnsigned(t.w, id)
		}
	case !t.binary && t.format == FRAT:
		fmt.Fprintf(t.w, "a %d ", id)
	case !t.binary && t.format == LRAT:
		fmt.Fprintf(t.w, "%d ", id)
	}

	t.putLits(lits)

	if t.format != DRAT {
		if t.binary {
			putZero(t.w)
		} else if t.format == FRAT {
			t.w.WriteString("0 l ")
		} else {
			t.w.WriteString("0 ")
		}
		for _, c := range chain {
			if t.binary {
				putSigned(t.w, int64(c))
			} else {
				fmt.Fprintf(t.w, "%d ", c)
			}
		}
	}
	t.endLine()

	t.lastID = id
	t.added++

	// Make sure the empty clause is on disk as soon as it is derived.
	if len(lits) == 0 {
		t.w.Flush()
	}
}

func (t *FileTracer) DeleteClause(id uint64, lits []int) {
	if t.closed {
		return
	}
	switch t.format {
	case LRAT:
		if !t.deleteLines {
			return
		}
		// Batched: flushed as a single statement right before the next
		// addition so individual statements stay bounded.
		t.pendingDeletes = append(t.pendingDeletes, id)
	case FRAT:
		if t.binary {
			t.w.WriteByte('d')
			putUnsigned(t.w, id)
		} else {
			fmt.Fprintf(t.w, "d %d ", id)
		}
		t.putLits(lits)
		t.endLine()
	default: // DRAT
		if t.binary {
			t.w.WriteByte('d')
		} else {
			t.w.WriteString("d ")
		}
		t.putLits(lits)
		t.endLine()
	}
	t.deleted++
}

func (t *FileTracer) flushDeletes() {
	if len(t.pendingDeletes) == 0 {
		return
	}
	if t.binary {
		t.w.WriteByte('d')
		for _, id := range t.pendingDeletes {
			putSigned(t.w, int64(id))
		}
		putZero(t.w)
	} else {
		fmt.Fprintf(t.w, "%d d ", t.lastID)
		for _, id := range t.pendingDeletes {
			fmt.Fprintf(t.w, "%d ", id)
		}
		t.w.WriteString("0\n")
	}
	t.pendingDeletes = t.pendingDeletes[:0]
}

// FinalizeClause is FRAT only.
func (t *FileTracer) FinalizeClause(id uint64, lits []int) {
	if t.format != FRAT || t.closed {
		return
	}
	if t.binary {
		t.w.WriteByte('f')
		putUnsigned(t.w, id)
	} else {
		fmt.Fprintf(t.w, "f %d ", id)
	}
	t.putLits(lits)
	t.endLine()
}

// AddTodo is FRAT only.
func (t *FileTracer) AddTodo(vals []int64) {
	if t.format != FRAT || t.closed {
		return
	}
	if t.binary {
		t.w.WriteByte('t')
		for _, v := range vals {
			putUnsigned(t.w, uint64(v))
		}
		putZero(t.w)
	} else {
		t.w.WriteString("t ")
		for _, v := range vals {
			fmt.Fprintf(t.w, "%d ", v)
		}
		t.w.WriteString("0\n")
	}
}

// Added returns the number of traced clause additions.
func (t *FileTracer) Added() int64 { return t.added }

// Deleted returns the number of traced clause deletions.
func (t *FileTracer) Deleted() int64 { return t.deleted }

func (t *FileTracer) Flush() error {
	if t.closed {
		return nil
	}
	t.flushDeletes()
	return t.w.Flush()
}

func (t *FileTracer) Close() error {
	if t.closed {
		return nil
	}
	err := t.Flush()
	t.closed = true
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
