package proof

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func okProduce(produced *[]uint64) ProduceFunc {
	return func(id uint64, lits []int, chain []uint64, glue int) ([]byte, bool) {
		if produced != nil {
			*produced = append(*produced, id)
		}
		return nil, true
	}
}

func okImport(id uint64, lits []int, sig []byte) bool { return true }

func okDelete(deleted *[][]uint64) DeleteFunc {
	return func(ids []uint64) bool {
		if deleted != nil {
			*deleted = append(*deleted, append([]uint64(nil), ids...))
		}
		return true
	}
}

func TestCallbackTracerRejectsOutOfOrderIDs(t *testing.T) {
	tr := NewCallbackTracer(okProduce(nil), okImport, okDelete(nil))
	tr.AddDerivedClause(10, true, false, 1, []int{1}, []uint64{1})
	require.Panics(t, func() {
		tr.AddDerivedClause(10, true, false, 1, []int{2}, []uint64{1})
	})
	require.Panics(t, func() {
		tr.AddDerivedClause(5, true, false, 1, []int{2}, []uint64{1})
	})
}

func TestCallbackTracerBeginSetsWatermark(t *testing.T) {
	tr := NewCallbackTracer(okProduce(nil), okImport, okDelete(nil))
	tr.Begin(100)
	require.Panics(t, func() {
		tr.AddDerivedClause(100, true, false, 1, []int{1}, []uint64{1})
	})
}

func TestCallbackTracerFlushesDeletesBeforeProduction(t *testing.T) {
	var produced []uint64
	var deleted [][]uint64
	tr := NewCallbackTracer(okProduce(&produced), okImport, okDelete(&deleted))

	tr.AddDerivedClause(1, true, false, 1, []int{1}, []uint64{1})
	tr.DeleteClause(1, nil)
	require.Empty(t, deleted) // deferred

	tr.AddDerivedClause(2, true, false, 1, []int{2}, []uint64{1})
	require.Equal(t, [][]uint64{{1}}, deleted)
	require.Equal(t, []uint64{1, 2}, produced)
}

func TestCallbackTracerDeleteChunking(t *testing.T) {
	var deleted [][]uint64
	tr := NewCallbackTracer(okProduce(nil), okImport, okDelete(&deleted))

	n := deleteChunk + 3
	for i := 0; i < n; i++ {
		tr.DeleteClause(uint64(i+1), nil)
	}
	tr.AddDerivedClause(uint64(n+1), true, false, 1, []int{1}, []uint64{1})

	require.Len(t, deleted, 2)
	require.Len(t, deleted[0], deleteChunk)
	require.Len(t, deleted[1], 3)
}

func TestCallbackTracerRegistersUnits(t *testing.T) {
	var gotID uint64
	var gotLit int
	tr := NewCallbackTracer(okProduce(nil), okImport, okDelete(nil))
	tr.RegisterUnit = func(id uint64, elit int) { gotID, gotLit = id, elit }

	tr.AddDerivedClause(3, true, false, 1, []int{-5}, []uint64{1})
	require.Equal(t, uint64(3), gotID)
	require.Equal(t, -5, gotLit)
}

func TestCallbackTracerSignatureValidation(t *testing.T) {
	reject := func(id uint64, lits []int, sig []byte) bool { return false }
	tr := NewCallbackTracer(okProduce(nil), reject, okDelete(nil))
	require.Panics(t, func() {
		tr.AddOriginalClauseWithSignature(1, []int{1}, []byte{0xde, 0xad})
	})
}

func TestCallbackTracerGlueGating(t *testing.T) {
	var glues []int
	produce := func(id uint64, lits []int, chain []uint64, glue int) ([]byte, bool) {
		glues = append(glues, glue)
		return nil, true
	}
	tr := NewCallbackTracer(produce, okImport, okDelete(nil))

	// Without SignShared every clause is produced with glue zero,
	// meaning it should not be exported.
	tr.AddDerivedClause(1, true, false, 3, []int{1, 2, 3}, []uint64{1})

	tr.SignShared = true
	tr.AddDerivedClause(2, true, false, 3, []int{1, 2, 3}, []uint64{1})
	tr.AddDerivedClause(3, false, false, 2, []int{4, 5}, []uint64{1})

	require.Equal(t, []int{0, 3, 0}, glues)
}
