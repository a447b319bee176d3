package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The scenario: five variables, one binary clause over the survivors, one
// fixed unit, two eliminated variables. Compaction must collapse the
// domain to three variables with the fixed one as surrogate.
func setupCompactScenario(t *testing.T, lrat bool) (*Engine, *recTracer) {
	t.Helper()
	e, rec := newTestEngine(lrat)
	reserve(e, 5)

	e.AddClause([]int{1, 5}) // id 1
	e.AddClause([]int{3})    // id 2, fixes 3
	if conflict := e.propagate(); conflict != nil {
		t.Fatal("unexpected conflict during setup")
	}
	e.MarkEliminated(2)
	e.MarkEliminated(4)
	return e, rec
}

func TestCompactCollapsesDomain(t *testing.T) {
	e, _ := setupCompactScenario(t, true)

	e.Compact()

	if got, want := e.maxVar, 3; got != want {
		t.Errorf("maxVar after compact: got %d, want %d", got, want)
	}

	// External images: 1 -> 1, 3 -> 2 (the fixed surrogate), 5 -> 3,
	// and the eliminated variables lost their image.
	wantE2I := []Lit{0, 1, 0, 2, 0, 3}
	if diff := cmp.Diff(wantE2I, e.external.e2i); diff != "" {
		t.Errorf("e2i mismatch (-want +got):\n%s", diff)
	}

	// The unit ID of the fixed variable moved with it.
	if got, want := e.units.Lookup(Lit(2)), uint64(2); got != want {
		t.Errorf("unit ID at surrogate: got %d, want %d", got, want)
	}
	if got, want := e.external.extUnits.Lookup(Lit(3)), uint64(2); got != want {
		t.Errorf("external unit ID of 3: got %d, want %d", got, want)
	}

	// Clause literals were rewritten through the map.
	if diff := cmp.Diff([]Lit{1, 3}, e.store.clauses[0].lits); diff != "" {
		t.Errorf("clause literals (-want +got):\n%s", diff)
	}

	// Exactly the surrogate is fixed, everything else is active.
	if !e.ftab[2].Fixed() {
		t.Error("surrogate is not fixed")
	}
	for _, v := range []int{1, 3} {
		if !e.ftab[v].Active() {
			t.Errorf("variable %d is not active", v)
		}
	}
	want := NowStats{Fixed: 1}
	if diff := cmp.Diff(want, e.stats.Now); diff != "" {
		t.Errorf("inactive counters (-want +got):\n%s", diff)
	}

	// The surrogate keeps its value, the trail shrank onto it.
	if got := e.val(Lit(2)); got != 1 {
		t.Errorf("surrogate value: got %d, want 1", got)
	}
	if diff := cmp.Diff([]Lit{2}, e.trail); diff != "" {
		t.Errorf("trail (-want +got):\n%s", diff)
	}
}

func TestCompactPreservesExternalValues(t *testing.T) {
	e, _ := setupCompactScenario(t, true)

	before := map[int]int8{}
	for eidx := 1; eidx <= 5; eidx++ {
		before[eidx] = e.external.Val(eidx)
	}

	e.Compact()

	for eidx, want := range before {
		if eidx == 2 || eidx == 4 {
			continue // eliminated, no longer mapped
		}
		if got := e.external.Val(eidx); got != want {
			t.Errorf("external %d changed value: got %d, want %d", eidx, got, want)
		}
	}
}

func TestCompactIsIdempotent(t *testing.T) {
	e, _ := setupCompactScenario(t, true)
	e.Compact()

	e2i := append([]Lit(nil), e.external.e2i...)
	trail := append([]Lit(nil), e.trail...)
	maxVar := e.maxVar

	e.Compact()

	if e.maxVar != maxVar {
		t.Errorf("second compact changed maxVar: %d -> %d", maxVar, e.maxVar)
	}
	if diff := cmp.Diff(e2i, e.external.e2i); diff != "" {
		t.Errorf("second compact changed e2i (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(trail, e.trail); diff != "" {
		t.Errorf("second compact changed trail (-want +got):\n%s", diff)
	}
}

func TestCompactWithoutFixedVariables(t *testing.T) {
	e, _ := newTestEngine(false)
	reserve(e, 4)
	e.AddClause([]int{1, 4})
	e.MarkEliminated(2)
	e.MarkEliminated(3)

	e.Compact()

	if got, want := e.maxVar, 2; got != want {
		t.Errorf("maxVar: got %d, want %d", got, want)
	}
	if got := e.stats.Now.Fixed; got != 0 {
		t.Errorf("fixed counter: got %d, want 0", got)
	}
	if len(e.trail) != 0 {
		t.Errorf("trail not empty: %v", e.trail)
	}
}

func TestCompactSumsFrozenCounters(t *testing.T) {
	e, _ := setupCompactScenario(t, false)
	// Freeze the fixed variable once and raise its counter by two more;
	// the whole count must move onto the surrogate.
	e.external.Freeze(3)
	e.AddClause([]int{1, 5}) // keep 1 and 5 busy
	e.frozentab[3] += 2

	e.Compact()

	if got := e.frozentab[2]; got != 3 {
		t.Errorf("frozen counter at surrogate: got %d, want 3", got)
	}
}

func TestCompactingTrigger(t *testing.T) {
	opts := DefaultOptions
	opts.CompactMin = 1
	opts.CompactLim = 100
	opts.CompactInt = 0
	e := NewEngine(opts, nil)
	reserve(e, 10)

	if e.compacting() {
		t.Error("compacting without inactive variables")
	}

	e.AddClause([]int{3}) // fixes a variable
	if !e.compacting() {
		t.Error("not compacting with 10% inactive variables")
	}

	e.trailLim = append(e.trailLim, 0)
	if e.compacting() {
		t.Error("compacting above the root level")
	}
	e.trailLim = e.trailLim[:0]

	e.opts.Compact = false
	if e.compacting() {
		t.Error("compacting although disabled")
	}
}

func TestCompactRewritesWatchBlockers(t *testing.T) {
	e, _ := setupCompactScenario(t, false)
	e.Compact()

	for i := 2; i < len(e.wtab); i++ {
		for _, w := range e.wtab[i] {
			if v := w.blit.Var(); v < 1 || v > e.maxVar {
				t.Errorf("watch blocker %v out of range [1,%d]", w.blit, e.maxVar)
			}
		}
	}
}

// After compaction every clause literal is unassigned and in range.
func TestCompactClauseInvariant(t *testing.T) {
	e, _ := setupCompactScenario(t, true)
	e.Compact()

	for _, c := range e.store.clauses {
		for _, l := range c.lits {
			if e.val(l) != 0 {
				t.Errorf("clause %d holds assigned literal %v", c.id, l)
			}
			if l.Var() > e.maxVar {
				t.Errorf("clause %d holds out-of-range literal %v", c.id, l)
			}
		}
	}
}
