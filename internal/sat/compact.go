package sat

import (
	"log"

	"github.com/rhartert/yagh"
	"github.com/sirupsen/logrus"
)

// Compacting removes the holes left by inactive variables (fixed,
// eliminated, substituted or pure) by mapping active variable indices
// down to a contiguous interval.

// compacting decides whether a compaction is worthwhile. It requires the
// root level, enough conflicts since the previous run, and both an
// absolute and a relative amount of inactive variables.
func (e *Engine) compacting() bool {
	if e.level() != 0 {
		return false
	}
	if !e.opts.Compact {
		return false
	}
	if e.stats.Conflicts < e.lim.compact {
		return false
	}
	inactive := e.maxVar - e.active()
	if inactive == 0 {
		return false
	}
	if inactive < e.opts.CompactMin {
		return false
	}
	return float64(inactive) >= 1e-3*float64(e.opts.CompactLim)*float64(e.maxVar)
}

// mapper is a compacting garbage collector style map from old variable
// indices to new ones. Inactive variables are skipped, except that all
// fixed variables collapse onto the first fixed one, in the phase that
// preserves their value. This removes the per-fixed-literal special case
// from the hot paths.
type mapper struct {
	e             *Engine
	newMaxVar     int
	table         []int
	firstFixed    int
	mapFirstFixed int
	firstFixedVal int8
}

func newMapper(e *Engine) *mapper {
	m := &mapper{e: e, table: make([]int, e.maxVar+1)}
	for src := 1; src <= e.maxVar; src++ {
		f := &e.ftab[src]
		if f.Active() {
			m.newMaxVar++
			m.table[src] = m.newMaxVar
		} else if f.Fixed() && m.firstFixed == 0 {
			m.firstFixed = src
			m.newMaxVar++
			m.mapFirstFixed = m.newMaxVar
			m.table[src] = m.newMaxVar
		}
	}
	if m.firstFixed != 0 {
		m.firstFixedVal = e.val(Lit(m.firstFixed))
	}
	return m
}

// mapIdx maps an old variable index. Zero means not mapped.
func (m *mapper) mapIdx(src int) int {
	return m.table[src]
}

// mapLit maps a literal. Fixed variables other than the first one map to
// the surrogate literal whose value under the current assignment equals
// theirs.
func (m *mapper) mapLit(l Lit) Lit {
	res := Lit(m.mapIdx(l.Var()))
	if res == 0 {
		if tmp := m.e.val(l); tmp != 0 {
			res = Lit(m.mapFirstFixed)
			if tmp != m.firstFixedVal {
				res = -res
			}
		}
	} else if l < 0 {
		res = -res
	}
	return res
}

// mapVector moves the positively indexed entries of a per-variable table
// and truncates it.
func mapVector[T any](m *mapper, v []T) []T {
	for src := 1; src <= m.e.maxVar; src++ {
		dst := m.mapIdx(src)
		if dst == 0 {
			continue
		}
		v[dst] = v[src]
	}
	return v[:m.newMaxVar+1]
}

// map2Vector moves both sides of a two-sided per-literal table and
// truncates it.
func map2Vector[T any](m *mapper, v []T) []T {
	for src := 1; src <= m.e.maxVar; src++ {
		dst := m.mapIdx(src)
		if dst == 0 {
			continue
		}
		v[2*dst] = v[2*src]
		v[2*dst+1] = v[2*src+1]
	}
	return v[:2*m.newMaxVar+2]
}

// mapFlushShrinkLits rewrites a vector of literals, flushing entries of
// unmapped variables.
func (m *mapper) mapFlushShrinkLits(v []Lit) []Lit {
	j := 0
	for _, src := range v {
		dst := Lit(m.mapIdx(src.Var()))
		if dst == 0 {
			continue
		}
		if src < 0 {
			dst = -dst
		}
		v[j] = dst
		j++
	}
	return v[:j]
}

// Compact rewrites every data structure of the engine so internal
// variable indices become dense again. It runs in one atomic pass at the
// root level on a GC-quiesced state. The only suspension points are the
// activity heap drain batches, which honour a termination request only
// when no LRAT proof is being produced: an early return with a pending
// proof would leave the chain inconsistent.
func (e *Engine) Compact() {
	if e.level() != 0 {
		log.Fatalf("compact called at level %d", e.level())
	}
	if e.unsat {
		log.Fatal("compact called on unsatisfiable instance")
	}

	e.stats.Compacts++
	e.garbageCollect()
	if e.propagated != len(e.trail) {
		log.Fatal("compact called with pending propagations")
	}

	m := newMapper(e)

	if m.firstFixed != 0 {
		e.log.WithFields(logrus.Fields{
			"compact": e.stats.Compacts,
			"var":     m.firstFixed,
			"val":     m.firstFixedVal,
		}).Debug("found first fixed variable")
	} else {
		e.log.WithField("compact", e.stats.Compacts).Debug("no variable fixed")
	}

	/*==================================================================*/
	// First part: map without reallocation or shrinking.
	/*==================================================================*/

	// Flush the external indices. This has to occur before the internal
	// tables are touched. External unit IDs are adopted from the
	// internal registry here so they survive the remap.
	x := e.external
	for eidx := 1; eidx <= x.maxVar; eidx++ {
		src := x.e2i[eidx]
		if src == 0 {
			continue
		}
		if x.extUnits.Lookup(Lit(eidx)) == 0 && x.extUnits.Lookup(Lit(-eidx)) == 0 {
			pos := e.units.Lookup(src)
			neg := e.units.Lookup(-src)
			if pos != 0 {
				x.extUnits.Record(pos, Lit(eidx))
			}
			if neg != 0 {
				x.extUnits.Record(neg, Lit(-eidx))
			}
		}
		dst := m.mapLit(src)
		x.e2i[eidx] = dst
	}

	// Compact the internal unit IDs. Entries of variables that vanish
	// without a value are dropped; surviving entries move down; fixed
	// variables other than the first one lose their internal entry (the
	// external mirror keeps the ID).
	for src := 1; src <= e.maxVar; src++ {
		dst := m.mapIdx(src)
		tmp := e.val(Lit(src))
		if dst == 0 && tmp == 0 {
			e.units.clear(src)
			continue
		}
		if tmp == 0 || src == m.firstFixed {
			if dst != src {
				e.units.move(src, dst)
			}
			continue
		}
		e.units.clear(src)
	}
	e.units.shrink(m.newMaxVar)

	// Map the literals in all clauses. Garbage collection ran first, so
	// no clause contains a root-assigned literal.
	for _, c := range e.store.clauses {
		for i, src := range c.lits {
			if e.val(src) != 0 {
				log.Fatalf("compacting clause %d with assigned literal %v", c.id, src)
			}
			c.lits[i] = m.mapLit(src)
		}
	}

	// Map the blocking literals in all watches.
	for v := 1; v <= e.maxVar; v++ {
		for _, i := range [2]int{2 * v, 2*v + 1} {
			for j := range e.wtab[i] {
				e.wtab[i][j].blit = m.mapLit(e.wtab[i][j].blit)
			}
		}
	}

	// Flush inactive variables from the decision queue and rewrite the
	// links to their mapped indices. This has to happen before the links
	// table itself is moved.
	{
		prev, mappedPrev := 0, 0
		for idx := e.queue.first; idx != 0; {
			next := e.links[idx].next
			if idx == m.firstFixed {
				idx = next
				continue
			}
			dst := m.mapIdx(idx)
			if dst == 0 {
				idx = next
				continue
			}
			if prev != 0 {
				e.links[prev].next = dst
			} else {
				e.queue.first = dst
			}
			e.links[idx].prev = mappedPrev
			mappedPrev = dst
			prev = idx
			idx = next
		}
		if prev != 0 {
			e.links[prev].next = 0
		} else {
			e.queue.first = 0
		}
		e.queue.last = mappedPrev
		e.queue.unassigned = mappedPrev
	}

	/*==================================================================*/
	// Second part: map, flush and shrink the trail-like vectors.
	/*==================================================================*/

	e.trail = m.mapFlushShrinkLits(e.trail)
	e.propagated = len(e.trail)
	e.numAssigned = len(e.trail)
	if m.firstFixed != 0 {
		if len(e.trail) != 1 {
			log.Fatalf("expected exactly the surrogate on the trail, have %d literals", len(e.trail))
		}
		e.vtab[m.firstFixed].trail = 0 // before mapping the var records
	} else if len(e.trail) != 0 {
		log.Fatal("expected an empty trail without fixed variables")
	}

	e.notifyTrail = m.mapFlushShrinkLits(e.notifyTrail)
	e.notified = len(e.notifyTrail)

	if len(e.probes) > 0 {
		e.probes = m.mapFlushShrinkLits(e.probes)
	}

	/*==================================================================*/
	// Third part: map and reallocate the per-variable and per-literal
	// tables.
	/*==================================================================*/

	e.ftab = mapVector(m, e.ftab)
	e.parents = mapVector(m, e.parents)
	e.marks = mapVector(m, e.marks)
	e.phases.saved = mapVector(m, e.phases.saved)
	e.phases.forced = mapVector(m, e.phases.forced)
	e.phases.target = mapVector(m, e.phases.target)
	e.phases.best = mapVector(m, e.phases.best)
	e.phases.prev = mapVector(m, e.phases.prev)
	e.phases.min = mapVector(m, e.phases.min)

	// Frozen and relevance counters are summed into their image, so the
	// surrogate accumulates the counters of all collapsed variables.
	sumCounters := func(tab []uint32) []uint32 {
		for src := 1; src <= e.maxVar; src++ {
			dst := m.mapLit(Lit(src)).Var()
			if dst == 0 || dst == src {
				continue
			}
			tab[dst] += tab[src]
			tab[src] = 0
		}
		return tab[:m.newMaxVar+1]
	}
	e.frozentab = sumCounters(e.frozentab)
	e.relevanttab = sumCounters(e.relevanttab)

	// External assumptions are kept as external literals and internalized
	// on use; each must still have an internal image after the flush above.
	for _, elit := range x.assumptions {
		if x.Lookup(elit) == 0 {
			log.Fatalf("assumption %d lost its internal image", elit)
		}
	}

	// The value array trades branch-free negative indexing for memory:
	// reallocate the [-n', n'] block and copy both sides.
	newVsize := m.newMaxVar + 1
	{
		nv := newValTab(newVsize)
		for src := 1; src <= e.maxVar; src++ {
			dst := m.mapIdx(src)
			if dst == 0 {
				continue
			}
			nv.set(Lit(dst), e.val(Lit(src)))
		}
		e.vals = nv
	}

	// The constraint is likewise kept as external literals and read through
	// the new external map on use; each literal must still have an image.
	for _, elit := range x.constraint {
		if x.Lookup(elit) == 0 && elit != 0 {
			log.Fatalf("constraint literal %d lost its internal image", elit)
		}
	}

	e.i2e = mapVector(m, e.i2e)
	e.ptab = map2Vector(m, e.ptab)
	e.btab = mapVector(m, e.btab)
	e.gtab = mapVector(m, e.gtab)
	e.links = mapVector(m, e.links)
	e.vtab = mapVector(m, e.vtab)
	e.ntab = map2Vector(m, e.ntab)
	e.wtab = map2Vector(m, e.wtab)
	e.otab = map2Vector(m, e.otab)
	e.big = map2Vector(m, e.big)

	/*==================================================================*/
	// Fourth part: rebuild the activity heap.
	/*==================================================================*/

	// A binary heap cannot be rewritten in place under an arbitrary
	// index map without losing the heap property, so it is drained and
	// the survivors reinserted. Draining happens in bounded batches so a
	// cooperative termination request is honoured without a long stall.
	var saved []int
	for {
		drained := 0
		for drained < 2048 {
			entry, ok := e.scores.Pop()
			if !ok {
				break
			}
			drained++
			src := entry.Elem
			dst := m.mapIdx(src)
			if dst == 0 || src == m.firstFixed {
				continue
			}
			saved = append(saved, dst)
		}
		if drained == 0 {
			break
		}
		if e.terminationForced && !e.opts.LRAT {
			return
		}
	}
	e.stab = mapVector(m, e.stab)
	fresh := yagh.New[float64](newVsize)
	for _, dst := range saved {
		fresh.Put(dst, -e.stab[dst])
	}
	e.scores = fresh
	e.heapCap = newVsize

	/*==================================================================*/

	e.log.WithFields(logrus.Fields{
		"compact": e.stats.Compacts,
		"from":    e.maxVar,
		"to":      m.newMaxVar,
	}).Debug("reduced internal variables")

	// Adjust the target and best assigned counters to the survivors.
	newTarget, newBest := 0, 0
	for idx := 1; idx <= m.newMaxVar; idx++ {
		if e.phases.target[idx] != 0 {
			newTarget++
		}
		if e.phases.best[idx] != 0 {
			newBest++
		}
	}
	e.targetAssigned = newTarget
	e.bestAssigned = newBest
	e.notified = 0

	e.averages.trailFast.Reset()
	e.averages.trailSlow.Reset()

	e.maxVar = m.newMaxVar
	e.vsize = newVsize

	e.stats.Now.Substituted = 0
	e.stats.Now.Eliminated = 0
	e.stats.Now.Pure = 0
	if m.firstFixed != 0 {
		e.stats.Now.Fixed = 1
	} else {
		e.stats.Now.Fixed = 0
	}

	delta := e.opts.CompactInt * (e.stats.Compacts + 1)
	e.lim.compact = e.stats.Conflicts + delta

	e.log.WithFields(logrus.Fields{
		"compact": e.stats.Compacts,
		"limit":   e.lim.compact,
		"delta":   delta,
	}).Debug("new compact limit")
}
