package sat

import (
	"log"
	"time"

	"github.com/rhartert/yagh"
	"github.com/sirupsen/logrus"

	"github.com/domschrei/cadical/internal/proof"
)

// Var is the per-variable search record.
type Var struct {
	level  int
	trail  int
	reason *Clause
}

// link chains a variable into the doubly linked decision queue.
type link struct {
	prev, next int
}

// vmtfQueue is the move-to-front decision queue over free variables.
type vmtfQueue struct {
	first, last int
	unassigned  int
	bumped      int64
}

// watcher is one entry of a literal's watch list. The blocking literal is
// one of the clause's literals; if it is already true the clause cannot
// propagate and need not be loaded.
type watcher struct {
	clause *Clause
	blit   Lit
	size   int
}

func (w *watcher) binary() bool { return w.size == 2 }

// phaseTabs groups the per-variable phase bytes.
type phaseTabs struct {
	saved  []int8
	forced []int8
	target []int8
	best   []int8
	prev   []int8
	min    []int8
}

// Engine is the solver core. It exclusively owns the clause store, the
// variable maps, the unit registries, the trail, the watch index and the
// activity heap. It is single-threaded; import, export, compaction and
// proof emission are synchronous callbacks from the search loop.
type Engine struct {
	opts Options
	log  *logrus.Logger

	maxVar int
	vsize  int // allocated capacity, maxVar < vsize

	// Per-variable tables, indexed by internal variable.
	vals        valTab
	ftab        []Flags
	vtab        []Var
	marks       []int8
	parents     []Lit
	phases      phaseTabs
	btab        []int64 // enqueue time stamps for the decision queue
	gtab        []int64 // conflict time stamps
	stab        []float64
	links       []link
	queue       vmtfQueue
	i2e         []int
	frozentab   []uint32
	relevanttab []uint32

	// Per-literal two-sided tables, indexed by vlit.
	wtab []([]watcher)
	ntab []int64
	otab [][]*Clause
	ptab []Lit
	big  [][]Lit

	units UnitRegistry

	store    *ClauseStore
	external *External
	proof    *proof.Proof

	trail       []Lit
	propagated  int
	notifyTrail []Lit
	notified    int
	probes      []Lit
	trailLim    []int

	scores   *yagh.IntMap[float64]
	heapCap  int
	varInc   float64
	varDecay float64

	clauseInc   float64
	clauseDecay float64

	clause    []Lit    // shared temporary clause buffer
	lratChain []uint64 // in-flight derivation chain
	seenVar   *ResetSet
	analyzed  []int

	unsat             bool
	conflict          *Clause
	terminationForced bool

	numAssigned int

	targetAssigned int
	bestAssigned   int

	averages struct {
		trailFast EMA
		trailSlow EMA
	}

	stats Stats
	lim   struct {
		compact  int64
		restart  int64
		reduce   int64
		conflict int64
	}

	startTime time.Time
}

func NewEngine(opts Options, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	e := &Engine{
		opts:        opts,
		log:         logger,
		vsize:       2,
		vals:        newValTab(2),
		varInc:      1,
		varDecay:    opts.VariableDecay,
		clauseInc:   1,
		clauseDecay: opts.ClauseDecay,
		store:       newClauseStore(),
		seenVar:     &ResetSet{},
		heapCap:     2,
		scores:      yagh.New[float64](2),
	}
	// Slot zero of every per-variable table is unused.
	e.growVarTables(0)
	e.external = newExternal(e)
	e.averages.trailFast = NewEMA(1 - opts.EMATrailFast)
	e.averages.trailSlow = NewEMA(1 - opts.EMATrailSlow)
	e.lim.compact = opts.CompactInt
	e.lim.reduce = 2000
	return e
}

// External returns the external variable map.
func (e *Engine) External() *External { return e.external }

// Store returns the clause store.
func (e *Engine) Store() *ClauseStore { return e.store }

// Stats returns a snapshot of the search statistics.
func (e *Engine) Stats() Stats { return e.stats }

// ConnectProof attaches a proof bus. Must happen before clauses are added.
func (e *Engine) ConnectProof(p *proof.Proof) { e.proof = p }

// Proof returns the attached proof bus, or nil.
func (e *Engine) Proof() *proof.Proof { return e.proof }

// Terminate asks the engine to stop cooperatively.
func (e *Engine) Terminate() { e.terminationForced = true }

// SetMaxConflicts sets the limit on the total number of conflicts of the
// engine. It is not reset after a Solve call.
func (e *Engine) SetMaxConflicts(n int64) { e.opts.MaxConflicts = n }

// CountProduced bumps the produced clause counter. Called back by the
// LRAT callback tracer.
func (e *Engine) CountProduced() { e.stats.ProducedCls++ }

// MaxVar returns the largest internal variable index.
func (e *Engine) MaxVar() int { return e.maxVar }

// active returns the number of active variables.
func (e *Engine) active() int { return e.maxVar - e.stats.inactive() }

func (e *Engine) level() int { return len(e.trailLim) }

func (e *Engine) val(l Lit) int8 { return e.vals.get(l) }

// fixedVal returns the root-level value of the literal, or zero if the
// literal is not fixed.
func (e *Engine) fixedVal(l Lit) int8 {
	if !e.ftab[l.Var()].Fixed() {
		return 0
	}
	return e.vals.get(l)
}

func (e *Engine) flags(l Lit) *Flags { return &e.ftab[l.Var()] }

// enlarge grows the allocated variable capacity to hold at least n
// variables.
func (e *Engine) enlarge(n int) {
	newSize := e.vsize
	for newSize <= n {
		newSize *= 2
	}
	nv := newValTab(newSize)
	for v := 1; v <= e.maxVar && v < e.vsize; v++ {
		nv.set(Lit(v), e.vals.get(Lit(v)))
	}
	e.vals = nv
	e.vsize = newSize
}

// growVarTables appends table slots for variables up to n.
func (e *Engine) growVarTables(n int) {
	for len(e.ftab) <= n {
		e.ftab = append(e.ftab, Flags{})
		e.vtab = append(e.vtab, Var{level: -1})
		e.marks = append(e.marks, 0)
		e.parents = append(e.parents, 0)
		e.phases.saved = append(e.phases.saved, -1)
		e.phases.forced = append(e.phases.forced, 0)
		e.phases.target = append(e.phases.target, 0)
		e.phases.best = append(e.phases.best, 0)
		e.phases.prev = append(e.phases.prev, 0)
		e.phases.min = append(e.phases.min, 0)
		e.btab = append(e.btab, 0)
		e.gtab = append(e.gtab, 0)
		e.stab = append(e.stab, 0)
		e.links = append(e.links, link{})
		e.i2e = append(e.i2e, 0)
		e.frozentab = append(e.frozentab, 0)
		e.relevanttab = append(e.relevanttab, 0)
		e.wtab = append(e.wtab, nil, nil)
		e.ntab = append(e.ntab, 0, 0)
		e.otab = append(e.otab, nil, nil)
		e.ptab = append(e.ptab, 0, 0)
		e.big = append(e.big, nil, nil)
		e.seenVar.Expand()
	}
}

// newVar allocates a fresh internal variable bound to external index eidx.
// Variables are born active.
func (e *Engine) newVar(eidx int) int {
	e.maxVar++
	v := e.maxVar
	if v >= e.vsize {
		e.enlarge(v)
	}
	e.growVarTables(v)
	e.i2e[v] = eidx
	e.units.grow(v)
	e.queueEnqueue(v)
	e.scorePut(v)
	return v
}

// scorePut inserts the variable into the activity heap, growing the heap
// if its capacity is exceeded.
func (e *Engine) scorePut(v int) {
	if v >= e.heapCap {
		e.rebuildScores(v + 1)
	}
	e.scores.Put(v, -e.stab[v])
}

// rebuildScores replaces the heap with a larger one, keeping all entries.
func (e *Engine) rebuildScores(n int) {
	newCap := e.heapCap
	for newCap < n {
		newCap *= 2
	}
	fresh := yagh.New[float64](newCap)
	for {
		entry, ok := e.scores.Pop()
		if !ok {
			break
		}
		fresh.Put(entry.Elem, -e.stab[entry.Elem])
	}
	e.scores = fresh
	e.heapCap = newCap
}

// queueEnqueue appends the variable at the back of the decision queue.
func (e *Engine) queueEnqueue(v int) {
	q := &e.queue
	e.links[v].prev = q.last
	e.links[v].next = 0
	if q.last != 0 {
		e.links[q.last].next = v
	} else {
		q.first = v
	}
	q.last = v
	q.unassigned = v
	q.bumped++
	e.btab[v] = q.bumped
}

// queueDequeue unlinks the variable from the decision queue.
func (e *Engine) queueDequeue(v int) {
	q := &e.queue
	l := e.links[v]
	if l.prev != 0 {
		e.links[l.prev].next = l.next
	} else if q.first == v {
		q.first = l.next
	}
	if l.next != 0 {
		e.links[l.next].prev = l.prev
	} else if q.last == v {
		q.last = l.prev
	}
	if q.unassigned == v {
		q.unassigned = q.last
	}
}

/*--------------------------------------------------------------------------*/
// Assignment and trail.

// assign puts l on the trail with the given reason clause.
func (e *Engine) assign(l Lit, reason *Clause) {
	v := l.Var()
	e.vals.set(l, 1)
	e.vtab[v].level = e.level()
	e.vtab[v].trail = len(e.trail)
	e.vtab[v].reason = reason
	if reason != nil {
		reason.reason = true
	}
	e.trail = append(e.trail, l)
	e.notifyTrail = append(e.notifyTrail, l)
	e.numAssigned++
	e.stats.Propagations++
}

// markFixed moves an active variable to the fixed state.
func (e *Engine) markFixed(v int) {
	f := &e.ftab[v]
	if !f.Active() {
		log.Fatalf("marking non-active variable %d as fixed", v)
	}
	f.status = statusFixed
	e.stats.Now.Fixed++
}

// registerUnit records the unit clause ID proving l in both the internal
// registry and the external mirror.
func (e *Engine) registerUnit(id uint64, l Lit) {
	e.units.Record(id, l)
	e.external.extUnits.Record(id, Lit(e.externalize(l)))
}

// RegisterLratIDOfUnitElit records a produced unit ID directly under its
// external literal. Called back by the LRAT callback tracer.
func (e *Engine) RegisterLratIDOfUnitElit(id uint64, elit int) {
	e.external.extUnits.Record(id, Lit(elit))
}

// assignOriginalUnit assigns a root-level unit with a known clause ID,
// fixes the variable and registers the ID in both unit tables.
func (e *Engine) assignOriginalUnit(id uint64, l Lit) {
	if e.level() != 0 {
		log.Fatalf("unit %v assigned at level %d", l, e.level())
	}
	e.assign(l, nil)
	e.markFixed(l.Var())
	e.registerUnit(id, l)
}

// assignRootPropagated turns a root-level propagation into a fixed unit.
// With LRAT on, a unit derivation is emitted: the reason clause plus the
// units falsifying its other literals.
func (e *Engine) assignRootPropagated(l Lit, reason *Clause) {
	var id uint64
	if e.proof != nil {
		if e.opts.LRAT {
			chain := make([]uint64, 0, len(reason.lits))
			for _, other := range reason.lits {
				if other == l {
					continue
				}
				if uid := e.units.Lookup(-other); uid != 0 {
					chain = append(chain, uid)
				}
			}
			chain = append(chain, reason.id)
			id = e.store.NextLratID()
			e.proof.AddDerivedClause(id, true, false, 1, []int{e.externalize(l)}, chain)
		} else {
			id = e.store.NextLratID()
			e.proof.AddDerivedClause(id, true, false, 1, []int{e.externalize(l)}, nil)
		}
	} else {
		id = e.store.NextLratID()
	}
	e.markFixed(l.Var())
	e.registerUnit(id, l)
}

// externalize maps an internal literal back to its external form.
func (e *Engine) externalize(l Lit) int {
	eidx := e.i2e[l.Var()]
	if l < 0 {
		return -eidx
	}
	return eidx
}

// externalizeAll maps a slice of internal literals to external literals.
func (e *Engine) externalizeAll(lits []Lit) []int {
	res := make([]int, len(lits))
	for i, l := range lits {
		res[i] = e.externalize(l)
	}
	return res
}

/*--------------------------------------------------------------------------*/
// Watches and propagation.

// addOccs and subOccs maintain the per-literal occurrence counts used by
// inprocessing to schedule elimination candidates.
func (e *Engine) addOccs(c *Clause) {
	for _, l := range c.lits {
		e.ntab[vlit(l)]++
	}
}

func (e *Engine) subOccs(c *Clause) {
	for _, l := range c.lits {
		e.ntab[vlit(l)]--
	}
}

func (e *Engine) watch(l Lit, c *Clause, blit Lit, size int) {
	i := vlit(l)
	e.wtab[i] = append(e.wtab[i], watcher{clause: c, blit: blit, size: size})
}

// watchClause installs the two-watch scheme on the clause's first two
// literals.
func (e *Engine) watchClause(c *Clause) {
	size := len(c.lits)
	e.watch(c.lits[0], c, c.lits[1], size)
	e.watch(c.lits[1], c, c.lits[0], size)
}

func (e *Engine) unwatchClause(c *Clause) {
	for _, l := range c.lits[:2] {
		ws := e.wtab[vlit(l)]
		j := 0
		for _, w := range ws {
			if w.clause != c {
				ws[j] = w
				j++
			}
		}
		e.wtab[vlit(l)] = ws[:j]
	}
}

// propagate processes the trail until fixpoint or conflict.
func (e *Engine) propagate() *Clause {
	for e.propagated < len(e.trail) {
		l := e.trail[e.propagated]
		e.propagated++
		falsified := -l

		ws := e.wtab[vlit(falsified)]
		j := 0
		var conflict *Clause
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			ws[j] = w
			j++
			if e.val(w.blit) > 0 {
				continue
			}
			c := w.clause
			if c.garbage {
				j--
				continue
			}
			if w.binary() {
				other := w.blit
				switch {
				case e.val(other) < 0:
					conflict = c
				case e.val(other) == 0:
					e.assignPropagated(other, c)
				}
				if conflict != nil {
					j += copy(ws[j:], ws[i+1:])
					break
				}
				continue
			}

			// Make sure the falsified literal is in slot 1.
			lits := c.lits
			if lits[0] == falsified {
				lits[0], lits[1] = lits[1], lits[0]
			}
			if e.val(lits[0]) > 0 {
				ws[j-1].blit = lits[0]
				continue
			}

			replaced := false
			for k := 2; k < len(lits); k++ {
				if e.val(lits[k]) >= 0 {
					lits[1], lits[k] = lits[k], lits[1]
					e.watch(lits[1], c, lits[0], len(lits))
					j--
					replaced = true
					break
				}
			}
			if replaced {
				continue
			}

			if e.val(lits[0]) < 0 {
				conflict = c
				j += copy(ws[j:], ws[i+1:])
				break
			}
			e.assignPropagated(lits[0], c)
		}
		e.wtab[vlit(falsified)] = ws[:j]
		if conflict != nil {
			e.conflict = conflict
			return conflict
		}
	}
	return nil
}

func (e *Engine) assignPropagated(l Lit, reason *Clause) {
	e.assign(l, reason)
	if e.level() == 0 {
		e.assignRootPropagated(l, reason)
	}
}

/*--------------------------------------------------------------------------*/
// Backtracking.

func (e *Engine) backtrack(level int) {
	if level >= e.level() {
		return
	}
	keep := e.trailLim[level]
	for i := len(e.trail) - 1; i >= keep; i-- {
		l := e.trail[i]
		v := l.Var()
		if e.opts.PhaseSaving {
			e.phases.saved[v] = e.vals.get(Lit(v))
		}
		e.vals.set(l, 0)
		if r := e.vtab[v].reason; r != nil {
			r.reason = false
		}
		e.vtab[v].reason = nil
		e.vtab[v].level = -1
		e.numAssigned--
		if !e.scores.Contains(v) {
			e.scorePut(v)
		}
	}
	e.trail = e.trail[:keep]
	if len(e.notifyTrail) > keep {
		e.notifyTrail = e.notifyTrail[:keep]
		if e.notified > keep {
			e.notified = keep
		}
	}
	if e.propagated > keep {
		e.propagated = keep
	}
	e.trailLim = e.trailLim[:level]
}

/*--------------------------------------------------------------------------*/
// Activities.

func (e *Engine) bumpVar(v int) {
	e.stab[v] += e.varInc
	if e.stab[v] > 1e100 {
		e.varInc *= 1e-100 // keep proportions
		for i := range e.stab {
			e.stab[i] *= 1e-100
		}
	}
	if e.scores.Contains(v) {
		e.scores.Put(v, -e.stab[v])
	}
	e.queue.bumped++
	e.btab[v] = e.queue.bumped
}

func (e *Engine) bumpClause(c *Clause) {
	c.activity += e.clauseInc
	if c.activity > 1e100 {
		e.clauseInc *= 1e-100
		for _, other := range e.store.clauses {
			if other.redundant {
				other.activity *= 1e-100
			}
		}
	}
}

func (e *Engine) decayActivities() {
	e.varInc /= e.varDecay
	e.clauseInc /= e.clauseDecay
}

/*--------------------------------------------------------------------------*/
// Decisions.

// decide picks the unassigned active variable with the highest score and
// assigns its saved phase.
func (e *Engine) decide() bool {
	for {
		entry, ok := e.scores.Pop()
		if !ok {
			return false
		}
		v := entry.Elem
		if v > e.maxVar || !e.ftab[v].Active() || e.val(Lit(v)) != 0 {
			continue
		}
		e.stats.Decisions++
		e.trailLim = append(e.trailLim, len(e.trail))
		l := Lit(v)
		if e.phases.saved[v] < 0 {
			l = -l
		}
		e.assign(l, nil)
		return true
	}
}
