// Package cadical is a CDCL SAT solver with variable domain compaction,
// clause sharing and verifiable DRAT/LRAT/FRAT proof tracing.
//
// The solver follows the usual incremental API: literals are signed
// integers, zero terminates a clause in Add, and Solve returns 10
// (satisfiable), 20 (unsatisfiable) or 0 (unknown).
package cadical

import (
	"io"
	"log"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/domschrei/cadical/internal/proof"
	"github.com/domschrei/cadical/internal/sat"
)

// Result values of Solve.
const (
	ResultUnknown       = 0
	ResultSatisfiable   = 10
	ResultUnsatisfiable = 20
)

// Solver wraps the engine behind the external API state machine.
type Solver struct {
	engine *sat.Engine
	state  State
	opts   sat.Options
	logger *logrus.Logger

	clauseBuf []int

	proofBus     *proof.Proof
	fileTracer   *proof.FileTracer
	exportSeen   bool
	cbTracer     *proof.CallbackTracer
	apiTraceFile io.WriteCloser
}

// New creates a solver in the CONFIGURING state. If CADICAL_API_TRACE (or
// CADICALAPITRACE) names a file, every API call is echoed to it; only one
// solver per process may use this mechanism.
func New() *Solver {
	s := &Solver{
		state:  Initializing,
		opts:   sat.DefaultOptions,
		logger: logrus.New(),
	}
	s.logger.SetLevel(logrus.WarnLevel)
	if f := openAPITraceFromEnv(); f != nil {
		s.apiTraceFile = f
	}
	s.engine = sat.NewEngine(s.opts, s.logger)
	s.trace("init")
	s.state = Configuring
	return s
}

// Delete releases the solver. Further API calls are invalid.
func (s *Solver) Delete() {
	s.trace("reset")
	s.state = Deleting
	if s.proofBus != nil {
		s.proofBus.Close()
	}
	s.closeAPITrace()
}

// State returns the solver's FSM state.
func (s *Solver) State() State { return s.state }

// Logger exposes the solver's structured logger so embedders can adjust
// level and output.
func (s *Solver) Logger() *logrus.Logger { return s.logger }

func (s *Solver) require(ok bool, format string, args ...interface{}) {
	if !ok {
		log.Fatalf("invalid API usage: "+format, args...)
	}
}

func (s *Solver) transitionToUnknown() {
	if s.state != Unknown {
		s.engine.External().ResetAssumptions()
		s.state = Unknown
	}
}

// rebuildEngine applies pending option changes. Only allowed before any
// clause was added.
func (s *Solver) rebuildEngine() {
	s.engine = sat.NewEngine(s.opts, s.logger)
	if s.proofBus != nil {
		s.engine.ConnectProof(s.proofBus)
	}
}

/*--------------------------------------------------------------------------*/
// Clauses and assumptions.

// Add adds a literal of the clause under construction; zero terminates
// the clause. INT_MIN is never a valid literal.
func (s *Solver) Add(lit int) {
	s.trace("add", lit)
	s.require(s.state.valid(), "Add in state %s", s.state)
	s.require(lit != math.MinInt32, "INT_MIN is not a valid literal")
	if lit == 0 {
		s.state = Adding
		s.engine.AddClause(s.clauseBuf)
		s.clauseBuf = s.clauseBuf[:0]
		return
	}
	if s.state != Adding {
		s.transitionToUnknown()
		s.state = Adding
	}
	s.clauseBuf = append(s.clauseBuf, lit)
}

// Assume registers an assumption for the next Solve call.
func (s *Solver) Assume(lit int) {
	s.trace("assume", lit)
	s.require(s.state.valid(), "Assume in state %s", s.state)
	s.require(lit != 0 && lit != math.MinInt32, "invalid assumption literal %d", lit)
	s.transitionToUnknown()
	s.engine.External().Assume(lit)
}

// Constrain adds a literal to the constraint clause valid for the next
// Solve call only; zero terminates it.
func (s *Solver) Constrain(lit int) {
	s.trace("constrain", lit)
	s.require(s.state.valid(), "Constrain in state %s", s.state)
	s.transitionToUnknown()
	s.engine.External().Constrain(lit)
}

/*--------------------------------------------------------------------------*/
// Solving and model access.

// Solve solves the formula under the registered assumptions.
func (s *Solver) Solve() int {
	s.trace("solve")
	s.require(s.state.valid(), "Solve in state %s", s.state)
	s.require(len(s.clauseBuf) == 0, "Solve with unterminated clause")
	s.state = Solving

	res := s.engine.Solve()

	switch res {
	case sat.True:
		s.state = Satisfied
		return ResultSatisfiable
	case sat.False:
		s.state = Unsatisfied
		return ResultUnsatisfiable
	default:
		s.state = Unknown
		s.engine.External().ResetAssumptions()
		return ResultUnknown
	}
}

// Simplify runs root-level simplification rounds without search.
func (s *Solver) Simplify(rounds int) int {
	s.trace("simplify", rounds)
	s.require(s.state.valid(), "Simplify in state %s", s.state)
	s.transitionToUnknown()
	for i := 0; i < rounds; i++ {
		if !s.engine.Simplify() {
			s.state = Unsatisfied
			return ResultUnsatisfiable
		}
	}
	return ResultUnknown
}

// Val returns lit if the literal is true in the model and -lit otherwise.
// Only valid in the SATISFIED state.
func (s *Solver) Val(lit int) int {
	s.trace("val", lit)
	s.require(s.state == Satisfied, "Val in state %s", s.state)
	if s.engine.External().Val(lit) >= 0 {
		return lit
	}
	return -lit
}

// Failed reports whether the assumption was part of the reason for
// unsatisfiability. Only valid in the UNSATISFIED state.
func (s *Solver) Failed(lit int) bool {
	s.trace("failed", lit)
	s.require(s.state == Unsatisfied, "Failed in state %s", s.state)
	return s.engine.External().Failed(lit)
}

// Fixed returns 1 if the literal is implied at the root level, -1 if its
// negation is, and 0 otherwise.
func (s *Solver) Fixed(lit int) int {
	s.trace("fixed", lit)
	s.require(s.state.valid(), "Fixed in state %s", s.state)
	return int(s.engine.External().Fixed(lit))
}

/*--------------------------------------------------------------------------*/
// Freezing and reservation.

func (s *Solver) Freeze(lit int) {
	s.trace("freeze", lit)
	s.require(s.state.valid(), "Freeze in state %s", s.state)
	s.engine.External().Freeze(lit)
}

func (s *Solver) Melt(lit int) {
	s.trace("melt", lit)
	s.require(s.state.valid(), "Melt in state %s", s.state)
	s.engine.External().Melt(lit)
}

func (s *Solver) Frozen(lit int) bool {
	s.trace("frozen", lit)
	s.require(s.state.valid(), "Frozen in state %s", s.state)
	return s.engine.External().Frozen(lit)
}

// Reserve pre-allocates external variables up to n.
func (s *Solver) Reserve(n int) {
	s.trace("reserve", n)
	s.require(s.state.valid(), "Reserve in state %s", s.state)
	s.transitionToUnknown()
	for v := 1; v <= n; v++ {
		s.engine.External().Internalize(v)
	}
}

// Vars returns the largest external variable index seen so far.
func (s *Solver) Vars() int {
	s.trace("vars")
	return s.engine.External().MaxVar()
}

/*--------------------------------------------------------------------------*/
// Options, configuration and limits.

// Configure applies a named option preset. Valid names are "plain",
// "sat" and "unsat".
func (s *Solver) Configure(name string) error {
	s.trace("configure", name)
	s.require(s.state == Configuring, "Configure after initialization")
	switch name {
	case "plain":
		s.opts.Compact = false
		s.opts.PhaseSaving = false
	case "sat":
		s.opts.PhaseSaving = true
	case "unsat":
		s.opts.PhaseSaving = false
	default:
		return errors.Errorf("unknown configuration %q", name)
	}
	s.rebuildEngine()
	return nil
}

// Set changes a single option. Only valid right after initialization.
func (s *Solver) Set(name string, val int) error {
	s.trace("set", name, val)
	s.require(s.state == Configuring,
		"can only set option %q right after initialization", name)
	switch strings.ToLower(name) {
	case "compact":
		s.opts.Compact = val != 0
	case "compactint":
		s.opts.CompactInt = int64(val)
	case "compactmin":
		s.opts.CompactMin = val
	case "compactlim":
		s.opts.CompactLim = val
	case "lrat":
		s.opts.LRAT = val != 0
	case "lratdeletelines":
		s.opts.LRATDeleteLines = val != 0
	case "signsharedcls":
		s.opts.SignSharedClauses = val != 0
	case "phase":
		s.opts.PhaseSaving = val != 0
	default:
		return errors.Errorf("unknown option %q", name)
	}
	s.rebuildEngine()
	return nil
}

// Limit sets a named search limit. The "conflicts" limit bounds the total
// number of conflicts of the solver; it is not reset after a Solve call.
func (s *Solver) Limit(name string, val int64) error {
	s.trace("limit", name, val)
	s.require(s.state.valid(), "Limit in state %s", s.state)
	switch name {
	case "conflicts":
		s.opts.MaxConflicts = val
		s.engine.SetMaxConflicts(val)
	default:
		return errors.Errorf("unknown limit %q", name)
	}
	return nil
}

// SetInstanceNum and SetTotalInstances configure the local slice of the
// shared clause-ID space when several solver instances work on the same
// formula.
func (s *Solver) SetInstanceNum(n int) {
	s.trace("set_instance_num", n)
	s.require(s.state.valid() || s.state == Configuring, "SetInstanceNum in state %s", s.state)
	s.engine.Store().SetInstanceNum(n)
}

func (s *Solver) SetTotalInstances(n int) {
	s.trace("set_total_instances", n)
	s.require(s.state.valid() || s.state == Configuring, "SetTotalInstances in state %s", s.state)
	s.engine.Store().SetTotalInstances(n)
}

// Terminate asks the solver to stop cooperatively; the running Solve
// returns ResultUnknown.
func (s *Solver) Terminate() {
	s.engine.Terminate()
}

/*--------------------------------------------------------------------------*/
// Proof tracing.

func (s *Solver) ensureProof() *proof.Proof {
	if s.proofBus == nil {
		s.proofBus = proof.New(s.opts.LRAT)
		s.engine.ConnectProof(s.proofBus)
	}
	return s.proofBus
}

// TraceProof writes a proof trace to the given path. The format defaults
// to DRAT, or LRAT when the lrat option is set; .gz and .zst paths are
// compressed. Must be called before any clause is added.
func (s *Solver) TraceProof(path string) error {
	s.trace("trace_proof", path)
	s.require(s.state == Configuring, "TraceProof after initialization")
	w, err := proof.OpenFile(path)
	if err != nil {
		return err
	}
	format := proof.DRAT
	if s.opts.LRAT {
		format = proof.LRAT
	}
	s.attachFileTracer(proof.NewFileTracer(w, format, false, s.opts.LRATDeleteLines))
	return nil
}

// TraceProofTo attaches a proof tracer writing to w in the given format.
func (s *Solver) TraceProofTo(w io.Writer, format proof.Format, binary bool) {
	s.require(s.state == Configuring, "TraceProofTo after initialization")
	if format != proof.DRAT && !s.opts.LRAT {
		s.opts.LRAT = true
		s.rebuildEngine()
	}
	s.attachFileTracer(proof.NewFileTracer(w, format, binary, s.opts.LRATDeleteLines))
}

func (s *Solver) attachFileTracer(t *proof.FileTracer) {
	s.require(s.fileTracer == nil, "proof trace attached twice")
	s.fileTracer = t
	// The file tracer goes first so the proof is on disk before any
	// export side effects.
	s.ensureProof().ConnectTracer(t)
}

// FlushProofTrace flushes buffered proof lines to disk.
func (s *Solver) FlushProofTrace() error {
	s.trace("flush_proof_trace")
	s.require(s.fileTracer != nil, "no proof trace attached")
	return errors.Wrap(s.fileTracer.Flush(), "flushing proof trace")
}

// CloseProofTrace closes the proof trace file.
func (s *Solver) CloseProofTrace() error {
	s.trace("close_proof_trace")
	s.require(s.fileTracer != nil, "no proof trace attached")
	return errors.Wrap(s.fileTracer.Close(), "closing proof trace")
}

/*--------------------------------------------------------------------------*/
// Clause sharing.

// ConnectLearnSource attaches a source of incoming shared clauses.
func (s *Solver) ConnectLearnSource(src sat.LearnSource) {
	s.engine.External().ConnectLearnSource(src)
}

// ConnectLearner attaches a consumer for locally derived clauses. The
// exporting observer joins the proof bus behind any file tracer.
func (s *Solver) ConnectLearner(l sat.Learner) {
	s.engine.External().ConnectLearner(l)
	if !s.exportSeen {
		s.exportSeen = true
		s.ensureProof().Connect(sat.NewLearnerObserver(s.engine.External()))
	}
}

// ConnectLratCallbacks attaches the internal LRAT tracer, which produces
// clauses through cbProduce, imports signed axioms through cbImport and
// deletes through cbDelete.
func (s *Solver) ConnectLratCallbacks(cbProduce proof.ProduceFunc, cbImport proof.ImportFunc, cbDelete proof.DeleteFunc) {
	s.require(s.cbTracer == nil, "LRAT callbacks connected twice")
	t := proof.NewCallbackTracer(cbProduce, cbImport, cbDelete)
	t.SignShared = s.opts.SignSharedClauses
	t.RegisterUnit = s.engine.RegisterLratIDOfUnitElit
	st := s.engine
	t.OnProduced = func() { st.CountProduced() }
	s.cbTracer = t
	s.ensureProof().Connect(t)
}

// Statistics returns a snapshot of the engine counters.
func (s *Solver) Statistics() sat.Stats {
	return s.engine.Stats()
}
