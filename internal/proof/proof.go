package proof

// Proof owns an ordered list of tracers and forwards clause events to each
// of them. Order matters: file tracers are connected at the front so that
// on-disk proof lines precede any export side effects.
type Proof struct {
	lrat    bool
	tracers []Tracer
}

func New(lrat bool) *Proof {
	return &Proof{lrat: lrat}
}

// Connect appends a tracer to the fan-out list.
func (p *Proof) Connect(t Tracer) {
	p.tracers = append(p.tracers, t)
}

// ConnectTracer prepends a tracer so it observes every event first.
func (p *Proof) ConnectTracer(t Tracer) {
	p.tracers = append([]Tracer{t}, p.tracers...)
}

// Tracers returns the attached tracers in fan-out order.
func (p *Proof) Tracers() []Tracer {
	return p.tracers
}

func (p *Proof) Begin(id uint64) {
	for _, t := range p.tracers {
		t.Begin(id)
	}
}

func (p *Proof) AddOriginalClause(id uint64, lits []int) {
	for _, t := range p.tracers {
		t.AddOriginalClause(id, lits)
	}
}

func (p *Proof) AddOriginalClauseWithSignature(id uint64, lits []int, sig []byte) {
	for _, t := range p.tracers {
		t.AddOriginalClauseWithSignature(id, lits, sig)
	}
}

// AddDerivedClause forwards a derived clause to all tracers. The glue is
// normalized so downstream formats never see degenerate values: it never
// exceeds the clause size and is at least one.
func (p *Proof) AddDerivedClause(id uint64, redundant, imported bool, glue int, lits []int, chain []uint64) {
	if len(lits) < glue {
		glue = len(lits)
	}
	if glue < 1 {
		glue = 1
	}
	for _, t := range p.tracers {
		t.AddDerivedClause(id, redundant, imported, glue, lits, chain)
	}
}

func (p *Proof) DeleteClause(id uint64, lits []int) {
	for _, t := range p.tracers {
		t.DeleteClause(id, lits)
	}
}

// FinalizeClause is only meaningful for hint-producing proofs.
func (p *Proof) FinalizeClause(id uint64, lits []int) {
	if !p.lrat {
		return
	}
	for _, t := range p.tracers {
		t.FinalizeClause(id, lits)
	}
}

func (p *Proof) AddTodo(vals []int64) {
	for _, t := range p.tracers {
		t.AddTodo(vals)
	}
}

func (p *Proof) Flush() {
	for _, t := range p.tracers {
		t.Flush()
	}
}

func (p *Proof) Close() {
	for _, t := range p.tracers {
		t.Close()
	}
}
