package sat

import "log"

// State transitions performed by inprocessing. A variable leaves the
// active state at most once and never returns.

func (e *Engine) markInactive(v int, status varStatus) {
	f := &e.ftab[v]
	if !f.Active() {
		log.Fatalf("variable %d already inactive", v)
	}
	if e.val(Lit(v)) != 0 {
		log.Fatalf("variable %d still assigned", v)
	}
	f.status = status
	e.queueDequeue(v)
	switch status {
	case statusEliminated:
		e.stats.Now.Eliminated++
	case statusSubstituted:
		e.stats.Now.Substituted++
	case statusPure:
		e.stats.Now.Pure++
	}
}

// MarkEliminated records that v was removed by variable elimination. The
// caller is responsible for pushing reconstruction witnesses.
func (e *Engine) MarkEliminated(v int) { e.markInactive(v, statusEliminated) }

// MarkSubstituted records that v was replaced by an equivalent literal.
func (e *Engine) MarkSubstituted(v int) { e.markInactive(v, statusSubstituted) }

// MarkPure records that v occurred in only one polarity.
func (e *Engine) MarkPure(v int) { e.markInactive(v, statusPure) }
