package sat

import "time"

// Options configures the engine. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// Clause and variable activity decay.
	ClauseDecay   float64
	VariableDecay float64

	// Stop conditions.
	MaxConflicts int64
	Timeout      time.Duration

	// Phase saving for decisions.
	PhaseSaving bool

	// Compact enables variable domain compaction. CompactInt is the
	// conflict interval between compactions (scaled by the number of
	// compactions so far), CompactMin the absolute floor of inactive
	// variables required, and CompactLim the required fraction of
	// inactive variables in permille.
	Compact    bool
	CompactInt int64
	CompactMin int
	CompactLim int

	// LRAT enables hint-producing proofs. Without it only clause
	// literals are traced (DRAT).
	LRAT bool

	// LRATDeleteLines emits deletion statements in LRAT proofs.
	LRATDeleteLines bool

	// SignSharedClauses asks the internal LRAT tracer to request
	// signatures for exported clauses.
	SignSharedClauses bool

	// EMA decay for the trail size averages.
	EMATrailFast float64
	EMATrailSlow float64
}

var DefaultOptions = Options{
	ClauseDecay:       0.999,
	VariableDecay:     0.95,
	MaxConflicts:      -1,
	Timeout:           -1,
	PhaseSaving:       true,
	Compact:           true,
	CompactInt:        2000,
	CompactMin:        100,
	CompactLim:        100,
	LRAT:              false,
	LRATDeleteLines:   true,
	SignSharedClauses: false,
	EMATrailFast:      1.0 / 32.0,
	EMATrailSlow:      1.0 / 4096.0,
}
