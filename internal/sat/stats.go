package sat

// NowStats counts variables currently in each inactive state. After a
// compaction only Fixed may be non-zero (the surrogate), and only by one.
type NowStats struct {
	Fixed       int
	Eliminated  int
	Substituted int
	Pure        int
}

// ImportStats counts the fate of incoming shared clauses.
type ImportStats struct {
	Imported  int64
	Discarded int64
	RWit      int64 // rejected: witness literal
	REl       int64 // rejected: eliminated or substituted literal
	RFx       int64 // rejected: fixed literal
}

type Stats struct {
	Conflicts    int64
	Decisions    int64
	Propagations int64
	Restarts     int64
	Compacts     int64

	Learned  int64
	Reduced  int64
	Collects int64

	// Proof production counters.
	ProducedCls          int64
	IncomingCls          int64
	ValidatedIncomingCls int64

	Now          NowStats
	ClauseImport ImportStats
}

// inactive returns the number of currently inactive variables.
func (s *Stats) inactive() int {
	return s.Now.Fixed + s.Now.Eliminated + s.Now.Substituted + s.Now.Pure
}
