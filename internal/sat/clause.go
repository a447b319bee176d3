package sat

import "strings"

// Clause is a disjunction of internal literals identified by an immutable
// 64-bit ID. Non-garbage clauses never contain eliminated or substituted
// literals, nor a literal that is true at the root level.
type Clause struct {
	id uint64

	// The clause's literals. The first two are the watched ones while
	// the clause is attached.
	lits     []Lit
	sliceRef *[]Lit

	redundant bool
	garbage   bool
	reason    bool
	glue      int
	activity  float64
}

// ID returns the clause's immutable identifier.
func (c *Clause) ID() uint64 { return c.id }

// Lits returns the clause's literals. The slice is owned by the clause.
func (c *Clause) Lits() []Lit { return c.lits }

// Redundant reports whether the clause is learned rather than irredundant.
func (c *Clause) Redundant() bool { return c.redundant }

// Glue returns the clause's literal block distance.
func (c *Clause) Glue() int { return c.glue }

func (c *Clause) String() string {
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	for i, l := range c.lits {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// ClauseStore owns all clauses and the two clause-ID sequences: original
// clauses get consecutive IDs starting at one, while locally derived
// clauses draw from an arithmetic progression disjoint from the ID spaces
// of other producers sharing the same formula. With totalInstances
// producers, producer k derives IDs numOriginal+k+1, numOriginal+k+1+n,
// numOriginal+k+1+2n, ...
type ClauseStore struct {
	clauses []*Clause

	numOriginal    uint64
	originalFrozen bool

	instanceNum    uint64
	totalInstances uint64
	lastLocalID    uint64
}

func newClauseStore() *ClauseStore {
	return &ClauseStore{totalInstances: 1}
}

// SetInstanceNum and SetTotalInstances configure the local slice of the
// derived-ID space. Both must be called before the first derivation.
func (s *ClauseStore) SetInstanceNum(n int) { s.instanceNum = uint64(n) }

func (s *ClauseStore) SetTotalInstances(n int) {
	if n > 0 {
		s.totalInstances = uint64(n)
	}
}

// nextOriginalID reserves the ID of the next original clause. Once the
// derived progression started, late originals draw from it instead so
// IDs stay unique and monotone.
func (s *ClauseStore) nextOriginalID() uint64 {
	if s.originalFrozen {
		return s.NextLratID()
	}
	s.numOriginal++
	return s.numOriginal
}

// NextLratID yields the next locally produced clause ID. The first call
// freezes the original-ID range.
func (s *ClauseStore) NextLratID() uint64 {
	if !s.originalFrozen {
		s.originalFrozen = true
		s.lastLocalID = s.numOriginal + s.instanceNum + 1
		return s.lastLocalID
	}
	s.lastLocalID += s.totalInstances
	return s.lastLocalID
}

// IsLocallyProducedLratID recognizes IDs this store has handed out. It is
// used to reject echoes of one's own exports arriving back through a
// learn source.
func (s *ClauseStore) IsLocallyProducedLratID(id uint64) bool {
	if id <= s.numOriginal || !s.originalFrozen || id > s.lastLocalID {
		return false
	}
	return (id-s.numOriginal-1)%s.totalInstances == s.instanceNum
}

// NumOriginal returns the number of original clauses.
func (s *ClauseStore) NumOriginal() uint64 { return s.numOriginal }

// newClause materializes a clause with the given ID. The literal slice is
// drawn from the pool and released when the clause is reclaimed.
func (s *ClauseStore) newClause(id uint64, lits []Lit, redundant bool, glue int) *Clause {
	ref := allocSlice(len(lits))
	buf := append(*ref, lits...)
	c := &Clause{
		id:        id,
		lits:      buf,
		sliceRef:  ref,
		redundant: redundant,
		glue:      glue,
	}
	s.clauses = append(s.clauses, c)
	return c
}

// free releases the clause's literal storage back to the pool.
func (s *ClauseStore) free(c *Clause) {
	if c.sliceRef != nil {
		freeSlice(c.sliceRef)
		c.sliceRef = nil
	}
	c.lits = nil
}

// sweep removes garbage clauses from the store, releasing their storage,
// and reports how many were reclaimed.
func (s *ClauseStore) sweep() int {
	j := 0
	for _, c := range s.clauses {
		if c.garbage {
			s.free(c)
			continue
		}
		s.clauses[j] = c
		j++
	}
	n := len(s.clauses) - j
	s.clauses = s.clauses[:j]
	return n
}
