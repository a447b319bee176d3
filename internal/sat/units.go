package sat

// UnitRegistry records, for every fixed literal, the ID of the unit clause
// that proved it. The engine keeps one registry indexed by internal
// literal for fast in-solver lookup; the External map mirrors it under
// external literals so the IDs survive variable domain compaction, which
// rewrites all internal indices.
//
// For a fixed literal l exactly one of the entries for l and -l is
// non-zero.
type UnitRegistry struct {
	ids []uint64 // two-sided, indexed by vlit
}

// grow makes room for variables up to n.
func (u *UnitRegistry) grow(n int) {
	want := 2*n + 2
	for len(u.ids) < want {
		u.ids = append(u.ids, 0)
	}
}

// Lookup returns the unit clause ID recorded for the literal, or zero.
func (u *UnitRegistry) Lookup(l Lit) uint64 {
	i := vlit(l)
	if i >= len(u.ids) {
		return 0
	}
	return u.ids[i]
}

// Record stores the ID of the unit clause proving l.
func (u *UnitRegistry) Record(id uint64, l Lit) {
	u.grow(l.Var())
	u.ids[vlit(l)] = id
}

// clear zeroes both polarities of variable v.
func (u *UnitRegistry) clear(v int) {
	if 2*v+1 < len(u.ids) {
		u.ids[2*v] = 0
		u.ids[2*v+1] = 0
	}
}

// move transfers both polarities of variable src to dst. Used during
// compaction; dst entries must be empty.
func (u *UnitRegistry) move(src, dst int) {
	u.ids[2*dst] = u.ids[2*src]
	u.ids[2*dst+1] = u.ids[2*src+1]
	u.ids[2*src] = 0
	u.ids[2*src+1] = 0
}

// shrink truncates the registry to variables up to n.
func (u *UnitRegistry) shrink(n int) {
	want := 2*n + 2
	if len(u.ids) > want {
		u.ids = u.ids[:want]
	}
}
