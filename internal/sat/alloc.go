package sat

import (
	"math/bits"
	"sync"
)

// Number of slice pools.
const nPools = 4

// The minimum capacity for slices in the last pool.
const lastCapa = 1 << nPools

// Pools of literal slices with different capacities so that pool i serves
// slices with a capacity between 2^(i+1) and 2^(i+2)-1 inclusive. The last
// pool has no upper bound.
var pools = [nPools]sync.Pool{}

// pid returns the ID of the smallest pool that can serve a slice of the
// requested capacity.
func pid(capa int) int {
	if lastCapa <= capa {
		return nPools - 1
	}
	pid := max(bits.Len(uint(capa))-1, 0)
	if capa < (1 << pid) {
		pid--
	}
	return pid
}

// allocSlice returns an empty literal slice with at least the requested
// capacity.
func allocSlice(capa int) *[]Lit {
	pid := pid(capa)

	ref := pools[pid].Get()
	if ref != nil && capa <= cap(*ref.(*[]Lit)) {
		return ref.(*[]Lit)
	}

	if pid < nPools-1 {
		s := make([]Lit, 0, 2<<pid)
		return &s
	}

	if capa <= lastCapa*2 {
		s := make([]Lit, 0, lastCapa*2)
		return &s
	}

	s := make([]Lit, 0, capa)
	return &s
}

// freeSlice returns the slice to its pool so it can back another clause.
func freeSlice(s *[]Lit) {
	*s = (*s)[:0]
	pools[pid(cap(*s))].Put(s)
}
