package sat

import "testing"

func TestLocalIDProgression(t *testing.T) {
	s := newClauseStore()
	s.SetTotalInstances(4)
	s.SetInstanceNum(2)

	for i := 0; i < 3; i++ {
		s.nextOriginalID()
	}

	if got, want := s.NextLratID(), uint64(6); got != want {
		t.Fatalf("first local ID: got %d, want %d", got, want)
	}
	if got, want := s.NextLratID(), uint64(10); got != want {
		t.Fatalf("second local ID: got %d, want %d", got, want)
	}
}

func TestIsLocallyProducedLratID(t *testing.T) {
	s := newClauseStore()
	s.SetTotalInstances(4)
	s.SetInstanceNum(2)
	for i := 0; i < 3; i++ {
		s.nextOriginalID()
	}
	s.NextLratID() // 6
	s.NextLratID() // 10

	cases := []struct {
		id   uint64
		want bool
	}{
		{1, false},  // original
		{3, false},  // original
		{6, true},   // ours
		{10, true},  // ours
		{7, false},  // another instance's slice
		{9, false},  // another instance's slice
		{14, false}, // ours in principle, but not produced yet
	}
	for _, tc := range cases {
		if got := s.IsLocallyProducedLratID(tc.id); got != tc.want {
			t.Errorf("IsLocallyProducedLratID(%d): got %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestSingleInstanceIDsAreConsecutive(t *testing.T) {
	s := newClauseStore()
	for i := 0; i < 2; i++ {
		s.nextOriginalID()
	}
	want := uint64(3)
	for i := 0; i < 5; i++ {
		if got := s.NextLratID(); got != want {
			t.Fatalf("local ID: got %d, want %d", got, want)
		}
		want++
	}
}

func TestOriginalsAfterFreezeDrawLocalIDs(t *testing.T) {
	s := newClauseStore()
	s.nextOriginalID() // 1
	first := s.NextLratID()
	late := s.nextOriginalID()
	if late <= first {
		t.Fatalf("late original ID %d not above local watermark %d", late, first)
	}
}

func TestSweepReclaimsGarbage(t *testing.T) {
	s := newClauseStore()
	a := s.newClause(1, []Lit{1, 2}, false, 0)
	b := s.newClause(2, []Lit{2, 3}, true, 2)
	a.garbage = true

	if got := s.sweep(); got != 1 {
		t.Fatalf("sweep reclaimed %d clauses, want 1", got)
	}
	if len(s.clauses) != 1 || s.clauses[0] != b {
		t.Fatal("sweep kept the wrong clause")
	}
}
