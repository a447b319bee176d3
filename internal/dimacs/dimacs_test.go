package dimacs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSolver struct {
	reserved int
	clauses  [][]int
	current  []int
}

func (s *fakeSolver) Reserve(n int) { s.reserved = n }

func (s *fakeSolver) Add(lit int) {
	if lit == 0 {
		s.clauses = append(s.clauses, s.current)
		s.current = nil
		return
	}
	s.current = append(s.current, lit)
}

func writeInstance(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instance.cnf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeInstance(t, `c a comment
p cnf 3 2
1 -2 0
2 3 0
`)

	s := &fakeSolver{}
	if err := Load(path, s); err != nil {
		t.Fatalf("Load: %s", err)
	}
	if s.reserved != 3 {
		t.Errorf("reserved %d variables, want 3", s.reserved)
	}
	want := [][]int{{1, -2}, {2, 3}}
	if diff := cmp.Diff(want, s.clauses); diff != "" {
		t.Errorf("clauses (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load("no/such/file.cnf", &fakeSolver{}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadRejectsNonCNF(t *testing.T) {
	path := writeInstance(t, "p wcnf 2 1\n1 2 0\n")
	if err := Load(path, &fakeSolver{}); err == nil {
		t.Fatal("expected an error for a non-CNF problem")
	}
}
