// Package dimacs loads DIMACS CNF instances into a solver.
package dimacs

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"
)

// Solver is the subset of the solver API the loader needs.
type Solver interface {
	Reserve(n int)
	Add(lit int)
}

func reader(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if strings.HasSuffix(filename, ".gz") {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// Load parses the DIMACS CNF file and adds its clauses to the solver.
// Files ending in .gz are decompressed transparently. Malformed input is
// reported as an error message, never as a crash.
func Load(filename string, solver Solver) error {
	rc, err := reader(filename)
	if err != nil {
		return errors.Wrapf(err, "error reading file %q", filename)
	}
	defer rc.Close()

	b := &builder{solver: solver}
	if err := dimacs.ReadBuilder(rc, b); err != nil {
		return errors.Wrapf(err, "error parsing file %q", filename)
	}
	return nil
}

// builder wraps the solver to implement dimacs.Builder.
type builder struct {
	solver Solver
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.New("not a CNF problem")
	}
	b.solver.Reserve(nVars)
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	for _, l := range tmpClause {
		b.solver.Add(l)
	}
	b.solver.Add(0)
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}
