package cadical_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cadical "github.com/domschrei/cadical"
	"github.com/domschrei/cadical/internal/proof"
)

func TestSolveSatisfiable(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	for _, c := range [][]int{{1, 2}, {-1, 2}} {
		for _, l := range c {
			s.Add(l)
		}
		s.Add(0)
	}

	require.Equal(t, cadical.ResultSatisfiable, s.Solve())
	require.Equal(t, cadical.Satisfied, s.State())
	require.Equal(t, 2, s.Val(2))
}

func TestSolveUnsatisfiable(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	for _, c := range [][]int{{1}, {-1}} {
		for _, l := range c {
			s.Add(l)
		}
		s.Add(0)
	}

	require.Equal(t, cadical.ResultUnsatisfiable, s.Solve())
	require.Equal(t, cadical.Unsatisfied, s.State())
}

func TestStateMachine(t *testing.T) {
	s := cadical.New()
	defer s.Delete()
	require.Equal(t, cadical.Configuring, s.State())

	s.Add(1)
	require.Equal(t, cadical.Adding, s.State())
	s.Add(0)

	s.Assume(1)
	require.Equal(t, cadical.Unknown, s.State())

	require.Equal(t, cadical.ResultSatisfiable, s.Solve())
	require.Equal(t, cadical.Satisfied, s.State())
}

func TestAssumptionsResetOnUnknownTransition(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	s.Add(1)
	s.Add(0)
	s.Assume(-1)
	require.Equal(t, cadical.ResultUnsatisfiable, s.Solve())
	require.True(t, s.Failed(-1))

	// A new clause moves the solver through UNKNOWN, dropping the
	// assumptions; the instance is satisfiable again.
	s.Add(2)
	s.Add(0)
	require.Equal(t, cadical.ResultSatisfiable, s.Solve())
}

func TestFixed(t *testing.T) {
	s := cadical.New()
	defer s.Delete()
	s.Add(1)
	s.Add(0)
	s.Simplify(1)

	require.Equal(t, 1, s.Fixed(1))
	require.Equal(t, -1, s.Fixed(-1))
	require.Equal(t, 0, s.Fixed(2))
}

func TestFreezeMeltFrozen(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	require.False(t, s.Frozen(1))
	s.Freeze(1)
	require.True(t, s.Frozen(1))
	s.Melt(1)
	require.False(t, s.Frozen(1))
}

func TestDRATTraceEndToEnd(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	buf := &bytes.Buffer{}
	s.TraceProofTo(buf, proof.DRAT, false)

	for _, c := range [][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}} {
		for _, l := range c {
			s.Add(l)
		}
		s.Add(0)
	}
	require.Equal(t, cadical.ResultUnsatisfiable, s.Solve())
	require.NoError(t, s.FlushProofTrace())

	trace := buf.String()
	require.NotEmpty(t, trace)
	// The trace ends with the empty clause.
	lines := strings.Split(strings.TrimSpace(trace), "\n")
	last := lines[len(lines)-1]
	require.Equal(t, "0", strings.TrimSpace(last))
}

func TestTraceProofToFile(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	path := filepath.Join(t.TempDir(), "proof.drat")
	require.NoError(t, s.TraceProof(path))

	s.Add(1)
	s.Add(0)
	s.Add(-1)
	s.Add(0)
	require.Equal(t, cadical.ResultUnsatisfiable, s.Solve())
	require.NoError(t, s.CloseProofTrace())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestSetAndConfigure(t *testing.T) {
	s := cadical.New()
	defer s.Delete()

	require.NoError(t, s.Set("compactint", 500))
	require.NoError(t, s.Set("lrat", 1))
	require.Error(t, s.Set("nonsense", 1))
	require.NoError(t, s.Configure("plain"))
	require.Error(t, s.Configure("nonsense"))
}

func TestAPITraceViaEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.trace")
	t.Setenv("CADICAL_API_TRACE", path)

	s := cadical.New()
	s.Add(1)
	s.Add(0)
	s.Delete()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "init")
	require.Contains(t, string(data), "add 1")

	// The guard is released on Delete: a second solver may trace again.
	s2 := cadical.New()
	s2.Delete()
}
